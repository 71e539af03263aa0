package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/api/responses"
	"github.com/sajikita/foodcourt-backend/api/validators"
	"github.com/sajikita/foodcourt-backend/internal/settlements"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
	"github.com/sajikita/foodcourt-backend/pkg/types"
)

type settlementInitiateRequest struct {
	Period      string  `json:"period" validate:"required,len=7"`
	TenantID    *string `json:"tenant_id,omitempty" validate:"omitempty,uuid"`
	BankAccount *string `json:"bank_account,omitempty" validate:"omitempty,max=100"`
}

// SettlementInitiate opens settlements for a closed calendar month.
func SettlementInitiate(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settlementInitiateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := settlements.InitiateInput{
			Period:      payload.Period,
			BankAccount: payload.BankAccount,
			Actor:       settlements.Actor{UserID: userID, Role: role},
		}
		if payload.TenantID != nil {
			tenantID, parseErr := uuid.Parse(*payload.TenantID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid tenant id"))
				return
			}
			input.TenantID = &tenantID
		}

		rows, err := svc.Initiate(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rows)
	}
}

type settlementProcessRequest struct {
	TransferID *string `json:"transfer_id,omitempty" validate:"omitempty,max=100"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// SettlementProcess marks a pending settlement as paid out. Runs once per
// settlement; repeats are rejected.
func SettlementProcess(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settlementID, err := pathUUID(r, "settlementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The process body is optional.
		var payload settlementProcessRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		settlement, err := svc.Process(r.Context(), settlements.ProcessInput{
			SettlementID: settlementID,
			TransferID:   payload.TransferID,
			Notes:        payload.Notes,
			Actor:        settlements.Actor{UserID: userID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settlement)
	}
}

// SettlementGet returns one settlement by id.
func SettlementGet(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		settlementID, err := pathUUID(r, "settlementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		settlement, err := svc.Get(r.Context(), settlementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, settlement)
	}
}

// SettlementList returns a filtered settlement page.
func SettlementList(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return settlementList(svc, logg, false)
}

// SettlementListByTenant scopes the settlement page to the tenant in the path.
func SettlementListByTenant(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return settlementList(svc, logg, true)
}

func settlementList(svc settlements.Service, logg *logger.Logger, tenantScoped bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := settlements.Filters{Period: strings.TrimSpace(r.URL.Query().Get("period"))}

		if year := strings.TrimSpace(r.URL.Query().Get("year")); year != "" {
			if len(year) != 4 || strings.Trim(year, "0123456789") != "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "year filter must be a four digit year"))
				return
			}
			filters.Year = year
		}

		if tenantScoped {
			tenantID, err := pathUUID(r, "tenantId")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.TenantID = &tenantID
		} else if filters.TenantID, err = validators.ParseQueryUUID(r, "tenant_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseSettlementStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		rows, total, err := svc.List(r.Context(), pagination.Params{Limit: limit, Offset: offset}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.Page{Items: rows, Total: total, Limit: limit, Offset: offset})
	}
}
