package controllers

import (
	"net/http"
	"strings"

	"github.com/sajikita/foodcourt-backend/api/responses"
	"github.com/sajikita/foodcourt-backend/api/validators"
	"github.com/sajikita/foodcourt-backend/internal/tenants"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
	"github.com/sajikita/foodcourt-backend/pkg/types"
)

type tenantCreateRequest struct {
	Name      string  `json:"name" validate:"required,min=2,max=120"`
	Code      string  `json:"code" validate:"required,min=2,max=16"`
	OwnerName *string `json:"owner_name,omitempty" validate:"omitempty,max=120"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

// TenantCreate registers a stall.
func TenantCreate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenants service unavailable"))
			return
		}

		var payload tenantCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Create(r.Context(), tenants.CreateInput{
			Name:      payload.Name,
			Code:      payload.Code,
			OwnerName: payload.OwnerName,
			Phone:     payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, tenant)
	}
}

// TenantGet returns one tenant by id.
func TenantGet(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenants service unavailable"))
			return
		}

		tenantID, err := pathUUID(r, "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tenant, err := svc.Get(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tenant)
	}
}

// TenantList returns a filtered tenant page.
func TenantList(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenants service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := tenants.Filters{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseTenantStatus(raw)
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

type tenantUpdateRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	OwnerName *string `json:"owner_name,omitempty" validate:"omitempty,max=120"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Status    *string `json:"status,omitempty"`
}

// TenantUpdate adjusts the mutable tenant fields.
func TenantUpdate(svc tenants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenants service unavailable"))
			return
		}

		tenantID, err := pathUUID(r, "tenantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tenantUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := tenants.UpdateInput{
			Name:      payload.Name,
			OwnerName: payload.OwnerName,
			Phone:     payload.Phone,
		}
		if payload.Status != nil {
			status, parseErr := enums.ParseTenantStatus(*payload.Status)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status"))
				return
			}
			input.Status = &status
		}

		tenant, err := svc.Update(r.Context(), tenantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tenant)
	}
}
