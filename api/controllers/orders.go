package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/api/responses"
	"github.com/sajikita/foodcourt-backend/api/validators"
	"github.com/sajikita/foodcourt-backend/internal/orders"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
	"github.com/sajikita/foodcourt-backend/pkg/types"
)

type orderItemRequest struct {
	MenuName  string  `json:"menu_name" validate:"required,min=1,max=120"`
	Quantity  int     `json:"quantity" validate:"required,min=1,max=99"`
	UnitPrice int64   `json:"unit_price" validate:"required,min=1"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=255"`
}

type orderCreateRequest struct {
	TenantID          string             `json:"tenant_id" validate:"required,uuid"`
	CheckoutCounterID *string            `json:"checkout_counter_id,omitempty" validate:"omitempty,uuid"`
	OrderType         string             `json:"order_type" validate:"required"`
	CustomerName      *string            `json:"customer_name,omitempty" validate:"omitempty,max=120"`
	TableNumber       *string            `json:"table_number,omitempty" validate:"omitempty,max=16"`
	Notes             *string            `json:"notes,omitempty" validate:"omitempty,max=255"`
	Items             []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (req orderCreateRequest) toInput(actor orders.Actor) (orders.CreateInput, error) {
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tenant id")
	}

	orderType, err := enums.ParseOrderType(req.OrderType)
	if err != nil {
		return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order type")
	}

	input := orders.CreateInput{
		TenantID:     tenantID,
		OrderType:    orderType,
		CustomerName: req.CustomerName,
		TableNumber:  req.TableNumber,
		Notes:        req.Notes,
		Actor:        actor,
	}

	if req.CheckoutCounterID != nil {
		counterID, err := uuid.Parse(*req.CheckoutCounterID)
		if err != nil {
			return orders.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout counter id")
		}
		input.CheckoutCounterID = &counterID
	}

	for _, item := range req.Items {
		input.Items = append(input.Items, orders.CreateItemInput{
			MenuName:  item.MenuName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Notes:     item.Notes,
		})
	}
	return input, nil
}

// OrderCreate rings up a new order for a tenant.
func OrderCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(orders.Actor{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderGet resolves an order by uuid or by its human-readable number.
func OrderGet(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		identifier := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if identifier == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order id is required"))
			return
		}

		if id, parseErr := uuid.Parse(identifier); parseErr == nil {
			order, err := svc.Get(r.Context(), id)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, order)
			return
		}

		order, err := svc.GetByNumber(r.Context(), identifier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderList returns a filtered, paginated order page.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
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

		filters := orders.Filters{Query: strings.TrimSpace(r.URL.Query().Get("q"))}

		if filters.TenantID, err = validators.ParseQueryUUID(r, "tenant_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, parseErr := enums.ParseOrderStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
			status, parseErr := enums.ParseOrderPaymentStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment status filter"))
				return
			}
			filters.PaymentStatus = &status
		}
		if filters.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: limit, Offset: offset}
		rows, total, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, types.Page{Items: rows, Total: total, Limit: params.Normalize().Limit, Offset: params.Normalize().Offset})
	}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderUpdateStatus moves an order one lifecycle step forward.
func OrderUpdateStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload orderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID: orderID,
			Status:  status,
			Actor:   orders.Actor{UserID: userID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type orderCancelRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// OrderCancel cancels a non-terminal order, refunding settled payments.
func OrderCancel(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The cancel body is optional.
		var payload orderCancelRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.Cancel(r.Context(), orders.CancelInput{
			OrderID: orderID,
			Reason:  payload.Reason,
			Actor:   orders.Actor{UserID: userID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
