package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/api/responses"
	"github.com/sajikita/foodcourt-backend/api/validators"
	"github.com/sajikita/foodcourt-backend/internal/payments"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
)

type paymentProcessRequest struct {
	OrderID           string          `json:"order_id" validate:"required,uuid"`
	Method            string          `json:"method" validate:"required"`
	AmountPaid        int64           `json:"amount_paid" validate:"required,min=1"`
	CheckoutCounterID *string         `json:"checkout_counter_id,omitempty" validate:"omitempty,uuid"`
	Details           json.RawMessage `json:"payment_details,omitempty"`
}

func (req paymentProcessRequest) toInput(actor payments.Actor) (payments.ProcessInput, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return payments.ProcessInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	method, err := enums.ParsePaymentMethod(req.Method)
	if err != nil {
		return payments.ProcessInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	input := payments.ProcessInput{
		OrderID:    orderID,
		Method:     method,
		AmountPaid: req.AmountPaid,
		Details:    req.Details,
		Actor:      actor,
	}
	if req.CheckoutCounterID != nil {
		counterID, err := uuid.Parse(*req.CheckoutCounterID)
		if err != nil {
			return payments.ProcessInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout counter id")
		}
		input.CheckoutCounterID = &counterID
	}
	return input, nil
}

// PaymentProcess settles a pending order.
func PaymentProcess(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentProcessRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(payments.Actor{UserID: userID, Role: role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Process(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

type paymentValidateRequest struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	Amount  int64  `json:"amount" validate:"required,min=1"`
}

// PaymentValidate dry-runs an amount against the order total so the POS can
// show change, or what is still owed, before committing a payment.
func PaymentValidate(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var payload paymentValidateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		check, err := svc.ValidateAmount(r.Context(), orderID, payload.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, check)
	}
}

// PaymentGet returns one payment by id.
func PaymentGet(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Get(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payment)
	}
}

// PaymentListByOrder returns the payment ledger for one order, refunds included.
func PaymentListByOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

type paymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=success failed"`
}

// PaymentUpdateStatus resolves a pending payment after an async confirmation.
func PaymentUpdateStatus(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload paymentStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParsePaymentStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		payment, err := svc.UpdateStatus(r.Context(), payments.UpdateStatusInput{
			PaymentID: paymentID,
			Status:    status,
			Actor:     payments.Actor{UserID: userID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, payment)
	}
}

type paymentRefundRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// PaymentRefund writes a refund counter-entry for a successful payment.
func PaymentRefund(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// The refund body is optional.
		var payload paymentRefundRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		refund, err := svc.Refund(r.Context(), payments.RefundInput{
			PaymentID: paymentID,
			Reason:    payload.Reason,
			Actor:     payments.Actor{UserID: userID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, refund)
	}
}

// PaymentStatistics returns collection totals, optionally scoped by tenant,
// method, checkout counter and date range.
func PaymentStatistics(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var filters payments.StatsFilters
		var err error

		if filters.TenantID, err = validators.ParseQueryUUID(r, "tenant_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.CheckoutCounterID, err = validators.ParseQueryUUID(r, "checkout_counter_id"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if raw := r.URL.Query().Get("payment_method"); raw != "" {
			method, parseErr := enums.ParsePaymentMethod(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment method filter"))
				return
			}
			filters.Method = &method
		}
		if filters.From, err = validators.ParseQueryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.To, err = validators.ParseQueryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from"))
			return
		}

		stats, err := svc.GetStatistics(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}
