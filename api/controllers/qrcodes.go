package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/api/responses"
	"github.com/sajikita/foodcourt-backend/api/validators"
	"github.com/sajikita/foodcourt-backend/internal/qrcodes"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/logger"
)

// QRGenerate issues (or re-issues) the pickup token for an order.
func QRGenerate(svc qrcodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "qrcodes service unavailable"))
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

		code, err := svc.Generate(r.Context(), qrcodes.GenerateInput{
			OrderID: orderID,
			Actor:   qrcodes.Actor{UserID: userID, Role: role},
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, code)
	}
}

// QRGet resolves a QR code by token or by order uuid.
func QRGet(svc qrcodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "qrcodes service unavailable"))
			return
		}

		identifier := strings.TrimSpace(chi.URLParam(r, "identifier"))
		if identifier == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "qr identifier is required"))
			return
		}

		if orderID, parseErr := uuid.Parse(identifier); parseErr == nil {
			code, err := svc.GetByOrder(r.Context(), orderID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, code)
			return
		}

		code, err := svc.GetByToken(r.Context(), identifier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, code)
	}
}

// QRValidate checks a token without consuming it.
func QRValidate(svc qrcodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "qrcodes service unavailable"))
			return
		}

		token := strings.TrimSpace(chi.URLParam(r, "token"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "token is required"))
			return
		}

		code, err := svc.Validate(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"valid":   true,
			"qr_code": code,
		})
	}
}

type qrScanRequest struct {
	Token             string  `json:"token" validate:"required,len=32"`
	CheckoutCounterID *string `json:"checkout_counter_id,omitempty" validate:"omitempty,uuid"`
}

// QRScan redeems a pickup token at the counter. Single use: the first scan
// wins and every later attempt is rejected and audited.
func QRScan(svc qrcodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "qrcodes service unavailable"))
			return
		}

		userID, role, err := requestActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload qrScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		scannedBy := userID.String()
		input := qrcodes.ScanInput{
			Token:     payload.Token,
			ScannedBy: &scannedBy,
			Actor:     qrcodes.Actor{UserID: userID, Role: role},
		}
		if payload.CheckoutCounterID != nil {
			counterID, parseErr := uuid.Parse(*payload.CheckoutCounterID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid checkout counter id"))
				return
			}
			input.CheckoutCounterID = &counterID
		}
		if ip := clientIP(r); ip != "" {
			input.IPAddress = &ip
		}
		if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
			input.UserAgent = &ua
		}

		code, err := svc.Scan(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, code)
	}
}

// QRDeactivate retires an order's active token without redeeming it.
func QRDeactivate(svc qrcodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "qrcodes service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		return strings.TrimSpace(strings.SplitN(forwarded, ",", 2)[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
