package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/internal/payments"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
)

type stubPaymentsService struct {
	processed   *models.Payment
	processErr  error
	lastProcess payments.ProcessInput

	refunded  *models.Payment
	refundErr error

	check    *payments.AmountCheck
	checkErr error

	stats     *payments.Statistics
	statsErr  error
	lastStats payments.StatsFilters
}

func (s *stubPaymentsService) Process(_ context.Context, input payments.ProcessInput) (*models.Payment, error) {
	s.lastProcess = input
	return s.processed, s.processErr
}

func (s *stubPaymentsService) UpdateStatus(_ context.Context, _ payments.UpdateStatusInput) (*models.Payment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "not stubbed")
}

func (s *stubPaymentsService) Refund(_ context.Context, _ payments.RefundInput) (*models.Payment, error) {
	return s.refunded, s.refundErr
}

func (s *stubPaymentsService) RefundOrderPayments(_ context.Context, _ *gorm.DB, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (s *stubPaymentsService) ValidateAmount(_ context.Context, _ uuid.UUID, _ int64) (*payments.AmountCheck, error) {
	return s.check, s.checkErr
}

func (s *stubPaymentsService) Get(_ context.Context, _ uuid.UUID) (*models.Payment, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
}

func (s *stubPaymentsService) ListByOrder(_ context.Context, _ uuid.UUID) ([]models.Payment, error) {
	return nil, nil
}

func (s *stubPaymentsService) GetStatistics(_ context.Context, filters payments.StatsFilters) (*payments.Statistics, error) {
	s.lastStats = filters
	return s.stats, s.statsErr
}

func TestPaymentProcessForwardsInput(t *testing.T) {
	orderID := uuid.New()
	svc := &stubPaymentsService{processed: &models.Payment{ID: uuid.New(), OrderID: orderID}}
	handler := PaymentProcess(svc, nil)

	payload := []byte(`{"order_id": "` + orderID.String() + `", "method": "cash", "amount_paid": 50000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(payload))
	req = authedRequest(req, uuid.New(), "kasir")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastProcess.OrderID != orderID || svc.lastProcess.AmountPaid != 50000 {
		t.Fatalf("input not forwarded: %+v", svc.lastProcess)
	}
}

func TestPaymentProcessRejectsUnknownMethod(t *testing.T) {
	handler := PaymentProcess(&stubPaymentsService{}, nil)

	payload := []byte(`{"order_id": "` + uuid.NewString() + `", "method": "crypto", "amount_paid": 50000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(payload))
	req = authedRequest(req, uuid.New(), "kasir")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestPaymentValidateReturnsChange(t *testing.T) {
	svc := &stubPaymentsService{check: &payments.AmountCheck{
		Valid:      true,
		OrderTotal: 30000,
		Paid:       50000,
		Change:     20000,
	}}
	handler := PaymentValidate(svc, nil)

	payload := []byte(`{"order_id": "` + uuid.NewString() + `", "amount": 50000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/validate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data payments.AmountCheck `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !envelope.Data.Valid || envelope.Data.Change != 20000 {
		t.Fatalf("unexpected validation result: %+v", envelope.Data)
	}
}

func TestPaymentValidateShortfallIsNotAnError(t *testing.T) {
	svc := &stubPaymentsService{check: &payments.AmountCheck{
		Valid:     false,
		Required:  30000,
		Paid:      20000,
		Shortfall: 10000,
	}}
	handler := PaymentValidate(svc, nil)

	payload := []byte(`{"order_id": "` + uuid.NewString() + `", "amount": 20000}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/validate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data payments.AmountCheck `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Valid || envelope.Data.Shortfall != 10000 || envelope.Data.Required != 30000 {
		t.Fatalf("unexpected validation result: %+v", envelope.Data)
	}
}

func TestPaymentRefundAllowsEmptyBody(t *testing.T) {
	svc := &stubPaymentsService{refunded: &models.Payment{ID: uuid.New()}}
	handler := PaymentRefund(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/x/refund", nil)
	req = authedRequest(req, uuid.New(), "kasir")
	req = withRouteParam(req, "paymentId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPaymentStatisticsForwardsFilters(t *testing.T) {
	counterID := uuid.New()
	svc := &stubPaymentsService{stats: &payments.Statistics{}}
	handler := PaymentStatistics(svc, nil)

	target := "/api/v1/payments/statistics?payment_method=qris&checkout_counter_id=" + counterID.String()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastStats.Method == nil || *svc.lastStats.Method != enums.PaymentMethodQRIS {
		t.Fatalf("method filter not forwarded: %+v", svc.lastStats)
	}
	if svc.lastStats.CheckoutCounterID == nil || *svc.lastStats.CheckoutCounterID != counterID {
		t.Fatalf("counter filter not forwarded: %+v", svc.lastStats)
	}
}

func TestPaymentStatisticsRejectsInvertedRange(t *testing.T) {
	handler := PaymentStatistics(&stubPaymentsService{stats: &payments.Statistics{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/statistics?date_from=2026-02-01&date_to=2026-01-01", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
