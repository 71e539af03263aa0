package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/api/middleware"
	"github.com/sajikita/foodcourt-backend/internal/orders"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

type stubOrdersService struct {
	created    *models.Order
	createErr  error
	lastCreate orders.CreateInput

	got    *models.Order
	getErr error

	updated   *models.Order
	updateErr error

	cancelled *models.Order
	cancelErr error
}

func (s *stubOrdersService) Create(_ context.Context, input orders.CreateInput) (*models.Order, error) {
	s.lastCreate = input
	return s.created, s.createErr
}

func (s *stubOrdersService) Get(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return s.got, s.getErr
}

func (s *stubOrdersService) GetByNumber(_ context.Context, _ string) (*models.Order, error) {
	return s.got, s.getErr
}

func (s *stubOrdersService) List(_ context.Context, _ pagination.Params, _ orders.Filters) ([]models.Order, int64, error) {
	return nil, 0, nil
}

func (s *stubOrdersService) UpdateStatus(_ context.Context, _ orders.UpdateStatusInput) (*models.Order, error) {
	return s.updated, s.updateErr
}

func (s *stubOrdersService) Cancel(_ context.Context, _ orders.CancelInput) (*models.Order, error) {
	return s.cancelled, s.cancelErr
}

func authedRequest(r *http.Request, userID uuid.UUID, role string) *http.Request {
	ctx := middleware.WithUserID(r.Context(), userID.String())
	ctx = middleware.WithRole(ctx, role)
	return r.WithContext(ctx)
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderCreateSuccess(t *testing.T) {
	tenantID := uuid.New()
	created := &models.Order{ID: uuid.New(), TenantID: tenantID, Status: enums.OrderStatusPending}
	svc := &stubOrdersService{created: created}
	handler := OrderCreate(svc, nil)

	payload := []byte(`{
		"tenant_id": "` + tenantID.String() + `",
		"order_type": "takeaway",
		"items": [{"menu_name": "Nasi Goreng", "quantity": 2, "unit_price": 25000}]
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, uuid.New(), "kasir")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastCreate.TenantID != tenantID {
		t.Fatalf("tenant id not forwarded: %+v", svc.lastCreate)
	}
	if len(svc.lastCreate.Items) != 1 || svc.lastCreate.Items[0].Quantity != 2 {
		t.Fatalf("items not forwarded: %+v", svc.lastCreate.Items)
	}
}

func TestOrderCreateRejectsEmptyItems(t *testing.T) {
	handler := OrderCreate(&stubOrdersService{}, nil)

	payload := []byte(`{"tenant_id": "` + uuid.NewString() + `", "order_type": "takeaway", "items": []}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(payload))
	req = authedRequest(req, uuid.New(), "kasir")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOrderCreateRequiresAuthContext(t *testing.T) {
	handler := OrderCreate(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestOrderGetByNumber(t *testing.T) {
	order := &models.Order{ID: uuid.New(), OrderNumber: "FC-20260901-0001"}
	handler := OrderGet(&stubOrdersService{got: order}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/FC-20260901-0001", nil)
	req = withRouteParam(req, "orderId", "FC-20260901-0001")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data models.Order `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.OrderNumber != "FC-20260901-0001" {
		t.Fatalf("unexpected order: %+v", envelope.Data)
	}
}

func TestOrderUpdateStatusRejectsUnknownStatus(t *testing.T) {
	handler := OrderUpdateStatus(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/x/status", bytes.NewReader([]byte(`{"status":"finished"}`)))
	req = authedRequest(req, uuid.New(), "kasir")
	req = withRouteParam(req, "orderId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestOrderCancelMapsStateConflict(t *testing.T) {
	svc := &stubOrdersService{cancelErr: pkgerrors.New(pkgerrors.CodeStateConflict, "order already completed")}
	handler := OrderCancel(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/x/cancel", nil)
	req = authedRequest(req, uuid.New(), "kasir")
	req = withRouteParam(req, "orderId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
