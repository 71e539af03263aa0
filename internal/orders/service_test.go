package orders

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders        map[uuid.UUID]*models.Order
	items         []models.OrderItem
	updateApplied bool
	updates       map[string]any
	createErr     error
}

func newStubOrdersRepo(rows ...models.Order) *stubOrdersRepo {
	repo := &stubOrdersRepo{orders: map[uuid.UUID]*models.Order{}, updateApplied: true}
	for i := range rows {
		row := rows[i]
		repo.orders[row.ID] = &row
	}
	return repo
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	s.items = append(s.items, items...)
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error) {
	rows := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		rows = append(rows, *order)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubOrdersRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	if !s.updateApplied {
		return false, nil
	}
	order, ok := s.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	s.updates = updates
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if paymentStatus, ok := updates["payment_status"].(enums.OrderPaymentStatus); ok {
		order.PaymentStatus = paymentStatus
	}
	return true, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if _, ok := s.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.updates = updates
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) {
	s.events = append(s.events, event)
}

type stubTenantGate struct {
	tenant *models.Tenant
	err    error
}

func (s *stubTenantGate) RequireActive(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.tenant != nil {
		return s.tenant, nil
	}
	return &models.Tenant{ID: id, Status: enums.TenantStatusActive}, nil
}

type stubRefunder struct {
	called   bool
	refunded bool
	err      error
}

func (s *stubRefunder) RefundOrderPayments(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID) (bool, error) {
	s.called = true
	return s.refunded, s.err
}

func newTestService(t *testing.T, repo *stubOrdersRepo, emitter *stubEmitter, gate *stubTenantGate, refunder *stubRefunder) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, emitter, gate, refunder, nil)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

var orderNumberPattern = regexp.MustCompile(`^ORD-\d{8}-\d{6}$`)

func TestCreateOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter, &stubTenantGate{}, &stubRefunder{})

	order, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		Items: []CreateItemInput{
			{MenuName: "Nasi Goreng", Quantity: 2, UnitPrice: 25000},
			{MenuName: "Es Teh", Quantity: 1, UnitPrice: 5000},
		},
		Actor: Actor{UserID: uuid.New(), Role: "kasir"},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.TotalAmount != 55000 {
		t.Fatalf("expected total 55000, got %d", order.TotalAmount)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %s", order.Status)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", order.PaymentStatus)
	}
	if !orderNumberPattern.MatchString(order.OrderNumber) {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 items persisted, got %d", len(repo.items))
	}
	if repo.items[0].Subtotal != 50000 {
		t.Fatalf("expected item subtotal 50000, got %d", repo.items[0].Subtotal)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderCreated {
		t.Fatalf("expected order_created event, got %+v", emitter.events)
	}
}

func TestCreateOrderRequiresItems(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

	_, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		Actor:    Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderRejectsZeroQuantity(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

	_, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		Items:    []CreateItemInput{{MenuName: "Bakso", Quantity: 0, UnitPrice: 15000}},
		Actor:    Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateOrderInactiveTenant(t *testing.T) {
	gate := &stubTenantGate{err: pkgerrors.New(pkgerrors.CodeStateConflict, "tenant is not active")}
	svc := newTestService(t, newStubOrdersRepo(), &stubEmitter{}, gate, &stubRefunder{})

	_, err := svc.Create(context.Background(), CreateInput{
		TenantID: uuid.New(),
		Items:    []CreateItemInput{{MenuName: "Bakso", Quantity: 1, UnitPrice: 15000}},
		Actor:    Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateStatusForwardStep(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{
		ID:          orderID,
		OrderNumber: "ORD-20250901-000001",
		TenantID:    uuid.New(),
		Status:      enums.OrderStatusPaid,
	})
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter, &stubTenantGate{}, &stubRefunder{})

	order, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusPreparing,
		Actor:   Actor{UserID: uuid.New(), Role: "tenant"},
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if order.Status != enums.OrderStatusPreparing {
		t.Fatalf("expected preparing, got %s", order.Status)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("expected status changed event, got %+v", emitter.events)
	}
}

func TestUpdateStatusStampsReadyAt(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusPreparing})
	svc := newTestService(t, repo, &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

	order, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusReady,
		Actor:   Actor{UserID: uuid.New()},
	})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if order.ReadyAt == nil {
		t.Fatal("expected ready_at to be stamped")
	}
	if _, ok := repo.updates["ready_at"]; !ok {
		t.Fatalf("expected ready_at in updates, got %v", repo.updates)
	}
}

func TestUpdateStatusSkippingStepRejected(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusPending})
	svc := newTestService(t, repo, &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusReady,
		Actor:   Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeTransition {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestUpdateStatusSameStatusRejected(t *testing.T) {
	for _, status := range []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusPreparing,
		enums.OrderStatusCompleted,
	} {
		orderID := uuid.New()
		repo := newStubOrdersRepo(models.Order{ID: orderID, Status: status})
		svc := newTestService(t, repo, &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

		_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
			OrderID: orderID,
			Status:  status,
			Actor:   Actor{UserID: uuid.New()},
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeTransition {
			t.Fatalf("%s -> %s: expected transition error, got %v", status, status, err)
		}
	}
}

func TestUpdateStatusCancelledTargetCancels(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusPending})
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter, &stubTenantGate{}, &stubRefunder{})

	order, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusCancelled,
		Actor:   Actor{UserID: uuid.New(), Role: "kasir"},
	})
	if err != nil {
		t.Fatalf("update status to cancelled: %v", err)
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderCancelled {
		t.Fatalf("expected cancelled event, got %+v", emitter.events)
	}
}

func TestUpdateStatusConcurrentLoser(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusPaid})
	repo.updateApplied = false
	svc := newTestService(t, repo, &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

	_, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID: orderID,
		Status:  enums.OrderStatusPreparing,
		Actor:   Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelPaidOrderRefunds(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{
		ID:            orderID,
		Status:        enums.OrderStatusPaid,
		PaymentStatus: enums.OrderPaymentStatusPaid,
	})
	refunder := &stubRefunder{refunded: true}
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter, &stubTenantGate{}, refunder)

	order, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: orderID,
		Actor:   Actor{UserID: uuid.New(), Role: "kasir"},
	})
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if !refunder.called {
		t.Fatal("expected refunder to be invoked")
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusRefunded {
		t.Fatalf("expected refunded payment status, got %s", order.PaymentStatus)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderCancelled {
		t.Fatalf("expected cancelled event, got %+v", emitter.events)
	}
}

func TestCancelUnpaidOrderSkipsRefund(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusPending})
	refunder := &stubRefunder{}
	svc := newTestService(t, repo, &stubEmitter{}, &stubTenantGate{}, refunder)

	order, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: orderID,
		Actor:   Actor{UserID: uuid.New()},
	})
	if err != nil {
		t.Fatalf("cancel order: %v", err)
	}
	if refunder.called {
		t.Fatal("refunder must not run for unpaid orders")
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if order.PaymentStatus != enums.OrderPaymentStatusRefunded {
		t.Fatalf("expected refunded payment status, got %s", order.PaymentStatus)
	}
}

func TestCancelCompletedOrderRejected(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusCompleted})
	svc := newTestService(t, repo, &stubEmitter{}, &stubTenantGate{}, &stubRefunder{})

	_, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: orderID,
		Actor:   Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeTransition {
		t.Fatalf("expected transition error, got %v", err)
	}
}

func TestCancelAlreadyCancelledRejected(t *testing.T) {
	orderID := uuid.New()
	repo := newStubOrdersRepo(models.Order{ID: orderID, Status: enums.OrderStatusCancelled})
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter, &stubTenantGate{}, &stubRefunder{})

	_, err := svc.Cancel(context.Background(), CancelInput{
		OrderID: orderID,
		Actor:   Actor{UserID: uuid.New()},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeTransition {
		t.Fatalf("expected transition error, got %v", err)
	}
	if len(emitter.events) != 0 {
		t.Fatalf("expected no events on repeat cancel, got %d", len(emitter.events))
	}
}
