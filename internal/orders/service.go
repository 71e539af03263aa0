package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sajikita/foodcourt-backend/pkg/db"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/metrics"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

const orderNumberAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent)
}

type tenantGate interface {
	RequireActive(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

// Refunder records refund counter-entries for an order's payments. The
// payments service satisfies this.
type Refunder interface {
	RefundOrderPayments(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID) (bool, error)
}

// Service defines order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) (*models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	events  eventEmitter
	tenants tenantGate
	refunds Refunder
	metrics *metrics.POSMetrics
	now     func() time.Time
}

// NewService builds an orders service with the required dependencies.
func NewService(repo Repository, tx txRunner, events eventEmitter, tenants tenantGate, refunds Refunder, posMetrics *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if tenants == nil {
		return nil, fmt.Errorf("tenant gate required")
	}
	if refunds == nil {
		return nil, fmt.Errorf("refunder required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		events:  events,
		tenants: tenants,
		refunds: refunds,
		metrics: posMetrics,
		now:     time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	orderType := input.OrderType
	if orderType == "" {
		orderType = enums.OrderTypeTakeaway
	}
	if !orderType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}

	var total int64
	items := make([]models.OrderItem, 0, len(input.Items))
	for i, item := range input.Items {
		name := strings.TrimSpace(item.MenuName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: menu name required", i))
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: quantity must be positive", i))
		}
		if item.UnitPrice < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: unit price must not be negative", i))
		}
		subtotal := item.UnitPrice * int64(item.Quantity)
		total += subtotal
		items = append(items, models.OrderItem{
			MenuName:  name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  subtotal,
			Notes:     item.Notes,
		})
	}

	if _, err := s.tenants.RequireActive(ctx, input.TenantID); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var order *models.Order
		for attempt := 0; attempt < orderNumberAttempts; attempt++ {
			orderNumber, err := generateOrderNumber(s.now())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate order number")
			}
			candidate := &models.Order{
				OrderNumber:       orderNumber,
				TenantID:          input.TenantID,
				CheckoutCounterID: input.CheckoutCounterID,
				OrderType:         orderType,
				Status:            enums.OrderStatusPending,
				PaymentStatus:     enums.OrderPaymentStatusUnpaid,
				TotalAmount:       total,
				CustomerName:      input.CustomerName,
				TableNumber:       input.TableNumber,
				Notes:             input.Notes,
			}
			order, err = repo.Create(ctx, candidate)
			if err == nil {
				break
			}
			if dbpkg.IsUniqueViolation(err, "ux_orders_order_number") && attempt < orderNumberAttempts-1 {
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		order.Items = items

		s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: CreatedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				TenantID:    order.TenantID,
				OrderType:   order.OrderType,
				TotalAmount: order.TotalAmount,
				ItemCount:   len(items),
				Status:      order.Status,
			},
		})

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncOrderCreated()
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Order, int64, error) {
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if input.Status == enums.OrderStatusCancelled {
		// Cancellation carries refund side effects, so it always goes
		// through the cancel path.
		return s.Cancel(ctx, CancelInput{OrderID: input.OrderID, Actor: input.Actor})
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeTransition,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		now := s.now()
		updates := map[string]any{"status": input.Status}
		switch input.Status {
		case enums.OrderStatusReady:
			updates["ready_at"] = now
		case enums.OrderStatusCompleted:
			updates["completed_at"] = now
		}

		// The WHERE clause on the old status makes concurrent updates lose
		// cleanly instead of double-applying.
		applied, err := repo.UpdateStatusFrom(ctx, order.ID, order.Status, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently, retry")
		}

		s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: StatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				TenantID:    order.TenantID,
				FromStatus:  order.Status,
				ToStatus:    input.Status,
			},
		})

		order.Status = input.Status
		switch input.Status {
		case enums.OrderStatusReady:
			order.ReadyAt = &now
		case enums.OrderStatusCompleted:
			order.CompletedAt = &now
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeTransition, "order is already cancelled")
		}
		if order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeTransition, "completed orders cannot be cancelled")
		}

		refunded := false
		if order.PaymentStatus == enums.OrderPaymentStatusPaid {
			refunded, err = s.refunds.RefundOrderPayments(ctx, tx, order.ID, input.Actor.UserID)
			if err != nil {
				return err
			}
		}

		now := s.now()
		updates := map[string]any{
			"status":         enums.OrderStatusCancelled,
			"payment_status": enums.OrderPaymentStatusRefunded,
			"cancelled_at":   now,
		}

		applied, err := repo.UpdateStatusFrom(ctx, order.ID, order.Status, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed concurrently, retry")
		}

		s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: CancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				TenantID:    order.TenantID,
				FromStatus:  order.Status,
				Refunded:    refunded,
				Reason:      input.Reason,
			},
		})

		order.Status = enums.OrderStatusCancelled
		order.PaymentStatus = enums.OrderPaymentStatusRefunded
		order.CancelledAt = &now
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func buildActor(actor Actor) *outbox.ActorRef {
	if actor.UserID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{
		UserID: actor.UserID,
		Role:   actor.Role,
	}
}
