package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sajikita/foodcourt-backend/pkg/db"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/metrics"
	"github.com/sajikita/foodcourt-backend/pkg/outbox"
)

const transactionRefAttempts = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent)
}

// Service defines payment ledger operations.
type Service interface {
	Process(ctx context.Context, input ProcessInput) (*models.Payment, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Payment, error)
	Refund(ctx context.Context, input RefundInput) (*models.Payment, error)
	RefundOrderPayments(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID) (bool, error)
	ValidateAmount(ctx context.Context, orderID uuid.UUID, amount int64) (*AmountCheck, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	GetStatistics(ctx context.Context, filters StatsFilters) (*Statistics, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	events  eventEmitter
	metrics *metrics.POSMetrics
	now     func() time.Time
}

// NewService builds a payments service with the required dependencies.
func NewService(repo Repository, tx txRunner, events eventEmitter, posMetrics *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		events:  events,
		metrics: posMetrics,
		now:     time.Now,
	}, nil
}

// ValidatePaymentAmount checks the tendered amount against the order total
// and returns the change due. Any method may overpay; the shortfall case
// fails regardless of method.
func ValidatePaymentAmount(total, amountPaid int64) (int64, error) {
	if amountPaid <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount paid must be positive")
	}
	if amountPaid < total {
		return 0, pkgerrors.New(pkgerrors.CodeInsufficient,
			fmt.Sprintf("amount paid %d is less than order total %d", amountPaid, total))
	}
	return amountPaid - total, nil
}

// ValidateAmount answers whether an amount would settle the order. It never
// fails on a shortfall; the result carries the shortfall instead so the
// cashier UI can show what is still owed.
func (s *service) ValidateAmount(ctx context.Context, orderID uuid.UUID, amount int64) (*AmountCheck, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if amount < order.TotalAmount {
		return &AmountCheck{
			Valid:     false,
			Required:  order.TotalAmount,
			Paid:      amount,
			Shortfall: order.TotalAmount - amount,
		}, nil
	}
	return &AmountCheck{
		Valid:      true,
		OrderTotal: order.TotalAmount,
		Paid:       amount,
		Change:     amount - order.TotalAmount,
	}, nil
}

func (s *service) Process(ctx context.Context, input ProcessInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	var created *models.Payment
	var method enums.PaymentMethod
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order is %s, only pending orders accept payment", order.Status))
		}

		change, err := ValidatePaymentAmount(order.TotalAmount, input.AmountPaid)
		if err != nil {
			return err
		}

		now := s.now()

		// Guarding on the pending status keeps a double tap on the pay button
		// from charging twice.
		applied, err := repo.UpdateOrderFrom(ctx, order.ID, enums.OrderStatusPending, map[string]any{
			"status":         enums.OrderStatusPaid,
			"payment_status": enums.OrderPaymentStatusPaid,
			"paid_at":        now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was paid concurrently")
		}

		actorID := input.Actor.UserID
		var payment *models.Payment
		for attempt := 0; attempt < transactionRefAttempts; attempt++ {
			ref, err := generateTransactionRef(now)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate transaction ref")
			}
			candidate := &models.Payment{
				OrderID:           order.ID,
				Method:            input.Method,
				Status:            enums.PaymentStatusSuccess,
				Amount:            order.TotalAmount,
				AmountPaid:        input.AmountPaid,
				ChangeAmount:      change,
				TransactionRef:    ref,
				CheckoutCounterID: input.CheckoutCounterID,
				Details:           input.Details,
				ProcessedBy:       &actorID,
				ProcessedAt:       &now,
			}
			payment, err = repo.Create(ctx, candidate)
			if err == nil {
				break
			}
			if dbpkg.IsUniqueViolation(err, "ux_payments_transaction_ref") && attempt < transactionRefAttempts-1 {
				continue
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentProcessed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Actor:         buildActor(input.Actor),
			Data: ProcessedEvent{
				PaymentID:      payment.ID,
				OrderID:        order.ID,
				TenantID:       order.TenantID,
				Method:         payment.Method,
				Amount:         payment.Amount,
				AmountPaid:     payment.AmountPaid,
				ChangeAmount:   payment.ChangeAmount,
				TransactionRef: payment.TransactionRef,
			},
		})

		created = payment
		method = payment.Method
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPaymentProcessed(method.String())
	return created, nil
}

// UpdateStatus resolves a pending payment to success or failed. A success
// also marks the order paid; refunds go through the refund operation.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*models.Payment, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Status != enums.PaymentStatusSuccess && input.Status != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeTransition, "payments can only be resolved to success or failed")
	}

	var updated *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindByID(ctx, input.PaymentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeTransition,
				fmt.Sprintf("payment is %s, only pending payments can be resolved", payment.Status))
		}

		if err := repo.UpdateStatus(ctx, payment.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		payment.Status = input.Status

		if input.Status == enums.PaymentStatusSuccess {
			applied, err := repo.UpdateOrderFrom(ctx, payment.OrderID, enums.OrderStatusPending, map[string]any{
				"status":         enums.OrderStatusPaid,
				"payment_status": enums.OrderPaymentStatusPaid,
				"paid_at":        s.now(),
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
			}
			if !applied {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "order was paid concurrently")
			}
		}

		updated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Refund(ctx context.Context, input RefundInput) (*models.Payment, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var counter *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindByID(ctx, input.PaymentID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status != enums.PaymentStatusSuccess {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("payment is %s, only successful payments can be refunded", payment.Status))
		}

		counter, err = s.refundOne(ctx, repo, tx, payment, input.Actor, input.Reason)
		if err != nil {
			return err
		}

		if err := repo.UpdateOrderPaymentStatus(ctx, payment.OrderID, enums.OrderPaymentStatusRefunded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order refunded")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPaymentRefunded()
	return counter, nil
}

// RefundOrderPayments records refund counter-entries for every successful
// payment on the order. It runs inside the caller's transaction, so a cancel
// and its refunds commit or roll back together.
func (s *service) RefundOrderPayments(ctx context.Context, tx *gorm.DB, orderID, actorID uuid.UUID) (bool, error) {
	repo := s.repo.WithTx(tx)

	rows, err := repo.SuccessfulByOrderID(ctx, orderID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order payments")
	}
	if len(rows) == 0 {
		return false, nil
	}

	actor := Actor{UserID: actorID}
	for i := range rows {
		if _, err := s.refundOne(ctx, repo, tx, &rows[i], actor, nil); err != nil {
			return false, err
		}
		s.metrics.IncPaymentRefunded()
	}
	return true, nil
}

// refundOne writes the negated counter-entry and flips the original row to
// refunded. The original keeps its positive amount so the ledger still sums.
// The refund returns what the customer actually tendered, not the order
// total, so an overpayment is handed back in full.
func (s *service) refundOne(ctx context.Context, repo Repository, tx *gorm.DB, original *models.Payment, actor Actor, reason *string) (*models.Payment, error) {
	now := s.now()
	actorID := actor.UserID
	details, err := json.Marshal(refundDetails{
		OriginalPaymentID:   original.ID,
		OriginalTransaction: original.TransactionRef,
		Reason:              reason,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode refund details")
	}
	counter := &models.Payment{
		OrderID:           original.OrderID,
		Method:            original.Method,
		Status:            enums.PaymentStatusRefunded,
		Amount:            -original.AmountPaid,
		AmountPaid:        -original.AmountPaid,
		TransactionRef:    "REFUND-" + original.TransactionRef,
		CheckoutCounterID: original.CheckoutCounterID,
		Details:           details,
		ProcessedBy:       &actorID,
		ProcessedAt:       &now,
	}
	counter, err = repo.Create(ctx, counter)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_payments_transaction_ref") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already refunded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create refund entry")
	}

	if err := repo.UpdateStatus(ctx, original.ID, enums.PaymentStatusRefunded); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment refunded")
	}
	original.Status = enums.PaymentStatusRefunded

	s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventPaymentRefunded,
		AggregateType: enums.AggregatePayment,
		AggregateID:   counter.ID,
		Version:       1,
		Actor:         buildActor(actor),
		Data: RefundedEvent{
			PaymentID:         counter.ID,
			OriginalPaymentID: original.ID,
			OrderID:           original.OrderID,
			Amount:            counter.Amount,
			TransactionRef:    counter.TransactionRef,
			Reason:            reason,
		},
	})
	return counter, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	rows, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order payments")
	}
	return rows, nil
}

func (s *service) GetStatistics(ctx context.Context, filters StatsFilters) (*Statistics, error) {
	stats, err := s.repo.Statistics(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment statistics")
	}
	return stats, nil
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
