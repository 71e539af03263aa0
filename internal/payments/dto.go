package payments

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Actor identifies the staff member driving an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// ProcessInput captures a payment attempt against a pending order.
type ProcessInput struct {
	OrderID           uuid.UUID
	Method            enums.PaymentMethod
	AmountPaid        int64
	CheckoutCounterID *uuid.UUID
	Details           json.RawMessage
	Actor             Actor
}

// AmountCheck is the result of a dry-run amount validation. A shortfall is
// reported in the result rather than as an error.
type AmountCheck struct {
	Valid      bool  `json:"valid"`
	OrderTotal int64 `json:"order_total,omitempty"`
	Paid       int64 `json:"paid"`
	Change     int64 `json:"change"`
	Required   int64 `json:"required,omitempty"`
	Shortfall  int64 `json:"shortfall,omitempty"`
}

// refundDetails is stored on the counter-entry's payment_details column so
// a refund row points back at what it reverses.
type refundDetails struct {
	OriginalPaymentID   uuid.UUID `json:"original_payment_id"`
	OriginalTransaction string    `json:"original_transaction_ref"`
	Reason              *string   `json:"reason,omitempty"`
}

// UpdateStatusInput resolves a pending payment, typically after an async
// e-wallet or QRIS confirmation callback.
type UpdateStatusInput struct {
	PaymentID uuid.UUID
	Status    enums.PaymentStatus
	Actor     Actor
}

// RefundInput requests a refund counter-entry for a successful payment.
type RefundInput struct {
	PaymentID uuid.UUID
	Reason    *string
	Actor     Actor
}

// StatsFilters scope the payment statistics query.
type StatsFilters struct {
	TenantID          *uuid.UUID
	Method            *enums.PaymentMethod
	CheckoutCounterID *uuid.UUID
	From              *time.Time
	To                *time.Time
}

// MethodTotal is one row of the per-method breakdown.
type MethodTotal struct {
	Method enums.PaymentMethod `json:"method"`
	Count  int64               `json:"count"`
	Total  int64               `json:"total"`
}

// Statistics summarises collected and refunded amounts.
type Statistics struct {
	TotalCollected int64         `json:"total_collected"`
	TotalRefunded  int64         `json:"total_refunded"`
	PaymentCount   int64         `json:"payment_count"`
	ByMethod       []MethodTotal `json:"by_method"`
}

// ProcessedEvent is emitted when a payment settles an order.
type ProcessedEvent struct {
	PaymentID      uuid.UUID           `json:"payment_id"`
	OrderID        uuid.UUID           `json:"order_id"`
	TenantID       uuid.UUID           `json:"tenant_id"`
	Method         enums.PaymentMethod `json:"method"`
	Amount         int64               `json:"amount"`
	AmountPaid     int64               `json:"amount_paid"`
	ChangeAmount   int64               `json:"change_amount"`
	TransactionRef string              `json:"transaction_ref"`
}

// RefundedEvent is emitted for every refund counter-entry.
type RefundedEvent struct {
	PaymentID         uuid.UUID `json:"payment_id"`
	OriginalPaymentID uuid.UUID `json:"original_payment_id"`
	OrderID           uuid.UUID `json:"order_id"`
	Amount            int64     `json:"amount"`
	TransactionRef    string    `json:"transaction_ref"`
	Reason            *string   `json:"reason,omitempty"`
}
