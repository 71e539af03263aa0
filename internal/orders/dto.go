package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Actor identifies the staff member driving an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// CreateItemInput is one requested line on a new order.
type CreateItemInput struct {
	MenuName  string
	Quantity  int
	UnitPrice int64
	Notes     *string
}

// CreateInput captures the fields accepted when a cashier rings up an order.
type CreateInput struct {
	TenantID          uuid.UUID
	CheckoutCounterID *uuid.UUID
	OrderType         enums.OrderType
	CustomerName      *string
	TableNumber       *string
	Notes             *string
	Items             []CreateItemInput
	Actor             Actor
}

// UpdateStatusInput moves an order one step along its lifecycle.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
	Actor   Actor
}

// CancelInput cancels a non-terminal order.
type CancelInput struct {
	OrderID uuid.UUID
	Reason  *string
	Actor   Actor
}

// Filters describe the inputs supported by the order list.
type Filters struct {
	TenantID      *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.OrderPaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
	Query         string
}

// CreatedEvent is emitted when an order is rung up.
type CreatedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	TenantID    uuid.UUID         `json:"tenant_id"`
	OrderType   enums.OrderType   `json:"order_type"`
	TotalAmount int64             `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
	Status      enums.OrderStatus `json:"status"`
}

// StatusChangedEvent is emitted on every lifecycle step.
type StatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	TenantID    uuid.UUID         `json:"tenant_id"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	ToStatus    enums.OrderStatus `json:"to_status"`
}

// CancelledEvent is emitted when an order is cancelled.
type CancelledEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	TenantID    uuid.UUID         `json:"tenant_id"`
	FromStatus  enums.OrderStatus `json:"from_status"`
	Refunded    bool              `json:"refunded"`
	Reason      *string           `json:"reason,omitempty"`
}
