package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Order represents a customer order placed at a checkout counter.
type Order struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string                   `gorm:"column:order_number;uniqueIndex;not null"`
	TenantID          uuid.UUID                `gorm:"column:tenant_id;type:uuid;not null;index"`
	CheckoutCounterID *uuid.UUID               `gorm:"column:checkout_counter_id;type:uuid"`
	OrderType         enums.OrderType          `gorm:"column:order_type;type:text;not null;default:'takeaway'"`
	Status            enums.OrderStatus        `gorm:"column:status;type:text;not null;default:'pending';index"`
	PaymentStatus     enums.OrderPaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	TotalAmount       int64                    `gorm:"column:total_amount;not null"`
	CustomerName      *string                  `gorm:"column:customer_name"`
	TableNumber       *string                  `gorm:"column:table_number"`
	Notes             *string                  `gorm:"column:notes"`
	Items             []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments          []Payment                `gorm:"foreignKey:OrderID"`
	PaidAt            *time.Time               `gorm:"column:paid_at"`
	ReadyAt           *time.Time               `gorm:"column:ready_at"`
	CompletedAt       *time.Time               `gorm:"column:completed_at"`
	CancelledAt       *time.Time               `gorm:"column:cancelled_at"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
