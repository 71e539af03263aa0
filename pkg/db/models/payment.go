package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Payment is an append-only ledger entry against an order. Refunds are
// recorded as counter-entries with a negated amount, never as updates to
// the original row.
type Payment struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	Method            enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Status            enums.PaymentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount            int64               `gorm:"column:amount;not null"`
	AmountPaid        int64               `gorm:"column:amount_paid;not null;default:0"`
	ChangeAmount      int64               `gorm:"column:change_amount;not null;default:0"`
	TransactionRef    string              `gorm:"column:transaction_ref;uniqueIndex;not null"`
	CheckoutCounterID *uuid.UUID          `gorm:"column:checkout_counter_id;type:uuid"`
	Details           json.RawMessage     `gorm:"column:payment_details;type:jsonb"`
	ProcessedBy       *uuid.UUID          `gorm:"column:processed_by;type:uuid"`
	ProcessedAt       *time.Time          `gorm:"column:processed_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
