package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// QRCode is the single-use pickup token attached to an order.
type QRCode struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID      `gorm:"column:order_id;type:uuid;uniqueIndex;not null"`
	Token             string         `gorm:"column:token;uniqueIndex;not null"`
	Status            enums.QRStatus `gorm:"column:status;type:text;not null;default:'active'"`
	URL               string         `gorm:"column:url;not null"`
	ExpiresAt         time.Time      `gorm:"column:expires_at;not null"`
	ScanCount         int            `gorm:"column:scan_count;not null;default:0"`
	ScannedAt         *time.Time     `gorm:"column:scanned_at"`
	ScannedBy         *uuid.UUID     `gorm:"column:scanned_by;type:uuid"`
	CheckoutCounterID *uuid.UUID     `gorm:"column:checkout_counter_id;type:uuid"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name; gorm's default naming splits the QR
// initialism into q_r_codes.
func (QRCode) TableName() string {
	return "qr_codes"
}
