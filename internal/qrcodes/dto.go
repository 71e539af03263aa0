package qrcodes

import (
	"time"

	"github.com/google/uuid"
)

// Actor identifies the staff member driving an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// GenerateInput requests a pickup token for an order.
type GenerateInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// ScanInput redeems a pickup token at the counter.
type ScanInput struct {
	Token             string
	ScannedBy         *string
	CheckoutCounterID *uuid.UUID
	IPAddress         *string
	UserAgent         *string
	Actor             Actor
}

// Scan result labels recorded on audit rows and metrics.
const (
	ScanResultSuccess   = "success"
	ScanResultDuplicate = "duplicate"
	ScanResultExpired   = "expired"
	ScanResultInactive  = "inactive"
	ScanResultNotFound  = "not_found"
)

// ScannedEvent is emitted when a token is successfully redeemed.
type ScannedEvent struct {
	QRCodeID  uuid.UUID `json:"qr_code_id"`
	OrderID   uuid.UUID `json:"order_id"`
	ScannedAt time.Time `json:"scanned_at"`
}
