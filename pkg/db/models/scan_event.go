package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanEvent is a best-effort audit row written when a QR token is scanned.
type ScanEvent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	QRCodeID  uuid.UUID `gorm:"column:qr_code_id;type:uuid;not null;index"`
	Result    string    `gorm:"column:result;not null"`
	ScannedBy *string   `gorm:"column:scanned_by"`
	IPAddress *string   `gorm:"column:ip_address"`
	UserAgent *string   `gorm:"column:user_agent"`
	ScannedAt time.Time `gorm:"column:scanned_at;autoCreateTime"`
}
