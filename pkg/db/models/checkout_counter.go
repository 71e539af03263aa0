package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckoutCounter is a physical cashier station in the court.
type CheckoutCounter struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	Location  *string   `gorm:"column:location"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
