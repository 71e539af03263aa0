package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a single line on an order. Unit price is captured at order
// time so later menu edits do not rewrite history.
type OrderItem struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	MenuName  string    `gorm:"column:menu_name;not null"`
	Quantity  int       `gorm:"column:quantity;not null"`
	UnitPrice int64     `gorm:"column:unit_price;not null"`
	Subtotal  int64     `gorm:"column:subtotal;not null"`
	Notes     *string   `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
