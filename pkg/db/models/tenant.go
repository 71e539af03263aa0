package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Tenant represents a food stall operating inside the court. The per-tenant
// percentage overrides are optional; the global settings apply when unset.
type Tenant struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string             `gorm:"column:name;not null"`
	Code            string             `gorm:"column:code;uniqueIndex;not null"`
	Status          enums.TenantStatus `gorm:"column:status;type:text;not null;default:'active'"`
	OwnerName       *string            `gorm:"column:owner_name"`
	Phone           *string            `gorm:"column:phone"`
	SharePercent    *float64           `gorm:"column:share_percent"`
	OperatorPercent *float64           `gorm:"column:operator_percent"`
	PlatformPercent *float64           `gorm:"column:platform_percent"`
	Orders          []Order            `gorm:"foreignKey:TenantID"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
