package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Setting is a typed key/value configuration row. Value is always stored as
// text; Type declares how callers should decode it.
type Setting struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Key         string            `gorm:"column:key;uniqueIndex;not null"`
	Value       string            `gorm:"column:value;not null"`
	Type        enums.SettingType `gorm:"column:type;type:text;not null;default:'string'"`
	Description *string           `gorm:"column:description"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
