package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Settlement is the monthly payout record for one tenant. Period is the
// calendar month in YYYY-MM form; one row per tenant per period.
type Settlement struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID              `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:idx_settlements_tenant_period"`
	Period        string                 `gorm:"column:period;not null;uniqueIndex:idx_settlements_tenant_period"`
	TotalRevenue  int64                  `gorm:"column:total_revenue;not null"`
	OrderCount    int64                  `gorm:"column:order_count;not null"`
	TenantShare   int64                  `gorm:"column:tenant_share;not null"`
	OperatorShare int64                  `gorm:"column:operator_share;not null"`
	PlatformShare int64                  `gorm:"column:platform_share;not null"`
	Status        enums.SettlementStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	BankAccount   *string                `gorm:"column:bank_account"`
	TransferID    *string                `gorm:"column:transfer_id"`
	SettledAt     *time.Time             `gorm:"column:settled_at"`
	Notes         *string                `gorm:"column:notes"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
