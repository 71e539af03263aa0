package settlements

import (
	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Actor identifies the staff member driving an operation.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// InitiateInput opens settlements for one calendar month. When TenantID is
// set only that tenant is settled, otherwise every tenant with successful
// payments in the period.
type InitiateInput struct {
	Period      string
	TenantID    *uuid.UUID
	BankAccount *string
	Actor       Actor
}

// ProcessInput marks a pending settlement as paid out.
type ProcessInput struct {
	SettlementID uuid.UUID
	TransferID   *string
	Notes        *string
	Actor        Actor
}

// Filters describe the inputs supported by the settlement list.
type Filters struct {
	TenantID *uuid.UUID
	Status   *enums.SettlementStatus
	Period   string
	Year     string
}

// TenantRevenue is one tenant's successful-payment aggregate for a period.
type TenantRevenue struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	TotalRevenue int64     `json:"total_revenue"`
	OrderCount   int64     `json:"order_count"`
}

// CreatedEvent is emitted once per settlement row opened.
type CreatedEvent struct {
	SettlementID uuid.UUID `json:"settlement_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Period       string    `json:"period"`
	TotalRevenue int64     `json:"total_revenue"`
	OrderCount   int64     `json:"order_count"`
	TenantShare  int64     `json:"tenant_share"`
}

// PaidEvent is emitted when a settlement is marked paid out.
type PaidEvent struct {
	SettlementID uuid.UUID `json:"settlement_id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Period       string    `json:"period"`
	TenantShare  int64     `json:"tenant_share"`
}
