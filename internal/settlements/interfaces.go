package settlements

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

// Repository defines persistence operations for monthly settlements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, settlement *models.Settlement) (*models.Settlement, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	FindByTenantAndPeriod(ctx context.Context, tenantID uuid.UUID, period string) (*models.Settlement, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Settlement, int64, error)
	// UpdateStatusFrom applies updates only while the row still carries the
	// expected status; it reports whether a row was touched.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.SettlementStatus, updates map[string]any) (bool, error)

	// RevenueByTenant aggregates successful payments in [from, to) per tenant.
	RevenueByTenant(ctx context.Context, from, to time.Time) ([]TenantRevenue, error)
	FindTenants(ctx context.Context, ids []uuid.UUID) ([]models.Tenant, error)
}
