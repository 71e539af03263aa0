package tenants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

// Repository defines persistence operations for the tenants table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindByCode(ctx context.Context, code string) (*models.Tenant, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Tenant, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
