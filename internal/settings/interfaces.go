package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
)

// Repository defines persistence operations for the settings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByKey(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	UpdateValue(ctx context.Context, key, value string) error
}
