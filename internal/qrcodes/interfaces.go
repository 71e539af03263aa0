package qrcodes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Repository defines persistence operations for pickup tokens and their
// scan audit trail.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, code *models.QRCode) (*models.QRCode, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.QRCode, error)
	FindByToken(ctx context.Context, token string) (*models.QRCode, error)
	// UpdateFrom applies updates only while the token still carries the
	// expected status; it reports whether a row was touched.
	UpdateFrom(ctx context.Context, id uuid.UUID, from enums.QRStatus, updates map[string]any) (bool, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateScanEvent(ctx context.Context, event *models.ScanEvent) error

	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}
