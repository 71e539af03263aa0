package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Repository defines persistence operations for the payment ledger. It also
// carries the order-side reads and guarded writes the payment flow needs, so
// the package never depends on the orders service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	SuccessfulByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error

	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// UpdateOrderFrom applies updates only while the order still carries the
	// expected status; it reports whether a row was touched.
	UpdateOrderFrom(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error)
	UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderPaymentStatus) error

	Statistics(ctx context.Context, filters StatsFilters) (*Statistics, error)
}
