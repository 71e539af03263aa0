package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SuccessfulByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, enums.PaymentStatusSuccess).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) UpdateOrderFrom(ctx context.Context, orderID uuid.UUID, from enums.OrderStatus, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) UpdateOrderPaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderPaymentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Statistics(ctx context.Context, filters StatsFilters) (*Statistics, error) {
	base := r.db.WithContext(ctx).Model(&models.Payment{})
	if filters.TenantID != nil {
		base = base.
			Joins("JOIN orders ON orders.id = payments.order_id").
			Where("orders.tenant_id = ?", *filters.TenantID)
	}
	if filters.Method != nil {
		base = base.Where("payments.method = ?", *filters.Method)
	}
	if filters.CheckoutCounterID != nil {
		base = base.Where("payments.checkout_counter_id = ?", *filters.CheckoutCounterID)
	}
	if filters.From != nil {
		base = base.Where("payments.created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		base = base.Where("payments.created_at < ?", *filters.To)
	}

	var byMethod []MethodTotal
	err := base.Session(&gorm.Session{}).
		Select("payments.method AS method, COUNT(*) AS count, COALESCE(SUM(payments.amount), 0) AS total").
		Where("payments.status = ?", enums.PaymentStatusSuccess).
		Group("payments.method").
		Order("payments.method ASC").
		Scan(&byMethod).Error
	if err != nil {
		return nil, err
	}

	stats := &Statistics{ByMethod: byMethod}
	for _, row := range byMethod {
		stats.TotalCollected += row.Total
		stats.PaymentCount += row.Count
	}

	var refunded int64
	err = base.Session(&gorm.Session{}).
		Where("payments.status = ? AND payments.amount < 0", enums.PaymentStatusRefunded).
		Select("COALESCE(SUM(-payments.amount), 0)").
		Scan(&refunded).Error
	if err != nil {
		return nil, err
	}
	stats.TotalRefunded = refunded
	return stats, nil
}
