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

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settlements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, settlement *models.Settlement) (*models.Settlement, error) {
	if err := r.db.WithContext(ctx).Create(settlement).Error; err != nil {
		return nil, err
	}
	return settlement, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&settlement).Error
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (r *repository) FindByTenantAndPeriod(ctx context.Context, tenantID uuid.UUID, period string) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND period = ?", tenantID, period).
		First(&settlement).Error
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Settlement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Settlement{})
	if filters.TenantID != nil {
		query = query.Where("tenant_id = ?", *filters.TenantID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Period != "" {
		query = query.Where("period = ?", filters.Period)
	}
	if filters.Year != "" {
		query = query.Where("period LIKE ?", filters.Year+"-%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Settlement
	err := query.
		Order("period DESC, created_at DESC").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from enums.SettlementStatus, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Settlement{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// RevenueByTenant sums successful payments per tenant for the period. Refunds
// flip the original ledger row to refunded, so cancelled revenue drops out of
// the aggregate on its own.
func (r *repository) RevenueByTenant(ctx context.Context, from, to time.Time) ([]TenantRevenue, error) {
	var rows []TenantRevenue
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("orders.tenant_id AS tenant_id, COALESCE(SUM(payments.amount), 0) AS total_revenue, COUNT(DISTINCT payments.order_id) AS order_count").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("payments.status = ? AND payments.processed_at >= ? AND payments.processed_at < ?", enums.PaymentStatusSuccess, from, to).
		Group("orders.tenant_id").
		Order("orders.tenant_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindTenants(ctx context.Context, ids []uuid.UUID) ([]models.Tenant, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Tenant
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
