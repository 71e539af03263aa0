package qrcodes

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

// NewRepository builds a qrcodes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, code *models.QRCode) (*models.QRCode, error) {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.QRCode, error) {
	var code models.QRCode
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindByToken(ctx context.Context, token string) (*models.QRCode, error) {
	var code models.QRCode
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&code).Error
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) UpdateFrom(ctx context.Context, id uuid.UUID, from enums.QRStatus, updates map[string]any) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.QRCode{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&models.QRCode{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateScanEvent(ctx context.Context, event *models.ScanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}
