package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
)

// Well-known setting keys seeded by the migrations.
const (
	KeyTenantSharePercent   = "revenue.tenant_share_percent"
	KeyOperatorSharePercent = "revenue.operator_share_percent"
	KeyPlatformSharePercent = "revenue.platform_share_percent"
	KeyQRExpiryMinutes      = "qr.expiry_minutes"
	KeyCourtName            = "court.name"
)

// splitSumTolerance absorbs float drift when validating that the three
// revenue percentages add up to 100.
const splitSumTolerance = 0.01

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SplitPercentages bundles the three revenue sharing percentages.
type SplitPercentages struct {
	TenantShare   float64 `json:"tenant_share"`
	OperatorShare float64 `json:"operator_share"`
	PlatformShare float64 `json:"platform_share"`
}

// Service exposes typed access to the settings table with a read-through cache.
type Service interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	GetString(ctx context.Context, key string) (string, error)
	GetNumber(ctx context.Context, key string) (float64, error)
	GetBool(ctx context.Context, key string) (bool, error)
	GetJSON(ctx context.Context, key string, dst any) error
	List(ctx context.Context) ([]models.Setting, error)
	Update(ctx context.Context, key, value string) (*models.Setting, error)
	GetSplitPercentages(ctx context.Context) (SplitPercentages, error)
	UpdateSplitPercentages(ctx context.Context, split SplitPercentages) error
	InvalidateCache()
}

type service struct {
	repo  Repository
	tx    txRunner
	cache Cache
}

// NewService builds a settings service with the required dependencies.
func NewService(repo Repository, tx txRunner, cache Cache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &service{repo: repo, tx: tx, cache: cache}, nil
}

func (s *service) Get(ctx context.Context, key string) (*models.Setting, error) {
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}

	s.cache.Put(key, *setting)
	return setting, nil
}

func (s *service) GetString(ctx context.Context, key string) (string, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func (s *service) GetNumber(ctx context.Context, key string) (float64, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("setting %q is not a number", key))
	}
	return parsed, nil
}

func (s *service) GetBool(ctx context.Context, key string) (bool, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	parsed, err := strconv.ParseBool(setting.Value)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("setting %q is not a boolean", key))
	}
	return parsed, nil
}

func (s *service) GetJSON(ctx context.Context, key string, dst any) error {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(setting.Value), dst); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("setting %q is not valid json", key))
	}
	return nil
}

func (s *service) List(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settings")
	}
	return rows, nil
}

func (s *service) Update(ctx context.Context, key, value string) (*models.Setting, error) {
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key required")
	}

	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load setting")
	}

	if err := validateValue(setting.Type, value); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateValue(ctx, key, value); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update setting")
	}

	s.cache.Invalidate(key)
	setting.Value = value
	return setting, nil
}

func (s *service) GetSplitPercentages(ctx context.Context) (SplitPercentages, error) {
	tenant, err := s.GetNumber(ctx, KeyTenantSharePercent)
	if err != nil {
		return SplitPercentages{}, err
	}
	operator, err := s.GetNumber(ctx, KeyOperatorSharePercent)
	if err != nil {
		return SplitPercentages{}, err
	}
	platform, err := s.GetNumber(ctx, KeyPlatformSharePercent)
	if err != nil {
		return SplitPercentages{}, err
	}
	return SplitPercentages{
		TenantShare:   tenant,
		OperatorShare: operator,
		PlatformShare: platform,
	}, nil
}

// UpdateSplitPercentages writes the three revenue percentages in one
// transaction. The trio must sum to 100 within tolerance; individual
// updates through Update skip this check on purpose so operators can
// stage values one at a time.
func (s *service) UpdateSplitPercentages(ctx context.Context, split SplitPercentages) error {
	if split.TenantShare < 0 || split.OperatorShare < 0 || split.PlatformShare < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentages must not be negative")
	}
	sum := split.TenantShare + split.OperatorShare + split.PlatformShare
	if math.Abs(sum-100) > splitSumTolerance {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("percentages must sum to 100, got %.2f", sum))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		values := map[string]float64{
			KeyTenantSharePercent:   split.TenantShare,
			KeyOperatorSharePercent: split.OperatorShare,
			KeyPlatformSharePercent: split.PlatformShare,
		}
		for key, value := range values {
			if err := repo.UpdateValue(ctx, key, strconv.FormatFloat(value, 'f', -1, 64)); err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("setting %q not found", key))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update split percentage")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(KeyTenantSharePercent)
	s.cache.Invalidate(KeyOperatorSharePercent)
	s.cache.Invalidate(KeyPlatformSharePercent)
	return nil
}

func (s *service) InvalidateCache() {
	s.cache.InvalidateAll()
}

func validateValue(settingType enums.SettingType, value string) error {
	switch settingType {
	case enums.SettingTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "value must be a number")
		}
	case enums.SettingTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "value must be a boolean")
		}
	case enums.SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "value must be valid json")
		}
	}
	return nil
}
