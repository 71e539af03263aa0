package tenants

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/sajikita/foodcourt-backend/pkg/db"
	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
	pkgerrors "github.com/sajikita/foodcourt-backend/pkg/errors"
	"github.com/sajikita/foodcourt-backend/pkg/pagination"
)

// Service defines tenant management operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Tenant, int64, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Tenant, error)
	RequireActive(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
}

type service struct {
	repo Repository
}

// NewService builds a tenants service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tenants repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Tenant, error) {
	name := strings.TrimSpace(input.Name)
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name required")
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant code required")
	}

	tenant := &models.Tenant{
		Name:      name,
		Code:      code,
		Status:    enums.TenantStatusActive,
		OwnerName: input.OwnerName,
		Phone:     input.Phone,
	}

	created, err := s.repo.Create(ctx, tenant)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_tenants_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "tenant code already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create tenant")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tenant")
	}
	return tenant, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters Filters) ([]models.Tenant, int64, error) {
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tenants")
	}
	return rows, total, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Tenant, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant name must not be empty")
		}
		updates["name"] = name
	}
	if input.OwnerName != nil {
		updates["owner_name"] = *input.OwnerName
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tenant status")
		}
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tenant")
	}
	return s.Get(ctx, id)
}

// RequireActive loads the tenant and rejects inactive ones. Order intake
// uses this as its gate.
func (s *service) RequireActive(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant.Status != enums.TenantStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "tenant is not active")
	}
	return tenant, nil
}
