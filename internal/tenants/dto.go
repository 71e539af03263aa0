package tenants

import (
	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// Filters describe the inputs supported by the tenant list.
type Filters struct {
	Status *enums.TenantStatus
	Query  string
}

// CreateInput captures the fields accepted when registering a tenant.
type CreateInput struct {
	Name      string
	Code      string
	OwnerName *string
	Phone     *string
}

// UpdateInput captures the mutable tenant fields. Nil fields are left as-is.
type UpdateInput struct {
	Name      *string
	OwnerName *string
	Phone     *string
	Status    *enums.TenantStatus
}
