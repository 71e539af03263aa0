package enums

import "fmt"

// UserRole drives route-level authorization.
type UserRole string

const (
	UserRoleKasir  UserRole = "kasir"
	UserRoleAdmin  UserRole = "admin"
	UserRoleTenant UserRole = "tenant"
)

var validUserRoles = []UserRole{
	UserRoleKasir,
	UserRoleAdmin,
	UserRoleTenant,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
