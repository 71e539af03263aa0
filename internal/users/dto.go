package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
	"github.com/sajikita/foodcourt-backend/pkg/enums"
)

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// UserDTO is the API-facing representation of a staff account.
type UserDTO struct {
	ID       uuid.UUID      `json:"id"`
	Username string         `json:"username"`
	FullName string         `json:"full_name"`
	Role     enums.UserRole `json:"role"`
	TenantID *uuid.UUID     `json:"tenant_id,omitempty"`
}

// LoginResponse bundles the minted JWT and the authenticated account.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

func toUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
		TenantID: user.TenantID,
	}
}
