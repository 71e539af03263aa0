package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/sajikita/foodcourt-backend/pkg/db/models"
)

// Repository is the persistence surface for staff accounts.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
