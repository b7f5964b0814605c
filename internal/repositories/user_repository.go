package repositories

import (
	"context"

	"github.com/SAP-F-2025/form-service/internal/models"
)

// UserRepository resolves form owners. The form service does not own user data.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}
