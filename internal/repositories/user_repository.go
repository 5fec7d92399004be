package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
)

// UserRepository interface for user account operations
type UserRepository interface {
	// Create inserts the user together with whichever profile association is set.
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error

	// GetByID returns the user with Student and Teacher preloaded. Served from cache when possible.
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
