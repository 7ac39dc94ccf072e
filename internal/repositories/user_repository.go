package repositories

import (
	"context"

	"github.com/openboard/notifier/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the read-only user lookups the pipeline needs
type UserRepository interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListIDsExcept(ctx context.Context, excludeID uint) ([]uint, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

// ListIDsExcept returns the ids of every user except the given one
func (r *PostgresUserRepository) ListIDsExcept(ctx context.Context, excludeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id <> ?", excludeID).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
