package repositories

import (
	"context"

	"github.com/openboard/notifier/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the read-only post lookups the pipeline needs
type PostRepository interface {
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// GetPostByID retrieves a post by ID, returning ErrNotFound if it was deleted
// between the change event being emitted and processed.
func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &post, nil
}
