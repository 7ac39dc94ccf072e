package repositories

import (
	"context"

	"github.com/openboard/notifier/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for device token operations
type DeviceTokenRepository interface {
	ListByUser(ctx context.Context, userID uint, platforms []string) ([]models.DeviceToken, error)
	ListExcludingUser(ctx context.Context, excludeUserID uint, platforms []string) ([]models.DeviceToken, error)
	RegisterDevice(ctx context.Context, device *models.DeviceToken) error
	DeleteByToken(ctx context.Context, userID uint, deviceToken string) error
}

type postgresDeviceTokenRepository struct {
	db *gorm.DB
}

func NewPostgresDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &postgresDeviceTokenRepository{db: db}
}

// ListByUser returns the registered devices of one user on the given platforms
func (r *postgresDeviceTokenRepository) ListByUser(ctx context.Context, userID uint, platforms []string) ([]models.DeviceToken, error) {
	var devices []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND platform IN ?", userID, platforms).
		Find(&devices).Error
	return devices, err
}

// ListExcludingUser returns every registered device except those of the given
// user, used for the new-post broadcast.
func (r *postgresDeviceTokenRepository) ListExcludingUser(ctx context.Context, excludeUserID uint, platforms []string) ([]models.DeviceToken, error) {
	var devices []models.DeviceToken
	err := r.db.WithContext(ctx).
		Where("user_id <> ? AND platform IN ?", excludeUserID, platforms).
		Find(&devices).Error
	return devices, err
}

// RegisterDevice creates or reclaims a device token. A token moving between
// accounts (shared device, reinstall) is reassigned to the registering user.
func (r *postgresDeviceTokenRepository) RegisterDevice(ctx context.Context, device *models.DeviceToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device_token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform"}),
	}).Create(device).Error
}

// DeleteByToken removes a device registration owned by the given user
func (r *postgresDeviceTokenRepository) DeleteByToken(ctx context.Context, userID uint, deviceToken string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND device_token = ?", userID, deviceToken).
		Delete(&models.DeviceToken{}).Error
}
