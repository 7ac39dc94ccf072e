package models

import "time"

// Device platforms.
const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

// DeviceToken is one registered push destination for a user. A user may register
// multiple devices; each is targeted independently during a fan-out.
type DeviceToken struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index"`
	DeviceToken string    `json:"device_token" gorm:"uniqueIndex"`
	Platform    string    `json:"platform" gorm:"size:10"` // ios or android
	CreatedAt   time.Time `json:"created_at"`
}

// RegisterDeviceRequest defines the request body for registering a device
type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token" validate:"required"`
	Platform    string `json:"platform" validate:"required,oneof=ios android"`
}
