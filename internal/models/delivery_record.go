package models

import "time"

// DeliveryRecord is one per-device push outcome, stored in MongoDB as a best-effort
// audit trail. The pipeline never reads these back; they exist so failed deliveries
// can be inspected (and, later, replayed) without blocking the fan-out.
type DeliveryRecord struct {
	NotificationType string    `bson:"notification_type"`
	RecipientID      uint      `bson:"recipient_id"`
	Platform         string    `bson:"platform"`
	StatusCode       int       `bson:"status_code,omitempty"`
	Success          bool      `bson:"success"`
	Error            string    `bson:"error,omitempty"`
	SentAt           time.Time `bson:"sent_at"`
}
