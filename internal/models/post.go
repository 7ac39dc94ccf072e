package models

import "time"

// Post is a row in the posts table, read-only from the notifier's perspective.
// The main backend owns the full schema; only the columns needed for owner lookup
// and notification composition are mapped here.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index"` // post owner
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
