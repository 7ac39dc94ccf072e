package models

import "time"

// Notification types written by the event pipeline.
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
	NotificationTypeNewPost = "new_post"
)

// Notification represents one in-app notification row (PostgreSQL). Exactly one row
// is created per (event, recipient) pair; rows are never deleted by this service and
// only mutated to mark them read.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"` // recipient
	SenderID  uint      `json:"sender_id"`            // actor
	Type      string    `json:"type" gorm:"size:20;index"`
	PostID    uint      `json:"post_id"`
	CommentID *uint     `json:"comment_id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body" gorm:"size:100"`
	IsRead    bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
