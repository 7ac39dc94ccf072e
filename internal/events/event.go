package events

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Change-data-capture operations delivered by the database trigger.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// ChangeEvent is one committed row-level mutation, as delivered by the CDC
// trigger. It is consumed once and never persisted here.
type ChangeEvent struct {
	Operation string                 `json:"operation" validate:"required"`
	Table     string                 `json:"table" validate:"required"`
	Data      map[string]interface{} `json:"data"`
	OldData   map[string]interface{} `json:"old_data,omitempty"`
}

// Kind is the closed set of change events the pipeline understands. Anything
// else is KindUnhandled and acknowledged as a deliberate skip.
type Kind int

const (
	KindUnhandled Kind = iota
	KindNewPost
	KindNewLike
	KindNewComment
)

// KindOf maps a source table name to its event kind.
func KindOf(table string) Kind {
	switch table {
	case "posts":
		return KindNewPost
	case "likes":
		return KindNewLike
	case "comments":
		return KindNewComment
	default:
		return KindUnhandled
	}
}

// PostRow is the inserted posts row carried by a new-post event.
type PostRow struct {
	ID          uint   `json:"id" validate:"required"`
	UserID      uint   `json:"user_id" validate:"required"`
	Description string `json:"description"`
}

// LikeRow is the inserted likes row carried by a new-like event.
type LikeRow struct {
	ID     uint `json:"id" validate:"required"`
	PostID uint `json:"post_id" validate:"required"`
	UserID uint `json:"user_id" validate:"required"`
}

// CommentRow is the inserted comments row carried by a new-comment event.
type CommentRow struct {
	ID      uint   `json:"id" validate:"required"`
	PostID  uint   `json:"post_id" validate:"required"`
	UserID  uint   `json:"user_id" validate:"required"`
	Content string `json:"content"`
}

var validate = validator.New()

// decodeRow converts the loose column map of a change event into a typed row
// struct and checks its required fields, so handlers never see undefined values.
func decodeRow(data map[string]interface{}, row interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	if err := json.Unmarshal(raw, row); err != nil {
		return fmt.Errorf("decode event data: %w", err)
	}
	if err := validate.Struct(row); err != nil {
		return fmt.Errorf("missing required fields: %w", err)
	}
	return nil
}
