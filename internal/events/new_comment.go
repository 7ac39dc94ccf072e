package events

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
	"github.com/openboard/notifier/internal/repositories"
)

// HandleNewComment notifies a post's owner about a new comment. Mirrors the
// like handler, carrying the comment id and a preview of the comment text.
func (h *Handlers) HandleNewComment(ctx context.Context, log *zap.Logger, data map[string]interface{}) (Result, error) {
	var row CommentRow
	if err := decodeRow(data, &row); err != nil {
		log.Warn("rejecting comment event", zap.Error(err))
		return skipped("invalid comment payload: " + err.Error()), nil
	}

	post, err := h.posts.GetPostByID(ctx, row.PostID)
	if errors.Is(err, repositories.ErrNotFound) {
		return skipped("post no longer exists"), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("look up post: %w", err)
	}
	if post.UserID == row.UserID {
		return skipped("self-comment"), nil
	}

	commenterName := h.displayName(ctx, row.UserID)
	title := commenterName + " commented on your post"
	body := truncateBody(row.Content, fallbackCommentBody)
	commentID := row.ID

	notification := &models.Notification{
		UserID:    post.UserID,
		SenderID:  row.UserID,
		Type:      models.NotificationTypeComment,
		PostID:    row.PostID,
		CommentID: &commentID,
		Title:     title,
		Body:      body,
	}
	if err := h.notifications.CreateNotification(ctx, notification); err != nil {
		return Result{}, fmt.Errorf("persist notification: %w", err)
	}

	devices, err := h.devices.ListByUser(ctx, post.UserID, h.platforms)
	if err != nil {
		log.Warn("failed to query owner devices", zap.Error(err))
		devices = nil
	}

	sent, err := h.fanOut(ctx, log, devices, &push.Message{
		Title:     title,
		Body:      body,
		PostID:    row.PostID,
		CommentID: &commentID,
		Type:      models.NotificationTypeComment,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Success:      true,
		Type:         models.NotificationTypeComment,
		EntryCreated: true,
		PushSent:     sent,
	}, nil
}
