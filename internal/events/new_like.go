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

// HandleNewLike notifies a post's owner that someone liked it. Likes on one's
// own post and likes racing a post deletion are valid no-ops.
func (h *Handlers) HandleNewLike(ctx context.Context, log *zap.Logger, data map[string]interface{}) (Result, error) {
	var row LikeRow
	if err := decodeRow(data, &row); err != nil {
		log.Warn("rejecting like event", zap.Error(err))
		return skipped("invalid like payload: " + err.Error()), nil
	}

	post, err := h.posts.GetPostByID(ctx, row.PostID)
	if errors.Is(err, repositories.ErrNotFound) {
		return skipped("post no longer exists"), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("look up post: %w", err)
	}
	if post.UserID == row.UserID {
		return skipped("self-like"), nil
	}

	likerName := h.displayName(ctx, row.UserID)
	title := likerName + " liked your post"

	notification := &models.Notification{
		UserID:   post.UserID,
		SenderID: row.UserID,
		Type:     models.NotificationTypeLike,
		PostID:   row.PostID,
		Title:    title,
		Body:     likeBody,
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
		Title:  title,
		Body:   likeBody,
		PostID: row.PostID,
		Type:   models.NotificationTypeLike,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Success:      true,
		Type:         models.NotificationTypeLike,
		EntryCreated: true,
		PushSent:     sent,
	}, nil
}
