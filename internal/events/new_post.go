package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
)

// HandleNewPost broadcasts a new post to every other user. Notification rows
// are created for all of them, device or not, so the in-app feed stays complete
// even when push is unavailable.
func (h *Handlers) HandleNewPost(ctx context.Context, log *zap.Logger, data map[string]interface{}) (Result, error) {
	var row PostRow
	if err := decodeRow(data, &row); err != nil {
		log.Warn("rejecting post event", zap.Error(err))
		return skipped("invalid post payload: " + err.Error()), nil
	}

	authorName := h.displayName(ctx, row.UserID)

	recipients, err := h.users.ListIDsExcept(ctx, row.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("list recipients: %w", err)
	}
	if len(recipients) == 0 {
		return Result{Success: true, Type: models.NotificationTypeNewPost}, nil
	}

	title := authorName + " posted"
	body := truncateBody(row.Description, fallbackPostBody)

	created := 0
	failed := make(map[uint]bool)
	for _, recipientID := range recipients {
		notification := &models.Notification{
			UserID:   recipientID,
			SenderID: row.UserID,
			Type:     models.NotificationTypeNewPost,
			PostID:   row.ID,
			Title:    title,
			Body:     body,
		}
		if err := h.notifications.CreateNotification(ctx, notification); err != nil {
			// Skip this recipient's push but keep going for the rest.
			log.Error("failed to persist notification",
				zap.Uint("recipient_id", recipientID), zap.Error(err))
			failed[recipientID] = true
			continue
		}
		created++
	}
	if created == 0 {
		return Result{}, fmt.Errorf("persist notifications: all %d inserts failed", len(recipients))
	}

	devices, err := h.devices.ListExcludingUser(ctx, row.UserID, h.platforms)
	if err != nil {
		// Entries are in place; push is best-effort from here.
		log.Warn("failed to query devices for broadcast", zap.Error(err))
		devices = nil
	}

	eligible := devices[:0]
	for _, device := range devices {
		if !failed[device.UserID] {
			eligible = append(eligible, device)
		}
	}

	sent, err := h.fanOut(ctx, log, eligible, &push.Message{
		Title:  title,
		Body:   body,
		PostID: row.ID,
		Type:   models.NotificationTypeNewPost,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{
		Success:        true,
		Type:           models.NotificationTypeNewPost,
		EntriesCreated: created,
		PushSent:       sent,
	}, nil
}
