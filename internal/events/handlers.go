package events

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
	"github.com/openboard/notifier/internal/repositories"
)

// maxBodyLen caps the stored and pushed notification body.
const maxBodyLen = 100

// Fallback strings for empty content and missing users.
const (
	fallbackName        = "Someone"
	fallbackPostBody    = "Shared a new post"
	fallbackCommentBody = "New comment on your post"
	likeBody            = "Tap to view your post"
)

// Handlers turns validated change events into notification rows and push
// deliveries. Notification rows are the durable outcome and are always written
// before any push is attempted; pushes are best-effort.
type Handlers struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	devices       repositories.DeviceTokenRepository
	deliveries    repositories.DeliveryLogRepository // optional, may be nil
	senders       map[string]push.Sender             // keyed by device platform
	platforms     []string
}

// NewHandlers creates the handler set. senders maps device platforms (ios,
// android) to their push senders; platforms with no sender are not fanned out
// to. deliveries may be nil to disable the delivery log.
func NewHandlers(
	users repositories.UserRepository,
	posts repositories.PostRepository,
	notifications repositories.NotificationRepository,
	devices repositories.DeviceTokenRepository,
	deliveries repositories.DeliveryLogRepository,
	senders map[string]push.Sender,
) *Handlers {
	platforms := make([]string, 0, len(senders))
	for platform := range senders {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)

	return &Handlers{
		users:         users,
		posts:         posts,
		notifications: notifications,
		devices:       devices,
		deliveries:    deliveries,
		senders:       senders,
		platforms:     platforms,
	}
}

// displayName resolves a user's name for notification titles. A missing user
// (or a failed lookup) degrades to the fallback rather than failing the event.
func (h *Handlers) displayName(ctx context.Context, userID uint) string {
	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil || user == nil {
		return fallbackName
	}
	if name := user.DisplayName(); name != "" {
		return name
	}
	return fallbackName
}

// truncateBody trims content to maxBodyLen characters, substituting fallback
// for empty content. Counted in runes: the cap is user-visible text length.
func truncateBody(content, fallback string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return fallback
	}
	runes := []rune(content)
	if len(runes) > maxBodyLen {
		return string(runes[:maxBodyLen])
	}
	return content
}

// fanOut attempts delivery to each device in turn. Failures are counted and
// logged per device; only a sender configuration error stops the loop, since
// every remaining attempt with that sender would fail identically. Returns the
// number of successful deliveries.
func (h *Handlers) fanOut(ctx context.Context, log *zap.Logger, devices []models.DeviceToken, msg *push.Message) (int, error) {
	sent := 0
	records := make([]models.DeliveryRecord, 0, len(devices))

	for _, device := range devices {
		sender, ok := h.senders[device.Platform]
		if !ok {
			continue
		}

		result, err := sender.Send(ctx, device.DeviceToken, msg)
		if err != nil {
			h.recordDeliveries(ctx, log, records)
			return sent, err
		}

		records = append(records, models.DeliveryRecord{
			NotificationType: msg.Type,
			RecipientID:      device.UserID,
			Platform:         device.Platform,
			StatusCode:       result.StatusCode,
			Success:          result.Success,
			Error:            deliveryError(result),
			SentAt:           time.Now().UTC(),
		})

		if result.Success {
			sent++
		} else {
			log.Warn("push delivery failed",
				zap.Uint("recipient_id", device.UserID),
				zap.String("platform", device.Platform),
				zap.Int("status", result.StatusCode),
				zap.String("response", result.Response))
		}
	}

	h.recordDeliveries(ctx, log, records)
	return sent, nil
}

func deliveryError(result push.Result) string {
	if result.Success {
		return ""
	}
	return result.Response
}

func (h *Handlers) recordDeliveries(ctx context.Context, log *zap.Logger, records []models.DeliveryRecord) {
	if h.deliveries == nil || len(records) == 0 {
		return
	}
	if err := h.deliveries.RecordDeliveries(ctx, records); err != nil {
		log.Warn("failed to record push deliveries", zap.Error(err))
	}
}
