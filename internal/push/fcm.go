package push

import (
	"context"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// FCMMessenger is the slice of the Firebase messaging client the sender uses,
// kept small so tests can substitute a fake.
type FCMMessenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender delivers pushes to android devices through Firebase Cloud
// Messaging. It implements Sender with the same isolation rules as the APNs
// client: per-device failures are reported, never returned as errors.
type FCMSender struct {
	messenger FCMMessenger
	log       *zap.Logger
}

// NewFCMSender creates an FCMSender backed by the given messaging client.
func NewFCMSender(messenger FCMMessenger, log *zap.Logger) *FCMSender {
	return &FCMSender{messenger: messenger, log: log}
}

// Send delivers one message to one android device token.
func (s *FCMSender) Send(ctx context.Context, deviceToken string, msg *Message) (Result, error) {
	data := map[string]string{
		"post_id":           strconv.FormatUint(uint64(msg.PostID), 10),
		"notification_type": msg.Type,
	}
	if msg.CommentID != nil {
		data["comment_id"] = strconv.FormatUint(uint64(*msg.CommentID), 10)
	}

	id, err := s.messenger.Send(ctx, &messaging.Message{
		Token: deviceToken,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		},
	})
	if err != nil {
		return Result{Response: err.Error()}, nil
	}
	return Result{Success: true, Response: id}, nil
}
