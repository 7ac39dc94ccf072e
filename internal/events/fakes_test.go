package events

import (
	"context"
	"sort"

	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
	"github.com/openboard/notifier/internal/repositories"
)

type fakeUserRepo struct {
	users   map[uint]*models.User
	listErr error
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserRepo) ListIDsExcept(_ context.Context, excludeID uint) ([]uint, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var ids []uint
	for id := range f.users {
		if id != excludeID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakePostRepo struct {
	posts map[uint]*models.Post
	err   error
}

func (f *fakePostRepo) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	if post, ok := f.posts[id]; ok {
		return post, nil
	}
	return nil, repositories.ErrNotFound
}

type fakeNotificationRepo struct {
	created []*models.Notification
	failFor map[uint]bool // recipient ids whose inserts fail
	err     error         // fails every insert
}

func (f *fakeNotificationRepo) CreateNotification(_ context.Context, n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	if f.failFor[n.UserID] {
		return errBoom
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotificationRepo) GetByRecipientID(context.Context, uint, int, int) ([]models.Notification, int64, error) {
	return nil, 0, nil
}
func (f *fakeNotificationRepo) GetUnreadCount(context.Context, uint) (int64, error) { return 0, nil }
func (f *fakeNotificationRepo) MarkAsRead(context.Context, uint, uint) error        { return nil }
func (f *fakeNotificationRepo) MarkAllAsRead(context.Context, uint) error           { return nil }

type fakeDeviceRepo struct {
	devices []models.DeviceToken
	err     error
}

func (f *fakeDeviceRepo) ListByUser(_ context.Context, userID uint, platforms []string) ([]models.DeviceToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.DeviceToken
	for _, d := range f.devices {
		if d.UserID == userID && contains(platforms, d.Platform) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeviceRepo) ListExcludingUser(_ context.Context, excludeUserID uint, platforms []string) ([]models.DeviceToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.DeviceToken
	for _, d := range f.devices {
		if d.UserID != excludeUserID && contains(platforms, d.Platform) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeviceRepo) RegisterDevice(context.Context, *models.DeviceToken) error { return nil }
func (f *fakeDeviceRepo) DeleteByToken(context.Context, uint, string) error         { return nil }

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

type fakeDeliveryLog struct {
	records []models.DeliveryRecord
}

func (f *fakeDeliveryLog) RecordDeliveries(_ context.Context, records []models.DeliveryRecord) error {
	f.records = append(f.records, records...)
	return nil
}

// fakeSender scripts per-device outcomes. Unscripted tokens succeed.
type fakeSender struct {
	failFor  map[string]push.Result // tokens that fail with the given result
	errFor   map[string]error       // tokens that return a sender error
	messages []*push.Message
	tokens   []string
}

func (f *fakeSender) Send(_ context.Context, deviceToken string, msg *push.Message) (push.Result, error) {
	f.tokens = append(f.tokens, deviceToken)
	f.messages = append(f.messages, msg)
	if err, ok := f.errFor[deviceToken]; ok {
		return push.Result{}, err
	}
	if result, ok := f.failFor[deviceToken]; ok {
		return result, nil
	}
	return push.Result{Success: true, StatusCode: 200}, nil
}
