package events

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openboard/notifier/internal/models"
	"github.com/openboard/notifier/internal/push"
)

var errBoom = errors.New("boom")

type fixture struct {
	users      *fakeUserRepo
	posts      *fakePostRepo
	notifs     *fakeNotificationRepo
	devices    *fakeDeviceRepo
	deliveries *fakeDeliveryLog
	ios        *fakeSender
	handlers   *Handlers
}

// newFixture seeds four users and one post owned by Alice (user 1).
func newFixture() *fixture {
	f := &fixture{
		users: &fakeUserRepo{users: map[uint]*models.User{
			1: {ID: 1, FirstName: "Alice", LastName: "Anders"},
			2: {ID: 2, FirstName: "Bob", LastName: "Briggs"},
			3: {ID: 3, FirstName: "Carol"},
			4: {ID: 4, FirstName: "Dave"},
		}},
		posts: &fakePostRepo{posts: map[uint]*models.Post{
			10: {ID: 10, UserID: 1, Description: "beach day"},
		}},
		notifs:     &fakeNotificationRepo{failFor: map[uint]bool{}},
		devices:    &fakeDeviceRepo{},
		deliveries: &fakeDeliveryLog{},
		ios:        &fakeSender{failFor: map[string]push.Result{}, errFor: map[string]error{}},
	}
	f.handlers = NewHandlers(f.users, f.posts, f.notifs, f.devices, f.deliveries,
		map[string]push.Sender{models.PlatformIOS: f.ios})
	return f
}

func testLog() *zap.Logger { return zap.NewNop() }

func postData(id, userID uint, description string) map[string]interface{} {
	return map[string]interface{}{"id": float64(id), "user_id": float64(userID), "description": description}
}

func likeData(id, postID, userID uint) map[string]interface{} {
	return map[string]interface{}{"id": float64(id), "post_id": float64(postID), "user_id": float64(userID)}
}

func commentData(id, postID, userID uint, content string) map[string]interface{} {
	return map[string]interface{}{"id": float64(id), "post_id": float64(postID), "user_id": float64(userID), "content": content}
}

func TestHandleNewPost_BroadcastWithoutDevices(t *testing.T) {
	f := newFixture()

	result, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "beach day"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.NotificationTypeNewPost, result.Type)
	assert.Equal(t, 3, result.EntriesCreated)
	assert.Equal(t, 0, result.PushSent)

	require.Len(t, f.notifs.created, 3)
	recipients := map[uint]bool{}
	for _, n := range f.notifs.created {
		recipients[n.UserID] = true
		assert.Equal(t, uint(1), n.SenderID)
		assert.Equal(t, models.NotificationTypeNewPost, n.Type)
		assert.Equal(t, uint(10), n.PostID)
		assert.Equal(t, "Alice Anders posted", n.Title)
		assert.Equal(t, "beach day", n.Body)
		assert.Nil(t, n.CommentID)
	}
	assert.Equal(t, map[uint]bool{2: true, 3: true, 4: true}, recipients)
}

func TestHandleNewPost_NoOtherUsersIsNoOp(t *testing.T) {
	f := newFixture()
	f.users.users = map[uint]*models.User{1: {ID: 1, FirstName: "Alice"}}

	result, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "hello"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.EntriesCreated)
	assert.Equal(t, 0, result.PushSent)
	assert.Empty(t, f.notifs.created)
}

func TestHandleNewPost_MissingAuthorFallsBackToSomeone(t *testing.T) {
	f := newFixture()

	result, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(11, 99, "hi"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.NotEmpty(t, f.notifs.created)
	assert.Equal(t, "Someone posted", f.notifs.created[0].Title)
}

func TestHandleNewPost_EmptyDescriptionUsesFallbackBody(t *testing.T) {
	f := newFixture()

	_, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, ""))
	require.NoError(t, err)

	require.NotEmpty(t, f.notifs.created)
	assert.Equal(t, fallbackPostBody, f.notifs.created[0].Body)
}

func TestHandleNewPost_TruncatesLongDescription(t *testing.T) {
	f := newFixture()
	long := strings.Repeat("ab", 75) // 150 characters

	_, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, long))
	require.NoError(t, err)

	require.NotEmpty(t, f.notifs.created)
	assert.Equal(t, long[:100], f.notifs.created[0].Body)
}

func TestHandleNewPost_PushFanOut(t *testing.T) {
	f := newFixture()
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-author", Platform: models.PlatformIOS},
		{UserID: 2, DeviceToken: "d-bob", Platform: models.PlatformIOS},
		{UserID: 3, DeviceToken: "d-carol", Platform: models.PlatformIOS},
	}

	result, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "hi"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.EntriesCreated)
	assert.Equal(t, 2, result.PushSent)
	assert.ElementsMatch(t, []string{"d-bob", "d-carol"}, f.ios.tokens,
		"the author's own device must not be targeted")
}

func TestHandleNewPost_InsertFailureSkipsThatRecipientsPush(t *testing.T) {
	f := newFixture()
	f.notifs.failFor[3] = true
	f.devices.devices = []models.DeviceToken{
		{UserID: 2, DeviceToken: "d-bob", Platform: models.PlatformIOS},
		{UserID: 3, DeviceToken: "d-carol", Platform: models.PlatformIOS},
		{UserID: 4, DeviceToken: "d-dave", Platform: models.PlatformIOS},
	}

	result, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "hi"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.EntriesCreated)
	assert.Equal(t, 2, result.PushSent)
	assert.ElementsMatch(t, []string{"d-bob", "d-dave"}, f.ios.tokens,
		"no push without a durable notification row")
}

func TestHandleNewPost_AllInsertsFailingFailsEvent(t *testing.T) {
	f := newFixture()
	f.notifs.err = errBoom

	_, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "hi"))
	assert.Error(t, err)
	assert.Empty(t, f.ios.tokens)
}

func TestHandleNewPost_DeviceQueryFailureIsBestEffort(t *testing.T) {
	f := newFixture()
	f.devices.err = errBoom

	result, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "hi"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.EntriesCreated)
	assert.Equal(t, 0, result.PushSent)
}

func TestHandleNewPost_RecipientQueryFailureFailsEvent(t *testing.T) {
	f := newFixture()
	f.users.listErr = errBoom

	_, err := f.handlers.HandleNewPost(context.Background(), testLog(), postData(10, 1, "hi"))
	assert.Error(t, err)
	assert.Empty(t, f.notifs.created)
}

func TestHandleNewLike_NotifiesPostOwner(t *testing.T) {
	f := newFixture()
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-alice", Platform: models.PlatformIOS},
	}

	result, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 2))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.NotificationTypeLike, result.Type)
	assert.True(t, result.EntryCreated)
	assert.Equal(t, 1, result.PushSent)

	require.Len(t, f.notifs.created, 1)
	n := f.notifs.created[0]
	assert.Equal(t, uint(1), n.UserID)
	assert.Equal(t, uint(2), n.SenderID)
	assert.Equal(t, models.NotificationTypeLike, n.Type)
	assert.Equal(t, uint(10), n.PostID)
	assert.Equal(t, "Bob Briggs liked your post", n.Title)
	assert.Nil(t, n.CommentID)

	require.Len(t, f.ios.messages, 1)
	assert.Equal(t, models.NotificationTypeLike, f.ios.messages[0].Type)
	assert.Equal(t, []string{"d-alice"}, f.ios.tokens)

	require.Len(t, f.deliveries.records, 1)
	assert.True(t, f.deliveries.records[0].Success)
}

func TestHandleNewLike_SelfLikeIsSkipped(t *testing.T) {
	f := newFixture()

	result, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 1))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.notifs.created)
	assert.Empty(t, f.ios.tokens)
}

func TestHandleNewLike_DeletedPostIsSkipped(t *testing.T) {
	f := newFixture()

	result, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 999, 2))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.notifs.created)
	assert.Empty(t, f.ios.tokens)
}

func TestHandleNewLike_StoreFailureFailsEvent(t *testing.T) {
	f := newFixture()
	f.posts.err = errBoom

	_, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 2))
	assert.Error(t, err)
}

func TestHandleNewLike_PersistFailureAbortsPush(t *testing.T) {
	f := newFixture()
	f.notifs.err = errBoom
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-alice", Platform: models.PlatformIOS},
	}

	_, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 2))
	assert.Error(t, err)
	assert.Empty(t, f.ios.tokens)
}

func TestHandleNewComment_NotifiesPostOwnerWithCommentID(t *testing.T) {
	f := newFixture()
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-alice", Platform: models.PlatformIOS},
	}

	result, err := f.handlers.HandleNewComment(context.Background(), testLog(), commentData(7, 10, 2, "Great shot!"))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, models.NotificationTypeComment, result.Type)
	assert.True(t, result.EntryCreated)
	assert.Equal(t, 1, result.PushSent)

	require.Len(t, f.notifs.created, 1)
	n := f.notifs.created[0]
	assert.Equal(t, uint(1), n.UserID)
	assert.Equal(t, uint(2), n.SenderID)
	require.NotNil(t, n.CommentID)
	assert.Equal(t, uint(7), *n.CommentID)
	assert.Equal(t, "Bob Briggs commented on your post", n.Title)
	assert.Equal(t, "Great shot!", n.Body)

	require.Len(t, f.ios.messages, 1)
	require.NotNil(t, f.ios.messages[0].CommentID)
	assert.Equal(t, uint(7), *f.ios.messages[0].CommentID)
}

func TestHandleNewComment_TruncatesToHundredCharacters(t *testing.T) {
	f := newFixture()
	long := strings.Repeat("x", 101)

	_, err := f.handlers.HandleNewComment(context.Background(), testLog(), commentData(7, 10, 2, long))
	require.NoError(t, err)

	require.Len(t, f.notifs.created, 1)
	assert.Equal(t, long[:100], f.notifs.created[0].Body)
	assert.Len(t, []rune(f.notifs.created[0].Body), 100)
}

func TestHandleNewComment_EmptyContentUsesFallbackBody(t *testing.T) {
	f := newFixture()

	_, err := f.handlers.HandleNewComment(context.Background(), testLog(), commentData(7, 10, 2, "  "))
	require.NoError(t, err)

	require.Len(t, f.notifs.created, 1)
	assert.Equal(t, fallbackCommentBody, f.notifs.created[0].Body)
}

func TestHandleNewComment_SelfCommentIsSkipped(t *testing.T) {
	f := newFixture()

	result, err := f.handlers.HandleNewComment(context.Background(), testLog(), commentData(7, 10, 1, "my own post"))
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Empty(t, f.notifs.created)
}

func TestFanOut_FailedDeviceDoesNotAbortSiblings(t *testing.T) {
	f := newFixture()
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-1", Platform: models.PlatformIOS},
		{UserID: 1, DeviceToken: "d-2", Platform: models.PlatformIOS},
		{UserID: 1, DeviceToken: "d-3", Platform: models.PlatformIOS},
	}
	f.ios.failFor["d-2"] = push.Result{Response: "connection reset"}

	result, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 2))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.PushSent)
	assert.Equal(t, []string{"d-1", "d-2", "d-3"}, f.ios.tokens,
		"every device must get a delivery attempt")

	require.Len(t, f.deliveries.records, 3)
	failures := 0
	for _, r := range f.deliveries.records {
		if !r.Success {
			failures++
			assert.Equal(t, "connection reset", r.Error)
		}
	}
	assert.Equal(t, 1, failures)
}

func TestFanOut_SenderConfigErrorFailsEvent(t *testing.T) {
	f := newFixture()
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-1", Platform: models.PlatformIOS},
	}
	f.ios.errFor["d-1"] = errBoom

	_, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 2))
	assert.Error(t, err)
	// The durable entry still exists; only push was aborted.
	assert.Len(t, f.notifs.created, 1)
}

func TestTruncateBody_CountsRunesNotBytes(t *testing.T) {
	long := strings.Repeat("é", 150)
	assert.Equal(t, strings.Repeat("é", 100), truncateBody(long, "fallback"))
	assert.Equal(t, "fallback", truncateBody("", "fallback"))
	assert.Equal(t, "fallback", truncateBody("   ", "fallback"))
	assert.Equal(t, "short", truncateBody("short", "fallback"))
}

func TestFanOut_RoutesPlatformsToTheirSenders(t *testing.T) {
	f := newFixture()
	android := &fakeSender{}
	f.handlers = NewHandlers(f.users, f.posts, f.notifs, f.devices, f.deliveries,
		map[string]push.Sender{models.PlatformIOS: f.ios, models.PlatformAndroid: android})
	f.devices.devices = []models.DeviceToken{
		{UserID: 1, DeviceToken: "d-ios", Platform: models.PlatformIOS},
		{UserID: 1, DeviceToken: "d-android", Platform: models.PlatformAndroid},
	}

	result, err := f.handlers.HandleNewLike(context.Background(), testLog(), likeData(5, 10, 2))
	require.NoError(t, err)

	assert.Equal(t, 2, result.PushSent)
	assert.Equal(t, []string{"d-ios"}, f.ios.tokens)
	assert.Equal(t, []string{"d-android"}, android.tokens)
}
