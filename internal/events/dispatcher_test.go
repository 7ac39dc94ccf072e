package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(f *fixture) *Dispatcher {
	return NewDispatcher(f.handlers, testLog())
}

func TestDispatcher_SkipsNonInsertOperations(t *testing.T) {
	f := newFixture()
	d := newTestDispatcher(f)

	for _, op := range []string{OpUpdate, OpDelete} {
		result := d.Process(context.Background(), &ChangeEvent{
			Operation: op,
			Table:     "posts",
			Data:      postData(10, 1, "hi"),
		})
		assert.True(t, result.Success, op)
		assert.True(t, result.Skipped, op)
	}
	assert.Empty(t, f.notifs.created, "non-insert operations must have no side effects")
	assert.Empty(t, f.ios.tokens)
}

func TestDispatcher_SkipsUnknownTables(t *testing.T) {
	f := newFixture()
	d := newTestDispatcher(f)

	result := d.Process(context.Background(), &ChangeEvent{
		Operation: OpInsert,
		Table:     "follows",
		Data:      map[string]interface{}{"id": float64(1)},
	})

	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Empty(t, f.notifs.created)
}

func TestDispatcher_RoutesByTable(t *testing.T) {
	f := newFixture()
	d := newTestDispatcher(f)

	result := d.Process(context.Background(), &ChangeEvent{
		Operation: OpInsert,
		Table:     "likes",
		Data:      likeData(5, 10, 2),
	})

	assert.True(t, result.Success)
	assert.Equal(t, "like", result.Type)
	assert.True(t, result.EntryCreated)
	require.Len(t, f.notifs.created, 1)
}

func TestDispatcher_RejectsPayloadMissingRequiredFields(t *testing.T) {
	f := newFixture()
	d := newTestDispatcher(f)

	result := d.Process(context.Background(), &ChangeEvent{
		Operation: OpInsert,
		Table:     "likes",
		Data:      map[string]interface{}{"id": float64(5)}, // no post_id, no user_id
	})

	assert.True(t, result.Success)
	assert.True(t, result.Skipped)
	assert.Contains(t, result.Message, "invalid like payload")
	assert.Empty(t, f.notifs.created)
}

func TestDispatcher_ConvertsHandlerErrorsToResult(t *testing.T) {
	f := newFixture()
	f.posts.err = errBoom
	d := newTestDispatcher(f)

	result := d.Process(context.Background(), &ChangeEvent{
		Operation: OpInsert,
		Table:     "likes",
		Data:      likeData(5, 10, 2),
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestDispatcher_RecoversHandlerPanics(t *testing.T) {
	f := newFixture()
	// A nil post repository makes the like handler panic.
	f.handlers = NewHandlers(f.users, nil, f.notifs, f.devices, f.deliveries, nil)
	d := newTestDispatcher(f)

	result := d.Process(context.Background(), &ChangeEvent{
		Operation: OpInsert,
		Table:     "likes",
		Data:      likeData(5, 10, 2),
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "panic")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNewPost, KindOf("posts"))
	assert.Equal(t, KindNewLike, KindOf("likes"))
	assert.Equal(t, KindNewComment, KindOf("comments"))
	assert.Equal(t, KindUnhandled, KindOf("users"))
	assert.Equal(t, KindUnhandled, KindOf(""))
}
