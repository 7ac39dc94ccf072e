package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventTimeout bounds all store and push work for one event.
const eventTimeout = 30 * time.Second

// Dispatcher validates incoming change events and routes them to the matching
// handler. It is the outermost recovery boundary: nothing escapes Process as a
// panic or error — failures are folded into the Result.
type Dispatcher struct {
	handlers *Handlers
	log      *zap.Logger
}

// NewDispatcher creates a Dispatcher over the given handler set.
func NewDispatcher(handlers *Handlers, log *zap.Logger) *Dispatcher {
	return &Dispatcher{handlers: handlers, log: log}
}

// Process handles one change event to completion. Non-insert operations and
// unknown tables are acknowledged as skips with no side effects.
func (d *Dispatcher) Process(ctx context.Context, event *ChangeEvent) (result Result) {
	log := d.log.With(
		zap.String("correlation_id", uuid.NewString()),
		zap.String("operation", event.Operation),
		zap.String("table", event.Table),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", zap.Any("panic", r))
			result = Result{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if event.Operation != OpInsert {
		log.Debug("ignoring non-insert operation")
		return skipped("operation not handled")
	}

	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()

	var err error
	switch KindOf(event.Table) {
	case KindNewPost:
		result, err = d.handlers.HandleNewPost(ctx, log, event.Data)
	case KindNewLike:
		result, err = d.handlers.HandleNewLike(ctx, log, event.Data)
	case KindNewComment:
		result, err = d.handlers.HandleNewComment(ctx, log, event.Data)
	default:
		log.Debug("ignoring unhandled table")
		return skipped("table not handled")
	}
	if err != nil {
		log.Error("event processing failed", zap.Error(err))
		return Result{Success: false, Error: err.Error()}
	}

	log.Info("event processed",
		zap.String("type", result.Type),
		zap.Bool("skipped", result.Skipped),
		zap.Int("entries_created", result.EntriesCreated),
		zap.Bool("entry_created", result.EntryCreated),
		zap.Int("push_sent", result.PushSent),
	)
	return result
}
