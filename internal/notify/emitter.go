package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

const (
	kindActivity     = "activity"
	kindNotification = "notification"
)

type emitter struct {
	log        *logger.Logger
	dispatcher *Dispatcher
	sink       ActivitySink
	notifier   Notifier
}

// NewEmitter routes activity entries to sink and notifications to notifier,
// both through dispatcher. A nil sink or notifier disables that half.
func NewEmitter(log *logger.Logger, dispatcher *Dispatcher, sink ActivitySink, notifier Notifier) Emitter {
	if dispatcher == nil {
		return Nop()
	}
	return &emitter{
		log:        log.With("service", "NotifyEmitter"),
		dispatcher: dispatcher,
		sink:       sink,
		notifier:   notifier,
	}
}

func (e *emitter) RecordActivity(ctx context.Context, entry ActivityEntry) {
	if e.sink == nil || entry.DocumentID == uuid.Nil {
		return
	}
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	e.dispatcher.Submit(ctx, kindActivity, func(ctx context.Context) error {
		return e.sink.Record(ctx, entry)
	})
}

func (e *emitter) Notify(ctx context.Context, userID uuid.UUID, n Notification) {
	if e.notifier == nil || userID == uuid.Nil {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	e.dispatcher.Submit(ctx, kindNotification, func(ctx context.Context) error {
		return e.notifier.Send(ctx, userID, n)
	})
}
