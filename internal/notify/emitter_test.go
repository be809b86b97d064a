package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/data/repos"
	repotest "github.com/yungbote/doccontrol-backend/internal/data/repos/testutil"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []ActivityEntry
	err     error
}

func (s *recordingSink) Record(_ context.Context, entry ActivityEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return s.err
}

func (s *recordingSink) List(context.Context, uuid.UUID, int) ([]ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ActivityEntry(nil), s.entries...), nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, userID uuid.UUID, msg Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[uuid.UUID][]Notification{}
	}
	n.sent[userID] = append(n.sent[userID], msg)
	return n.err
}

func (n *recordingNotifier) Close() error { return nil }

func TestEmitterRoutesActivityAndNotifications(t *testing.T) {
	d := NewDispatcher(logger.Nop(), DispatcherConfig{Workers: 1, QueueSize: 8, Timeout: time.Second}, nil)
	sink := &recordingSink{}
	notifier := &recordingNotifier{}
	e := NewEmitter(logger.Nop(), d, sink, notifier)

	docID := uuid.New()
	userID := uuid.New()
	e.RecordActivity(context.Background(), ActivityEntry{DocumentID: docID, Action: documents.ActivitySigned})
	e.Notify(context.Background(), userID, Notification{Event: EventSignatureRequested, DocumentID: docID})
	e.Notify(context.Background(), uuid.Nil, Notification{Event: EventSignatureRequested})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	if len(sink.entries) != 1 || sink.entries[0].At.IsZero() {
		t.Fatalf("activity: %+v", sink.entries)
	}
	if len(notifier.sent) != 1 || len(notifier.sent[userID]) != 1 {
		t.Fatalf("notifications: %+v", notifier.sent)
	}
}

func TestEmitterSwallowsSinkFailures(t *testing.T) {
	d := NewDispatcher(logger.Nop(), DispatcherConfig{Workers: 1, QueueSize: 8, Timeout: time.Second}, nil)
	sink := &recordingSink{err: errors.New("db down")}
	notifier := &recordingNotifier{err: errors.New("bus down")}
	e := NewEmitter(logger.Nop(), d, sink, notifier)

	e.RecordActivity(context.Background(), ActivityEntry{DocumentID: uuid.New(), Action: documents.ActivityActivated})
	e.Notify(context.Background(), uuid.New(), Notification{Event: EventDocumentApproved})
	if err := d.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("sink attempts: want=1 got=%d", len(sink.entries))
	}
}

func TestNilDispatcherYieldsNop(t *testing.T) {
	e := NewEmitter(logger.Nop(), nil, &recordingSink{}, nil)
	if _, ok := e.(nopEmitter); !ok {
		t.Fatalf("want nop emitter got=%T", e)
	}
}

func TestGormActivitySinkRoundTrip(t *testing.T) {
	db := repotest.DB(t)
	sink := NewGormActivitySink(repos.NewActivityRepo(db, repotest.Logger(t)))
	ctx := context.Background()

	docID := uuid.New()
	actor := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	for i, action := range []string{documents.ActivitySubmitted, documents.ActivitySigned} {
		if err := sink.Record(ctx, ActivityEntry{
			DocumentID: docID,
			ActorID:    actor,
			Action:     action,
			FromStatus: documents.StatusDraft,
			ToStatus:   documents.StatusInReview,
			Details:    map[string]any{"level": i + 1},
			At:         base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("record %s: %v", action, err)
		}
	}

	got, err := sink.List(ctx, docID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries: want=2 got=%d", len(got))
	}
	if got[0].Action != documents.ActivitySigned {
		t.Fatalf("newest first: got=%s", got[0].Action)
	}
	if got[0].ToStatus != documents.StatusInReview || got[0].ActorID != actor {
		t.Fatalf("entry fields: %+v", got[0])
	}
	if lvl, ok := got[0].Details["level"].(float64); !ok || lvl != 2 {
		t.Fatalf("details: %+v", got[0].Details)
	}
}

func TestMongoActivityConversion(t *testing.T) {
	entry := ActivityEntry{
		DocumentID: uuid.New(),
		ActorID:    uuid.New(),
		Action:     documents.ActivityFinalized,
		FromStatus: documents.StatusWaitingValidation,
		ToStatus:   documents.StatusApproved,
		Details:    map[string]any{"category": "QUALITY"},
		At:         time.Now().UTC(),
	}
	back := fromMongoActivity(toMongoActivity(entry))
	if back.DocumentID != entry.DocumentID || back.ActorID != entry.ActorID || back.ToStatus != entry.ToStatus {
		t.Fatalf("conversion lost fields: %+v", back)
	}
}

func TestEncodeMessageAddressesRecipient(t *testing.T) {
	userID := uuid.New()
	raw, err := encodeMessage(userID, Notification{Event: EventRevisionRequested, DocumentNumber: "DOC-7"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Channel != userID.String() || msg.Event != EventRevisionRequested || msg.Data.DocumentNumber != "DOC-7" {
		t.Fatalf("message: %+v", msg)
	}
}
