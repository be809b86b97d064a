// Package notify delivers post-commit audit entries and user notifications.
// Delivery is asynchronous and best-effort: a failed or dropped event is
// logged and counted, never returned to the caller.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
)

// Notification event names published to users.
const (
	EventSignatureRequested = "DocumentSignatureRequested"
	EventRevisionRequested  = "DocumentRevisionRequested"
	EventDocumentApproved   = "DocumentApproved"
	EventDocumentFinalized  = "DocumentFinalized"
)

// ActivityEntry is one audit record for a committed transition.
type ActivityEntry struct {
	DocumentID uuid.UUID
	ActorID    uuid.UUID
	Action     string
	FromStatus documents.DocumentStatus
	ToStatus   documents.DocumentStatus
	Details    map[string]any
	At         time.Time
}

type Notification struct {
	Event          string         `json:"event"`
	DocumentID     uuid.UUID      `json:"document_id"`
	DocumentNumber string         `json:"document_number,omitempty"`
	Title          string         `json:"title,omitempty"`
	Status         string         `json:"status,omitempty"`
	Message        string         `json:"message,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	At             time.Time      `json:"at"`
}

// Emitter is the fire-and-forget surface used after a transaction commits.
type Emitter interface {
	RecordActivity(ctx context.Context, entry ActivityEntry)
	Notify(ctx context.Context, userID uuid.UUID, n Notification)
}

// ActivitySink persists audit entries and reads them back newest first.
type ActivitySink interface {
	Record(ctx context.Context, entry ActivityEntry) error
	List(ctx context.Context, documentID uuid.UUID, limit int) ([]ActivityEntry, error)
}

// Notifier delivers one notification to one user.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, n Notification) error
	Close() error
}

type nopEmitter struct{}

// Nop returns an Emitter that drops everything.
func Nop() Emitter { return nopEmitter{} }

func (nopEmitter) RecordActivity(context.Context, ActivityEntry)   {}
func (nopEmitter) Notify(context.Context, uuid.UUID, Notification) {}
