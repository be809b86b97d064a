package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/doccontrol-backend/internal/data/repos"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

type gormActivitySink struct {
	repo repos.ActivityRepo
}

// NewGormActivitySink stores activity in the activity_log table.
func NewGormActivitySink(repo repos.ActivityRepo) ActivitySink {
	return &gormActivitySink{repo: repo}
}

func (s *gormActivitySink) Record(ctx context.Context, entry ActivityEntry) error {
	row, err := toActivityLog(entry)
	if err != nil {
		return err
	}
	_, err = s.repo.Create(dbctx.Background(ctx), []*documents.ActivityLog{row})
	return err
}

func (s *gormActivitySink) List(ctx context.Context, documentID uuid.UUID, limit int) ([]ActivityEntry, error) {
	rows, err := s.repo.ListByDocument(dbctx.Background(ctx), documentID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromActivityLog(row))
	}
	return out, nil
}

func toActivityLog(entry ActivityEntry) (*documents.ActivityLog, error) {
	row := &documents.ActivityLog{
		ID:         uuid.New(),
		DocumentID: entry.DocumentID,
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(entry.ToStatus),
		CreatedAt:  entry.At.UTC(),
	}
	if len(entry.Details) > 0 {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			return nil, fmt.Errorf("encode activity details: %w", err)
		}
		row.Details = datatypes.JSON(raw)
	}
	return row, nil
}

func fromActivityLog(row *documents.ActivityLog) ActivityEntry {
	entry := ActivityEntry{
		DocumentID: row.DocumentID,
		ActorID:    row.ActorID,
		Action:     row.Action,
		FromStatus: documents.DocumentStatus(row.FromStatus),
		ToStatus:   documents.DocumentStatus(row.ToStatus),
		At:         row.CreatedAt,
	}
	if len(row.Details) > 0 {
		_ = json.Unmarshal(row.Details, &entry.Details)
	}
	return entry
}
