package documents

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

// RevisionRequestRepo is insert-only.
type RevisionRequestRepo interface {
	Create(dbc dbctx.Context, row *types.RevisionRequest) (*types.RevisionRequest, error)
	ListByDocument(dbc dbctx.Context, documentID uuid.UUID) ([]*types.RevisionRequest, error)
}

type revisionRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRevisionRequestRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRequestRepo {
	return &revisionRequestRepo{db: db, log: baseLog.With("repo", "RevisionRequestRepo")}
}

func (r *revisionRequestRepo) Create(dbc dbctx.Context, row *types.RevisionRequest) (*types.RevisionRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// ListByDocument returns the history newest first.
func (r *revisionRequestRepo) ListByDocument(dbc dbctx.Context, documentID uuid.UUID) ([]*types.RevisionRequest, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.RevisionRequest
	if documentID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Order("revision_cycle DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
