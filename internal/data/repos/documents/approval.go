package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

// ApprovalRepo reads approvals through types.ActiveApprovals except GetByID,
// which returns deleted rows too so callers can tell "deleted" from "missing".
type ApprovalRepo interface {
	Create(dbc dbctx.Context, rows []*types.Approval) ([]*types.Approval, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Approval, error)
	ListActiveByDocument(dbc dbctx.Context, documentID uuid.UUID) ([]*types.Approval, error)
	ListActiveByApprover(dbc dbctx.Context, approverID uuid.UUID) ([]*types.Approval, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	// UpdateActiveByDocument patches every non-deleted approval of a document.
	UpdateActiveByDocument(dbc dbctx.Context, documentID uuid.UUID, updates map[string]interface{}) (int64, error)

	SoftDelete(dbc dbctx.Context, id uuid.UUID) error
}

type approvalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApprovalRepo(db *gorm.DB, baseLog *logger.Logger) ApprovalRepo {
	return &approvalRepo{db: db, log: baseLog.With("repo", "ApprovalRepo")}
}

func (r *approvalRepo) Create(dbc dbctx.Context, rows []*types.Approval) ([]*types.Approval, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Approval{}, nil
	}
	now := time.Now().UTC()
	for i, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.Status == "" {
			row.Status = types.ApprovalPending
		}
		if row.CreatedAt.IsZero() {
			// keep batch insertion order visible in the (level, created_at) ordering
			row.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
		}
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = row.CreatedAt
		}
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *approvalRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Approval, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row types.Approval
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *approvalRepo) ListActiveByDocument(dbc dbctx.Context, documentID uuid.UUID) ([]*types.Approval, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Approval
	if documentID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Scopes(types.ActiveApprovals).
		Where("document_id = ?", documentID).
		Order("level ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *approvalRepo) ListActiveByApprover(dbc dbctx.Context, approverID uuid.UUID) ([]*types.Approval, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Approval
	if approverID == uuid.Nil {
		return out, nil
	}
	err := t.WithContext(dbc.Ctx).
		Scopes(types.ActiveApprovals).
		Where("approver_id = ?", approverID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *approvalRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Approval{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *approvalRepo) UpdateActiveByDocument(dbc dbctx.Context, documentID uuid.UUID, updates map[string]interface{}) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if documentID == uuid.Nil || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Approval{}).
		Scopes(types.ActiveApprovals).
		Where("document_id = ?", documentID).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *approvalRepo) SoftDelete(dbc dbctx.Context, id uuid.UUID) error {
	return r.UpdateFields(dbc, id, map[string]interface{}{"is_deleted": true})
}
