package aggregates

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

// CASGuard applies document updates only while the row is still in the
// status the write was decided on.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, domainagg.NewError(domainagg.CodeInternal, "Documents.Workflow.cas", "missing db transaction context", nil)
}

// UpdateDocumentFromStatus applies updates to a document still in the expected status.
// A lost race surfaces as a conflict.
func (g CASGuard) UpdateDocumentFromStatus(dbc dbctx.Context, id uuid.UUID, expected documents.DocumentStatus, updates map[string]any) error {
	const op = "Documents.Workflow.cas"
	db, err := g.baseDB(dbc)
	if err != nil {
		return err
	}
	if id == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing document id", nil)
	}
	res := db.Table(documents.Document{}.TableName()).
		Where("id = ? AND status = ?", id, string(expected)).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	return RequireCASSuccess(res.RowsAffected > 0, "document status changed concurrently")
}

// RequireCASSuccess converts a failed compare-and-set into a typed conflict error.
func RequireCASSuccess(ok bool, message string) error {
	if ok {
		return nil
	}
	return domainagg.NewError(domainagg.CodeConflict, "Documents.Workflow.cas", message, nil)
}
