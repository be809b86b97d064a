package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/doccontrol-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("lost race: want conflict got=%v", err)
	}
}

func TestUpdateDocumentFromStatus(t *testing.T) {
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	creator := repotest.SeedUser(t, ctx, tx, "creator", documents.RoleUser)
	doc := repotest.SeedDocument(t, ctx, tx, repotest.DocumentSeed{CreatorID: creator.ID, Status: documents.StatusInReview})
	guard := NewCASGuard(tx)

	err := guard.UpdateDocumentFromStatus(dbc, doc.ID, documents.StatusDraft, map[string]any{"status": string(documents.StatusApproved)})
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("stale status: want conflict got=%v", err)
	}
	if err := guard.UpdateDocumentFromStatus(dbc, doc.ID, documents.StatusInReview, map[string]any{"status": string(documents.StatusOnApproval)}); err != nil {
		t.Fatalf("matching status: %v", err)
	}
	var got documents.Document
	if err := tx.WithContext(ctx).Where("id = ?", doc.ID).First(&got).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != documents.StatusOnApproval {
		t.Fatalf("status: want=%s got=%s", documents.StatusOnApproval, got.Status)
	}
	if err := guard.UpdateDocumentFromStatus(dbc, uuid.Nil, documents.StatusDraft, nil); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("nil id: want validation got=%v", err)
	}
}
