package documents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/data/repos/testutil"
	types "github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

func TestDocumentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewDocumentRepo(db, testutil.Logger(t))
	creator := testutil.SeedUser(t, ctx, tx, "creator", types.RoleUser)

	created, err := repo.Create(dbc, []*types.Document{{
		DocumentNumber: "DOC-" + uuid.NewString()[:8],
		Title:          "Safety procedure",
		CreatedByID:    creator.ID,
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	doc := created[0]
	if doc.Status != types.StatusDraft || doc.ApprovalStatus != types.ApprovalNotStarted {
		t.Fatalf("Create defaults: status=%s approval=%s", doc.Status, doc.ApprovalStatus)
	}

	locked, err := repo.LockByID(dbc, doc.ID)
	if err != nil {
		t.Fatalf("LockByID: %v", err)
	}
	if locked == nil || locked.ID != doc.ID {
		t.Fatalf("LockByID: unexpected row %+v", locked)
	}

	if err := repo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"status":         string(types.StatusInReview),
		"revision_cycle": 2,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.StatusInReview || got.RevisionCycle != 2 {
		t.Fatalf("UpdateFields: status=%s cycle=%d", got.Status, got.RevisionCycle)
	}

	byNumber, err := repo.GetByNumber(dbc, doc.DocumentNumber)
	if err != nil || byNumber == nil || byNumber.ID != doc.ID {
		t.Fatalf("GetByNumber: row=%+v err=%v", byNumber, err)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: row=%+v err=%v", missing, err)
	}
}

func TestApprovalRepoExcludesDeleted(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewApprovalRepo(db, testutil.Logger(t))
	creator := testutil.SeedUser(t, ctx, tx, "creator", types.RoleUser)
	doc := testutil.SeedDocument(t, ctx, tx, testutil.DocumentSeed{CreatorID: creator.ID, Status: types.StatusInReview})

	late := testutil.SeedApproval(t, ctx, tx, doc, uuid.New(), 1, time.Second)
	early := testutil.SeedApproval(t, ctx, tx, doc, uuid.New(), 1, 0)
	second := testutil.SeedApproval(t, ctx, tx, doc, uuid.New(), 2, 0)
	gone := testutil.SeedApproval(t, ctx, tx, doc, uuid.New(), 1, -time.Second)

	if err := repo.SoftDelete(dbc, gone.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	active, err := repo.ListActiveByDocument(dbc, doc.ID)
	if err != nil {
		t.Fatalf("ListActiveByDocument: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("active count: want=3 got=%d", len(active))
	}
	if active[0].ID != early.ID || active[1].ID != late.ID || active[2].ID != second.ID {
		t.Fatalf("order: got %v,%v,%v", active[0].ID, active[1].ID, active[2].ID)
	}

	deleted, err := repo.GetByID(dbc, gone.ID)
	if err != nil || deleted == nil || !deleted.IsDeleted {
		t.Fatalf("GetByID deleted: row=%+v err=%v", deleted, err)
	}

	testutil.MarkSigned(t, ctx, tx, early)
	n, err := repo.UpdateActiveByDocument(dbc, doc.ID, types.ResetApprovalFields(1))
	if err != nil {
		t.Fatalf("UpdateActiveByDocument: %v", err)
	}
	if n != 3 {
		t.Fatalf("rows reset: want=3 got=%d", n)
	}
	after, err := repo.GetByID(dbc, early.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.SignedAt != nil || after.SignatureImage != nil || after.Status != types.ApprovalPending || after.RevisionCycle != 1 {
		t.Fatalf("reset not applied: %+v", after)
	}
	untouched, _ := repo.GetByID(dbc, gone.ID)
	if untouched.RevisionCycle != 0 {
		t.Fatalf("deleted approval must not be reset: cycle=%d", untouched.RevisionCycle)
	}
}

func TestRevisionRequestRepoRoundTripsSnapshot(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewRevisionRequestRepo(db, testutil.Logger(t))
	creator := testutil.SeedUser(t, ctx, tx, "creator", types.RoleUser)
	doc := testutil.SeedDocument(t, ctx, tx, testutil.DocumentSeed{CreatorID: creator.ID, Status: types.StatusOnApproval, CreatorSigned: true})
	a := testutil.SeedApproval(t, ctx, tx, doc, uuid.New(), 1, 0)
	testutil.MarkSigned(t, ctx, tx, a)

	now := time.Now().UTC()
	snap := types.NewSignatureSnapshot(doc, []*types.Approval{a}, map[uuid.UUID]string{a.ApproverID: "Alice Tester"}, now)
	rr := types.NewRevisionRequest(doc.ID, types.ApproverRequester{UserID: a.ApproverID, ApprovalID: a.ID, Level: 1}, "Please fix the date", 0, snap, now)
	if _, err := repo.Create(dbc, rr); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.ListByDocument(dbc, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows: want=1 got=%d", len(rows))
	}
	got := rows[0].Snapshot()
	if got.Version != types.SignatureSnapshotVersion || len(got.Approvals) != 1 {
		t.Fatalf("snapshot: %+v", got)
	}
	if got.Approvals[0].ApproverName != "Alice Tester" || got.Approvals[0].SignedAt == nil {
		t.Fatalf("snapshot approval: %+v", got.Approvals[0])
	}
	if req, ok := rows[0].Requester().(types.ApproverRequester); !ok || req.ApprovalID != a.ID {
		t.Fatalf("requester: %#v", rows[0].Requester())
	}
}

func TestActivityRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewActivityRepo(db, testutil.Logger(t))
	docID := uuid.New()
	_, err := repo.Create(dbc, []*types.ActivityLog{
		{DocumentID: docID, ActorID: uuid.New(), Action: types.ActivitySubmitted, CreatedAt: time.Now().UTC().Add(-time.Minute)},
		{DocumentID: docID, ActorID: uuid.New(), Action: types.ActivitySigned},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	rows, err := repo.ListByDocument(dbc, docID, 1)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(rows) != 1 || rows[0].Action != types.ActivitySigned {
		t.Fatalf("latest activity: %+v", rows)
	}
}
