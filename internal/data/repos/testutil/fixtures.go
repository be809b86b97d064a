package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/doccontrol-backend/internal/domain/documents"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, first string, role types.UserRole) *types.User {
	tb.Helper()
	now := time.Now().UTC()
	u := &types.User{
		ID:        uuid.New(),
		Email:     fmt.Sprintf("%s-%s@example.com", first, uuid.NewString()[:8]),
		FirstName: first,
		LastName:  "Tester",
		Position:  "Engineer",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedUserWithSignature(tb testing.TB, ctx context.Context, tx *gorm.DB, first, signature string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, first, types.RoleUser)
	if err := tx.WithContext(ctx).Model(u).Update("saved_signature", signature).Error; err != nil {
		tb.Fatalf("seed saved signature: %v", err)
	}
	u.SavedSignature = &signature
	return u
}

// DocumentSeed describes a document to insert. Status defaults to DRAFT.
type DocumentSeed struct {
	CreatorID     uuid.UUID
	Status        types.DocumentStatus
	CreatorSigned bool
	RevisionCycle int
}

func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, seed DocumentSeed) *types.Document {
	tb.Helper()
	now := time.Now().UTC()
	status := seed.Status
	if status == "" {
		status = types.StatusDraft
	}
	d := &types.Document{
		ID:             uuid.New(),
		DocumentNumber: "DOC-" + uuid.NewString()[:8],
		Title:          "Quality manual",
		CreatedByID:    seed.CreatorID,
		Status:         status,
		ApprovalStatus: types.ApprovalNotStarted,
		RevisionCycle:  seed.RevisionCycle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if seed.CreatorSigned {
		sig := "data:image/png;base64,Y3JlYXRvcg=="
		signed := now.Add(-time.Hour)
		d.PreparedBySignature = &sig
		d.PreparedBySignedAt = &signed
	}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	return d
}

// SeedApproval inserts a pending approval; offset shifts created_at so
// same-level ordering is explicit.
func SeedApproval(tb testing.TB, ctx context.Context, tx *gorm.DB, doc *types.Document, approverID uuid.UUID, level int, offset time.Duration) *types.Approval {
	tb.Helper()
	created := doc.CreatedAt.Add(time.Minute + offset)
	a := &types.Approval{
		ID:            uuid.New(),
		DocumentID:    doc.ID,
		Level:         level,
		ApproverID:    approverID,
		Status:        types.ApprovalPending,
		RevisionCycle: doc.RevisionCycle,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed approval: %v", err)
	}
	return a
}

// MarkSigned stamps an approval as signed directly, bypassing the workflow.
func MarkSigned(tb testing.TB, ctx context.Context, tx *gorm.DB, a *types.Approval) {
	tb.Helper()
	now := time.Now().UTC()
	sig := "data:image/png;base64,c2lnbmVk"
	updates := map[string]any{
		"signature_image": sig,
		"signed_at":       now,
		"approved_at":     now,
		"status":          string(types.ApprovalApproved),
	}
	if err := tx.WithContext(ctx).Model(&types.Approval{}).Where("id = ?", a.ID).Updates(updates).Error; err != nil {
		tb.Fatalf("mark signed: %v", err)
	}
	a.SignatureImage = &sig
	a.SignedAt = &now
	a.ApprovedAt = &now
	a.Status = types.ApprovalApproved
}
