package documents

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRevisionRequestRequesterRoundTrip(t *testing.T) {
	docID := uuid.New()
	approver := ApproverRequester{UserID: uuid.New(), ApprovalID: uuid.New(), Level: 2}
	rr := NewRevisionRequest(docID, approver, "Please fix the date", 0, SignatureSnapshot{}, time.Now())
	if rr.ApprovalLevel != 2 || rr.ApprovalID == nil || *rr.ApprovalID != approver.ApprovalID {
		t.Fatalf("approver columns: level=%d approval_id=%v", rr.ApprovalLevel, rr.ApprovalID)
	}
	got, ok := rr.Requester().(ApproverRequester)
	if !ok || got != approver {
		t.Fatalf("requester: want=%+v got=%+v", approver, rr.Requester())
	}

	admin := AdminRequester{AdminID: uuid.New()}
	rr = NewRevisionRequest(docID, admin, "Rejected by administrator during validation", 1, SignatureSnapshot{}, time.Now())
	if rr.ApprovalLevel != AdministrativeLevel || rr.ApprovalID != nil {
		t.Fatalf("admin columns: level=%d approval_id=%v", rr.ApprovalLevel, rr.ApprovalID)
	}
	if _, ok := rr.Requester().(AdminRequester); !ok {
		t.Fatalf("requester: want AdminRequester got=%T", rr.Requester())
	}
}

func TestNewSignatureSnapshotSkipsDeletedAndCopies(t *testing.T) {
	sig := "data:image/png;base64,AAAA"
	now := time.Now()
	doc := &Document{ID: uuid.New(), CreatedByID: uuid.New(), PreparedBySignature: &sig, PreparedBySignedAt: &now, RevisionCycle: 3}
	a1 := &Approval{ID: uuid.New(), Level: 1, ApproverID: uuid.New(), Status: ApprovalApproved, SignatureImage: &sig, SignedAt: &now}
	a2 := &Approval{ID: uuid.New(), Level: 2, ApproverID: uuid.New(), Status: ApprovalPending, IsDeleted: true}

	snap := NewSignatureSnapshot(doc, []*Approval{a1, a2}, map[uuid.UUID]string{a1.ApproverID: "Alice A"}, now)
	if snap.Version != SignatureSnapshotVersion || snap.RevisionCycle != 3 {
		t.Fatalf("header: %+v", snap)
	}
	if len(snap.Approvals) != 1 || snap.Approvals[0].ApproverName != "Alice A" {
		t.Fatalf("approvals: %+v", snap.Approvals)
	}
	*a1.SignatureImage = "changed"
	if *snap.Approvals[0].SignatureImage != "data:image/png;base64,AAAA" {
		t.Fatalf("snapshot must not alias approval fields")
	}
}

func TestParseDocumentStatus(t *testing.T) {
	if s, ok := ParseDocumentStatus(" waiting_validation "); !ok || s != StatusWaitingValidation {
		t.Fatalf("parse: got=%q ok=%v", s, ok)
	}
	if _, ok := ParseDocumentStatus("PUBLISHED"); ok {
		t.Fatalf("unknown status accepted")
	}
}
