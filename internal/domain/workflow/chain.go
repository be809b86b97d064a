package workflow

import (
	"bytes"
	"sort"

	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
)

// BlockReason explains why an approval may not be signed yet.
type BlockReason string

const (
	BlockCreatorNotSigned BlockReason = "creator-not-signed"
	BlockPreviousUnsigned BlockReason = "previous-unsigned"
)

// Readiness is the result of evaluating one approval against the chain.
// The zero value means ready.
type Readiness struct {
	Reason BlockReason
}

func (r Readiness) OK() bool { return r.Reason == "" }

func Ready() Readiness { return Readiness{} }

func Blocked(reason BlockReason) Readiness { return Readiness{Reason: reason} }

// ReadyToSign decides whether target may be signed now.
// The creator signs first; then every active approval earlier in signing
// order (see Ordered) must already carry a signature.
func ReadyToSign(doc *documents.Document, approvals []*documents.Approval, target *documents.Approval) Readiness {
	if doc == nil || doc.PreparedBySignedAt == nil {
		return Blocked(BlockCreatorNotSigned)
	}
	if target == nil {
		return Blocked(BlockPreviousUnsigned)
	}
	for _, a := range Active(approvals) {
		if a.ID == target.ID {
			continue
		}
		if precedes(a, target) && a.SignedAt == nil {
			return Blocked(BlockPreviousUnsigned)
		}
	}
	return Ready()
}

// ChainState summarizes the active approvals.
type ChainState struct {
	AllSigned   bool
	AllApproved bool
	Signed      int
	Total       int
}

// Aggregate scans the active approvals.
func Aggregate(approvals []*documents.Approval) ChainState {
	st := ChainState{AllSigned: true, AllApproved: true}
	for _, a := range Active(approvals) {
		st.Total++
		if a.SignedAt != nil {
			st.Signed++
		} else {
			st.AllSigned = false
		}
		if a.Status != documents.ApprovalApproved {
			st.AllApproved = false
		}
	}
	return st
}

// DeriveApprovalStatus maps the chain state onto the document's aggregate field.
func DeriveApprovalStatus(approvals []*documents.Approval) documents.ApprovalAggregateStatus {
	st := Aggregate(approvals)
	switch {
	case st.Total == 0:
		return documents.ApprovalNotStarted
	case st.AllApproved:
		return documents.ApprovalComplete
	case st.Signed > 0:
		return documents.ApprovalInProgress
	default:
		return documents.ApprovalNotStarted
	}
}

// Active drops soft-deleted and nil approvals.
func Active(approvals []*documents.Approval) []*documents.Approval {
	out := make([]*documents.Approval, 0, len(approvals))
	for _, a := range approvals {
		if a == nil || a.IsDeleted {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Ordered returns the active approvals in signing order: level, then
// creation time, then id for exact timestamp ties.
func Ordered(approvals []*documents.Approval) []*documents.Approval {
	out := Active(approvals)
	sort.SliceStable(out, func(i, j int) bool { return precedes(out[i], out[j]) })
	return out
}

func precedes(a, b *documents.Approval) bool {
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// NextSigner returns the first unsigned approval that is ready to sign, or nil.
func NextSigner(doc *documents.Document, approvals []*documents.Approval) *documents.Approval {
	for _, a := range Ordered(approvals) {
		if a.SignedAt != nil {
			continue
		}
		if ReadyToSign(doc, approvals, a).OK() {
			return a
		}
		return nil
	}
	return nil
}
