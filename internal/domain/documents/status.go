package documents

import "strings"

// DocumentStatus is the lifecycle state of a controlled document.
type DocumentStatus string

const (
	StatusDraft             DocumentStatus = "DRAFT"
	StatusInReview          DocumentStatus = "IN_REVIEW"
	StatusOnApproval        DocumentStatus = "ON_APPROVAL"
	StatusWaitingValidation DocumentStatus = "WAITING_VALIDATION"
	StatusApproved          DocumentStatus = "APPROVED"
	StatusActive            DocumentStatus = "ACTIVE"
	StatusOnRevision        DocumentStatus = "ON_REVISION"
	StatusObsolete          DocumentStatus = "OBSOLETE"
)

func (s DocumentStatus) String() string { return string(s) }

// ParseDocumentStatus accepts any casing and surrounding whitespace.
func ParseDocumentStatus(raw string) (DocumentStatus, bool) {
	s := DocumentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusDraft, StatusInReview, StatusOnApproval, StatusWaitingValidation,
		StatusApproved, StatusActive, StatusOnRevision, StatusObsolete:
		return s, true
	}
	return "", false
}

// ApprovalAggregateStatus is derived from the document's active approvals.
type ApprovalAggregateStatus string

const (
	ApprovalNotStarted    ApprovalAggregateStatus = "NOT_STARTED"
	ApprovalInProgress    ApprovalAggregateStatus = "IN_PROGRESS"
	ApprovalComplete      ApprovalAggregateStatus = "APPROVED"
	ApprovalNeedsRevision ApprovalAggregateStatus = "NEEDS_REVISION"
)

// ApprovalStatus is the state of a single signature slot.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// UserRole is the directory role consulted for administrative actions.
type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

func (r UserRole) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(string(r)), string(RoleAdmin))
}
