package workflow

import "github.com/yungbote/doccontrol-backend/internal/domain/documents"

var transitions = map[documents.DocumentStatus][]documents.DocumentStatus{
	documents.StatusDraft: {documents.StatusInReview},
	documents.StatusInReview: {
		documents.StatusOnApproval,
		documents.StatusWaitingValidation,
		documents.StatusApproved,
		documents.StatusOnRevision,
	},
	documents.StatusOnApproval: {
		documents.StatusWaitingValidation,
		documents.StatusApproved,
		documents.StatusOnRevision,
	},
	documents.StatusWaitingValidation: {
		documents.StatusApproved,
		documents.StatusOnRevision,
	},
	documents.StatusApproved: {
		documents.StatusActive,
		documents.StatusObsolete,
	},
	documents.StatusActive:     {documents.StatusObsolete},
	documents.StatusOnRevision: {documents.StatusInReview},
	documents.StatusObsolete:   nil,
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
func CanTransition(from, to documents.DocumentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Signable statuses accept per-level signatures and approver revision requests.
func Signable(s documents.DocumentStatus) bool {
	return s == documents.StatusInReview || s == documents.StatusOnApproval
}

// Submittable statuses accept a creator submission.
func Submittable(s documents.DocumentStatus) bool {
	return s == documents.StatusDraft || s == documents.StatusOnRevision
}
