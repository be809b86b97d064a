package aggregates

import (
	"strings"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/domain/workflow"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

// ReasonNoSavedSignature marks a profile signature request for a user without one.
const ReasonNoSavedSignature = "no-saved-signature"

// SignatureResolver turns a signature source into the image to persist.
type SignatureResolver struct {
	Directory Directory
}

func (r SignatureResolver) Resolve(dbc dbctx.Context, op string, userID uuid.UUID, src workflow.SignatureSource) (string, error) {
	switch s := src.(type) {
	case workflow.InlineSignature:
		img, err := workflow.NormalizeInlineSignature(s.Raw)
		if err != nil {
			return "", domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
		}
		return img, nil
	case workflow.ProfileSignature:
		if r.Directory == nil {
			return "", domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory not configured", nil)
		}
		sig, err := r.Directory.GetUserSignature(dbc, userID)
		if err != nil {
			return "", domainagg.NewError(domainagg.CodeDependencyFailure, op, "directory signature lookup failed", err)
		}
		if sig == nil || strings.TrimSpace(*sig) == "" {
			return "", domainagg.NewReasonError(domainagg.CodeValidation, op, ReasonNoSavedSignature, "no saved signature on profile")
		}
		return strings.TrimSpace(*sig), nil
	case nil:
		return "", domainagg.NewError(domainagg.CodeValidation, op, "missing signature", nil)
	default:
		return "", domainagg.NewError(domainagg.CodeValidation, op, "unsupported signature source", nil)
	}
}
