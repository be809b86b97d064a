package aggregates

import (
	"github.com/google/uuid"

	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
)

// Directory is the identity lookup consulted inside workflow transactions.
// repos.UserRepo satisfies it.
type Directory interface {
	GetUserSignature(dbc dbctx.Context, userID uuid.UUID) (*string, error)
	GetUserProfile(dbc dbctx.Context, userID uuid.UUID) (*documents.User, error)
	ListProfiles(dbc dbctx.Context, userIDs []uuid.UUID) ([]*documents.User, error)
}
