package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/doccontrol-backend/internal/domain/documents"
	"github.com/yungbote/doccontrol-backend/internal/platform/dbctx"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

// UserRepo is the directory: profiles, roles and saved signatures.
type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)

	GetUserProfile(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	ListProfiles(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	// GetUserSignature returns nil when the user has no saved signature.
	GetUserSignature(dbc dbctx.Context, userID uuid.UUID) (*string, error)

	UpdateSavedSignature(dbc dbctx.Context, userID uuid.UUID, signature *string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	now := time.Now().UTC()
	for _, u := range users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.Role == "" {
			u.Role = types.RoleUser
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
		if u.UpdatedAt.IsZero() {
			u.UpdatedAt = u.CreatedAt
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetUserProfile(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	rows, err := ur.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (ur *userRepo) ListProfiles(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	return ur.GetByIDs(dbc, userIDs)
}

func (ur *userRepo) GetUserSignature(dbc dbctx.Context, userID uuid.UUID) (*string, error) {
	u, err := ur.GetUserProfile(dbc, userID)
	if err != nil || u == nil {
		return nil, err
	}
	if u.SavedSignature == nil || *u.SavedSignature == "" {
		return nil, nil
	}
	sig := *u.SavedSignature
	return &sig, nil
}

func (ur *userRepo) UpdateSavedSignature(dbc dbctx.Context, userID uuid.UUID, signature *string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ur.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"saved_signature": signature,
			"updated_at":      time.Now().UTC(),
		}).Error
}
