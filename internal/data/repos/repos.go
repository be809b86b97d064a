package repos

import (
	"github.com/yungbote/doccontrol-backend/internal/data/repos/documents"
	"github.com/yungbote/doccontrol-backend/internal/data/repos/user"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo

type DocumentRepo = documents.DocumentRepo
type ApprovalRepo = documents.ApprovalRepo
type RevisionRequestRepo = documents.RevisionRequestRepo
type ActivityRepo = documents.ActivityRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewDocumentRepo(db *gorm.DB, log *logger.Logger) DocumentRepo {
	return documents.NewDocumentRepo(db, log)
}

func NewApprovalRepo(db *gorm.DB, log *logger.Logger) ApprovalRepo {
	return documents.NewApprovalRepo(db, log)
}

func NewRevisionRequestRepo(db *gorm.DB, log *logger.Logger) RevisionRequestRepo {
	return documents.NewRevisionRequestRepo(db, log)
}

func NewActivityRepo(db *gorm.DB, log *logger.Logger) ActivityRepo {
	return documents.NewActivityRepo(db, log)
}
