package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/doccontrol-backend/internal/data/repos"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	Document        repos.DocumentRepo
	Approval        repos.ApprovalRepo
	RevisionRequest repos.RevisionRequestRepo
	Activity        repos.ActivityRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Document:        repos.NewDocumentRepo(db, log),
		Approval:        repos.NewApprovalRepo(db, log),
		RevisionRequest: repos.NewRevisionRequestRepo(db, log),
		Activity:        repos.NewActivityRepo(db, log),
	}
}
