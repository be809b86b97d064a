package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/doccontrol-backend/internal/domain/documents"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Directory
		&documents.User{},

		// Workflow
		&documents.Document{},
		&documents.Approval{},
		&documents.RevisionRequest{},

		// Audit
		&documents.ActivityLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
