package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/doccontrol-backend/internal/http/handlers"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Document *httpH.DocumentHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services, clients Clients) Handlers {
	log.Info("Wiring handlers...")
	checkers := map[string]httpH.HealthCheckFunc{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if clients.Redis != nil {
		checkers["redis"] = func(ctx context.Context) error {
			return clients.Redis.Ping(ctx).Err()
		}
	}
	return Handlers{
		Health:   httpH.NewHealthHandler(checkers),
		Document: httpH.NewDocumentHandler(log, services.Workflow),
	}
}
