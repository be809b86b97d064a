package app

import (
	httpMW "github.com/yungbote/doccontrol-backend/internal/http/middleware"
	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth, metrics),
	}
}
