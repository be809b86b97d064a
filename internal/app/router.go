package app

import (
	"github.com/yungbote/doccontrol-backend/internal/http"
	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		Metrics:         metrics,
		ServiceName:     cfg.ServiceName,
		AllowedOrigins:  cfg.AllowedOrigins,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		AuthMiddleware:  middleware.Auth,
		DocumentHandler: handlers.Document,
		HealthHandler:   handlers.Health,
	})
}
