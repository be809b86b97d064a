package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/doccontrol-backend/internal/http/handlers"
	httpMW "github.com/yungbote/doccontrol-backend/internal/http/middleware"
	"github.com/yungbote/doccontrol-backend/internal/observability"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	MaxBodyBytes   int64

	AuthMiddleware  *httpMW.AuthMiddleware
	DocumentHandler *httpH.DocumentHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.LimitBody(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readycheck", cfg.HealthHandler.ReadyCheck)
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Document workflow
		if cfg.DocumentHandler != nil {
			protected.GET("/documents/:id/workflow", cfg.DocumentHandler.GetWorkflow)
			protected.GET("/documents/:id/revisions", cfg.DocumentHandler.ListRevisions)
			protected.GET("/approvals/pending", cfg.DocumentHandler.ListPendingApprovals)
			protected.POST("/documents/:id/submit", cfg.DocumentHandler.Submit)
			protected.POST("/documents/:id/route", cfg.DocumentHandler.Route)
			protected.POST("/documents/:id/approvals/:approvalId/sign", cfg.DocumentHandler.Sign)
			protected.POST("/documents/:id/approvals/:approvalId/revision", cfg.DocumentHandler.RequestRevision)
			protected.POST("/documents/:id/validate", cfg.DocumentHandler.Validate)
			protected.POST("/documents/:id/finalize", cfg.DocumentHandler.Finalize)
			protected.POST("/documents/:id/activate", cfg.DocumentHandler.Activate)
			protected.POST("/documents/:id/obsolete", cfg.DocumentHandler.MarkObsolete)
		}
	}

	return r
}
