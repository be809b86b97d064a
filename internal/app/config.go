package app

import (
	"strings"
	"time"

	"github.com/yungbote/doccontrol-backend/internal/data/aggregates"
	"github.com/yungbote/doccontrol-backend/internal/http/middleware"
	"github.com/yungbote/doccontrol-backend/internal/platform/envutil"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type Config struct {
	Port           string
	Environment    string
	ServiceName    string
	Version        string
	JWTSecretKey   string
	AllowedOrigins []string
	MaxBodyBytes   int64

	RedisAddr     string
	RedisChannel  string
	MongoURI      string
	MongoDatabase string

	NotifyWorkers   int
	NotifyQueueSize int
	NotifyTimeout   time.Duration

	WorkflowLockTimeout time.Duration

	MetricsAddr string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Port:           envutil.String("PORT", "8080", log),
		Environment:    envutil.String("APP_ENV", "development", log),
		ServiceName:    envutil.String("OTEL_SERVICE_NAME", "doccontrol", log),
		Version:        envutil.String("APP_VERSION", "dev", log),
		JWTSecretKey:   envutil.String("JWT_SECRET_KEY", "", log),
		AllowedOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "", log)),
		MaxBodyBytes:   envutil.Int64("HTTP_MAX_BODY_BYTES", middleware.DefaultMaxBodyBytes, log),

		RedisAddr:     envutil.String("REDIS_ADDR", "", log),
		RedisChannel:  envutil.String("REDIS_CHANNEL", "doccontrol.notifications", log),
		MongoURI:      envutil.String("MONGODB_URI", "", log),
		MongoDatabase: envutil.String("MONGODB_DATABASE", "doccontrol", log),

		NotifyWorkers:   envutil.Int("NOTIFY_WORKERS", 4, log),
		NotifyQueueSize: envutil.Int("NOTIFY_QUEUE_SIZE", 256, log),
		NotifyTimeout:   envutil.Seconds("NOTIFY_TIMEOUT_SECONDS", 10*time.Second, log),

		WorkflowLockTimeout: envutil.Seconds("WORKFLOW_LOCK_TIMEOUT_SECONDS", aggregates.DefaultLockTimeout, log),

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090", log),
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
