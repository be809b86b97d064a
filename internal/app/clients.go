package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/doccontrol-backend/internal/notify"
	"github.com/yungbote/doccontrol-backend/internal/platform/gcp"
	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

type Clients struct {
	Bucket   gcp.DocumentBucket
	Notifier notify.Notifier
	Redis    *goredis.Client
	Mongo    *notify.MongoActivitySink
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Gcs
	bucket, err := resolveDocumentBucket(ctx, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init document bucket: %w", err)
	}

	// Redis
	var notifier notify.Notifier
	var rdb *goredis.Client
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rn, err := notify.NewRedisNotifier(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			_ = bucket.Close()
			return Clients{}, fmt.Errorf("init redis notifier: %w", err)
		}
		notifier = rn
		rdb = rn.Client()
	} else {
		log.Warn("REDIS_ADDR not set; notifications are logged only")
		notifier = notify.NewLogNotifier(log)
	}

	// Mongo
	var mongoSink *notify.MongoActivitySink
	if strings.TrimSpace(cfg.MongoURI) != "" {
		ms, err := notify.NewMongoActivitySink(ctx, log, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			_ = notifier.Close()
			_ = bucket.Close()
			return Clients{}, fmt.Errorf("init mongo activity sink: %w", err)
		}
		mongoSink = ms
	}

	return Clients{
		Bucket:   bucket,
		Notifier: notifier,
		Redis:    rdb,
		Mongo:    mongoSink,
	}, nil
}

// activitySink prefers the Mongo audit log and falls back to the Postgres table.
func (c Clients) activitySink(reposet Repos) notify.ActivitySink {
	if c.Mongo != nil {
		return c.Mongo
	}
	return notify.NewGormActivitySink(reposet.Activity)
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Notifier != nil {
		_ = c.Notifier.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
	if c.Bucket != nil {
		_ = c.Bucket.Close()
	}
}
