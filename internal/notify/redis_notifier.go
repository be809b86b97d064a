package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/doccontrol-backend/internal/platform/logger"
)

// Message is the JSON published on the notification channel. Channel holds
// the recipient user id so subscribers can fan out per user.
type Message struct {
	Channel string       `json:"channel"`
	Event   string       `json:"event"`
	Data    Notification `json:"data"`
}

type RedisNotifier struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisNotifier(log *logger.Logger, addr, channel string) (*RedisNotifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "doccontrol.notifications"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisNotifier{
		log:     log.With("service", "RedisNotifier"),
		rdb:     rdb,
		channel: channel,
	}, nil
}

func (n *RedisNotifier) Send(ctx context.Context, userID uuid.UUID, msg Notification) error {
	if n == nil || n.rdb == nil {
		return fmt.Errorf("redis notifier not initialized")
	}
	raw, err := encodeMessage(userID, msg)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, n.channel, raw).Err()
}

// Client exposes the connection for health collectors.
func (n *RedisNotifier) Client() *goredis.Client {
	if n == nil {
		return nil
	}
	return n.rdb
}

func (n *RedisNotifier) Close() error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Close()
}

func encodeMessage(userID uuid.UUID, n Notification) ([]byte, error) {
	return json.Marshal(Message{Channel: userID.String(), Event: n.Event, Data: n})
}

type logNotifier struct {
	log *logger.Logger
}

// NewLogNotifier writes notifications to the log; used when no bus is configured.
func NewLogNotifier(log *logger.Logger) Notifier {
	return &logNotifier{log: log.With("service", "LogNotifier")}
}

func (n *logNotifier) Send(_ context.Context, userID uuid.UUID, msg Notification) error {
	n.log.Info("notification",
		"recipient_user_id", userID,
		"event", msg.Event,
		"document_id", msg.DocumentID,
		"document_number", msg.DocumentNumber,
		"message", msg.Message,
	)
	return nil
}

func (n *logNotifier) Close() error { return nil }
