package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// deliver mails one event to each of its recipients. Every recipient is
// attempted; the first error is returned.
func deliver(ctx context.Context, mailer Mailer, ev *Event) error {
	var firstErr error
	for _, to := range ev.Recipients {
		err := mailer.Send(ctx, ev.Type.template(), to, map[string]any{
			"Lead":      ev.Lead,
			"ChangedBy": ev.ChangedBy,
		})
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to mail %s to %s: %w", ev.Type, to.Email, err)
		}
	}
	return firstErr
}

// DirectQueue delivers events inline
type DirectQueue struct {
	mailer  Mailer
	metrics *metrics.Metrics
}

func NewDirectQueue(mailer Mailer, m *metrics.Metrics) *DirectQueue {
	return &DirectQueue{mailer: mailer, metrics: m}
}

func (q *DirectQueue) Publish(ctx context.Context, ev *Event) error {
	err := deliver(ctx, q.mailer, ev)
	q.metrics.NotificationSent(string(ev.Type), err)
	return err
}

const eventField = "event"

// RedisQueue appends events to a redis stream
type RedisQueue struct {
	client redis.Cmdable
	stream string
}

func NewRedisQueue(client redis.Cmdable, stream string) *RedisQueue {
	return &RedisQueue{client: client, stream: stream}
}

func (q *RedisQueue) Publish(ctx context.Context, ev *Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{eventField: string(data)},
	}).Err(); err != nil {
		return fmt.Errorf("failed to add event to stream: %w", err)
	}
	return nil
}

func decodeEvent(msg redis.XMessage) (*Event, error) {
	raw, ok := msg.Values[eventField].(string)
	if !ok {
		return nil, errors.New("message has no event field")
	}
	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &ev, nil
}

// NewQueue builds the queue selected by cfg.Type. The redis queue needs rdb.
func NewQueue(cfg config.NotifierConfig, rdb redis.Cmdable, mailer Mailer, m *metrics.Metrics, logger *zap.Logger) (Queue, error) {
	switch cfg.Type {
	case config.NotifierTypeRedis:
		if rdb == nil {
			return nil, errors.New("redis notifier requires redis.addr")
		}
		logger.Info("notifications are queued to redis", zap.String("stream", cfg.Stream))
		return NewRedisQueue(rdb, cfg.Stream), nil
	case config.NotifierTypeDirect, "":
		return NewDirectQueue(mailer, m), nil
	default:
		return nil, fmt.Errorf("unknown notifier type: %s", cfg.Type)
	}
}
