package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amoylab/nextcrm/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultGroup = "notify-worker"

// Worker drains the notification stream through a consumer group, so
// several workers share the load and each event is mailed once.
type Worker struct {
	client   redis.Cmdable
	stream   string
	group    string
	consumer string
	mailer   Mailer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	block    time.Duration
}

func NewWorker(client redis.Cmdable, stream, group, consumer string, mailer Mailer, m *metrics.Metrics, logger *zap.Logger) *Worker {
	if group == "" {
		group = defaultGroup
	}
	return &Worker{
		client:   client,
		stream:   stream,
		group:    group,
		consumer: consumer,
		mailer:   mailer,
		metrics:  m,
		logger:   logger.Named("notify.worker"),
		block:    time.Second,
	}
}

// Run consumes until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if err := w.ensureGroup(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	w.logger.Info("notification worker started",
		zap.String("stream", w.stream), zap.String("group", w.group), zap.String("consumer", w.consumer))

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("failed to read notification stream", zap.Error(err))
			time.Sleep(w.block)
		}
	}
}

func (w *Worker) ensureGroup(ctx context.Context) error {
	err := w.client.XGroupCreateMkStream(ctx, w.stream, w.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Poll reads one batch, mails it and acknowledges every message it could
// decode. It returns how many events were handled.
func (w *Worker) Poll(ctx context.Context) (int, error) {
	streams, err := w.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    w.group,
		Consumer: w.consumer,
		Streams:  []string{w.stream, ">"},
		Count:    10,
		Block:    w.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	handled := 0
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			w.handle(ctx, msg)
			if err := w.client.XAck(ctx, w.stream, w.group, msg.ID).Err(); err != nil {
				w.logger.Error("failed to ack notification", zap.String("id", msg.ID), zap.Error(err))
			}
			handled++
		}
	}
	return handled, nil
}

func (w *Worker) handle(ctx context.Context, msg redis.XMessage) {
	ev, err := decodeEvent(msg)
	if err != nil {
		w.logger.Error("dropping malformed notification", zap.String("id", msg.ID), zap.Error(err))
		return
	}
	err = deliver(ctx, w.mailer, ev)
	w.metrics.NotificationSent(string(ev.Type), err)
	if err != nil {
		w.logger.Error("failed to deliver notification",
			zap.String("id", msg.ID), zap.String("event", string(ev.Type)), zap.Error(err))
		return
	}
	w.logger.Debug("notification delivered",
		zap.String("id", msg.ID), zap.String("event", string(ev.Type)), zap.Int("recipients", len(ev.Recipients)))
}
