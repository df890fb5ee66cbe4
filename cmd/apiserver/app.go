package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/amoylab/nextcrm/internal/apiserver/database"
	"github.com/amoylab/nextcrm/internal/apiserver/handler"
	"github.com/amoylab/nextcrm/internal/auth/jwt"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/activity"
	"github.com/amoylab/nextcrm/internal/crm/admission"
	"github.com/amoylab/nextcrm/internal/crm/application"
	"github.com/amoylab/nextcrm/internal/crm/dropdown"
	"github.com/amoylab/nextcrm/internal/crm/lead"
	"github.com/amoylab/nextcrm/internal/crm/student"
	"github.com/amoylab/nextcrm/internal/crm/user"
	"github.com/amoylab/nextcrm/internal/i18n"
	"github.com/amoylab/nextcrm/internal/mail"
	"github.com/amoylab/nextcrm/internal/notify"
	"github.com/amoylab/nextcrm/pkg/logger"
	"github.com/amoylab/nextcrm/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds the dependencies shared by every subcommand
type app struct {
	cfg      *config.APIServerConfig
	logger   *zap.Logger
	store    *database.Store
	redis    *redis.Client
	mailer   *mail.Mailer
	metrics  *metrics.Metrics
	services handler.Services
}

func initLogger(cfg *config.APIServerConfig) *zap.Logger {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return lg
}

// initRedis returns nil when no address is configured
func initRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// newApp connects storage and builds the services. Lead notifications are
// only wired when notifications is set.
func newApp(ctx context.Context, cfg *config.APIServerConfig, lg *zap.Logger, notifications bool) (*app, error) {
	store, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a := &app{cfg: cfg, logger: lg, store: store}

	a.redis, err = initRedis(ctx, &cfg.Redis)
	if err != nil {
		a.Close()
		return nil, err
	}
	// a nil *redis.Client must not become a non-nil Cmdable
	var rdb redis.Cmdable
	if a.redis != nil {
		rdb = a.redis
	}

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New(cfg.Metrics)
	}
	a.mailer, err = mail.New(cfg.Email, lg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var notifier notify.Notifier
	if notifications {
		queue, err := notify.NewQueue(cfg.Notifier, rdb, a.mailer, a.metrics, lg)
		if err != nil {
			a.Close()
			return nil, err
		}
		notifier = notify.NewService(store, queue, lg)
	}

	acts := activity.NewService(store, lg, a.metrics)
	drops := dropdown.NewService(store, rdb, cfg.Dropdown.CacheTTL, lg)
	a.services = handler.Services{
		Users:        user.NewService(store, a.mailer, lg),
		Leads:        lead.NewService(store, acts, drops, notifier, a.metrics, lg),
		Students:     student.NewService(store, acts, drops, a.metrics, lg),
		Applications: application.NewService(store, acts, lg),
		Admissions:   admission.NewService(store, acts, lg),
		Dropdowns:    drops,
	}
	return a, nil
}

// router builds the HTTP engine around the services
func (a *app) router() (*gin.Engine, error) {
	jwtService, err := jwt.NewService(a.cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt configuration: %w", err)
	}
	translator, err := i18n.New(a.cfg.I18n.DefaultLang, a.cfg.I18n.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	h := handler.NewHandler(a.services, jwtService, errorx.NewErrorHandler(a.logger, translator), a.logger)
	opts := handler.RouterOptions{
		CORS:        a.cfg.CORS,
		Metrics:     a.metrics,
		MetricsPath: a.cfg.Metrics.Path,
	}
	if a.cfg.Tracing.Enabled {
		opts.TraceService = a.cfg.Tracing.ServiceName
	}
	return handler.NewRouter(h, opts)
}

func (a *app) Close() {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Error("failed to close resources", zap.Error(err))
	}
}
