package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/internal/repository"
	"team-dashboard/backend/internal/service"
	"team-dashboard/backend/internal/ws"
	"team-dashboard/backend/pkg/config"
	"team-dashboard/backend/pkg/events"
	"team-dashboard/backend/pkg/health"
	"team-dashboard/backend/pkg/logger"
	"team-dashboard/backend/pkg/storage"
	"team-dashboard/backend/shared/observability"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const healthCheckPeriod = 30 * time.Second

// Container holds all the dependencies for the application
type Container struct {
	Config *config.Config
	Logger *logger.Logger

	KV         storage.KV
	PageBus    events.Bus
	StorageBus events.Bus

	IdentityService *service.IdentityService
	MessageService  *service.MessageService
	ResourceService *service.ResourceService

	Hub     *ws.Hub
	Health  *health.Checker
	Project models.Project

	Metrics        *observability.Metrics
	MetricsHandler http.Handler

	meterProvider   *sdkmetric.MeterProvider
	shutdownTracing func(context.Context) error
}

// New wires the application from cfg. The caller owns the returned container
// and must Close it.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if log == nil {
		log = logger.GetGlobal()
	}
	c := &Container{
		Config:  cfg,
		Logger:  log,
		Metrics: observability.NoopMetrics(),
		Project: models.Project{
			Name:         cfg.Project.Name,
			Description:  cfg.Project.Description,
			StartDate:    cfg.Project.StartDate,
			CurrentPhase: cfg.Project.CurrentPhase,
			TeamMembers:  cfg.Project.TeamMembers,
			Progress:     cfg.Project.Progress,
			Details:      cfg.Project.Details,
		},
	}

	if cfg.Observability.TracingEnabled {
		shutdown, err := observability.SetupTracing(cfg.Observability.ServiceName)
		if err != nil {
			return nil, err
		}
		c.shutdownTracing = shutdown
	}

	if cfg.Observability.MetricsEnabled {
		provider, handler, err := observability.SetupPrometheusMetrics(cfg.Observability.ServiceName)
		if err != nil {
			c.Close(ctx)
			return nil, err
		}
		c.meterProvider = provider
		c.MetricsHandler = handler

		metrics, err := observability.NewMetrics(provider)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("failed to create metrics: %w", err)
		}
		c.Metrics = metrics
	}

	kv, err := storage.New(ctx, cfg, log)
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}
	c.KV = kv

	c.PageBus = events.NewLocalBus()
	if redisKV, ok := unwrapRedis(kv); ok {
		bus, err := events.NewRedisBus(ctx, redisKV.Client(), cfg.Storage.RedisChannel, log)
		if err != nil {
			c.Close(ctx)
			return nil, fmt.Errorf("failed to subscribe to storage changes: %w", err)
		}
		c.StorageBus = bus
	} else {
		c.StorageBus = events.NewLocalBus()
	}

	roles := models.ParseRoster(cfg.Board.Roster)

	c.IdentityService = service.NewIdentityService(
		repository.NewKVIdentityRepository(kv),
		c.PageBus,
		c.StorageBus,
		roles,
		c.Metrics,
		log,
	)
	c.MessageService = service.NewMessageService(
		repository.NewKVMessageRepository(kv),
		c.StorageBus,
		service.MessageServiceConfig{
			TimeLayout:     cfg.Board.TimeLayout,
			WelcomeUser:    cfg.Board.WelcomeUser,
			WelcomeMessage: cfg.Board.WelcomeMessage,
		},
		c.Metrics,
		log,
	)

	resourceConfig := service.DefaultResourceServiceConfig()
	resourceConfig.MaxFileSize = cfg.Board.MaxUploadSize
	c.ResourceService = service.NewResourceService(
		repository.NewKVResourceRepository(kv),
		c.StorageBus,
		resourceConfig,
		c.Metrics,
		log,
	)

	c.Hub = ws.NewHub(c.IdentityService, c.PageBus, c.StorageBus, c.Metrics, log)

	c.Health = health.NewChecker(log, healthCheckPeriod)
	c.Health.RegisterStorageCheck(cfg.Storage.Backend, kv, func() map[string]any {
		if g, ok := kv.(*storage.Guarded); ok {
			return g.Breaker().Metrics()
		}
		return nil
	})

	return c, nil
}

func unwrapRedis(kv storage.KV) (*storage.RedisKV, bool) {
	if g, ok := kv.(*storage.Guarded); ok {
		kv = g.Unwrap()
	}
	r, ok := kv.(*storage.RedisKV)
	return r, ok
}

// Close releases the buses, the storage backend and the telemetry providers
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if c.StorageBus != nil {
		errs = append(errs, c.StorageBus.Close())
	}
	if c.PageBus != nil {
		errs = append(errs, c.PageBus.Close())
	}
	if c.KV != nil {
		errs = append(errs, c.KV.Close())
	}
	if c.meterProvider != nil {
		errs = append(errs, c.meterProvider.Shutdown(ctx))
	}
	if c.shutdownTracing != nil {
		errs = append(errs, c.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
