package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"ArticlePublisher/internal/config"
	"ArticlePublisher/internal/domain"
	"ArticlePublisher/internal/infrastructure/commerce"
	"ArticlePublisher/internal/infrastructure/lock"
	"ArticlePublisher/internal/infrastructure/registry"
	"ArticlePublisher/internal/logging"
	"ArticlePublisher/internal/ports"
	"ArticlePublisher/internal/retry"
	"ArticlePublisher/internal/usecase"
)

// Application wires configs to use cases and owns adapter lifecycles.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	db       *sql.DB
	redis    *redis.Client
	logger   *slog.Logger
}

// New validates cfg and connects the configured backends.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	client := commerce.NewClient(cfg.Commerce.APIURL, cfg.Commerce.StoreURL, cfg.Commerce.AccessToken, cfg.Commerce.PageSize, nil)

	usage, err := a.openRegistry(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Catalog:   client,
		Publisher: client,
		Registry:  usage,
		Lock:      a.openLock(),
		Retry: retry.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
		},
		AccentColor: cfg.Brand.AccentColor,
		Logger:      baseLogger.With("component", "pipeline"),
	})
	return a, nil
}

func (a *Application) openRegistry(ctx context.Context) (ports.UsageRegistry, error) {
	logger := a.logger.With("component", "registry")

	switch a.cfg.Registry.Backend {
	case config.RegistryPostgres:
		db, err := registry.OpenPostgres(ctx, a.cfg.Registry.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		pg := registry.NewPostgresRegistry(db, a.cfg.Registry.Table, logger)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return registry.NewFileRegistry(a.cfg.Registry.Path, logger), nil
	}
}

func (a *Application) openLock() ports.RegistryLock {
	switch a.cfg.Lock.Backend {
	case config.LockRedis:
		a.redis = lock.NewRedisClient(a.cfg.Lock.RedisAddr)
		return lock.NewRedisLock(a.redis, a.cfg.Lock.Key, a.cfg.Lock.TTL)
	case config.LockNone:
		return lock.Noop{}
	default:
		return lock.NewFileLock(a.cfg.LockPath(), a.cfg.Lock.TTL, a.logger.With("component", "lock"))
	}
}

// Request builds a pipeline request from caller input, falling back to
// configured publishing defaults.
func (a *Application) Request(keyword, destination string, tags []string, dryRun bool) usecase.Request {
	if destination == "" {
		destination = a.cfg.Publishing.Destination
	}
	if len(tags) == 0 {
		tags = a.cfg.Publishing.Tags
	}
	return usecase.Request{
		Keyword: keyword,
		Target: domain.PublishTarget{
			Destination: destination,
			Tags:        tags,
			Published:   a.cfg.Publishing.IsPublished(),
		},
		DryRun: dryRun,
	}
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context, req usecase.Request) (usecase.Result, error) {
	if a.pipeline == nil {
		return usecase.Result{}, fmt.Errorf("application is not initialised")
	}
	if !req.DryRun && req.Target.Destination == "" {
		return usecase.Result{}, fmt.Errorf("publish destination is required (flag --destination or publishing.destination)")
	}
	return a.pipeline.Run(ctx, req)
}

// Close releases database and redis connections.
func (a *Application) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
