package botapp

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Abinayanafaiq/BotDating/internal/config"
	"github.com/Abinayanafaiq/BotDating/internal/repo/cache"
	"github.com/Abinayanafaiq/BotDating/internal/repo/jsonfile"
	"github.com/Abinayanafaiq/BotDating/internal/repo/memory"
	pgrepo "github.com/Abinayanafaiq/BotDating/internal/repo/postgres"
	profilesvc "github.com/Abinayanafaiq/BotDating/internal/services/profiles"
)

// OpenProfileStore builds the configured profile backend behind the LRU
// cache. The returned close func releases the backend.
func OpenProfileStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*cache.ProfileCache, func(), error) {
	var (
		backend profilesvc.Store
		closeFn = func() {}
	)

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		backend = memory.NewProfileRepo()
	case config.StorageFile:
		repo, err := jsonfile.Open(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open profile file: %w", err)
		}
		backend = repo
	case config.StoragePostgres:
		if cfg.Postgres.AutoMigrate {
			version, err := pgrepo.Migrate(cfg.Postgres.DSN)
			if err != nil {
				return nil, nil, fmt.Errorf("migrate postgres: %w", err)
			}
			logger.Info("postgres schema ready", zap.Uint("version", version))
		}
		pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres: %w", err)
		}
		backend = pgrepo.NewProfileRepo(pool)
		closeFn = pool.Close
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	store, err := cache.NewProfileCache(backend, cfg.Storage.CacheSize)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	logger.Info("profile store opened", zap.String("driver", cfg.Storage.Driver))
	return store, closeFn, nil
}
