package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/storage/memory"
	"github.com/vladislavdragonenkov/checkout/internal/storage/postgres"
	"github.com/vladislavdragonenkov/checkout/internal/storage/sqlite"
)

// runtimeDependencies: выбранное хранилище и способ его закрыть.
type runtimeDependencies struct {
	repo    domain.OrderRepository
	pinger  domain.Pinger
	closeFn func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		repo := memory.NewOrderRepository()
		logger.Info("using in-memory order storage")
		return &runtimeDependencies{
			repo:    repo,
			pinger:  repo,
			closeFn: func() error { return nil },
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage requires %s", EnvPostgresDSN)
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.AutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres schema: %w", err)
			}
		}
		logger.WithField("auto_migrate", cfg.AutoMigrate).Info("using postgres order storage")
		return &runtimeDependencies{
			repo:    postgres.NewOrderRepository(store),
			pinger:  store,
			closeFn: store.Close,
		}, nil

	case StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if cfg.AutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate sqlite schema: %w", err)
			}
		}
		logger.WithFields(log.Fields{
			"path":         cfg.SQLitePath,
			"auto_migrate": cfg.AutoMigrate,
		}).Info("using sqlite order storage")
		return &runtimeDependencies{
			repo:    sqlite.NewOrderRepository(store),
			pinger:  store,
			closeFn: store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
