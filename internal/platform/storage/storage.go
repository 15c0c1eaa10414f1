// Package storage は設定に従ってレコードストアのバックエンドを組み立てます。
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/congregation-records/internal/adapters/repository/localkv"
	"github.com/ogurasousui/congregation-records/internal/adapters/repository/postgres"
	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/platform/config"
	pg "github.com/ogurasousui/congregation-records/internal/platform/db/postgres"
	"github.com/ogurasousui/congregation-records/internal/platform/metrics"
	"github.com/ogurasousui/congregation-records/internal/seed"
)

// Backend は選択されたレコードストアとその後始末です。
type Backend struct {
	Driver  string
	Store   record.Store
	closeFn func() error
}

// Close はバックエンドの接続を閉じます。
func (b *Backend) Close() error {
	if b == nil || b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// Open は storage.driver に応じたストアを開きます。collectors が nil の場合は計測しません。
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger, collectors *metrics.Collectors) (*Backend, error) {
	var (
		backend *Backend
		err     error
	)
	switch cfg.Storage.Driver {
	case config.DriverLocal:
		backend, err = openLocal(ctx, cfg.Storage.Local, logger)
	case config.DriverPostgres:
		backend, err = openPostgres(ctx, cfg.Database, logger)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Storage.Driver)
	}
	if err != nil {
		return nil, err
	}

	if collectors != nil {
		backend.Store = metrics.Instrument(backend.Store, backend.Driver, collectors)
	}
	logger.Info().Str("driver", backend.Driver).Msg("record store ready")
	return backend, nil
}

func openLocal(ctx context.Context, cfg config.LocalStorageConfig, logger zerolog.Logger) (*Backend, error) {
	kv, err := localkv.OpenSQLite(ctx, cfg.Path)
	if err != nil {
		return nil, err
	}
	store := localkv.NewStore(kv, localkv.WithLogger(logger.With().Str("component", "localkv").Logger()))
	if cfg.Seed {
		if err := seed.Apply(ctx, store, time.Now().UTC(), logger); err != nil {
			_ = kv.Close()
			return nil, err
		}
	}
	logger.Info().Str("path", kv.Path()).Msg("opened local store")
	return &Backend{Driver: config.DriverLocal, Store: store, closeFn: kv.Close}, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Backend, error) {
	pool, err := pg.NewPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tm := pg.NewTransactionManager(pool, pg.WithIsoLevel(pgx.TxIsoLevel(cfg.IsolationLevel)))
	store := postgres.NewDocumentStore(pool, tm)
	return &Backend{
		Driver: config.DriverPostgres,
		Store:  store,
		closeFn: func() error {
			pool.Close()
			return nil
		},
	}, nil
}
