package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/congregation-records/internal/adapters/repository/postgres"
	"github.com/ogurasousui/congregation-records/internal/platform/config"
	pg "github.com/ogurasousui/congregation-records/internal/platform/db/postgres"
	"github.com/ogurasousui/congregation-records/internal/seed"
)

func main() {
	var (
		configPath    = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		migrationsDir = flag.String("dir", "assets/migrations", "directory containing migration files")
	)
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("cmd", "migrate").Logger()

	action := "up"
	if flag.NArg() > 0 {
		action = flag.Arg(0)
	}

	cfgPath := effectiveConfigPath(*configPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		logger.Fatal().Str("driver", cfg.Storage.Driver).Msg("migrations require storage.driver=postgres")
	}

	if action == "seed" {
		err = runSeed(context.Background(), cfg.Database, logger)
	} else {
		err = runMigration(action, *migrationsDir, cfg.Database.DSN(), logger)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("action", action).Msg("migration failed")
	}

	logger.Info().Str("action", action).Msg("migration completed")
}

func effectiveConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return "assets/local.yaml"
}

func runSeed(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	pool, err := pg.NewPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	store := postgres.NewDocumentStore(pool, pg.NewTransactionManager(pool))
	return seed.Apply(ctx, store, time.Now().UTC(), logger)
}

func runMigration(action, dir, dsn string, logger zerolog.Logger) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve path for %s: %w", dir, err)
	}
	absDir = filepath.ToSlash(absDir)

	m, err := migrate.New(fmt.Sprintf("file://%s", absDir), dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return err
		}
		return nil
	case "drop":
		return m.Drop()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				logger.Info().Msg("no migration applied")
				return nil
			}
			return err
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("current version")
		return nil
	default:
		return fmt.Errorf("unsupported action %q", action)
	}
}
