package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/congregation-records/internal/adapters/grpc/handler"
	"github.com/ogurasousui/congregation-records/internal/adapters/repository/records"
	"github.com/ogurasousui/congregation-records/internal/core/busticket"
	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
	"github.com/ogurasousui/congregation-records/internal/platform/config"
	"github.com/ogurasousui/congregation-records/internal/platform/logging"
	"github.com/ogurasousui/congregation-records/internal/platform/metrics"
	"github.com/ogurasousui/congregation-records/internal/platform/server"
	"github.com/ogurasousui/congregation-records/internal/platform/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Str("path", cfgPath).Msg("failed to load config")
	}

	logger, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to build logger")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storeMetrics, err := metrics.NewCollectors(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}

	backend, err := storage.Open(ctx, cfg, logger, storeMetrics)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("failed to open record store")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close record store")
		}
	}()

	territorySvc := territory.NewService(records.NewTerritoryRepository(backend.Store), nil,
		territory.WithDueSoonWindow(cfg.Territory.DueSoonWindow))
	recordSvc := record.NewService(backend.Store)
	busTicketSvc := busticket.NewService(records.NewBusTicketRepository(backend.Store))

	grpcServer := server.New(cfg.Server.ListenAddr, server.Services{
		Territories: handler.NewTerritoryGrpcHandler(territorySvc),
		Records:     handler.NewRecordGrpcHandler(recordSvc),
		BusTickets:  handler.NewBusTicketGrpcHandler(busTicketSvc),
	}, logger, server.WithMetrics(cfg.Server.MetricsAddr, metrics.Handler(reg)))

	if err := grpcServer.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
