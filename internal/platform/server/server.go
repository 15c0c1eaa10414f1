package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	_ "github.com/ogurasousui/congregation-records/internal/adapters/grpc/codec" // json content-subtype
	"github.com/ogurasousui/congregation-records/internal/adapters/grpc/handler"
	"github.com/ogurasousui/congregation-records/internal/platform/logging"
)

// Services はサーバーに登録するハンドラの集合です。
type Services struct {
	Territories *handler.TerritoryGrpcHandler
	Records     *handler.RecordGrpcHandler
	BusTickets  *handler.BusTicketGrpcHandler
}

// Server は gRPC サーバーとメトリクス用 HTTP サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr  string
	grpcServer  *grpc.Server
	health      *health.Server
	metricsAddr string
	metrics     http.Handler
	logger      zerolog.Logger
}

// Option は Server の設定を変更します。
type Option func(*Server)

// WithMetrics は addr でメトリクスを公開します。addr が空の場合は公開しません。
func WithMetrics(addr string, h http.Handler) Option {
	return func(s *Server) {
		s.metricsAddr = addr
		s.metrics = h
	}
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
func New(listenAddr string, services Services, logger zerolog.Logger, opts ...Option) *Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor(logger)))
	handler.Register(srv, services.Territories, services.Records, services.BusTickets)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	for _, name := range []string{"", handler.TerritoryServiceName, handler.RecordServiceName, handler.BusTicketServiceName} {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}

	s := &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     hs,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は lis で待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	var metricsServer *http.Server
	if s.metricsAddr != "" && s.metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", s.metrics)
		metricsServer = &http.Server{Addr: s.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error().Err(err).Str("addr", s.metricsAddr).Msg("metrics server stopped")
			}
		}()
		s.logger.Info().Str("addr", s.metricsAddr).Msg("metrics listening")
	}

	go func() {
		<-ctx.Done()
		s.GracefulStop()
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}
	}()

	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC server listening")
	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はヘルスチェックを NOT_SERVING にしてからサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
