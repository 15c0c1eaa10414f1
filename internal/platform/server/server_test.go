package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/ogurasousui/congregation-records/internal/adapters/grpc/codec"
	"github.com/ogurasousui/congregation-records/internal/adapters/grpc/handler"
	"github.com/ogurasousui/congregation-records/internal/adapters/repository/localkv"
	"github.com/ogurasousui/congregation-records/internal/adapters/repository/records"
	"github.com/ogurasousui/congregation-records/internal/core/busticket"
	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
)

func TestServer_HealthAndShutdown(t *testing.T) {
	t.Parallel()

	store := localkv.NewStore(localkv.NewMemoryKV())
	srv := New("unused", Services{
		Territories: handler.NewTerritoryGrpcHandler(territory.NewService(records.NewTerritoryRepository(store), nil)),
		Records:     handler.NewRecordGrpcHandler(record.NewService(store)),
		BusTickets:  handler.NewBusTicketGrpcHandler(busticket.NewService(records.NewBusTicketRepository(store))),
	}, zerolog.Nop())

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()

	resp, err := healthpb.NewHealthClient(conn).Check(callCtx, &healthpb.HealthCheckRequest{Service: handler.TerritoryServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("unexpected health status: %s", resp.GetStatus())
	}

	var list handler.ListRecordsResponse
	if err := conn.Invoke(callCtx, "/"+handler.RecordServiceName+"/ListRecords",
		&handler.ListRecordsRequest{Collection: record.CollectionReports}, &list, grpc.CallContentSubtype(codec.Name)); err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(list.Records) != 0 {
		t.Fatalf("expected empty reports, got %v", list.Records)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop after cancel")
	}
}
