package client

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startHealthServer(t *testing.T) (*health.Server, *HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewHealthClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return hs, c
}

func TestCheck(t *testing.T) {
	hs, c := startHealthServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	st, err := c.Check(ctx, "")
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	hs.SetServingStatus("metadata", healthpb.HealthCheckResponse_NOT_SERVING)
	st, err = c.Check(ctx, "metadata")
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)

	_, err = c.Check(ctx, "nope")
	require.ErrorIs(t, err, ErrUnknownService)
}

func TestReport(t *testing.T) {
	hs, c := startHealthServer(t)
	for _, name := range Stores {
		hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	}
	hs.SetServingStatus("blobs", healthpb.HealthCheckResponse_NOT_SERVING)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := c.Report(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, got["blobs"])
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, got["sessions"])
}

func TestCheck_Unavailable(t *testing.T) {
	// nothing listens on port 1
	c, err := NewHealthClient("127.0.0.1:1")
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = c.Check(ctx, "")
	require.ErrorIs(t, err, ErrUnavailable)
}
