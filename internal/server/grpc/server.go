// Package grpc serves the standard gRPC health service. The overall status
// and one status per store follow periodic store health checks.
package grpc

import (
	"context"
	"net"
	"sort"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Check tests one store.
type Check = func(ctx context.Context) error

type GRPCServer struct {
	address  string
	logger   logging.Logger
	checks   map[string]Check
	interval time.Duration
	health   *health.Server
}

func NewGRPCServer(a string, l logging.Logger, checks map[string]Check, interval time.Duration) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		checks:   checks,
		interval: interval,
		health:   health.NewServer(),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.recoverInterceptor, s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.refresh(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *GRPCServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

// refresh runs every check and publishes the results. The overall service
// ("") is SERVING only when every check passes.
func (s *GRPCServer) refresh(ctx context.Context) {
	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.checks[name](cctx)
		cancel()

		st := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			st = healthpb.HealthCheckResponse_NOT_SERVING
			overall = st
			s.logger.Warn(ctx, "store unhealthy", "store", name, "error", err)
		}
		s.health.SetServingStatus(name, st)
	}
	s.health.SetServingStatus("", overall)
}
