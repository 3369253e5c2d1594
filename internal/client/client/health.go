package client

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Stores the server reports on, besides the overall "" service.
var Stores = []string{"blobs", "metadata", "sessions"}

type HealthClient struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewHealthClient prepares a connection to addr. The connection is made
// lazily, on the first call. A bare ":port" means the local host.
func NewHealthClient(addr string, opts ...grpc.DialOption) (*HealthClient, error) {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, err
	}

	return &HealthClient{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Check returns the serving status of service ("" for the whole server).
func (c *HealthClient) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := c.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, mapError(service, err)
	}
	return resp.GetStatus(), nil
}

// Report checks the server and every store. It stops at the first
// transport error.
func (c *HealthClient) Report(ctx context.Context) (map[string]healthpb.HealthCheckResponse_ServingStatus, error) {
	out := make(map[string]healthpb.HealthCheckResponse_ServingStatus, len(Stores)+1)
	for _, name := range append([]string{""}, Stores...) {
		st, err := c.Check(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = st
	}
	return out, nil
}

func (c *HealthClient) Close() error {
	return c.conn.Close()
}

func mapError(service string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %q", ErrUnknownService, service)
	}
	return err
}
