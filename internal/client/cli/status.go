package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophvault/internal/client/client"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const statusTimeout = 3 * time.Second

// Status queries the server's gRPC health endpoint.
func (a *App) Status(ctx context.Context, _ []string) error {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	report, err := a.health.Report(ctx)
	if err != nil {
		return err
	}

	for _, name := range append([]string{""}, client.Stores...) {
		label := name
		if label == "" {
			label = "server"
		}
		st := report[name]
		text := st.String()
		if st == healthpb.HealthCheckResponse_SERVING {
			text = successColor.Sprint(text)
		} else {
			text = errorColor.Sprint(text)
		}
		fmt.Fprintf(a.out, "%-9s %s\n", label+":", text)
	}
	return nil
}
