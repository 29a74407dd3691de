package metrics

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readHeaderTimeout = 3 * time.Second

// CreateMetricsServer serves /metrics on bind:port until the process exits.
// It is a no-op when enabled is false, and returns an error immediately if
// the address cannot be bound rather than panicking.
func CreateMetricsServer(enabled bool, bind string, port int) error {
	if !enabled {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", bind, port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("metrics: failed to bind %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return server.Serve(listener)
}
