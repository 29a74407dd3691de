package pprof

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const readHeaderTimeout = 3 * time.Second

// CreatePProfServer serves Go's runtime profiler over HTTP on bind:port
// until the process exits. It is a no-op when enabled is false.
func CreatePProfServer(enabled bool, bind string, port int, trustedProxies []string) {
	if !enabled {
		return
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("pprof"))

	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		slog.Error("pprof: failed setting trusted proxies", "error", err)
	}

	pprof.Register(r)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	slog.Info("pprof server listening", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("pprof server stopped", "error", err)
	}
}
