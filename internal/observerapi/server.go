// Package observerapi exposes the mux actor's state and event stream to UI
// and diagnostic collaborators over HTTP: a REST snapshot of every radio,
// and a websocket feed of the live MuxEvent stream.
package observerapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/catmux-radio/catmux/internal/catmux"
	"github.com/catmux-radio/catmux/internal/endpoint"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	readHeaderTimeout = 3 * time.Second
	queryTimeout      = time.Second
	rateLimitRate     = 100 * time.Millisecond
	rateLimitBurst    = 20
)

var upgrader = websocket.Upgrader{ //nolint:gochecknoglobals
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is the observer HTTP/websocket API.
type Server struct {
	actor    *catmux.Actor
	events   *catmux.EventBus
	registry *endpoint.Registry
	log      *slog.Logger

	httpServer *http.Server
	addr       string
}

// Config configures Server.
type Config struct {
	Actor          *catmux.Actor
	Events         *catmux.EventBus
	Registry       *endpoint.Registry
	Bind           string
	Port           int
	TrustedProxies []string
	Log            *slog.Logger
}

// NewServer builds the observer API's gin router and underlying http.Server
// but does not start listening; call Start for that.
func NewServer(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	s := &Server{actor: cfg.Actor, events: cfg.Events, registry: cfg.Registry, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Error("observerapi: failed setting trusted proxies", "error", err)
	}
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("observer"))
	r.Use(ratelimit.RateLimiter(
		ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{Rate: rateLimitRate, Limit: rateLimitBurst}),
		&ratelimit.Options{ErrorHandler: rateLimitExceeded},
	))

	v1 := r.Group("/api/v1")
	v1.GET("/radios", s.handleListRadios)
	v1.GET("/radios/:handle", s.handleGetRadio)
	v1.GET("/endpoints", s.handleListEndpoints)
	v1.GET("/events", s.handleEventStream)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

func rateLimitExceeded(c *gin.Context, _ ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}

// Start begins serving in the background. Call Stop to shut it down.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("observerapi: failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.addr = listener.Addr().String()
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("observerapi: server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the address Start bound to, resolved if Port was 0.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleListRadios(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()
	snaps, err := s.actor.ListRadios(ctx)
	if err != nil {
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snaps)
}

func (s *Server) handleGetRadio(c *gin.Context) {
	raw := c.Param("handle")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid handle"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()
	snap, ok := s.actor.QueryRadioState(ctx, catmux.RadioHandle(n))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "radio not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// handleListEndpoints reports each backing Session's current link state,
// independent of the mux actor's view of the radios/amplifier it carries.
func (s *Server) handleListEndpoints(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusOK, []endpoint.Status{})
		return
	}
	c.JSON(http.StatusOK, s.registry.Snapshot())
}

func (s *Server) handleEventStream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("observerapi: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sub := s.events.Subscribe()
	defer sub.Close()

	for event := range sub.Events() {
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
}
