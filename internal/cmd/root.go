package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/catmux-radio/catmux/internal/catmux"
	"github.com/catmux-radio/catmux/internal/config"
	"github.com/catmux-radio/catmux/internal/endpoint"
	"github.com/catmux-radio/catmux/internal/logging"
	"github.com/catmux-radio/catmux/internal/metrics"
	"github.com/catmux-radio/catmux/internal/observerapi"
	"github.com/catmux-radio/catmux/internal/pprof"
	"github.com/catmux-radio/catmux/internal/traffic"
	"github.com/spf13/cobra"
	"github.com/ztrue/shutdown"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

const appName = "catmux"

// NewCommand builds the root cobra command, wiring every ambient flag the
// core needs on top of the UI-owned settings.json (spec.md §6): where to
// find it, whether to force debug logging, and the Observer API/metrics/
// pprof/tracing endpoints this distillation adds around the core.
func NewCommand(version, commit string) *cobra.Command {
	var settingsPath string
	var debug bool
	var observerBind string
	var observerPort int
	var metricsEnabled bool
	var metricsBind string
	var metricsPort int
	var pprofEnabled bool
	var pprofBind string
	var pprofPort int
	var otlpEndpoint string

	cmd := &cobra.Command{
		Use:     "catmux",
		Short:   "Multiplex N transceivers' CAT traffic onto one amplifier",
		Version: fmt.Sprintf("%s - %s", version, commit),
		Annotations: map[string]string{
			"version": version,
			"commit":  commit,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, rootFlags{
				settingsPath:   settingsPath,
				debug:          debug,
				observerBind:   observerBind,
				observerPort:   observerPort,
				metricsEnabled: metricsEnabled,
				metricsBind:    metricsBind,
				metricsPort:    metricsPort,
				pprofEnabled:   pprofEnabled,
				pprofBind:      pprofBind,
				pprofPort:      pprofPort,
				otlpEndpoint:   otlpEndpoint,
			})
		},
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&settingsPath, "settings", "", "override path to settings.json (defaults to the XDG location)")
	flags.BoolVar(&debug, "debug", false, "force debug-level logging regardless of settings.json")
	flags.StringVar(&observerBind, "observer-bind", "0.0.0.0", "observer API bind address")
	flags.IntVar(&observerPort, "observer-port", 8420, "observer API port")
	flags.BoolVar(&metricsEnabled, "metrics-enabled", true, "serve Prometheus metrics")
	flags.StringVar(&metricsBind, "metrics-bind", "0.0.0.0", "metrics server bind address")
	flags.IntVar(&metricsPort, "metrics-port", 9420, "metrics server port")
	flags.BoolVar(&pprofEnabled, "pprof-enabled", false, "serve pprof profiles")
	flags.StringVar(&pprofBind, "pprof-bind", "127.0.0.1", "pprof server bind address")
	flags.IntVar(&pprofPort, "pprof-port", 6420, "pprof server port")
	flags.StringVar(&otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for trace export (disabled when empty)")

	return cmd
}

type rootFlags struct {
	settingsPath   string
	debug          bool
	observerBind   string
	observerPort   int
	metricsEnabled bool
	metricsBind    string
	metricsPort    int
	pprofEnabled   bool
	pprofBind      string
	pprofPort      int
	otlpEndpoint   string
}

func runRoot(cmd *cobra.Command, flags rootFlags) error {
	ctx := cmd.Context()
	fmt.Printf("catmux - %s (%s)\n", cmd.Annotations["version"], cmd.Annotations["commit"])

	settings, err := loadSettings(flags)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	log := logging.New(logging.Options{Debug: flags.debug || settings.DebugMode})
	slog.SetDefault(log)

	var traceCleanup func(context.Context) error
	if flags.otlpEndpoint != "" {
		traceCleanup = initTracer(flags.otlpEndpoint)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := traceCleanup(shutdownCtx); err != nil {
				log.Error("failed to shut down tracer", "error", err)
			}
		}()
	}

	if flags.metricsEnabled {
		go func() {
			if err := metrics.CreateMetricsServer(true, flags.metricsBind, flags.metricsPort); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}
	go pprof.CreatePProfServer(flags.pprofEnabled, flags.pprofBind, flags.pprofPort, nil)

	m := metrics.NewMetrics()

	events := catmux.NewEventBus()
	defer events.Close()

	lockout := time.Duration(settings.LockoutMS) * time.Millisecond
	mode := switchingModeFromConfig(settings.SwitchingMode)
	actor := catmux.NewActor(events, mode, lockout, log)

	actorCtx, cancelActor := context.WithCancel(ctx)
	defer cancelActor()
	go actor.Run(actorCtx)

	trafficLog := traffic.NewLog(settings.TrafficHistorySize, traffic.SeverityDebug, false)
	go bridgeTrafficLog(actorCtx, events, actor, trafficLog)
	go bridgeMetrics(actorCtx, events, m)

	g, gctx := errgroup.WithContext(actorCtx)
	onReconnect := func(name string) { m.RecordEndpointReconnect(name) }
	registry := endpoint.NewRegistry()

	for _, radioCfg := range settings.ConfiguredRadios {
		radioCfg := radioCfg
		if err := wireRealRadio(gctx, g, actor, log, registry, onReconnect, radioCfg); err != nil {
			return fmt.Errorf("failed to wire radio %s: %w", radioCfg.Port, err)
		}
	}
	for _, virtCfg := range settings.VirtualRadios {
		virtCfg := virtCfg
		if err := wireVirtualRadio(gctx, g, actor, log, registry, virtCfg); err != nil {
			return fmt.Errorf("failed to wire virtual radio %s: %w", virtCfg.ID, err)
		}
	}

	switch settings.Amplifier.ConnectionType {
	case config.AmplifierConnectionCOM:
		if err := wireRealAmplifier(gctx, g, actor, log, registry, onReconnect, settings.Amplifier); err != nil {
			return fmt.Errorf("failed to wire amplifier: %w", err)
		}
	case config.AmplifierConnectionSimulated:
		if err := wireVirtualAmplifier(gctx, g, actor, settings.Amplifier); err != nil {
			return fmt.Errorf("failed to wire simulated amplifier: %w", err)
		}
	}

	observer := observerapi.NewServer(observerapi.Config{
		Actor:    actor,
		Events:   events,
		Registry: registry,
		Bind:     flags.observerBind,
		Port:     flags.observerPort,
		Log:      log,
	})
	if err := observer.Start(); err != nil {
		return fmt.Errorf("failed to start observer API: %w", err)
	}

	waitForShutdown(log, func(_ os.Signal) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := observer.Stop(shutdownCtx); err != nil {
				log.Error("failed to stop observer API", "error", err)
			}
		}()
		go func() {
			defer wg.Done()
			actor.Shutdown(shutdownCtx)
		}()
		wg.Wait()

		cancelActor()
		_ = g.Wait()
		log.Info("shutdown complete")
	})

	return nil
}

// loadSettings loads settings.json from flags.settingsPath (if set) or the
// XDG location, falling back to defaults on any configuration error per
// spec.md §7's "configuration errors" handling rule.
func loadSettings(flags rootFlags) (config.Settings, error) {
	var settings config.Settings
	if flags.settingsPath != "" {
		data, err := os.ReadFile(flags.settingsPath)
		if err != nil {
			slog.Warn("settings file unreadable, using defaults", "path", flags.settingsPath, "error", err)
			return config.Default(), nil
		}
		settings = config.Default()
		if err := json.Unmarshal(data, &settings); err != nil {
			slog.Warn("settings file malformed, using defaults", "path", flags.settingsPath, "error", err)
			return config.Default(), nil
		}
	} else {
		settings = config.LoadOrDefault(appName)
	}

	if err := settings.Validate(); err != nil {
		slog.Warn("settings failed validation, using defaults", "error", err)
		return config.Default(), nil
	}
	return settings, nil
}

// waitForShutdown registers stop with ztrue/shutdown and blocks until one of
// the handled signals arrives, mirroring the teacher's root command shutdown
// wiring (shutdown.AddWithParam + shutdown.Listen) rather than hand-rolled
// signal.Notify plumbing.
func waitForShutdown(log *slog.Logger, stop func(os.Signal)) {
	shutdown.AddWithParam(func(sig os.Signal) {
		log.Warn("shutting down due to signal", "signal", sig)
		stop(sig)
	})
	shutdown.Listen(syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

func initTracer(endpoint string) func(context.Context) error {
	exporter, err := otlptrace.New(
		context.Background(),
		otlptracegrpc.NewClient(
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(endpoint),
		),
	)
	if err != nil {
		slog.Error("failed constructing trace exporter", "error", err)
		return func(context.Context) error { return nil }
	}
	resources, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", appName),
			attribute.String("library.language", "go"),
		),
	)
	if err != nil {
		slog.Error("could not set trace resources", "error", err)
	}

	otel.SetTracerProvider(
		sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(resources),
		),
	)
	return exporter.Shutdown
}
