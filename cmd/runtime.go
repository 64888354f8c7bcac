package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/teemow/calassist/internal/calendar"
	"github.com/teemow/calassist/internal/config"
	"github.com/teemow/calassist/internal/ics"
	"github.com/teemow/calassist/internal/instrumentation"
	"github.com/teemow/calassist/internal/logging"
	"github.com/teemow/calassist/internal/server"
)

// envBaseURL points the assistant client at a compatible endpoint.
const envBaseURL = "OPENAI_BASE_URL"

// runtimeOptions are the flags shared by every command that talks to a calendar.
type runtimeOptions struct {
	configPath  string
	icsOut      string
	metricsAddr string
	debug       bool
}

// runtime holds everything a command needs once configuration is loaded.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	audit    *instrumentation.AuditLogger
	adder    *calendar.EventAdder
	ics      *ics.Writer

	metricsServer *server.MetricsServer
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewTextLogger(os.Stderr, level)
}

// setupRuntime loads configuration, instrumentation and the calendar backend.
// Close must be called when the returned runtime is no longer needed.
func setupRuntime(ctx context.Context, opts runtimeOptions) (*runtime, error) {
	logger := newLogger(opts.debug)
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	instrConfig := instrumentationConfig(cfg, opts)

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
	}
	if provider.Enabled() {
		rt.audit = instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging)
	}

	inserter, err := rt.newInserter(ctx, opts.icsOut)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}

	rt.adder = calendar.NewEventAdder(inserter, cfg.CalendarID, cfg.Location(),
		calendar.WithLogger(logger),
		calendar.WithMetrics(provider.Metrics()),
	)

	logger.DebugContext(ctx, "runtime ready",
		logging.Calendar(cfg.CalendarID),
		slog.String("timezone", cfg.TimeZone),
		slog.String("api_key", logging.SanitizeToken(cfg.OpenAIAPIKey)),
		slog.Bool("dry_run", rt.ics != nil))

	return rt, nil
}

// instrumentationConfig layers the loaded settings and command flags over the
// environment defaults.
func instrumentationConfig(cfg *config.Config, opts runtimeOptions) instrumentation.Config {
	c := instrumentation.DefaultConfig()
	c.ServiceVersion = version
	c.AssistantID = cfg.AssistantID
	c.CalendarID = cfg.CalendarID
	c.DryRun = opts.icsOut != ""
	if opts.metricsAddr == "" && c.MetricsExporter == instrumentation.ExporterPrometheus {
		// Nothing scrapes the registry without --metrics-addr.
		c.MetricsExporter = instrumentation.ExporterNone
	}
	return c
}

// newInserter returns an ICS writer when icsOut is set and the Google
// Calendar client otherwise.
func (rt *runtime) newInserter(ctx context.Context, icsOut string) (calendar.Inserter, error) {
	if icsOut != "" {
		rt.ics = ics.NewWriter(icsOut)
		return rt.ics, nil
	}
	client, err := calendar.NewClient(ctx, rt.cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return client, nil
}

// startMetricsServer serves /metrics and the health probes on addr. An empty
// addr or a disabled provider leaves the server off.
func (rt *runtime) startMetricsServer(addr string, health *server.HealthChecker) error {
	if addr == "" || !rt.provider.Enabled() {
		return nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: rt.provider,
		Health:                  health,
		Logger:                  rt.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// A bind failure surfaces almost immediately.
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("metrics server failed to start: %w", err)
		}
	case <-time.After(100 * time.Millisecond):
	}

	rt.metricsServer = metricsServer
	return nil
}

// Close stops the metrics server and flushes telemetry.
func (rt *runtime) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, server.DefaultShutdownTimeout)
	defer cancel()

	var errs []error
	if rt.metricsServer != nil {
		if err := rt.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if rt.provider != nil {
		if err := rt.provider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("instrumentation shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
