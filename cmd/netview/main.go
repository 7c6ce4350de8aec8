package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/creditmesh/netview/internal/adapters/http/api"
	"github.com/creditmesh/netview/internal/adapters/source"
	"github.com/creditmesh/netview/internal/config"
	"github.com/creditmesh/netview/internal/engine"
	"github.com/creditmesh/netview/internal/prefs"
	"github.com/creditmesh/netview/internal/snapgen"
	"github.com/creditmesh/netview/pkg/logger"
	"github.com/creditmesh/netview/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Data source: the configured console backend, or the built-in demo
	// dataset when no source_url is set.
	var src source.Client
	if cfg.SourceURL != "" {
		src = source.NewHTTPClient(cfg.SourceURL)
		log.Info(ctx, "using upstream source", logger.String("url", cfg.SourceURL))
	} else {
		gen := snapgen.New(
			snapgen.WithSeed(cfg.DemoSeed),
			snapgen.WithParticipants(cfg.DemoParticipants),
		)
		src = source.NewMemoryClient(gen.Generate())
		log.Info(ctx, "using built-in demo source",
			logger.Int64("seed", cfg.DemoSeed),
			logger.Int("participants", cfg.DemoParticipants),
		)
	}

	store := prefs.NewStore(cfg.PrefsPath, log)

	eng := engine.New(
		engine.WithSource(src),
		engine.WithLogger(log),
		engine.WithThreshold(cfg.BottleneckThreshold),
		engine.WithCaps(cfg.NodeCap, cfg.EdgeCap),
		engine.WithPageSize(cfg.PageSize),
		engine.WithRebuildInterval(time.Duration(cfg.RebuildIntervalMS)*time.Millisecond),
		engine.WithLayoutInterval(time.Duration(cfg.LayoutIntervalMS)*time.Millisecond),
		engine.WithSearchHitCap(cfg.SearchHitCap),
		engine.WithSearchClearDelay(time.Duration(cfg.SearchClearDelayMS)*time.Millisecond),
		engine.WithHistogramBuckets(cfg.HistogramBuckets),
		engine.WithActivityWindows(cfg.ActivityWindowDays),
		engine.WithPrefsStore(store),
	)
	if err := eng.Start(ctx); err != nil {
		// A failed first load still serves; the API reports the failed
		// phase and Reload can recover.
		log.Error(ctx, "initial snapshot load failed", logger.Error(err))
	}
	defer eng.Stop()

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	apiServer := api.NewServer(eng)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater starts a background goroutine that updates
// process health metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates process-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
