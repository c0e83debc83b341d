package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"stockresearch/internal/adapters/config"
	"stockresearch/internal/adapters/errors/noop"
	"stockresearch/internal/adapters/errors/sentry"
	"stockresearch/pkg/errors"
	"stockresearch/pkg/logger"
)

// Build-time variables (set via ldflags)
var version = "dev"

// CLI defines the command-line interface.
type CLI struct {
	Analyze AnalyzeCmd `cmd:"" default:"withargs" help:"Run one stock analysis session"`
	Prompts PromptsCmd `cmd:"" help:"Print agent system prompts as rendered without tools"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// app carries the process-wide dependencies every command receives.
type app struct {
	ctx     context.Context
	cfg     *config.Config
	log     *logger.Logger
	tracker errors.Tracker
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("stockresearch"),
		kong.Description("Sequential multi-agent research pipeline for NSE-listed stocks."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := initLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	log.Debugf("Starting %s %s in %s mode", cfg.App.Name, version, cfg.App.Env)

	// Initialize error tracker
	tracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(tracker)
	defer flushErrorTracker(tracker, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&app{ctx: ctx, cfg: cfg, log: log, tracker: tracker})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Analysis interrupted")
		}
		kctx.Errorf("%v", err)
		flushErrorTracker(tracker, log)
		_ = logger.Sync()
		os.Exit(1)
	}
}

// initLogger initializes structured logging
func initLogger(cfg *config.Config) error {
	opts := logger.Options{Level: cfg.App.LogLevel, Env: cfg.App.Env}
	if cfg.App.LogToFile {
		opts.FileDir = cfg.App.LogDir
	}
	return logger.Init(opts)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Debug("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

func flushErrorTracker(tracker errors.Tracker, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := tracker.Flush(ctx); err != nil {
		log.Warnf("Failed to flush error tracker: %v", err)
	}
}
