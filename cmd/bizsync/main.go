package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizsync/internal/config"
	"bizsync/internal/constants"
	"bizsync/internal/database"
	"bizsync/internal/features"
	"bizsync/internal/retry"
	"bizsync/internal/service"
	"bizsync/internal/tracing"
	"bizsync/pkg/directory"
	"bizsync/pkg/directory/types"
	"bizsync/pkg/notify"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("bizsync %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting bizsync")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			if level > logrus.InfoLevel {
				level = logrus.InfoLevel
			}
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	features.Initialize()

	// Initialize OpenTelemetry tracing
	tracingManager := tracing.NewTracingManager(tracing.TracingConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: cfg.Tracing.ServiceVersion,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled && features.IsEnabled(features.FlagDistributedTracing),
		UseStdout:      cfg.Tracing.UseStdout,
	}, logger)

	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	// Initialize the local store with exponential backoff retry
	var db *database.Database
	backoff := retry.NewBackoff(retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  constants.DefaultDatabaseRetryAttempts,
		Jitter:       true,
	})

	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize local store: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize local store after retries: %w", err)
	}
	defer db.Close()

	client := directory.NewClient(types.ClientConfig{
		BaseURL:      cfg.API.BaseURL,
		HealthPath:   cfg.API.HealthPath,
		Timeout:      time.Duration(cfg.API.TimeoutSec) * time.Second,
		ProbeTimeout: time.Duration(cfg.API.ProbeTimeoutSec) * time.Second,
	})

	var sink notify.Sink
	switch cfg.Notifications.Sink {
	case "webhook":
		sink = notify.NewWebhookSink(cfg.Notifications.WebhookURL, logger)
	default:
		sink = notify.NewLogSink(logger)
	}

	notifier := service.NewNotificationService(db, sink, cfg.Sync.MaxRetries, logger)

	monitor := service.NewNetworkMonitor(client, logger,
		time.Duration(cfg.Sync.ProbeIntervalSec)*time.Second,
		time.Duration(cfg.Sync.OnlineSettleDelayMs)*time.Millisecond,
	)

	replayTimeout := time.Duration(constants.DefaultReplayTimeoutSec) * time.Second
	engine := service.NewSyncEngine(db, client, notifier, monitor.IsOnline, replayTimeout, logger)

	// With immediate replay disabled every submission goes straight to
	// the queue, so the action service is told it is always offline.
	submitOnline := monitor.IsOnline
	if !features.IsEnabled(features.FlagImmediateReplay) {
		submitOnline = func() bool { return false }
	}

	actionService := service.NewActionService(db, client, submitOnline,
		cfg.Sync.MaxRetries,
		time.Duration(cfg.API.TimeoutSec)*time.Second,
		logger,
	)

	status := service.NewStatusService(db, monitor, engine,
		time.Duration(cfg.Sync.PendingRefreshSec)*time.Second, logger)

	// Coming back online drains queued notifications first, then replays
	// queued actions in submission order.
	monitor.OnOnline(func(ctx context.Context) {
		if features.IsEnabled(features.FlagNotificationReplay) {
			notifier.ReplayPending(ctx)
		}
		if _, err := engine.SyncNow(ctx); err != nil {
			logger.WithError(err).Error("Failed to run sync pass after reconnect")
		}
		status.Refresh(ctx)
	})

	ctxWithVerbose := context.WithValue(ctx, service.VerboseContextKey, *verbose)

	if err := monitor.Start(ctxWithVerbose); err != nil {
		return fmt.Errorf("failed to start network monitor: %w", err)
	}
	defer monitor.Stop()

	status.Start(ctxWithVerbose)
	defer status.Stop()

	if features.IsEnabled(features.FlagEntityCleanup) {
		scheduler := service.NewScheduler(db, cfg.RetentionDays, cfg.Server.CleanupIntervalHours, logger)
		go scheduler.Start(ctxWithVerbose)
		defer scheduler.Stop()
	}

	server := NewServer(cfg, db, actionService, engine, status, logger)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.DefaultGracefulShutdownSec)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	logger.Info("Server shutdown completed")
	return nil
}
