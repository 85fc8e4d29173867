// cmd/worker/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ammerola/inventory-tracker/internal/app"
	"github.com/ammerola/inventory-tracker/internal/pkg/config"
	"github.com/ammerola/inventory-tracker/internal/pkg/logger"
	"github.com/ammerola/inventory-tracker/internal/workers"
)

func main() {
	// Setup logger
	slogger := logger.SetupLogger("info", "json").Logger

	// Load configuration
	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Reconfigure logger with loaded settings
	slogger = logger.SetupLogger(cfg.App.LogLevel, cfg.App.LogFormat).Logger
	slogger.Info("starting worker",
		slog.String("environment", cfg.App.Environment),
		slog.String("redis_addr", cfg.Asynq.RedisAddr),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("storage_driver", cfg.Export.StorageDriver))

	if err := run(cfg, slogger); err != nil {
		slogger.Error("worker stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slogger.Info("worker shutdown complete")
}

func run(cfg *config.Config, slogger *slog.Logger) error {
	ctx := context.Background()

	inventory := app.NewInventory(cfg, slogger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Asynq.ShutdownTimeout)
		defer cancel()
		if err := inventory.Close(closeCtx); err != nil {
			slogger.Error("failed to close inventory", slog.String("error", err.Error()))
		}
	}()

	service, err := inventory.Service(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize inventory: %w", err)
	}

	storage, err := app.NewFileStorage(ctx, cfg, slogger)
	if err != nil {
		return fmt.Errorf("failed to initialize export storage: %w", err)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Asynq.RedisAddr,
		Password: cfg.Asynq.RedisPassword,
		DB:       cfg.Asynq.RedisDB,
	}
	asynqLog := newAsynqLogger(slogger)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Asynq.Concurrency,
		Queues:          cfg.Asynq.Queues,
		StrictPriority:  cfg.Asynq.StrictPriority,
		ErrorHandler:    asynq.ErrorHandlerFunc(handleError),
		RetryDelayFunc:  exponentialBackoff,
		ShutdownTimeout: cfg.Asynq.ShutdownTimeout,
		HealthCheckFunc: newHealthCheck(inventory, slogger),
		Logger:          asynqLog,
	})

	mux := asynq.NewServeMux()

	exportProcessor := workers.NewExportProcessor(service, storage, slogger)
	mux.HandleFunc(workers.TypeInventoryExport, exportProcessor.ProcessExport)

	cleanupProcessor := workers.NewCleanupProcessor(storage, cfg.Export.Retention, slogger)
	mux.HandleFunc(workers.TypeCleanupExports, cleanupProcessor.CleanupExports)

	scheduler, err := newScheduler(cfg, redisOpt, asynqLog)
	if err != nil {
		return err
	}

	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start worker server: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		srv.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	slogger.Info("worker started successfully",
		slog.Int("concurrency", cfg.Asynq.Concurrency),
		slog.Any("queues", cfg.Asynq.Queues),
		slog.String("export_schedule", cfg.Export.Schedule),
		slog.String("cleanup_schedule", cfg.Export.CleanupSchedule))

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown
	slogger.Info("shutdown signal received", slog.String("signal", sig.String()))

	scheduler.Shutdown()
	srv.Shutdown()
	return nil
}

// newScheduler registers the periodic export and retention tasks
func newScheduler(cfg *config.Config, redisOpt asynq.RedisClientOpt, log asynq.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   log,
	})

	if cfg.Export.Schedule != "" {
		task, err := workers.NewExportTask("scheduler")
		if err != nil {
			return nil, err
		}
		if _, err := scheduler.Register(cfg.Export.Schedule, task, asynq.Queue("default")); err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	if cfg.Export.CleanupSchedule != "" {
		if _, err := scheduler.Register(cfg.Export.CleanupSchedule, workers.NewCleanupExportsTask(), asynq.Queue("low")); err != nil {
			return nil, fmt.Errorf("failed to schedule export cleanup: %w", err)
		}
	}

	return scheduler, nil
}

func handleError(ctx context.Context, task *asynq.Task, err error) {
	slog.ErrorContext(ctx, "task processing failed",
		slog.String("type", task.Type()),
		slog.String("payload", string(task.Payload())),
		slog.String("error", err.Error()))
}

func exponentialBackoff(n int, _ error, _ *asynq.Task) time.Duration {
	const (
		baseDelay = time.Second
		maxDelay  = 10 * time.Minute
	)
	if n > 20 {
		return maxDelay
	}
	delay := baseDelay * time.Duration(1<<uint(n))
	if delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

// newHealthCheck reports asynq's own Redis check and, when that passes,
// the inventory's database and cache
func newHealthCheck(inventory *app.Inventory, log *slog.Logger) func(error) {
	return func(err error) {
		if err != nil {
			log.Error("worker health check failed", slog.String("error", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := inventory.Health(ctx); err != nil {
			log.Error("inventory health check failed", slog.String("error", err.Error()))
		}
	}
}

// asynqLogger adapts slog for Asynq
type asynqLogger struct {
	logger *slog.Logger
}

func newAsynqLogger(logger *slog.Logger) *asynqLogger {
	return &asynqLogger{
		logger: logger.With(slog.String("component", "asynq")),
	}
}

func (l *asynqLogger) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}

func (l *asynqLogger) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}

func (l *asynqLogger) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}

func (l *asynqLogger) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}

func (l *asynqLogger) Fatal(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
	os.Exit(1)
}
