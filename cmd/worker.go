package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/shopping-list/internal/metrics"
	"github.com/frahmantamala/shopping-list/internal/notification"
	notificationPostgres "github.com/frahmantamala/shopping-list/internal/notification/postgres"
	"github.com/frahmantamala/shopping-list/internal/reminder"
	reminderPostgres "github.com/frahmantamala/shopping-list/internal/reminder/postgres"
	"github.com/frahmantamala/shopping-list/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
}

var reminderWorkerCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Start the shopping reminder scheduler",
	Long:  `Periodically scan permanent lists with a shopping frequency and notify owners whose next run is due.`,
	Run: func(cmd *cobra.Command, args []string) {
		startReminderWorker()
	},
}

var (
	maxWorkers   int
	jobQueueSize int
	scanInterval time.Duration
	runOnce      bool
	metricsAddr  string
)

func startReminderWorker() {
	config, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.LoggerWrapper()

	conns, err := initDB(config.Database, config.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer conns.Close()

	schedulerConfig := reminder.Config{
		Interval: getDurationFlag(scanInterval, config.Reminder.Interval),
		Pool: reminder.PoolConfig{
			MaxWorkers:   getIntFlag(maxWorkers, config.Reminder.MaxWorkers),
			JobQueueSize: getIntFlag(jobQueueSize, config.Reminder.JobQueueSize),
		},
	}

	log.Info("starting reminder worker",
		"interval", schedulerConfig.Interval,
		"max_workers", schedulerConfig.Pool.MaxWorkers,
		"job_queue_size", schedulerConfig.Pool.JobQueueSize)

	notificationRepo := notificationPostgres.NewRepository(conns.SQLX)
	// The server process owns the realtime hub, so reminders are stored
	// without publishing.
	notificationService := notification.NewService(notificationRepo, nil, log)

	scheduler := reminder.NewScheduler(
		schedulerConfig,
		reminderPostgres.NewStore(conns.SQLX),
		notificationRepo,
		notificationService,
		log,
	)

	if metricsAddr != "" && config.Observability.Metrics.Enabled {
		m := metrics.New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
		scheduler.WithRecorder(m)
		go serveMetrics(metricsAddr, config.Observability.Metrics.Path, m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if runOnce {
		queued, err := scheduler.RunOnce(ctx)
		scheduler.Shutdown()
		if err != nil {
			log.Error("reminder scan failed", "error", err)
			os.Exit(1)
		}
		log.Info("reminder scan complete", "queued", queued)
		return
	}

	log.Info("reminder worker is running. Press Ctrl+C to stop.")

	runDone := make(chan error, 1)
	go func() {
		runDone <- scheduler.Run(ctx)
	}()

	<-ctx.Done()
	log.Info("received signal, shutting down reminder worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()

	select {
	case err := <-runDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("reminder scheduler stopped", "error", err)
		}
		log.Info("reminder worker pool shutdown complete")
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout reached, forcing exit")
	}
}

func serveMetrics(addr, path string, m *metrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.LoggerWrapper().Error("metrics listener stopped", "error", err)
	}
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func getDurationFlag(flagValue, configValue time.Duration) time.Duration {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}

func init() {
	reminderWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of workers (overrides config)")
	reminderWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size (overrides config)")
	reminderWorkerCmd.Flags().DurationVar(&scanInterval, "interval", 0, "Scan interval (overrides config)")
	reminderWorkerCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single scan and exit")
	reminderWorkerCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve worker metrics on this address, e.g. :9101")

	workerCmd.AddCommand(reminderWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
