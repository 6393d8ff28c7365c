package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marmos91/dbss/internal/adminapi"
	"github.com/marmos91/dbss/internal/bus"
	"github.com/marmos91/dbss/internal/dbss"
	"github.com/marmos91/dbss/internal/dc"
	"github.com/marmos91/dbss/internal/logger"
	"github.com/marmos91/dbss/internal/telemetry"
	"github.com/marmos91/dbss/pkg/config"
	"github.com/marmos91/dbss/pkg/metrics"
	"github.com/spf13/cobra"

	// Registers the Prometheus-backed DBSSMetrics constructor via init().
	_ "github.com/marmos91/dbss/pkg/metrics/prometheus"
)

var (
	foreground bool
	pidFile    string
	logFile    string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the database state server",
	Long: `Start a dbss daemon subscribed to its configured DOID range.

By default, the server runs in the background (daemon mode). Use
--foreground to run it in the foreground, e.g. under a process
supervisor or for local debugging.

Examples:
  dbss start
  dbss start --foreground
  dbss start --config /etc/dbss/config.yaml
  DBSS_LOGGING_LEVEL=DEBUG dbss start --foreground`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in foreground (default: background/daemon mode)")
	startCmd.Flags().StringVar(&pidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/dbss/dbss.pid)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "Path to log file for daemon mode (default: $XDG_STATE_HOME/dbss/dbss.log)")
}

func runStart(cmd *cobra.Command, args []string) error {
	if !foreground {
		return startDaemon()
	}

	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "dbss",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	}
	telemetryShutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := telemetryShutdown(ctx); err != nil {
			logger.Error("telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingCfg := telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "dbss",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	}
	profilingShutdown, err := telemetry.InitProfiling(profilingCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingShutdown(); err != nil {
			logger.Error("profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("starting dbss",
		"version", Version,
		"config_source", getConfigSource(GetConfigFile()),
		"range_min", cfg.Range.Min,
		"range_max", cfg.Range.Max,
		"bus_channel", cfg.BusChannel,
		"database_channel", cfg.DatabaseChannel)

	var dbssMetrics metrics.DBSSMetrics
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		dbssMetrics = metrics.NewDBSSMetrics()
		logger.Info("metrics collection enabled")
	} else {
		logger.Info("metrics collection disabled")
	}

	schema, err := dc.LoadFiles(cfg.DCFilePaths)
	if err != nil {
		return fmt.Errorf("failed to load DC schema: %w", err)
	}
	classifier := dc.NewClassifier(schema)

	busClient, err := bus.Dial(ctx, cfg.BusAddress)
	if err != nil {
		return fmt.Errorf("failed to connect to message bus at %s: %w", cfg.BusAddress, err)
	}
	defer func() { _ = busClient.Close() }()

	dispatcher := dbss.NewDispatcher(
		classifier,
		busClient,
		bus.Channel(cfg.BusChannel),
		bus.Channel(cfg.DatabaseChannel),
		cfg.Range.Min,
		cfg.Range.Max,
	)
	dispatcher.SetMetrics(dbssMetrics)

	server := dbss.NewServer(dispatcher, busClient, bus.Channel(cfg.BusChannel), cfg.Range.Min, cfg.Range.Max, 10*time.Second)

	if cfg.DCWatch {
		watcher, err := dc.NewWatcher(cfg.DCFilePaths)
		if err != nil {
			logger.Warn("DC schema watcher unavailable", logger.Err(err))
		} else {
			go watcher.Run(ctx)
			defer func() { _ = watcher.Close() }()

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case schema, ok := <-watcher.Reloaded:
						if !ok {
							return
						}
						select {
						case server.SchemaReload <- schema:
						case <-ctx.Done():
							return
						}
					}
				}
			}()
		}
	}

	adminDone := make(chan error, 1)
	if cfg.Admin.Enabled {
		adminServer := adminapi.NewServer(adminapi.Config{
			Port:           cfg.Admin.Port,
			ReadTimeout:    cfg.Admin.ReadTimeout,
			WriteTimeout:   cfg.Admin.WriteTimeout,
			IdleTimeout:    cfg.Admin.IdleTimeout,
			CommandTimeout: cfg.Admin.CommandTimeout,
		}, server.Admin)

		go func() { adminDone <- adminServer.Start(ctx) }()
	} else {
		logger.Info("admin API disabled")
	}

	if pidFile != "" {
		if err := os.WriteFile(pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			return fmt.Errorf("failed to write PID file: %w", err)
		}
		defer func() { _ = os.Remove(pidFile) }()
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Run(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("dbss is running, press Ctrl+C to stop")

	var runErr error
	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info("shutdown signal received, initiating graceful shutdown")
		cancel()

		select {
		case runErr = <-serverDone:
		case <-time.After(cfg.ShutdownTimeout):
			runErr = fmt.Errorf("dispatch loop did not stop within %s", cfg.ShutdownTimeout)
		}

	case err := <-serverDone:
		signal.Stop(sigChan)
		cancel()
		runErr = err
	}

	if cfg.Admin.Enabled {
		if err := <-adminDone; err != nil {
			logger.Error("admin API shutdown error", logger.Err(err))
		}
	}

	if runErr != nil && runErr != context.Canceled {
		logger.Error("server stopped with error", logger.Err(runErr))
		return runErr
	}

	logger.Info("dbss stopped gracefully")
	return nil
}

// getConfigSource describes where the loaded configuration came from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
