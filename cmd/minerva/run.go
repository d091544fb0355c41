package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"aegis-hq/minerva/pkg/audit"
	"aegis-hq/minerva/pkg/cli"
	"aegis-hq/minerva/pkg/config"
	"aegis-hq/minerva/pkg/harmonize"
	"aegis-hq/minerva/pkg/history"
	"aegis-hq/minerva/pkg/risk"
	"aegis-hq/minerva/pkg/rules"
	"aegis-hq/minerva/pkg/rules/source"
	"aegis-hq/minerva/pkg/schedule"
	"aegis-hq/minerva/pkg/server"
	"aegis-hq/minerva/pkg/server/handlers"
	"aegis-hq/minerva/pkg/telemetry/health"
	"aegis-hq/minerva/pkg/telemetry/logging"
	"aegis-hq/minerva/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the decision API server",
	Long: `Start the decision API server with the specified configuration.

The server exposes the evaluate, risk, and harmonize decision endpoints,
records decisions to the audit trail and history store, and runs the
scheduled risk sweeps.

Examples:
  # Start with default config
  minerva run

  # Start with custom config
  minerva run --config /etc/minerva/config.yaml

  # Override listen address
  minerva run --listen 0.0.0.0:8080

  # Validate config without starting the server
  minerva run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Minerva v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx, cancel := cli.SignalContext()
	defer cancel()

	// Decision history store backing the compliance component.
	store, err := newHistoryStore(cfg)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer store.Close()
	fmt.Printf("✓ History store initialized (%s)\n", cfg.Risk.HistoryBackend)

	// Audit trail, when enabled.
	var recorder *audit.Recorder
	var auditStorage audit.Storage
	if cfg.Audit.Enabled {
		auditStorage, err = newAuditStorage(cfg, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		defer auditStorage.Close()

		recorder = audit.NewRecorder(auditStorage, &audit.Config{
			Enabled:      true,
			AsyncBuffer:  cfg.Audit.AsyncBuffer,
			WriteTimeout: cfg.Audit.WriteTimeout,
		}, logger)
		defer recorder.Close()
		fmt.Printf("✓ Audit trail initialized (%s)\n", cfg.Audit.Backend)
	}

	// Rule registry with the built-in catalog and optional overrides.
	registry, err := rules.NewWithDefaults(logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if cfg.Rules.OverridesPath != "" {
		if cfg.Rules.Watch {
			watcher, err := source.NewWatcher(source.WatcherConfig{
				Path: cfg.Rules.OverridesPath,
			}, registry, logger)
			if err != nil {
				return cli.NewCommandError("run", err)
			}
			go func() {
				if err := watcher.Watch(ctx); err != nil {
					logger.Error("override watcher failed", "error", err)
				}
			}()
			defer watcher.Stop()
		} else if err := source.LoadAndApply(cfg.Rules.OverridesPath, registry); err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Printf("✓ Rule overrides loaded from %s\n", cfg.Rules.OverridesPath)
	}
	fmt.Printf("✓ Rule registry loaded (%d rules)\n", registry.Len())

	scorer := risk.NewScorer(store, &risk.Config{
		HistoryTimeout: cfg.Risk.HistoryTimeout,
		HistoryWindow:  cfg.Risk.HistoryWindow,
	}, logger)
	harmonizer := harmonize.New(logger)

	// Telemetry.
	var m *metrics.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		m = metrics.New()
	}

	checker := health.New(0)
	checker.RegisterCheck("rules", func(ctx context.Context) error {
		if !registry.Healthy() {
			return fmt.Errorf("rule failure ratio %.2f exceeds threshold", registry.FailureRatio())
		}
		return nil
	})
	checker.RegisterCheck("history", func(ctx context.Context) error {
		_, _, err := store.ApprovalStats(ctx, "", time.Now().Add(-time.Minute))
		return err
	})
	if auditStorage != nil {
		checker.RegisterCheck("audit", func(ctx context.Context) error {
			_, err := auditStorage.Recent(ctx, 1)
			return err
		})
	}

	// Background sweeps re-score recently active tools from the audit trail.
	var sweepSource schedule.AtomSource
	if auditStorage != nil {
		sweepSource = schedule.NewAuditSource(auditStorage)
	}
	sweeper := schedule.NewSweeper(sweepSource, scorer, recorder, store, &schedule.Config{
		SweepSchedule:     cfg.Schedule.SweepSchedule,
		RetentionSchedule: cfg.Schedule.RetentionSchedule,
		RetentionDays:     cfg.Schedule.RetentionDays,
	}, logger)
	if err := sweeper.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	defer sweeper.Stop()
	if next := sweeper.NextRun(); next != nil {
		logger.Debug("sweeper scheduled", "next_run", next)
	}

	h := handlers.New(registry, scorer, harmonizer, store, recorder, m, checker, logger)
	srv := server.NewServer(cfg.Server, h, m, cfg.Telemetry.Metrics.Path, logger)

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func newHistoryStore(cfg *config.Config) (history.Store, error) {
	switch cfg.Risk.HistoryBackend {
	case "sqlite":
		return history.NewSQLiteStore(cfg.Risk.HistoryDBPath)
	case "memory":
		return history.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported history backend: %s", cfg.Risk.HistoryBackend)
	}
}

func newAuditStorage(cfg *config.Config, logger *slog.Logger) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		sqliteConfig := audit.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Audit.DBPath
		return audit.NewSQLiteStorage(sqliteConfig, logger)
	case "memory":
		return audit.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}
