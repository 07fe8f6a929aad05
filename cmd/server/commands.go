package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/api"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/logging"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/sqlstore"
)

// rootOptions holds global flags for all commands.
type rootOptions struct {
	ConfigPath string
	Port       int
	DB         string
	Driver     string
	LogLevel   string
}

func newRootCommand() *cobra.Command {
	return buildRootCommand(&rootOptions{})
}

func buildRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "leave-engine",
		Short:         "Vacation requests, approvals and holiday balances",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().IntVar(&opts.Port, "port", 0, "HTTP server port")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", `database DSN (SQLite path, ":memory:" or PostgreSQL URL)`)
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|pgx|memory)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))

	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			_, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			logger.Info("schema up to date", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <scenario>",
		Short: "Reset the database and load a demo scenario",
		Long:  "Reset the database and load a demo scenario.\n\nScenarios:\n" + scenarioList(),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			window, err := cfg.Window()
			if err != nil {
				return err
			}
			h := api.NewHandler(store, window, cfg.RetryPolicy(), logger)
			if err := h.Seed(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded scenario %s\n", args[0])
			return nil
		},
	}
}

func scenarioList() string {
	var out string
	for _, s := range api.Scenarios() {
		out += fmt.Sprintf("  %-10s %s\n", s.ID, s.Description)
	}
	return out
}

// resolve loads the config file and applies the flags the user set.
func (o *rootOptions) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = o.Port
	}
	if flags.Changed("db") {
		cfg.Database.DSN = o.DB
	}
	if flags.Changed("driver") {
		cfg.Database.Driver = o.Driver
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfg, err := o.resolve(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// openStore opens the configured store. The memory driver keeps nothing
// across restarts.
func openStore(cfg config.Config) (api.Store, func() error, error) {
	if cfg.Database.Driver == "memory" {
		return memory.New(), func() error { return nil }, nil
	}
	store, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := opts.setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	window, err := cfg.Window()
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeStore()

	handler := api.NewHandler(store, window, cfg.RetryPolicy(), logger)
	router := api.NewRouter(handler, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("driver", cfg.Database.Driver),
			zap.Stringer("enrollment", window))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
