/*
main.go - Application entry point

PURPOSE:
  Starts the rent proration service or evaluates a billing-run file
  offline. Handles configuration, dependency wiring, and graceful shutdown.

COMMANDS:
  serve (default)   Start the HTTP API
  prorate           Evaluate a JSON billing-run definition and print the result

FLAGS:
  --config   Optional YAML config file
  --port     HTTP server port (overrides config)
  --db       SQLite database path (overrides config)
  --file     Billing-run JSON for `prorate` ("-" reads stdin)

ENVIRONMENT:
  A .env file is loaded when present. RENT_* variables override the config
  file (see config/config.go).

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection

EXAMPLES:
  ./server serve --db ":memory:"
  ./server prorate --file ./runs/january.json

SEE ALSO:
  - api/server.go: Router configuration
  - factory/run.go: Billing-run JSON schema
*/
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/rent-engine/api"
	"github.com/warp/rent-engine/config"
	"github.com/warp/rent-engine/factory"
	"github.com/warp/rent-engine/rent"
	"github.com/warp/rent-engine/store/sqlite"
)

var (
	cfgPath string
	port    int
	dbPath  string
	runFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rent-engine",
		Short:         "Rent period proration service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to a YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	prorateCmd := &cobra.Command{
		Use:   "prorate",
		Short: "Evaluate a billing-run JSON file and print the result",
		RunE:  runProrate,
	}
	prorateCmd.Flags().StringVarP(&runFile, "file", "f", "-", "Billing-run JSON file (- for stdin)")

	rootCmd.AddCommand(serveCmd, prorateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(logOut io.Writer) (*config.Config, zerolog.Logger, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg, newLogger(cfg.Log, logOut), nil
}

func newLogger(lc config.LogConfig, out io.Writer) zerolog.Logger {
	if lc.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	level, err := lc.ZerologLevel()
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(os.Stdout)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return errors.Wrap(err, "failed to initialize database")
	}
	defer store.Close()

	handler := api.NewHandler(store)
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("db", cfg.Database.Path).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-quit:
	}

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func runProrate(cmd *cobra.Command, _ []string) error {
	// stdout carries the result, so logs go to stderr
	_, logger, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	var raw []byte
	if runFile == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(runFile)
	}
	if err != nil {
		return errors.Wrap(err, "failed to read billing run")
	}

	run, err := factory.NewRunFactory().ParseRun(string(raw))
	if err != nil {
		return err
	}

	session, err := rent.NewSession(run.Window, run.Mode)
	if err != nil {
		return err
	}

	ctx := logger.WithContext(cmd.Context())
	result, err := session.Evaluate(ctx, run.Agreements)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(api.ToBillingRunDTO(result))
}
