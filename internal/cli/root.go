// Package cli is the mestaches command line: the web client and the
// development API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/fatim-sangare/frontend-test-nan/internal/config"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "mestaches",
		Short:         "MesTâches web client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment variables otherwise)")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(stubCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if cfg.App.Version == "dev" && rootCmd.Version != "" {
		cfg.App.Version = rootCmd.Version
	}
	return cfg, newLogger(cfg.App.Env), nil
}

// newLogger logs text in dev and JSON elsewhere.
func newLogger(env string) *slog.Logger {
	if env == "dev" || env == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// serve runs server until SIGINT/SIGTERM, then shuts it down and runs the
// extra shutdown operations. The extra operations also run when the server
// fails to start.
func serve(logger *slog.Logger, server *http.Server, extra map[string]gfshutdown.Operation) error {
	failed := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
	}()

	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			logger.Info("shutting down HTTP server")
			return server.Shutdown(ctx)
		},
	}
	for name, op := range extra {
		ops[name] = op
	}
	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, ops)

	select {
	case err := <-failed:
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for name, op := range extra {
			if cerr := op(ctx); cerr != nil {
				logger.Warn("shutdown operation failed", "op", name, "err", cerr)
			}
		}
		return fmt.Errorf("http server: %w", err)
	case code := <-wait:
		if code != 0 {
			return fmt.Errorf("shutdown exited with code %d", code)
		}
		return nil
	}
}
