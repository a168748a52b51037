package cli

import (
	"net/http"

	"github.com/spf13/cobra"

	_ "github.com/fatim-sangare/frontend-test-nan/docs"
	"github.com/fatim-sangare/frontend-test-nan/internal/app"
)

var stubCmd = &cobra.Command{
	Use:   "stubapi",
	Short: "Serve an in-memory task API for development",
	Long: `Serve the task API the web client talks to, keeping everything in memory.
Data is lost on exit. Swagger UI is at /swagger/index.html.`,
	RunE: runStub,
}

var seedAccounts []string

func init() {
	stubCmd.Flags().StringArrayVarP(&seedAccounts, "user", "u", nil, "register an account at start, as email:password (repeatable)")
}

func runStub(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	router, err := app.NewStub(cfg, seedAccounts)
	if err != nil {
		return err
	}
	logger.Info("stub API ready", "seeded", len(seedAccounts), "docs", "/swagger/index.html")
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Stub.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}
	return serve(logger, server, nil)
}
