package cli

import (
	"net/http"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fatim-sangare/frontend-test-nan/internal/app"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the web client",
	Long: `Serve the MesTâches screens. Every API call goes to API_BASE_URL with the
bearer token of the browser's session.`,
	RunE: runWeb,
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.App.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Info("config loaded", "api", cfg.API.BaseURL, "sessions", cfg.Session.Backend)

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}
	return serve(logger, server, map[string]gfshutdown.Operation{
		"stores": application.Close,
	})
}
