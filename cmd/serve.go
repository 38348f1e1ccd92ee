package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"deepresearch/internal/config"
	"deepresearch/internal/server"
)

var serveAllowAll bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the research HTTP API server",
	Long: `Starts the HTTP API exposing POST /api/research plus SSE and
websocket variants that stream research progress.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		c, err := buildCore(cfg, logger)
		if err != nil {
			return err
		}
		standard, err := c.standardService(0)
		if err != nil {
			return err
		}
		proFactory := func(maxQuestions int) server.ComprehensiveResearcher {
			return c.proResearcher(maxQuestions)
		}

		srv := server.New(server.Config{
			Port:          cfg.Port,
			AllowAll:      serveAllowAll,
			DefaultFormat: string(cfg.OutputFormat),
		}, standard, proFactory, logger)

		// Graceful shutdown on SIGINT/SIGTERM.
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			return err
		case <-stop:
			logger.Info("server_shutting_down")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveAllowAll, "allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}
