package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RiskRegime/internal/di"
)

var (
	servePort     int
	serveSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve risk assessments over HTTP",
	Long: `Loads the persisted model once and serves GET /api/v1/analyze/:symbol.
With --schedule (or training.schedule) the model is also retrained on a cron
schedule; the running server keeps the model it started with.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override server.port")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "cron spec for periodic retraining")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveSchedule != "" {
		cfg.Training.Schedule = serveSchedule
	}
	if cfg.Training.Schedule != "" && len(cfg.Training.Symbols) == 0 {
		return fmt.Errorf("training.symbols is required when a schedule is set")
	}

	app, cleanup, err := di.InitializeServer(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	})
}
