package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"RiskRegime/internal/di"
	"RiskRegime/internal/domain/models"
	"RiskRegime/internal/usecase"
	"RiskRegime/pkg/config"
	"RiskRegime/pkg/server"
)

var (
	trainSymbols  []string
	trainPeriod   string
	trainModelKey string
	trainSchedule string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train and persist a risk model",
	Long: `Fetches daily bars for every symbol, labels the combined batch by volatility
quantiles, fits the forest and saves it under the model key. The evaluation
report on the held-out split is printed.

  riskregime train --symbols AAPL,MSFT,SPY --period 2y --model-key risk_model
  riskregime train --schedule "0 22 * * 1-5"    # keep retraining on weekdays`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringSliceVar(&trainSymbols, "symbols", nil, "symbols to train on (default training.symbols)")
	trainCmd.Flags().StringVar(&trainPeriod, "period", "", "lookback per symbol (default training.period)")
	trainCmd.Flags().StringVar(&trainModelKey, "model-key", "", "model store key (default model_store.key)")
	trainCmd.Flags().StringVar(&trainSchedule, "schedule", "", "cron spec; run until interrupted")
}

func runTrain(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req := models.TrainRequest{
		Symbols:  cfg.Training.Symbols,
		Period:   cfg.Training.Period,
		ModelKey: cfg.ModelStore.Key,
	}
	if len(trainSymbols) > 0 {
		req.Symbols = trainSymbols
	}
	if trainPeriod != "" {
		req.Period = trainPeriod
	}
	if trainModelKey != "" {
		req.ModelKey = trainModelKey
	}
	if len(req.Symbols) == 0 {
		return fmt.Errorf("no symbols: pass --symbols or set training.symbols")
	}

	trainer, cleanup, err := di.InitializeTrainer(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if trainSchedule != "" {
		return runScheduled(ctx, cmd, cfg, trainer, req)
	}

	if cfg.Training.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Training.Timeout)
		defer cancel()
	}
	res, err := trainer.Train(ctx, req)
	if usecase.IsSymbolDataError(err) {
		return fmt.Errorf("no usable market data for %v over %q, try a longer --period: %w", req.Symbols, req.Period, err)
	}
	if err != nil {
		return err
	}
	printResult(cmd, req, res)
	return nil
}

func runScheduled(ctx context.Context, cmd *cobra.Command, cfg *config.Config, trainer usecase.Trainer, req models.TrainRequest) error {
	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	sched, err := usecase.NewScheduler(trainSchedule, trainer, req, cfg.Training.Timeout, l)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "retraining %v on %q until interrupted\n", req.Symbols, trainSchedule)
	return server.New(l).Add("scheduler", sched).Run(ctx, func() (context.Context, context.CancelFunc) {
		return context.WithTimeout(context.Background(), cfg.Training.Timeout)
	})
}

func printResult(cmd *cobra.Command, req models.TrainRequest, res *usecase.TrainResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "model %s saved under %q\n", res.Model.ID, req.ModelKey)
	fmt.Fprintf(out, "symbols: %v", res.Symbols)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, " (skipped: %v)", res.Skipped)
	}
	fmt.Fprintf(out, "\nvolatility thresholds: q33=%.4f q66=%.4f\n\n", res.Thresholds.Q33, res.Thresholds.Q66)
	fmt.Fprint(out, res.Report.String())
}
