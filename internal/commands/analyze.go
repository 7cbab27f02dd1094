package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"RiskRegime/internal/di"
)

var analyzePeriod string

var analyzeCmd = &cobra.Command{
	Use:   "analyze SYMBOL",
	Short: "Assess one symbol with the persisted model and print JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		svc, cleanup, err := di.InitializeInference(cfg)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		res, err := svc.AnalyzePeriod(cmd.Context(), args[0], analyzePeriod)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.View())
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "lookback to fetch (default source.period)")
}
