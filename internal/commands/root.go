package commands

import (
	"github.com/spf13/cobra"

	"RiskRegime/pkg/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "riskregime",
	Short: "Risk regime classifier for daily price series",
	Long: `Classifies an instrument's recent risk regime (Low, Medium or High) from daily
price history.

  riskregime train --symbols AAPL,MSFT   # fit and persist a model
  riskregime serve                       # HTTP API over the persisted model
  riskregime analyze AAPL                # one assessment on stdout`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "config file path (empty for defaults)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logger.level")
}

// loadConfig reads the config file, applies env overrides, then flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logger.Level = logLevel
	}
	return cfg, nil
}
