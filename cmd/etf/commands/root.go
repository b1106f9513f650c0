package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/asherrising888-debug/NasdaqETF/pkg/config"
)

var (
	// Global flags
	envOverride string
	rulesFile   string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "etf",
	Short: "纳指ETF (159941) 周线交易决策系统",
	Long: `纳指ETF 周线交易决策系统

单只 ETF 的买卖判定看板:实时行情 + 估值溢价 + 周线 M20 趋势,
四条规则给出当下与最近 50 周的逐周判定。

Usage:
  go run ./cmd/etf [command]

Examples:
  go run ./cmd/etf serve
  go run ./cmd/etf report --cost 1.234 --qty 1000
  go run ./cmd/etf probe`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envOverride, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "rules file (YAML, default built-in thresholds)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig applies the global flags, then reads the environment.
func loadConfig() (*config.Config, error) {
	if envOverride != "" {
		os.Setenv("ENV", envOverride)
	}
	if verbose {
		os.Setenv("LOG_LEVEL", "debug")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if rulesFile != "" {
		cfg.RulesFile = rulesFile
	}
	return cfg, nil
}
