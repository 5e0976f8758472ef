package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headwaters-lab/musselsim/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "musselsim",
	Short: "Invasive mussel spread simulator",
	Long:  "Distributes boater trips from county origins to water bodies with a gravity model, then runs Monte Carlo trials of mussel settlement over a multi-year horizon.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
