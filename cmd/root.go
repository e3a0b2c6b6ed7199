package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/saransh482003/healthassist/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "healthassist",
	Short: "Health assistance backend for senior citizens",
	Long:  "Serves the health-assistance API: doctor discovery from hospital websites, nearby place lookup, medication reminders, and an LLM health chatbot.",
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
