// Package cli implements the hookbridge command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	envFile    string

	cfg    *Config
	logger *slog.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config YAML (default: ./hookbridge.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading HOOKBRIDGE_* variables")
}

var rootCmd = &cobra.Command{
	Use:   "hookbridge",
	Short: "Webhook bridge between a content platform and a workflow engine",
	Long: "Fires outbound webhooks for content events and routes inbound workflow-engine\n" +
		"actions to content mutations. Configuration comes from hookbridge.yaml,\n" +
		"HOOKBRIDGE_* environment variables and an optional .env file.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := loadEnvFile(envFile, cmd.Flags().Changed("env-file")); err != nil {
			return err
		}
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = newLogger(cfg.Log, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
