package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/hestia/internal/config"
	"github.com/turtacn/hestia/pkg/protocol"
)

// Version is set at build time.
var Version = "dev"

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "hestia",
	Short:         "hestia: phased lifecycle orchestrator for pluggable initializers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("HESTIA_CONFIG"), "config file path (default ./hestia.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override observability.log_level")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pidCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration and applies command-line overrides.
func loadConfig() (*protocol.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}
	return cfg, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hestia version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hestia %s\n", Version)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Personal.AI order the ending
