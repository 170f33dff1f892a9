package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/hestia/internal/config"
	"github.com/turtacn/hestia/internal/orchestrator"
	"github.com/turtacn/hestia/internal/pidfile"
	"github.com/turtacn/hestia/pkg/logger"
)

var watchFlag bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the initialize and start phases, then serve until signalled",
	Long: `Run the server lifecycle in the foreground.

Signals:
  SIGHUP           restart (stop phase, then initialize and start)
  SIGINT, SIGTERM  stop phase, then exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("watch") {
			cfg.Watch.Enabled = watchFlag
		}
		logger.InitLogger(cfg.Observability.LogLevel)
		logger.Log.Info("Booting hestia", "environment", cfg.Environment, "server_id", cfg.ServerID)
		return orchestrator.NewEngine(cfg).Run(context.Background())
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the initialize phase once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.InitLoggerTo(os.Stderr, cfg.Observability.LogLevel)

		ctl := orchestrator.NewController(cfg, nil, nil)
		if err := ctl.Initialize(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d initializers loaded\n", len(ctl.Snapshot().Initializers))
		return nil
	},
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the ordered phase lists without running them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.InitLoggerTo(os.Stderr, cfg.Observability.LogLevel)

		ctl := orchestrator.NewController(cfg, nil, nil)
		if _, err := ctl.Build(cmd.Context()); err != nil {
			return err
		}
		plan := ctl.Plan()
		out := cmd.OutOrStdout()
		for _, phase := range []struct {
			name  string
			steps []string
		}{
			{"load", plan.Load},
			{"start", plan.Start},
			{"stop", plan.Stop},
		} {
			fmt.Fprintf(out, "%s: %s\n", phase.name, strings.Join(phase.steps, ", "))
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var pidCmd = &cobra.Command{
	Use:   "pid",
	Short: "Print the PID recorded by a running hestia",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pid, err := pidfile.New(cfg.PIDFile).Read()
		if err != nil {
			return fmt.Errorf("no running server recorded: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), pid)
		return nil
	},
}

func init() {
	startCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "restart when initializer sources change")
	configCmd.AddCommand(configShowCmd)
}

// Personal.AI order the ending
