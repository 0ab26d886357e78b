// Command shf validates AI-proposed engineering hypotheses through
// analytical screening, numerical simulation and batch oversight.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/config"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/logging"
)

var version = "0.1.0-dev"

// app carries the state shared by every subcommand once the root command
// has loaded the configuration.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	json   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "shf",
		Short: "Structured hallucination validation pipeline",
		Long: `shf takes machine-generated engineering hypotheses and filters them
through analytical physics checks, optional numerical simulation and a
batch-level oversight pass, reporting which candidates survive.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(a),
		newValidateCmd(a),
		newEstimateCmd(a),
		newWorkerCmd(a),
		newSubmitCmd(a),
		newHistoryCmd(a),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		if !logging.ValidLevel(level) {
			return fmt.Errorf("invalid log level %q", level)
		}
		cfg.Logging.Level = level
	}
	a.cfg = cfg
	a.json, _ = cmd.Flags().GetBool("json")
	a.logger = logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
	slog.SetDefault(a.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "shf version %s\n", version)
			return err
		},
	}
}

