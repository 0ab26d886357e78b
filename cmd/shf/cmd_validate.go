package main

import (
	"github.com/spf13/cobra"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/analytical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Run only the analytical checks over a candidate file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := generation.LoadFile(args[0])
			if err != nil {
				return err
			}
			reports, err := analytical.NewValidator().ValidateBatch(cmd.Context(), candidates, a.cfg.Pipeline.MaxConcurrency)
			if err != nil {
				return err
			}

			if a.json {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"reports": reports,
					"summary": analytical.Summarize(reports),
				})
			}
			return printAnalytical(cmd.OutOrStdout(), candidates, reports)
		},
	}
	return cmd
}
