package main

import (
	"github.com/spf13/cobra"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/numerical"
)

func newEstimateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate simulation cost for a candidate batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}
			candidates := req.Candidates
			if req.NeedsGeneration() {
				gen, err := generation.New(a.cfg.Generator.Name, a.cfg.Generator.Seed)
				if err != nil {
					return err
				}
				out, err := generation.Run(cmd.Context(), gen, req.Prompt, req.EffectiveCount(), req.Constraints)
				if err != nil {
					return err
				}
				candidates = out.Candidates
			}

			estimates, total := numerical.EstimateBatch(candidates)
			if a.json {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"estimates":                 estimates,
					"total_estimated_cpu_hours": total,
				})
			}
			return printEstimates(cmd.OutOrStdout(), estimates, total)
		},
	}
	addRequestFlags(cmd)
	return cmd
}
