package main

import (
	"github.com/spf13/cobra"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/pipeline"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/store"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/worker"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the validation pipeline in process",
		Example: `  shf run --prompt "improve heat dissipation of a CPU cooler" --count 5
  shf run --input candidates.yaml --numerical --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			opts := []pipeline.Option{pipeline.WithLogger(a.logger)}
			if noStore, _ := cmd.Flags().GetBool("no-store"); !noStore && a.cfg.Store.Path != "" {
				s, err := store.Open(ctx, a.cfg.Store.Path)
				if err != nil {
					return err
				}
				defer s.Close()
				opts = append(opts, pipeline.WithEventSink(s), pipeline.WithRecorder(s))
			}

			rdb := worker.NewRedisClient(a.cfg.Redis)
			if rdb != nil {
				defer rdb.Close()
			}
			deps, err := worker.NewDependencies(a.cfg, nil, rdb, a.logger)
			if err != nil {
				return err
			}
			opts = append(opts,
				pipeline.WithGenerator(deps.Generator),
				pipeline.WithValidator(deps.Validator),
				pipeline.WithSimulator(deps.Simulator),
			)

			rep, err := pipeline.New(opts...).Run(ctx, req)
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printReport(cmd.OutOrStdout(), rep)
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().Bool("no-store", false, "Do not record the run in the history database")
	return cmd
}
