package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or show one run with its events",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Store.Path == "" {
				return fmt.Errorf("run history is disabled (store.path is empty)")
			}
			ctx := cmd.Context()
			s, err := store.Open(ctx, a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer s.Close()

			if len(args) == 0 {
				limit, _ := cmd.Flags().GetInt("limit")
				runs, err := s.ListRuns(ctx, limit)
				if err != nil {
					return err
				}
				if a.json {
					return writeJSON(cmd.OutOrStdout(), runs)
				}
				return printHistory(cmd.OutOrStdout(), runs)
			}

			rep, err := s.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			evs, err := s.Events(ctx, args[0])
			if err != nil {
				return err
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"report": rep, "events": evs})
			}
			if err := printReport(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "  events:             %d\n", len(evs))
			return err
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}
