package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/store"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/worker"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/workflow"
)

func newSubmitCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Start the validation workflow on a Temporal cluster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := a.request(cmd)
			if err != nil {
				return err
			}
			if req.RunID == "" {
				req.RunID = uuid.NewString()
			}
			ctx := cmd.Context()

			c, err := worker.Dial(a.cfg.Temporal, a.logger)
			if err != nil {
				return err
			}
			defer c.Close()

			run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
				ID:        "shf-" + req.RunID,
				TaskQueue: a.cfg.Temporal.TaskQueue,
			}, workflow.ValidationWorkflow, req)
			if err != nil {
				return fmt.Errorf("failed to start workflow: %w", err)
			}

			if wait, _ := cmd.Flags().GetBool("wait"); !wait {
				if a.json {
					return writeJSON(cmd.OutOrStdout(), map[string]string{
						"workflow_id": run.GetID(),
						"run_id":      req.RunID,
					})
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "started workflow %s (run %s)\n", run.GetID(), req.RunID)
				return err
			}

			var rep *domain.PipelineReport
			if err := run.Get(ctx, &rep); err != nil {
				return fmt.Errorf("workflow %s failed: %w", run.GetID(), err)
			}
			if a.cfg.Store.Path != "" {
				s, err := store.Open(ctx, a.cfg.Store.Path)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.SaveRun(ctx, req, rep); err != nil {
					a.logger.Warn("failed to record run", "run_id", rep.RunID, "error", err)
				}
			}
			if a.json {
				return writeJSON(cmd.OutOrStdout(), rep)
			}
			return printReport(cmd.OutOrStdout(), rep)
		},
	}
	addRequestFlags(cmd)
	cmd.Flags().Bool("wait", false, "Wait for the workflow and print its report")
	return cmd
}
