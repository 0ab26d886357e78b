package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/analytical"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/store"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders the records of a run followed by the summary.
func printReport(w io.Writer, rep *domain.PipelineReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOMAIN\tSTATUS\tANALYTICAL\tNUMERICAL\tMETA\tVIOLATIONS")
	for _, r := range rep.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Candidate.ID,
			r.Candidate.Domain,
			r.FinalStatus,
			verdict(&r.AnalyticalPassed),
			verdict(r.NumericalPassed),
			verdict(r.MetaPassed),
			strings.Join(r.Violations(), "; "),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nRun %s\n", rep.RunID)
	fmt.Fprintf(w, "  total:              %d\n", rep.TotalGenerated)
	fmt.Fprintf(w, "  passed analytical:  %d (filter rate %.1f%%)\n", rep.PassedAnalytical, 100*rep.AnalyticalFilterRate)
	fmt.Fprintf(w, "  passed numerical:   %d\n", rep.PassedNumerical)
	fmt.Fprintf(w, "  passed meta:        %d\n", rep.PassedMeta)
	_, err := fmt.Fprintf(w, "  final passed:       %d (acceptance %.1f%%)\n", rep.FinalPassed, 100*rep.FinalAcceptanceRate)
	return err
}

func printAnalytical(w io.Writer, candidates []domain.Candidate, reports []domain.AnalyticalReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDOMAIN\tPASSED\tVIOLATIONS\tWARNINGS")
	for i, rep := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
			candidates[i].ID,
			candidates[i].Domain,
			rep.Passed,
			strings.Join(rep.Violations, "; "),
			strings.Join(rep.Warnings, "; "),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sum := analytical.Summarize(reports)
	fmt.Fprintf(w, "\nPassed %d/%d (%.1f%% filtered)\n", sum.Passed, sum.Total, 100*sum.FilterRate)
	for _, vt := range sum.TopViolations() {
		fmt.Fprintf(w, "  %-40s %d\n", vt, sum.ViolationBreakdown[vt])
	}
	return nil
}

func printEstimates(w io.Writer, estimates []domain.CostEstimate, total float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMESH\tNODES\tRELATIVE\tCPU_HOURS\tMEMORY_GB")
	for _, e := range estimates {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%.1f\n",
			e.CandidateID, e.MeshSize, e.NodeCount, e.RelativeCost, e.EstimatedCPUHours, e.EstimatedMemoryGB)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal estimated CPU hours: %.2f\n", total)
	return err
}

func printHistory(w io.Writer, runs []store.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tTOTAL\tPASSED\tACCEPTANCE\tPROMPT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f%%\t%s\n",
			r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Total, r.FinalPassed, 100*r.AcceptanceRate, r.Prompt)
	}
	return tw.Flush()
}

func verdict(b *bool) string {
	switch {
	case b == nil:
		return "-"
	case *b:
		return "pass"
	default:
		return "fail"
	}
}
