package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/config"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/generation"
)

// addRequestFlags registers the flags that describe a pipeline request.
func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().String("prompt", "", "Problem statement to generate candidates from")
	cmd.Flags().Int("count", domain.DefaultCandidateCount, "Number of candidates to generate")
	cmd.Flags().String("input", "", "YAML or JSON file of candidates (overrides --prompt)")
	cmd.Flags().Bool("numerical", false, "Run numerical simulation on analytical survivors")
	cmd.Flags().Bool("meta", true, "Run batch oversight")
	cmd.Flags().Bool("meta-override", true, "Let oversight overwrite earlier rejections")
	cmd.Flags().Float64("threshold", domain.DefaultConsistencyThreshold, "Consistency threshold for oversight")
	cmd.Flags().Int("concurrency", domain.DefaultMaxConcurrency, "Maximum parallel candidate checks")
	cmd.Flags().Int("max-complexity", 0, "Keep only generated candidates with at most this many parameters (0 = no cap)")
	cmd.Flags().StringSlice("domain", nil, "Keep only generated candidates in these domains")
}

// request builds a pipeline request from the config defaults and the flags
// the user set explicitly.
func (a *app) request(cmd *cobra.Command) (domain.PipelineRequest, error) {
	flags := cmd.Flags()
	req := domain.PipelineRequest{
		Options:     a.cfg.Pipeline,
		Constraints: a.cfg.Generator.Constraints,
	}

	if flags.Changed("numerical") {
		req.Options.EnableNumerical, _ = flags.GetBool("numerical")
	}
	if flags.Changed("meta") {
		req.Options.EnableMeta, _ = flags.GetBool("meta")
	}
	if flags.Changed("meta-override") {
		req.Options.MetaCanOverridePriorRejection, _ = flags.GetBool("meta-override")
	}
	if flags.Changed("threshold") {
		req.Options.ConsistencyThreshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("concurrency") {
		req.Options.MaxConcurrency, _ = flags.GetInt("concurrency")
	}

	if flags.Changed("max-complexity") {
		req.Constraints.MaxComplexity, _ = flags.GetInt("max-complexity")
	}
	if flags.Changed("domain") {
		domains, _ := flags.GetStringSlice("domain")
		req.Constraints.AllowedDomains = config.ParseDomains(strings.Join(domains, ","))
	}

	req.Prompt, _ = flags.GetString("prompt")
	req.Count, _ = flags.GetInt("count")
	if input, _ := flags.GetString("input"); input != "" {
		candidates, err := generation.LoadFile(input)
		if err != nil {
			return domain.PipelineRequest{}, err
		}
		req.Candidates = candidates
	}

	if req.Prompt == "" && len(req.Candidates) == 0 {
		return domain.PipelineRequest{}, fmt.Errorf("either --prompt or --input is required")
	}
	return req, nil
}
