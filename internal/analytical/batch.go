package analytical

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

// ValidateBatch validates candidates concurrently with at most maxConcurrency
// workers. Reports are returned in input order. The only error is context
// cancellation; candidate problems are reported as violations.
func (v *Validator) ValidateBatch(
	ctx context.Context,
	candidates []domain.Candidate,
	maxConcurrency int,
) ([]domain.AnalyticalReport, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = domain.DefaultMaxConcurrency
	}
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	reports := make([]domain.AnalyticalReport, len(candidates))
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}

		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			reports[idx] = v.Validate(candidates[idx])
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Summary aggregates analytical reports.
type Summary struct {
	Total              int            `json:"total_hypotheses"`
	Passed             int            `json:"passed"`
	Failed             int            `json:"failed"`
	PassRate           float64        `json:"pass_rate"`
	FilterRate         float64        `json:"filter_rate"`
	ViolationBreakdown map[string]int `json:"violation_breakdown"`
}

// TopViolations returns violation types ordered by descending count, then name.
func (s Summary) TopViolations() []string {
	types := slices.Collect(maps.Keys(s.ViolationBreakdown))
	slices.SortFunc(types, func(a, b string) int {
		if d := s.ViolationBreakdown[b] - s.ViolationBreakdown[a]; d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})
	return types
}

// Summarize counts passes and groups violations by type. Rates are 0 for no reports.
func Summarize(reports []domain.AnalyticalReport) Summary {
	s := Summary{Total: len(reports), ViolationBreakdown: make(map[string]int)}
	for _, r := range reports {
		if r.Passed {
			s.Passed++
		}
		for _, v := range r.Violations {
			s.ViolationBreakdown[domain.ViolationType(v)]++
		}
	}
	s.Failed = s.Total - s.Passed
	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
		s.FilterRate = 1 - s.PassRate
	}
	return s
}
