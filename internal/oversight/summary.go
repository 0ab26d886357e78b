package oversight

import "github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"

// Summary aggregates meta reports.
type Summary struct {
	Total           int      `json:"total_analyzed"`
	Approved        int      `json:"meta_approved"`
	ApprovalRate    float64  `json:"meta_approval_rate"`
	AvgConsistency  float64  `json:"avg_consistency_score"`
	AvgQuality      float64  `json:"avg_validation_quality"`
	EnsembleScore   float64  `json:"ensemble_score"`
	Recommendations []string `json:"recommendations"`
}

// Summarize aggregates reports. Rates and means are 0 for no reports.
func Summarize(reports []domain.MetaReport) Summary {
	s := Summary{Total: len(reports), Recommendations: make([]string, 0, len(reports))}
	var consistency, quality float64
	for _, r := range reports {
		if r.Passed {
			s.Approved++
		}
		consistency += r.ConsistencyScore
		quality += r.Quality.Score
		s.Recommendations = append(s.Recommendations, r.Recommendation)
	}
	if s.Total > 0 {
		n := float64(s.Total)
		s.ApprovalRate = float64(s.Approved) / n
		s.AvgConsistency = consistency / n
		s.AvgQuality = quality / n
		s.EnsembleScore = reports[0].EnsembleScore
	}
	return s
}
