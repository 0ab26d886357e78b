package domain

// QualityRating buckets a validation quality score.
type QualityRating string

// Quality ratings.
const (
	QualityHigh   QualityRating = "high"
	QualityMedium QualityRating = "medium"
	QualityLow    QualityRating = "low"
)

// RateQuality maps a quality score to its rating.
func RateQuality(score float64) QualityRating {
	switch {
	case score > 0.8:
		return QualityHigh
	case score > 0.5:
		return QualityMedium
	default:
		return QualityLow
	}
}

// QualityAssessment scores how thoroughly a record was validated.
type QualityAssessment struct {
	Score  float64       `json:"score"`
	Rating QualityRating `json:"rating"`
}

// Recommendation texts produced by batch oversight, in decision order.
const (
	RecommendReject      = "REJECT: inconsistent with other validated hypotheses"
	RecommendCaution     = "CAUTION: multiple systematic issues"
	RecommendRevalidate  = "RE-VALIDATE: validation quality insufficient"
	RecommendStrong      = "APPROVED: strong ensemble support"
	RecommendModerate    = "APPROVED: moderate confidence"
	RecommendConditional = "CONDITIONAL: weak ensemble support"
)

// MetaReport is the verdict of batch oversight for one record.
type MetaReport struct {
	CandidateID       string            `json:"candidate_id"`
	Passed            bool              `json:"passed"`
	ConsistencyScore  float64           `json:"consistency_score"`
	ConsistencyIssues []string          `json:"consistency_issues"`
	SystematicErrors  []string          `json:"systematic_errors"`
	Quality           QualityAssessment `json:"validation_quality"`
	EnsembleScore     float64           `json:"ensemble_score"`
	Recommendation    string            `json:"recommendation"`
}
