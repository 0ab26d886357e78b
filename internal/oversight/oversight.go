// Package oversight implements batch-level meta validation. It is a barrier:
// every verdict is computed against the complete batch of records, because
// consistency, outlier and ensemble signals are population statistics.
//
// Results for a record depend only on the batch membership, never on its
// order.
package oversight

import (
	"fmt"
	"math"
	"slices"

	"github.com/zpsparks2026/Structured-Hallucinations-Framework/internal/domain"
)

const (
	// ratioLimit is the largest max/min ratio at which two parameter values
	// still count as consistent.
	ratioLimit = 10.0
	ratioEps   = 1e-10

	// Fraction of the other records that must share a violation type for a
	// common failure pattern, as an integer ratio.
	patternNum, patternDen = 3, 10

	minOutlierSamples = 3
	outlierSigma      = 3.0

	missingCheckPenalty   = 0.2
	nonConvergencePenalty = 0.3

	maxSystematicErrors = 2
	minQuality          = 0.5
	strongEnsemble      = 0.7
	moderateEnsemble    = 0.4
)

// Issue and error texts.
const (
	commonPatternError = "Common validation failure pattern detected"
)

// Analyzer runs meta oversight with a fixed consistency threshold.
type Analyzer struct {
	threshold float64
}

// NewAnalyzer creates an analyzer. A record passes oversight when its
// consistency score is at least threshold.
func NewAnalyzer(threshold float64) *Analyzer {
	return &Analyzer{threshold: threshold}
}

// AnalyzeBatch returns one meta report per record, in input order.
func (a *Analyzer) AnalyzeBatch(records []domain.ValidationRecord) []domain.MetaReport {
	if len(records) == 0 {
		return []domain.MetaReport{}
	}

	dists := parameterDistributions(records)
	types := make([]map[string]struct{}, len(records))
	analyticalPassed := 0
	for i := range records {
		types[i] = violationTypes(&records[i])
		if records[i].AnalyticalPassed {
			analyticalPassed++
		}
	}
	ensemble := float64(analyticalPassed) / float64(len(records))

	reports := make([]domain.MetaReport, len(records))
	for i := range records {
		score, issues := consistency(records, i)
		systematic := systematicErrors(records, types, dists, i)
		quality := assessQuality(&records[i])

		reports[i] = domain.MetaReport{
			CandidateID:       records[i].Candidate.ID,
			Passed:            score >= a.threshold,
			ConsistencyScore:  score,
			ConsistencyIssues: issues,
			SystematicErrors:  systematic,
			Quality:           quality,
			EnsembleScore:     ensemble,
			Recommendation:    a.recommend(score, len(systematic), quality.Score, ensemble),
		}
	}
	return reports
}

// consistency compares record i with every same-domain peer. The score is
// the consistent fraction of peers, or 1 without peers.
func consistency(records []domain.ValidationRecord, i int) (float64, []string) {
	self := &records[i].Candidate
	issues := []string{}
	peers, consistent := 0, 0
	for j := range records {
		if j == i {
			continue
		}
		other := &records[j].Candidate
		if other.Domain != self.Domain {
			continue
		}
		peers++
		if parametersConsistent(self.Parameters, other.Parameters) {
			consistent++
			continue
		}
		issues = append(issues, fmt.Sprintf("Parameter inconsistency with hypothesis %s", other.ID))
	}
	slices.Sort(issues)
	if peers == 0 {
		return 1.0, issues
	}
	return float64(consistent) / float64(peers), issues
}

// parametersConsistent reports whether every shared parameter is within a
// 10x ratio band.
func parametersConsistent(a, b map[string]float64) bool {
	for name, v1 := range a {
		v2, ok := b[name]
		if !ok {
			continue
		}
		if math.Max(v1, v2)/(math.Min(v1, v2)+ratioEps) > ratioLimit {
			return false
		}
	}
	return true
}

func violationTypes(r *domain.ValidationRecord) map[string]struct{} {
	out := make(map[string]struct{})
	for _, v := range r.Violations() {
		out[domain.ViolationType(v)] = struct{}{}
	}
	return out
}

func sharesType(a, b map[string]struct{}) bool {
	for t := range a {
		if _, ok := b[t]; ok {
			return true
		}
	}
	return false
}

// systematicErrors flags a shared failure pattern and parameter outliers.
func systematicErrors(
	records []domain.ValidationRecord,
	types []map[string]struct{},
	dists map[string]distribution,
	i int,
) []string {
	errs := []string{}

	if len(types[i]) > 0 {
		others, common := len(records)-1, 0
		for j := range records {
			if j != i && sharesType(types[i], types[j]) {
				common++
			}
		}
		if common > 0 && common*patternDen >= others*patternNum {
			errs = append(errs, commonPatternError)
		}
	}

	for _, name := range records[i].Candidate.ParameterNames() {
		d, ok := dists[name]
		if !ok || d.n < minOutlierSamples {
			continue
		}
		v := records[i].Candidate.Parameters[name]
		if math.Abs(v-d.mean) > outlierSigma*d.std {
			errs = append(errs, fmt.Sprintf("Parameter '%s' is statistical outlier", name))
		}
	}
	return errs
}

type distribution struct {
	n    int
	mean float64
	std  float64
}

// parameterDistributions computes the population mean and standard
// deviation of every parameter across the batch. Values are sorted before
// summing so the result does not depend on record order.
func parameterDistributions(records []domain.ValidationRecord) map[string]distribution {
	values := make(map[string][]float64)
	for i := range records {
		for name, v := range records[i].Candidate.Parameters {
			values[name] = append(values[name], v)
		}
	}

	out := make(map[string]distribution, len(values))
	for name, vs := range values {
		slices.Sort(vs)
		var sum float64
		for _, v := range vs {
			sum += v
		}
		n := float64(len(vs))
		mean := sum / n
		var sq float64
		for _, v := range vs {
			sq += (v - mean) * (v - mean)
		}
		out[name] = distribution{n: len(vs), mean: mean, std: math.Sqrt(sq / n)}
	}
	return out
}

// assessQuality scores how complete the record's validation was. A record
// without an analytical report counts as missing checks.
func assessQuality(r *domain.ValidationRecord) domain.QualityAssessment {
	score := 1.0
	if r.Analytical == nil || !hasRequiredChecks(r.Analytical) {
		score -= missingCheckPenalty
	}
	if r.Numerical != nil && !r.Numerical.Converged {
		score -= nonConvergencePenalty
	}
	score = math.Max(0, score)
	return domain.QualityAssessment{Score: score, Rating: domain.RateQuality(score)}
}

func hasRequiredChecks(rep *domain.AnalyticalReport) bool {
	for _, check := range domain.RequiredQualityChecks() {
		if !rep.HasCheck(check) {
			return false
		}
	}
	return true
}

// recommend applies the ordered decision list; the first match wins.
func (a *Analyzer) recommend(consistency float64, systematic int, quality, ensemble float64) string {
	switch {
	case consistency < a.threshold:
		return domain.RecommendReject
	case systematic > maxSystematicErrors:
		return domain.RecommendCaution
	case quality < minQuality:
		return domain.RecommendRevalidate
	case ensemble > strongEnsemble:
		return domain.RecommendStrong
	case ensemble > moderateEnsemble:
		return domain.RecommendModerate
	default:
		return domain.RecommendConditional
	}
}
