package domain

import "fmt"

// ApplyAnalyticalReports applies one analytical report per record, matched
// by position.
func ApplyAnalyticalReports(records []ValidationRecord, reports []AnalyticalReport) error {
	if err := CheckReportCount("analytical", len(records), len(reports)); err != nil {
		return err
	}
	for i := range records {
		if err := records[i].ApplyAnalytical(reports[i]); err != nil {
			return err
		}
	}
	return nil
}

// PendingNumerical returns the indexes and candidates of records awaiting
// simulation.
func PendingNumerical(records []ValidationRecord) ([]int, []Candidate) {
	var idx []int
	var candidates []Candidate
	for i := range records {
		if records[i].NeedsNumerical() {
			idx = append(idx, i)
			candidates = append(candidates, records[i].Candidate)
		}
	}
	return idx, candidates
}

// ApplyNumericalReports applies reports to the records at idx, as returned
// by PendingNumerical.
func ApplyNumericalReports(records []ValidationRecord, idx []int, reports []NumericalReport) error {
	if err := CheckReportCount("numerical", len(idx), len(reports)); err != nil {
		return err
	}
	for j, i := range idx {
		if i < 0 || i >= len(records) {
			return fmt.Errorf("%w: record index %d out of range", ErrBatchMismatch, i)
		}
		if err := records[i].ApplyNumerical(reports[j]); err != nil {
			return err
		}
	}
	return nil
}

// FinalizeAll settles every record that survived the per-candidate stages.
func FinalizeAll(records []ValidationRecord) {
	for i := range records {
		records[i].Finalize()
	}
}

// ApplyMetaReports applies one meta report per record, matched by position.
func ApplyMetaReports(records []ValidationRecord, reports []MetaReport, overridePrior bool) error {
	if err := CheckReportCount("meta", len(records), len(reports)); err != nil {
		return err
	}
	for i := range records {
		if err := records[i].ApplyMeta(reports[i], overridePrior); err != nil {
			return err
		}
	}
	return nil
}
