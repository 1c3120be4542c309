package recommender

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrEmptyDataset is returned when no valid cutoff record survives loading.
var ErrEmptyDataset = errors.New("no valid admission records in dataset")

const (
	// DefaultVFM is assumed when no value-for-money data matched a college.
	DefaultVFM = 3.0
	// vfmOtherWeight discounts ratings whose course text did not map to a
	// concrete branch.
	vfmOtherWeight = 0.7
	// vfmAverageWeight discounts a college-wide average used for a branch
	// with no rating of its own.
	vfmAverageWeight = 0.8
)

// LoadReport summarizes one dataset load.
type LoadReport struct {
	Sources      []string
	RecordCount  int
	CollegeCount int
	VFMMatched   int
	Warnings     []RowWarning
}

// Loader builds a MergedTable from raw CSV/TSV files: it resolves college
// identities, extracts branches, normalizes categories and joins VFM
// ratings.
type Loader struct {
	Threshold  int
	Rules      []BranchRule
	CutoffOpts CutoffParseOptions
	VFMOpts    VFMParseOptions
}

// LoadDir scans dir and loads every dataset found in it.
func (l *Loader) LoadDir(dir string) (*MergedTable, *LoadReport, error) {
	files, err := ScanDataDir(dir)
	if err != nil {
		return nil, nil, err
	}
	return l.Load(files)
}

// Load merges the given cutoff sources, in order, into a single table. Rows
// that cannot be used are dropped with a warning; inconsistent windows
// (closing rank before opening rank) are rejected, never repaired.
func (l *Loader) Load(files DatasetFiles) (*MergedTable, *LoadReport, error) {
	matcher := NewMatcher(l.Threshold)
	extractor := NewBranchExtractor(l.Rules)
	report := &LoadReport{}

	var records []CutoffRecord
	for _, path := range files.CutoffPaths {
		rows, warnings, err := parseCutoffFile(path, l.CutoffOpts)
		if err != nil {
			return nil, nil, err
		}
		report.Sources = append(report.Sources, path)
		report.Warnings = append(report.Warnings, warnings...)
		for _, row := range rows {
			if row.Closing < row.Opening {
				report.Warnings = append(report.Warnings, RowWarning{
					Source: row.Source,
					Line:   row.Line,
					Reason: fmt.Sprintf("closing rank %d before opening rank %d", row.Closing, row.Opening),
				})
				continue
			}
			identity := matcher.Resolve(row.Institute)
			records = append(records, CutoffRecord{
				CollegeRaw:       row.Institute,
				CollegeCanonical: identity.CanonicalName,
				BranchRaw:        row.Program,
				Branch:           extractor.Extract(row.Program),
				Category:         ParseCategory(row.SeatType),
				OpeningRank:      row.Opening,
				ClosingRank:      row.Closing,
				Year:             row.Year,
				Source:           row.Source,
			})
		}
	}
	if len(records) == 0 {
		return nil, nil, ErrEmptyDataset
	}

	table := &MergedTable{
		Identities: matcher.Identities(),
		Records:    records,
		BranchVFM:  make(map[string]float64),
	}
	table.reindex()

	if files.VFMPath != "" {
		matched, warnings, err := joinVFM(table, matcher, extractor, files.VFMPath, l.VFMOpts)
		if err != nil {
			return nil, nil, err
		}
		report.Sources = append(report.Sources, files.VFMPath)
		report.Warnings = append(report.Warnings, warnings...)
		report.VFMMatched = matched
	}

	report.RecordCount = len(table.Records)
	report.CollegeCount = len(table.Identities)
	return table, report, nil
}

// joinVFM attaches value-for-money ratings to the identities already in the
// table. Lookups never create identities: a rating for an unknown college is
// dropped with a warning.
func joinVFM(table *MergedTable, matcher *Matcher, extractor *BranchExtractor, path string, opts VFMParseOptions) (int, []RowWarning, error) {
	rows, warnings, err := parseVFMFile(path, opts)
	if err != nil {
		return 0, nil, err
	}

	byCollege := make(map[string][]vfmRating)
	matched := 0
	for _, row := range rows {
		identity, ok := matcher.Lookup(row.Institute)
		if !ok {
			warnings = append(warnings, RowWarning{
				Source: filepath.Base(path),
				Reason: fmt.Sprintf("no college matches %q", row.Institute),
			})
			continue
		}
		matched++
		byCollege[identity.CanonicalName] = append(byCollege[identity.CanonicalName], vfmRating{
			branch: extractor.Extract(row.Course),
			score:  row.Score,
		})
	}

	recordBranches := make(map[string]map[Branch]struct{})
	for _, r := range table.Records {
		set, ok := recordBranches[r.CollegeCanonical]
		if !ok {
			set = make(map[Branch]struct{})
			recordBranches[r.CollegeCanonical] = set
		}
		set[r.Branch] = struct{}{}
	}

	for canonical, ratings := range byCollege {
		identity, ok := table.Identity(canonical)
		if !ok {
			continue
		}
		total := 0.0
		for _, r := range ratings {
			total += r.score
		}
		average := total / float64(len(ratings))
		identity.VFMScore = average
		identity.HasVFM = true

		for branch := range recordBranches[canonical] {
			table.BranchVFM[branchVFMKey(canonical, branch)] = branchVFM(ratings, branch, average)
		}
	}
	return matched, warnings, nil
}

type vfmRating struct {
	branch Branch
	score  float64
}

// branchVFM picks the rating for one branch: a direct rating wins, a rating
// filed under no concrete branch counts at partial weight, and the college
// average is the discounted last resort.
func branchVFM(ratings []vfmRating, branch Branch, average float64) float64 {
	sum, n := 0.0, 0
	otherSum, otherN := 0.0, 0
	for _, r := range ratings {
		switch r.branch {
		case branch:
			sum += r.score
			n++
		case BranchOther:
			otherSum += r.score
			otherN++
		}
	}
	if n > 0 {
		return sum / float64(n)
	}
	if otherN > 0 {
		return (otherSum / float64(otherN)) * vfmOtherWeight
	}
	return average * vfmAverageWeight
}
