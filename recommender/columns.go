package recommender

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// ColumnCandidates defines possible header names for auto-detecting columns
// in admission cutoff files and VFM rating files.
type ColumnCandidates struct {
	Institute []string `json:"institute"`
	Program   []string `json:"program"`
	SeatType  []string `json:"seatType"`
	Opening   []string `json:"opening"`
	Closing   []string `json:"closing"`
	Year      []string `json:"year"`
	VFMCourse []string `json:"vfmCourse"`
	VFMScore  []string `json:"vfmScore"`
}

var (
	columnCandidatesMu  sync.RWMutex
	activeColumnOptions = defaultColumnCandidates()
)

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Institute: []string{"institute", "institution", "college", "college name", "institute name"},
		Program:   []string{"academic program name", "program", "branch", "course", "course name"},
		SeatType:  []string{"seat type", "seattype", "category", "quota"},
		Opening:   []string{"opening rank", "openingrank", "or", "opening"},
		Closing:   []string{"closing rank", "closingrank", "cr", "closing"},
		Year:      []string{"year", "admission year"},
		VFMCourse: []string{"course", "branch", "program", "academic program name"},
		VFMScore:  []string{"value for money", "vfm", "vfm score", "value_for_money", "rating"},
	}
}

// DefaultColumnCandidates returns the built-in column detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates().clone()
}

// SetColumnCandidates updates the candidates used during auto-detection.
// Fields left nil fall back to the built-in defaults, allowing callers to
// override only the parts they need.
func SetColumnCandidates(candidates ColumnCandidates) {
	columnCandidatesMu.Lock()
	defer columnCandidatesMu.Unlock()
	activeColumnOptions = candidates.withDefaults()
}

func getColumnCandidates() ColumnCandidates {
	columnCandidatesMu.RLock()
	defer columnCandidatesMu.RUnlock()
	return activeColumnOptions.clone()
}

func (c ColumnCandidates) withDefaults() ColumnCandidates {
	defaults := defaultColumnCandidates()
	return ColumnCandidates{
		Institute: pickStrings(c.Institute, defaults.Institute),
		Program:   pickStrings(c.Program, defaults.Program),
		SeatType:  pickStrings(c.SeatType, defaults.SeatType),
		Opening:   pickStrings(c.Opening, defaults.Opening),
		Closing:   pickStrings(c.Closing, defaults.Closing),
		Year:      pickStrings(c.Year, defaults.Year),
		VFMCourse: pickStrings(c.VFMCourse, defaults.VFMCourse),
		VFMScore:  pickStrings(c.VFMScore, defaults.VFMScore),
	}
}

func (c ColumnCandidates) clone() ColumnCandidates {
	return ColumnCandidates{
		Institute: cloneStrings(c.Institute),
		Program:   cloneStrings(c.Program),
		SeatType:  cloneStrings(c.SeatType),
		Opening:   cloneStrings(c.Opening),
		Closing:   cloneStrings(c.Closing),
		Year:      cloneStrings(c.Year),
		VFMCourse: cloneStrings(c.VFMCourse),
		VFMScore:  cloneStrings(c.VFMScore),
	}
}

func pickStrings(custom, fallback []string) []string {
	if custom == nil {
		return cloneStrings(fallback)
	}
	return cloneStrings(custom)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// CutoffParseOptions lets callers override column detection for one cutoff
// file. Values may be header names or 1-based "#n" indices.
type CutoffParseOptions struct {
	InstituteColumn string
	ProgramColumn   string
	SeatTypeColumn  string
	OpeningColumn   string
	ClosingColumn   string
	YearColumn      string
}

// VFMParseOptions is the override counterpart for VFM rating files.
type VFMParseOptions struct {
	InstituteColumn string
	CourseColumn    string
	ScoreColumn     string
}

type cutoffColumns struct {
	institute int
	program   int
	seatType  int
	opening   int
	closing   int
	year      int
}

type vfmColumns struct {
	institute int
	course    int
	score     int
}

func resolveCutoffColumns(header []string, opts CutoffParseOptions) (cutoffColumns, error) {
	cands := getColumnCandidates()
	cols := cutoffColumns{year: -1}
	var err error
	if cols.institute, err = pickColumn(header, opts.InstituteColumn, cands.Institute); err != nil {
		return cols, err
	}
	if cols.program, err = pickColumn(header, opts.ProgramColumn, cands.Program); err != nil {
		return cols, err
	}
	if cols.seatType, err = pickColumn(header, opts.SeatTypeColumn, cands.SeatType); err != nil {
		return cols, err
	}
	if cols.opening, err = pickColumn(header, opts.OpeningColumn, cands.Opening); err != nil {
		return cols, err
	}
	if cols.closing, err = pickColumn(header, opts.ClosingColumn, cands.Closing); err != nil {
		return cols, err
	}
	if cols.year, err = pickColumn(header, opts.YearColumn, cands.Year); err != nil {
		return cols, err
	}
	switch {
	case cols.institute < 0:
		return cols, fmt.Errorf("no institute column found")
	case cols.program < 0:
		return cols, fmt.Errorf("no program column found")
	case cols.seatType < 0:
		return cols, fmt.Errorf("no seat type column found")
	case cols.opening < 0:
		return cols, fmt.Errorf("no opening rank column found")
	case cols.closing < 0:
		return cols, fmt.Errorf("no closing rank column found")
	}
	return cols, nil
}

func resolveVFMColumns(header []string, opts VFMParseOptions) (vfmColumns, error) {
	cands := getColumnCandidates()
	cols := vfmColumns{course: -1}
	var err error
	if cols.institute, err = pickColumn(header, opts.InstituteColumn, cands.Institute); err != nil {
		return cols, err
	}
	if cols.course, err = pickColumn(header, opts.CourseColumn, cands.VFMCourse); err != nil {
		return cols, err
	}
	if cols.score, err = pickColumn(header, opts.ScoreColumn, cands.VFMScore); err != nil {
		return cols, err
	}
	if cols.institute < 0 {
		return cols, fmt.Errorf("no institute column found")
	}
	if cols.score < 0 {
		return cols, fmt.Errorf("no score column found")
	}
	return cols, nil
}

func pickColumn(header []string, explicit string, candidates []string) (int, error) {
	if strings.TrimSpace(explicit) != "" {
		return matchExplicitColumn(header, explicit)
	}
	return findColumn(header, candidates), nil
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		for _, cand := range candidates {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

func matchExplicitColumn(header []string, explicit string) (int, error) {
	trimmed := strings.TrimSpace(explicit)
	if trimmed == "" {
		return -1, nil
	}
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, err
		}
		if idx >= len(header) {
			return -1, fmt.Errorf("column index %s is out of range", trimmed)
		}
		return idx, nil
	}
	return -1, fmt.Errorf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	if trimmed == "" {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}
