package recommender

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// RowWarning records a data row that was skipped during loading, with enough
// context to find it in the source file. Line numbers are 1-based and count
// the header.
type RowWarning struct {
	Source string
	Line   int
	Reason string
}

func (w RowWarning) String() string {
	return fmt.Sprintf("%s:%d: %s", w.Source, w.Line, w.Reason)
}

// rawCutoffRow is one cutoff data point before identity resolution.
type rawCutoffRow struct {
	Institute string
	Program   string
	SeatType  string
	Opening   int
	Closing   int
	Year      int
	Source    string
	Line      int
}

// rawVFMRow is one value-for-money rating before joining.
type rawVFMRow struct {
	Institute string
	Course    string
	Score     float64
}

// DatasetFiles is the result of scanning a data directory: cutoff sources in
// lexical order plus an optional VFM ratings file.
type DatasetFiles struct {
	CutoffPaths []string
	VFMPath     string
}

// ScanDataDir lists the CSV/TSV files under dir. A file whose name contains
// "value for money" (or "value_for_money") carries VFM ratings rather than
// admission cutoffs; the first such file wins.
func ScanDataDir(dir string) (DatasetFiles, error) {
	var out DatasetFiles
	entries, err := os.ReadDir(dir)
	if err != nil {
		return out, fmt.Errorf("read data dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".csv" && ext != ".tsv" {
			continue
		}
		lower := strings.ToLower(name)
		full := filepath.Join(dir, name)
		if strings.Contains(lower, "value for money") || strings.Contains(lower, "value_for_money") {
			if out.VFMPath == "" {
				out.VFMPath = full
			}
			continue
		}
		out.CutoffPaths = append(out.CutoffPaths, full)
	}
	sort.Strings(out.CutoffPaths)
	if len(out.CutoffPaths) == 0 && out.VFMPath == "" {
		return out, fmt.Errorf("no CSV/TSV files in %s", dir)
	}
	return out, nil
}

// parseCutoffFile reads one admission cutoff CSV/TSV into raw rows. Rows with
// missing required cells or unparseable ranks are reported as warnings, never
// as errors; a file only fails as a whole when it cannot be read at all.
func parseCutoffFile(path string, opts CutoffParseOptions) ([]rawCutoffRow, []RowWarning, error) {
	rows, err := readDelimited(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty file: %s", filepath.Base(path))
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = normalizeCell(cell)
	}
	cols, err := resolveCutoffColumns(header, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	source := filepath.Base(path)
	out := make([]rawCutoffRow, 0, len(rows)-1)
	var warnings []RowWarning
	for i, row := range rows[1:] {
		line := i + 2
		warn := func(reason string) {
			warnings = append(warnings, RowWarning{Source: source, Line: line, Reason: reason})
		}
		raw := rawCutoffRow{Source: source, Line: line, Year: 0}
		raw.Institute = cellAt(row, cols.institute)
		raw.Program = cellAt(row, cols.program)
		raw.SeatType = cellAt(row, cols.seatType)
		if raw.Institute == "" || raw.Program == "" || raw.SeatType == "" {
			warn("missing institute, program or seat type")
			continue
		}
		opening, err := parseRank(cellAt(row, cols.opening))
		if err != nil {
			warn("opening rank: " + err.Error())
			continue
		}
		closing, err := parseRank(cellAt(row, cols.closing))
		if err != nil {
			warn("closing rank: " + err.Error())
			continue
		}
		raw.Opening, raw.Closing = opening, closing
		if cols.year >= 0 {
			if y, err := strconv.Atoi(cellAt(row, cols.year)); err == nil {
				raw.Year = y
			}
		}
		out = append(out, raw)
	}
	return out, warnings, nil
}

// parseVFMFile reads a value-for-money ratings CSV/TSV.
func parseVFMFile(path string, opts VFMParseOptions) ([]rawVFMRow, []RowWarning, error) {
	rows, err := readDelimited(path)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty file: %s", filepath.Base(path))
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = normalizeCell(cell)
	}
	cols, err := resolveVFMColumns(header, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	source := filepath.Base(path)
	out := make([]rawVFMRow, 0, len(rows)-1)
	var warnings []RowWarning
	for i, row := range rows[1:] {
		line := i + 2
		institute := cellAt(row, cols.institute)
		scoreCell := cellAt(row, cols.score)
		if institute == "" || scoreCell == "" {
			warnings = append(warnings, RowWarning{Source: source, Line: line, Reason: "missing institute or score"})
			continue
		}
		score, err := strconv.ParseFloat(scoreCell, 64)
		if err != nil {
			warnings = append(warnings, RowWarning{Source: source, Line: line, Reason: "score: " + err.Error()})
			continue
		}
		out = append(out, rawVFMRow{
			Institute: institute,
			Course:    cellAt(row, cols.course),
			Score:     score,
		})
	}
	return out, warnings, nil
}

func readDelimited(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return normalizeCell(row[idx])
}

// parseRank parses a rank cell. Preparatory ranks carry a trailing "P" in
// the source spreadsheets; it is stripped before parsing.
func parseRank(cell string) (int, error) {
	s := strings.TrimSpace(cell)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "P"), "p")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty rank")
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid rank %q", cell)
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive rank %q", cell)
	}
	return v, nil
}
