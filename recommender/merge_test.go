package recommender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const cutoffCSV = `Institute,Academic Program Name,Seat Type,Opening Rank,Closing Rank
IIT Delhi,Computer Science and Engineering,OPEN,1,100
I.I.T. Delhi,CSE,OPEN,1,100
IIT Delhi,Electrical Engineering,OPEN,50,400P
IIT Delhi,Mechanical Engineering,OPEN,500,200
IIT Delhi,Civil Engineering,OPEN,abc,100
`

const vfmCSV = `Institute,Course,Value for Money
IIT Delhi,Computer Science,4.5
IIT Delhi,General Programs,4.0
`

func TestScanDataDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs_2024.csv", cutoffCSV)
	writeFile(t, dir, "college value for money.csv", vfmCSV)
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := ScanDataDir(dir)
	require.NoError(t, err)
	require.Len(t, files.CutoffPaths, 1)
	assert.Contains(t, files.CutoffPaths[0], "cutoffs_2024.csv")
	assert.Contains(t, files.VFMPath, "value for money")
}

func TestScanDataDirEmpty(t *testing.T) {
	_, err := ScanDataDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoadMergesAliasesAndRejectsBadRows(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs.csv", cutoffCSV)

	loader := &Loader{}
	table, report, err := loader.LoadDir(dir)
	require.NoError(t, err)

	// Both spellings of the college collapse into one identity with two
	// aliases; the inconsistent and unparseable rows are dropped.
	require.Len(t, table.Identities, 1)
	id := table.Identities[0]
	assert.Equal(t, "IIT Delhi", id.CanonicalName)
	assert.Equal(t, []string{"IIT Delhi", "I.I.T. Delhi"}, id.Aliases)

	require.Len(t, table.Records, 3)
	assert.Equal(t, BranchComputerScience, table.Records[0].Branch)
	assert.Equal(t, BranchComputerScience, table.Records[1].Branch)
	assert.Equal(t, BranchElectrical, table.Records[2].Branch)
	assert.Equal(t, 400, table.Records[2].ClosingRank)

	require.Len(t, report.Warnings, 2)
	assert.Equal(t, 6, report.Warnings[0].Line)
	assert.Contains(t, report.Warnings[0].Reason, "opening rank")
	assert.Equal(t, 5, report.Warnings[1].Line)
	assert.Contains(t, report.Warnings[1].Reason, "closing rank 200 before opening rank 500")

	for _, rec := range table.Records {
		assert.GreaterOrEqual(t, rec.ClosingRank, rec.OpeningRank)
		assert.Equal(t, "IIT Delhi", rec.CollegeCanonical)
	}
}

func TestLoadJoinsVFM(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs.csv", cutoffCSV)
	writeFile(t, dir, "value for money.csv", vfmCSV)

	loader := &Loader{}
	table, report, err := loader.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.VFMMatched)

	id, ok := table.Identity("IIT Delhi")
	require.True(t, ok)
	assert.True(t, id.HasVFM)
	assert.InDelta(t, 4.25, id.VFMScore, 1e-9)

	// Direct branch rating.
	assert.InDelta(t, 4.5, table.BranchVFM[branchVFMKey("IIT Delhi", BranchComputerScience)], 1e-9)
	// No electrical rating: the unclassified rating applies at partial weight.
	assert.InDelta(t, 4.0*0.7, table.BranchVFM[branchVFMKey("IIT Delhi", BranchElectrical)], 1e-9)
}

func TestLoadEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs.csv", "Institute,Academic Program Name,Seat Type,Opening Rank,Closing Rank\nX College,CSE,OPEN,bad,bad\n")

	loader := &Loader{}
	_, _, err := loader.LoadDir(dir)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestLoadExplicitColumnIndices(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "odd.csv", "a,b,c,d,e\nIIT Delhi,CSE,OPEN,1,100\n")

	loader := &Loader{CutoffOpts: CutoffParseOptions{
		InstituteColumn: "#1",
		ProgramColumn:   "#2",
		SeatTypeColumn:  "#3",
		OpeningColumn:   "#4",
		ClosingColumn:   "#5",
	}}
	table, _, err := loader.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Equal(t, BranchComputerScience, table.Records[0].Branch)
}

func TestParseRank(t *testing.T) {
	v, err := parseRank("123")
	require.NoError(t, err)
	assert.Equal(t, 123, v)

	v, err = parseRank("456P")
	require.NoError(t, err)
	assert.Equal(t, 456, v)

	_, err = parseRank("")
	assert.Error(t, err)
	_, err = parseRank("-3")
	assert.Error(t, err)
	_, err = parseRank("12x")
	assert.Error(t, err)
}

func TestTableEnums(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cutoffs.csv", cutoffCSV)

	loader := &Loader{}
	table, _, err := loader.LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, []Category{CategoryOpen}, table.Categories())
	assert.Equal(t, []Branch{BranchComputerScience, BranchElectrical}, table.Branches())
}
