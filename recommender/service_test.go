package recommender

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) (*Session, string) {
	t.Helper()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	writeFile(t, dataDir, "cutoffs.csv", cutoffCSV)
	writeFile(t, dataDir, "value for money.csv", vfmCSV)

	cfg := Config{
		DataDir:        dataDir,
		ModelPath:      filepath.Join(dir, "models", "model.json"),
		BranchRulePath: filepath.Join(dir, "config", "branch_rules.json"),
	}
	return NewSession(cfg, log.New(os.Stderr, "", 0)), dir
}

func TestSessionRequiresLoad(t *testing.T) {
	session, _ := newTestSession(t)
	_, err := session.Recommend(Query{Rank: 50, Category: CategoryGeneral})
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestSessionEndToEnd(t *testing.T) {
	session, _ := newTestSession(t)

	report, err := session.LoadData()
	require.NoError(t, err)
	assert.Equal(t, 3, report.RecordCount)
	assert.Equal(t, 1, report.CollegeCount)

	// Rank 50 sits strictly inside the 1-100 window, so the merged college
	// comes back with one entry per branch and a probability in (0,1).
	entries, err := session.Recommend(Query{Rank: 50, Category: CategoryGeneral})
	require.NoError(t, err)

	var cs []Entry
	for _, e := range entries {
		if e.Branch == BranchComputerScience {
			cs = append(cs, e)
		}
	}
	require.Len(t, cs, 1)
	assert.Greater(t, cs[0].Probability, 0.0)
	assert.Less(t, cs[0].Probability, 1.0)
	assert.Equal(t, "IIT Delhi", cs[0].CollegeCanonical)
}

func TestSessionModelRoundTrip(t *testing.T) {
	session, dir := newTestSession(t)
	_, err := session.LoadData()
	require.NoError(t, err)

	require.NoError(t, session.SaveModel(""))

	fresh := NewSession(Config{ModelPath: filepath.Join(dir, "models", "model.json")}, nil)
	require.NoError(t, fresh.LoadModel(""))

	want, err := session.Recommend(Query{Rank: 50, Category: CategoryGeneral})
	require.NoError(t, err)
	got, err := fresh.Recommend(Query{Rank: 50, Category: CategoryGeneral})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSessionSeedsBranchRuleFile(t *testing.T) {
	session, dir := newTestSession(t)
	_, err := session.LoadData()
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "config", "branch_rules.json"))
	assert.NoError(t, statErr)
}

func TestSessionRejectsBadQuery(t *testing.T) {
	session, _ := newTestSession(t)
	_, err := session.LoadData()
	require.NoError(t, err)

	_, err = session.Recommend(Query{Rank: 0})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultMatchThreshold, cfg.MatchThreshold)
	assert.Equal(t, DefaultProbabilityFloor, cfg.Floor)
	assert.Equal(t, DefaultOverflowMargin, cfg.OverflowMargin)
	assert.Equal(t, DefaultProbabilityWeight, cfg.ProbWeight)
	assert.Equal(t, DefaultVFMWeight, cfg.VFMWeight)
	assert.InDelta(t, DefaultVFM, cfg.DefaultVFM, 1e-9)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := Config{DataDir: "somewhere", MatchThreshold: 80}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "somewhere", loaded.DataDir)
	assert.Equal(t, 80, loaded.MatchThreshold)
	assert.Equal(t, DefaultOverflowMargin, loaded.OverflowMargin)
}
