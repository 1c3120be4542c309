package recommender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBranchCommonPrograms(t *testing.T) {
	cases := map[string]Branch{
		"Computer Science and Engineering (4 Years, Bachelor of Technology)": BranchComputerScience,
		"CSE":                                     BranchComputerScience,
		"Electrical Engineering":                  BranchElectrical,
		"Mechanical Engineering":                  BranchMechanical,
		"Electronics and Communication Engineering": BranchElectronics,
		"Civil Engineering":                       BranchCivil,
		"B.Tech in Information Technology":        BranchInfoTech,
		"Chemical Engineering":                    BranchChemical,
		"Aerospace Engineering":                   BranchAerospace,
		"Biotechnology":                           BranchBiotechnology,
		"Instrumentation and Control Engineering": BranchInstrumentation,
		"Metallurgical and Materials Engineering": BranchMetallurgical,
		"Mining Engineering":                      BranchMining,
		"Production and Industrial Engineering":   BranchProduction,
		"Textile Technology":                      BranchTextile,
		"Agricultural and Food Engineering":       BranchAgricultural,
		"Engineering Physics":                     BranchPhysics,
		"Mathematics and Computing":               BranchMathematics,
	}
	for program, want := range cases {
		assert.Equal(t, want, ExtractBranch(program), "program %q", program)
	}
}

func TestExtractBranchShortTokensAreWordBounded(t *testing.T) {
	// "EE" sits inside "ENGINEERING" and must not fire there.
	assert.Equal(t, BranchPhysics, ExtractBranch("Engineering Physics"))
	assert.Equal(t, BranchElectrical, ExtractBranch("EE (5 Year Dual Degree)"))
	// "IT" inside "ARCHITECTURE" must not fire either.
	assert.Equal(t, BranchOther, ExtractBranch("Architecture and Planning"))
}

func TestExtractBranchOrderResolvesAmbiguity(t *testing.T) {
	// Contains both electronics and communication wording; the electronics
	// rule sits first among the two and wins.
	assert.Equal(t, BranchElectronics, ExtractBranch("Electronics and Communication"))
	// Computer outranks electrical when both appear.
	assert.Equal(t, BranchComputerScience, ExtractBranch("Computer Science and Electrical Systems"))
}

func TestExtractBranchTotalAndDeterministic(t *testing.T) {
	inputs := []string{"", "   ", "Underwater Basket Weaving", "Engineering"}
	for _, in := range inputs {
		first := ExtractBranch(in)
		assert.Equal(t, first, ExtractBranch(in))
		assert.NotEmpty(t, first)
	}
	assert.Equal(t, BranchOther, ExtractBranch(""))
}

func TestBranchExtractorCustomRules(t *testing.T) {
	ex := NewBranchExtractor([]BranchRule{
		{Branch: BranchTextile, Keywords: []string{"fashion"}},
	})
	assert.Equal(t, BranchTextile, ex.Extract("Fashion Technology"))
	assert.Equal(t, BranchOther, ex.Extract("Computer Science"))
}

func TestEnsureBranchRuleFileSeedsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "branch_rules.json")
	require.NoError(t, EnsureBranchRuleFile(path))

	rules, custom, err := LoadBranchRules(path)
	require.NoError(t, err)
	assert.True(t, custom)
	assert.Equal(t, defaultBranchRules, rules)

	// Second call must leave the existing file alone.
	require.NoError(t, os.WriteFile(path, []byte(`[{"branch":"Textile","keywords":["fashion"]}]`), 0o644))
	require.NoError(t, EnsureBranchRuleFile(path))
	rules, custom, err = LoadBranchRules(path)
	require.NoError(t, err)
	assert.True(t, custom)
	require.Len(t, rules, 1)
	assert.Equal(t, BranchTextile, rules[0].Branch)
}

func TestLoadBranchRulesFallsBack(t *testing.T) {
	rules, custom, err := LoadBranchRules("")
	require.NoError(t, err)
	assert.False(t, custom)
	assert.Equal(t, defaultBranchRules, rules)

	_, custom, err = LoadBranchRules(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.False(t, custom)
}
