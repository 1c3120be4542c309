package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNameExpandsAbbreviations(t *testing.T) {
	assert.Equal(t, "INDIAN INSTITUTE OF TECHNOLOGY DELHI", NormalizeName("IIT Delhi"))
	assert.Equal(t, "NATIONAL INSTITUTE OF TECHNOLOGY CALICUT", NormalizeName("NIT Calicut"))
	assert.Equal(t, "INDIAN INSTITUTE OF INFORMATION TECHNOLOGY HYDERABAD", NormalizeName("IIIT Hyderabad"))
}

func TestNormalizeNameCollapsesDottedInitialisms(t *testing.T) {
	assert.Equal(t, NormalizeName("IIT Delhi"), NormalizeName("I.I.T. Delhi"))
	assert.Equal(t, NormalizeName("IIIT Hyderabad"), NormalizeName("I.I.I.T. Hyderabad"))
}

func TestNormalizeNameAmpersandAndCase(t *testing.T) {
	assert.Equal(t, "SCIENCE AND TECHNOLOGY INSTITUTE", NormalizeName("science & Tech institute"))
	assert.Equal(t, "GOVERNMENT ENGINEERING COLLEGE", NormalizeName("  Govt. Engg College "))
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"N.I.T. Calicut", "IIT Delhi", "Birla Institute of Technology & Science"}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "input %q", in)
	}
}

func TestNormalizeNameEmpty(t *testing.T) {
	assert.Equal(t, "", NormalizeName(""))
	assert.Equal(t, "", NormalizeName("  ...  "))
}

func TestNormalizeCellStripsBOM(t *testing.T) {
	assert.Equal(t, "Institute", normalizeCell("\ufeffInstitute"))
	assert.Equal(t, "x", normalizeCell("  x  "))
}
