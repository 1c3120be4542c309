package recommender

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherMergesSpellingVariants(t *testing.T) {
	m := NewMatcher(0)

	first := m.Resolve("IIT Delhi")
	second := m.Resolve("I.I.T. Delhi")

	require.Same(t, first, second)
	assert.Equal(t, "IIT Delhi", first.CanonicalName)
	assert.Equal(t, []string{"IIT Delhi", "I.I.T. Delhi"}, first.Aliases)
	assert.Len(t, m.Identities(), 1)
}

func TestMatcherWordOrderInvariant(t *testing.T) {
	m := NewMatcher(0)
	a := m.Resolve("IIT Delhi")
	b := m.Resolve("Delhi IIT")
	assert.Same(t, a, b)
}

func TestMatcherKeepsCampusesApart(t *testing.T) {
	m := NewMatcher(0)
	delhi := m.Resolve("IIT Delhi")
	bombay := m.Resolve("IIT Bombay")

	assert.NotSame(t, delhi, bombay)
	require.Len(t, m.Identities(), 2)
	assert.Equal(t, []string{"IIT Delhi"}, delhi.Aliases)
	assert.Equal(t, []string{"IIT Bombay"}, bombay.Aliases)

	// Spelling variants still join their own campus, not the sibling.
	assert.Same(t, bombay, m.Resolve("I.I.T. Bombay"))
	assert.Same(t, delhi, m.Resolve("Indian Institute of Technology Delhi"))
}

func TestMatcherKeepsDistinctColleges(t *testing.T) {
	m := NewMatcher(0)
	a := m.Resolve("IIT Delhi")
	b := m.Resolve("National Institute of Technology Calicut")
	c := m.Resolve("Anna University Chennai")

	assert.NotSame(t, a, b)
	assert.NotSame(t, b, c)
	require.Len(t, m.Identities(), 3)
	// Insertion order is the registry order.
	assert.Equal(t, "IIT Delhi", m.Identities()[0].CanonicalName)
	assert.Equal(t, "National Institute of Technology Calicut", m.Identities()[1].CanonicalName)
}

func TestMatcherResolveIdempotent(t *testing.T) {
	m := NewMatcher(0)
	first := m.Resolve("IIT Delhi")
	again := m.Resolve("IIT Delhi")
	assert.Same(t, first, again)
	assert.Equal(t, []string{"IIT Delhi"}, first.Aliases)
}

func TestMatcherLookupNeverRegisters(t *testing.T) {
	m := NewMatcher(0)
	m.Resolve("IIT Delhi")

	id, ok := m.Lookup("I.I.T. Delhi")
	require.True(t, ok)
	assert.Equal(t, "IIT Delhi", id.CanonicalName)

	_, ok = m.Lookup("Zebra Polytechnic")
	assert.False(t, ok)
	assert.Len(t, m.Identities(), 1)
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100, tokenSortRatio("A B C", "C B A"))
	assert.Equal(t, 100, tokenSortRatio("", ""))
	assert.Less(t, tokenSortRatio("INDIAN INSTITUTE OF TECHNOLOGY DELHI", "ANNA UNIVERSITY CHENNAI"), DefaultMatchThreshold)
}
