package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedBytes_DeterministicForSameSeed(t *testing.T) {
	a := seedBytes(42, 256)
	b := seedBytes(42, 256)
	assert.Equal(t, a, b)
	assert.Len(t, a, 256)
}

func TestSeedBytes_DifferentSeedsDiffer(t *testing.T) {
	a := seedBytes(1, 256)
	b := seedBytes(2, 256)
	assert.NotEqual(t, a, b)
}

func TestSeedBytes_IsAPrefixStablePrefixOfALargerBuffer(t *testing.T) {
	small := seedBytes(7, 64)
	large := seedBytes(7, 256)
	assert.Equal(t, small, large[:64], "the same seed's smaller buffer must be a prefix of its larger one")
}

func TestPassLabel(t *testing.T) {
	assert.Equal(t, "ok", passLabel(true))
	assert.Equal(t, "DISAGREEMENT", passLabel(false))
}

func TestMatchesAnyIgnore(t *testing.T) {
	assert.True(t, matchesAnyIgnore("corpus/known_bad/x.move", []string{"**/known_bad/**"}))
	assert.False(t, matchesAnyIgnore("corpus/good/x.move", []string{"**/known_bad/**"}))
	assert.False(t, matchesAnyIgnore("corpus/good/x.move", nil))
}

func TestDiffAgainstEmpty_RendersAddedLines(t *testing.T) {
	out := diffAgainstEmpty("boom: something failed\n")
	assert.Contains(t, out, "+boom: something failed")
}
