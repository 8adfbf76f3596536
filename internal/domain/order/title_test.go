package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompressTitle_GreedyPrefix(t *testing.T) {
	// Three words accepted, then the walk stops regardless of the
	// remaining length budget.
	got := CompressTitle("apple iphone 15 pro max case cover")
	assert.Equal(t, "Apple Iphone 15", got)
}

func TestCompressTitle_Empty(t *testing.T) {
	assert.Equal(t, "", CompressTitle(""))
	assert.Equal(t, "", CompressTitle("   "))
}

func TestCompressTitle_ShortTokensLowercased(t *testing.T) {
	// Tokens of length <= 2 are lowercased, longer ones capitalized.
	assert.Equal(t, "Klocki do Hamulcow", CompressTitle("KLOCKI DO HAMULCOW przednich"))
}

func TestCompressTitle_HyphenParts(t *testing.T) {
	// Each hyphen part is formatted independently and rejoined.
	assert.Equal(t, "Zestaw Naprawczy Anty-Bump", CompressTitle("zestaw naprawczy ANTY-BUMP"))
}

func TestCompressTitle_StripsSpecialCharacters(t *testing.T) {
	got := CompressTitle("Etui * na iPhone'a (czarne)!!")
	assert.Equal(t, "Etui na Iphonea", got)
}

func TestCompressTitle_LengthBudget(t *testing.T) {
	// The second word would push the running total past 32 characters,
	// so the walk stops after the first.
	got := CompressTitle("Przedwzmacniacz gramofonowy-stereofoniczny deluxe")
	assert.Equal(t, "Przedwzmacniacz", got)
	assert.LessOrEqual(t, len([]rune(got)), 32)
}

func TestCompressTitle_StopsAtFirstRejection(t *testing.T) {
	// Greedy prefix, not best-fit packing: a long second word ends the
	// walk even though the third would have fit.
	got := CompressTitle("Kabel niezwyklewytrzymalyopancerzony USB")
	assert.Equal(t, "Kabel", got)
}

func TestCompressTitle_UnicodeAware(t *testing.T) {
	got := CompressTitle("Świeca zapłonowa żelazna")
	assert.Equal(t, "Świeca Zapłonowa Żelazna", got)
}
