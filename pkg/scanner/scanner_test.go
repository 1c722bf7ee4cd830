package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanMatchesCaseInsensitive(t *testing.T) {
	got := Scan("this is a BANNED word", []string{"banned"})
	assert.Equal(t, []string{"banned"}, got)
}

func TestScanPreservesListOrder(t *testing.T) {
	got := Scan("gamma alpha beta", []string{"alpha", "beta", "gamma"})
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)
}

func TestScanSubstringInsideLongerWord(t *testing.T) {
	// Pure substring containment, not word-boundary matching.
	got := Scan("classical music", []string{"ass"})
	assert.Equal(t, []string{"ass"}, got)
}

func TestScanNoDuplicatesFromRepeatedKeywords(t *testing.T) {
	got := Scan("spam spam spam", []string{"spam", "SPAM", " spam "})
	assert.Equal(t, []string{"spam"}, got)
}

func TestScanEmptyListFastPath(t *testing.T) {
	assert.Empty(t, Scan("anything at all", nil))
	assert.Empty(t, Scan("anything at all", []string{}))
	assert.Empty(t, Scan("anything at all", []string{"", "  ", "\t"}))
}

func TestScanBlankMessage(t *testing.T) {
	assert.Empty(t, Scan("", []string{"kw"}))
	assert.Empty(t, Scan("   \n ", []string{"kw"}))
}

func TestScanNoMatch(t *testing.T) {
	got := Scan("perfectly fine message", []string{"banned", "secret"})
	assert.Empty(t, got)
}

func TestScanTrimsAndLowercasesKeywords(t *testing.T) {
	got := Scan("contains Secret stuff", []string{"  SECRET  "})
	assert.Equal(t, []string{"secret"}, got)
}
