package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckExactMatchIgnoresCaseAndPunctuation(t *testing.T) {
	res := Check("  The Mitochondria! ", "the mitochondria")
	assert.True(t, res.Correct)
	assert.Equal(t, MethodExact, res.Method)
	assert.Equal(t, 1.0, res.Overlap)
}

func TestCheckContainment(t *testing.T) {
	res := Check("mitochondria", "The mitochondria")
	assert.True(t, res.Correct)
	assert.Equal(t, MethodContains, res.Method)

	res = Check("it is the mitochondria of the cell", "mitochondria")
	assert.True(t, res.Correct)
	assert.Equal(t, MethodContains, res.Method)
}

func TestCheckContainmentNeedsWholeWords(t *testing.T) {
	cases := []struct{ user, ref string }{
		{"a", "Paris"},
		{"r", "Mitochondria"},
		{"is", "Photosynthesis"},
		{"cat", "Concatenation"},
		{"the", "The mitochondria"},
		{"ion", "the ion channel"},
	}
	for _, tc := range cases {
		res := Check(tc.user, tc.ref)
		assert.False(t, res.Correct, "%q vs %q", tc.user, tc.ref)
		assert.NotEqual(t, MethodContains, res.Method, "%q vs %q", tc.user, tc.ref)
	}

	res := Check("Paris, France", "paris")
	assert.True(t, res.Correct)
	assert.Equal(t, MethodContains, res.Method)
}

func TestCheckRejectsUnrelatedAnswer(t *testing.T) {
	res := Check("Bananas are yellow", "Plants convert sunlight into chemical energy")
	assert.False(t, res.Correct)
	assert.Equal(t, MethodNone, res.Method)
	assert.Zero(t, res.Overlap)
}

func TestCheckAcceptsParaphraseAboveThreshold(t *testing.T) {
	// reference key terms: plants, convert, sunlight, chemical, energy
	res := Check("Sunlight becomes chemical energy that plants store", "Plants convert sunlight into chemical energy")
	assert.True(t, res.Correct)
	assert.Equal(t, MethodOverlap, res.Method)
	assert.InDelta(t, 0.8, res.Overlap, 0.001)
}

func TestCheckRejectsParaphraseBelowThreshold(t *testing.T) {
	res := Check("plants need sunlight", "Plants convert sunlight into chemical energy")
	assert.False(t, res.Correct)
	assert.InDelta(t, 0.4, res.Overlap, 0.001)
}

func TestCheckEmptyAnswer(t *testing.T) {
	res := Check("   ", "anything")
	assert.False(t, res.Correct)
	assert.Equal(t, MethodNone, res.Method)
}

func TestKeyTermsSkipShortWordsAndStopwords(t *testing.T) {
	terms := KeyTerms(Normalize("The cat would jump over these fences"))
	assert.Equal(t, map[string]struct{}{"jump": {}, "fences": {}}, terms)
}
