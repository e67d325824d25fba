package quiz

import (
	"strings"
	"unicode"
)

// OverlapThreshold is the share of reference key terms a paraphrase must cover.
const OverlapThreshold = 0.60

// Match methods.
const (
	MethodExact    = "exact"
	MethodContains = "contains"
	MethodOverlap  = "overlap"
	MethodNone     = "none"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`about above after again against also because been before being below between both
could does doing down during each from further have having here into itself just more most other over same should
some such than that their theirs them themselves then there these they this those through under until very were what
when where which while will with would your yours`) {
		stopwords[w] = struct{}{}
	}
}

// Result is the outcome of checking one answer.
type Result struct {
	Correct bool    `json:"correct"`
	Method  string  `json:"method"`
	Overlap float64 `json:"overlap"`
}

// Check compares a user's answer with the reference. It accepts an exact
// match after normalisation, whole-word containment in either direction, or
// a key-term overlap of at least OverlapThreshold. A user answer contained
// in the reference must carry at least one key term.
func Check(userAnswer, referenceAnswer string) Result {
	user := Normalize(userAnswer)
	ref := Normalize(referenceAnswer)
	if user == "" || ref == "" {
		return Result{Method: MethodNone}
	}
	if user == ref {
		return Result{Correct: true, Method: MethodExact, Overlap: 1}
	}
	if containsWords(user, ref) || (len(KeyTerms(user)) > 0 && containsWords(ref, user)) {
		return Result{Correct: true, Method: MethodContains, Overlap: overlap(user, ref)}
	}
	ratio := overlap(user, ref)
	if ratio >= OverlapThreshold {
		return Result{Correct: true, Method: MethodOverlap, Overlap: ratio}
	}
	return Result{Method: MethodNone, Overlap: ratio}
}

// Normalize lower-cases s, replaces punctuation with spaces and collapses runs of whitespace.
func Normalize(s string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// KeyTerms returns the distinct words of a normalised string that are longer
// than three characters and not stopwords.
func KeyTerms(normalized string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		terms[w] = struct{}{}
	}
	return terms
}

func overlap(user, ref string) float64 {
	refTerms := KeyTerms(ref)
	if len(refTerms) == 0 {
		return 0
	}
	userTerms := KeyTerms(user)
	shared := 0
	for t := range refTerms {
		if _, ok := userTerms[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(refTerms))
}

// containsWords reports whether the words of inner appear consecutively in outer.
func containsWords(outer, inner string) bool {
	return strings.Contains(" "+outer+" ", " "+inner+" ")
}
