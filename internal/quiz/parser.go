package quiz

import (
	"regexp"
	"strings"
)

var (
	numberedLine = regexp.MustCompile(`^\s*(?:\*\*)?(?:Q(?:uestion)?\s*)?\d+\s*[.):]\s*(?:\*\*)?\s*(.+?)\s*$`)
	answerLine   = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:answer|ans|a)\s*\d*\s*[:.\-]\s*(?:\*\*)?\s*(.+?)\s*$`)
	qLine        = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:q|question)\s*\d*\s*[:.\-]\s*(?:\*\*)?\s*(.+?)\s*$`)
)

type strategy func(lines []string) []Question

var strategies = []strategy{parseNumbered, parseQA, parseQuestionMarks}

// Parse extracts question/answer pairs from completion text. Each strategy is
// tried in order and the one that yields the most pairs wins; earlier
// strategies win ties.
func Parse(text string) []Question {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var best []Question
	for _, s := range strategies {
		if found := s(lines); len(found) > len(best) {
			best = found
		}
	}
	return best
}

// parseNumbered reads "N. question" blocks terminated by an "Answer:" line.
// Question text may wrap onto several lines.
func parseNumbered(lines []string) []Question {
	var (
		out     []Question
		current []string
	)
	for _, line := range lines {
		if m := answerLine.FindStringSubmatch(line); m != nil && len(current) > 0 {
			out = appendPair(out, strings.Join(current, " "), m[1])
			current = nil
			continue
		}
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			current = []string{m[1]}
			continue
		}
		if len(current) > 0 && strings.TrimSpace(line) != "" {
			current = append(current, strings.TrimSpace(line))
		}
	}
	return out
}

// parseQA reads "Q:"/"Question:" lines followed by "A:"/"Answer:" lines.
func parseQA(lines []string) []Question {
	var (
		out     []Question
		pending string
	)
	for _, line := range lines {
		if m := qLine.FindStringSubmatch(line); m != nil {
			pending = m[1]
			continue
		}
		if m := answerLine.FindStringSubmatch(line); m != nil && pending != "" {
			out = appendPair(out, pending, m[1])
			pending = ""
		}
	}
	return out
}

// parseQuestionMarks pairs any line ending in "?" with the next non-empty line.
func parseQuestionMarks(lines []string) []Question {
	var out []Question
	for i := 0; i < len(lines); i++ {
		q := strings.TrimSpace(lines[i])
		if !strings.HasSuffix(q, "?") {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			a := strings.TrimSpace(lines[j])
			if a == "" {
				continue
			}
			if m := answerLine.FindStringSubmatch(a); m != nil {
				a = m[1]
			}
			out = appendPair(out, stripListMarker(q), a)
			i = j
			break
		}
	}
	return out
}

func appendPair(out []Question, q, a string) []Question {
	q = strings.TrimSpace(strings.Trim(q, "*"))
	a = strings.TrimSpace(strings.Trim(a, "*"))
	if q == "" || a == "" {
		return out
	}
	return append(out, Question{Question: q, Answer: a})
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

func stripListMarker(s string) string {
	if m := qLine.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return listMarker.ReplaceAllString(s, "")
}
