package textnorm

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the highest score still accepted as a fuzzy match.
// Scores run from 0 (identical) to 1 (nothing in common).
const DefaultThreshold = 0.3

// Score compares two already-normalized strings and returns a value in
// [0, 1], lower meaning more similar. It is the better of the normalized
// Levenshtein distance and a token containment score, so "hoang long" scores
// well against "cong ty hoang long travel" even though their edit distance is
// large.
func Score(a, b string) float64 {
	if a == b {
		return 0
	}
	if a == "" || b == "" {
		return 1
	}
	return min(editScore(a, b), tokenScore(a, b))
}

func editScore(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

// tokenScore is 1 minus the share of query tokens that appear in the
// candidate, with a small penalty for every extra token in the candidate.
// Only a full containment can drop under the default threshold, and queries
// shorter than three bytes never match by containment.
func tokenScore(query, candidate string) float64 {
	qt := strings.Fields(query)
	ct := strings.Fields(candidate)
	if len(query) < 3 || len(qt) == 0 || len(ct) == 0 {
		return 1
	}
	have := make(map[string]bool, len(ct))
	for _, t := range ct {
		have[t] = true
	}
	hits := 0
	for _, t := range qt {
		if have[t] {
			hits++
		}
	}
	if hits < len(qt) {
		return 1 - float64(hits)/float64(len(qt))*0.5
	}
	extra := len(ct) - hits
	return min(1, 0.05*float64(extra))
}

// Match is the result of a fuzzy search: the index of the winning candidate
// and its score.
type Match struct {
	Index int
	Score float64
}

// BestMatch scores query against every candidate and returns the lowest
// scoring one that is at or below threshold. Both query and candidates are
// normalized first. Ties go to the earliest candidate. ok is false when no
// candidate qualifies.
func BestMatch(query string, candidates []string, threshold float64) (m Match, ok bool) {
	q := Normalize(query)
	if q == "" {
		return Match{}, false
	}
	best := Match{Index: -1, Score: 2}
	for i, c := range candidates {
		s := Score(q, Normalize(c))
		if s < best.Score {
			best = Match{Index: i, Score: s}
		}
	}
	if best.Index < 0 || best.Score > threshold {
		return Match{}, false
	}
	return best, true
}
