// Package matching scores name similarity for catalog deduplication and
// category resolution. It is pure: no I/O, no thresholds. Acceptance
// policy belongs to the caller, since different call sites accept at
// different confidence levels.
package matching

import (
	"strings"
)

// Status classifies a match result
type Status string

const (
	// StatusExact means the candidate equals a pool entry after normalization
	StatusExact Status = "exact"
	// StatusFuzzy means the best pool entry scored below 1.0 but above 0
	StatusFuzzy Status = "fuzzy"
	// StatusNone means nothing in the pool shares any similarity
	StatusNone Status = "none"
)

// Result is the outcome of matching a candidate against a pool of names
type Result struct {
	// Value is the original pool entry that scored best
	Value string
	// Index is the position of Value in the pool, -1 when Status is none
	Index int
	// Status classifies the match
	Status Status
	// Confidence is the similarity score in [0,1]
	Confidence float64
}

// Normalize prepares a name for comparison: trim, lowercase, collapse
// internal whitespace runs to a single space.
func Normalize(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// Match compares a candidate name against a pool of known names and
// returns the best match with its confidence. An exact match after
// normalization wins immediately with confidence 1.0; otherwise every
// pool entry is scored with the Dice coefficient over character bigrams.
func Match(candidate string, pool []string) Result {
	normalized := Normalize(candidate)

	best := Result{Index: -1, Status: StatusNone}
	candidateBigrams := bigrams(normalized)

	for i, entry := range pool {
		entryNorm := Normalize(entry)
		if entryNorm == normalized && normalized != "" {
			return Result{Value: entry, Index: i, Status: StatusExact, Confidence: 1.0}
		}

		score := diceCoefficient(candidateBigrams, bigrams(entryNorm))
		if score > best.Confidence {
			best = Result{Value: entry, Index: i, Status: StatusFuzzy, Confidence: score}
		}
	}

	return best
}

// bigrams returns the multiset of adjacent rune pairs in s
func bigrams(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}

	grams := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// diceCoefficient computes Sørensen–Dice similarity between two bigram
// multisets: 2·|A∩B| / (|A|+|B|).
func diceCoefficient(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var sizeA, sizeB, overlap int
	for gram, count := range a {
		sizeA += count
		if other, ok := b[gram]; ok {
			overlap += minInt(count, other)
		}
	}
	for _, count := range b {
		sizeB += count
	}

	return float64(2*overlap) / float64(sizeA+sizeB)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
