// Package search implements the query engine: exact, contains, and
// fuzzy lookups over the k-mer index, with deterministic ranking.
package search

import (
	"github.com/seqdex/seqdex/internal/errors"
)

// Mode selects the matching strategy for a query. It is a closed set;
// anything else is rejected at parse time.
type Mode string

const (
	// ModeExact matches whole normalized content.
	ModeExact Mode = "exact"
	// ModeContains matches substring containment.
	ModeContains Mode = "contains"
	// ModeFuzzy matches within a bounded edit distance.
	ModeFuzzy Mode = "fuzzy"
)

// ParseMode validates a mode string from an external caller.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeExact, ModeContains, ModeFuzzy:
		return Mode(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeUnknownMode, "unknown search mode %q (want exact, contains, or fuzzy)", s)
	}
}

// Range is a half-open rune interval [Start, End) into a sequence's
// normalized symbols.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result is one ranked match.
type Result struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`

	// Occurrences counts pattern occurrences for contains matches
	// (overlapping occurrences count separately). 1 for exact matches,
	// 0 for fuzzy matches.
	Occurrences int `json:"occurrences,omitempty"`

	// Highlights locates the occurrences. Empty for fuzzy matches.
	Highlights []Range `json:"highlights,omitempty"`

	// Distance is the edit distance for fuzzy matches.
	Distance int `json:"distance,omitempty"`
}
