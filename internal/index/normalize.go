package index

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalizer produces the canonical form used for exact-match keys and
// k-mers. The same normalization is applied to indexed content and to
// incoming query patterns, so the two always agree.
type Normalizer struct {
	caseSensitive bool
}

// NewNormalizer returns a normalizer. When caseSensitive is false,
// keys are case-folded in addition to NFC normalization.
func NewNormalizer(caseSensitive bool) *Normalizer {
	return &Normalizer{caseSensitive: caseSensitive}
}

// Normalize returns the canonical form of s: Unicode NFC, then case
// folding unless the index is case sensitive.
func (n *Normalizer) Normalize(s string) string {
	s = norm.NFC.String(s)
	if !n.caseSensitive {
		// Casers are stateful, so build one per call.
		s = cases.Fold().String(s)
	}
	return s
}

// CaseSensitive reports the configured folding policy.
func (n *Normalizer) CaseSensitive() bool {
	return n.caseSensitive
}
