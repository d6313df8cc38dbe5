package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/seqdex/seqdex/internal/config"
	"github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/index"
)

// Engine answers queries against the coordinator's index. It is safe
// for concurrent use; results for an unchanged store are served from
// an LRU cache keyed on the coordinator's mutation epoch, so a write
// implicitly invalidates every cached entry.
type Engine struct {
	coord     *index.Coordinator
	threshold float64
	limit     int
	cache     *lru.Cache[string, []Result]
}

// NewEngine creates a query engine over coord. A zero cache size
// disables result caching.
func NewEngine(coord *index.Coordinator, cfg config.SearchConfig) (*Engine, error) {
	var cache *lru.Cache[string, []Result]
	if cfg.CacheSize > 0 {
		var err error
		cache, err = lru.New[string, []Result](cfg.CacheSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err)
		}
	}
	return &Engine{
		coord:     coord,
		threshold: cfg.FuzzyThreshold,
		limit:     cfg.MaxResults,
		cache:     cache,
	}, nil
}

// Search runs pattern against the index in the given mode and returns
// matches ordered by descending score, ties broken by ascending id.
// Identical store state plus identical query always yields the same
// ordered list.
func (e *Engine) Search(ctx context.Context, pattern string, mode Mode) ([]Result, error) {
	if pattern == "" {
		return nil, errors.New(errors.ErrCodeEmptyPattern, "search pattern must not be empty", nil)
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%d|%s|%s", e.coord.Epoch(), mode, pattern)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			slog.Debug("query cache hit", slog.String("mode", string(mode)))
			return cached, nil
		}
	}

	var results []Result
	err := e.coord.Read(func(ix *index.Builder) error {
		normalized := ix.Normalize(pattern)
		switch mode {
		case ModeExact:
			results = searchExact(ix, normalized)
		case ModeContains:
			results = searchContains(ix, normalized)
		case ModeFuzzy:
			results = e.searchFuzzy(ix, normalized)
		}
		return ctx.Err()
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}

	rank(results)
	if e.limit > 0 && len(results) > e.limit {
		results = results[:e.limit]
	}
	if e.cache != nil {
		e.cache.Add(key, results)
	}
	return results, nil
}

// searchExact returns every id whose whole normalized content equals
// the pattern, all with score 1.0.
func searchExact(ix *index.Builder, pattern string) []Result {
	ids := ix.ExactIDs(pattern)
	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		results = append(results, Result{
			ID:          id,
			Score:       1.0,
			Occurrences: 1,
			Highlights:  []Range{{Start: 0, End: len([]rune(pattern))}},
		})
	}
	return results
}

// searchContains intersects the pattern's k-mer postings as a
// candidate filter, then verifies true containment against each
// candidate's stored symbols. Patterns shorter than k fall back to a
// linear scan, since their k-mers do not exist in the index.
func searchContains(ix *index.Builder, pattern string) []Result {
	candidates := ix.AllOrdinals()
	if len([]rune(pattern)) >= ix.K() {
		candidates = ix.IntersectKmers(ix.Kmers(pattern))
	}

	var results []Result
	it := candidates.Iterator()
	for it.HasNext() {
		ord := it.Next()
		symbols := ix.SymbolsOf(ord)
		highlights := findOccurrences(symbols, pattern)
		if len(highlights) == 0 {
			continue // k-mer collision, not a real substring
		}
		results = append(results, Result{
			ID:          ix.IDOf(ord),
			Score:       1.0,
			Occurrences: len(highlights),
			Highlights:  highlights,
		})
	}
	return results
}

// searchFuzzy prunes to candidates sharing at least one pattern k-mer,
// then scores each by bounded edit distance. Score is
// 1 - dist/max(len(pattern), len(candidate)); anything below the
// threshold is discarded. Patterns shorter than k have no indexed
// k-mers to prune by, so every sequence is a candidate.
func (e *Engine) searchFuzzy(ix *index.Builder, pattern string) []Result {
	patternRunes := []rune(pattern)
	candidates := ix.AllOrdinals()
	if len(patternRunes) >= ix.K() {
		candidates = ix.UnionKmers(ix.Kmers(pattern))
	}

	var results []Result
	it := candidates.Iterator()
	for it.HasNext() {
		ord := it.Next()
		symbols := []rune(ix.SymbolsOf(ord))

		maxLen := max(len(patternRunes), len(symbols))
		if maxLen == 0 {
			continue
		}
		// Distances beyond the threshold can never score high enough.
		maxDist := int(math.Floor((1 - e.threshold) * float64(maxLen)))
		dist := levenshtein(patternRunes, symbols, maxDist)
		if dist > maxDist {
			continue
		}

		score := 1 - float64(dist)/float64(maxLen)
		if score < e.threshold {
			continue
		}
		results = append(results, Result{
			ID:       ix.IDOf(ord),
			Score:    score,
			Distance: dist,
		})
	}
	return results
}

// findOccurrences locates every occurrence of pattern in symbols as
// rune ranges, counting overlapping occurrences separately.
func findOccurrences(symbols, pattern string) []Range {
	if pattern == "" {
		return nil
	}
	runes := []rune(symbols)
	patternRunes := []rune(pattern)

	var ranges []Range
	for i := 0; i+len(patternRunes) <= len(runes); i++ {
		if string(runes[i:i+len(patternRunes)]) == pattern {
			ranges = append(ranges, Range{Start: i, End: i + len(patternRunes)})
		}
	}
	return ranges
}

// rank orders results by descending score, ascending id on ties.
func rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}

// Snippet renders the stored symbols with every highlight wrapped in
// the given markers, for terminal output.
func Snippet(symbols string, highlights []Range, open, shut string) string {
	if len(highlights) == 0 {
		return symbols
	}
	runes := []rune(symbols)
	var sb strings.Builder
	prev := 0
	for _, h := range highlights {
		if h.Start < prev || h.End > len(runes) {
			continue
		}
		sb.WriteString(string(runes[prev:h.Start]))
		sb.WriteString(open)
		sb.WriteString(string(runes[h.Start:h.End]))
		sb.WriteString(shut)
		prev = h.End
	}
	sb.WriteString(string(runes[prev:]))
	return sb.String()
}
