// Package index maintains the derived search structures for the
// sequence store: an exact-match table and a k-mer posting index, both
// kept in lock-step with the store by the Coordinator.
package index

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/store"
)

// Builder holds the in-memory index structures. It is not safe for
// concurrent use on its own; the Coordinator serializes all access.
//
// Posting sets are roaring bitmaps over dense ordinals assigned at
// index time; the ordinal maps translate back to sequence IDs.
type Builder struct {
	k    int
	norm *Normalizer

	exact map[string]*roaring.Bitmap // normalized symbols -> ordinals
	kmers map[string]*roaring.Bitmap // k-mer -> ordinals

	ordByID  map[string]uint32
	idByOrd  map[uint32]string
	symByOrd map[uint32]string // normalized symbols, for verification
	all      *roaring.Bitmap
	nextOrd  uint32
}

// Stats summarizes index contents.
type Stats struct {
	Sequences int
	ExactKeys int
	Kmers     int
}

// NewBuilder creates an empty index with the given k-mer length and
// normalization policy. k must be >= 1.
func NewBuilder(k int, norm *Normalizer) (*Builder, error) {
	if k < 1 {
		return nil, errors.Newf(errors.ErrCodeConfigInvalid, "k-mer length must be >= 1, got %d", k)
	}
	b := &Builder{k: k, norm: norm}
	b.reset()
	return b, nil
}

func (b *Builder) reset() {
	b.exact = make(map[string]*roaring.Bitmap)
	b.kmers = make(map[string]*roaring.Bitmap)
	b.ordByID = make(map[string]uint32)
	b.idByOrd = make(map[uint32]string)
	b.symByOrd = make(map[uint32]string)
	b.all = roaring.New()
	b.nextOrd = 0
}

// K returns the configured k-mer length.
func (b *Builder) K() int {
	return b.k
}

// Normalize applies the index normalization policy to s.
func (b *Builder) Normalize(s string) string {
	return b.norm.Normalize(s)
}

// Kmers splits normalized content into its k-mers. Content shorter
// than k yields the whole content as a single degenerate k-mer, so
// short sequences stay searchable under contains mode.
func (b *Builder) Kmers(normalized string) []string {
	runes := []rune(normalized)
	if len(runes) < b.k {
		if len(runes) == 0 {
			return nil
		}
		return []string{normalized}
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(runes)-b.k+1)
	for i := 0; i+b.k <= len(runes); i++ {
		kmer := string(runes[i : i+b.k])
		if _, dup := seen[kmer]; dup {
			continue
		}
		seen[kmer] = struct{}{}
		out = append(out, kmer)
	}
	return out
}

// OnCreate indexes a newly stored sequence.
func (b *Builder) OnCreate(id, symbols string) error {
	if _, exists := b.ordByID[id]; exists {
		return errors.Inconsistency(fmt.Sprintf("id %s already indexed", id))
	}

	ord := b.nextOrd
	b.nextOrd++

	normalized := b.norm.Normalize(symbols)
	b.ordByID[id] = ord
	b.idByOrd[ord] = id
	b.symByOrd[ord] = normalized
	b.all.Add(ord)

	addPosting(b.exact, normalized, ord)
	for _, kmer := range b.Kmers(normalized) {
		addPosting(b.kmers, kmer, ord)
	}
	return nil
}

// OnUpdate re-indexes a sequence whose content changed. It is
// delete-then-create, so no trace of the old content survives.
func (b *Builder) OnUpdate(id, oldSymbols, newSymbols string) error {
	if err := b.OnDelete(id, oldSymbols); err != nil {
		return err
	}
	return b.OnCreate(id, newSymbols)
}

// OnDelete purges every index trace of the sequence. oldSymbols is
// accepted for symmetry with the store callback shape; the recorded
// normalized content is the authority for what gets removed.
func (b *Builder) OnDelete(id, oldSymbols string) error {
	ord, exists := b.ordByID[id]
	if !exists {
		return errors.Inconsistency(fmt.Sprintf("id %s not indexed", id))
	}

	normalized := b.symByOrd[ord]
	removePosting(b.exact, normalized, ord)
	for _, kmer := range b.Kmers(normalized) {
		removePosting(b.kmers, kmer, ord)
	}

	delete(b.ordByID, id)
	delete(b.idByOrd, ord)
	delete(b.symByOrd, ord)
	b.all.Remove(ord)
	return nil
}

// Rebuild discards all structures and reconstructs them from the
// snapshot. Ordinals are assigned in snapshot order, so rebuilding
// twice from the same snapshot yields identical contents.
func (b *Builder) Rebuild(seqs []*store.Sequence) error {
	b.reset()
	for _, seq := range seqs {
		if err := b.OnCreate(seq.ID, seq.Symbols); err != nil {
			return err
		}
	}
	return nil
}

// ExactIDs returns the IDs whose whole normalized content equals the
// normalized pattern, in ascending ID order.
func (b *Builder) ExactIDs(normalizedPattern string) []string {
	bm, ok := b.exact[normalizedPattern]
	if !ok {
		return nil
	}
	return b.idsOf(bm)
}

// IntersectKmers returns the ordinals containing every given k-mer: a
// necessary-but-not-sufficient candidate filter for contains mode.
func (b *Builder) IntersectKmers(kmers []string) *roaring.Bitmap {
	result := roaring.New()
	for i, kmer := range kmers {
		bm, ok := b.kmers[kmer]
		if !ok {
			return roaring.New() // a missing k-mer empties the intersection
		}
		if i == 0 {
			result = bm.Clone()
		} else {
			result.And(bm)
		}
		if result.IsEmpty() {
			break
		}
	}
	return result
}

// UnionKmers returns the ordinals sharing at least one of the given
// k-mers: the candidate pruning set for fuzzy mode.
func (b *Builder) UnionKmers(kmers []string) *roaring.Bitmap {
	result := roaring.New()
	for _, kmer := range kmers {
		if bm, ok := b.kmers[kmer]; ok {
			result.Or(bm)
		}
	}
	return result
}

// AllOrdinals returns the ordinals of every indexed sequence.
func (b *Builder) AllOrdinals() *roaring.Bitmap {
	return b.all.Clone()
}

// IDOf translates an ordinal back to its sequence ID.
func (b *Builder) IDOf(ord uint32) string {
	return b.idByOrd[ord]
}

// SymbolsOf returns the normalized content recorded for an ordinal,
// used for verification and scoring.
func (b *Builder) SymbolsOf(ord uint32) string {
	return b.symByOrd[ord]
}

// Contains reports whether the ID is indexed.
func (b *Builder) Contains(id string) bool {
	_, ok := b.ordByID[id]
	return ok
}

// AllIDs returns every indexed sequence ID in ascending order, for
// consistency checks against the store.
func (b *Builder) AllIDs() []string {
	ids := make([]string, 0, len(b.ordByID))
	for id := range b.ordByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of indexed sequences.
func (b *Builder) Len() int {
	return len(b.ordByID)
}

// Stats returns index statistics.
func (b *Builder) Stats() Stats {
	return Stats{
		Sequences: len(b.ordByID),
		ExactKeys: len(b.exact),
		Kmers:     len(b.kmers),
	}
}

// Dump writes a deterministic text rendering of the index: sorted
// sections of `key|id,id,...` lines. Two dumps are byte-identical
// exactly when the index contents are identical, which is what the
// rebuild idempotence check relies on.
func (b *Builder) Dump(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "# EXACT"); err != nil {
		return err
	}
	if err := b.dumpTable(w, b.exact); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "# KMERS"); err != nil {
		return err
	}
	return b.dumpTable(w, b.kmers)
}

func (b *Builder) dumpTable(w io.Writer, table map[string]*roaring.Bitmap) error {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		ids := b.idsOf(table[key])
		if _, err := fmt.Fprintf(w, "%s|%s\n", key, strings.Join(ids, ",")); err != nil {
			return err
		}
	}
	return nil
}

// idsOf translates a posting bitmap to sorted sequence IDs.
func (b *Builder) idsOf(bm *roaring.Bitmap) []string {
	ids := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		ids = append(ids, b.idByOrd[it.Next()])
	}
	sort.Strings(ids)
	return ids
}

func addPosting(table map[string]*roaring.Bitmap, key string, ord uint32) {
	bm, ok := table[key]
	if !ok {
		bm = roaring.New()
		table[key] = bm
	}
	bm.Add(ord)
}

func removePosting(table map[string]*roaring.Bitmap, key string, ord uint32) {
	bm, ok := table[key]
	if !ok {
		return
	}
	bm.Remove(ord)
	if bm.IsEmpty() {
		delete(table, key)
	}
}
