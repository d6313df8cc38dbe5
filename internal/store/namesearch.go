package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// NameIndex is a bleve index over sequence names, tags and
// descriptions. It answers the `find` operation; symbol content search
// is the k-mer index's job, not bleve's.
type NameIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// nameDocument is the document shape handed to bleve.
type nameDocument struct {
	Name        string `json:"name"`
	Tags        string `json:"tags"`
	Description string `json:"description"`
}

// NameMatch is a single metadata search hit.
type NameMatch struct {
	ID    string
	Score float64
}

// NewNameIndex opens or creates a name index.
// If path is empty, creates an in-memory index.
func NewNameIndex(path string) (*NameIndex, error) {
	mapping := bleve.NewIndexMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(mapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, mapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("open name index: %w", err)
	}

	return &NameIndex{index: idx, path: path}, nil
}

// Index adds or replaces the metadata documents for the given sequences.
func (n *NameIndex) Index(ctx context.Context, seqs ...*Sequence) error {
	if len(seqs) == 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return fmt.Errorf("name index is closed")
	}

	batch := n.index.NewBatch()
	for _, seq := range seqs {
		doc := nameDocument{
			Name:        seq.Name,
			Tags:        strings.Join(seq.Tags, " "),
			Description: seq.Description,
		}
		if err := batch.Index(seq.ID, doc); err != nil {
			return fmt.Errorf("index metadata for %s: %w", seq.ID, err)
		}
	}
	if err := n.index.Batch(batch); err != nil {
		return fmt.Errorf("execute batch: %w", err)
	}
	return nil
}

// Delete removes metadata documents by sequence ID.
func (n *NameIndex) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return fmt.Errorf("name index is closed")
	}

	batch := n.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := n.index.Batch(batch); err != nil {
		return fmt.Errorf("delete documents: %w", err)
	}
	return nil
}

// Search returns sequence IDs whose metadata matches the query,
// best-scoring first.
func (n *NameIndex) Search(ctx context.Context, query string, limit int) ([]NameMatch, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return nil, fmt.Errorf("name index is closed")
	}

	if strings.TrimSpace(query) == "" {
		return []NameMatch{}, nil
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit

	result, err := n.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("name search: %w", err)
	}

	matches := make([]NameMatch, 0, len(result.Hits))
	for _, hit := range result.Hits {
		matches = append(matches, NameMatch{ID: hit.ID, Score: hit.Score})
	}
	return matches, nil
}

// Count returns the number of indexed documents.
func (n *NameIndex) Count() (int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return 0, fmt.Errorf("name index is closed")
	}

	c, err := n.index.DocCount()
	return int(c), err
}

// Close closes the underlying index.
func (n *NameIndex) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	return n.index.Close()
}
