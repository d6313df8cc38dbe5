// Package corpus moves sequences between FASTA files and the store:
// bulk import, export, and live synchronization driven by watcher
// events.
package corpus

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/seqdex/seqdex/internal/errors"
	"github.com/seqdex/seqdex/internal/index"
	"github.com/seqdex/seqdex/internal/store"
	"github.com/seqdex/seqdex/internal/watcher"
)

// Importer loads FASTA files into the store through the coordinator,
// remembering which ids each file produced so a later change to that
// file can replace exactly its own sequences.
type Importer struct {
	coord *index.Coordinator

	mu     sync.Mutex
	byFile map[string][]string // path -> imported sequence ids
}

// NewImporter creates an importer over coord.
func NewImporter(coord *index.Coordinator) *Importer {
	return &Importer{
		coord:  coord,
		byFile: make(map[string][]string),
	}
}

// ImportFile parses one FASTA file (plain or gzip) and stores every
// record. Returns the number of imported sequences.
func (im *Importer) ImportFile(ctx context.Context, path string) (int, error) {
	r, closeFn, err := store.OpenFasta(path)
	if err != nil {
		return 0, errors.New(errors.ErrCodeImportFailed, "open corpus file "+path, err)
	}
	defer func() { _ = closeFn() }()

	records, err := store.ParseFasta(r)
	if err != nil {
		return 0, errors.New(errors.ErrCodeImportFailed, "parse corpus file "+path, err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		seq, err := im.coord.Create(ctx, rec.Symbols, rec.Meta())
		if err != nil {
			return len(ids), err
		}
		ids = append(ids, seq.ID)
	}

	im.mu.Lock()
	im.byFile[path] = append(im.byFile[path], ids...)
	im.mu.Unlock()

	slog.Info("corpus file imported",
		slog.String("path", path),
		slog.Int("sequences", len(ids)))
	return len(ids), nil
}

// ImportFiles imports several files with bounded parallelism. Parsing
// runs concurrently; the coordinator serializes the actual writes.
// Returns the total number of imported sequences; the first failure
// cancels the remaining files.
func (im *Importer) ImportFiles(ctx context.Context, paths []string, workers int) (int, error) {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	counts := make([]int, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			n, err := im.ImportFile(ctx, path)
			counts[i] = n
			return err
		})
	}

	err := g.Wait()
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, err
}

// RemoveFile deletes every sequence previously imported from path.
// Returns the number of removed sequences.
func (im *Importer) RemoveFile(ctx context.Context, path string) (int, error) {
	im.mu.Lock()
	ids := im.byFile[path]
	delete(im.byFile, path)
	im.mu.Unlock()

	removed := 0
	for _, id := range ids {
		if err := im.coord.Delete(ctx, id); err != nil {
			if errors.IsNotFound(err) {
				continue // already gone, e.g. removed via the CLI
			}
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// Apply synchronizes the store with a batch of watcher events: new
// files are imported, modified files are re-imported wholesale, and
// deleted files have their sequences removed.
func (im *Importer) Apply(ctx context.Context, batch []watcher.Event) error {
	for _, ev := range batch {
		switch ev.Op {
		case watcher.OpCreate:
			if _, err := im.ImportFile(ctx, ev.Path); err != nil {
				return err
			}
		case watcher.OpModify:
			if _, err := im.RemoveFile(ctx, ev.Path); err != nil {
				return err
			}
			if _, err := im.ImportFile(ctx, ev.Path); err != nil {
				return err
			}
		case watcher.OpDelete:
			if _, err := im.RemoveFile(ctx, ev.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

// Watch applies event batches from w until ctx is cancelled. Failed
// batches are logged and skipped so one bad file does not stop the
// sync loop.
func (im *Importer) Watch(ctx context.Context, w *watcher.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			if err := im.Apply(ctx, batch); err != nil {
				slog.Error("corpus sync batch failed",
					slog.Int("batch_size", len(batch)),
					slog.String("error", err.Error()))
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// Export writes every stored sequence to path as FASTA (gzip when the
// path ends in .gz). Returns the number of exported sequences.
func Export(ctx context.Context, coord *index.Coordinator, path string) (int, error) {
	w, closeFn, err := store.CreateFasta(path)
	if err != nil {
		return 0, err
	}

	exported := 0
	cursor := ""
	for {
		page, next, err := coord.List(ctx, cursor, 512)
		if err != nil {
			_ = closeFn()
			return exported, err
		}
		if err := store.WriteFasta(w, page); err != nil {
			_ = closeFn()
			return exported, err
		}
		exported += len(page)
		if next == "" {
			break
		}
		cursor = next
	}
	return exported, closeFn()
}
