package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/gofrs/flock"

	nderrors "github.com/newsdex/newsdex/internal/errors"
	"github.com/newsdex/newsdex/internal/hn"
)

const genPrefix = "gen-"

// IndexStore owns one bleve index per category under a base directory.
//
// Reads go through a per-category IndexAlias: rebuilds write into a fresh
// generation directory, so already-open searchers keep observing the
// previous generation until ReloadReader swaps the alias. The whole base
// directory is claimed with a lock file; a second process fails to open it.
type IndexStore struct {
	path     string
	lock     *flock.Flock
	readonly bool
	log      *slog.Logger

	mu     sync.RWMutex
	cats   map[hn.Category]*categoryIndex
	global bleve.IndexAlias

	// writerMu serializes write handles: the index format supports a
	// single concurrent writer and readers must never wait on it.
	writerMu sync.Mutex
}

// categoryIndex is the live generation for one category.
type categoryIndex struct {
	gen   int
	dir   string
	idx   bleve.Index
	alias bleve.IndexAlias
}

// Open opens or creates the index at path. Every category gets its own
// index directory; the newest generation inside each is opened, or an
// empty one created. Fails if another process holds the directory.
func Open(path string) (*IndexStore, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, nderrors.OpenDirectoryError(fmt.Sprintf("create index directory %s", path), err)
	}

	lock := flock.New(filepath.Join(path, "writer.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, nderrors.OpenDirectoryError("acquire index lock", err)
	}
	if !held {
		return nil, nderrors.New(nderrors.ErrCodeIndexLocked,
			fmt.Sprintf("index directory %s is locked by another process", path), nil)
	}

	s := &IndexStore{
		path: path,
		lock: lock,
		log:  slog.Default(),
		cats: make(map[hn.Category]*categoryIndex),
	}

	aliases := make([]bleve.Index, 0, len(hn.Categories()))
	for _, cat := range hn.Categories() {
		ci, err := openCategory(filepath.Join(path, string(cat)))
		if err != nil {
			_ = lock.Unlock()
			s.closeOpened()
			return nil, err
		}
		s.cats[cat] = ci
		aliases = append(aliases, ci.alias)
	}
	s.global = bleve.NewIndexAlias(aliases...)

	return s, nil
}

// OpenReadOnly opens the index at path for queries only. No directory
// lock is taken, so queries keep working while a rebuild runs in
// another process. Categories that have never been built are served
// from an empty in-memory index.
func OpenReadOnly(path string) (*IndexStore, error) {
	s := &IndexStore{
		path:     path,
		readonly: true,
		log:      slog.Default(),
		cats:     make(map[hn.Category]*categoryIndex),
	}

	aliases := make([]bleve.Index, 0, len(hn.Categories()))
	for _, cat := range hn.Categories() {
		ci, err := openCategoryReadOnly(filepath.Join(path, string(cat)))
		if err != nil {
			s.closeOpened()
			return nil, err
		}
		s.cats[cat] = ci
		aliases = append(aliases, ci.alias)
	}
	s.global = bleve.NewIndexAlias(aliases...)

	return s, nil
}

// openCategory opens the newest generation under dir, creating gen-0 if
// the category has never been built.
func openCategory(dir string) (*categoryIndex, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nderrors.OpenDirectoryError(fmt.Sprintf("create category directory %s", dir), err)
	}

	gen, found, err := newestGeneration(dir)
	if err != nil {
		return nil, err
	}

	var idx bleve.Index
	genDir := filepath.Join(dir, genPrefix+strconv.Itoa(gen))
	if found {
		idx, err = bleve.Open(genDir)
	} else {
		idx, err = bleve.New(genDir, buildIndexMapping())
	}
	if err != nil {
		return nil, nderrors.OpenIndexError(fmt.Sprintf("open index at %s", genDir), err)
	}

	return &categoryIndex{
		gen:   gen,
		dir:   dir,
		idx:   idx,
		alias: bleve.NewIndexAlias(idx),
	}, nil
}

// openCategoryReadOnly opens the newest generation under dir without
// claiming write access, or an empty in-memory index when the category
// has never been built.
func openCategoryReadOnly(dir string) (*categoryIndex, error) {
	gen, found, err := newestGeneration(dir)
	if err != nil {
		return nil, err
	}

	var idx bleve.Index
	if found {
		genDir := filepath.Join(dir, genPrefix+strconv.Itoa(gen))
		idx, err = bleve.OpenUsing(genDir, map[string]interface{}{"read_only": true})
		if err != nil {
			return nil, nderrors.OpenIndexError(fmt.Sprintf("open index at %s", genDir), err)
		}
	} else {
		idx, err = bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, nderrors.OpenIndexError("open empty in-memory index", err)
		}
	}

	return &categoryIndex{
		gen:   gen,
		dir:   dir,
		idx:   idx,
		alias: bleve.NewIndexAlias(idx),
	}, nil
}

// newestGeneration scans dir for gen-N subdirectories and returns the
// highest N. found is false when no generation exists yet.
func newestGeneration(dir string) (gen int, found bool, err error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, nderrors.OpenDirectoryError(fmt.Sprintf("read category directory %s", dir), err)
	}

	gens := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), genPrefix) {
			continue
		}
		n, convErr := strconv.Atoi(strings.TrimPrefix(e.Name(), genPrefix))
		if convErr != nil {
			continue
		}
		gens = append(gens, n)
	}
	if len(gens) == 0 {
		return 0, false, nil
	}
	sort.Ints(gens)
	return gens[len(gens)-1], true, nil
}

// Searcher returns the point-in-time view for a category. The returned
// index is the category alias: it keeps serving the previous generation
// while a rebuild runs and never blocks on the writer.
func (s *IndexStore) Searcher(cat hn.Category) bleve.Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cats[cat].alias
}

// GlobalSearcher returns a view spanning every category.
func (s *IndexStore) GlobalSearcher() bleve.Index {
	return s.global
}

// DocCount returns the number of documents for a category.
func (s *IndexStore) DocCount(cat hn.Category) (uint64, error) {
	count, err := s.Searcher(cat).DocCount()
	if err != nil {
		return 0, fmt.Errorf("doc count for %s: %w", cat, err)
	}
	return count, nil
}

// TypeCounts returns the exact number of documents per item type for a
// category, using zero-size count searches.
func (s *IndexStore) TypeCounts(ctx context.Context, cat hn.Category) (map[string]uint64, error) {
	searcher := s.Searcher(cat)
	counts := make(map[string]uint64, 4)
	for _, t := range []string{TypeStory, TypeComment, TypeJob, TypePoll} {
		q := bleve.NewTermQuery(t)
		q.SetField(FieldType)
		req := bleve.NewSearchRequestOptions(q, 0, 0, false)
		res, err := searcher.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("count %s docs for %s: %w", t, cat, err)
		}
		counts[t] = res.Total
	}
	return counts, nil
}

// Writer acquires the exclusive write handle for a category. Documents
// are staged into a fresh generation directory; nothing is visible to
// readers until Commit followed by ReloadReader. Only one Writer may
// exist at a time; a second call fails instead of blocking.
func (s *IndexStore) Writer(cat hn.Category) (*Writer, error) {
	if s.readonly {
		return nil, nderrors.New(nderrors.ErrCodeIndexWrite, "store opened read-only", nil)
	}
	if !s.writerMu.TryLock() {
		return nil, nderrors.New(nderrors.ErrCodeIndexLocked, "another writer is active", nil)
	}

	s.mu.RLock()
	ci := s.cats[cat]
	nextGen := ci.gen + 1
	dir := ci.dir
	s.mu.RUnlock()

	genDir := filepath.Join(dir, genPrefix+strconv.Itoa(nextGen))
	idx, err := bleve.New(genDir, buildIndexMapping())
	if err != nil {
		s.writerMu.Unlock()
		return nil, nderrors.OpenIndexError(fmt.Sprintf("create index at %s", genDir), err)
	}

	return &Writer{
		store: s,
		cat:   cat,
		gen:   nextGen,
		dir:   genDir,
		idx:   idx,
		batch: idx.NewBatch(),
	}, nil
}

// ReloadReader republishes the reader for the writer's category so
// subsequent Searcher calls observe the committed generation. The
// previous generation is closed and its directory removed, which is what
// makes a rebuild delete-then-rewrite rather than append.
func (s *IndexStore) ReloadReader(w *Writer) error {
	if !w.committed {
		return nderrors.New(nderrors.ErrCodeIndexWrite, "reload before commit", nil)
	}

	s.mu.Lock()
	ci := s.cats[w.cat]
	old := ci.idx
	oldGen := ci.gen
	ci.alias.Swap([]bleve.Index{w.idx}, []bleve.Index{old})
	ci.idx = w.idx
	ci.gen = w.gen
	s.mu.Unlock()

	oldDir := filepath.Join(ci.dir, genPrefix+strconv.Itoa(oldGen))
	if err := old.Close(); err != nil {
		s.log.Warn("close_previous_generation_failed",
			slog.String("category", string(w.cat)), slog.String("error", err.Error()))
	} else if err := os.RemoveAll(oldDir); err != nil {
		s.log.Warn("remove_previous_generation_failed",
			slog.String("dir", oldDir), slog.String("error", err.Error()))
	}

	w.released = true
	s.writerMu.Unlock()
	return nil
}

// Close releases the reader handles and the directory lock.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for _, ci := range s.cats {
		if err := ci.idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *IndexStore) closeOpened() {
	for _, ci := range s.cats {
		_ = ci.idx.Close()
	}
}

// Writer stages documents for one category rebuild.
type Writer struct {
	store     *IndexStore
	cat       hn.Category
	gen       int
	dir       string
	idx       bleve.Index
	batch     *bleve.Batch
	staged    int
	committed bool
	released  bool
}

// batchFlushSize bounds the in-memory batch during long ingestion passes.
// Flushed documents land in the new generation, which no reader observes
// until ReloadReader, so visibility stays atomic.
const batchFlushSize = 1000

// Add stages a document. The bleve doc id is the item id in decimal.
func (w *Writer) Add(id uint64, doc map[string]any) error {
	if err := w.batch.Index(strconv.FormatUint(id, 10), doc); err != nil {
		return nderrors.New(nderrors.ErrCodeIndexWrite, fmt.Sprintf("stage doc %d", id), err)
	}
	w.staged++
	if w.staged >= batchFlushSize {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if w.staged == 0 {
		return nil
	}
	if err := w.idx.Batch(w.batch); err != nil {
		return nderrors.New(nderrors.ErrCodeIndexWrite, "flush batch", err)
	}
	w.batch = w.idx.NewBatch()
	w.staged = 0
	return nil
}

// Commit makes all staged documents durable in the new generation.
// Readers observe them only after IndexStore.ReloadReader.
func (w *Writer) Commit() error {
	if err := w.flush(); err != nil {
		return err
	}
	w.committed = true
	return nil
}

// Abort discards the staged generation and releases the write handle.
// Safe to call after a failed pass; the published index is untouched.
func (w *Writer) Abort() {
	if w.released {
		return
	}
	w.released = true
	if err := w.idx.Close(); err != nil {
		w.store.log.Warn("close_aborted_generation_failed", slog.String("error", err.Error()))
	}
	if err := os.RemoveAll(w.dir); err != nil {
		w.store.log.Warn("remove_aborted_generation_failed",
			slog.String("dir", w.dir), slog.String("error", err.Error()))
	}
	w.store.writerMu.Unlock()
}
