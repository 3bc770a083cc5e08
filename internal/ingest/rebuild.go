package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	nderrors "github.com/newsdex/newsdex/internal/errors"
	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/store"
)

const (
	// DefaultStoryLimit caps how many top-level items a rebuild ingests.
	DefaultStoryLimit = 75

	defaultProgressBuffer = 16
	itemBuffer            = 100
)

// StatsRecorder persists rebuild statistics. Recording failures are
// logged, not fatal: stats have no effect on index content.
type StatsRecorder interface {
	Record(ctx context.Context, stats IndexStats) error
}

// Orchestrator drives one full ingestion pass per category and
// republishes the reader when the pass commits.
//
// At most one rebuild runs per category; a second request for the same
// category is rejected while the first is active. The store's single
// writer handle serializes rebuilds across categories as well.
type Orchestrator struct {
	store      *store.IndexStore
	pipeline   *Pipeline
	stats      StatsRecorder
	storyLimit int
	log        *slog.Logger

	mu     sync.Mutex
	active map[hn.Category]bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithStoryLimit caps the number of top-level items per rebuild.
func WithStoryLimit(n int) Option {
	return func(o *Orchestrator) {
		o.storyLimit = n
	}
}

// WithStatsRecorder persists an IndexStats snapshot after each
// successful rebuild.
func WithStatsRecorder(r StatsRecorder) Option {
	return func(o *Orchestrator) {
		o.stats = r
	}
}

// NewOrchestrator creates an orchestrator writing to st and reading
// items from src.
func NewOrchestrator(st *store.IndexStore, src hn.Source, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      st,
		pipeline:   NewPipeline(src),
		storyLimit: DefaultStoryLimit,
		log:        slog.Default(),
		active:     make(map[hn.Category]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Rebuild starts a full ingestion pass for the category on a background
// goroutine and returns its progress stream. The stream carries Started,
// one ItemCompleted per top-level item, and exactly one Completed after
// commit and reader reload, or a Failed terminator, in which case the
// previously committed index remains authoritative. The channel is
// closed when the pass ends either way.
//
// Returns a rebuild-active error if a pass is already running for the
// same category.
func (o *Orchestrator) Rebuild(ctx context.Context, category hn.Category) (<-chan Progress, error) {
	o.mu.Lock()
	if o.active[category] {
		o.mu.Unlock()
		return nil, nderrors.RebuildActiveError(string(category))
	}
	o.active[category] = true
	o.mu.Unlock()

	events := make(chan Progress, defaultProgressBuffer)
	go o.run(ctx, category, events)
	return events, nil
}

func (o *Orchestrator) run(ctx context.Context, category hn.Category, events chan<- Progress) {
	defer close(events)
	defer func() {
		o.mu.Lock()
		delete(o.active, category)
		o.mu.Unlock()
	}()

	start := time.Now()
	o.log.Info("rebuild_started", slog.String("category", string(category)))

	stats, err := o.rebuild(ctx, category, events)
	if err != nil {
		o.log.Error("rebuild_failed",
			slog.String("category", string(category)),
			slog.String("error", err.Error()))
		events <- Progress{Kind: ProgressFailed, Err: err}
		return
	}

	stats.BuildTime = time.Since(start)
	stats.BuiltOn = time.Now()

	if o.stats != nil {
		if err := o.stats.Record(ctx, *stats); err != nil {
			o.log.Warn("record_stats_failed", slog.String("error", err.Error()))
		}
	}

	o.log.Info("rebuild_completed",
		slog.String("category", string(category)),
		slog.Uint64("documents", stats.TotalDocuments),
		slog.Duration("build_time", stats.BuildTime))

	events <- Progress{Kind: ProgressCompleted, Stats: stats}
}

// rebuild runs one pass: walker and writer goroutines joined by an
// errgroup, one commit at the end, then the reader swap. Any error
// aborts the staged generation without touching the published index.
func (o *Orchestrator) rebuild(ctx context.Context, category hn.Category, events chan<- Progress) (*IndexStats, error) {
	w, err := o.store.Writer(category)
	if err != nil {
		return nil, err
	}
	published := false
	defer func() {
		if !published {
			w.Abort()
		}
	}()

	items := make(chan docRef, itemBuffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(items)
		return o.pipeline.Collect(gctx, category, o.storyLimit, items, func(total int) {
			events <- Progress{Kind: ProgressStarted, Total: total}
		})
	})

	g.Go(func() error {
		for ref := range items {
			if err := w.Add(ref.id, ref.doc); err != nil {
				return err
			}
			if ref.topLevel {
				events <- Progress{Kind: ProgressItemCompleted}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := w.Commit(); err != nil {
		return nil, err
	}
	if err := o.store.ReloadReader(w); err != nil {
		return nil, err
	}
	published = true

	return o.documentStats(ctx, category)
}

// documentStats reads exact per-type counts off the freshly published
// generation.
func (o *Orchestrator) documentStats(ctx context.Context, category hn.Category) (*IndexStats, error) {
	counts, err := o.store.TypeCounts(ctx, category)
	if err != nil {
		return nil, err
	}
	total, err := o.store.DocCount(category)
	if err != nil {
		return nil, err
	}

	return &IndexStats{
		Category:       category,
		TotalDocuments: total,
		TotalComments:  counts[store.TypeComment],
		TotalStories:   counts[store.TypeStory],
		TotalJobs:      counts[store.TypeJob],
		TotalPolls:     counts[store.TypePoll],
	}, nil
}
