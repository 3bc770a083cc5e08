// Package ingest walks item trees from the source API into the index
// store and drives category rebuilds with progress reporting.
package ingest

import (
	"time"

	"github.com/newsdex/newsdex/internal/hn"
)

// ProgressKind enumerates rebuild progress events.
type ProgressKind int

const (
	// ProgressStarted is emitted once, immediately after the category
	// listing is fetched. Total carries the top-level item count.
	ProgressStarted ProgressKind = iota
	// ProgressItemCompleted is emitted once per top-level item after its
	// full subtree has been written.
	ProgressItemCompleted
	// ProgressCompleted is emitted exactly once on success, after commit
	// and reader reload. Stats carries the rebuild statistics.
	ProgressCompleted
	// ProgressFailed terminates the stream on error. The existing index
	// is unaffected.
	ProgressFailed
)

// Progress is one event on a rebuild's progress stream. The stream is
// single-consumer and bounded: a slow consumer blocks the producer.
type Progress struct {
	Kind  ProgressKind
	Total int
	Stats *IndexStats
	Err   error
}

// IndexStats is the snapshot recorded after a successful rebuild.
type IndexStats struct {
	Category       hn.Category   `json:"category"`
	BuiltOn        time.Time     `json:"built_on"`
	BuildTime      time.Duration `json:"build_time"`
	TotalDocuments uint64        `json:"total_documents"`
	TotalComments  uint64        `json:"total_comments"`
	TotalStories   uint64        `json:"total_stories"`
	TotalJobs      uint64        `json:"total_jobs"`
	TotalPolls     uint64        `json:"total_polls"`
}
