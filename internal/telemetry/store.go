// Package telemetry persists rebuild statistics. The history is purely
// informational and has no effect on index content.
package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/ingest"
)

// StatsStore records one row per successful rebuild in SQLite.
type StatsStore struct {
	db *sql.DB
}

// OpenStatsStore opens (or creates) the stats database at path.
func OpenStatsStore(path string) (*StatsStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &StatsStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS index_stats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		category TEXT NOT NULL,
		built_on TIMESTAMP NOT NULL,
		build_time_ms INTEGER NOT NULL,
		total_documents INTEGER NOT NULL,
		total_comments INTEGER NOT NULL,
		total_stories INTEGER NOT NULL,
		total_jobs INTEGER NOT NULL,
		total_polls INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_index_stats_category ON index_stats(category, built_on DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create stats schema: %w", err)
	}
	return nil
}

// Record implements ingest.StatsRecorder.
func (s *StatsStore) Record(ctx context.Context, stats ingest.IndexStats) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO index_stats
			(category, built_on, build_time_ms, total_documents,
			 total_comments, total_stories, total_jobs, total_polls)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(stats.Category),
		stats.BuiltOn.UTC(),
		stats.BuildTime.Milliseconds(),
		stats.TotalDocuments,
		stats.TotalComments,
		stats.TotalStories,
		stats.TotalJobs,
		stats.TotalPolls,
	)
	if err != nil {
		return fmt.Errorf("record stats: %w", err)
	}
	return nil
}

// Latest returns the most recent stats row per category, newest first.
func (s *StatsStore) Latest(ctx context.Context) ([]ingest.IndexStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, built_on, build_time_ms, total_documents,
		       total_comments, total_stories, total_jobs, total_polls
		FROM index_stats
		WHERE id IN (SELECT MAX(id) FROM index_stats GROUP BY category)
		ORDER BY built_on DESC`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ingest.IndexStats
	for rows.Next() {
		var (
			category string
			builtOn  time.Time
			buildMS  int64
			stats    ingest.IndexStats
		)
		if err := rows.Scan(&category, &builtOn, &buildMS,
			&stats.TotalDocuments, &stats.TotalComments,
			&stats.TotalStories, &stats.TotalJobs, &stats.TotalPolls); err != nil {
			return nil, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Category = hn.Category(category)
		stats.BuiltOn = builtOn
		stats.BuildTime = time.Duration(buildMS) * time.Millisecond
		out = append(out, stats)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *StatsStore) Close() error {
	return s.db.Close()
}

var _ ingest.StatsRecorder = (*StatsStore)(nil)
