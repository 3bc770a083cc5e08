// Package hn provides the Hacker News item source: typed item records,
// category listings, and the Firebase REST client the ingestion pipeline
// reads from.
package hn

import (
	"context"
	"fmt"
)

// Item is one record from the item API.
//
// The source schema is loosely typed: most fields are present only for
// some item kinds (title for stories/jobs/polls, text for comments, and
// so on). Absent fields decode to their zero value and Title/Text/URL
// keep a present/absent distinction via pointers at the storage layer.
type Item struct {
	// ID is the item's unique id.
	ID uint64 `json:"id"`
	// Kids are the ids of the item's child comments, in ranked display order.
	Kids []uint64 `json:"kids"`
	// Text is the comment, story or poll text.
	Text string `json:"text"`
	// URL of the story.
	URL string `json:"url"`
	// Title of the story, poll or job.
	Title string `json:"title"`
	// Score is the story's upvote score.
	Score uint64 `json:"score"`
	// Time is the creation date of the item, in unix time.
	Time uint64 `json:"time"`
	// By is the username of the item's author.
	By string `json:"by"`
	// Dead is true if the item is dead.
	Dead bool `json:"dead"`
	// Deleted is true if the item is deleted.
	Deleted bool `json:"deleted"`
	// Type is one of "job", "story", "comment", "poll", or "pollopt".
	Type string `json:"type"`
	// Parent is the comment's parent: either another comment or the
	// relevant story. Zero for top-level items.
	Parent uint64 `json:"parent"`
	// Descendants is the total comment count for stories and polls.
	Descendants uint64 `json:"descendants"`
}

// Absent reports whether the item should be treated as missing from the
// corpus. Dead and deleted items are never indexed and their children are
// never visited.
func (i *Item) Absent() bool {
	return i.Dead || i.Deleted
}

// Category is a named top-level listing.
type Category string

const (
	CategoryTop  Category = "top"
	CategoryNew  Category = "new"
	CategoryBest Category = "best"
	CategoryAsk  Category = "ask"
	CategoryShow Category = "show"
	CategoryJob  Category = "job"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{CategoryTop, CategoryNew, CategoryBest, CategoryAsk, CategoryShow, CategoryJob}
}

// ParseCategory converts a user-supplied name into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// endpoint returns the listing endpoint for the category.
func (c Category) endpoint() string {
	return string(c) + "stories.json"
}

// Source is the item source consumed by the ingestion pipeline.
//
// Implementations must treat ids uniformly: any id may name a story,
// comment, job, poll or poll option.
type Source interface {
	// Item fetches a single item by id.
	Item(ctx context.Context, id uint64) (*Item, error)

	// TopIDs fetches the ordered id list for a category, capped to limit.
	TopIDs(ctx context.Context, category Category, limit int) ([]uint64, error)
}
