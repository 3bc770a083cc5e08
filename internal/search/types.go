// Package search implements the query surface over the index store:
// ranked pagination, scoped and global free-text search, and direct
// lookup, each returning typed records plus an exact match count.
package search

// Story is a story, job or poll document extracted from the index.
// Body and URL keep the stored present/absent distinction.
type Story struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Body        *string `json:"body,omitempty"`
	URL         *string `json:"url,omitempty"`
	By          string  `json:"by"`
	Type        string  `json:"type"`
	Descendants uint64  `json:"descendants"`
	Time        uint64  `json:"time"`
	Score       uint64  `json:"score"`
	Rank        uint64  `json:"rank"`
}

// Comment is a comment document extracted from the index. StoryID is the
// root story regardless of nesting depth; Kids holds child comment ids.
type Comment struct {
	ID       uint64   `json:"id"`
	Body     string   `json:"body"`
	By       string   `json:"by"`
	Time     uint64   `json:"time"`
	Kids     []uint64 `json:"kids,omitempty"`
	StoryID  uint64   `json:"story_id"`
	ParentID uint64   `json:"parent_id"`
	Rank     uint64   `json:"rank"`
}
