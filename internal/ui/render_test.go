package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/newsdex/newsdex/internal/search"
)

func strptr(s string) *string { return &s }

func nowUnix() uint64 { return uint64(time.Now().Unix()) }

func TestRenderer_StoryList(t *testing.T) {
	// Given: two stories, one with a URL
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	stories := []search.Story{
		{ID: 1, Title: "First story", By: "alice", Score: 10, Descendants: 3, URL: strptr("https://example.com")},
		{ID: 2, Title: "Second story", By: "bob", Score: 5},
	}

	// When: rendering a page of a larger result set
	r.StoryList(stories, 7, 0)

	// Then: titles, metadata and the exact total appear
	out := buf.String()
	assert.Contains(t, out, "First story")
	assert.Contains(t, out, "Second story")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "2 of 7 total")
}

func TestRenderer_StoryDetail(t *testing.T) {
	// Given: a text story
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	story := &search.Story{
		ID: 1, Title: "Ask HN: something?", Type: "story",
		By: "carol", Body: strptr("The question body."),
	}

	// When: rendering it
	r.StoryDetail(story)

	// Then: the body is included
	out := buf.String()
	assert.Contains(t, out, "Ask HN: something?")
	assert.Contains(t, out, "The question body.")
	assert.Contains(t, out, "carol")
}

func TestRenderer_CommentList(t *testing.T) {
	// Given: a multi-line comment
	var buf bytes.Buffer
	r := NewRenderer(&buf)

	comments := []search.Comment{
		{ID: 9, By: "dave", Body: "line one\nline two"},
	}

	// When: rendering
	r.CommentList(comments, 1)

	// Then: the body is indented and the count is exact
	out := buf.String()
	assert.Contains(t, out, "dave")
	assert.Contains(t, out, "  line one")
	assert.Contains(t, out, "  line two")
	assert.Contains(t, out, "1 of 1 total")
}

func TestRelativeTime_Buckets(t *testing.T) {
	assert.Equal(t, "just now", relativeTime(nowUnix()))
	assert.Contains(t, relativeTime(nowUnix()-120), "minutes ago")
	assert.Contains(t, relativeTime(nowUnix()-7200), "hours ago")
	assert.Contains(t, relativeTime(nowUnix()-200000), "days ago")
}
