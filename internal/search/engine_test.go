package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nderrors "github.com/newsdex/newsdex/internal/errors"
	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/store"
)

func storyDoc(id, rank uint64, title, url string) map[string]any {
	doc := map[string]any{
		store.FieldID:          id,
		store.FieldRank:        rank,
		store.FieldTitle:       title,
		store.FieldBy:          "tester",
		store.FieldType:        store.TypeStory,
		store.FieldTime:        uint64(1700000000),
		store.FieldScore:       uint64(42),
		store.FieldDescendants: uint64(2),
		store.FieldCategory:    "top",
	}
	if url != "" {
		doc[store.FieldURL] = url
	}
	return doc
}

func commentDoc(id, parentID, storyID, rank uint64, body string, kids []uint64) map[string]any {
	doc := map[string]any{
		store.FieldID:       id,
		store.FieldParentID: parentID,
		store.FieldStoryID:  storyID,
		store.FieldRank:     rank,
		store.FieldBody:     body,
		store.FieldBy:       "commenter",
		store.FieldType:     store.TypeComment,
		store.FieldTime:     uint64(1700000100),
	}
	if len(kids) > 0 {
		doc[store.FieldKids] = kids
	}
	return doc
}

func publish(t *testing.T, st *store.IndexStore, cat hn.Category, docs []map[string]any) {
	t.Helper()

	w, err := st.Writer(cat)
	require.NoError(t, err)
	for _, doc := range docs {
		id, _ := doc[store.FieldID].(uint64)
		require.NoError(t, w.Add(id, doc))
	}
	require.NoError(t, w.Commit())
	require.NoError(t, st.ReloadReader(w))
}

// fixture builds a store with a small corpus in the top and ask
// categories and returns an engine scoped to top.
func fixture(t *testing.T) *Engine {
	t.Helper()

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	job := storyDoc(103, 4, "Acme is hiring engineers", "https://acme.example")
	job[store.FieldType] = store.TypeJob

	publish(t, st, hn.CategoryTop, []map[string]any{
		storyDoc(100, 1, "Distributed systems at scale", "https://example.com/dist"),
		storyDoc(101, 2, "Rust memory safety explained", "https://example.com/rust"),
		storyDoc(102, 3, "My weekend project", ""),
		job,
		commentDoc(200, 100, 100, 1, "great article about distributed databases", []uint64{201}),
		commentDoc(201, 200, 100, 1, "agreed, the garage analogy works well", nil),
		commentDoc(202, 100, 100, 2, "the unit coverage numbers are impressive", nil),
		commentDoc(210, 101, 101, 1, "the borrow checker takes some practice", nil),
	})

	publish(t, st, hn.CategoryAsk, []map[string]any{
		storyDoc(300, 1, "Ask HN: how do you take notes?", ""),
		commentDoc(301, 300, 300, 1, "plain text files in a git repo", nil),
	})

	return New(st, hn.CategoryTop)
}

func TestTopStories_RankOrderAndExactCount(t *testing.T) {
	// Given: an indexed front page
	engine := fixture(t)

	// When: listing the first page
	stories, total, err := engine.TopStories(context.Background(), 10, 0)
	require.NoError(t, err)

	// Then: stories, jobs and polls are listed in rank order, comments excluded
	assert.Equal(t, uint64(4), total)
	require.Len(t, stories, 4)
	assert.Equal(t, uint64(100), stories[0].ID)
	assert.Equal(t, uint64(101), stories[1].ID)
	assert.Equal(t, uint64(102), stories[2].ID)
	assert.Equal(t, uint64(103), stories[3].ID)
	assert.Equal(t, store.TypeJob, stories[3].Type)
}

func TestTopStories_PaginationKeepsExactTotal(t *testing.T) {
	// Given: an indexed front page
	engine := fixture(t)

	// When: paging with limit 2, offset 2
	stories, total, err := engine.TopStories(context.Background(), 2, 2)
	require.NoError(t, err)

	// Then: the page is partial but the total is the full match count
	assert.Equal(t, uint64(4), total)
	require.Len(t, stories, 2)
	assert.Equal(t, uint64(102), stories[0].ID)
	assert.Equal(t, uint64(103), stories[1].ID)
}

func TestTopStories_ScopedToCategory(t *testing.T) {
	// Given: an engine re-scoped to ask
	engine := fixture(t).WithCategory(hn.CategoryAsk)

	// When: listing
	stories, total, err := engine.TopStories(context.Background(), 10, 0)
	require.NoError(t, err)

	// Then: only the ask story appears
	assert.Equal(t, uint64(1), total)
	require.Len(t, stories, 1)
	assert.Equal(t, uint64(300), stories[0].ID)
}

func TestStory_LookupPopulatesFields(t *testing.T) {
	// Given: an indexed story with a URL
	engine := fixture(t)

	// When: looking it up by id
	story, err := engine.Story(context.Background(), 100)
	require.NoError(t, err)

	// Then: all stored fields are extracted
	assert.Equal(t, uint64(100), story.ID)
	assert.Equal(t, "Distributed systems at scale", story.Title)
	require.NotNil(t, story.URL)
	assert.Equal(t, "https://example.com/dist", *story.URL)
	assert.Nil(t, story.Body)
	assert.Equal(t, "tester", story.By)
	assert.Equal(t, uint64(42), story.Score)
	assert.Equal(t, uint64(1), story.Rank)
}

func TestStory_FindsStoriesInOtherCategories(t *testing.T) {
	// Given: an engine scoped to top
	engine := fixture(t)

	// When: looking up an ask-category story
	story, err := engine.Story(context.Background(), 300)
	require.NoError(t, err)

	// Then: the lookup is global
	assert.Equal(t, uint64(300), story.ID)
}

func TestStory_NotFound(t *testing.T) {
	// Given: an id that was never indexed
	engine := fixture(t)

	// When: looking it up
	_, err := engine.Story(context.Background(), 99999)

	// Then: a not-found error is returned
	require.Error(t, err)
	assert.Equal(t, nderrors.ErrCodeNotFound, nderrors.GetCode(err))
}

func TestComments_SiblingRankOrder(t *testing.T) {
	// Given: a story with two direct children
	engine := fixture(t)

	// When: listing its comments
	comments, total, err := engine.Comments(context.Background(), 100, 10, 0)
	require.NoError(t, err)

	// Then: direct children come back in sibling order with exact count
	assert.Equal(t, uint64(2), total)
	require.Len(t, comments, 2)
	assert.Equal(t, uint64(200), comments[0].ID)
	assert.Equal(t, uint64(202), comments[1].ID)
	assert.Equal(t, []uint64{201}, comments[0].Kids)
}

func TestComments_OfCommentReturnsReplies(t *testing.T) {
	// Given: a comment with one reply
	engine := fixture(t)

	// When: listing children of the comment
	comments, total, err := engine.Comments(context.Background(), 200, 10, 0)
	require.NoError(t, err)

	// Then: the nested reply is found with its root story id
	assert.Equal(t, uint64(1), total)
	require.Len(t, comments, 1)
	assert.Equal(t, uint64(201), comments[0].ID)
	assert.Equal(t, uint64(100), comments[0].StoryID)
	assert.Equal(t, uint64(200), comments[0].ParentID)
}

func TestComments_PaginationCoversAllSiblings(t *testing.T) {
	// Given: a story with more direct children than one page holds
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	docs := []map[string]any{storyDoc(500, 1, "Show HN: a tiny raytracer", "")}
	for i := uint64(1); i <= 7; i++ {
		docs = append(docs, commentDoc(500+i, 500, 500, i, "nice work", nil))
	}
	publish(t, st, hn.CategoryTop, docs)
	engine := New(st, hn.CategoryTop)

	// When: paging through with a page size of 3
	seen := map[uint64]bool{}
	for offset := 0; offset < 7; offset += 3 {
		comments, total, err := engine.Comments(context.Background(), 500, 3, offset)
		require.NoError(t, err)

		// Then: every page reports the full count and fresh ids
		assert.Equal(t, uint64(7), total)
		for _, c := range comments {
			assert.False(t, seen[c.ID], "comment %d returned twice", c.ID)
			seen[c.ID] = true
		}
	}

	// Then: the pages cover every child exactly once
	assert.Len(t, seen, 7)
}

func TestComments_NoChildren(t *testing.T) {
	engine := fixture(t)

	comments, total, err := engine.Comments(context.Background(), 201, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, comments)
}

func TestSearchComments_ScopedToStoryTree(t *testing.T) {
	// Given: comments mentioning "distributed" in two stories
	engine := fixture(t)

	// When: searching within story 100's tree
	comments, total, err := engine.SearchComments(context.Background(), "garage", 100, 10, 0)
	require.NoError(t, err)

	// Then: the nested comment is found
	assert.Equal(t, uint64(1), total)
	require.Len(t, comments, 1)
	assert.Equal(t, uint64(201), comments[0].ID)

	// And: the same search in another story's tree finds nothing
	_, total, err = engine.SearchComments(context.Background(), "garage", 101, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSearchComments_ToleratesSingleTypo(t *testing.T) {
	// Given: a comment containing "distributed"
	engine := fixture(t)

	// When: searching with a one-character typo
	comments, total, err := engine.SearchComments(context.Background(), "distibuted", 100, 10, 0)
	require.NoError(t, err)

	// Then: the fuzzy match still finds it
	assert.Equal(t, uint64(1), total)
	require.Len(t, comments, 1)
	assert.Equal(t, uint64(200), comments[0].ID)
}

func TestSearchComments_MatchesPrefix(t *testing.T) {
	// Given: a comment containing "databases"
	engine := fixture(t)

	// When: searching with a bare prefix
	_, total, err := engine.SearchComments(context.Background(), "datab", 100, 10, 0)
	require.NoError(t, err)

	// Then: the prefix match finds it
	assert.Equal(t, uint64(1), total)
}

func TestSearchAllComments_SpansCategories(t *testing.T) {
	// Given: comments in top and ask
	engine := fixture(t)

	// When: searching all comments for an ask-only term
	comments, total, err := engine.SearchAllComments(context.Background(), "git", 10, 0)
	require.NoError(t, err)

	// Then: the ask comment is found despite the top scope
	assert.Equal(t, uint64(1), total)
	require.Len(t, comments, 1)
	assert.Equal(t, uint64(301), comments[0].ID)
}

func TestSearchAllComments_ExcludesStories(t *testing.T) {
	// Given: "distributed" appears in a story title and a comment body
	engine := fixture(t)

	// When: searching all comments
	comments, total, err := engine.SearchAllComments(context.Background(), "distributed", 10, 0)
	require.NoError(t, err)

	// Then: only the comment matches
	assert.Equal(t, uint64(1), total)
	require.Len(t, comments, 1)
	assert.Equal(t, uint64(200), comments[0].ID)
}

func TestSearchAllComments_MalformedQuery(t *testing.T) {
	// Given: an unterminated phrase query
	engine := fixture(t)

	// When: searching
	_, _, err := engine.SearchAllComments(context.Background(), `body:"unterminated`, 10, 0)

	// Then: a query-syntax error surfaces
	require.Error(t, err)
	assert.Equal(t, nderrors.ErrCodeQuerySyntax, nderrors.GetCode(err))
}

func TestSearchStories_MatchesTitle(t *testing.T) {
	// Given: story titles in the top category
	engine := fixture(t)

	// When: searching by a title term
	stories, total, err := engine.SearchStories(context.Background(), "rust", 10, 0)
	require.NoError(t, err)

	// Then: the matching story is found
	assert.Equal(t, uint64(1), total)
	require.Len(t, stories, 1)
	assert.Equal(t, uint64(101), stories[0].ID)
}

func TestSearchStories_ToleratesSingleTypo(t *testing.T) {
	// Given: a story titled with "memory"
	engine := fixture(t)

	// When: searching with a one-character typo
	stories, total, err := engine.SearchStories(context.Background(), "memry", 10, 0)
	require.NoError(t, err)

	// Then: the fuzzy match still finds it
	assert.Equal(t, uint64(1), total)
	require.Len(t, stories, 1)
	assert.Equal(t, uint64(101), stories[0].ID)
}

func TestSearchStories_NumericInputIsIDLookup(t *testing.T) {
	// Given: an indexed story id
	engine := fixture(t)

	// When: searching with a number
	stories, total, err := engine.SearchStories(context.Background(), "100", 10, 0)
	require.NoError(t, err)

	// Then: the exact story comes back
	assert.Equal(t, uint64(1), total)
	require.Len(t, stories, 1)
	assert.Equal(t, uint64(100), stories[0].ID)
}

func TestSearchStories_UnknownIDReturnsEmpty(t *testing.T) {
	// Given: a number that matches no story
	engine := fixture(t)

	// When: searching with it
	stories, total, err := engine.SearchStories(context.Background(), "424242", 10, 0)

	// Then: an empty result, not an error
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, stories)
}

func TestSearchStories_DoesNotMatchCommentBodies(t *testing.T) {
	// Given: "garage" appears only in a comment body
	engine := fixture(t)

	// When: searching stories
	_, total, err := engine.SearchStories(context.Background(), "garage", 10, 0)
	require.NoError(t, err)

	// Then: nothing matches
	assert.Zero(t, total)
}

func TestStory_MissingRequiredFieldSurfacesError(t *testing.T) {
	// Given: a document indexed without its rank field
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	broken := storyDoc(500, 1, "broken story", "")
	delete(broken, store.FieldRank)
	publish(t, st, hn.CategoryTop, []map[string]any{broken})

	engine := New(st, hn.CategoryTop)

	// When: looking it up
	_, err = engine.Story(context.Background(), 500)

	// Then: the schema mismatch surfaces as a missing-field error
	require.Error(t, err)
	assert.Equal(t, nderrors.ErrCodeMissingField, nderrors.GetCode(err))
}
