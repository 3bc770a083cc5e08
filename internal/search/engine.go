package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	nderrors "github.com/newsdex/newsdex/internal/errors"
	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/store"
)

// Engine answers queries against the index store. Category-scoped
// operations run against the engine's active category; global operations
// span every category. Engines are cheap views: WithCategory returns a
// re-scoped copy without touching the store.
//
// Every paginated result carries the exact total match count, never an
// estimate.
type Engine struct {
	store  *store.IndexStore
	parser *store.QueryParser
	cat    hn.Category
	log    *slog.Logger
}

// New creates an engine scoped to the given category.
func New(st *store.IndexStore, cat hn.Category) *Engine {
	return &Engine{
		store:  st,
		parser: st.QueryParser(),
		cat:    cat,
		log:    slog.Default(),
	}
}

// WithCategory returns a copy of the engine scoped to another category.
func (e *Engine) WithCategory(cat hn.Category) *Engine {
	scoped := *e
	scoped.cat = cat
	return &scoped
}

// Category returns the engine's active category.
func (e *Engine) Category() hn.Category {
	return e.cat
}

// TopStories returns the category's front page: stories, jobs and polls
// ordered by listing rank, plus the exact count of such documents.
func (e *Engine) TopStories(ctx context.Context, limit, offset int) ([]Story, uint64, error) {
	q := e.parser.TypeIn(store.TypeStory, store.TypeJob, store.TypePoll)
	return e.stories(ctx, e.store.Searcher(e.cat), q, limit, offset, []string{store.FieldRank})
}

// Story looks up a single story, job or poll by item id across every
// category. Returns a not-found error when no document matches.
func (e *Engine) Story(ctx context.Context, id uint64) (*Story, error) {
	req := bleve.NewSearchRequestOptions(store.NumericEquals(store.FieldID, id), 1, 0, false)
	req.Fields = []string{"*"}

	res, err := e.store.GlobalSearcher().SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("story %d: %w", id, err)
	}
	if len(res.Hits) == 0 {
		return nil, nderrors.NotFoundError(fmt.Sprintf("story %d does not exist", id))
	}

	story, err := storyFromFields(res.Hits[0].Fields)
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// Comments returns the direct children of a story or comment in sibling
// rank order, plus the exact child count.
func (e *Engine) Comments(ctx context.Context, parentID uint64, limit, offset int) ([]Comment, uint64, error) {
	q := store.NumericEquals(store.FieldParentID, parentID)
	return e.comments(ctx, e.store.Searcher(e.cat), q, limit, offset, []string{store.FieldRank})
}

// SearchComments searches comment bodies within a single story's tree.
// The match tolerates one edit of typo and bare prefixes; results are
// relevance ordered.
func (e *Engine) SearchComments(ctx context.Context, text string, storyID uint64, limit, offset int) ([]Comment, uint64, error) {
	q := bleve.NewConjunctionQuery(
		store.NumericEquals(store.FieldStoryID, storyID),
		fuzzyOrPrefix(store.FieldBody, text),
	)
	return e.comments(ctx, e.store.Searcher(e.cat), q, limit, offset, nil)
}

// SearchAllComments searches every comment across all categories with a
// parsed free-text query over title and body; relevance ordered.
func (e *Engine) SearchAllComments(ctx context.Context, text string, limit, offset int) ([]Comment, uint64, error) {
	parsed, err := e.parser.Parse(text)
	if err != nil {
		return nil, 0, err
	}

	q := bleve.NewConjunctionQuery(
		store.TermEquals(store.FieldType, store.TypeComment),
		parsed,
	)
	return e.comments(ctx, e.store.GlobalSearcher(), q, limit, offset, nil)
}

// SearchStories searches the category's stories by title. Input that
// parses as an integer is treated as an exact id lookup instead.
func (e *Engine) SearchStories(ctx context.Context, text string, limit, offset int) ([]Story, uint64, error) {
	if id, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64); err == nil {
		story, err := e.Story(ctx, id)
		if err != nil {
			if nderrors.GetCode(err) == nderrors.ErrCodeNotFound {
				return []Story{}, 0, nil
			}
			return nil, 0, err
		}
		return []Story{*story}, 1, nil
	}

	q := bleve.NewConjunctionQuery(
		e.parser.TypeIn(store.TypeStory, store.TypeJob, store.TypePoll),
		fuzzyOrPrefix(store.FieldTitle, text),
	)
	return e.stories(ctx, e.store.Searcher(e.cat), q, limit, offset, []string{store.FieldRank})
}

// stories runs a query and extracts Story records plus the exact count.
func (e *Engine) stories(ctx context.Context, idx bleve.Index, q query.Query, limit, offset int, sortBy []string) ([]Story, uint64, error) {
	res, err := e.search(ctx, idx, q, limit, offset, sortBy)
	if err != nil {
		return nil, 0, err
	}

	stories := make([]Story, 0, len(res.Hits))
	for _, hit := range res.Hits {
		story, err := storyFromFields(hit.Fields)
		if err != nil {
			return nil, 0, err
		}
		stories = append(stories, story)
	}
	return stories, res.Total, nil
}

// comments runs a query and extracts Comment records plus the exact count.
func (e *Engine) comments(ctx context.Context, idx bleve.Index, q query.Query, limit, offset int, sortBy []string) ([]Comment, uint64, error) {
	res, err := e.search(ctx, idx, q, limit, offset, sortBy)
	if err != nil {
		return nil, 0, err
	}

	comments := make([]Comment, 0, len(res.Hits))
	for _, hit := range res.Hits {
		comment, err := commentFromFields(hit.Fields)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, comment)
	}
	return comments, res.Total, nil
}

func (e *Engine) search(ctx context.Context, idx bleve.Index, q query.Query, limit, offset int, sortBy []string) (*bleve.SearchResult, error) {
	req := bleve.NewSearchRequestOptions(q, limit, offset, false)
	req.Fields = []string{"*"}
	if len(sortBy) > 0 {
		req.SortBy(sortBy)
	}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// fuzzyOrPrefix tolerates a single-character typo or a bare prefix of an
// indexed term. Terms are lowercased to line up with the analyzed index.
func fuzzyOrPrefix(field, text string) query.Query {
	term := strings.ToLower(strings.TrimSpace(text))

	fuzzy := bleve.NewFuzzyQuery(term)
	fuzzy.SetField(field)
	fuzzy.SetFuzziness(1)

	prefix := bleve.NewPrefixQuery(term)
	prefix.SetField(field)

	return bleve.NewDisjunctionQuery(fuzzy, prefix)
}
