package ingest

import (
	"context"
	"log/slog"

	"github.com/newsdex/newsdex/internal/hn"
	"github.com/newsdex/newsdex/internal/store"
)

// docRef is one staged document flowing from the walker to the writer.
type docRef struct {
	id  uint64
	doc map[string]any
	// topLevel marks the listing item itself; the writer reports one
	// ItemCompleted per such document.
	topLevel bool
}

// Pipeline transforms a category's item trees into index documents.
//
// Traversal is strictly depth-first and sequential: one outstanding
// fetch at a time, children visited before the next sibling, so sibling
// ranks are assigned in visitation order. Dead and deleted items are
// skipped whole: no document, no recursion into their children. Any
// fetch failure aborts the pass; the orchestrator never commits a
// partial category.
type Pipeline struct {
	src hn.Source
	log *slog.Logger
}

// NewPipeline creates a pipeline reading from src.
func NewPipeline(src hn.Source) *Pipeline {
	return &Pipeline{src: src, log: slog.Default()}
}

// Collect fetches the category listing, reports its size through
// started, then walks each top-level item and its comment tree, sending
// one document per live item to out. The caller owns closing out.
func (p *Pipeline) Collect(ctx context.Context, category hn.Category, limit int, out chan<- docRef, started func(total int)) error {
	ids, err := p.src.TopIDs(ctx, category, limit)
	if err != nil {
		return err
	}
	started(len(ids))

	p.log.Info("collect_started",
		slog.String("category", string(category)),
		slog.Int("top_level_items", len(ids)))

	var rank uint64
	for _, id := range ids {
		item, err := p.src.Item(ctx, id)
		if err != nil {
			return err
		}
		if item.Absent() {
			continue
		}
		rank++

		if err := p.walkComments(ctx, item, out); err != nil {
			return err
		}

		// The story document goes last so the writer can treat it as
		// the subtree-complete marker.
		if err := send(ctx, out, docRef{
			id:       item.ID,
			doc:      buildDoc(item, rank, 0, category),
			topLevel: true,
		}); err != nil {
			return err
		}
	}

	return nil
}

// walkComments visits story's comment tree with an explicit frame stack:
// comment threads nest arbitrarily deep and language recursion would be
// a stack hazard. Each frame tracks its own sibling rank counter.
func (p *Pipeline) walkComments(ctx context.Context, story *hn.Item, out chan<- docRef) error {
	type frame struct {
		ids  []uint64
		next int
		rank uint64
	}

	stack := []frame{{ids: story.Kids}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.ids) {
			stack = stack[:len(stack)-1]
			continue
		}

		id := top.ids[top.next]
		top.next++

		item, err := p.src.Item(ctx, id)
		if err != nil {
			return err
		}
		if item.Absent() {
			continue
		}
		top.rank++

		if err := send(ctx, out, docRef{
			id:  item.ID,
			doc: buildDoc(item, top.rank, story.ID, ""),
		}); err != nil {
			return err
		}

		if len(item.Kids) > 0 {
			stack = append(stack, frame{ids: item.Kids})
		}
	}

	return nil
}

// buildDoc maps an item onto the schema. Absent text fields are omitted
// rather than stored empty; category and score are story-only; storyID
// is zero for top-level items and inherited by every comment beneath.
func buildDoc(item *hn.Item, rank uint64, storyID uint64, category hn.Category) map[string]any {
	doc := map[string]any{
		store.FieldID:   item.ID,
		store.FieldType: item.Type,
		store.FieldBy:   item.By,
		store.FieldTime: item.Time,
		store.FieldRank: rank,
	}
	if item.Parent != 0 {
		doc[store.FieldParentID] = item.Parent
	}
	if item.Title != "" {
		doc[store.FieldTitle] = item.Title
	}
	if item.Text != "" {
		doc[store.FieldBody] = item.Text
	}
	if item.URL != "" {
		doc[store.FieldURL] = item.URL
	}
	if storyID != 0 {
		doc[store.FieldStoryID] = storyID
	}
	if item.Type == store.TypeStory || item.Type == store.TypePoll {
		doc[store.FieldDescendants] = item.Descendants
	}
	if item.Type == store.TypeStory {
		doc[store.FieldCategory] = string(category)
		doc[store.FieldScore] = item.Score
	}
	if len(item.Kids) > 0 {
		doc[store.FieldKids] = item.Kids
	}
	return doc
}

func send(ctx context.Context, out chan<- docRef, ref docRef) error {
	select {
	case out <- ref:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
