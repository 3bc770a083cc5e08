package search

import (
	nderrors "github.com/newsdex/newsdex/internal/errors"
	"github.com/newsdex/newsdex/internal/store"
)

// Typed extraction from a matched document's stored fields. Stored
// numerics come back from bleve as float64; multi-valued fields come
// back as []interface{}. A required field that is absent or has the
// wrong shape is a schema/data mismatch and surfaces as a missing-field
// error instead of a panic or a silently dropped result.

func storyFromFields(fields map[string]interface{}) (Story, error) {
	id, err := u64Field(fields, store.FieldID)
	if err != nil {
		return Story{}, err
	}
	title, err := strField(fields, store.FieldTitle)
	if err != nil {
		return Story{}, err
	}
	by, err := strField(fields, store.FieldBy)
	if err != nil {
		return Story{}, err
	}
	typ, err := strField(fields, store.FieldType)
	if err != nil {
		return Story{}, err
	}
	t, err := u64Field(fields, store.FieldTime)
	if err != nil {
		return Story{}, err
	}
	rank, err := u64Field(fields, store.FieldRank)
	if err != nil {
		return Story{}, err
	}

	return Story{
		ID:          id,
		Title:       title,
		Body:        optStrField(fields, store.FieldBody),
		URL:         optStrField(fields, store.FieldURL),
		By:          by,
		Type:        typ,
		Descendants: optU64Field(fields, store.FieldDescendants),
		Time:        t,
		Score:       optU64Field(fields, store.FieldScore),
		Rank:        rank,
	}, nil
}

func commentFromFields(fields map[string]interface{}) (Comment, error) {
	id, err := u64Field(fields, store.FieldID)
	if err != nil {
		return Comment{}, err
	}
	body, err := strField(fields, store.FieldBody)
	if err != nil {
		return Comment{}, err
	}
	by, err := strField(fields, store.FieldBy)
	if err != nil {
		return Comment{}, err
	}
	t, err := u64Field(fields, store.FieldTime)
	if err != nil {
		return Comment{}, err
	}
	storyID, err := u64Field(fields, store.FieldStoryID)
	if err != nil {
		return Comment{}, err
	}
	parentID, err := u64Field(fields, store.FieldParentID)
	if err != nil {
		return Comment{}, err
	}
	rank, err := u64Field(fields, store.FieldRank)
	if err != nil {
		return Comment{}, err
	}

	return Comment{
		ID:       id,
		Body:     body,
		By:       by,
		Time:     t,
		Kids:     u64SliceField(fields, store.FieldKids),
		StoryID:  storyID,
		ParentID: parentID,
		Rank:     rank,
	}, nil
}

func asU64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	default:
		return 0, false
	}
}

func u64Field(fields map[string]interface{}, name string) (uint64, error) {
	v, ok := fields[name]
	if !ok {
		return 0, nderrors.MissingFieldError(name)
	}
	n, ok := asU64(v)
	if !ok {
		return 0, nderrors.MissingFieldError(name)
	}
	return n, nil
}

func optU64Field(fields map[string]interface{}, name string) uint64 {
	n, _ := asU64(fields[name])
	return n
}

func strField(fields map[string]interface{}, name string) (string, error) {
	s, ok := fields[name].(string)
	if !ok {
		return "", nderrors.MissingFieldError(name)
	}
	return s, nil
}

func optStrField(fields map[string]interface{}, name string) *string {
	s, ok := fields[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func u64SliceField(fields map[string]interface{}, name string) []uint64 {
	switch v := fields[name].(type) {
	case []interface{}:
		out := make([]uint64, 0, len(v))
		for _, e := range v {
			if n, ok := asU64(e); ok {
				out = append(out, n)
			}
		}
		return out
	default:
		if n, ok := asU64(v); ok {
			return []uint64{n}
		}
		return nil
	}
}
