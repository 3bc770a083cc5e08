// Package store owns the physical index: the shared document schema,
// per-category bleve indexes with snapshot readers, and the exclusive
// write handle used by rebuilds.
package store

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Schema field names, shared by every document regardless of item kind.
const (
	FieldID          = "id"
	FieldParentID    = "parent_id"
	FieldStoryID     = "story_id"
	FieldRank        = "rank"
	FieldTitle       = "title"
	FieldBody        = "body"
	FieldURL         = "url"
	FieldBy          = "by"
	FieldType        = "type"
	FieldDescendants = "descendants"
	FieldCategory    = "category"
	FieldTime        = "time"
	FieldScore       = "score"
	FieldKids        = "kids"
)

// Item type values recorded in FieldType.
const (
	TypeStory   = "story"
	TypeComment = "comment"
	TypeJob     = "job"
	TypePoll    = "poll"
)

// buildIndexMapping declares the fixed document schema.
//
// Numeric fields keep doc values so queries can sort on rank and time.
// Title and body use the standard analyzer: fuzzy queries compare raw
// edit distance against indexed terms, so stemming would break typo
// tolerance. Only title and body feed the _all composite, which is what
// binds the query parser to those two fields.
func buildIndexMapping() mapping.IndexMapping {
	numeric := func(stored bool) *mapping.FieldMapping {
		fm := bleve.NewNumericFieldMapping()
		fm.Store = stored
		fm.Index = true
		fm.IncludeInAll = false
		return fm
	}

	text := func(analyzer string, includeInAll bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = true
		fm.Index = true
		fm.IncludeInAll = includeInAll
		fm.IncludeTermVectors = false
		return fm
	}

	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt(FieldID, numeric(true))
	doc.AddFieldMappingsAt(FieldParentID, numeric(true))
	doc.AddFieldMappingsAt(FieldStoryID, numeric(true))
	doc.AddFieldMappingsAt(FieldRank, numeric(true))
	doc.AddFieldMappingsAt(FieldTitle, text(standard.Name, true))
	doc.AddFieldMappingsAt(FieldBody, text(standard.Name, true))
	doc.AddFieldMappingsAt(FieldURL, text(keyword.Name, false))
	doc.AddFieldMappingsAt(FieldBy, text(keyword.Name, false))
	doc.AddFieldMappingsAt(FieldType, text(keyword.Name, false))
	doc.AddFieldMappingsAt(FieldDescendants, numeric(true))
	doc.AddFieldMappingsAt(FieldTime, numeric(true))
	doc.AddFieldMappingsAt(FieldScore, numeric(true))
	doc.AddFieldMappingsAt(FieldKids, numeric(true))

	// Category is a filter-only field, never extracted.
	category := bleve.NewTextFieldMapping()
	category.Analyzer = keyword.Name
	category.Store = false
	category.Index = true
	category.IncludeInAll = false
	doc.AddFieldMappingsAt(FieldCategory, category)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	im.DefaultAnalyzer = standard.Name
	return im
}
