package store

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	nderrors "github.com/newsdex/newsdex/internal/errors"
)

// QueryParser builds queries bound to the title and body text fields.
// Bare terms match either field (they resolve against the _all composite,
// which only title and body feed); `field:value` and quoted phrases
// follow bleve query string syntax.
type QueryParser struct{}

// QueryParser returns a parser for this store's schema.
func (s *IndexStore) QueryParser() *QueryParser {
	return &QueryParser{}
}

// Parse validates free-text query syntax and returns the parsed query.
// Malformed syntax surfaces as a query-syntax error before any search runs.
func (p *QueryParser) Parse(text string) (query.Query, error) {
	q := bleve.NewQueryStringQuery(text)
	parsed, err := q.Parse()
	if err != nil {
		return nil, nderrors.QuerySyntaxError(fmt.Sprintf("parse query %q", text), err)
	}
	return parsed, nil
}

// TypeIn builds a set-membership filter on the type field.
func (p *QueryParser) TypeIn(types ...string) query.Query {
	qs := make([]query.Query, 0, len(types))
	for _, t := range types {
		tq := bleve.NewTermQuery(t)
		tq.SetField(FieldType)
		qs = append(qs, tq)
	}
	return bleve.NewDisjunctionQuery(qs...)
}

// NumericEquals builds an exact match on a numeric field.
func NumericEquals(field string, v uint64) query.Query {
	val := float64(v)
	inclusive := true
	q := bleve.NewNumericRangeInclusiveQuery(&val, &val, &inclusive, &inclusive)
	q.SetField(field)
	return q
}

// TermEquals builds an exact match on a keyword field.
func TermEquals(field, value string) query.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}
