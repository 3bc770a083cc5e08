// Package errors provides structured error handling for newsdex.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Index storage errors
//   - 3XX: Source fetch errors
//   - 4XX: Query errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates index directory and storage errors.
	CategoryStorage Category = "STORAGE"
	// CategorySource indicates item source (network) errors.
	CategorySource Category = "SOURCE"
	// CategoryQuery indicates query syntax and result errors.
	CategoryQuery Category = "QUERY"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Index storage errors (200-299)
	ErrCodeOpenIndex     = "ERR_201_OPEN_INDEX"
	ErrCodeOpenDirectory = "ERR_202_OPEN_DIRECTORY"
	ErrCodeIndexLocked   = "ERR_203_INDEX_LOCKED"
	ErrCodeIndexWrite    = "ERR_204_INDEX_WRITE"

	// Source errors (300-399)
	ErrCodeSourceFetch       = "ERR_301_SOURCE_FETCH"
	ErrCodeSourceUnavailable = "ERR_302_SOURCE_UNAVAILABLE"

	// Query errors (400-499)
	ErrCodeQuerySyntax  = "ERR_401_QUERY_SYNTAX"
	ErrCodeMissingField = "ERR_402_MISSING_FIELD"
	ErrCodeNotFound     = "ERR_403_NOT_FOUND"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeRebuildActive = "ERR_502_REBUILD_ACTIVE"
)

// categoryFromCode extracts the category from an error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategorySource
	case '4':
		return CategoryQuery
	default:
		return CategoryInternal
	}
}

// isRetryableCode reports whether operations failing with this code may
// be retried. Only source fetches are transient; an unavailable source
// has already exhausted its failure budget.
func isRetryableCode(code string) bool {
	return categoryFromCode(code) == CategorySource && code != ErrCodeSourceUnavailable
}
