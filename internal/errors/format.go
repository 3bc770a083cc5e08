package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// suggestions maps error codes to a user-facing hint. Only codes where
// the user can actually do something get one.
var suggestions = map[string]string{
	ErrCodeIndexLocked:       "another newsdex process holds the index; close it or point --index-dir elsewhere",
	ErrCodeSourceFetch:       "check network connectivity and retry",
	ErrCodeSourceUnavailable: "the Hacker News API keeps failing; wait a moment and retry",
	ErrCodeQuerySyntax:       "check the query syntax; quote phrases and balance parentheses",
	ErrCodeConfigInvalid:     "fix the reported field in the config file",
	ErrCodeRebuildActive:     "wait for the running rebuild to finish",
}

// FormatForCLI formats an error for terminal display: the message, a
// hint when one exists, and the code for reference.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}

	e, ok := err.(*Error)
	if !ok {
		return fmt.Sprintf("Error: %s\n", err.Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", e.Message)
	if hint, ok := suggestions[e.Code]; ok {
		fmt.Fprintf(&sb, "  Hint: %s\n", hint)
	}
	fmt.Fprintf(&sb, "  Code: %s\n", e.Code)
	return sb.String()
}

// jsonError is the JSON representation of an error.
type jsonError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Category  string            `json:"category"`
	Details   map[string]string `json:"details,omitempty"`
	Cause     string            `json:"cause,omitempty"`
	Retryable bool              `json:"retryable"`
}

// FormatJSON returns a JSON representation of the error, suitable for
// machine consumption.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	e, ok := err.(*Error)
	if !ok {
		e = New(ErrCodeInternal, err.Error(), nil)
	}

	je := jsonError{
		Code:      e.Code,
		Message:   e.Message,
		Category:  string(e.Category),
		Details:   e.Details,
		Retryable: e.Retryable,
	}
	if e.Cause != nil {
		je.Cause = e.Cause.Error()
	}
	return json.Marshal(je)
}

// FormatForLog flattens an error into slog attribute pairs.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return map[string]any{"error": err.Error()}
	}

	result := map[string]any{
		"error_code": e.Code,
		"message":    e.Message,
		"category":   string(e.Category),
		"retryable":  e.Retryable,
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	for k, v := range e.Details {
		result["detail_"+k] = v
	}
	return result
}
