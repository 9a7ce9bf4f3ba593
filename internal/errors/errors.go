// Package errors defines the structured error types shared by the UCR MCP server.
// Validation errors are resolved locally before any backend call; backend errors
// carry the backend name and a transient/permanent classification.
package errors

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category classifies where an error originated.
type Category string

const (
	// ValidationError indicates bad input caught before any backend call.
	ValidationError Category = "VALIDATION_ERROR"
	// BackendError indicates a failure from one of the upstream services.
	BackendError Category = "BACKEND_ERROR"
	// InternalError indicates a bug or unexpected condition in this server.
	InternalError Category = "INTERNAL_ERROR"
)

// Code identifies the specific error kind.
type Code string

const (
	// Validation codes
	CodeInvalidOffense      Code = "INVALID_OFFENSE"
	CodeUnsupportedRegion   Code = "UNSUPPORTED_REGION"
	CodeMalformedRegion     Code = "MALFORMED_REGION"
	CodeOutOfRangeParameter Code = "OUT_OF_RANGE_PARAMETER"
	CodeInvalidCardinality  Code = "INVALID_CARDINALITY"
	CodeInvalidFormat       Code = "INVALID_FORMAT"

	// Backend codes
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"
	CodeBadPayload         Code = "BAD_PAYLOAD"

	// Internal codes
	CodeInternal Code = "INTERNAL"
)

// Error is a structured error with a machine-readable code, a human-readable
// message, and an actionable suggestion so the calling agent can self-correct
// without a second round trip.
type Error struct {
	Code       Code           `json:"code"`
	Category   Category       `json:"category"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`

	// Backend and Transient are populated only for BACKEND_ERROR.
	Backend   string `json:"backend,omitempty"`
	Transient bool   `json:"transient,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Category, e.Message)
}

// ToJSON renders the error as a JSON string for detailed output.
func (e *Error) ToJSON() string {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"code":%q,"category":%q,"message":%q}`, e.Code, e.Category, e.Message)
	}
	return string(b)
}

// New creates a new structured error.
func New(code Code, category Category, message string) *Error {
	return &Error{
		Code:     code,
		Category: category,
		Message:  message,
	}
}

// WithDetails attaches structured details to the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithSuggestion attaches a recovery suggestion to the error.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// IsValidation reports whether the error was caught before any backend call.
func (e *Error) IsValidation() bool {
	return e.Category == ValidationError
}

// NewInvalidOffense creates an error for an unrecognized offense string.
// The nearest canonical match and the full valid set ride along in Details.
func NewInvalidOffense(input, nearest string, valid []string) *Error {
	e := New(CodeInvalidOffense, ValidationError,
		fmt.Sprintf("Unknown offense type: %q", input)).
		WithDetails(map[string]any{"input": input, "valid_offenses": valid})
	if nearest != "" {
		e.Details["nearest_match"] = nearest
		return e.WithSuggestion(fmt.Sprintf("Did you mean %q? Valid offenses: %s.", nearest, strings.Join(valid, ", ")))
	}
	return e.WithSuggestion(fmt.Sprintf("Valid offenses: %s. Use hyphens, not underscores (e.g. 'violent-crime').", strings.Join(valid, ", ")))
}

// NewUnsupportedRegion creates an error for a syntactically valid state code
// outside the supported set. Distinct from MALFORMED_REGION by contract.
func NewUnsupportedRegion(input string, supported []string) *Error {
	return New(CodeUnsupportedRegion, ValidationError,
		fmt.Sprintf("State %q is not supported for state-level data", input)).
		WithDetails(map[string]any{"input": input, "supported_states": supported}).
		WithSuggestion(fmt.Sprintf("Supported states: %s. National-level data still covers %s in aggregate; omit the state parameter to use it.",
			strings.Join(supported, ", "), input))
}

// NewMalformedRegion creates an error for input that is not a 2-letter state code.
func NewMalformedRegion(input string, supported []string) *Error {
	return New(CodeMalformedRegion, ValidationError,
		fmt.Sprintf("Malformed state code: %q", input)).
		WithDetails(map[string]any{"input": input, "supported_states": supported}).
		WithSuggestion(fmt.Sprintf("Use a 2-letter state code (e.g. 'CA'). Supported states: %s.", strings.Join(supported, ", ")))
}

// NewOutOfRange creates an error for a parameter outside its bounds, carrying
// the violated bound and the nearest valid value. The value is never clamped
// silently; the caller must resubmit.
func NewOutOfRange(param string, got, min, max, nearest int) *Error {
	var bound string
	if got < min {
		bound = fmt.Sprintf("minimum is %d", min)
	} else {
		bound = fmt.Sprintf("maximum is %d", max)
	}
	return New(CodeOutOfRangeParameter, ValidationError,
		fmt.Sprintf("%s must be between %d and %d, got %d (%s)", param, min, max, got, bound)).
		WithDetails(map[string]any{"parameter": param, "got": got, "min": min, "max": max, "nearest_valid": nearest}).
		WithSuggestion(fmt.Sprintf("Retry with %s=%d.", param, nearest))
}

// NewYearRange creates an error for an invalid from_year/to_year combination.
func NewYearRange(message string, details map[string]any) *Error {
	return New(CodeOutOfRangeParameter, ValidationError, message).
		WithDetails(details).
		WithSuggestion("Adjust the year range and retry.")
}

// NewInvalidCardinality creates an error for a comparison offense list outside
// [2,5] or containing duplicates.
func NewInvalidCardinality(message string) *Error {
	return New(CodeInvalidCardinality, ValidationError, message).
		WithSuggestion("Provide between 2 and 5 distinct offense types.")
}

// NewInvalidFormat creates an error for an unrecognized output format.
func NewInvalidFormat(got string) *Error {
	return New(CodeInvalidFormat, ValidationError,
		fmt.Sprintf("Invalid format %q", got)).
		WithSuggestion("Use 'summary' for prose output or 'detailed' for the full structured payload.")
}

// NewBackendUnavailable creates an error for a transport or HTTP failure from
// an upstream service. transient marks timeout/5xx-style failures that may
// succeed on a later attempt; the core itself never retries.
func NewBackendUnavailable(backend, message string, transient bool) *Error {
	e := New(CodeBackendUnavailable, BackendError, message)
	e.Backend = backend
	e.Transient = transient
	if transient {
		return e.WithSuggestion(fmt.Sprintf("The %s is not responding. Try again in a few minutes.", backend))
	}
	return e.WithSuggestion(fmt.Sprintf("The %s rejected the request. Check the parameters before retrying.", backend))
}

// NewBadPayload creates an error for a backend response that violates the
// expected shape or invariants (e.g. unordered forecast periods).
func NewBadPayload(backend, message string) *Error {
	e := New(CodeBadPayload, BackendError, message)
	e.Backend = backend
	return e.WithSuggestion(fmt.Sprintf("The %s returned malformed data. Report this if it persists.", backend))
}
