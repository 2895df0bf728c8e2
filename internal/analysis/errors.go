package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a parse-stage failure. These are the only fatal
// outcomes of parsing one upload; row-level issues skip the row and
// continue.
type ErrorKind string

const (
	// KindMalformedInput means the text had fewer than 2 lines (no data rows).
	KindMalformedInput ErrorKind = "malformed_input"
	// KindMissingColumns means a required semantic field could not be
	// resolved against the header row.
	KindMissingColumns ErrorKind = "missing_columns"
	// KindEmptyResult means zero valid rows survived row-level validation.
	KindEmptyResult ErrorKind = "empty_result"
)

// ParseError is the error type for all fatal parse-stage failures. It always
// carries the available headers so the rejection is diagnosable by the user.
type ParseError struct {
	Kind          ErrorKind
	Message       string
	MissingFields []string
	Headers       []string
	// Resolution records the header index resolved for each candidate field
	// (-1 when unresolved). Populated for missing-column errors.
	Resolution map[string]int
}

func (e *ParseError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("%s: %s (missing: %s; headers: %s)",
			e.Kind, e.Message,
			strings.Join(e.MissingFields, ", "),
			strings.Join(e.Headers, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewMalformedInput reports input with too few lines to contain data.
func NewMalformedInput(message string) *ParseError {
	return &ParseError{Kind: KindMalformedInput, Message: message}
}

// NewMissingColumns reports unresolvable required fields together with the
// full header list and the per-field resolution outcome.
func NewMissingColumns(missing []string, headers []string, resolution map[string]int) *ParseError {
	return &ParseError{
		Kind:          KindMissingColumns,
		Message:       "required columns could not be resolved",
		MissingFields: missing,
		Headers:       headers,
		Resolution:    resolution,
	}
}

// NewEmptyResult reports that no valid rows survived parsing.
func NewEmptyResult(message string, headers []string) *ParseError {
	return &ParseError{Kind: KindEmptyResult, Message: message, Headers: headers}
}

// KindOf returns the parse error kind, or "" when err is not a ParseError.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// AsParseError unwraps err into a ParseError, or nil.
func AsParseError(err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}
