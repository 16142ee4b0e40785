package rowset

import (
	"fmt"
	"strings"

	syncdomain "github.com/menucloud/backend/internal/domain/sync"
)

// UnknownHeadersError rejects an import whose header row contains
// columns the mapping does not know. The whole file is refused so a
// mistyped template cannot silently drop columns.
type UnknownHeadersError struct {
	Headers []string
}

// Error implements the error interface
func (e *UnknownHeadersError) Error() string {
	return fmt.Sprintf("unknown column headers: %v", e.Headers)
}

// ErrorCollection accumulates record errors up to a maximum. The cap
// keeps a pathological file from producing an unbounded report; the
// total count still reflects every failure seen.
type ErrorCollection struct {
	errors     []syncdomain.RecordError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a collection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]syncdomain.RecordError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add records an error, dropping it if the cap is reached
func (ec *ErrorCollection) Add(ref, code, reason string) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, syncdomain.RecordError{Ref: ref, Code: code, Reason: reason})
	}
}

// AddRow records an error against a 1-based file line
func (ec *ErrorCollection) AddRow(line int, code, reason string) {
	ec.Add(fmt.Sprintf("row %d", line), code, reason)
}

// Errors returns the collected errors in encounter order
func (ec *ErrorCollection) Errors() []syncdomain.RecordError {
	return ec.errors
}

// Count returns the number of collected errors (up to the cap)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns every failure seen, including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if any error was recorded
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if errors were dropped at the cap
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String renders the collection for logs
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s)", ec.totalCount)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.maxErrors)
	}
	sb.WriteString(":\n")
	for _, err := range ec.errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}
