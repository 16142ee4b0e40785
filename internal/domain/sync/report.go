// Package sync defines the reporting model for catalog reconciliation.
// A batch run against unreliable external data degrades gracefully:
// record-level failures are collected into the report and never abort
// the surrounding loop, so callers can always distinguish "phase didn't
// run" from "phase ran, some records failed".
package sync

import (
	"fmt"
)

// Record-level error codes
const (
	ErrCodeConfiguration = "ERR_SYNC_CONFIGURATION"
	ErrCodeConnection    = "ERR_SYNC_CONNECTION"
	ErrCodeValidation    = "ERR_SYNC_VALIDATION"
	ErrCodeReference     = "ERR_SYNC_REFERENCE"
	ErrCodeDuplicate     = "ERR_SYNC_DUPLICATE"
	ErrCodePersistence   = "ERR_SYNC_PERSISTENCE"
)

// RecordError describes a failure on a single external record or row
type RecordError struct {
	// Ref identifies the record: an ERP code or a row number
	Ref    string `json:"ref"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Error implements the error interface
func (e RecordError) Error() string {
	return fmt.Sprintf("record %s: %s", e.Ref, e.Reason)
}

// Report aggregates the outcome of one reconciliation phase
type Report struct {
	Phase   Phase         `json:"phase"`
	Created int           `json:"created_count"`
	Updated int           `json:"updated_count"`
	Skipped int           `json:"skipped_count"`
	Errors  []RecordError `json:"errors,omitempty"`
}

// NewReport creates an empty report for a phase
func NewReport(phase Phase) *Report {
	return &Report{Phase: phase}
}

// AddCreated counts a created record
func (r *Report) AddCreated() {
	r.Created++
}

// AddUpdated counts an updated record
func (r *Report) AddUpdated() {
	r.Updated++
}

// AddSkipped counts an unchanged or intentionally skipped record
func (r *Report) AddSkipped() {
	r.Skipped++
}

// AddError appends a record-level error, preserving encounter order
func (r *Report) AddError(ref, code, reason string) {
	r.Errors = append(r.Errors, RecordError{Ref: ref, Code: code, Reason: reason})
}

// HasErrors returns true if any record failed
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// Total returns the number of records the phase acted on
func (r *Report) Total() int {
	return r.Created + r.Updated + r.Skipped + len(r.Errors)
}
