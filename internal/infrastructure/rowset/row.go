// Package rowset holds tabular import data after decoding and before
// validation: rows keyed by canonical field name, a header mapping that
// translates localized spreadsheet headers, and a capped error
// collection for per-record failures.
package rowset

import "strings"

// Row is one data row of an import file. Data is keyed by canonical
// field name once headers are mapped.
type Row struct {
	Line int
	Data map[string]string
}

// Get returns the trimmed value for a canonical field
func (r Row) Get(field string) string {
	return strings.TrimSpace(r.Data[field])
}

// GetOrDefault returns the field value, or the default when empty
func (r Row) GetOrDefault(field, defaultVal string) string {
	if v := r.Get(field); v != "" {
		return v
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r Row) IsEmpty() bool {
	for _, v := range r.Data {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
