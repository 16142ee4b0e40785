package rowset

import "strings"

// Canonical field names for product import rows
const (
	FieldCategory = "category"
	FieldName     = "name"
	FieldPrice    = "price"
	FieldCalories = "calories"
	FieldCookTime = "cook_time"
	FieldImageURL = "image_url"
)

// HeaderMapping translates spreadsheet headers, as they appear in the
// file, to canonical field names. Tenants upload localized templates,
// so the mapping travels with the import request.
type HeaderMapping map[string]string

// DefaultHeaderMapping maps the English template headers
func DefaultHeaderMapping() HeaderMapping {
	return HeaderMapping{
		"Category":     FieldCategory,
		"Product Name": FieldName,
		"Price":        FieldPrice,
		"Calories":     FieldCalories,
		"Cook Time":    FieldCookTime,
		"Image URL":    FieldImageURL,
	}
}

// MapHeaders resolves the file's header row against the mapping. It
// returns the canonical field per column index and the list of headers
// the mapping does not know. Matching is case-insensitive on trimmed
// headers; empty header cells are ignored.
func (m HeaderMapping) MapHeaders(headers []string) (map[int]string, []string) {
	normalized := make(map[string]string, len(m))
	for header, field := range m {
		normalized[normalizeHeader(header)] = field
	}

	fields := make(map[int]string, len(headers))
	var unknown []string
	for i, header := range headers {
		trimmed := strings.TrimSpace(header)
		if trimmed == "" {
			continue
		}
		field, ok := normalized[normalizeHeader(trimmed)]
		if !ok {
			unknown = append(unknown, trimmed)
			continue
		}
		fields[i] = field
	}
	return fields, unknown
}

// BuildRows converts raw header+cell records into canonical rows. Line
// numbers are 1-based file lines; the header is line 1. Fully empty
// records are dropped.
func (m HeaderMapping) BuildRows(headers []string, records [][]string) ([]Row, []string) {
	fields, unknown := m.MapHeaders(headers)
	if len(unknown) > 0 {
		return nil, unknown
	}

	var rows []Row
	for i, record := range records {
		row := Row{Line: i + 2, Data: make(map[string]string, len(fields))}
		for col, field := range fields {
			if col < len(record) {
				row.Data[field] = strings.TrimSpace(record[col])
			} else {
				row.Data[field] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
