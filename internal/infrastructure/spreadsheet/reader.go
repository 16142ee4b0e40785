// Package spreadsheet decodes uploaded XLSX workbooks into import rows.
package spreadsheet

import (
	"errors"
	"fmt"
	"io"

	"github.com/menucloud/backend/internal/infrastructure/rowset"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned when the workbook has no sheets or the
// first sheet has no header row.
var ErrEmptyWorkbook = errors.New("workbook contains no data")

// ReadWorkbook decodes the first sheet of an XLSX workbook. The first
// row is the header row and is resolved through the mapping; remaining
// rows become canonical import rows.
func ReadWorkbook(r io.Reader, mapping rowset.HeaderMapping) ([]rowset.Row, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, unknown := mapping.BuildRows(records[0], records[1:])
	if len(unknown) > 0 {
		return nil, &rowset.UnknownHeadersError{Headers: unknown}
	}
	return rows, nil
}
