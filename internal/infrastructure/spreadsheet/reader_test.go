package spreadsheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/menucloud/backend/internal/infrastructure/rowset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook renders rows into an in-memory XLSX file
func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestReadWorkbook(t *testing.T) {
	mapping := rowset.DefaultHeaderMapping()

	t.Run("decodes first sheet into canonical rows", func(t *testing.T) {
		wb := buildWorkbook(t, [][]any{
			{"Category", "Product Name", "Price"},
			{"Beverages", "Cola", "2.50"},
			{"Beverages", "Fanta", 2.25},
		})

		rows, err := ReadWorkbook(wb, mapping)
		require.NoError(t, err)

		require.Len(t, rows, 2)
		assert.Equal(t, 2, rows[0].Line)
		assert.Equal(t, "Cola", rows[0].Get(rowset.FieldName))
		assert.Equal(t, "2.25", rows[1].Get(rowset.FieldPrice))
	})

	t.Run("rejects workbook with unknown header", func(t *testing.T) {
		wb := buildWorkbook(t, [][]any{
			{"Category", "Product Name", "Barcode"},
			{"Beverages", "Cola", "869000"},
		})

		_, err := ReadWorkbook(wb, mapping)
		require.Error(t, err)

		var unknownErr *rowset.UnknownHeadersError
		require.True(t, errors.As(err, &unknownErr))
		assert.Equal(t, []string{"Barcode"}, unknownErr.Headers)
	})

	t.Run("empty workbook", func(t *testing.T) {
		wb := buildWorkbook(t, nil)

		_, err := ReadWorkbook(wb, mapping)
		assert.ErrorIs(t, err, ErrEmptyWorkbook)
	})

	t.Run("garbage input is not a workbook", func(t *testing.T) {
		_, err := ReadWorkbook(bytes.NewReader([]byte("not an xlsx")), mapping)
		assert.Error(t, err)
	})
}
