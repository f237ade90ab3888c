package parser

import (
	"bytes"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
	"github.com/xuri/excelize/v2"
)

// zipSignature opens every xlsx workbook.
var zipSignature = []byte("PK\x03\x04")

// IsXLSX reports whether raw looks like an xlsx workbook.
func IsXLSX(raw []byte) bool {
	return bytes.HasPrefix(raw, zipSignature)
}

// ParseXLSX reads the first sheet of a workbook as a table.
func ParseXLSX(raw []byte, params TableParams) (*models.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, ErrNoData
	}

	rows, err := ExtractRows(f, sheetList[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return BuildTable(rows, params), nil
}

// ExtractRows returns the formatted cell text of a sheet, skipping rows
// whose cells are all blank. Line endings inside cells are normalized the
// same way as CSV input.
func ExtractRows(f *excelize.File, sheetName string) ([][]string, error) {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var result [][]string
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		cells := make([]string, len(row))
		for colIdx, cellValue := range row {
			cells[colIdx] = Clean(cellValue)
		}
		result = append(result, cells)
	}
	return result, nil
}
