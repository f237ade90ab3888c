// Package parser turns raw source bytes into tables and word columns.
package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

// ErrNoData indicates that no rows remain once blank lines are dropped.
var ErrNoData = errors.New("no data found in CSV")

const byteOrderMark = "\ufeff"

// Clean strips a single leading byte-order mark and rewrites CRLF and bare
// CR line endings as LF.
func Clean(raw string) string {
	raw = strings.TrimPrefix(raw, byteOrderMark)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.ReplaceAll(raw, "\r", "\n")
}

// ReadCSV tokenizes comma separated text with standard double-quote rules.
// Rows whose cells are all blank are skipped, so runs of empty lines never
// produce rows.
func ReadCSV(raw string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(Clean(raw)))
	r.Comma = ','
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlankRow(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// ParseCSV reads raw CSV text and decides whether its first row is a header.
func ParseCSV(raw string, params TableParams) (*models.Table, error) {
	rows, err := ReadCSV(raw)
	if err != nil {
		return nil, err
	}
	return BuildTable(rows, params), nil
}

// Parse dispatches on content: xlsx workbooks go through ParseXLSX,
// everything else is treated as CSV text.
func Parse(raw []byte, params TableParams) (*models.Table, error) {
	if IsXLSX(raw) {
		return ParseXLSX(raw, params)
	}
	return ParseCSV(string(raw), params)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
