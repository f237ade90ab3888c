// Package models defines data structures for word tumbler sources and sessions.
package models

// Table is a parsed source: ordered rows of string cells.
// Rows may be shorter than the header; missing cells read as empty.
type Table struct {
	// Rows contains every non-blank row in source order.
	Rows [][]string `json:"rows"`
	// HeaderConsumed reports whether Rows[0] is the header row.
	HeaderConsumed bool `json:"header_consumed"`
}

// Header returns the header row, or nil when no row was consumed as header.
func (t *Table) Header() []string {
	if !t.HeaderConsumed || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// DataRows returns the rows after the header (all rows in headerless mode).
func (t *Table) DataRows() [][]string {
	if t.HeaderConsumed && len(t.Rows) > 0 {
		return t.Rows[1:]
	}
	return t.Rows
}

// Cell returns the cell at row, col or "" when absent.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
