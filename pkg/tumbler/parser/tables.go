package parser

import (
	"strings"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

// TableParams holds parameters for header detection.
type TableParams struct {
	// DetectHeaderless treats a single-cell first row as data instead of
	// a header. When false the first row is always the header.
	DetectHeaderless bool
}

// DefaultTableParams returns default header detection parameters.
func DefaultTableParams() TableParams {
	return TableParams{
		DetectHeaderless: true,
	}
}

// BuildTable wraps non-empty rows in a Table, consuming the first row as
// header unless headerless detection applies.
func BuildTable(rows [][]string, params TableParams) *models.Table {
	headerless := params.DetectHeaderless && len(rows) > 0 && isHeaderlessRow(rows[0])
	return &models.Table{
		Rows:           rows,
		HeaderConsumed: !headerless && len(rows) > 0,
	}
}

// isHeaderlessRow reports whether row is a single non-blank cell.
func isHeaderlessRow(row []string) bool {
	return len(row) == 1 && strings.TrimSpace(row[0]) != ""
}
