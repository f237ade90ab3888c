package parser

import (
	"strings"

	"github.com/ukaji3/tumbler-go/pkg/tumbler/models"
)

// BuildColumns collects one pool of trimmed, non-blank words per column.
// The column count is the header width, or the first data row's width in
// headerless mode. Cells beyond that width are ignored.
func BuildColumns(t *models.Table) models.Columns {
	header := t.Header()
	data := t.DataRows()

	width := len(header)
	if !t.HeaderConsumed && len(data) > 0 {
		width = len(data[0])
	}

	cols := models.Columns{
		Labels: make([]string, width),
		Pools:  make([][]string, width),
	}
	for i := 0; i < width; i++ {
		cols.Labels[i] = strings.TrimSpace(models.Cell(header, i))
		cols.Pools[i] = []string{}
	}

	for _, row := range data {
		for i := 0; i < width; i++ {
			word := strings.TrimSpace(models.Cell(row, i))
			if word == "" {
				continue
			}
			cols.Pools[i] = append(cols.Pools[i], word)
		}
	}
	return cols
}

// FirstEmptyPool returns the index of the first column without words, or -1.
func FirstEmptyPool(cols models.Columns) int {
	for i, p := range cols.Pools {
		if len(p) == 0 {
			return i
		}
	}
	return -1
}
