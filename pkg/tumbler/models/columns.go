package models

// Columns holds one label and one word pool per source column.
type Columns struct {
	// Labels are the trimmed header values ("" when absent or blank).
	Labels []string `json:"labels"`
	// Pools are the non-blank trimmed words of each column in row order.
	// Duplicates are kept.
	Pools [][]string `json:"pools"`
}

// Len returns the number of columns.
func (c Columns) Len() int {
	return len(c.Pools)
}

// Empty reports whether no column has any words.
func (c Columns) Empty() bool {
	for _, p := range c.Pools {
		if len(p) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so snapshots never alias live session state.
func (c Columns) Clone() Columns {
	out := Columns{
		Labels: append([]string(nil), c.Labels...),
		Pools:  make([][]string, len(c.Pools)),
	}
	for i, p := range c.Pools {
		out.Pools[i] = append([]string(nil), p...)
	}
	return out
}
