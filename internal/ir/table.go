package ir

// Table is a decoded numeric table.
// Columns are variables, rows are time samples: Rows[i][j] is sample i of
// column j. The same descriptor may appear in more than one column.
type Table struct {
	Columns []VariableID
	Rows    [][]float64
}

// NewTable returns an empty table with no columns and no rows.
func NewTable() *Table {
	return &Table{Columns: []VariableID{}, Rows: [][]float64{}}
}

// NumRows returns the number of samples.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of variables.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Empty reports whether the table holds no columns.
func (t *Table) Empty() bool {
	return t.NumColumns() == 0
}

// Column returns the samples of column j as a new slice.
func (t *Table) Column(j int) []float64 {
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out
}

// Index returns the first column whose descriptor equals d, or -1.
func (t *Table) Index(d Descriptor) int {
	n := d.Normalize()
	for j, c := range t.Columns {
		if c.Descriptor == n {
			return j
		}
	}
	return -1
}

// Lookup returns the samples of the first column described by d.
func (t *Table) Lookup(d Descriptor) ([]float64, bool) {
	j := t.Index(d)
	if j < 0 {
		return nil, false
	}
	return t.Column(j), true
}
