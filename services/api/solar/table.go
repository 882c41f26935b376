package solar

// Table is an immutable, ordered set of observations. A nil *Table is a
// valid empty table.
type Table struct {
	rows []Observation
}

// NewTable copies rows into a new table.
func NewTable(rows []Observation) *Table {
	cp := make([]Observation, len(rows))
	copy(cp, rows)
	return &Table{rows: cp}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// At returns row i.
func (t *Table) At(i int) Observation {
	return t.rows[i]
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Observation {
	if t == nil {
		return nil
	}
	cp := make([]Observation, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Countries lists the countries present, in order of first appearance.
func (t *Table) Countries() []Country {
	seen := make(map[Country]bool)
	out := make([]Country, 0, 3)
	for i := 0; i < t.Len(); i++ {
		c := t.rows[i].Country
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// Select returns a new table with the rows for which keep returns true.
func (t *Table) Select(keep func(Observation) bool) *Table {
	out := make([]Observation, 0)
	for i := 0; i < t.Len(); i++ {
		if keep(t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return &Table{rows: out}
}

// Concat joins tables in order.
func Concat(tables ...*Table) *Table {
	n := 0
	for _, t := range tables {
		n += t.Len()
	}
	rows := make([]Observation, 0, n)
	for _, t := range tables {
		if t != nil {
			rows = append(rows, t.rows...)
		}
	}
	return &Table{rows: rows}
}
