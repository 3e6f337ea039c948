package dataset

import (
	"fmt"
	"strings"

	"datalens/domain/core"
)

// Table is a read-only tabular view: named columns over string cells.
// Rows are always exactly len(Columns) wide.
type Table struct {
	handle  Handle
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable validates the header and normalises row widths. Short rows are
// padded with empty (missing) cells; rows wider than the header are rejected.
func NewTable(handle Handle, columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, c := range columns {
		name := strings.TrimSpace(c)
		if name == "" {
			return nil, core.NewDatasetUnreadableError(handle.String(), fmt.Errorf("column %d has an empty name", i+1))
		}
		if _, dup := index[name]; dup {
			return nil, core.NewDatasetUnreadableError(handle.String(), fmt.Errorf("duplicate column name %q", name))
		}
		index[name] = i
		cols[i] = name
	}

	normalized := make([][]string, len(rows))
	for r, row := range rows {
		if len(row) > len(cols) {
			return nil, core.NewDatasetUnreadableError(handle.String(),
				fmt.Errorf("row %d has %d cells, header has %d", r+1, len(row), len(cols)))
		}
		if len(row) == len(cols) {
			normalized[r] = row
			continue
		}
		padded := make([]string, len(cols))
		copy(padded, row)
		normalized[r] = padded
	}

	return &Table{handle: handle, columns: cols, index: index, rows: normalized}, nil
}

func (t *Table) Handle() Handle    { return t.handle }
func (t *Table) RowCount() int     { return len(t.rows) }
func (t *Table) ColumnCount() int  { return len(t.columns) }
func (t *Table) Columns() []string { return append([]string(nil), t.columns...) }

// HasColumn reports whether name is part of the header.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of one column's cells in row order.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out
}

// Row returns the cells of row r. The slice must not be modified.
func (t *Table) Row(r int) []string { return t.rows[r] }

// Fingerprint hashes the full table contents.
func (t *Table) Fingerprint() core.Hash {
	return core.ComputeTableFingerprint(t.columns, t.rows)
}
