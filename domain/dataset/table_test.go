package dataset

import (
	"testing"

	"datalens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTablePadsShortRows(t *testing.T) {
	table, err := NewTable("h", []string{"a", "b", "c"}, [][]string{{"1", "2"}, {"4", "5", "6"}})
	require.NoError(t, err)

	assert.Equal(t, 2, table.RowCount())
	assert.Equal(t, []string{"1", "2", ""}, table.Row(0))
	assert.Equal(t, []string{"", "6"}, table.Column(2))
}

func TestNewTableRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		rows    [][]string
	}{
		{"duplicate header", []string{"a", "a"}, nil},
		{"blank header", []string{"a", " "}, nil},
		{"wide row", []string{"a"}, [][]string{{"1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable("h", tt.columns, tt.rows)
			assert.ErrorIs(t, err, core.ErrDatasetUnreadable)
		})
	}
}

func TestTableAllowsZeroRows(t *testing.T) {
	table, err := NewTable("empty", []string{"x", "y"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.RowCount())
	assert.True(t, table.HasColumn("y"))
	assert.False(t, table.HasColumn("z"))
}

func TestValidHandle(t *testing.T) {
	for _, h := range []Handle{"sales", "sales.csv", "q3-2026_orders"} {
		assert.True(t, ValidHandle(h), h)
	}
	for _, h := range []Handle{"", ".", "..", "../etc", `a\b`, " padded"} {
		assert.False(t, ValidHandle(h), h)
	}
	assert.Equal(t, FormatXLSX, FormatFromPath("/data/Book.XLSX"))
	assert.Equal(t, FormatCSV, FormatFromPath("/data/notes.tsv"))
}
