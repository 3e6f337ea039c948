package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	c := NewCoercer(nil)

	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{"$45,000", 45000, true},
		{"(120)", -120, true},
		{"12%", 12, true},
		{"1.234,56", 1234.56, true},
		{"1,5", 1.5, true},
		{"1e3", 1000, true},
		{"Inf", 0, false},
		{"0x1p-2", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := c.ParseNumeric(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseBooleanUsesFixedLiterals(t *testing.T) {
	c := NewCoercer(nil)

	for _, s := range []string{"TRUE", "yes", "Y", "f", "No"} {
		_, ok := c.ParseBoolean(s)
		assert.True(t, ok, s)
	}
	for _, s := range []string{"1", "0", "on", "maybe"} {
		_, ok := c.ParseBoolean(s)
		assert.False(t, ok, s)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	c := NewCoercer(nil)

	for _, s := range []string{"2024-03-01", "2024-03-01 10:00:00", "03/01/2024", "01-Mar-2024", "2024-03-01T10:00:00Z"} {
		_, _, ok := c.ParseTimestamp(s)
		assert.True(t, ok, s)
	}
	_, _, ok := c.ParseTimestamp("yesterday")
	assert.False(t, ok)
}

func TestMissingSentinels(t *testing.T) {
	c := NewCoercer(nil)
	for _, s := range []string{"", "  ", "NA", "null", "N/A", "NaN"} {
		assert.True(t, c.IsMissing(s), "%q", s)
	}
	assert.False(t, c.IsMissing("0"))

	custom := NewCoercer([]string{"", "?"})
	assert.True(t, custom.IsMissing("?"))
	assert.False(t, custom.IsMissing("NA"))
}
