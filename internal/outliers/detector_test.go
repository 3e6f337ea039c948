package outliers

import (
	"context"
	"strconv"
	"testing"

	"datalens/domain/analysis"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/profile"
	"datalens/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOf(t *testing.T, columns []string, rows [][]string) *profile.DatasetProfile {
	t.Helper()
	table, err := dataset.NewTable("outliers", columns, rows)
	require.NoError(t, err)
	dp, err := profiling.NewProfiler(profiling.DefaultOptions()).Profile(context.Background(), table, "")
	require.NoError(t, err)
	return dp
}

// rowsOf turns a single column of floats into table rows.
func rowsOf(values ...float64) [][]string {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return rows
}

func scenarioValues() []float64 {
	values := make([]float64, 0, 100)
	for i := 1; i <= 98; i++ {
		values = append(values, float64(i))
	}
	return append(values, 1000, -1000)
}

func TestIQRFlagsBothTails(t *testing.T) {
	dp := profileOf(t, []string{"value"}, rowsOf(scenarioValues()...))

	d, err := New(analysis.OutlierIQR, DefaultOptions())
	require.NoError(t, err)

	report, err := d.Detect(context.Background(), dp)
	require.NoError(t, err)

	col, ok := report.Columns["value"]
	require.True(t, ok)
	assert.Equal(t, 2, col.Count)
	assert.InDelta(t, 2.0, col.Percentage, 1e-9)
	assert.Equal(t, []int{98, 99}, col.Indices)
	assert.Equal(t, "safe to drop or cap", col.Recommendation)
	require.NotNil(t, col.LowerBound)
	require.NotNil(t, col.UpperBound)
	assert.Less(t, *col.LowerBound, 1.0)
	assert.Greater(t, *col.UpperBound, 98.0)
}

func TestZScoreSkipsZeroVariance(t *testing.T) {
	dp := profileOf(t, []string{"flat", "spiky"}, [][]string{
		{"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"},
		{"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"},
		{"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"},
		{"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "1"}, {"4", "90"},
	})

	d, err := New(analysis.OutlierZScore, DefaultOptions())
	require.NoError(t, err)

	report, err := d.Detect(context.Background(), dp)
	require.NoError(t, err)

	assert.Equal(t, "zero variance", report.Skipped["flat"])
	_, scanned := report.Columns["flat"]
	assert.False(t, scanned)

	spiky := report.Columns["spiky"]
	assert.Equal(t, 1, spiky.Count)
	assert.Equal(t, []int{19}, spiky.Indices)
	assert.InDelta(t, 5.0, spiky.Percentage, 1e-9)
	assert.Equal(t, "consider robust scaling", spiky.Recommendation)
}

func TestIsolationForestIsDeterministic(t *testing.T) {
	values := make([]float64, 0, 201)
	for i := 0; i < 200; i++ {
		values = append(values, float64(i))
	}
	values = append(values, 5000)
	dp := profileOf(t, []string{"reading"}, rowsOf(values...))

	d, err := New(analysis.OutlierIsolationForest, DefaultOptions())
	require.NoError(t, err)

	first, err := d.Detect(context.Background(), dp)
	require.NoError(t, err)
	second, err := d.Detect(context.Background(), dp)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	col := first.Columns["reading"]
	assert.Contains(t, col.Indices, 200)
	assert.LessOrEqual(t, col.Count, 20)
	assert.GreaterOrEqual(t, col.Percentage, 0.0)
	assert.LessOrEqual(t, col.Percentage, 100.0)
}

func TestIsolationForestHonoursCancellation(t *testing.T) {
	dp := profileOf(t, []string{"v"}, rowsOf(scenarioValues()...))
	d, err := New(analysis.OutlierIsolationForest, DefaultOptions())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Detect(ctx, dp)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnknownMethod(t *testing.T) {
	_, err := New("dbscan", DefaultOptions())
	assert.ErrorIs(t, err, core.ErrUnsupportedMethod)
}

func TestIdentifiersAreNotScanned(t *testing.T) {
	dp := profileOf(t, []string{"id", "v"}, [][]string{
		{"1", "10"}, {"2", "11"}, {"3", "12"}, {"4", "500"},
	})

	d, err := New(analysis.OutlierIQR, DefaultOptions())
	require.NoError(t, err)
	report, err := d.Detect(context.Background(), dp)
	require.NoError(t, err)

	_, ok := report.Columns["id"]
	assert.False(t, ok)
	_, ok = report.Columns["v"]
	assert.True(t, ok)
}

func TestPercentagesStayInRange(t *testing.T) {
	dp := profileOf(t, []string{"a", "b"}, [][]string{
		{"1", ""}, {"2", "3"}, {"3", ""}, {"100", "4"}, {"", "5"}, {"2", "-80"},
	})

	for _, method := range analysis.OutlierMethods {
		t.Run(string(method), func(t *testing.T) {
			d, err := New(method, DefaultOptions())
			require.NoError(t, err)
			report, err := d.Detect(context.Background(), dp)
			require.NoError(t, err)
			for name, col := range report.Columns {
				assert.GreaterOrEqual(t, col.Percentage, 0.0, name)
				assert.LessOrEqual(t, col.Percentage, 100.0, name)
				assert.LessOrEqual(t, len(col.Indices), analysis.MaxOutlierIndices, name)
			}
		})
	}
}

func TestSummarizeCapsIndices(t *testing.T) {
	var flags []flag
	for i := 0; i < 60; i++ {
		flags = append(flags, flag{row: i, severity: float64(i)})
	}

	co := summarize(scanResult{flags: flags}, 100)
	assert.Equal(t, 60, co.Count)
	assert.InDelta(t, 60.0, co.Percentage, 1e-9)
	require.Len(t, co.Indices, analysis.MaxOutlierIndices)
	assert.Equal(t, 10, co.Indices[0], "least severe rows are dropped first")
	assert.Equal(t, 59, co.Indices[len(co.Indices)-1])
	assert.Equal(t, "investigate data collection process", co.Recommendation)
}
