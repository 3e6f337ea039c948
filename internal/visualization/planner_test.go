package visualization

import (
	"fmt"
	"strings"
	"testing"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInputs() Inputs {
	dp := &profile.DatasetProfile{
		RowCount:          100,
		TotalMissingCells: 3,
		TargetColumn:      "churn",
	}
	for i := range 12 {
		dp.Columns = append(dp.Columns, profile.ColumnProfile{Name: fmt.Sprintf("n%02d", i), Type: profile.TypeNumeric, Count: 100})
	}
	for i := range 8 {
		dp.Columns = append(dp.Columns, profile.ColumnProfile{Name: fmt.Sprintf("c%02d", i), Type: profile.TypeCategorical, Count: 100})
	}
	dp.Columns = append(dp.Columns, profile.ColumnProfile{Name: "churn", Type: profile.TypeBoolean, Count: 100, DistinctCount: 2})

	corr := &analysis.CorrelationMatrix{Columns: []string{"n00", "n01"}}
	for i := range 7 {
		corr.HighCorrelationPairs = append(corr.HighCorrelationPairs, analysis.CorrelationPair{A: "n00", B: fmt.Sprintf("n%02d", i+1), Coefficient: 0.9})
	}
	out := &analysis.OutlierReport{Columns: map[string]analysis.ColumnOutliers{
		"n03": {Count: 2},
		"n04": {Count: 0},
	}}
	return Inputs{Profile: dp, Config: configuration.Default(), Correlation: corr, Outliers: out}
}

func countByType(charts []analysis.ChartSpec) map[analysis.ChartType]int {
	counts := map[analysis.ChartType]int{}
	for _, c := range charts {
		counts[c.ChartType]++
	}
	return counts
}

func TestPlanFamiliesAndCaps(t *testing.T) {
	charts := Plan(sampleInputs())
	require.NotEmpty(t, charts)

	counts := countByType(charts)
	assert.Equal(t, 1, counts[analysis.ChartHeatmap])
	assert.Equal(t, 9, counts[analysis.ChartHistogram])
	assert.Equal(t, 1+6, counts[analysis.ChartBar], "missing chart plus capped category charts")
	assert.Equal(t, 1, counts[analysis.ChartBoxPlot])
	assert.Equal(t, 5, counts[analysis.ChartScatter])
	assert.Equal(t, 1, counts[analysis.ChartPie])

	assert.Equal(t, "missing_analysis.missing_percentages", charts[0].DataRef)
	assert.Equal(t, analysis.ChartHeatmap, charts[1].ChartType)
	last := charts[len(charts)-1]
	assert.Equal(t, analysis.ChartPie, last.ChartType)
	assert.Equal(t, "churn", last.X)
}

func TestPlanRespectsToggles(t *testing.T) {
	in := sampleInputs()
	cfg := configuration.Default()
	cfg.IncludeCorrelationHeatmap = false
	cfg.IncludeMissingValuesChart = false
	cfg.IncludeDistributionPlots = false
	cfg.IncludeOutlierDetection = false
	in.Config = cfg

	charts := Plan(in)
	require.Len(t, charts, 1)
	assert.Equal(t, analysis.ChartPie, charts[0].ChartType)
}

func TestPlanWithoutOptionalInputs(t *testing.T) {
	in := sampleInputs()
	in.Correlation = nil
	in.Outliers = nil
	counts := countByType(Plan(in))
	assert.Zero(t, counts[analysis.ChartHeatmap])
	assert.Zero(t, counts[analysis.ChartScatter])
	assert.Zero(t, counts[analysis.ChartBoxPlot])
}

func TestNumericTargetGetsHistogram(t *testing.T) {
	dp := &profile.DatasetProfile{RowCount: 10, TargetColumn: "price", Columns: []profile.ColumnProfile{
		{Name: "price", Type: profile.TypeNumeric, Count: 10},
	}}
	cfg := configuration.Default()
	cfg.IncludeDistributionPlots = false
	charts := Plan(Inputs{Profile: dp, Config: cfg})
	require.Len(t, charts, 1)
	assert.Equal(t, analysis.ChartHistogram, charts[0].ChartType)
}

func TestPlanIsDeterministic(t *testing.T) {
	assert.Equal(t, Plan(sampleInputs()), Plan(sampleInputs()))
}

func TestEmptyProfile(t *testing.T) {
	charts := Plan(Inputs{Profile: &profile.DatasetProfile{}, Config: configuration.Default()})
	assert.NotNil(t, charts)
	assert.Empty(t, charts)
}

func TestPlanSkipsChartsIntoAbsentSections(t *testing.T) {
	in := sampleInputs()
	in.Sections = func(s configuration.Section) bool { return s == configuration.SectionVisualizations }

	for _, c := range Plan(in) {
		assert.True(t, strings.HasPrefix(c.DataRef, refColumns), "chart %q points at %s", c.Title, c.DataRef)
	}
}

func TestPlanUsesEnabledSectionsByDefault(t *testing.T) {
	in := sampleInputs()
	in.Config.ShowCorrelationAnalysis = false
	counts := countByType(Plan(in))
	assert.Zero(t, counts[analysis.ChartHeatmap])
	assert.Zero(t, counts[analysis.ChartScatter])
	assert.Equal(t, 1, counts[analysis.ChartBoxPlot])
}
