package visualization

import (
	"testing"

	"datalens/domain/analysis"
	"datalens/domain/profile"
	"datalens/domain/report"

	"github.com/stretchr/testify/assert"
)

func chartTypes(charts []analysis.ChartSpec) []analysis.ChartType {
	out := make([]analysis.ChartType, 0, len(charts))
	for _, c := range charts {
		out = append(out, c.ChartType)
	}
	return out
}

func TestResolvableDropsDanglingRefs(t *testing.T) {
	r := 0.93
	charts := []analysis.ChartSpec{
		{ChartType: analysis.ChartBar, DataRef: refMissingPercentages},
		{ChartType: analysis.ChartHeatmap, DataRef: refCorrelationMatrix},
		{ChartType: analysis.ChartScatter, X: "a", Y: "b", DataRef: refCorrelationPairs},
		{ChartType: analysis.ChartScatter, X: "a", Y: "zz", DataRef: refCorrelationPairs},
		{ChartType: analysis.ChartBoxPlot, Y: "a", DataRef: refOutliers + "a"},
		{ChartType: analysis.ChartHistogram, X: "a", DataRef: columnRef("a")},
		{ChartType: analysis.ChartHistogram, X: "gone", DataRef: columnRef("gone")},
		{ChartType: analysis.ChartPie, DataRef: "model_recommendations.x"},
	}
	rep := &report.AnalysisReport{
		DatasetInfo: &profile.DatasetProfile{Columns: []profile.ColumnProfile{{Name: "a"}, {Name: "b"}}},
		CorrelationData: &analysis.CorrelationMatrix{
			Columns: []string{"a", "b"},
			Values:  map[string]map[string]*float64{"a": {"b": &r}, "b": {"a": &r}},
		},
		StatisticalSummary: &report.StatisticalSummary{},
	}

	got := Resolvable(charts, rep)
	assert.Equal(t, []analysis.ChartType{analysis.ChartHeatmap, analysis.ChartScatter, analysis.ChartHistogram}, chartTypes(got))
	assert.Equal(t, "b", got[1].Y)
}

func TestResolvableKeepsOutlierChartsWithData(t *testing.T) {
	charts := []analysis.ChartSpec{{ChartType: analysis.ChartBoxPlot, Y: "a", DataRef: refOutliers + "a"}}
	rep := &report.AnalysisReport{StatisticalSummary: &report.StatisticalSummary{
		Outliers: &analysis.OutlierReport{Columns: map[string]analysis.ColumnOutliers{"a": {Count: 1}}},
	}}
	assert.Len(t, Resolvable(charts, rep), 1)
}
