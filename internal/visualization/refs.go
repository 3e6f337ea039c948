package visualization

import (
	"strings"

	"datalens/domain/analysis"
	"datalens/domain/report"
)

// Data refs are dotted paths into the serialized report. Column-scoped refs
// end in the column name.
const (
	refMissingPercentages = "missing_analysis.missing_percentages"
	refCorrelationMatrix  = "correlation_data.matrix"
	refCorrelationPairs   = "correlation_data.high_correlation_pairs"
	refOutliers           = "statistical_summary.outliers.columns."
	refColumns            = "dataset_info.columns."
)

// Resolvable keeps the charts whose data ref points at data present in rep.
// Sections can still drop out after planning when their stage fails.
func Resolvable(charts []analysis.ChartSpec, rep *report.AnalysisReport) []analysis.ChartSpec {
	out := make([]analysis.ChartSpec, 0, len(charts))
	for _, c := range charts {
		if resolves(c, rep) {
			out = append(out, c)
		}
	}
	return out
}

func resolves(c analysis.ChartSpec, rep *report.AnalysisReport) bool {
	switch {
	case c.DataRef == refMissingPercentages:
		return rep.MissingAnalysis != nil
	case c.DataRef == refCorrelationMatrix:
		return rep.CorrelationData != nil
	case c.DataRef == refCorrelationPairs:
		if rep.CorrelationData == nil {
			return false
		}
		_, ok := rep.CorrelationData.Coefficient(c.X, c.Y)
		return ok
	case strings.HasPrefix(c.DataRef, refOutliers):
		if rep.StatisticalSummary == nil || rep.StatisticalSummary.Outliers == nil {
			return false
		}
		_, ok := rep.StatisticalSummary.Outliers.Columns[strings.TrimPrefix(c.DataRef, refOutliers)]
		return ok
	case strings.HasPrefix(c.DataRef, refColumns):
		if rep.DatasetInfo == nil {
			return false
		}
		_, ok := rep.DatasetInfo.Column(strings.TrimPrefix(c.DataRef, refColumns))
		return ok
	}
	return false
}
