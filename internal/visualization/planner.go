package visualization

import (
	"fmt"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/profile"
)

const (
	maxHistograms     = 9
	maxCategoryCharts = 6
	maxScatterPlots   = 5
	maxPieSlices      = 5
)

// Inputs gathers what the planner looks at. Correlation and Outliers may be
// nil when those stages did not run or failed. Sections tells which report
// sections chart refs may point into; nil means the enabled ones.
type Inputs struct {
	Profile     *profile.DatasetProfile
	Config      *configuration.AnalysisConfiguration
	Correlation *analysis.CorrelationMatrix
	Outliers    *analysis.OutlierReport
	Sections    func(configuration.Section) bool
}

func (in Inputs) has(s configuration.Section) bool {
	if in.Sections != nil {
		return in.Sections(s)
	}
	return in.Config.Enabled(s)
}

// Plan lists chart specifications in a fixed family order. It never renders
// anything and never fails.
func Plan(in Inputs) []analysis.ChartSpec {
	dp, cfg := in.Profile, in.Config
	charts := []analysis.ChartSpec{}
	if dp == nil || cfg == nil {
		return charts
	}

	if cfg.IncludeMissingValuesChart && dp.TotalMissingCells > 0 && in.has(configuration.SectionMissingAnalysis) {
		charts = append(charts, analysis.ChartSpec{
			ChartType: analysis.ChartBar,
			X:         "column",
			Y:         "missing_percentage",
			Title:     "Missing values by column",
			DataRef:   refMissingPercentages,
		})
	}

	withCorrelation := in.Correlation != nil && in.has(configuration.SectionCorrelationData)
	if cfg.IncludeCorrelationHeatmap && withCorrelation && len(in.Correlation.Columns) >= 2 {
		charts = append(charts, analysis.ChartSpec{
			ChartType: analysis.ChartHeatmap,
			Title:     "Correlation matrix",
			DataRef:   refCorrelationMatrix,
		})
	}

	if cfg.IncludeDistributionPlots {
		for i, c := range dp.NumericFeatures(true) {
			if i == maxHistograms {
				break
			}
			charts = append(charts, analysis.ChartSpec{
				ChartType: analysis.ChartHistogram,
				X:         c.Name,
				Title:     fmt.Sprintf("Distribution of %s", c.Name),
				DataRef:   columnRef(c.Name),
			})
		}
		n := 0
		for i := range dp.Columns {
			c := &dp.Columns[i]
			if n == maxCategoryCharts {
				break
			}
			if c.Name == dp.TargetColumn || !c.IsCategoricalLike() || c.Count == 0 {
				continue
			}
			charts = append(charts, analysis.ChartSpec{
				ChartType: analysis.ChartBar,
				X:         c.Name,
				Y:         "count",
				Title:     fmt.Sprintf("Frequency of %s", c.Name),
				DataRef:   columnRef(c.Name),
			})
			n++
		}
	}

	if cfg.IncludeOutlierDetection && in.Outliers != nil && in.has(configuration.SectionStatisticalSummary) {
		for _, c := range dp.ColumnsOfType(profile.TypeNumeric) {
			co, ok := in.Outliers.Columns[c.Name]
			if !ok || co.Count == 0 {
				continue
			}
			charts = append(charts, analysis.ChartSpec{
				ChartType: analysis.ChartBoxPlot,
				Y:         c.Name,
				Title:     fmt.Sprintf("Outliers in %s", c.Name),
				DataRef:   refOutliers + c.Name,
			})
		}
	}

	if cfg.IncludeCorrelationHeatmap && withCorrelation {
		for i, p := range in.Correlation.HighCorrelationPairs {
			if i == maxScatterPlots {
				break
			}
			charts = append(charts, analysis.ChartSpec{
				ChartType: analysis.ChartScatter,
				X:         p.A,
				Y:         p.B,
				Title:     fmt.Sprintf("%s vs %s (r=%.2f)", p.A, p.B, p.Coefficient),
				DataRef:   refCorrelationPairs,
			})
		}
	}

	if target, ok := dp.Target(); ok && target.Count > 0 {
		charts = append(charts, targetChart(target))
	}
	return charts
}

func targetChart(c *profile.ColumnProfile) analysis.ChartSpec {
	spec := analysis.ChartSpec{
		X:       c.Name,
		Title:   fmt.Sprintf("Target distribution: %s", c.Name),
		DataRef: columnRef(c.Name),
	}
	switch {
	case c.Type == profile.TypeNumeric:
		spec.ChartType = analysis.ChartHistogram
	case c.IsCategoricalLike() && c.DistinctCount <= maxPieSlices:
		spec.ChartType = analysis.ChartPie
	default:
		spec.ChartType = analysis.ChartBar
		spec.Y = "count"
	}
	return spec
}

func columnRef(name string) string {
	return refColumns + name
}
