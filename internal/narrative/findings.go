package narrative

import (
	"fmt"
	"math"
	"sort"

	"datalens/domain/analysis"
	"datalens/domain/profile"
)

const (
	highMissingPct       = 20.0
	maxTopSuggestions    = 5
	maxHighCorrelations  = 5
	advancedColumnCount  = 50
	advancedRowCount     = 100000
	categoricalHeavyRate = 0.7
)

// Sources are the computed sections findings are drawn from. Everything except
// Profile is optional.
type Sources struct {
	Profile       *profile.DatasetProfile
	Outliers      *analysis.OutlierReport
	Correlation   *analysis.CorrelationMatrix
	Advice        *analysis.ModelAdvice
	Suggestions   []analysis.Suggestion
	SkewThreshold float64
}

// Extract condenses the analysis into findings a narrator can summarise.
func Extract(src Sources) analysis.Findings {
	dp := src.Profile
	f := analysis.Findings{
		RowCount:              dp.RowCount,
		ColumnCount:           dp.ColumnCount,
		MissingCellPercentage: dp.MissingCellPercentage,
		DuplicateRowCount:     dp.DuplicateRowCount,
		QualityScore:          dp.QualityScore,
		TargetColumn:          dp.TargetColumn,
		KeyFindings:           []string{},
		Recommendations:       []string{},
	}

	for i := range dp.Columns {
		c := &dp.Columns[i]
		switch {
		case c.Type == profile.TypeNumeric:
			f.NumericColumns++
			if src.SkewThreshold > 0 && math.Abs(c.Numeric.Skewness) > src.SkewThreshold {
				f.SkewedColumns = append(f.SkewedColumns, c.Name)
			}
		case c.IsCategoricalLike():
			f.CategoricalColumns++
		}
		if c.MissingPercentage > highMissingPct {
			f.HighMissingColumns = append(f.HighMissingColumns, c.Name)
		}
	}

	if src.Outliers != nil {
		for name, co := range src.Outliers.Columns {
			if co.Count > 0 {
				f.OutlierColumns = append(f.OutlierColumns, name)
			}
		}
		sort.Strings(f.OutlierColumns)
	}
	if src.Correlation != nil {
		pairs := src.Correlation.HighCorrelationPairs
		f.HighCorrelations = pairs[:min(len(pairs), maxHighCorrelations)]
	}
	if src.Advice != nil {
		f.ProblemType = src.Advice.ProblemType
		if len(src.Advice.Recommendations) > 0 {
			f.TopModel = src.Advice.Recommendations[0].Family
		}
	}
	if len(src.Suggestions) > 0 {
		f.TopSuggestions = src.Suggestions[:min(len(src.Suggestions), maxTopSuggestions)]
	}

	f.KeyFindings = keyFindings(f)
	f.Recommendations = recommendations(f)
	f.Difficulty, f.EstimatedEffort = difficulty(f)
	return f
}

func keyFindings(f analysis.Findings) []string {
	out := []string{}
	switch {
	case f.QualityScore > 90:
		out = append(out, "Excellent data quality with minimal missing values and duplicates")
	case f.QualityScore > 70:
		out = append(out, "Good data quality with some issues to address")
	default:
		out = append(out, "Poor data quality; significant cleaning needed")
	}
	if f.MissingCellPercentage > highMissingPct {
		out = append(out, fmt.Sprintf("High missing data rate (%.1f%%) requires attention", f.MissingCellPercentage))
	}
	if f.ColumnCount > 0 {
		numericRate := float64(f.NumericColumns) / float64(f.ColumnCount)
		switch {
		case numericRate > 0.8:
			out = append(out, "Primarily numeric dataset, well suited to traditional ML approaches")
		case numericRate < 0.3:
			out = append(out, "Primarily categorical dataset; encoding choices will matter")
		}
	}
	if n := len(f.HighCorrelations); n > 0 {
		out = append(out, fmt.Sprintf("Found %d strong correlations; watch for multicollinearity", n))
	}
	if n := len(f.SkewedColumns); n > 0 {
		out = append(out, fmt.Sprintf("%d variables are highly skewed", n))
	}
	if n := len(f.OutlierColumns); n > 0 {
		out = append(out, fmt.Sprintf("Outliers detected in %d columns", n))
	}
	if f.ColumnCount > advancedColumnCount {
		out = append(out, "High-dimensional dataset; consider dimensionality reduction")
	}
	return out
}

func recommendations(f analysis.Findings) []string {
	out := []string{}
	if f.TargetColumn != "" {
		out = append(out, fmt.Sprintf("Start with exploratory analysis of the '%s' distribution", f.TargetColumn))
	}
	if f.RowCount > 0 && float64(f.DuplicateRowCount)/float64(f.RowCount) > 0.05 {
		out = append(out, "Remove duplicate rows")
	}
	if f.MissingCellPercentage > 10 {
		out = append(out, "Implement a missing value imputation strategy")
	}
	if len(f.HighCorrelations) > 0 {
		out = append(out, "Address multicollinearity before modelling")
	}
	if f.NumericColumns > 5 {
		out = append(out, "Consider feature selection to reduce dimensionality")
	}
	if f.TopModel != "" {
		out = append(out, fmt.Sprintf("Try %s as a first model", f.TopModel))
	}
	for _, s := range f.TopSuggestions {
		if s.Priority == analysis.PriorityHigh {
			out = append(out, fmt.Sprintf("Apply %s %s to %s", s.Method, s.Category, s.PrimaryColumn()))
		}
	}
	return out
}

func difficulty(f analysis.Findings) (string, string) {
	level, effort := "beginner", "30-60 minutes"
	if f.MissingCellPercentage > highMissingPct ||
		(f.ColumnCount > 0 && float64(f.CategoricalColumns)/float64(f.ColumnCount) > categoricalHeavyRate) {
		level, effort = "intermediate", "1-2 hours"
	}
	if f.ColumnCount > advancedColumnCount || f.RowCount >= advancedRowCount {
		level, effort = "advanced", "half a day or more"
	}
	return level, effort
}
