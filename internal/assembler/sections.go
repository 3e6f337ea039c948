package assembler

import (
	"sort"
	"strings"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/profile"
	"datalens/domain/report"
	"datalens/internal/correlation"
)

const (
	maxMissingPatterns       = 10
	missingPatternThreshold  = 0.5
	targetCandidateMaxLabels = 10
	highCardinalityLabels    = 50
)

var targetNameHints = []string{"target", "label", "class", "outcome"}

// buildMissingAnalysis summarises missingness per column and finds columns
// whose cells tend to go missing together.
func buildMissingAnalysis(dp *profile.DatasetProfile, th configuration.Thresholds) *report.MissingAnalysis {
	ma := &report.MissingAnalysis{
		MissingCounts:         make(map[string]int, len(dp.Columns)),
		MissingPercentages:    make(map[string]float64, len(dp.Columns)),
		ColumnsWithMissing:    []string{},
		CompleteColumns:       []string{},
		TotalMissingCells:     dp.TotalMissingCells,
		MissingCellPercentage: dp.MissingCellPercentage,
	}

	var partial []*profile.ColumnProfile
	for i := range dp.Columns {
		c := &dp.Columns[i]
		ma.MissingCounts[c.Name] = c.MissingCount
		ma.MissingPercentages[c.Name] = c.MissingPercentage
		if c.MissingCount == 0 {
			ma.CompleteColumns = append(ma.CompleteColumns, c.Name)
			continue
		}
		ma.ColumnsWithMissing = append(ma.ColumnsWithMissing, c.Name)
		if c.MissingPercentage > th.DropColumnMissingPct {
			ma.DropCandidates = append(ma.DropCandidates, c.Name)
		}
		if c.MissingCount < dp.RowCount {
			partial = append(partial, c)
		}
	}

	for r := 0; r < dp.RowCount; r++ {
		complete := true
		for i := range dp.Columns {
			if m := dp.Columns[i].Missing; r < len(m) && m[r] {
				complete = false
				break
			}
		}
		if complete {
			ma.CompleteRowCount++
		}
	}

	ma.Patterns = missingPatterns(partial, th.MinPairObservations)
	return ma
}

func missingPatterns(cols []*profile.ColumnProfile, minObs int) []report.MissingPattern {
	masks := make([][]float64, len(cols))
	for i, c := range cols {
		masks[i] = make([]float64, len(c.Missing))
		for r, m := range c.Missing {
			if m {
				masks[i][r] = 1
			}
		}
	}

	var out []report.MissingPattern
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			r, ok := correlation.Pearson(masks[i], masks[j], minObs)
			if !ok || r < missingPatternThreshold {
				continue
			}
			a, b := cols[i].Name, cols[j].Name
			if b < a {
				a, b = b, a
			}
			out = append(out, report.MissingPattern{Columns: []string{a, b}, Correlation: r})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Correlation != out[j].Correlation {
			return out[i].Correlation > out[j].Correlation
		}
		return strings.Join(out[i].Columns, ",") < strings.Join(out[j].Columns, ",")
	})
	if len(out) > maxMissingPatterns {
		out = out[:maxMissingPatterns]
	}
	return out
}

// buildColumnAnalysis buckets columns by type and flags structural traits.
func buildColumnAnalysis(dp *profile.DatasetProfile) *report.ColumnAnalysis {
	ca := &report.ColumnAnalysis{
		NumericColumns:         []string{},
		CategoricalColumns:     []string{},
		BooleanColumns:         []string{},
		DatetimeColumns:        []string{},
		TextColumns:            []string{},
		IdentifierColumns:      []string{},
		PotentialTargets:       []string{},
		HighCardinalityColumns: []string{},
		BinaryColumns:          []string{},
		ConstantColumns:        []string{},
		Types:                  make(map[string]string, len(dp.Columns)),
	}

	for i := range dp.Columns {
		c := &dp.Columns[i]
		ca.Types[c.Name] = string(c.Type)
		switch c.Type {
		case profile.TypeNumeric:
			ca.NumericColumns = append(ca.NumericColumns, c.Name)
		case profile.TypeCategorical:
			ca.CategoricalColumns = append(ca.CategoricalColumns, c.Name)
			if c.DistinctCount > highCardinalityLabels {
				ca.HighCardinalityColumns = append(ca.HighCardinalityColumns, c.Name)
			}
		case profile.TypeBoolean:
			ca.BooleanColumns = append(ca.BooleanColumns, c.Name)
		case profile.TypeDatetime:
			ca.DatetimeColumns = append(ca.DatetimeColumns, c.Name)
		case profile.TypeText:
			ca.TextColumns = append(ca.TextColumns, c.Name)
		case profile.TypeIdentifier:
			ca.IdentifierColumns = append(ca.IdentifierColumns, c.Name)
		}

		switch c.DistinctCount {
		case 1:
			ca.ConstantColumns = append(ca.ConstantColumns, c.Name)
		case 2:
			ca.BinaryColumns = append(ca.BinaryColumns, c.Name)
		}
		if potentialTarget(c) {
			ca.PotentialTargets = append(ca.PotentialTargets, c.Name)
		}
	}
	return ca
}

func potentialTarget(c *profile.ColumnProfile) bool {
	if c.IsCategoricalLike() {
		return c.DistinctCount >= 2 && c.DistinctCount <= targetCandidateMaxLabels
	}
	if c.Type != profile.TypeNumeric {
		return false
	}
	name := strings.ToLower(c.Name)
	if name == "y" {
		return true
	}
	for _, hint := range targetNameHints {
		if strings.Contains(name, hint) {
			return true
		}
	}
	return false
}

// buildStatisticalSummary restates profile statistics in describe() form.
// Shape statistics are included only when advanced stats are requested.
func buildStatisticalSummary(dp *profile.DatasetProfile, advanced bool, outliers *analysis.OutlierReport) *report.StatisticalSummary {
	ss := &report.StatisticalSummary{
		Numeric:     map[string]report.NumericSummary{},
		Categorical: map[string]report.CategoricalSummary{},
		Outliers:    outliers,
	}
	for i := range dp.Columns {
		c := &dp.Columns[i]
		switch {
		case c.Type == profile.TypeNumeric:
			ns := c.Numeric
			sum := report.NumericSummary{
				Count:  c.Count,
				Mean:   ns.Mean,
				StdDev: ns.StdDev,
				Min:    ns.Min,
				Q1:     ns.Q1,
				Median: ns.Median,
				Q3:     ns.Q3,
				Max:    ns.Max,
			}
			if advanced {
				skew, kurt := ns.Skewness, ns.Kurtosis
				sum.Skewness, sum.Kurtosis = &skew, &kurt
			}
			ss.Numeric[c.Name] = sum
		case c.Type == profile.TypeCategorical && c.Categorical != nil:
			ss.Categorical[c.Name] = report.CategoricalSummary{
				Unique:       c.DistinctCount,
				MostFrequent: c.Categorical.Mode,
				Frequency:    c.Categorical.ModeFrequency,
				TopValues:    c.Categorical.TopValues,
			}
		case c.Type == profile.TypeBoolean && c.Boolean != nil:
			ss.Categorical[c.Name] = booleanSummary(c)
		}
	}
	return ss
}

func booleanSummary(c *profile.ColumnProfile) report.CategoricalSummary {
	b := c.Boolean
	top := []profile.CategoryFrequency{
		{Value: "true", Count: b.TrueCount},
		{Value: "false", Count: b.FalseCount},
	}
	if b.FalseCount > b.TrueCount {
		top[0], top[1] = top[1], top[0]
	}
	if c.Count > 0 {
		for i := range top {
			top[i].Percentage = float64(top[i].Count) / float64(c.Count) * 100
		}
	}
	return report.CategoricalSummary{
		Unique:       c.DistinctCount,
		MostFrequent: top[0].Value,
		Frequency:    top[0].Count,
		TopValues:    top,
	}
}

// buildPreprocessing wraps suggestions with a per-category tally.
func buildPreprocessing(s []analysis.Suggestion) *report.Preprocessing {
	p := &report.Preprocessing{Suggestions: s, Summary: map[string]int{}}
	if p.Suggestions == nil {
		p.Suggestions = []analysis.Suggestion{}
	}
	for _, x := range s {
		p.Summary[string(x.Category)]++
	}
	return p
}
