package advisor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/profile"
	"datalens/internal/correlation"
)

// FeatureAdvisor turns column profiles into preprocessing suggestions.
type FeatureAdvisor struct {
	th configuration.Thresholds
}

// NewFeatureAdvisor creates a feature advisor using the given thresholds
func NewFeatureAdvisor(th configuration.Thresholds) *FeatureAdvisor {
	return &FeatureAdvisor{th: th}
}

// Advise emits suggestions for every non-identifier, non-target column. advice
// may be nil when model recommendations were not computed.
func (a *FeatureAdvisor) Advise(ctx context.Context, dp *profile.DatasetProfile, advice *analysis.ModelAdvice) ([]analysis.Suggestion, error) {
	hasTarget := dp.TargetColumn != ""
	var out []analysis.Suggestion

	for i := range dp.Columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := &dp.Columns[i]
		if c.Type == profile.TypeIdentifier || c.Name == dp.TargetColumn {
			continue
		}
		if c.MissingPercentage > a.th.DropColumnMissingPct {
			out = append(out, analysis.Suggestion{
				Category:  analysis.CategoryDrop,
				Columns:   []string{c.Name},
				Method:    "drop_column",
				Priority:  analysis.PriorityHigh,
				Rationale: fmt.Sprintf("%.1f%% of values are missing; consider dropping the column", c.MissingPercentage),
			})
			continue
		}
		out = append(out, a.imputation(c)...)

		switch c.Type {
		case profile.TypeCategorical:
			out = append(out, a.encoding(c, hasTarget))
		case profile.TypeBoolean:
			out = append(out, analysis.Suggestion{
				Category:  analysis.CategoryEncoding,
				Columns:   []string{c.Name},
				Method:    "binary",
				Priority:  analysis.PriorityLow,
				Rationale: "two-valued column maps directly to 0/1",
			})
		case profile.TypeNumeric:
			out = append(out, a.numeric(c, advice))
		case profile.TypeDatetime:
			out = append(out, analysis.Suggestion{
				Category:  analysis.CategoryFeatureCreation,
				Columns:   []string{c.Name},
				Method:    "datetime_components",
				Priority:  analysis.PriorityLow,
				Rationale: "extract year, month, day of week and hour",
			})
		case profile.TypeText:
			out = append(out, analysis.Suggestion{
				Category:  analysis.CategoryEncoding,
				Columns:   []string{c.Name},
				Method:    "text_vectorization",
				Priority:  analysis.PriorityLow,
				Rationale: "free text needs TF-IDF or embeddings before modelling",
			})
		}
	}

	out = append(out, a.featureCreation(dp)...)
	SortSuggestions(out)
	return out, nil
}

func (a *FeatureAdvisor) imputation(c *profile.ColumnProfile) []analysis.Suggestion {
	if c.MissingCount == 0 {
		return nil
	}
	method := "mode"
	switch c.Type {
	case profile.TypeNumeric:
		method = "mean"
		if math.Abs(c.Numeric.Skewness) > a.th.SkewThreshold {
			method = "median"
		}
	case profile.TypeText:
		method = "constant"
	case profile.TypeDatetime:
		method = "interpolate"
	}

	pct := c.MissingPercentage
	priority := analysis.PriorityLow
	switch {
	case pct > a.th.MissingIndicatorPct:
		priority = analysis.PriorityHigh
	case pct >= 5:
		priority = analysis.PriorityMedium
	}

	out := []analysis.Suggestion{{
		Category:  analysis.CategoryImputation,
		Columns:   []string{c.Name},
		Method:    method,
		Priority:  priority,
		Rationale: fmt.Sprintf("%.1f%% of values are missing", pct),
	}}
	if pct > a.th.MissingIndicatorPct {
		out = append(out, analysis.Suggestion{
			Category:  analysis.CategoryImputation,
			Columns:   []string{c.Name},
			Method:    "missing_indicator",
			Priority:  analysis.PriorityHigh,
			Rationale: fmt.Sprintf("missingness above %.0f%% may itself be informative", a.th.MissingIndicatorPct),
		})
	}
	return out
}

func (a *FeatureAdvisor) encoding(c *profile.ColumnProfile, hasTarget bool) analysis.Suggestion {
	s := analysis.Suggestion{Category: analysis.CategoryEncoding, Columns: []string{c.Name}}
	ratio := c.DistinctRatio
	switch {
	case c.Categorical != nil && c.Categorical.Ordinal:
		s.Method = "ordinal"
		s.Priority = analysis.PriorityMedium
		s.Rationale = "categories follow a natural order"
	case ratio < a.th.OneHotMaxRatio:
		s.Method = "one_hot"
		s.Priority = analysis.PriorityMedium
		if hasTarget {
			s.Priority = analysis.PriorityHigh
		}
		s.Rationale = fmt.Sprintf("%d categories, low cardinality", c.DistinctCount)
	case ratio <= a.th.TargetEncodingMaxRatio:
		s.Method = "frequency"
		if hasTarget {
			s.Method = "target"
		}
		s.Priority = analysis.PriorityMedium
		s.Rationale = fmt.Sprintf("%d categories, medium cardinality", c.DistinctCount)
	default:
		s.Category = analysis.CategoryDrop
		s.Method = "drop_high_cardinality"
		s.Priority = analysis.PriorityMedium
		s.Rationale = fmt.Sprintf("distinct ratio %.2f suggests an identifier-like column", ratio)
	}
	return s
}

func (a *FeatureAdvisor) numeric(c *profile.ColumnProfile, advice *analysis.ModelAdvice) analysis.Suggestion {
	ns := c.Numeric
	if skew := math.Abs(ns.Skewness); skew > a.th.SkewThreshold {
		method := "yeo_johnson"
		switch {
		case ns.Min > 0:
			method = "log"
		case ns.Min >= 0:
			method = "log1p"
		}
		priority := analysis.PriorityMedium
		if skew > 2*a.th.SkewThreshold {
			priority = analysis.PriorityHigh
		}
		return analysis.Suggestion{
			Category:  analysis.CategoryTransformation,
			Columns:   []string{c.Name},
			Method:    method,
			Priority:  priority,
			Rationale: fmt.Sprintf("skewness %.2f", ns.Skewness),
		}
	}

	s := analysis.Suggestion{Category: analysis.CategoryScaling, Columns: []string{c.Name}}
	switch {
	case advice == nil:
		s.Method, s.Priority = "standard", analysis.PriorityMedium
		s.Rationale = "puts features on a comparable scale"
	case advice.AnyDistanceBased():
		s.Method, s.Priority = "standard", analysis.PriorityHigh
		s.Rationale = "recommended models are sensitive to feature scale"
	default:
		s.Method, s.Priority = "min_max", analysis.PriorityLow
		s.Rationale = "recommended models are largely scale-invariant"
	}
	return s
}

// featureCreation proposes products and ratios among the predictors most
// correlated with a numeric target.
func (a *FeatureAdvisor) featureCreation(dp *profile.DatasetProfile) []analysis.Suggestion {
	target, ok := dp.Target()
	if !ok || target.Type != profile.TypeNumeric {
		return nil
	}
	ranked := correlation.TargetCorrelations(dp, target, a.th.MinPairObservations)
	if len(ranked) < 2 {
		return nil
	}
	if k := a.th.TopKTargetFeatures; k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}

	var out []analysis.Suggestion
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			x, y := ranked[i], ranked[j]
			priority := analysis.PriorityLow
			if math.Abs(x.Coefficient) >= 0.3 && math.Abs(y.Coefficient) >= 0.3 {
				priority = analysis.PriorityMedium
			}
			out = append(out, analysis.Suggestion{
				Category:  analysis.CategoryFeatureCreation,
				Columns:   []string{x.Column, y.Column},
				Method:    "interaction",
				Priority:  priority,
				Rationale: fmt.Sprintf("both correlate with %s (r=%.2f, r=%.2f)", target.Name, x.Coefficient, y.Coefficient),
			})
			if num, den, ok := ratioOrder(dp, x.Column, y.Column); ok {
				out = append(out, analysis.Suggestion{
					Category:  analysis.CategoryFeatureCreation,
					Columns:   []string{num, den},
					Method:    "ratio",
					Priority:  analysis.PriorityLow,
					Rationale: fmt.Sprintf("%s per unit of %s", num, den),
				})
			}
		}
	}
	return out
}

// ratioOrder picks a denominator that never takes the value zero.
func ratioOrder(dp *profile.DatasetProfile, a, b string) (string, string, bool) {
	ca, _ := dp.Column(a)
	cb, _ := dp.Column(b)
	switch {
	case cb != nil && cb.Numeric != nil && cb.Numeric.ZeroCount == 0:
		return a, b, true
	case ca != nil && ca.Numeric != nil && ca.Numeric.ZeroCount == 0:
		return b, a, true
	}
	return "", "", false
}

// SortSuggestions orders by priority, category, first column and method.
func SortSuggestions(s []analysis.Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if pi, pj := s[i].Priority.Rank(), s[j].Priority.Rank(); pi != pj {
			return pi < pj
		}
		if ci, cj := s[i].Category.Rank(), s[j].Category.Rank(); ci != cj {
			return ci < cj
		}
		if a, b := s[i].PrimaryColumn(), s[j].PrimaryColumn(); a != b {
			return a < b
		}
		if s[i].Method != s[j].Method {
			return s[i].Method < s[j].Method
		}
		return strings.Join(s[i].Columns, ",") < strings.Join(s[j].Columns, ",")
	})
}
