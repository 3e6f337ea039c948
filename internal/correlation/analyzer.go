package correlation

import (
	"context"
	"math"
	"sort"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/profile"

	"gonum.org/v1/gonum/stat"
)

// Options control pair ranking.
type Options struct {
	Threshold       float64
	MaxPairs        int
	MinObservations int
}

// OptionsFromConfiguration derives analyzer options from a configuration.
func OptionsFromConfiguration(cfg *configuration.AnalysisConfiguration) Options {
	return Options{
		Threshold:       cfg.Thresholds.CorrelationThreshold,
		MaxPairs:        cfg.MaxCorrelationPairs,
		MinObservations: cfg.Thresholds.MinPairObservations,
	}
}

// Analyzer computes pairwise Pearson coefficients over numeric columns.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(opts Options) *Analyzer {
	if opts.MinObservations < 2 {
		opts.MinObservations = 2
	}
	return &Analyzer{opts: opts}
}

// Analyze builds the symmetric matrix, the ranked high-correlation pairs and,
// when the target is numeric, each predictor's coefficient against it.
func (a *Analyzer) Analyze(ctx context.Context, dp *profile.DatasetProfile) (*analysis.CorrelationMatrix, error) {
	cols := dp.ColumnsOfType(profile.TypeNumeric)

	m := &analysis.CorrelationMatrix{
		Method:               "pearson",
		Columns:              make([]string, 0, len(cols)),
		Values:               make(map[string]map[string]*float64, len(cols)),
		HighCorrelationPairs: []analysis.CorrelationPair{},
		Threshold:            a.opts.Threshold,
	}
	if len(cols) < 2 {
		return m, nil
	}

	for _, c := range cols {
		m.Columns = append(m.Columns, c.Name)
		m.Values[c.Name] = make(map[string]*float64, len(cols))
	}

	var pairs []analysis.CorrelationPair
	for i, ci := range cols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.Values[ci.Name][ci.Name] = a.diagonal(ci.Numeric.Values)

		for _, cj := range cols[i+1:] {
			r, ok := Pearson(ci.Numeric.Values, cj.Numeric.Values, a.opts.MinObservations)
			if !ok {
				m.Values[ci.Name][cj.Name] = nil
				m.Values[cj.Name][ci.Name] = nil
				continue
			}
			m.Values[ci.Name][cj.Name] = &r
			m.Values[cj.Name][ci.Name] = &r

			if math.Abs(r) >= a.opts.Threshold {
				first, second := ci.Name, cj.Name
				if second < first {
					first, second = second, first
				}
				pairs = append(pairs, analysis.CorrelationPair{
					A:           first,
					B:           second,
					Coefficient: r,
					Strength:    analysis.CorrelationStrength(r),
				})
			}
		}
	}

	SortPairs(pairs)
	if a.opts.MaxPairs > 0 && len(pairs) > a.opts.MaxPairs {
		pairs = pairs[:a.opts.MaxPairs]
	}
	if pairs != nil {
		m.HighCorrelationPairs = pairs
	}

	if target, ok := dp.Target(); ok && target.Type == profile.TypeNumeric {
		m.TargetCorrelations = TargetCorrelations(dp, target, a.opts.MinObservations)
	}
	return m, nil
}

func (a *Analyzer) diagonal(values []float64) *float64 {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			xs = append(xs, v)
		}
	}
	if len(xs) < a.opts.MinObservations || stat.Variance(xs, nil) == 0 {
		return nil
	}
	one := 1.0
	return &one
}

// SortPairs orders by absolute coefficient, then by column names.
func SortPairs(pairs []analysis.CorrelationPair) {
	sort.Slice(pairs, func(i, j int) bool {
		ai, aj := math.Abs(pairs[i].Coefficient), math.Abs(pairs[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}

// TargetCorrelations ranks every other numeric column by |r| with the target.
// Undetermined coefficients are left out.
func TargetCorrelations(dp *profile.DatasetProfile, target *profile.ColumnProfile, minObs int) []analysis.TargetCorrelation {
	var out []analysis.TargetCorrelation
	for _, c := range dp.NumericFeatures(true) {
		r, ok := Pearson(c.Numeric.Values, target.Numeric.Values, minObs)
		if !ok {
			continue
		}
		out = append(out, analysis.TargetCorrelation{Column: c.Name, Coefficient: r})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Coefficient), math.Abs(out[j].Coefficient)
		if ai != aj {
			return ai > aj
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Pearson correlates two row-aligned columns over rows where both are
// present. It reports false when the overlap is shorter than minObs or
// either side is constant on the overlap.
func Pearson(x, y []float64, minObs int) (float64, bool) {
	n := min(len(x), len(y))
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < max(2, minObs) {
		return 0, false
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return 0, false
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}
