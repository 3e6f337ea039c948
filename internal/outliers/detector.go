package outliers

import (
	"context"
	"fmt"
	"math"
	"sort"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/profile"
)

// Detector flags outlying rows in every numeric, non-identifier column.
type Detector interface {
	Method() analysis.OutlierMethod
	Detect(ctx context.Context, dp *profile.DatasetProfile) (*analysis.OutlierReport, error)
}

// Options carries the tunables of all strategies.
type Options struct {
	IQRMultiplier   float64
	ZScoreThreshold float64
	Contamination   float64
	Trees           int
	SampleSize      int
	Seed            uint64
}

// OptionsFromThresholds derives detector options from a configuration.
func OptionsFromThresholds(t configuration.Thresholds) Options {
	return Options{
		IQRMultiplier:   t.IQRMultiplier,
		ZScoreThreshold: t.ZScoreThreshold,
		Contamination:   t.Contamination,
		Trees:           t.IsolationTrees,
		SampleSize:      t.IsolationSampleSize,
		Seed:            t.Seed,
	}
}

// DefaultOptions returns the stock tunables.
func DefaultOptions() Options {
	return OptionsFromThresholds(configuration.DefaultThresholds())
}

// New returns the detector registered under method.
func New(method analysis.OutlierMethod, opts Options) (Detector, error) {
	switch method {
	case analysis.OutlierIQR:
		return &columnDetector{method: method, scan: iqrScanner(opts.IQRMultiplier)}, nil
	case analysis.OutlierZScore:
		return &columnDetector{method: method, scan: zscoreScanner(opts.ZScoreThreshold)}, nil
	case analysis.OutlierIsolationForest:
		return &columnDetector{method: method, scan: isolationScanner(opts)}, nil
	}
	return nil, core.NewUnsupportedMethodError("outlier detection", string(method))
}

// flag is one outlying row and how far out it sits.
type flag struct {
	row      int
	severity float64
}

// scanResult is what a strategy reports for a single column.
type scanResult struct {
	flags      []flag
	lower      *float64
	upper      *float64
	skipReason string
}

type columnScanner func(ctx context.Context, name string, ns *profile.NumericStats) (scanResult, error)

type columnDetector struct {
	method analysis.OutlierMethod
	scan   columnScanner
}

func (d *columnDetector) Method() analysis.OutlierMethod { return d.method }

func (d *columnDetector) Detect(ctx context.Context, dp *profile.DatasetProfile) (*analysis.OutlierReport, error) {
	report := &analysis.OutlierReport{
		Method:   d.method,
		RowCount: dp.RowCount,
		Columns:  make(map[string]analysis.ColumnOutliers),
	}

	for _, col := range dp.ColumnsOfType(profile.TypeNumeric) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := d.scan(ctx, col.Name, col.Numeric)
		if err != nil {
			return nil, fmt.Errorf("%s on column %q: %w", d.method, col.Name, err)
		}
		if res.skipReason != "" {
			if report.Skipped == nil {
				report.Skipped = make(map[string]string)
			}
			report.Skipped[col.Name] = res.skipReason
			continue
		}
		report.Columns[col.Name] = summarize(res, dp.RowCount)
	}
	return report, nil
}

// summarize keeps the most extreme rows, reported in row order.
func summarize(res scanResult, rowCount int) analysis.ColumnOutliers {
	co := analysis.ColumnOutliers{
		Count:      len(res.flags),
		LowerBound: res.lower,
		UpperBound: res.upper,
		Indices:    []int{},
	}
	if rowCount > 0 {
		co.Percentage = float64(co.Count) / float64(rowCount) * 100
	}
	co.Recommendation = analysis.OutlierRecommendation(co.Percentage)

	flags := append([]flag(nil), res.flags...)
	sort.Slice(flags, func(i, j int) bool {
		if flags[i].severity != flags[j].severity {
			return flags[i].severity > flags[j].severity
		}
		return flags[i].row < flags[j].row
	})
	if len(flags) > analysis.MaxOutlierIndices {
		flags = flags[:analysis.MaxOutlierIndices]
	}
	for _, f := range flags {
		co.Indices = append(co.Indices, f.row)
	}
	sort.Ints(co.Indices)
	return co
}

// present returns non-missing values and their row indices.
func present(values []float64) ([]float64, []int) {
	xs := make([]float64, 0, len(values))
	rows := make([]int, 0, len(values))
	for r, v := range values {
		if math.IsNaN(v) {
			continue
		}
		xs = append(xs, v)
		rows = append(rows, r)
	}
	return xs, rows
}

func ptr(v float64) *float64 { return &v }
