package outliers

import (
	"context"
	"math"

	"datalens/domain/profile"

	"gonum.org/v1/gonum/stat"
)

// zscoreScanner flags |z| > threshold using population mean and deviation.
// Zero-variance columns are skipped rather than reported as clean.
func zscoreScanner(threshold float64) columnScanner {
	return func(_ context.Context, _ string, ns *profile.NumericStats) (scanResult, error) {
		xs, rows := present(ns.Values)
		if len(xs) < 2 {
			return scanResult{skipReason: "insufficient data"}, nil
		}

		mean, std := stat.PopMeanStdDev(xs, nil)
		if std == 0 || math.IsNaN(std) {
			return scanResult{skipReason: "zero variance"}, nil
		}

		res := scanResult{lower: ptr(mean - threshold*std), upper: ptr(mean + threshold*std)}
		for i, x := range xs {
			z := math.Abs((x - mean) / std)
			if z > threshold {
				res.flags = append(res.flags, flag{row: rows[i], severity: z})
			}
		}
		return res, nil
	}
}
