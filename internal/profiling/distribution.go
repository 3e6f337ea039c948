package profiling

import (
	"math"
	"sort"

	"datalens/domain/profile"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// numericStats computes descriptive statistics over non-missing values.
// values is aligned to row index with NaN for missing cells.
func numericStats(values []float64) *profile.NumericStats {
	data := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}

	ns := &profile.NumericStats{Values: values, AllIntegers: true}
	if len(data) == 0 {
		return ns
	}

	for _, v := range data {
		if v == 0 {
			ns.ZeroCount++
		}
		if v < 0 {
			ns.NegativeCount++
		}
		if v != math.Trunc(v) {
			ns.AllIntegers = false
		}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	ns.Mean, _ = stats.Mean(data)
	ns.Min, _ = stats.Min(data)
	ns.Max, _ = stats.Max(data)
	ns.Median, _ = stats.Median(data)
	ns.Q1 = stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	ns.Q3 = stat.Quantile(0.75, stat.LinInterp, sorted, nil)
	ns.IQR = ns.Q3 - ns.Q1

	if len(data) >= 2 {
		ns.StdDev, _ = stats.StandardDeviationSample(data)
	}
	popStd, _ := stats.StandardDeviationPopulation(data)
	if popStd > 0 {
		ns.Skewness = calculateSkewness(data, ns.Mean, popStd)
		if len(data) >= 4 {
			ns.Kurtosis = finiteOrZero(stat.ExKurtosis(data, nil))
		}
	}
	ns.StdDev = finiteOrZero(ns.StdDev)
	return ns
}

// calculateSkewness returns the adjusted Fisher-Pearson coefficient.
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0
	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	return finiteOrZero(skewness * correction)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
