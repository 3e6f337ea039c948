package outliers

import (
	"context"
	"math"

	"datalens/domain/profile"
)

// iqrScanner flags values outside [Q1 - k*IQR, Q3 + k*IQR].
func iqrScanner(k float64) columnScanner {
	return func(_ context.Context, _ string, ns *profile.NumericStats) (scanResult, error) {
		lower := ns.Q1 - k*ns.IQR
		upper := ns.Q3 + k*ns.IQR

		res := scanResult{lower: ptr(lower), upper: ptr(upper)}
		for r, v := range ns.Values {
			if math.IsNaN(v) {
				continue
			}
			switch {
			case v < lower:
				res.flags = append(res.flags, flag{row: r, severity: lower - v})
			case v > upper:
				res.flags = append(res.flags, flag{row: r, severity: v - upper})
			}
		}
		return res, nil
	}
}
