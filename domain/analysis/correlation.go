package analysis

import "math"

// CorrelationMatrix is a symmetric coefficient table over numeric columns.
// A nil coefficient means the pair could not be determined.
type CorrelationMatrix struct {
	Method               string                         `json:"method"`
	Columns              []string                       `json:"columns"`
	Values               map[string]map[string]*float64 `json:"matrix"`
	HighCorrelationPairs []CorrelationPair              `json:"high_correlation_pairs"`
	TargetCorrelations   []TargetCorrelation            `json:"target_correlations,omitempty"`
	Threshold            float64                        `json:"threshold"`
}

// Coefficient looks up a pair in either order.
func (m *CorrelationMatrix) Coefficient(a, b string) (float64, bool) {
	row, ok := m.Values[a]
	if !ok {
		return 0, false
	}
	v, ok := row[b]
	if !ok || v == nil {
		return 0, false
	}
	return *v, true
}

// CorrelationPair is one unordered column pair; A sorts before B.
type CorrelationPair struct {
	A           string  `json:"column_a"`
	B           string  `json:"column_b"`
	Coefficient float64 `json:"correlation"`
	Strength    string  `json:"strength"`
}

// TargetCorrelation is a predictor's coefficient against the target.
type TargetCorrelation struct {
	Column      string  `json:"column"`
	Coefficient float64 `json:"correlation"`
}

// CorrelationStrength buckets an absolute coefficient.
func CorrelationStrength(r float64) string {
	a := math.Abs(r)
	switch {
	case a >= 0.9:
		return "very strong"
	case a >= 0.7:
		return "strong"
	case a >= 0.5:
		return "moderate"
	case a >= 0.3:
		return "weak"
	default:
		return "negligible"
	}
}
