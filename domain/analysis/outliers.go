package analysis

// OutlierMethod names a detection strategy.
type OutlierMethod string

const (
	OutlierIQR             OutlierMethod = "iqr"
	OutlierZScore          OutlierMethod = "zscore"
	OutlierIsolationForest OutlierMethod = "isolation_forest"
)

// OutlierMethods lists every supported strategy.
var OutlierMethods = []OutlierMethod{OutlierIQR, OutlierZScore, OutlierIsolationForest}

// MaxOutlierIndices caps the representative row indices kept per column.
const MaxOutlierIndices = 50

// ColumnOutliers is the per-column detection result.
type ColumnOutliers struct {
	Count          int      `json:"count"`
	Percentage     float64  `json:"percentage"`
	LowerBound     *float64 `json:"lower_bound,omitempty"`
	UpperBound     *float64 `json:"upper_bound,omitempty"`
	Indices        []int    `json:"indices"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// OutlierReport covers every scanned numeric column.
type OutlierReport struct {
	Method   OutlierMethod             `json:"method"`
	RowCount int                       `json:"row_count"`
	Columns  map[string]ColumnOutliers `json:"columns"`
	Skipped  map[string]string         `json:"skipped,omitempty"`
}

// TotalOutliers sums counts over all columns.
func (r *OutlierReport) TotalOutliers() int {
	total := 0
	for _, c := range r.Columns {
		total += c.Count
	}
	return total
}

// OutlierRecommendation maps an outlier share to follow-up advice.
func OutlierRecommendation(percentage float64) string {
	switch {
	case percentage <= 0:
		return ""
	case percentage > 10:
		return "investigate data collection process"
	case percentage >= 5:
		return "consider robust scaling"
	default:
		return "safe to drop or cap"
	}
}
