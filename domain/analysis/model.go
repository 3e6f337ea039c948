package analysis

// ProblemType is the learning task implied by the target column.
type ProblemType string

const (
	ProblemClassification ProblemType = "classification"
	ProblemRegression     ProblemType = "regression"
	ProblemClustering     ProblemType = "clustering"
)

// SizeBucket buckets row counts.
type SizeBucket string

const (
	SizeSmall  SizeBucket = "small"
	SizeMedium SizeBucket = "medium"
	SizeLarge  SizeBucket = "large"
)

// Complexity buckets the feature space.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// ModelRecommendation is one ranked model family.
type ModelRecommendation struct {
	Family        string      `json:"family"`
	Priority      Priority    `json:"priority"`
	ProblemType   ProblemType `json:"problem_type"`
	DistanceBased bool        `json:"distance_based"`
	Rationale     string      `json:"rationale"`
	Preprocessing []string    `json:"preprocessing,omitempty"`
}

// ModelAdvice is the output of the model advisor.
type ModelAdvice struct {
	ProblemType      ProblemType           `json:"problem_type"`
	TargetColumn     string                `json:"target_column,omitempty"`
	ClassCount       int                   `json:"class_count,omitempty"`
	SizeBucket       SizeBucket            `json:"size_bucket"`
	Complexity       Complexity            `json:"complexity"`
	FeatureCount     int                   `json:"feature_count"`
	CategoricalHeavy bool                  `json:"categorical_heavy"`
	Recommendations  []ModelRecommendation `json:"recommendations"`
}

// AnyDistanceBased reports whether a recommended family depends on feature scale.
func (a *ModelAdvice) AnyDistanceBased() bool {
	if a == nil {
		return false
	}
	for _, r := range a.Recommendations {
		if r.DistanceBased {
			return true
		}
	}
	return false
}
