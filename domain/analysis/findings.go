package analysis

// Findings is the structured digest handed to a narrator.
type Findings struct {
	RowCount              int               `json:"row_count"`
	ColumnCount           int               `json:"column_count"`
	NumericColumns        int               `json:"numeric_columns"`
	CategoricalColumns    int               `json:"categorical_columns"`
	MissingCellPercentage float64           `json:"missing_cell_percentage"`
	DuplicateRowCount     int               `json:"duplicate_row_count"`
	QualityScore          float64           `json:"quality_score"`
	TargetColumn          string            `json:"target_column,omitempty"`
	ProblemType           ProblemType       `json:"problem_type,omitempty"`
	TopModel              string            `json:"top_model,omitempty"`
	SkewedColumns         []string          `json:"skewed_columns,omitempty"`
	HighMissingColumns    []string          `json:"high_missing_columns,omitempty"`
	OutlierColumns        []string          `json:"outlier_columns,omitempty"`
	HighCorrelations      []CorrelationPair `json:"high_correlations,omitempty"`
	TopSuggestions        []Suggestion      `json:"top_suggestions,omitempty"`
	KeyFindings           []string          `json:"key_findings"`
	Recommendations       []string          `json:"recommendations"`
	Difficulty            string            `json:"difficulty"`
	EstimatedEffort       string            `json:"estimated_effort"`
}
