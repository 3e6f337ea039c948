package report

import (
	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/profile"
)

// SchemaVersion of the serialized report.
const SchemaVersion = 1

// ConfigurationRef identifies the configuration a report was built with.
type ConfigurationRef struct {
	ID      core.ConfigurationID `json:"id,omitempty"`
	Name    string               `json:"name"`
	Version int                  `json:"version"`
}

// AnalysisReport is the assembled output. The envelope (schema_version,
// dataset_handle, fingerprint, configuration, generated_at) and dataset_info
// are always present; target_column is set when a target was resolved.
// Optional sections are present only when enabled and successfully computed.
type AnalysisReport struct {
	SchemaVersion int              `json:"schema_version"`
	DatasetHandle string           `json:"dataset_handle"`
	Fingerprint   core.Hash        `json:"fingerprint"`
	Configuration ConfigurationRef `json:"configuration"`
	TargetColumn  string           `json:"target_column,omitempty"`
	GeneratedAt   core.Timestamp   `json:"generated_at"`

	DatasetInfo                  *profile.DatasetProfile     `json:"dataset_info"`
	MissingAnalysis              *MissingAnalysis            `json:"missing_analysis,omitempty"`
	ColumnAnalysis               *ColumnAnalysis             `json:"column_analysis,omitempty"`
	StatisticalSummary           *StatisticalSummary         `json:"statistical_summary,omitempty"`
	CorrelationData              *analysis.CorrelationMatrix `json:"correlation_data,omitempty"`
	ModelRecommendations         *analysis.ModelAdvice       `json:"model_recommendations,omitempty"`
	PreprocessingRecommendations *Preprocessing              `json:"preprocessing_recommendations,omitempty"`
	Visualizations               *Visualizations             `json:"visualizations,omitempty"`
	AIInsights                   *AIInsights                 `json:"ai_insights,omitempty"`
}

// Has reports whether a section is present in the report.
func (r *AnalysisReport) Has(s configuration.Section) bool {
	switch s {
	case configuration.SectionMissingAnalysis:
		return r.MissingAnalysis != nil
	case configuration.SectionColumnAnalysis:
		return r.ColumnAnalysis != nil
	case configuration.SectionStatisticalSummary:
		return r.StatisticalSummary != nil
	case configuration.SectionCorrelationData:
		return r.CorrelationData != nil
	case configuration.SectionModelRecommendations:
		return r.ModelRecommendations != nil
	case configuration.SectionPreprocessingRecommendations:
		return r.PreprocessingRecommendations != nil
	case configuration.SectionVisualizations:
		return r.Visualizations != nil
	case configuration.SectionAIInsights:
		return r.AIInsights != nil
	}
	return false
}

// MissingPattern is a pair of columns whose cells tend to be missing together.
type MissingPattern struct {
	Columns     []string `json:"columns"`
	Correlation float64  `json:"correlation"`
}

type MissingAnalysis struct {
	MissingCounts         map[string]int     `json:"missing_counts"`
	MissingPercentages    map[string]float64 `json:"missing_percentages"`
	ColumnsWithMissing    []string           `json:"columns_with_missing"`
	CompleteColumns       []string           `json:"complete_columns"`
	CompleteRowCount      int                `json:"complete_row_count"`
	Patterns              []MissingPattern   `json:"patterns,omitempty"`
	DropCandidates        []string           `json:"drop_candidates,omitempty"`
	TotalMissingCells     int                `json:"total_missing_cells"`
	MissingCellPercentage float64            `json:"missing_cell_percentage"`
}

type ColumnAnalysis struct {
	NumericColumns         []string          `json:"numeric_columns"`
	CategoricalColumns     []string          `json:"categorical_columns"`
	BooleanColumns         []string          `json:"boolean_columns"`
	DatetimeColumns        []string          `json:"datetime_columns"`
	TextColumns            []string          `json:"text_columns"`
	IdentifierColumns      []string          `json:"identifier_columns"`
	PotentialTargets       []string          `json:"potential_target_columns"`
	HighCardinalityColumns []string          `json:"high_cardinality_columns"`
	BinaryColumns          []string          `json:"binary_columns"`
	ConstantColumns        []string          `json:"constant_columns"`
	Types                  map[string]string `json:"column_types"`
}

// NumericSummary is the describe()-style block for one numeric column.
type NumericSummary struct {
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	StdDev   float64  `json:"std"`
	Min      float64  `json:"min"`
	Q1       float64  `json:"q1"`
	Median   float64  `json:"median"`
	Q3       float64  `json:"q3"`
	Max      float64  `json:"max"`
	Skewness *float64 `json:"skewness,omitempty"`
	Kurtosis *float64 `json:"kurtosis,omitempty"`
}

type CategoricalSummary struct {
	Unique       int                         `json:"unique"`
	MostFrequent string                      `json:"most_frequent"`
	Frequency    int                         `json:"frequency"`
	TopValues    []profile.CategoryFrequency `json:"top_values"`
}

type StatisticalSummary struct {
	Numeric     map[string]NumericSummary     `json:"numeric"`
	Categorical map[string]CategoricalSummary `json:"categorical"`
	Outliers    *analysis.OutlierReport       `json:"outliers,omitempty"`
}

type Preprocessing struct {
	Suggestions []analysis.Suggestion `json:"suggestions"`
	Summary     map[string]int        `json:"summary"`
}

type Visualizations struct {
	Charts []analysis.ChartSpec `json:"charts"`
}

type AIInsights struct {
	Summary         string   `json:"summary"`
	KeyFindings     []string `json:"key_findings"`
	Recommendations []string `json:"recommendations"`
	Difficulty      string   `json:"difficulty"`
	EstimatedEffort string   `json:"estimated_effort"`
	Source          string   `json:"source"`
}
