package configuration

import (
	"time"

	"datalens/domain/analysis"
	"datalens/domain/core"
)

// SchemaVersion is bumped whenever a field is added to AnalysisConfiguration.
const SchemaVersion = 1

// Section names a toggleable report section.
type Section string

const (
	SectionMissingAnalysis              Section = "missing_analysis"
	SectionColumnAnalysis               Section = "column_analysis"
	SectionStatisticalSummary           Section = "statistical_summary"
	SectionCorrelationData              Section = "correlation_data"
	SectionModelRecommendations         Section = "model_recommendations"
	SectionPreprocessingRecommendations Section = "preprocessing_recommendations"
	SectionVisualizations               Section = "visualizations"
	SectionAIInsights                   Section = "ai_insights"
)

// Sections lists every optional section in report order.
var Sections = []Section{
	SectionMissingAnalysis,
	SectionColumnAnalysis,
	SectionStatisticalSummary,
	SectionCorrelationData,
	SectionModelRecommendations,
	SectionPreprocessingRecommendations,
	SectionVisualizations,
	SectionAIInsights,
}

// AnalysisConfiguration is a closed, versioned set of report options.
type AnalysisConfiguration struct {
	ID            core.ConfigurationID `json:"id" yaml:"id" db:"id"`
	OwnerID       core.OwnerID         `json:"owner_id" yaml:"owner_id" db:"owner_id"`
	Name          string               `json:"name" yaml:"name" db:"name" validate:"required,max=255"`
	Description   string               `json:"description,omitempty" yaml:"description,omitempty" db:"description" validate:"max=1000"`
	SchemaVersion int                  `json:"schema_version" yaml:"schema_version" db:"schema_version" validate:"gte=1"`
	Version       int                  `json:"version" yaml:"version" db:"version" validate:"gte=0"`
	IsDefault     bool                 `json:"is_default" yaml:"is_default" db:"is_default"`

	ShowMissingAnalysis              bool `json:"show_missing_analysis" yaml:"show_missing_analysis" db:"show_missing_analysis"`
	ShowColumnAnalysis               bool `json:"show_column_analysis" yaml:"show_column_analysis" db:"show_column_analysis"`
	ShowStatisticalSummary           bool `json:"show_statistical_summary" yaml:"show_statistical_summary" db:"show_statistical_summary"`
	ShowCorrelationAnalysis          bool `json:"show_correlation_analysis" yaml:"show_correlation_analysis" db:"show_correlation_analysis"`
	ShowModelRecommendations         bool `json:"show_model_recommendations" yaml:"show_model_recommendations" db:"show_model_recommendations"`
	ShowPreprocessingRecommendations bool `json:"show_preprocessing_recommendations" yaml:"show_preprocessing_recommendations" db:"show_preprocessing_recommendations"`
	ShowVisualizations               bool `json:"show_visualizations" yaml:"show_visualizations" db:"show_visualizations"`
	ShowAIInsights                   bool `json:"show_ai_insights" yaml:"show_ai_insights" db:"show_ai_insights"`

	IncludeCorrelationHeatmap bool `json:"include_correlation_heatmap" yaml:"include_correlation_heatmap" db:"include_correlation_heatmap"`
	IncludeMissingValuesChart bool `json:"include_missing_values_chart" yaml:"include_missing_values_chart" db:"include_missing_values_chart"`
	IncludeDistributionPlots  bool `json:"include_distribution_plots" yaml:"include_distribution_plots" db:"include_distribution_plots"`
	IncludeOutlierDetection   bool `json:"include_outlier_detection" yaml:"include_outlier_detection" db:"include_outlier_detection"`

	MaxCorrelationPairs     int                    `json:"max_correlation_pairs" yaml:"max_correlation_pairs" db:"max_correlation_pairs" validate:"gte=1,lte=50"`
	MaxModelRecommendations int                    `json:"max_model_recommendations" yaml:"max_model_recommendations" db:"max_model_recommendations" validate:"gte=1,lte=20"`
	IncludeAdvancedStats    bool                   `json:"include_advanced_stats" yaml:"include_advanced_stats" db:"include_advanced_stats"`
	OutlierMethod           analysis.OutlierMethod `json:"outlier_method" yaml:"outlier_method" db:"outlier_method" validate:"required"`

	Thresholds Thresholds `json:"thresholds" yaml:"thresholds" db:"-" validate:"required"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// Thresholds holds every tunable cut-off used by the analysis components.
type Thresholds struct {
	CorrelationThreshold     float64 `json:"correlation_threshold" yaml:"correlation_threshold" validate:"gt=0,lte=1"`
	MinPairObservations      int     `json:"min_pair_observations" yaml:"min_pair_observations" validate:"gte=2"`
	CategoricalRatio         float64 `json:"categorical_ratio" yaml:"categorical_ratio" validate:"gt=0,lte=1"`
	MaxCategoryLength        int     `json:"max_category_length" yaml:"max_category_length" validate:"gte=1"`
	TopCategories            int     `json:"top_categories" yaml:"top_categories" validate:"gte=1,lte=100"`
	SkewThreshold            float64 `json:"skew_threshold" yaml:"skew_threshold" validate:"gt=0"`
	OneHotMaxRatio           float64 `json:"one_hot_max_ratio" yaml:"one_hot_max_ratio" validate:"gt=0,lte=1"`
	TargetEncodingMaxRatio   float64 `json:"target_encoding_max_ratio" yaml:"target_encoding_max_ratio" validate:"gtfield=OneHotMaxRatio,lte=1"`
	MissingIndicatorPct      float64 `json:"missing_indicator_pct" yaml:"missing_indicator_pct" validate:"gte=0,lte=100"`
	DropColumnMissingPct     float64 `json:"drop_column_missing_pct" yaml:"drop_column_missing_pct" validate:"gtfield=MissingIndicatorPct,lte=100"`
	MaxClassificationClasses int     `json:"max_classification_classes" yaml:"max_classification_classes" validate:"gte=2"`
	TopKTargetFeatures       int     `json:"top_k_target_features" yaml:"top_k_target_features" validate:"gte=2,lte=20"`
	IQRMultiplier            float64 `json:"iqr_multiplier" yaml:"iqr_multiplier" validate:"gt=0"`
	ZScoreThreshold          float64 `json:"zscore_threshold" yaml:"zscore_threshold" validate:"gt=0"`
	Contamination            float64 `json:"contamination" yaml:"contamination" validate:"gt=0,lt=0.5"`
	IsolationTrees           int     `json:"isolation_trees" yaml:"isolation_trees" validate:"gte=1,lte=1000"`
	IsolationSampleSize      int     `json:"isolation_sample_size" yaml:"isolation_sample_size" validate:"gte=2"`
	Seed                     uint64  `json:"seed" yaml:"seed"`
}

// Enabled reports whether a section toggle is on.
func (c *AnalysisConfiguration) Enabled(s Section) bool {
	switch s {
	case SectionMissingAnalysis:
		return c.ShowMissingAnalysis
	case SectionColumnAnalysis:
		return c.ShowColumnAnalysis
	case SectionStatisticalSummary:
		return c.ShowStatisticalSummary
	case SectionCorrelationData:
		return c.ShowCorrelationAnalysis
	case SectionModelRecommendations:
		return c.ShowModelRecommendations
	case SectionPreprocessingRecommendations:
		return c.ShowPreprocessingRecommendations
	case SectionVisualizations:
		return c.ShowVisualizations
	case SectionAIInsights:
		return c.ShowAIInsights
	}
	return false
}

// SetAll switches every section toggle at once.
func (c *AnalysisConfiguration) SetAll(on bool) {
	c.ShowMissingAnalysis = on
	c.ShowColumnAnalysis = on
	c.ShowStatisticalSummary = on
	c.ShowCorrelationAnalysis = on
	c.ShowModelRecommendations = on
	c.ShowPreprocessingRecommendations = on
	c.ShowVisualizations = on
	c.ShowAIInsights = on
}

// Clone returns an independent copy.
func (c *AnalysisConfiguration) Clone() *AnalysisConfiguration {
	cp := *c
	return &cp
}
