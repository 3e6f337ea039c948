package configuration

import (
	"sort"
	"strings"

	"datalens/domain/analysis"
)

// DefaultThresholds returns the stock cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CorrelationThreshold:     0.7,
		MinPairObservations:      2,
		CategoricalRatio:         0.5,
		MaxCategoryLength:        50,
		TopCategories:            5,
		SkewThreshold:            1.0,
		OneHotMaxRatio:           0.05,
		TargetEncodingMaxRatio:   0.3,
		MissingIndicatorPct:      20,
		DropColumnMissingPct:     50,
		MaxClassificationClasses: 20,
		TopKTargetFeatures:       5,
		IQRMultiplier:            1.5,
		ZScoreThreshold:          3,
		Contamination:            0.05,
		IsolationTrees:           100,
		IsolationSampleSize:      256,
		Seed:                     42,
	}
}

// Default is the configuration used when an owner has none stored.
func Default() *AnalysisConfiguration {
	c := &AnalysisConfiguration{
		Name:                      "Default",
		SchemaVersion:             SchemaVersion,
		IncludeCorrelationHeatmap: true,
		IncludeMissingValuesChart: true,
		IncludeDistributionPlots:  true,
		IncludeOutlierDetection:   true,
		MaxCorrelationPairs:       10,
		MaxModelRecommendations:   5,
		OutlierMethod:             analysis.OutlierIQR,
		Thresholds:                DefaultThresholds(),
	}
	c.SetAll(true)
	return c
}

// Quick covers the essentials only.
func Quick() *AnalysisConfiguration {
	c := Default()
	c.Name = "Quick Analysis"
	c.Description = "Essential analysis only"
	c.ShowColumnAnalysis = false
	c.ShowPreprocessingRecommendations = false
	c.ShowVisualizations = false
	c.ShowAIInsights = false
	c.IncludeDistributionPlots = false
	c.IncludeOutlierDetection = false
	c.MaxCorrelationPairs = 5
	c.MaxModelRecommendations = 3
	return c
}

// Comprehensive turns everything on at full depth.
func Comprehensive() *AnalysisConfiguration {
	c := Default()
	c.Name = "Comprehensive Analysis"
	c.Description = "Full analysis with advanced statistics"
	c.MaxCorrelationPairs = 20
	c.MaxModelRecommendations = 8
	c.IncludeAdvancedStats = true
	return c
}

// Minimal keeps the dataset overview and missing-value analysis.
func Minimal() *AnalysisConfiguration {
	c := Default()
	c.Name = "Minimal Analysis"
	c.Description = "Basic overview only"
	c.SetAll(false)
	c.ShowMissingAnalysis = true
	c.IncludeCorrelationHeatmap = false
	c.IncludeDistributionPlots = false
	c.IncludeOutlierDetection = false
	c.MaxCorrelationPairs = 3
	c.MaxModelRecommendations = 2
	return c
}

var presets = map[string]func() *AnalysisConfiguration{
	"default":       Default,
	"quick":         Quick,
	"comprehensive": Comprehensive,
	"minimal":       Minimal,
}

// Preset looks up a built-in configuration by name.
func Preset(name string) (*AnalysisConfiguration, bool) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// PresetNames lists built-in presets alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
