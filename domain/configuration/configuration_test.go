package configuration

import (
	"testing"

	"datalens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, ok := Preset(name)
			require.True(t, ok)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestPresetLookupIsCaseInsensitive(t *testing.T) {
	cfg, ok := Preset(" Quick ")
	require.True(t, ok)
	assert.Equal(t, "Quick Analysis", cfg.Name)

	_, ok = Preset("exhaustive")
	assert.False(t, ok)
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AnalysisConfiguration)
	}{
		{"too many pairs", func(c *AnalysisConfiguration) { c.MaxCorrelationPairs = 51 }},
		{"zero pairs", func(c *AnalysisConfiguration) { c.MaxCorrelationPairs = 0 }},
		{"too many models", func(c *AnalysisConfiguration) { c.MaxModelRecommendations = 21 }},
		{"missing name", func(c *AnalysisConfiguration) { c.Name = "" }},
		{"inverted encoding ratios", func(c *AnalysisConfiguration) { c.Thresholds.TargetEncodingMaxRatio = 0.01 }},
		{"future schema", func(c *AnalysisConfiguration) { c.SchemaVersion = SchemaVersion + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func TestSetAllControlsEverySection(t *testing.T) {
	cfg := Default()
	cfg.SetAll(false)
	for _, s := range Sections {
		assert.False(t, cfg.Enabled(s), s)
	}
	cfg.SetAll(true)
	for _, s := range Sections {
		assert.True(t, cfg.Enabled(s), s)
	}
}

func TestMinimalKeepsOnlyMissingAnalysis(t *testing.T) {
	cfg := Minimal()
	for _, s := range Sections {
		assert.Equal(t, s == SectionMissingAnalysis, cfg.Enabled(s), s)
	}
}
