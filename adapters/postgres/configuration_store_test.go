package postgres

import (
	"testing"

	"datalens/domain/configuration"
	"datalens/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationRowRoundTrip(t *testing.T) {
	cfg := configuration.Comprehensive()
	cfg.ID = core.NewConfigurationID()
	cfg.OwnerID = "alice"
	cfg.Thresholds.SkewThreshold = 1.7

	row, err := encodeConfiguration(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(row.ThresholdsJSON), `"skew_threshold":1.7`)

	decoded, err := row.decode()
	require.NoError(t, err)
	assert.Equal(t, cfg, decoded)
}

func TestConfigurationRowFillsMissingThresholds(t *testing.T) {
	row := &configurationRow{ThresholdsJSON: []byte(`{"skew_threshold":2}`)}

	decoded, err := row.decode()
	require.NoError(t, err)
	assert.Equal(t, 2.0, decoded.Thresholds.SkewThreshold)
	assert.Equal(t, configuration.DefaultThresholds().IQRMultiplier, decoded.Thresholds.IQRMultiplier)
}
