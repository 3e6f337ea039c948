package config

import (
	"testing"
	"time"

	"datalens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "OPENAI_API_KEY", "PORT", "GIN_MODE", "DATA_DIR", "ANALYSIS_TIMEOUT", "ANALYSIS_WORKERS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.HasDatabase())
	assert.False(t, cfg.HasLLM())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Data.Dir)
	assert.Equal(t, 2*time.Minute, cfg.Analysis.Timeout)
	assert.Equal(t, 4, cfg.Analysis.Workers)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/datalens?sslmode=disable")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ANALYSIS_TIMEOUT", "45s")
	t.Setenv("ANALYSIS_WORKERS", "8")
	t.Setenv("GIN_MODE", "release")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HasDatabase())
	assert.True(t, cfg.HasLLM())
	assert.Equal(t, 45*time.Second, cfg.Analysis.Timeout)
	assert.Equal(t, 8, cfg.Analysis.Workers)
	assert.Equal(t, "release", cfg.Server.GinMode)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("GIN_MODE", "verbose")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
	assert.Contains(t, err.Error(), "GinMode")
}
