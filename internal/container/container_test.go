package container

import (
	"context"
	"testing"
	"time"

	"datalens/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig(dir string) *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: "0", GinMode: "test"},
		Data:     config.DataConfig{Dir: dir},
		Analysis: config.AnalysisConfig{Timeout: time.Minute, Workers: 2},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestNewWithoutDatabaseUsesMemoryStores(t *testing.T) {
	c, err := New(context.Background(), memoryConfig(t.TempDir()))
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.DB)
	assert.Nil(t, c.Catalog)
	assert.Nil(t, c.DatasetService)
	assert.NotNil(t, c.ReportService)
	assert.Equal(t, "rule_based", c.Narrator.Name())
	assert.NotNil(t, c.Metrics)
	assert.NotNil(t, c.Server().Handler())
}

func TestNewWithLLMKeyUsesLLMNarrator(t *testing.T) {
	cfg := memoryConfig(t.TempDir())
	cfg.Metrics.Enabled = false
	cfg.AI.OpenAIKey = "sk-test"
	cfg.AI.Model = "gpt-4.1-mini"

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "llm:gpt-4.1-mini", c.Narrator.Name())
	assert.Nil(t, c.Metrics)
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}
