package migration

import (
	"context"
	"log"

	"datalens/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// step is one idempotent schema change.
type step struct {
	name string
	sql  string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
	steps   []step
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
		steps:   schema,
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, s := range r.steps {
		if _, err := db.ExecContext(ctx, s.sql); err != nil {
			return errors.Wrapf(err, "failed to %s", s.name)
		}
		log.Printf("[Migration] %s", s.name)
	}
	return nil
}

var schema = []step{
	{"create datasets table", `
		CREATE TABLE IF NOT EXISTS datasets (
			handle VARCHAR(255) PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			original_filename VARCHAR(500) NOT NULL,
			file_path TEXT,
			format VARCHAR(10) NOT NULL DEFAULT 'csv',
			sheet_name VARCHAR(255),
			record_count INTEGER NOT NULL DEFAULT 0,
			field_count INTEGER NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'processing',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create analysis_configurations table", `
		CREATE TABLE IF NOT EXISTS analysis_configurations (
			id VARCHAR(64) PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			schema_version INTEGER NOT NULL DEFAULT 1,
			version INTEGER NOT NULL DEFAULT 0,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			show_missing_analysis BOOLEAN NOT NULL DEFAULT TRUE,
			show_column_analysis BOOLEAN NOT NULL DEFAULT TRUE,
			show_statistical_summary BOOLEAN NOT NULL DEFAULT TRUE,
			show_correlation_analysis BOOLEAN NOT NULL DEFAULT TRUE,
			show_model_recommendations BOOLEAN NOT NULL DEFAULT TRUE,
			show_preprocessing_recommendations BOOLEAN NOT NULL DEFAULT TRUE,
			show_visualizations BOOLEAN NOT NULL DEFAULT TRUE,
			show_ai_insights BOOLEAN NOT NULL DEFAULT TRUE,
			include_correlation_heatmap BOOLEAN NOT NULL DEFAULT TRUE,
			include_missing_values_chart BOOLEAN NOT NULL DEFAULT TRUE,
			include_distribution_plots BOOLEAN NOT NULL DEFAULT TRUE,
			include_outlier_detection BOOLEAN NOT NULL DEFAULT TRUE,
			max_correlation_pairs INTEGER NOT NULL DEFAULT 10 CHECK (max_correlation_pairs BETWEEN 1 AND 50),
			max_model_recommendations INTEGER NOT NULL DEFAULT 5 CHECK (max_model_recommendations BETWEEN 1 AND 20),
			include_advanced_stats BOOLEAN NOT NULL DEFAULT FALSE,
			outlier_method VARCHAR(32) NOT NULL DEFAULT 'iqr',
			thresholds JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create one-default-per-owner index", `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_analysis_configurations_one_default
		ON analysis_configurations(owner_id) WHERE is_default`},
	{"create analysis_configurations owner index", `
		CREATE INDEX IF NOT EXISTS idx_analysis_configurations_owner
		ON analysis_configurations(owner_id, updated_at DESC)`},
	{"create analysis_reports table", `
		CREATE TABLE IF NOT EXISTS analysis_reports (
			id VARCHAR(64) PRIMARY KEY,
			owner_id VARCHAR(255) NOT NULL,
			dataset_handle VARCHAR(255) NOT NULL,
			state VARCHAR(20) NOT NULL,
			partial BOOLEAN NOT NULL DEFAULT FALSE,
			result JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`},
	{"create analysis_reports dataset index", `
		CREATE INDEX IF NOT EXISTS idx_analysis_reports_dataset
		ON analysis_reports(owner_id, dataset_handle, created_at DESC)`},
}
