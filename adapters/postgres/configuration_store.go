package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// uniqueViolation is the postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// ErrDefaultConflict is returned when a concurrent writer claimed the default slot.
var ErrDefaultConflict = errors.New("another default configuration was set concurrently")

// configurationRow adds the JSON-encoded thresholds to the flat columns.
type configurationRow struct {
	configuration.AnalysisConfiguration
	ThresholdsJSON []byte `db:"thresholds"`
}

const configurationColumns = `id, owner_id, name, COALESCE(description, '') AS description, schema_version, version, is_default,
	show_missing_analysis, show_column_analysis, show_statistical_summary, show_correlation_analysis,
	show_model_recommendations, show_preprocessing_recommendations, show_visualizations, show_ai_insights,
	include_correlation_heatmap, include_missing_values_chart, include_distribution_plots, include_outlier_detection,
	max_correlation_pairs, max_model_recommendations, include_advanced_stats, outlier_method, thresholds,
	created_at, updated_at`

// ConfigurationStore persists analysis configurations in postgres.
// The schema carries a partial unique index on (owner_id) WHERE is_default.
type ConfigurationStore struct {
	db *sqlx.DB
}

func NewConfigurationStore(db *sqlx.DB) ports.ConfigurationStore {
	return &ConfigurationStore{db: db}
}

func (s *ConfigurationStore) List(ctx context.Context, owner core.OwnerID) ([]*configuration.AnalysisConfiguration, error) {
	var rows []configurationRow
	err := s.db.SelectContext(ctx, &rows, `SELECT `+configurationColumns+`
		FROM analysis_configurations WHERE owner_id = $1
		ORDER BY is_default DESC, updated_at DESC, id`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list configurations: %w", err)
	}
	out := make([]*configuration.AnalysisConfiguration, 0, len(rows))
	for i := range rows {
		cfg, err := rows[i].decode()
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}

func (s *ConfigurationStore) Get(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) (*configuration.AnalysisConfiguration, error) {
	return s.getOne(ctx, `SELECT `+configurationColumns+`
		FROM analysis_configurations WHERE owner_id = $1 AND id = $2`, owner, id)
}

func (s *ConfigurationStore) GetDefault(ctx context.Context, owner core.OwnerID) (*configuration.AnalysisConfiguration, error) {
	return s.getOne(ctx, `SELECT `+configurationColumns+`
		FROM analysis_configurations WHERE owner_id = $1 AND is_default`, owner)
}

func (s *ConfigurationStore) getOne(ctx context.Context, query string, args ...interface{}) (*configuration.AnalysisConfiguration, error) {
	var row configurationRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}
	return row.decode()
}

// Save inserts a configuration. When it is flagged default, the owner's
// previous default is cleared in the same transaction.
func (s *ConfigurationStore) Save(ctx context.Context, cfg *configuration.AnalysisConfiguration) error {
	row, err := encodeConfiguration(cfg)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if cfg.IsDefault {
			if err := clearDefault(ctx, tx, cfg.OwnerID); err != nil {
				return err
			}
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO analysis_configurations (
				id, owner_id, name, description, schema_version, version, is_default,
				show_missing_analysis, show_column_analysis, show_statistical_summary, show_correlation_analysis,
				show_model_recommendations, show_preprocessing_recommendations, show_visualizations, show_ai_insights,
				include_correlation_heatmap, include_missing_values_chart, include_distribution_plots, include_outlier_detection,
				max_correlation_pairs, max_model_recommendations, include_advanced_stats, outlier_method, thresholds,
				created_at, updated_at
			) VALUES (
				:id, :owner_id, :name, :description, :schema_version, :version, :is_default,
				:show_missing_analysis, :show_column_analysis, :show_statistical_summary, :show_correlation_analysis,
				:show_model_recommendations, :show_preprocessing_recommendations, :show_visualizations, :show_ai_insights,
				:include_correlation_heatmap, :include_missing_values_chart, :include_distribution_plots, :include_outlier_detection,
				:max_correlation_pairs, :max_model_recommendations, :include_advanced_stats, :outlier_method, :thresholds,
				:created_at, :updated_at
			)`, row)
		if err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		return nil
	})
}

// Update overwrites a stored configuration, matching on owner and id.
func (s *ConfigurationStore) Update(ctx context.Context, cfg *configuration.AnalysisConfiguration) error {
	row, err := encodeConfiguration(cfg)
	if err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if cfg.IsDefault {
			if err := clearDefault(ctx, tx, cfg.OwnerID); err != nil {
				return err
			}
		}
		result, err := tx.NamedExecContext(ctx, `
			UPDATE analysis_configurations SET
				name = :name, description = :description, schema_version = :schema_version,
				version = :version, is_default = :is_default,
				show_missing_analysis = :show_missing_analysis, show_column_analysis = :show_column_analysis,
				show_statistical_summary = :show_statistical_summary, show_correlation_analysis = :show_correlation_analysis,
				show_model_recommendations = :show_model_recommendations,
				show_preprocessing_recommendations = :show_preprocessing_recommendations,
				show_visualizations = :show_visualizations, show_ai_insights = :show_ai_insights,
				include_correlation_heatmap = :include_correlation_heatmap,
				include_missing_values_chart = :include_missing_values_chart,
				include_distribution_plots = :include_distribution_plots,
				include_outlier_detection = :include_outlier_detection,
				max_correlation_pairs = :max_correlation_pairs, max_model_recommendations = :max_model_recommendations,
				include_advanced_stats = :include_advanced_stats, outlier_method = :outlier_method,
				thresholds = :thresholds, updated_at = :updated_at
			WHERE owner_id = :owner_id AND id = :id`, row)
		if err != nil {
			return fmt.Errorf("failed to update configuration: %w", err)
		}
		return requireAffected(result, core.ErrConfigurationNotFound)
	})
}

func (s *ConfigurationStore) Delete(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_configurations WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete configuration: %w", err)
	}
	return requireAffected(result, core.ErrConfigurationNotFound)
}

// SetDefault moves the default flag to id in one transaction.
func (s *ConfigurationStore) SetDefault(ctx context.Context, owner core.OwnerID, id core.ConfigurationID) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := clearDefault(ctx, tx, owner); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE analysis_configurations SET is_default = TRUE, updated_at = NOW()
			WHERE owner_id = $1 AND id = $2`, owner, id)
		if err != nil {
			return fmt.Errorf("failed to set default configuration: %w", err)
		}
		return requireAffected(result, core.ErrConfigurationNotFound)
	})
}

func clearDefault(ctx context.Context, tx *sqlx.Tx, owner core.OwnerID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE analysis_configurations SET is_default = FALSE
		WHERE owner_id = $1 AND is_default`, owner)
	if err != nil {
		return fmt.Errorf("failed to clear default configuration: %w", err)
	}
	return nil
}

func (s *ConfigurationStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDefaultConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func encodeConfiguration(cfg *configuration.AnalysisConfiguration) (*configurationRow, error) {
	raw, err := json.Marshal(cfg.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal thresholds: %w", err)
	}
	return &configurationRow{AnalysisConfiguration: *cfg, ThresholdsJSON: raw}, nil
}

func (r *configurationRow) decode() (*configuration.AnalysisConfiguration, error) {
	cfg := r.AnalysisConfiguration
	// Older rows may predate a threshold; start from the stock values.
	cfg.Thresholds = configuration.DefaultThresholds()
	if len(r.ThresholdsJSON) > 0 {
		if err := json.Unmarshal(r.ThresholdsJSON, &cfg.Thresholds); err != nil {
			return nil, fmt.Errorf("failed to unmarshal thresholds: %w", err)
		}
	}
	return &cfg, nil
}
