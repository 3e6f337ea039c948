package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

const datasetColumns = `handle, owner_id, original_filename, COALESCE(file_path, '') AS file_path, format,
	COALESCE(sheet_name, '') AS sheet_name, record_count, field_count, status, created_at, updated_at`

// Create inserts a new dataset into the catalog
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	now := time.Now().UTC()
	if ds.CreatedAt.IsZero() {
		ds.CreatedAt = now
	}
	ds.UpdatedAt = now
	if ds.Status == "" {
		ds.Status = dataset.StatusProcessing
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO datasets (
			handle, owner_id, original_filename, file_path, format, sheet_name,
			record_count, field_count, status, created_at, updated_at
		) VALUES (
			:handle, :owner_id, :original_filename, :file_path, :format, :sheet_name,
			:record_count, :field_count, :status, :created_at, :updated_at
		)`, ds)
	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByHandle retrieves a catalog entry by its handle
func (r *datasetRepository) GetByHandle(ctx context.Context, handle dataset.Handle) (*dataset.Dataset, error) {
	var ds dataset.Dataset
	err := r.db.GetContext(ctx, &ds, `SELECT `+datasetColumns+` FROM datasets WHERE handle = $1`, handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewDatasetNotFoundError(handle.String())
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return &ds, nil
}

// Locate implements ports.DatasetLocator over the catalog
func (r *datasetRepository) Locate(ctx context.Context, handle dataset.Handle) (*dataset.Location, error) {
	ds, err := r.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if ds.Status == dataset.StatusFailed {
		return nil, core.NewDatasetUnreadableError(handle.String(), fmt.Errorf("dataset ingestion failed"))
	}
	if ds.FilePath == "" {
		return nil, core.NewDatasetUnreadableError(handle.String(), fmt.Errorf("no file recorded"))
	}
	return &dataset.Location{Path: ds.FilePath, Format: ds.Format, SheetName: ds.SheetName}, nil
}

// UpdateShape records row/column counts once a dataset has been read
func (r *datasetRepository) UpdateShape(ctx context.Context, handle dataset.Handle, records, fields int, status dataset.DatasetStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE datasets SET record_count = $2, field_count = $3, status = $4, updated_at = $5
		WHERE handle = $1`, handle, records, fields, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	return requireAffected(result, core.NewDatasetNotFoundError(handle.String()))
}

// Delete removes a dataset from the catalog
func (r *datasetRepository) Delete(ctx context.Context, handle dataset.Handle) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE handle = $1`, handle)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return requireAffected(result, core.NewDatasetNotFoundError(handle.String()))
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
