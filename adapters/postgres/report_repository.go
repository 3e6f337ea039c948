package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"datalens/domain/core"
	"datalens/domain/report"
	"datalens/ports"

	"github.com/jmoiron/sqlx"
)

type reportRow struct {
	ID            string    `db:"id"`
	OwnerID       string    `db:"owner_id"`
	DatasetHandle string    `db:"dataset_handle"`
	State         string    `db:"state"`
	Partial       bool      `db:"partial"`
	Result        []byte    `db:"result"`
	CreatedAt     time.Time `db:"created_at"`
}

// ReportRepository stores assembled reports as JSONB.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Save(ctx context.Context, rec *report.Record) error {
	if rec.Result.Report == nil {
		return fmt.Errorf("refusing to save report %s without content", rec.ID)
	}
	raw, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = core.Now()
	}
	row := reportRow{
		ID:            rec.ID.String(),
		OwnerID:       rec.OwnerID.String(),
		DatasetHandle: rec.Result.Report.DatasetHandle,
		State:         string(rec.Result.State),
		Partial:       rec.Result.Partial,
		Result:        raw,
		CreatedAt:     rec.CreatedAt.Time(),
	}
	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO analysis_reports (id, owner_id, dataset_handle, state, partial, result, created_at)
		VALUES (:id, :owner_id, :dataset_handle, :state, :partial, :result, :created_at)`, row)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (r *ReportRepository) Get(ctx context.Context, owner core.OwnerID, id core.ReportID) (*report.Record, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, owner_id, dataset_handle, state, partial, result, created_at
		FROM analysis_reports WHERE owner_id = $1 AND id = $2`, owner, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return row.decode()
}

func (r *ReportRepository) ListByDataset(ctx context.Context, owner core.OwnerID, handle string, limit int) ([]*report.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []reportRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, owner_id, dataset_handle, state, partial, result, created_at
		FROM analysis_reports WHERE owner_id = $1 AND dataset_handle = $2
		ORDER BY created_at DESC LIMIT $3`, owner, handle, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	out := make([]*report.Record, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].decode()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (row *reportRow) decode() (*report.Record, error) {
	rec := &report.Record{
		ID:        core.ReportID(row.ID),
		OwnerID:   core.OwnerID(row.OwnerID),
		CreatedAt: core.NewTimestamp(row.CreatedAt),
	}
	if err := json.Unmarshal(row.Result, &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report %s: %w", row.ID, err)
	}
	return rec, nil
}
