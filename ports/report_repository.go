package ports

import (
	"context"

	"datalens/domain/core"
	"datalens/domain/report"
)

// ReportRepository stores assembled reports.
type ReportRepository interface {
	Save(ctx context.Context, rec *report.Record) error
	Get(ctx context.Context, owner core.OwnerID, id core.ReportID) (*report.Record, error)
	ListByDataset(ctx context.Context, owner core.OwnerID, handle string, limit int) ([]*report.Record, error)
}
