package memory

import (
	"context"
	"sort"
	"sync"

	"datalens/domain/core"
	"datalens/domain/report"
	"datalens/ports"
)

// ReportRepository keeps saved reports in insertion order.
type ReportRepository struct {
	mu      sync.RWMutex
	records []*report.Record
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository() *ReportRepository {
	return &ReportRepository{}
}

func (r *ReportRepository) Save(ctx context.Context, rec *report.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = core.Now()
	}
	cp := *rec
	r.mu.Lock()
	r.records = append(r.records, &cp)
	r.mu.Unlock()
	return nil
}

func (r *ReportRepository) Get(ctx context.Context, owner core.OwnerID, id core.ReportID) (*report.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.records {
		if rec.ID == id && rec.OwnerID == owner {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, core.ErrReportNotFound
}

func (r *ReportRepository) ListByDataset(ctx context.Context, owner core.OwnerID, handle string, limit int) ([]*report.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	var out []*report.Record
	for _, rec := range r.records {
		if rec.OwnerID == owner && rec.Result.Report != nil && rec.Result.Report.DatasetHandle == handle {
			cp := *rec
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
