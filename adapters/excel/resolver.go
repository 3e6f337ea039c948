package excel

import (
	"context"
	"errors"
	"log"
	"time"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/ports"
)

// Resolver implements ports.DatasetResolver over CSV and Excel files.
type Resolver struct {
	locator ports.DatasetLocator
	maxRows int
}

func NewResolver(locator ports.DatasetLocator, maxRows int) *Resolver {
	return &Resolver{locator: locator, maxRows: maxRows}
}

func (r *Resolver) Resolve(ctx context.Context, handle dataset.Handle) (*dataset.Table, error) {
	start := time.Now()
	loc, err := r.locator.Locate(ctx, handle)
	if err != nil {
		return nil, err
	}

	raw, err := NewDataReader(*loc, r.maxRows).ReadData(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, core.NewDatasetUnreadableError(handle.String(), err)
	}

	table, err := dataset.NewTable(handle, raw.Headers, raw.Rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[Resolver] %s resolved in %s (%d rows x %d columns)",
		handle, time.Since(start).Round(time.Millisecond), table.RowCount(), table.ColumnCount())
	return table, nil
}
