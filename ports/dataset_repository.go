package ports

import (
	"context"

	"datalens/domain/dataset"
)

// DatasetResolver turns a handle into a tabular view.
// Errors: core.ErrDatasetNotFound, core.ErrDatasetUnreadable.
type DatasetResolver interface {
	Resolve(ctx context.Context, handle dataset.Handle) (*dataset.Table, error)
}

// DatasetLocator maps a handle to the file that backs it.
type DatasetLocator interface {
	Locate(ctx context.Context, handle dataset.Handle) (*dataset.Location, error)
}

// DatasetRepository is the dataset catalog.
type DatasetRepository interface {
	DatasetLocator
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByHandle(ctx context.Context, handle dataset.Handle) (*dataset.Dataset, error)
	UpdateShape(ctx context.Context, handle dataset.Handle, records, fields int, status dataset.DatasetStatus) error
	Delete(ctx context.Context, handle dataset.Handle) error
}
