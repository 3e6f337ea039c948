package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"datalens/domain/core"
	"datalens/domain/dataset"
	apperrors "datalens/internal/errors"
	"datalens/ports"
)

// RegisterDatasetRequest points a handle at a file the resolver can read.
type RegisterDatasetRequest struct {
	Handle    dataset.Handle `json:"handle" binding:"required"`
	FilePath  string         `json:"file_path" binding:"required"`
	SheetName string         `json:"sheet_name,omitempty"`
}

// DatasetService manages the dataset catalog and checks that registered files
// can be read before they are analysed.
type DatasetService struct {
	catalog  ports.DatasetRepository
	resolver ports.DatasetResolver
}

func NewDatasetService(catalog ports.DatasetRepository, resolver ports.DatasetResolver) *DatasetService {
	return &DatasetService{catalog: catalog, resolver: resolver}
}

// Register adds a catalog entry, reads the file once, and records its shape.
// A file that cannot be read is kept with status failed.
func (s *DatasetService) Register(ctx context.Context, owner core.OwnerID, req RegisterDatasetRequest) (*dataset.Dataset, error) {
	if !dataset.ValidHandle(req.Handle) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid dataset handle %q", req.Handle))
	}
	path := strings.TrimSpace(req.FilePath)
	if path == "" {
		return nil, apperrors.InvalidInput("file_path is required")
	}

	ds := &dataset.Dataset{
		Handle:           req.Handle,
		OwnerID:          owner,
		OriginalFilename: filepath.Base(path),
		FilePath:         path,
		Format:           dataset.FormatFromPath(path),
		SheetName:        req.SheetName,
		Status:           dataset.StatusProcessing,
	}
	if err := s.catalog.Create(ctx, ds); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}

	table, err := s.resolver.Resolve(ctx, req.Handle)
	if err != nil {
		log.Printf("[DatasetService] %s registered but unreadable: %v", req.Handle, err)
		if uerr := s.catalog.UpdateShape(ctx, req.Handle, 0, 0, dataset.StatusFailed); uerr != nil {
			log.Printf("[DatasetService] failed to mark %s failed: %v", req.Handle, uerr)
		}
		return nil, err
	}
	ds.RecordCount, ds.FieldCount, ds.Status = table.RowCount(), table.ColumnCount(), dataset.StatusReady
	if err := s.catalog.UpdateShape(ctx, req.Handle, ds.RecordCount, ds.FieldCount, ds.Status); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
	}
	log.Printf("[DatasetService] registered %s (%d rows x %d columns)", req.Handle, ds.RecordCount, ds.FieldCount)
	return ds, nil
}

// Get returns a catalog entry visible to owner.
func (s *DatasetService) Get(ctx context.Context, owner core.OwnerID, handle dataset.Handle) (*dataset.Dataset, error) {
	ds, err := s.catalog.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if ds.OwnerID != owner {
		return nil, core.NewDatasetNotFoundError(handle.String())
	}
	return ds, nil
}

func (s *DatasetService) Delete(ctx context.Context, owner core.OwnerID, handle dataset.Handle) error {
	if _, err := s.Get(ctx, owner, handle); err != nil {
		return err
	}
	return s.catalog.Delete(ctx, handle)
}
