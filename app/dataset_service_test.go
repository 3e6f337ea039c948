package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"datalens/adapters/excel"
	"datalens/domain/core"
	"datalens/domain/dataset"
	apperrors "datalens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDatasetRepository is a testify mock of the dataset catalog
type MockDatasetRepository struct {
	mock.Mock
	entries map[dataset.Handle]*dataset.Dataset
}

func newMockCatalog() *MockDatasetRepository {
	return &MockDatasetRepository{entries: map[dataset.Handle]*dataset.Dataset{}}
}

func (m *MockDatasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	args := m.Called(ctx, ds)
	m.entries[ds.Handle] = ds
	return args.Error(0)
}

func (m *MockDatasetRepository) GetByHandle(ctx context.Context, handle dataset.Handle) (*dataset.Dataset, error) {
	if ds, ok := m.entries[handle]; ok {
		return ds, nil
	}
	return nil, core.NewDatasetNotFoundError(handle.String())
}

func (m *MockDatasetRepository) Locate(ctx context.Context, handle dataset.Handle) (*dataset.Location, error) {
	ds, err := m.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	return &dataset.Location{Path: ds.FilePath, Format: ds.Format, SheetName: ds.SheetName}, nil
}

func (m *MockDatasetRepository) UpdateShape(ctx context.Context, handle dataset.Handle, records, fields int, status dataset.DatasetStatus) error {
	args := m.Called(ctx, handle, records, fields, status)
	return args.Error(0)
}

func (m *MockDatasetRepository) Delete(ctx context.Context, handle dataset.Handle) error {
	args := m.Called(ctx, handle)
	delete(m.entries, handle)
	return args.Error(0)
}

func TestRegisterDatasetRecordsShape(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte("q1,q2\n1,2\n3,4\n5,6\n"), 0o644))

	catalog := newMockCatalog()
	catalog.On("Create", mock.Anything, mock.Anything).Return(nil)
	catalog.On("UpdateShape", mock.Anything, dataset.Handle("survey"), 3, 2, dataset.StatusReady).Return(nil)
	svc := NewDatasetService(catalog, excel.NewResolver(catalog, 0))

	ds, err := svc.Register(ctx, "alice", RegisterDatasetRequest{Handle: "survey", FilePath: path})
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusReady, ds.Status)
	assert.Equal(t, dataset.FormatCSV, ds.Format)
	catalog.AssertExpectations(t)

	_, err = svc.Get(ctx, "bob", "survey")
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)

	catalog.On("Delete", mock.Anything, dataset.Handle("survey")).Return(nil)
	require.NoError(t, svc.Delete(ctx, "alice", "survey"))
}

func TestRegisterUnreadableDatasetIsMarkedFailed(t *testing.T) {
	catalog := newMockCatalog()
	catalog.On("Create", mock.Anything, mock.Anything).Return(nil)
	catalog.On("UpdateShape", mock.Anything, dataset.Handle("ghost"), 0, 0, dataset.StatusFailed).Return(nil)
	svc := NewDatasetService(catalog, excel.NewResolver(catalog, 0))

	_, err := svc.Register(context.Background(), "alice", RegisterDatasetRequest{
		Handle:   "ghost",
		FilePath: filepath.Join(t.TempDir(), "missing.csv"),
	})
	assert.ErrorIs(t, err, core.ErrDatasetUnreadable)
	catalog.AssertExpectations(t)
}

func TestRegisterRejectsBadHandle(t *testing.T) {
	svc := NewDatasetService(newMockCatalog(), nil)
	_, err := svc.Register(context.Background(), "alice", RegisterDatasetRequest{Handle: "../x", FilePath: "/tmp/x.csv"})
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}
