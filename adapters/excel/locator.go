package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"datalens/domain/core"
	"datalens/domain/dataset"
)

var locatorExtensions = []string{".csv", ".tsv", ".xlsx"}

// DirectoryLocator resolves a handle to <dir>/<handle>.{csv,tsv,xlsx}.
type DirectoryLocator struct {
	dir   string
	sheet string
}

func NewDirectoryLocator(cfg Config) *DirectoryLocator {
	return &DirectoryLocator{dir: cfg.DataDir, sheet: cfg.DefaultSheet}
}

func (l *DirectoryLocator) Locate(ctx context.Context, handle dataset.Handle) (*dataset.Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !dataset.ValidHandle(handle) {
		return nil, core.NewDatasetNotFoundError(handle.String())
	}
	name := handle.String()

	// A handle that already names a file with a known extension is used as is.
	if ext := strings.ToLower(filepath.Ext(name)); ext != "" {
		for _, known := range locatorExtensions {
			if ext == known {
				return l.statLocation(handle, filepath.Join(l.dir, name))
			}
		}
	}
	for _, ext := range locatorExtensions {
		path := filepath.Join(l.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return l.location(path), nil
		}
	}
	return nil, core.NewDatasetNotFoundError(handle.String())
}

func (l *DirectoryLocator) statLocation(handle dataset.Handle, path string) (*dataset.Location, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, core.NewDatasetNotFoundError(handle.String())
	}
	if info.IsDir() {
		return nil, core.NewDatasetUnreadableError(handle.String(), fmt.Errorf("%s is a directory", path))
	}
	return l.location(path), nil
}

func (l *DirectoryLocator) location(path string) *dataset.Location {
	loc := &dataset.Location{Path: path, Format: dataset.FormatFromPath(path)}
	if loc.Format == dataset.FormatXLSX {
		loc.SheetName = l.sheet
	}
	return loc
}
