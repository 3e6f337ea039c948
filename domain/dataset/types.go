package dataset

import (
	"path/filepath"
	"strings"
	"time"

	"datalens/domain/core"
)

// Handle is the opaque reference callers use to name a dataset.
type Handle string

func (h Handle) String() string { return string(h) }

// Format identifies the on-disk encoding of a dataset file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DatasetStatus represents the processing state of a catalogued dataset
type DatasetStatus string

const (
	StatusProcessing DatasetStatus = "processing"
	StatusReady      DatasetStatus = "ready"
	StatusFailed     DatasetStatus = "failed"
)

// Dataset is a catalog entry: where a handle's bytes live and who owns them.
type Dataset struct {
	Handle           Handle        `json:"handle" db:"handle"`
	OwnerID          core.OwnerID  `json:"owner_id" db:"owner_id"`
	OriginalFilename string        `json:"original_filename" db:"original_filename"`
	FilePath         string        `json:"file_path,omitempty" db:"file_path"`
	Format           Format        `json:"format" db:"format"`
	SheetName        string        `json:"sheet_name,omitempty" db:"sheet_name"`
	RecordCount      int           `json:"record_count" db:"record_count"`
	FieldCount       int           `json:"field_count" db:"field_count"`
	Status           DatasetStatus `json:"status" db:"status"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Location tells a resolver how to open a dataset.
type Location struct {
	Path      string
	Format    Format
	SheetName string
}

// FormatFromPath infers the dataset format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatCSV
}

// ValidHandle reports whether h can name a catalog entry or a file in a data
// directory.
func ValidHandle(h Handle) bool {
	s := string(h)
	return strings.TrimSpace(s) == s && s != "" && s != "." && s != ".." &&
		len(s) <= 255 && !strings.ContainsAny(s, `/\`)
}
