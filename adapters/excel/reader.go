package excel

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"datalens/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// ErrTooManyRows is returned when a file exceeds the configured row cap.
var ErrTooManyRows = errors.New("row limit exceeded")

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath  string
	format    dataset.Format
	sheetName string
	maxRows   int
}

// NewDataReader creates a reader for a located dataset file
func NewDataReader(loc dataset.Location, maxRows int) *DataReader {
	format := loc.Format
	if format == "" {
		format = dataset.FormatFromPath(loc.Path)
	}
	return &DataReader{filePath: loc.Path, format: format, sheetName: loc.SheetName, maxRows: maxRows}
}

// ReadData reads the header and every data row. A file with a header and no
// data rows is valid and yields zero rows.
func (r *DataReader) ReadData(ctx context.Context) (*RawData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.format, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, fmt.Errorf("%s file not accessible: %w", strings.ToUpper(string(r.format)), err)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.format {
	case dataset.FormatCSV:
		rows, err = r.readCSV(ctx)
	case dataset.FormatXLSX:
		rows, err = r.readExcel()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.format)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s file has no header row", strings.ToUpper(string(r.format)))
	}
	return r.processRows(rows), nil
}

// readExcel reads the configured sheet, or the first one when none is set.
func (r *DataReader) readExcel() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	sheet := r.sheetName
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in workbook %s; available sheets: %s",
			sheet, filepath.Base(r.filePath), strings.Join(f.GetSheetList(), ", "))
	}

	readStart := time.Now()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if r.maxRows > 0 && len(rows)-1 > r.maxRows {
		return nil, fmt.Errorf("%w: %d data rows, limit %d", ErrTooManyRows, len(rows)-1, r.maxRows)
	}
	return rows, nil
}

// readCSV streams records so cancellation and the row cap apply mid-file.
func (r *DataReader) readCSV(ctx context.Context) ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = sniffDelimiter(r.filePath)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	var rows [][]string
	for {
		if len(rows)%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV file: %w", err)
		}
		rows = append(rows, rec)
		if r.maxRows > 0 && len(rows)-1 > r.maxRows {
			return nil, fmt.Errorf("%w: more than %d data rows", ErrTooManyRows, r.maxRows)
		}
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows trims cells and drops empty trailing cells beyond the header.
func (r *DataReader) processRows(rows [][]string) *RawData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		h := strings.TrimSpace(header)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		headers[i] = h
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		for len(cells) > len(headers) && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		dataRows = append(dataRows, cells)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(string(r.format)), len(headers), len(dataRows))
	return &RawData{Headers: headers, Rows: dataRows}
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".tsv"):
		return '\t'
	case strings.HasSuffix(name, ".psv"):
		return '|'
	}
	return ','
}
