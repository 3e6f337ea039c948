package excel

// RawData is a file's header and data rows in file order, cells trimmed.
type RawData struct {
	Headers []string
	Rows    [][]string
}
