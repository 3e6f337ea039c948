package excel

// Config holds settings for file-backed datasets
type Config struct {
	DataDir      string `json:"data_dir"`
	DefaultSheet string `json:"default_sheet,omitempty"`
	MaxRows      int    `json:"max_rows,omitempty"`
}

// DefaultConfig reads datasets from ./data using each workbook's first sheet
func DefaultConfig() Config {
	return Config{DataDir: "data"}
}
