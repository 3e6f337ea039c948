package profile

import "time"

// SemanticType is the inferred kind of a column.
type SemanticType string

const (
	TypeNumeric     SemanticType = "numeric"
	TypeCategorical SemanticType = "categorical"
	TypeBoolean     SemanticType = "boolean"
	TypeDatetime    SemanticType = "datetime"
	TypeText        SemanticType = "text"
	TypeIdentifier  SemanticType = "identifier"
)

// ColumnProfile summarises one column. Exactly one of the variant pointers is
// set, and it always matches Type.
type ColumnProfile struct {
	Name              string       `json:"name"`
	Index             int          `json:"index"`
	Type              SemanticType `json:"type"`
	Count             int          `json:"count"`
	MissingCount      int          `json:"missing_count"`
	MissingPercentage float64      `json:"missing_percentage"`
	DistinctCount     int          `json:"distinct_count"`
	DistinctRatio     float64      `json:"distinct_ratio"`

	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
	Boolean     *BooleanStats     `json:"boolean,omitempty"`
	Datetime    *DatetimeStats    `json:"datetime,omitempty"`
	Text        *TextStats        `json:"text,omitempty"`
	Identifier  *IdentifierStats  `json:"identifier,omitempty"`

	// Missing[r] is true when row r holds a missing cell.
	Missing []bool `json:"-"`
}

// NumericStats holds descriptive statistics over non-missing values.
type NumericStats struct {
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std"`
	Min           float64 `json:"min"`
	Q1            float64 `json:"q1"`
	Median        float64 `json:"median"`
	Q3            float64 `json:"q3"`
	Max           float64 `json:"max"`
	IQR           float64 `json:"iqr"`
	Skewness      float64 `json:"skewness"`
	Kurtosis      float64 `json:"kurtosis"`
	ZeroCount     int     `json:"zero_count"`
	NegativeCount int     `json:"negative_count"`
	AllIntegers   bool    `json:"all_integers"`

	// Values is aligned to row index; NaN marks a missing cell.
	Values []float64 `json:"-"`
}

// CategoryFrequency is one entry of a top-k frequency table.
type CategoryFrequency struct {
	Value      string  `json:"value"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type CategoricalStats struct {
	TopValues      []CategoryFrequency `json:"top_values"`
	Mode           string              `json:"mode"`
	ModeFrequency  int                 `json:"mode_frequency"`
	RareCategories int                 `json:"rare_categories"`
	AverageLength  float64             `json:"average_length"`
	Ordinal        bool                `json:"ordinal"`
}

type BooleanStats struct {
	TrueCount  int     `json:"true_count"`
	FalseCount int     `json:"false_count"`
	TrueRatio  float64 `json:"true_ratio"`
}

type DatetimeStats struct {
	Min         time.Time `json:"min"`
	Max         time.Time `json:"max"`
	SpanSeconds float64   `json:"span_seconds"`
	SpanDays    float64   `json:"span_days"`
	Layout      string    `json:"layout"`
}

type TextStats struct {
	AverageLength float64 `json:"average_length"`
	MinLength     int     `json:"min_length"`
	MaxLength     int     `json:"max_length"`
}

// IdentifierPattern describes why a column was judged identifier-like.
type IdentifierPattern string

const (
	PatternSequential IdentifierPattern = "sequential"
	PatternUUID       IdentifierPattern = "uuid"
	PatternPrefixed   IdentifierPattern = "prefixed"
	PatternNamed      IdentifierPattern = "named"
)

type IdentifierStats struct {
	Pattern   IdentifierPattern `json:"pattern"`
	Monotonic bool              `json:"monotonic"`
}

// DatasetProfile is the whole-table summary every downstream component reads.
type DatasetProfile struct {
	RowCount              int             `json:"row_count"`
	ColumnCount           int             `json:"column_count"`
	DuplicateRowCount     int             `json:"duplicate_row_count"`
	TotalMissingCells     int             `json:"total_missing_cells"`
	MissingCellPercentage float64         `json:"missing_cell_percentage"`
	QualityScore          float64         `json:"quality_score"`
	TargetColumn          string          `json:"target_column,omitempty"`
	Columns               []ColumnProfile `json:"columns"`
}

// Column returns the named column profile.
func (p *DatasetProfile) Column(name string) (*ColumnProfile, bool) {
	for i := range p.Columns {
		if p.Columns[i].Name == name {
			return &p.Columns[i], true
		}
	}
	return nil, false
}

// Target returns the target column profile, if one was requested.
func (p *DatasetProfile) Target() (*ColumnProfile, bool) {
	if p.TargetColumn == "" {
		return nil, false
	}
	return p.Column(p.TargetColumn)
}

// ColumnsOfType lists profiles of the given type in dataset order.
func (p *DatasetProfile) ColumnsOfType(t SemanticType) []*ColumnProfile {
	var out []*ColumnProfile
	for i := range p.Columns {
		if p.Columns[i].Type == t {
			out = append(out, &p.Columns[i])
		}
	}
	return out
}

// NumericFeatures returns numeric columns, identifiers never included.
// When excludeTarget is set the target column is skipped as well.
func (p *DatasetProfile) NumericFeatures(excludeTarget bool) []*ColumnProfile {
	var out []*ColumnProfile
	for _, c := range p.ColumnsOfType(TypeNumeric) {
		if excludeTarget && c.Name == p.TargetColumn {
			continue
		}
		out = append(out, c)
	}
	return out
}

// IsCategoricalLike reports whether the column takes a small set of labels.
func (c *ColumnProfile) IsCategoricalLike() bool {
	return c.Type == TypeCategorical || c.Type == TypeBoolean
}
