package analysis

// SuggestionCategory groups preprocessing advice.
type SuggestionCategory string

const (
	CategoryImputation      SuggestionCategory = "imputation"
	CategoryEncoding        SuggestionCategory = "encoding"
	CategoryTransformation  SuggestionCategory = "transformation"
	CategoryScaling         SuggestionCategory = "scaling"
	CategoryFeatureCreation SuggestionCategory = "feature_creation"
	CategoryDrop            SuggestionCategory = "drop"
)

// Rank orders categories in emitted suggestion lists.
func (c SuggestionCategory) Rank() int {
	switch c {
	case CategoryDrop:
		return 0
	case CategoryImputation:
		return 1
	case CategoryEncoding:
		return 2
	case CategoryTransformation:
		return 3
	case CategoryScaling:
		return 4
	case CategoryFeatureCreation:
		return 5
	}
	return 6
}

// Priority of a suggestion or recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Suggestion is one preprocessing or feature-engineering action.
type Suggestion struct {
	Category  SuggestionCategory `json:"category"`
	Columns   []string           `json:"columns"`
	Method    string             `json:"method"`
	Priority  Priority           `json:"priority"`
	Rationale string             `json:"rationale"`
}

// PrimaryColumn is the first column the suggestion applies to.
func (s Suggestion) PrimaryColumn() string {
	if len(s.Columns) == 0 {
		return ""
	}
	return s.Columns[0]
}
