package narrative

import (
	"context"
	"fmt"
	"strings"

	"datalens/domain/analysis"
)

// RuleBased writes a deterministic summary from findings alone.
type RuleBased struct{}

// NewRuleBased creates the template narrator
func NewRuleBased() *RuleBased { return &RuleBased{} }

func (RuleBased) Name() string { return "rule_based" }

func (RuleBased) Summarize(ctx context.Context, f analysis.Findings) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "This dataset contains %d rows and %d columns (%d numeric, %d categorical). ",
		f.RowCount, f.ColumnCount, f.NumericColumns, f.CategoricalColumns)
	if f.MissingCellPercentage < 10 {
		b.WriteString("It appears to be a well-structured dataset.")
	} else {
		fmt.Fprintf(&b, "%.1f%% of cells are missing, so there are data quality issues to address.", f.MissingCellPercentage)
	}
	if f.TargetColumn != "" && f.ProblemType != "" {
		fmt.Fprintf(&b, " Predicting '%s' is a %s problem", f.TargetColumn, f.ProblemType)
		if f.TopModel != "" {
			fmt.Fprintf(&b, "; %s is the suggested starting point", f.TopModel)
		}
		b.WriteString(".")
	} else if f.ProblemType == analysis.ProblemClustering {
		b.WriteString(" No target was given, so unsupervised clustering is the natural next step.")
	}
	return b.String(), nil
}
