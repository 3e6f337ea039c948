package render

import (
	"fmt"
	"sort"
	"strings"

	"datalens/domain/configuration"
	"datalens/domain/profile"
	"datalens/domain/report"
)

// Markdown renders a report result as a Markdown document. Sections appear in
// report order and only when present.
func Markdown(res *report.Result) string {
	var b strings.Builder
	rep := res.Report

	fmt.Fprintf(&b, "# Analysis report: %s\n\n", rep.DatasetHandle)
	fmt.Fprintf(&b, "- Generated: %s\n", rep.GeneratedAt.String())
	fmt.Fprintf(&b, "- Configuration: %s (v%d)\n", rep.Configuration.Name, rep.Configuration.Version)
	if rep.TargetColumn != "" {
		fmt.Fprintf(&b, "- Target: `%s`\n", rep.TargetColumn)
	}
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n\n", rep.Fingerprint.Short())

	if len(res.Failures) > 0 || len(res.Skipped) > 0 {
		b.WriteString("> **Warning:** this report is incomplete.\n")
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "> - %s failed: %s\n", f.Section, safe(f.Error))
		}
		for _, s := range res.Skipped {
			fmt.Fprintf(&b, "> - %s skipped (%s)\n", s.Section, s.Reason)
		}
		b.WriteString("\n")
	}

	writeDatasetInfo(&b, rep.DatasetInfo)
	for _, s := range configuration.Sections {
		if !rep.Has(s) {
			continue
		}
		switch s {
		case configuration.SectionMissingAnalysis:
			writeMissing(&b, rep.MissingAnalysis)
		case configuration.SectionColumnAnalysis:
			writeColumns(&b, rep.ColumnAnalysis)
		case configuration.SectionStatisticalSummary:
			writeStatistics(&b, rep.StatisticalSummary)
		case configuration.SectionCorrelationData:
			writeCorrelation(&b, rep)
		case configuration.SectionModelRecommendations:
			writeModels(&b, rep)
		case configuration.SectionPreprocessingRecommendations:
			writePreprocessing(&b, rep.PreprocessingRecommendations)
		case configuration.SectionVisualizations:
			writeCharts(&b, rep.Visualizations)
		case configuration.SectionAIInsights:
			writeInsights(&b, rep.AIInsights)
		}
	}
	return b.String()
}

func writeDatasetInfo(b *strings.Builder, dp *profile.DatasetProfile) {
	b.WriteString("## Dataset overview\n\n")
	fmt.Fprintf(b, "%d rows, %d columns, %d duplicate rows, %.1f%% missing cells, quality score %.1f.\n\n",
		dp.RowCount, dp.ColumnCount, dp.DuplicateRowCount, dp.MissingCellPercentage, dp.QualityScore)
	if len(dp.Columns) == 0 {
		return
	}
	b.WriteString("| Column | Type | Missing | Distinct |\n|---|---|---|---|\n")
	for _, c := range dp.Columns {
		fmt.Fprintf(b, "| %s | %s | %.1f%% | %d |\n", safe(c.Name), c.Type, c.MissingPercentage, c.DistinctCount)
	}
	b.WriteString("\n")
}

func writeMissing(b *strings.Builder, ma *report.MissingAnalysis) {
	b.WriteString("## Missing values\n\n")
	if len(ma.ColumnsWithMissing) == 0 {
		b.WriteString("No missing values.\n\n")
		return
	}
	fmt.Fprintf(b, "%d missing cells (%.1f%%); %d complete rows.\n\n", ma.TotalMissingCells, ma.MissingCellPercentage, ma.CompleteRowCount)
	for _, name := range ma.ColumnsWithMissing {
		fmt.Fprintf(b, "- %s: %d (%.1f%%)\n", safe(name), ma.MissingCounts[name], ma.MissingPercentages[name])
	}
	for _, p := range ma.Patterns {
		fmt.Fprintf(b, "- %s tend to be missing together (r=%.2f)\n", strings.Join(p.Columns, " and "), p.Correlation)
	}
	if len(ma.DropCandidates) > 0 {
		fmt.Fprintf(b, "- Consider dropping: %s\n", strings.Join(ma.DropCandidates, ", "))
	}
	b.WriteString("\n")
}

func writeColumns(b *strings.Builder, ca *report.ColumnAnalysis) {
	b.WriteString("## Column analysis\n\n")
	list := func(label string, names []string) {
		if len(names) > 0 {
			fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(names, ", "))
		}
	}
	list("Numeric", ca.NumericColumns)
	list("Categorical", ca.CategoricalColumns)
	list("Boolean", ca.BooleanColumns)
	list("Datetime", ca.DatetimeColumns)
	list("Text", ca.TextColumns)
	list("Identifiers", ca.IdentifierColumns)
	list("Potential targets", ca.PotentialTargets)
	list("High cardinality", ca.HighCardinalityColumns)
	list("Constant", ca.ConstantColumns)
	b.WriteString("\n")
}

func writeStatistics(b *strings.Builder, ss *report.StatisticalSummary) {
	b.WriteString("## Statistical summary\n\n")
	if len(ss.Numeric) > 0 {
		b.WriteString("| Column | Count | Mean | Std | Min | Median | Max |\n|---|---|---|---|---|---|---|\n")
		for _, name := range sortedKeys(ss.Numeric) {
			n := ss.Numeric[name]
			fmt.Fprintf(b, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				safe(name), n.Count, n.Mean, n.StdDev, n.Min, n.Median, n.Max)
		}
		b.WriteString("\n")
	}
	for _, name := range sortedKeys(ss.Categorical) {
		c := ss.Categorical[name]
		fmt.Fprintf(b, "- %s: %d unique, most frequent %q (%d)\n", safe(name), c.Unique, c.MostFrequent, c.Frequency)
	}
	if ss.Outliers != nil {
		fmt.Fprintf(b, "\nOutliers (%s):\n\n", ss.Outliers.Method)
		for _, name := range sortedKeys(ss.Outliers.Columns) {
			co := ss.Outliers.Columns[name]
			if co.Count == 0 {
				continue
			}
			fmt.Fprintf(b, "- %s: %d (%.1f%%), %s\n", safe(name), co.Count, co.Percentage, co.Recommendation)
		}
	}
	b.WriteString("\n")
}

func writeCorrelation(b *strings.Builder, rep *report.AnalysisReport) {
	cm := rep.CorrelationData
	b.WriteString("## Correlations\n\n")
	if len(cm.HighCorrelationPairs) == 0 {
		fmt.Fprintf(b, "No pairs with |r| >= %.2f.\n\n", cm.Threshold)
	}
	for _, p := range cm.HighCorrelationPairs {
		fmt.Fprintf(b, "- %s ~ %s: r=%.3f (%s)\n", safe(p.A), safe(p.B), p.Coefficient, p.Strength)
	}
	if len(cm.TargetCorrelations) > 0 {
		fmt.Fprintf(b, "\nCorrelation with `%s`:\n\n", rep.TargetColumn)
		for _, tc := range cm.TargetCorrelations {
			fmt.Fprintf(b, "- %s: r=%.3f\n", safe(tc.Column), tc.Coefficient)
		}
	}
	b.WriteString("\n")
}

func writeModels(b *strings.Builder, rep *report.AnalysisReport) {
	ma := rep.ModelRecommendations
	b.WriteString("## Model recommendations\n\n")
	fmt.Fprintf(b, "Problem type: **%s** (%s dataset, %s complexity).\n\n", ma.ProblemType, ma.SizeBucket, ma.Complexity)
	for i, r := range ma.Recommendations {
		fmt.Fprintf(b, "%d. **%s** [%s]: %s\n", i+1, r.Family, r.Priority, r.Rationale)
	}
	b.WriteString("\n")
}

func writePreprocessing(b *strings.Builder, p *report.Preprocessing) {
	b.WriteString("## Preprocessing\n\n")
	if len(p.Suggestions) == 0 {
		b.WriteString("No preprocessing needed.\n\n")
		return
	}
	b.WriteString("| Priority | Category | Columns | Method | Rationale |\n|---|---|---|---|---|\n")
	for _, s := range p.Suggestions {
		fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
			s.Priority, s.Category, safe(strings.Join(s.Columns, ", ")), s.Method, safe(s.Rationale))
	}
	b.WriteString("\n")
}

func writeCharts(b *strings.Builder, v *report.Visualizations) {
	b.WriteString("## Suggested charts\n\n")
	for _, c := range v.Charts {
		fmt.Fprintf(b, "- %s: %s\n", c.ChartType, safe(c.Title))
	}
	b.WriteString("\n")
}

func writeInsights(b *strings.Builder, in *report.AIInsights) {
	b.WriteString("## Insights\n\n")
	b.WriteString(in.Summary)
	b.WriteString("\n\n")
	for _, f := range in.KeyFindings {
		fmt.Fprintf(b, "- %s\n", f)
	}
	if len(in.Recommendations) > 0 {
		b.WriteString("\nNext steps:\n\n")
		for _, r := range in.Recommendations {
			fmt.Fprintf(b, "- %s\n", r)
		}
	}
	fmt.Fprintf(b, "\nDifficulty: %s, estimated effort %s.\n\n", in.Difficulty, in.EstimatedEffort)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func safe(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
