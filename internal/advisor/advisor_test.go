package advisor

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/profile"
	"datalens/internal/profiling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profileOf(t *testing.T, target string, columns []string, rows [][]string) *profile.DatasetProfile {
	t.Helper()
	table, err := dataset.NewTable("advisor", columns, rows)
	require.NoError(t, err)
	dp, err := profiling.NewProfiler(profiling.DefaultOptions()).Profile(context.Background(), table, target)
	require.NoError(t, err)
	return dp
}

func defaultModelAdvisor() *ModelAdvisor {
	return NewModelAdvisor(ModelOptions{MaxRecommendations: 5, MaxClassificationClasses: 20})
}

func TestThreeClassTargetIsClassification(t *testing.T) {
	labels := []string{"A", "B", "C"}
	rows := make([][]string, 500)
	for i := range rows {
		rows[i] = []string{
			strconv.FormatFloat(float64(i%97)*1.3+0.5, 'f', -1, 64),
			labels[i%3],
		}
	}
	dp := profileOf(t, "label", []string{"x", "label"}, rows)

	advice, err := defaultModelAdvisor().Advise(dp)
	require.NoError(t, err)
	assert.Equal(t, analysis.ProblemClassification, advice.ProblemType)
	assert.Equal(t, 3, advice.ClassCount)
	assert.Equal(t, analysis.SizeSmall, advice.SizeBucket)
	assert.Equal(t, analysis.ComplexityLow, advice.Complexity)
	assert.Equal(t, 1, advice.FeatureCount)
	require.NotEmpty(t, advice.Recommendations)
	assert.LessOrEqual(t, len(advice.Recommendations), 5)
	assert.Equal(t, analysis.PriorityHigh, advice.Recommendations[0].Priority)
	for i := 1; i < len(advice.Recommendations); i++ {
		assert.LessOrEqual(t, advice.Recommendations[i-1].Priority.Rank(), advice.Recommendations[i].Priority.Rank())
	}
	assert.Contains(t, advice.Recommendations[0].Rationale, "3-class")
}

func TestProblemTypes(t *testing.T) {
	base := func(target profile.ColumnProfile, rows int) *profile.DatasetProfile {
		return &profile.DatasetProfile{
			RowCount:     rows,
			TargetColumn: target.Name,
			Columns: []profile.ColumnProfile{
				{Name: "f1", Type: profile.TypeNumeric},
				{Name: "f2", Type: profile.TypeNumeric},
				target,
			},
		}
	}

	t.Run("no target is clustering", func(t *testing.T) {
		dp := base(profile.ColumnProfile{Name: "f3", Type: profile.TypeNumeric}, 10)
		dp.TargetColumn = ""
		advice, err := defaultModelAdvisor().Advise(dp)
		require.NoError(t, err)
		assert.Equal(t, analysis.ProblemClustering, advice.ProblemType)
		assert.True(t, advice.AnyDistanceBased())
	})

	t.Run("numeric target is regression", func(t *testing.T) {
		advice, err := defaultModelAdvisor().Advise(base(profile.ColumnProfile{Name: "price", Type: profile.TypeNumeric}, 5000))
		require.NoError(t, err)
		assert.Equal(t, analysis.ProblemRegression, advice.ProblemType)
		assert.Equal(t, analysis.SizeMedium, advice.SizeBucket)
	})

	t.Run("boolean target is binary classification", func(t *testing.T) {
		advice, err := defaultModelAdvisor().Advise(base(profile.ColumnProfile{Name: "churn", Type: profile.TypeBoolean, DistinctCount: 2}, 200000))
		require.NoError(t, err)
		assert.Equal(t, analysis.ProblemClassification, advice.ProblemType)
		assert.Equal(t, 2, advice.ClassCount)
		assert.Equal(t, analysis.SizeLarge, advice.SizeBucket)
	})

	t.Run("text target is ambiguous", func(t *testing.T) {
		_, err := defaultModelAdvisor().Advise(base(profile.ColumnProfile{Name: "comment", Type: profile.TypeText}, 50))
		assert.ErrorIs(t, err, core.ErrAmbiguousTarget)
	})

	t.Run("too many classes is ambiguous", func(t *testing.T) {
		_, err := defaultModelAdvisor().Advise(base(profile.ColumnProfile{Name: "city", Type: profile.TypeCategorical, DistinctCount: 40}, 500))
		assert.ErrorIs(t, err, core.ErrAmbiguousTarget)
	})

	t.Run("single class is ambiguous", func(t *testing.T) {
		_, err := defaultModelAdvisor().Advise(base(profile.ColumnProfile{Name: "flag", Type: profile.TypeCategorical, DistinctCount: 1}, 500))
		assert.ErrorIs(t, err, core.ErrAmbiguousTarget)
	})
}

func TestCategoricalHeavyPromotesNativeHandling(t *testing.T) {
	dp := &profile.DatasetProfile{RowCount: 300, Columns: []profile.ColumnProfile{
		{Name: "a", Type: profile.TypeCategorical},
		{Name: "b", Type: profile.TypeCategorical},
		{Name: "c", Type: profile.TypeNumeric},
	}}
	advice, err := NewModelAdvisor(ModelOptions{MaxRecommendations: 2}).Advise(dp)
	require.NoError(t, err)
	assert.True(t, advice.CategoricalHeavy)
	require.Len(t, advice.Recommendations, 2)
	assert.Equal(t, "K-Prototypes", advice.Recommendations[0].Family)
}

func TestManyFeaturesDemoteDistanceModels(t *testing.T) {
	dp := &profile.DatasetProfile{RowCount: 100, TargetColumn: "y"}
	for i := range 120 {
		dp.Columns = append(dp.Columns, profile.ColumnProfile{Name: fmt.Sprintf("f%03d", i), Type: profile.TypeNumeric})
	}
	dp.Columns = append(dp.Columns, profile.ColumnProfile{Name: "y", Type: profile.TypeNumeric})

	advice, err := NewModelAdvisor(ModelOptions{}).Advise(dp)
	require.NoError(t, err)
	assert.Equal(t, analysis.ComplexityHigh, advice.Complexity)
	for _, r := range advice.Recommendations {
		if r.DistanceBased {
			assert.Equal(t, analysis.PriorityLow, r.Priority, r.Family)
		}
	}
}

func suggestionFor(s []analysis.Suggestion, column, method string) (analysis.Suggestion, bool) {
	for _, x := range s {
		if x.PrimaryColumn() == column && x.Method == method {
			return x, true
		}
	}
	return analysis.Suggestion{}, false
}

func handBuiltProfile() *profile.DatasetProfile {
	return &profile.DatasetProfile{
		RowCount:     200,
		TargetColumn: "y",
		Columns: []profile.ColumnProfile{
			{Name: "id", Type: profile.TypeIdentifier, Identifier: &profile.IdentifierStats{Pattern: profile.PatternSequential}},
			{Name: "income", Type: profile.TypeNumeric, Numeric: &profile.NumericStats{Skewness: 3, Min: 10}},
			{Name: "balance", Type: profile.TypeNumeric, Numeric: &profile.NumericStats{Skewness: -1.4, Min: -50}},
			{Name: "age", Type: profile.TypeNumeric, MissingCount: 50, MissingPercentage: 25, Numeric: &profile.NumericStats{Skewness: 0.1, Min: 18}},
			{Name: "city", Type: profile.TypeCategorical, DistinctCount: 4, DistinctRatio: 0.02, Categorical: &profile.CategoricalStats{}},
			{Name: "zip", Type: profile.TypeCategorical, DistinctCount: 30, DistinctRatio: 0.15, Categorical: &profile.CategoricalStats{}},
			{Name: "street", Type: profile.TypeCategorical, DistinctCount: 120, DistinctRatio: 0.6, Categorical: &profile.CategoricalStats{}},
			{Name: "size", Type: profile.TypeCategorical, DistinctCount: 3, DistinctRatio: 0.015, MissingCount: 4, MissingPercentage: 2, Categorical: &profile.CategoricalStats{Ordinal: true}},
			{Name: "notes", Type: profile.TypeText, MissingCount: 120, MissingPercentage: 60, Text: &profile.TextStats{}},
			{Name: "active", Type: profile.TypeBoolean, Boolean: &profile.BooleanStats{}},
			{Name: "signup", Type: profile.TypeDatetime, MissingCount: 20, MissingPercentage: 10, Datetime: &profile.DatetimeStats{}},
			{Name: "y", Type: profile.TypeCategorical, DistinctCount: 2, DistinctRatio: 0.01, Categorical: &profile.CategoricalStats{}},
		},
	}
}

func TestFeatureDecisionTable(t *testing.T) {
	fa := NewFeatureAdvisor(configuration.DefaultThresholds())
	out, err := fa.Advise(context.Background(), handBuiltProfile(), nil)
	require.NoError(t, err)

	tests := []struct {
		column   string
		method   string
		category analysis.SuggestionCategory
		priority analysis.Priority
	}{
		{"income", "log", analysis.CategoryTransformation, analysis.PriorityHigh},
		{"balance", "yeo_johnson", analysis.CategoryTransformation, analysis.PriorityMedium},
		{"age", "mean", analysis.CategoryImputation, analysis.PriorityHigh},
		{"age", "missing_indicator", analysis.CategoryImputation, analysis.PriorityHigh},
		{"age", "standard", analysis.CategoryScaling, analysis.PriorityMedium},
		{"city", "one_hot", analysis.CategoryEncoding, analysis.PriorityHigh},
		{"zip", "target", analysis.CategoryEncoding, analysis.PriorityMedium},
		{"street", "drop_high_cardinality", analysis.CategoryDrop, analysis.PriorityMedium},
		{"size", "ordinal", analysis.CategoryEncoding, analysis.PriorityMedium},
		{"size", "mode", analysis.CategoryImputation, analysis.PriorityLow},
		{"notes", "drop_column", analysis.CategoryDrop, analysis.PriorityHigh},
		{"active", "binary", analysis.CategoryEncoding, analysis.PriorityLow},
		{"signup", "interpolate", analysis.CategoryImputation, analysis.PriorityMedium},
		{"signup", "datetime_components", analysis.CategoryFeatureCreation, analysis.PriorityLow},
	}
	for _, tt := range tests {
		t.Run(tt.column+"/"+tt.method, func(t *testing.T) {
			s, ok := suggestionFor(out, tt.column, tt.method)
			require.True(t, ok)
			assert.Equal(t, tt.category, s.Category)
			assert.Equal(t, tt.priority, s.Priority)
		})
	}

	for _, s := range out {
		assert.NotEqual(t, "id", s.PrimaryColumn())
		assert.NotEqual(t, "y", s.PrimaryColumn())
	}
	_, ok := suggestionFor(out, "notes", "constant")
	assert.False(t, ok, "dropped columns get no imputation")
}

func TestSuggestionsAreOrdered(t *testing.T) {
	out, err := NewFeatureAdvisor(configuration.DefaultThresholds()).Advise(context.Background(), handBuiltProfile(), nil)
	require.NoError(t, err)
	for i := 1; i < len(out); i++ {
		a, b := out[i-1], out[i]
		if a.Priority != b.Priority {
			assert.Less(t, a.Priority.Rank(), b.Priority.Rank())
			continue
		}
		if a.Category != b.Category {
			assert.Less(t, a.Category.Rank(), b.Category.Rank())
			continue
		}
		assert.LessOrEqual(t, a.PrimaryColumn(), b.PrimaryColumn())
	}
}

func TestScalingFollowsModelAdvice(t *testing.T) {
	dp := &profile.DatasetProfile{RowCount: 10, Columns: []profile.ColumnProfile{
		{Name: "x", Type: profile.TypeNumeric, Numeric: &profile.NumericStats{}},
	}}
	fa := NewFeatureAdvisor(configuration.DefaultThresholds())

	distance := &analysis.ModelAdvice{Recommendations: []analysis.ModelRecommendation{{Family: "K-Means", DistanceBased: true}}}
	out, err := fa.Advise(context.Background(), dp, distance)
	require.NoError(t, err)
	s, ok := suggestionFor(out, "x", "standard")
	require.True(t, ok)
	assert.Equal(t, analysis.PriorityHigh, s.Priority)

	trees := &analysis.ModelAdvice{Recommendations: []analysis.ModelRecommendation{{Family: "Random Forest"}}}
	out, err = fa.Advise(context.Background(), dp, trees)
	require.NoError(t, err)
	s, ok = suggestionFor(out, "x", "min_max")
	require.True(t, ok)
	assert.Equal(t, analysis.PriorityLow, s.Priority)
}

func TestFeatureCreationForNumericTarget(t *testing.T) {
	rows := make([][]string, 40)
	for i := range rows {
		a := float64(i%17 + 1)
		b := float64((i*7)%13 + 1)
		c := float64(i % 5)
		rows[i] = []string{
			strconv.FormatFloat(a, 'f', -1, 64),
			strconv.FormatFloat(b, 'f', -1, 64),
			strconv.FormatFloat(c, 'f', -1, 64),
			strconv.FormatFloat(a+b+0.1*c, 'f', -1, 64),
		}
	}
	dp := profileOf(t, "y", []string{"a", "b", "c", "y"}, rows)

	out, err := NewFeatureAdvisor(configuration.DefaultThresholds()).Advise(context.Background(), dp, nil)
	require.NoError(t, err)

	var interactions, ratios int
	for _, s := range out {
		switch s.Method {
		case "interaction":
			interactions++
			assert.Len(t, s.Columns, 2)
		case "ratio":
			ratios++
			require.Len(t, s.Columns, 2)
			assert.NotEqual(t, "c", s.Columns[1], "denominator must not contain zeros")
		}
	}
	assert.Equal(t, 3, interactions)
	assert.Positive(t, ratios)
}

func TestNoFeatureCreationWithoutNumericTarget(t *testing.T) {
	out, err := NewFeatureAdvisor(configuration.DefaultThresholds()).Advise(context.Background(), handBuiltProfile(), nil)
	require.NoError(t, err)
	for _, s := range out {
		assert.NotEqual(t, "interaction", s.Method)
		assert.NotEqual(t, "ratio", s.Method)
	}
}

func TestFeatureAdvisorHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFeatureAdvisor(configuration.DefaultThresholds()).Advise(ctx, handBuiltProfile(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
