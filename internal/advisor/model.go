package advisor

import (
	"fmt"
	"sort"

	"datalens/domain/analysis"
	"datalens/domain/core"
	"datalens/domain/profile"
)

// ModelOptions bound the model advisor's output.
type ModelOptions struct {
	MaxRecommendations       int
	MaxClassificationClasses int
}

// ModelAdvisor maps dataset shape and target to ranked model families.
type ModelAdvisor struct {
	opts ModelOptions
}

// NewModelAdvisor creates a model advisor
func NewModelAdvisor(opts ModelOptions) *ModelAdvisor {
	if opts.MaxClassificationClasses < 2 {
		opts.MaxClassificationClasses = 20
	}
	return &ModelAdvisor{opts: opts}
}

// family is one row of the static rule table.
type family struct {
	name          string
	priority      analysis.Priority
	distanceBased bool
	rationale     string
	preprocessing []string
}

var (
	scaleAndOneHot = []string{"standard scaling", "one-hot encoding"}
	treeEncoding   = []string{"ordinal or target encoding"}
)

var ruleTable = map[analysis.ProblemType]map[analysis.SizeBucket][]family{
	analysis.ProblemClassification: {
		analysis.SizeSmall: {
			{"Logistic Regression", analysis.PriorityHigh, false, "interpretable baseline that behaves well on small samples", scaleAndOneHot},
			{"Random Forest", analysis.PriorityHigh, false, "robust to mixed feature types with little tuning", treeEncoding},
			{"Support Vector Machine", analysis.PriorityMedium, true, "effective margin-based classifier when rows are few", scaleAndOneHot},
			{"K-Nearest Neighbors", analysis.PriorityLow, true, "non-parametric baseline for small datasets", scaleAndOneHot},
			{"Naive Bayes", analysis.PriorityLow, false, "fast probabilistic baseline", nil},
		},
		analysis.SizeMedium: {
			{"Gradient Boosting", analysis.PriorityHigh, false, "strong accuracy on tabular data of this size", treeEncoding},
			{"Random Forest", analysis.PriorityHigh, false, "robust ensemble with built-in feature importance", treeEncoding},
			{"Logistic Regression", analysis.PriorityMedium, false, "interpretable baseline to compare ensembles against", scaleAndOneHot},
			{"Support Vector Machine", analysis.PriorityLow, true, "viable but training cost grows quickly with rows", scaleAndOneHot},
			{"Neural Network (MLP)", analysis.PriorityLow, false, "captures non-linear interactions given enough data", scaleAndOneHot},
		},
		analysis.SizeLarge: {
			{"Gradient Boosting", analysis.PriorityHigh, false, "scales to large tables with histogram-based training", treeEncoding},
			{"Logistic Regression (SGD)", analysis.PriorityMedium, false, "linear model trained incrementally at scale", scaleAndOneHot},
			{"Neural Network (MLP)", analysis.PriorityMedium, false, "benefits from large training sets", scaleAndOneHot},
			{"Random Forest", analysis.PriorityLow, false, "accurate but memory-heavy at this scale", treeEncoding},
		},
	},
	analysis.ProblemRegression: {
		analysis.SizeSmall: {
			{"Linear Regression", analysis.PriorityHigh, false, "interpretable baseline for a continuous target", scaleAndOneHot},
			{"Ridge / Lasso Regression", analysis.PriorityHigh, false, "regularisation controls variance on small samples", scaleAndOneHot},
			{"Random Forest Regressor", analysis.PriorityMedium, false, "captures non-linear effects without scaling", treeEncoding},
			{"Support Vector Regression", analysis.PriorityLow, true, "kernel method suited to few rows", scaleAndOneHot},
			{"K-Nearest Neighbors Regressor", analysis.PriorityLow, true, "local averaging baseline", scaleAndOneHot},
		},
		analysis.SizeMedium: {
			{"Gradient Boosting Regressor", analysis.PriorityHigh, false, "strong accuracy on tabular regression", treeEncoding},
			{"Random Forest Regressor", analysis.PriorityHigh, false, "robust ensemble with little tuning", treeEncoding},
			{"Ridge / Lasso Regression", analysis.PriorityMedium, false, "regularised linear baseline", scaleAndOneHot},
			{"Support Vector Regression", analysis.PriorityLow, true, "viable but slow to train at this size", scaleAndOneHot},
		},
		analysis.SizeLarge: {
			{"Gradient Boosting Regressor", analysis.PriorityHigh, false, "scales to large tables with histogram-based training", treeEncoding},
			{"SGD Regressor", analysis.PriorityMedium, false, "linear model trained incrementally at scale", scaleAndOneHot},
			{"Neural Network (MLP)", analysis.PriorityMedium, false, "benefits from large training sets", scaleAndOneHot},
			{"Random Forest Regressor", analysis.PriorityLow, false, "accurate but memory-heavy at this scale", treeEncoding},
		},
	},
	analysis.ProblemClustering: {
		analysis.SizeSmall: {
			{"K-Means", analysis.PriorityHigh, true, "simple centroid clustering for compact groups", scaleAndOneHot},
			{"Hierarchical Clustering", analysis.PriorityMedium, true, "dendrogram reveals structure at several granularities", scaleAndOneHot},
			{"DBSCAN", analysis.PriorityMedium, true, "finds arbitrarily shaped clusters and flags noise", scaleAndOneHot},
			{"Gaussian Mixture", analysis.PriorityLow, false, "soft assignments with probabilistic clusters", []string{"standard scaling"}},
		},
		analysis.SizeMedium: {
			{"K-Means", analysis.PriorityHigh, true, "efficient centroid clustering at this size", scaleAndOneHot},
			{"DBSCAN", analysis.PriorityMedium, true, "density-based clusters with noise detection", scaleAndOneHot},
			{"Gaussian Mixture", analysis.PriorityMedium, false, "probabilistic cluster membership", []string{"standard scaling"}},
		},
		analysis.SizeLarge: {
			{"Mini-Batch K-Means", analysis.PriorityHigh, true, "centroid clustering in streaming batches", scaleAndOneHot},
			{"Gaussian Mixture", analysis.PriorityLow, false, "probabilistic clusters on a sample", []string{"standard scaling"}},
			{"DBSCAN", analysis.PriorityLow, true, "density clusters, best run on a sample at this size", scaleAndOneHot},
		},
	},
}

// categoricalFamilies are promoted when most features are categorical.
var categoricalFamilies = map[analysis.ProblemType]family{
	analysis.ProblemClassification: {"CatBoost", analysis.PriorityHigh, false, "handles many categorical features natively", nil},
	analysis.ProblemRegression:     {"CatBoost Regressor", analysis.PriorityHigh, false, "handles many categorical features natively", nil},
	analysis.ProblemClustering:     {"K-Prototypes", analysis.PriorityHigh, false, "clusters mixed categorical and numeric data", nil},
}

// Advise resolves the problem type and ranks model families. A target that is
// neither numeric nor a small categorical fails with ErrAmbiguousTarget.
func (a *ModelAdvisor) Advise(dp *profile.DatasetProfile) (*analysis.ModelAdvice, error) {
	advice := &analysis.ModelAdvice{
		TargetColumn: dp.TargetColumn,
		SizeBucket:   sizeBucket(dp.RowCount),
	}

	problem, classes, err := a.problemType(dp)
	if err != nil {
		return nil, err
	}
	advice.ProblemType = problem
	advice.ClassCount = classes

	features, categorical := 0, 0
	for _, c := range dp.Columns {
		if c.Name == dp.TargetColumn || c.Type == profile.TypeIdentifier {
			continue
		}
		features++
		if c.IsCategoricalLike() {
			categorical++
		}
	}
	advice.FeatureCount = features
	advice.CategoricalHeavy = features > 0 && float64(categorical)/float64(features) > 0.5
	advice.Complexity = complexity(features)

	rows := append([]family(nil), ruleTable[problem][advice.SizeBucket]...)
	if advice.CategoricalHeavy {
		rows = append([]family{categoricalFamilies[problem]}, rows...)
	}

	recs := make([]analysis.ModelRecommendation, 0, len(rows))
	for _, f := range rows {
		recs = append(recs, a.recommend(f, advice))
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	if a.opts.MaxRecommendations > 0 && len(recs) > a.opts.MaxRecommendations {
		recs = recs[:a.opts.MaxRecommendations]
	}
	advice.Recommendations = recs
	return advice, nil
}

func (a *ModelAdvisor) problemType(dp *profile.DatasetProfile) (analysis.ProblemType, int, error) {
	if dp.TargetColumn == "" {
		return analysis.ProblemClustering, 0, nil
	}
	target, ok := dp.Target()
	if !ok {
		return "", 0, core.NewUnknownColumnError(dp.TargetColumn)
	}

	switch target.Type {
	case profile.TypeNumeric:
		return analysis.ProblemRegression, 0, nil
	case profile.TypeBoolean, profile.TypeCategorical:
		if target.DistinctCount < 2 {
			return "", 0, core.NewAmbiguousTargetError(target.Name, "has fewer than two classes")
		}
		if target.DistinctCount > a.opts.MaxClassificationClasses {
			return "", 0, core.NewAmbiguousTargetError(target.Name,
				fmt.Sprintf("has %d classes, more than %d", target.DistinctCount, a.opts.MaxClassificationClasses))
		}
		return analysis.ProblemClassification, target.DistinctCount, nil
	}
	return "", 0, core.NewAmbiguousTargetError(target.Name, fmt.Sprintf("is %s", target.Type))
}

// recommend applies complexity and class-count adjustments to a table row.
func (a *ModelAdvisor) recommend(f family, advice *analysis.ModelAdvice) analysis.ModelRecommendation {
	rec := analysis.ModelRecommendation{
		Family:        f.name,
		Priority:      f.priority,
		ProblemType:   advice.ProblemType,
		DistanceBased: f.distanceBased,
		Rationale:     fmt.Sprintf("%s; %s dataset", f.rationale, advice.SizeBucket),
		Preprocessing: f.preprocessing,
	}

	if advice.Complexity == analysis.ComplexityHigh && f.distanceBased && advice.ProblemType != analysis.ProblemClustering {
		rec.Priority = analysis.PriorityLow
		rec.Rationale += "; distances degrade with many features"
	}
	if advice.ClassCount > 2 {
		rec.Rationale += fmt.Sprintf("; %d-class problem", advice.ClassCount)
	}
	return rec
}

func sizeBucket(rows int) analysis.SizeBucket {
	switch {
	case rows < 1000:
		return analysis.SizeSmall
	case rows < 100000:
		return analysis.SizeMedium
	}
	return analysis.SizeLarge
}

func complexity(features int) analysis.Complexity {
	switch {
	case features < 10:
		return analysis.ComplexityLow
	case features < 100:
		return analysis.ComplexityMedium
	}
	return analysis.ComplexityHigh
}
