package assembler

import (
	"context"
	"fmt"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/report"
	"datalens/internal/advisor"
	"datalens/internal/correlation"
	"datalens/internal/narrative"
	"datalens/internal/outliers"
	"datalens/internal/visualization"
)

// StageName identifies one enriching step.
type StageName string

const (
	StageOutliers           StageName = "outliers"
	StageCorrelation        StageName = "correlation"
	StageModelAdvice        StageName = "model_advice"
	StageFeatureAdvice      StageName = "feature_advice"
	StageMissingAnalysis    StageName = "missing_analysis"
	StageColumnAnalysis     StageName = "column_analysis"
	StageStatisticalSummary StageName = "statistical_summary"
	StageVisualizations     StageName = "visualizations"
	StageAIInsights         StageName = "ai_insights"
)

// dependency is an edge to an earlier stage. The dependent waits for it to
// finish and reads its output when there is one; a failed dependency never
// stops the dependent. The edge exists only when the guard holds for the
// configuration.
type dependency struct {
	stage StageName
	when  func(cfg *configuration.AnalysisConfiguration) bool
}

func always(*configuration.AnalysisConfiguration) bool { return true }

func outlierDetectionOn(cfg *configuration.AnalysisConfiguration) bool {
	return cfg.IncludeOutlierDetection
}

// Charts only reference sections that ship in the same report.
func correlationChartsOn(cfg *configuration.AnalysisConfiguration) bool {
	return cfg.Enabled(configuration.SectionCorrelationData)
}

func boxPlotsOn(cfg *configuration.AnalysisConfiguration) bool {
	return cfg.IncludeOutlierDetection && cfg.Enabled(configuration.SectionStatisticalSummary)
}

type stageFunc func(ctx context.Context, r *run) (any, error)

// stageSpec is one row of the pipeline. section is empty for stages that only
// feed other stages.
type stageSpec struct {
	name    StageName
	section configuration.Section
	deps    []dependency
	run     stageFunc
}

// pipeline lists the stages in dependency order; every dependency names an
// earlier row.
var pipeline = []stageSpec{
	{name: StageOutliers, run: runOutliers},
	{name: StageCorrelation, section: configuration.SectionCorrelationData, run: runCorrelation},
	{name: StageModelAdvice, section: configuration.SectionModelRecommendations, run: runModelAdvice},
	{
		name:    StageFeatureAdvice,
		section: configuration.SectionPreprocessingRecommendations,
		deps:    []dependency{{stage: StageModelAdvice, when: always}},
		run:     runFeatureAdvice,
	},
	{name: StageMissingAnalysis, section: configuration.SectionMissingAnalysis, run: runMissingAnalysis},
	{name: StageColumnAnalysis, section: configuration.SectionColumnAnalysis, run: runColumnAnalysis},
	{
		name:    StageStatisticalSummary,
		section: configuration.SectionStatisticalSummary,
		deps:    []dependency{{stage: StageOutliers, when: outlierDetectionOn}},
		run:     runStatisticalSummary,
	},
	{
		name:    StageVisualizations,
		section: configuration.SectionVisualizations,
		deps: []dependency{
			{stage: StageCorrelation, when: correlationChartsOn},
			{stage: StageOutliers, when: boxPlotsOn},
		},
		run: runVisualizations,
	},
	{
		name:    StageAIInsights,
		section: configuration.SectionAIInsights,
		deps: []dependency{
			{stage: StageOutliers, when: outlierDetectionOn},
			{stage: StageCorrelation, when: always},
			{stage: StageModelAdvice, when: always},
			{stage: StageFeatureAdvice, when: always},
		},
		run: runAIInsights,
	},
}

func specFor(name StageName) *stageSpec {
	for i := range pipeline {
		if pipeline[i].name == name {
			return &pipeline[i]
		}
	}
	return nil
}

// activeDeps returns the dependency edges that apply under cfg.
func activeDeps(s *stageSpec, cfg *configuration.AnalysisConfiguration) []dependency {
	var out []dependency
	for _, d := range s.deps {
		if d.when(cfg) {
			out = append(out, d)
		}
	}
	return out
}

// Plan returns the stages that must run for cfg, in pipeline order: every
// stage whose section is enabled plus everything those stages depend on.
// ai_insights is left out when no narrator is available.
func Plan(cfg *configuration.AnalysisConfiguration, narratorAvailable bool) []StageName {
	needed := map[StageName]bool{}
	var visit func(name StageName)
	visit = func(name StageName) {
		if needed[name] {
			return
		}
		needed[name] = true
		for _, d := range activeDeps(specFor(name), cfg) {
			visit(d.stage)
		}
	}
	for i := range pipeline {
		s := &pipeline[i]
		if s.section == "" || !cfg.Enabled(s.section) {
			continue
		}
		if s.name == StageAIInsights && !narratorAvailable {
			continue
		}
		visit(s.name)
	}

	var out []StageName
	for _, s := range pipeline {
		if needed[s.name] {
			out = append(out, s.name)
		}
	}
	return out
}

func runOutliers(ctx context.Context, r *run) (any, error) {
	d, err := outliers.New(r.cfg.OutlierMethod, outliers.OptionsFromThresholds(r.cfg.Thresholds))
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, r.profile)
}

func runCorrelation(ctx context.Context, r *run) (any, error) {
	return correlation.NewAnalyzer(correlation.OptionsFromConfiguration(r.cfg)).Analyze(ctx, r.profile)
}

func runModelAdvice(_ context.Context, r *run) (any, error) {
	return advisor.NewModelAdvisor(advisor.ModelOptions{
		MaxRecommendations:       r.cfg.MaxModelRecommendations,
		MaxClassificationClasses: r.cfg.Thresholds.MaxClassificationClasses,
	}).Advise(r.profile)
}

func runFeatureAdvice(ctx context.Context, r *run) (any, error) {
	advice, _ := output[*analysis.ModelAdvice](r, StageModelAdvice)
	s, err := advisor.NewFeatureAdvisor(r.cfg.Thresholds).Advise(ctx, r.profile, advice)
	if err != nil {
		return nil, err
	}
	return buildPreprocessing(s), nil
}

func runMissingAnalysis(_ context.Context, r *run) (any, error) {
	return buildMissingAnalysis(r.profile, r.cfg.Thresholds), nil
}

func runColumnAnalysis(_ context.Context, r *run) (any, error) {
	return buildColumnAnalysis(r.profile), nil
}

func runStatisticalSummary(_ context.Context, r *run) (any, error) {
	var out *analysis.OutlierReport
	if r.cfg.IncludeOutlierDetection {
		out, _ = output[*analysis.OutlierReport](r, StageOutliers)
	}
	return buildStatisticalSummary(r.profile, r.cfg.IncludeAdvancedStats, out), nil
}

func runVisualizations(_ context.Context, r *run) (any, error) {
	corr, _ := output[*analysis.CorrelationMatrix](r, StageCorrelation)
	out, _ := output[*analysis.OutlierReport](r, StageOutliers)
	return &report.Visualizations{Charts: visualization.Plan(visualization.Inputs{
		Profile:     r.profile,
		Config:      r.cfg,
		Correlation: corr,
		Outliers:    out,
	})}, nil
}

func runAIInsights(ctx context.Context, r *run) (any, error) {
	if r.narrator == nil {
		return nil, fmt.Errorf("no narrator configured")
	}
	src := narrative.Sources{Profile: r.profile, SkewThreshold: r.cfg.Thresholds.SkewThreshold}
	src.Outliers, _ = output[*analysis.OutlierReport](r, StageOutliers)
	src.Correlation, _ = output[*analysis.CorrelationMatrix](r, StageCorrelation)
	src.Advice, _ = output[*analysis.ModelAdvice](r, StageModelAdvice)
	if p, ok := output[*report.Preprocessing](r, StageFeatureAdvice); ok {
		src.Suggestions = p.Suggestions
	}
	findings := narrative.Extract(src)

	summary, err := r.narrator.Summarize(ctx, findings)
	if err != nil {
		return nil, fmt.Errorf("%s narrator: %w", r.narrator.Name(), err)
	}
	return &report.AIInsights{
		Summary:         summary,
		KeyFindings:     findings.KeyFindings,
		Recommendations: findings.Recommendations,
		Difficulty:      findings.Difficulty,
		EstimatedEffort: findings.EstimatedEffort,
		Source:          r.narrator.Name(),
	}, nil
}
