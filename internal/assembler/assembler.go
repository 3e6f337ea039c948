package assembler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"datalens/domain/analysis"
	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/profile"
	"datalens/domain/report"
	"datalens/internal"
	"datalens/internal/outliers"
	"datalens/internal/profiling"
	"datalens/internal/visualization"
	"datalens/ports"

	"golang.org/x/sync/errgroup"
)

// Observer is told about every state transition of a run.
type Observer func(handle dataset.Handle, from, to report.State)

// Assembler drives one report through profiling, enriching and assembling.
// It holds no per-run state and is safe for concurrent use.
type Assembler struct {
	resolver ports.DatasetResolver
	narrator ports.Narrator
	workers  int
	observer Observer
	clock    func() time.Time
	logger   *internal.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithNarrator enables the ai_insights section.
func WithNarrator(n ports.Narrator) Option {
	return func(a *Assembler) { a.narrator = n }
}

// WithWorkers bounds how many stages and columns are processed at once.
func WithWorkers(n int) Option {
	return func(a *Assembler) {
		if n > 0 {
			a.workers = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(a *Assembler) { a.observer = o }
}

// WithClock overrides the generated_at source.
func WithClock(clock func() time.Time) Option {
	return func(a *Assembler) { a.clock = clock }
}

func WithLogger(l *internal.Logger) Option {
	return func(a *Assembler) { a.logger = l }
}

// New creates an assembler. resolver may be nil when only AssembleTable is used.
func New(resolver ports.DatasetResolver, opts ...Option) *Assembler {
	a := &Assembler{
		resolver: resolver,
		workers:  runtime.GOMAXPROCS(0),
		clock:    time.Now,
		logger:   internal.DefaultLogger.With("Assembler"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HasNarrator reports whether ai_insights can be produced.
func (a *Assembler) HasNarrator() bool { return a.narrator != nil }

// Assemble resolves the dataset and builds its report. Errors are returned
// only when the run fails; section problems are reported in the result.
func (a *Assembler) Assemble(ctx context.Context, handle dataset.Handle, cfg *configuration.AnalysisConfiguration, target string) (*report.Result, error) {
	m := a.newMachine(handle)
	if a.resolver == nil {
		return nil, m.fail(fmt.Errorf("no dataset resolver configured"))
	}
	if err := ctx.Err(); err != nil {
		return nil, m.fail(err)
	}
	table, err := a.resolver.Resolve(ctx, handle)
	if err != nil {
		return nil, m.fail(err)
	}
	return a.assemble(ctx, m, table, cfg, target)
}

// AssembleTable builds a report for a table that is already in memory.
func (a *Assembler) AssembleTable(ctx context.Context, table *dataset.Table, cfg *configuration.AnalysisConfiguration, target string) (*report.Result, error) {
	return a.assemble(ctx, a.newMachine(table.Handle()), table, cfg, target)
}

// CheckConfiguration validates cfg and confirms that the strategies it names
// exist. Unknown strategy names fail with core.ErrUnsupportedMethod.
func CheckConfiguration(cfg *configuration.AnalysisConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := outliers.New(cfg.OutlierMethod, outliers.OptionsFromThresholds(cfg.Thresholds))
	return err
}

func (a *Assembler) assemble(ctx context.Context, m *machine, table *dataset.Table, cfg *configuration.AnalysisConfiguration, target string) (*report.Result, error) {
	if cfg == nil {
		cfg = configuration.Default()
	}
	if err := CheckConfiguration(cfg); err != nil {
		return nil, m.fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, m.fail(err)
	}

	popts := profiling.OptionsFromThresholds(cfg.Thresholds)
	popts.Workers = a.workers
	started := time.Now()
	dp, err := profiling.NewProfiler(popts).Profile(ctx, table, target)
	if err != nil {
		return nil, m.fail(err)
	}
	a.logger.Debug("%s profiled in %s", table.Handle(), time.Since(started))

	m.transition(report.StateEnriching)
	r := a.enrich(ctx, cfg, dp)

	m.transition(report.StateAssembling)
	res := a.compose(table, cfg, dp, r)

	m.transition(report.StateDone)
	res.State = m.state
	log.Printf("[Assembler] %s done: %d sections failed, %d skipped", table.Handle(), len(res.Failures), len(res.Skipped))
	return res, nil
}

// run is the shared state of one enriching phase. Outputs are written once
// per stage and never mutated afterwards.
type run struct {
	cfg      *configuration.AnalysisConfiguration
	profile  *profile.DatasetProfile
	narrator ports.Narrator
	done     map[StageName]chan struct{}

	mu        sync.Mutex
	outputs   map[StageName]any
	failures  map[StageName]error
	cancelled map[StageName]bool
}

func output[T any](r *run, name StageName) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.outputs[name].(T)
	return v, ok
}

func (r *run) store(name StageName, v any) {
	r.mu.Lock()
	r.outputs[name] = v
	r.mu.Unlock()
}

func (r *run) fail(name StageName, err error) {
	r.mu.Lock()
	r.failures[name] = err
	r.mu.Unlock()
}

func (r *run) cancel(name StageName) {
	r.mu.Lock()
	r.cancelled[name] = true
	r.mu.Unlock()
}

// snapshot copies the bookkeeping maps so late writers cannot race with
// composition.
func (r *run) snapshot() (map[StageName]any, map[StageName]error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	outputs := make(map[StageName]any, len(r.outputs))
	for k, v := range r.outputs {
		outputs[k] = v
	}
	failures := make(map[StageName]error, len(r.failures))
	for k, v := range r.failures {
		failures[k] = v
	}
	return outputs, failures
}

// enrich runs the planned stages concurrently, each waiting only on its own
// dependencies. It returns as soon as every stage finished or ctx is done.
func (a *Assembler) enrich(ctx context.Context, cfg *configuration.AnalysisConfiguration, dp *profile.DatasetProfile) *run {
	stages := Plan(cfg, a.narrator != nil)
	r := &run{
		cfg:       cfg,
		profile:   dp,
		narrator:  a.narrator,
		done:      make(map[StageName]chan struct{}, len(stages)),
		outputs:   map[StageName]any{},
		failures:  map[StageName]error{},
		cancelled: map[StageName]bool{},
	}
	for _, name := range stages {
		r.done[name] = make(chan struct{})
	}

	finished := make(chan struct{})
	go func() {
		var g errgroup.Group
		g.SetLimit(a.workers)
		for _, name := range stages {
			spec := specFor(name)
			g.Go(func() error {
				a.runStage(ctx, r, spec)
				return nil
			})
		}
		_ = g.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		log.Printf("[Assembler] enriching interrupted: %v", ctx.Err())
	}
	return r
}

func (a *Assembler) runStage(ctx context.Context, r *run, spec *stageSpec) {
	defer close(r.done[spec.name])

	for _, d := range activeDeps(spec, r.cfg) {
		select {
		case <-r.done[d.stage]:
		case <-ctx.Done():
			r.cancel(spec.name)
			return
		}
	}
	if ctx.Err() != nil {
		r.cancel(spec.name)
		return
	}

	defer func() {
		if p := recover(); p != nil {
			r.fail(spec.name, fmt.Errorf("panic: %v", p))
		}
	}()

	started := time.Now()
	v, err := spec.run(ctx, r)
	switch {
	case err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()):
		r.cancel(spec.name)
	case err != nil:
		log.Printf("[Assembler] stage %s failed: %v", spec.name, err)
		r.fail(spec.name, err)
	default:
		r.store(spec.name, v)
		a.logger.Debug("stage %s finished in %s", spec.name, time.Since(started))
	}
}

// compose places every enabled, successful section into the report and
// accounts for the ones that are missing.
func (a *Assembler) compose(table *dataset.Table, cfg *configuration.AnalysisConfiguration, dp *profile.DatasetProfile, r *run) *report.Result {
	rep := &report.AnalysisReport{
		SchemaVersion: report.SchemaVersion,
		DatasetHandle: table.Handle().String(),
		Fingerprint:   table.Fingerprint(),
		Configuration: report.ConfigurationRef{ID: cfg.ID, Name: cfg.Name, Version: cfg.Version},
		TargetColumn:  dp.TargetColumn,
		GeneratedAt:   core.NewTimestamp(a.clock().UTC()),
		DatasetInfo:   dp,
	}
	res := &report.Result{Report: rep}
	outputs, failures := r.snapshot()

	for _, section := range configuration.Sections {
		if !cfg.Enabled(section) {
			continue
		}
		name := stageFor(section)
		if name == StageAIInsights && a.narrator == nil {
			res.Skipped = append(res.Skipped, report.SectionSkip{Section: section, Reason: report.SkipUnavailable})
			continue
		}
		if err, failed := failures[name]; failed {
			sf := core.NewSectionFailure(string(section), err)
			log.Printf("[Assembler] omitting section: %v", sf)
			res.Failures = append(res.Failures, report.SectionFailure{Section: section, Error: sf.Error()})
			continue
		}
		v, ok := outputs[name]
		if !ok {
			res.Skipped = append(res.Skipped, report.SectionSkip{Section: section, Reason: report.SkipCancelled})
			continue
		}
		place(rep, section, v)
	}
	// The summary ships without outliers when only the detector failed.
	if err, failed := failures[StageOutliers]; failed && rep.StatisticalSummary != nil {
		sf := core.NewSectionFailure(string(configuration.SectionStatisticalSummary)+".outliers", err)
		log.Printf("[Assembler] omitting outliers: %v", sf)
		res.Failures = append(res.Failures, report.SectionFailure{Section: configuration.SectionStatisticalSummary, Error: sf.Error()})
	}
	if rep.Visualizations != nil {
		rep.Visualizations = &report.Visualizations{Charts: visualization.Resolvable(rep.Visualizations.Charts, rep)}
	}
	res.Partial = len(res.Failures) > 0 || len(res.Skipped) > 0
	return res
}

func stageFor(section configuration.Section) StageName {
	for _, s := range pipeline {
		if s.section == section {
			return s.name
		}
	}
	return ""
}

func place(rep *report.AnalysisReport, section configuration.Section, v any) {
	switch section {
	case configuration.SectionMissingAnalysis:
		rep.MissingAnalysis, _ = v.(*report.MissingAnalysis)
	case configuration.SectionColumnAnalysis:
		rep.ColumnAnalysis, _ = v.(*report.ColumnAnalysis)
	case configuration.SectionStatisticalSummary:
		rep.StatisticalSummary, _ = v.(*report.StatisticalSummary)
	case configuration.SectionCorrelationData:
		rep.CorrelationData, _ = v.(*analysis.CorrelationMatrix)
	case configuration.SectionModelRecommendations:
		rep.ModelRecommendations, _ = v.(*analysis.ModelAdvice)
	case configuration.SectionPreprocessingRecommendations:
		rep.PreprocessingRecommendations, _ = v.(*report.Preprocessing)
	case configuration.SectionVisualizations:
		rep.Visualizations, _ = v.(*report.Visualizations)
	case configuration.SectionAIInsights:
		rep.AIInsights, _ = v.(*report.AIInsights)
	}
}

// machine tracks the run state and reports transitions.
type machine struct {
	handle   dataset.Handle
	state    report.State
	observer Observer
}

func (a *Assembler) newMachine(handle dataset.Handle) *machine {
	return &machine{handle: handle, state: report.StateProfiling, observer: a.observer}
}

func (m *machine) transition(to report.State) {
	if !report.CanTransition(m.state, to) {
		log.Printf("[Assembler] %s: illegal transition %s -> %s ignored", m.handle, m.state, to)
		return
	}
	from := m.state
	m.state = to
	log.Printf("[Assembler] %s: %s -> %s", m.handle, from, to)
	if m.observer != nil {
		m.observer(m.handle, from, to)
	}
}

func (m *machine) fail(err error) error {
	log.Printf("[Assembler] %s failed while %s: %v", m.handle, m.state, err)
	m.transition(report.StateFailed)
	return err
}
