package profiling

import (
	"context"
	"log"
	"math"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/profile"

	"golang.org/x/sync/errgroup"
)

// Options tune type inference and summary depth.
type Options struct {
	MissingSentinels  []string
	CategoricalRatio  float64
	SmallCardinality  int
	MaxCategoryLength int
	TopCategories     int
	DetectIdentifiers bool
	Workers           int
}

// DefaultOptions returns the stock inference settings.
func DefaultOptions() Options {
	return OptionsFromThresholds(configuration.DefaultThresholds())
}

// OptionsFromThresholds derives profiler options from a configuration.
func OptionsFromThresholds(t configuration.Thresholds) Options {
	return Options{
		MissingSentinels:  DefaultMissingSentinels,
		CategoricalRatio:  t.CategoricalRatio,
		SmallCardinality:  10,
		MaxCategoryLength: t.MaxCategoryLength,
		TopCategories:     t.TopCategories,
		DetectIdentifiers: true,
		Workers:           runtime.GOMAXPROCS(0),
	}
}

// Profiler builds column and dataset profiles. It holds no per-call state
// and is safe for concurrent use.
type Profiler struct {
	opts    Options
	coercer *Coercer
}

// NewProfiler creates a profiler
func NewProfiler(opts Options) *Profiler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.TopCategories < 1 {
		opts.TopCategories = 5
	}
	return &Profiler{opts: opts, coercer: NewCoercer(opts.MissingSentinels)}
}

// rawColumn is the trimmed, missing-filtered view of one column.
type rawColumn struct {
	values       []string
	rowOf        []int
	missing      []bool
	missingCount int
	distinct     int
	counts       map[string]int
}

func (p *Profiler) scan(cells []string) *rawColumn {
	col := &rawColumn{
		missing: make([]bool, len(cells)),
		counts:  make(map[string]int),
	}
	for r, cell := range cells {
		if p.coercer.IsMissing(cell) {
			col.missing[r] = true
			col.missingCount++
			continue
		}
		v := strings.TrimSpace(cell)
		col.values = append(col.values, v)
		col.rowOf = append(col.rowOf, r)
		col.counts[v]++
	}
	col.distinct = len(col.counts)
	return col
}

// ProfileColumn infers the semantic type of one column and summarises it.
func (p *Profiler) ProfileColumn(name string, index int, cells []string) profile.ColumnProfile {
	rows := len(cells)
	col := p.scan(cells)

	cp := profile.ColumnProfile{
		Name:          name,
		Index:         index,
		Count:         len(col.values),
		MissingCount:  col.missingCount,
		DistinctCount: col.distinct,
		Missing:       col.missing,
	}
	if rows > 0 {
		cp.MissingPercentage = float64(col.missingCount) / float64(rows) * 100
	}
	if cp.Count > 0 {
		cp.DistinctRatio = float64(col.distinct) / float64(cp.Count)
	}

	if cp.Count == 0 {
		cp.Type = profile.TypeCategorical
		cp.Categorical = &profile.CategoricalStats{TopValues: []profile.CategoryFrequency{}}
		return cp
	}

	if bs, ok := p.booleanStats(col); ok {
		cp.Type = profile.TypeBoolean
		cp.Boolean = bs
		return cp
	}

	if aligned, dense, ok := p.numericValues(col, rows); ok {
		if id, isID := p.identifier(name, rows, col, dense); isID {
			cp.Type = profile.TypeIdentifier
			cp.Identifier = id
			return cp
		}
		cp.Type = profile.TypeNumeric
		cp.Numeric = numericStats(aligned)
		return cp
	}

	if ds, ok := p.datetimeStats(col); ok {
		cp.Type = profile.TypeDatetime
		cp.Datetime = ds
		return cp
	}

	if id, isID := p.identifier(name, rows, col, nil); isID {
		cp.Type = profile.TypeIdentifier
		cp.Identifier = id
		return cp
	}

	avgLen := averageLength(col.values)
	if p.isCategorical(col, avgLen) {
		cp.Type = profile.TypeCategorical
		cp.Categorical = p.categoricalStats(col, avgLen)
		return cp
	}

	cp.Type = profile.TypeText
	cp.Text = textStats(col.values, avgLen)
	return cp
}

func (p *Profiler) identifier(name string, rows int, col *rawColumn, numeric []float64) (*profile.IdentifierStats, bool) {
	if !p.opts.DetectIdentifiers {
		return nil, false
	}
	return detectIdentifier(name, rows, col, numeric)
}

func (p *Profiler) booleanStats(col *rawColumn) (*profile.BooleanStats, bool) {
	bs := &profile.BooleanStats{}
	for _, v := range col.values {
		b, ok := p.coercer.ParseBoolean(v)
		if !ok {
			return nil, false
		}
		if b {
			bs.TrueCount++
		} else {
			bs.FalseCount++
		}
	}
	bs.TrueRatio = float64(bs.TrueCount) / float64(len(col.values))
	return bs, true
}

// numericValues returns row-aligned values (NaN for missing) and the dense
// non-missing values, or false if any present cell fails to parse.
func (p *Profiler) numericValues(col *rawColumn, rows int) ([]float64, []float64, bool) {
	dense := make([]float64, len(col.values))
	for i, v := range col.values {
		f, ok := p.coercer.ParseNumeric(v)
		if !ok {
			return nil, nil, false
		}
		dense[i] = f
	}
	aligned := make([]float64, rows)
	for r := range aligned {
		aligned[r] = math.NaN()
	}
	for i, r := range col.rowOf {
		aligned[r] = dense[i]
	}
	return aligned, dense, true
}

func (p *Profiler) datetimeStats(col *rawColumn) (*profile.DatetimeStats, bool) {
	ds := &profile.DatetimeStats{}
	for i, v := range col.values {
		t, layout, ok := p.coercer.ParseTimestamp(v)
		if !ok {
			return nil, false
		}
		if i == 0 {
			ds.Min, ds.Max, ds.Layout = t, t, layout
			continue
		}
		if t.Before(ds.Min) {
			ds.Min = t
		}
		if t.After(ds.Max) {
			ds.Max = t
		}
	}
	span := ds.Max.Sub(ds.Min)
	ds.SpanSeconds = span.Seconds()
	ds.SpanDays = span.Hours() / 24
	return ds, true
}

func (p *Profiler) isCategorical(col *rawColumn, avgLen float64) bool {
	if avgLen > float64(p.opts.MaxCategoryLength) {
		return false
	}
	ratio := float64(col.distinct) / float64(len(col.values))
	return ratio < p.opts.CategoricalRatio || col.distinct <= p.opts.SmallCardinality
}

func (p *Profiler) categoricalStats(col *rawColumn, avgLen float64) *profile.CategoricalStats {
	freqs := make([]profile.CategoryFrequency, 0, len(col.counts))
	n := float64(len(col.values))
	rare := 0
	for v, c := range col.counts {
		pct := float64(c) / n * 100
		if pct < 1 {
			rare++
		}
		freqs = append(freqs, profile.CategoryFrequency{Value: v, Count: c, Percentage: pct})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Value < freqs[j].Value
	})

	cs := &profile.CategoricalStats{
		Mode:           freqs[0].Value,
		ModeFrequency:  freqs[0].Count,
		RareCategories: rare,
		AverageLength:  avgLen,
		Ordinal:        isOrdinal(col.counts),
	}
	if len(freqs) > p.opts.TopCategories {
		freqs = freqs[:p.opts.TopCategories]
	}
	cs.TopValues = freqs
	return cs
}

func averageLength(values []string) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0
	for _, v := range values {
		total += utf8.RuneCountInString(v)
	}
	return float64(total) / float64(len(values))
}

func textStats(values []string, avgLen float64) *profile.TextStats {
	ts := &profile.TextStats{AverageLength: avgLen, MinLength: math.MaxInt}
	for _, v := range values {
		l := utf8.RuneCountInString(v)
		if l < ts.MinLength {
			ts.MinLength = l
		}
		if l > ts.MaxLength {
			ts.MaxLength = l
		}
	}
	return ts
}

// Profile builds the dataset profile. Columns are profiled concurrently;
// output order always matches the table.
func (p *Profiler) Profile(ctx context.Context, table *dataset.Table, target string) (*profile.DatasetProfile, error) {
	if target != "" && !table.HasColumn(target) {
		return nil, core.NewUnknownColumnError(target)
	}

	names := table.Columns()
	columns := make([]profile.ColumnProfile, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			columns[i] = p.ProfileColumn(name, i, table.Column(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dp := &profile.DatasetProfile{
		RowCount:          table.RowCount(),
		ColumnCount:       len(names),
		DuplicateRowCount: p.duplicateRows(table),
		TargetColumn:      target,
		Columns:           columns,
	}
	for _, c := range columns {
		dp.TotalMissingCells += c.MissingCount
	}
	if cells := dp.RowCount * dp.ColumnCount; cells > 0 {
		dp.MissingCellPercentage = float64(dp.TotalMissingCells) / float64(cells) * 100
	}
	dp.QualityScore = qualityScore(dp)

	log.Printf("[Profiler] Profiled %s: %d rows, %d columns, %d missing cells, %d duplicate rows",
		table.Handle(), dp.RowCount, dp.ColumnCount, dp.TotalMissingCells, dp.DuplicateRowCount)
	return dp, nil
}

// duplicateRows counts rows equal to an earlier row. Missing cells compare
// equal to each other regardless of which sentinel spelled them.
func (p *Profiler) duplicateRows(table *dataset.Table) int {
	seen := make(map[string]struct{}, table.RowCount())
	dups := 0
	var b strings.Builder
	for r := 0; r < table.RowCount(); r++ {
		b.Reset()
		for i, cell := range table.Row(r) {
			if i > 0 {
				b.WriteByte(0x1f)
			}
			if p.coercer.IsMissing(cell) {
				b.WriteByte(0x00)
				continue
			}
			b.WriteString(strings.TrimSpace(cell))
		}
		key := b.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func qualityScore(dp *profile.DatasetProfile) float64 {
	if dp.RowCount == 0 {
		return 0
	}
	dupPct := float64(dp.DuplicateRowCount) / float64(dp.RowCount) * 100
	return math.Max(0, 100-dp.MissingCellPercentage-dupPct)
}
