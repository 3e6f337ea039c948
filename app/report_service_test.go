package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datalens/adapters/excel"
	"datalens/adapters/memory"
	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/report"
	"datalens/internal/assembler"
	apperrors "datalens/internal/errors"
	"datalens/internal/metrics"
	"datalens/internal/narrative"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSales(t *testing.T, dir string, rows int) {
	t.Helper()
	var b strings.Builder
	b.WriteString("order_id,region,units,price,revenue,returned\n")
	regions := []string{"north", "south", "east", "west"}
	for i := 0; i < rows; i++ {
		units := 1 + i%7
		price := 10 + (i%5)*3
		fmt.Fprintf(&b, "%d,%s,%d,%d,%d,%t\n", 1000+i, regions[i%4], units, price, units*price, i%11 == 0)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte(b.String()), 0o644))
}

func newReportService(t *testing.T, timeout time.Duration) (*ReportService, *memory.ReportRepository) {
	t.Helper()
	dir := t.TempDir()
	writeSales(t, dir, 60)

	resolver := excel.NewResolver(excel.NewDirectoryLocator(excel.Config{DataDir: dir}), 0)
	a := assembler.New(resolver, assembler.WithNarrator(narrative.NewRuleBased()), assembler.WithWorkers(2))
	repo := memory.NewReportRepository()
	svc := NewReportService(a, newConfigService(), repo, metrics.New(prometheus.NewRegistry()), timeout)
	return svc, repo
}

func TestGenerateStoresReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newReportService(t, time.Minute)

	rec, err := svc.Generate(ctx, GenerateRequest{OwnerID: "alice", Handle: "sales", TargetColumn: "revenue"})
	require.NoError(t, err)
	assert.Equal(t, report.StateDone, rec.Result.State)
	assert.Equal(t, "revenue", rec.Result.Report.TargetColumn)
	for _, s := range configuration.Sections {
		assert.True(t, rec.Result.Report.Has(s), "section %s", s)
	}

	got, err := svc.Get(ctx, "alice", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	list, err := svc.ListByDataset(ctx, "alice", "sales", 5)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGenerateWithPresetAndExplicitConfiguration(t *testing.T) {
	ctx := context.Background()
	svc, _ := newReportService(t, time.Minute)

	rec, err := svc.Generate(ctx, GenerateRequest{OwnerID: "alice", Handle: "sales", Preset: "minimal"})
	require.NoError(t, err)
	assert.NotNil(t, rec.Result.Report.MissingAnalysis)
	assert.Nil(t, rec.Result.Report.CorrelationData)

	cfg := configuration.Default()
	cfg.SetAll(false)
	rec, err = svc.Generate(ctx, GenerateRequest{OwnerID: "alice", Handle: "sales", Configuration: cfg})
	require.NoError(t, err)
	assert.Nil(t, rec.Result.Report.MissingAnalysis)
	assert.NotNil(t, rec.Result.Report.DatasetInfo)
}

func TestGenerateErrors(t *testing.T) {
	ctx := context.Background()
	svc, repo := newReportService(t, time.Minute)

	_, err := svc.Generate(ctx, GenerateRequest{OwnerID: "alice", Handle: "nowhere"})
	assert.ErrorIs(t, err, core.ErrDatasetNotFound)
	assert.Equal(t, apperrors.CodeDatasetNotFound, apperrors.GetCode(err))

	_, err = svc.Generate(ctx, GenerateRequest{OwnerID: "alice", Handle: "sales", TargetColumn: "nope"})
	assert.Equal(t, apperrors.CodeUnknownColumn, apperrors.GetCode(err))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = svc.Generate(cancelled, GenerateRequest{OwnerID: "alice", Handle: "sales"})
	assert.Equal(t, apperrors.CodeCancelled, apperrors.GetCode(err))

	list, err := repo.ListByDataset(ctx, "alice", "sales", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
