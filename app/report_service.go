package app

import (
	"context"
	"errors"
	"log"
	"time"

	"datalens/domain/configuration"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/domain/report"
	"datalens/internal/assembler"
	apperrors "datalens/internal/errors"
	"datalens/internal/metrics"
	"datalens/ports"
)

// GenerateRequest describes one report run. Configuration, when set, is used
// as is; otherwise ConfigurationID, Preset and the owner default are tried.
type GenerateRequest struct {
	OwnerID         core.OwnerID
	Handle          dataset.Handle
	TargetColumn    string
	ConfigurationID core.ConfigurationID
	Preset          string
	Configuration   *configuration.AnalysisConfiguration
}

// ReportService runs the assembler and persists its results.
type ReportService struct {
	assembler *assembler.Assembler
	configs   *ConfigurationService
	reports   ports.ReportRepository
	metrics   *metrics.Metrics
	timeout   time.Duration
}

func NewReportService(a *assembler.Assembler, configs *ConfigurationService, reports ports.ReportRepository, m *metrics.Metrics, timeout time.Duration) *ReportService {
	return &ReportService{assembler: a, configs: configs, reports: reports, metrics: m, timeout: timeout}
}

// Generate assembles and stores a report. Profiling failures return an error
// and store nothing; section failures ride along in the record.
func (s *ReportService) Generate(ctx context.Context, req GenerateRequest) (*report.Record, error) {
	cfg := req.Configuration
	if cfg == nil {
		var err error
		cfg, err = s.configs.Resolve(ctx, req.OwnerID, req.ConfigurationID, req.Preset)
		if err != nil {
			return nil, cancelled(err)
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.assembler.Assemble(ctx, req.Handle, cfg, req.TargetColumn)
	elapsed := time.Since(start)
	s.metrics.RecordReport(res, elapsed)
	if err != nil {
		if isContextErr(err) {
			return nil, cancelled(err)
		}
		return nil, apperrors.Wrapf(err, "failed to analyze %s", req.Handle)
	}

	rec := &report.Record{
		ID:        core.NewReportID(),
		OwnerID:   req.OwnerID,
		Result:    *res,
		CreatedAt: core.Now(),
	}
	if s.reports != nil {
		// Partial reports from a cancelled run are still stored.
		saveCtx := context.WithoutCancel(ctx)
		if err := s.reports.Save(saveCtx, rec); err != nil {
			return nil, apperrors.WithCode(apperrors.CodeDatabaseError, err)
		}
	}
	log.Printf("[ReportService] report %s for %s: state=%s partial=%t failures=%d in %s",
		rec.ID, req.Handle, res.State, res.Partial, len(res.Failures), elapsed.Round(time.Millisecond))
	return rec, nil
}

func (s *ReportService) Get(ctx context.Context, owner core.OwnerID, id core.ReportID) (*report.Record, error) {
	if s.reports == nil {
		return nil, core.ErrReportNotFound
	}
	return s.reports.Get(ctx, owner, id)
}

func (s *ReportService) ListByDataset(ctx context.Context, owner core.OwnerID, handle dataset.Handle, limit int) ([]*report.Record, error) {
	if s.reports == nil {
		return nil, nil
	}
	return s.reports.ListByDataset(ctx, owner, handle.String(), limit)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// cancelled tags context errors so the API can answer 408.
func cancelled(err error) error {
	if isContextErr(err) {
		return apperrors.WithCode(apperrors.CodeCancelled, err)
	}
	return err
}
