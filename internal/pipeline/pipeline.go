package pipeline

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"employee-reports/internal/model"
	"employee-reports/internal/store"
	"employee-reports/pkg/utils"
)

// Runner builds a report from its sources and writes it out.
type Runner struct {
	Logger *zap.Logger
	// Store records run history; nil disables it.
	Store  *store.Store
	Output *utils.OutputManager
	// Opener opens sources; nil opens files.
	Opener               Opener
	LegacyColumnDefaults bool
}

// RunResult describes a finished run.
type RunResult struct {
	RunID   string
	Path    string
	Report  *model.Report
	Metrics model.RunMetrics
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// ------------------- Report Runner -------------------

// Run reads every source, aggregates them into one report and serializes it.
// Any ingestion or aggregation error aborts the run before the artifact is
// written.
func (r *Runner) Run(ctx context.Context, runID string, job model.ReportJobSpec) (res *RunResult, err error) {
	logger := r.logger().With(zap.String("run_id", runID))

	if _, err := model.ParseReportKind(string(job.Report)); err != nil {
		return nil, err
	}
	format, err := model.ParseOutputFormat(string(job.Format))
	if err != nil {
		return nil, err
	}
	job.Format = format
	serializer, err := SerializerFor(format, r.Output)
	if err != nil {
		return nil, err
	}
	if len(job.Files) == 0 {
		return nil, utils.NewInvalidJobError("at least one source is required")
	}

	tracker := NewTracker(runID, logger)
	r.record(logger, "save run", func() error { return r.Store.SaveRun(ctx, runID, job) })
	logger.Info("report run started",
		zap.String("report", string(job.Report)),
		zap.String("format", string(job.Format)),
		zap.Strings("sources", job.Files),
	)

	defer func() {
		if err == nil {
			return
		}
		tracker.Fail()
		r.setStatus(ctx, logger, runID, model.StatusFailed)
		r.record(logger, "save run error", func() error { return r.Store.SaveRunError(ctx, runID, err) })
		logger.Error("report run failed", zap.String("code", utils.CodeOf(err)), zap.Error(err))
	}()

	// --- INGESTION STAGE ---
	r.setStatus(ctx, logger, runID, model.StatusIngesting)
	tracker.StartStage(StageIngestion)
	parsed, err := r.ingest(logger, job.Files)
	tracker.EndStage(StageIngestion, countRows(parsed), err)
	if err != nil {
		return nil, err
	}

	// --- AGGREGATION STAGE ---
	r.setStatus(ctx, logger, runID, model.StatusAggregating)
	tracker.StartStage(StageAggregation)
	report, err := Aggregate(parsed, AggregateOptions{
		LegacyColumnDefaults: r.LegacyColumnDefaults,
		Logger:               logger,
		Tracker:              tracker,
	})
	if err != nil {
		tracker.EndStage(StageAggregation, 0, err)
		return nil, err
	}
	tracker.EndStage(StageAggregation, int64(report.Employees()), nil)
	tracker.RecordReport(report)

	// --- EXPORT STAGE ---
	r.setStatus(ctx, logger, runID, model.StatusExporting)
	tracker.StartStage(StageExport)
	path, err := serializer.Serialize(report, job.OutputName())
	tracker.EndStage(StageExport, int64(report.Len()), err)
	if err != nil {
		return nil, err
	}

	tracker.Complete()
	metrics := tracker.Metrics()
	r.record(logger, "save run output", func() error { return r.Store.SaveRunOutput(ctx, runID, path, metrics) })
	r.record(logger, "save department totals", func() error {
		return r.Store.SaveDepartmentTotals(ctx, runID, report.Summary())
	})
	r.setStatus(ctx, logger, runID, model.StatusCompleted)

	logger.Info("report written",
		zap.String("path", path),
		zap.Int("departments", metrics.Departments),
		zap.Int("employees", metrics.Employees),
		zap.Int64("rows", metrics.TotalRows),
		zap.Duration("duration", metrics.Duration),
	)

	return &RunResult{RunID: runID, Path: path, Report: report, Metrics: metrics}, nil
}

// ingest opens every source, then reads them all. The handles are released
// before returning, whatever happened.
func (r *Runner) ingest(logger *zap.Logger, names []string) ([]ParsedSource, error) {
	set, err := OpenSources(names, r.Opener)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := set.Close(); cerr != nil {
			logger.Warn("failed to close sources", zap.Error(cerr))
		}
	}()
	return set.ReadAll()
}

func (r *Runner) setStatus(ctx context.Context, logger *zap.Logger, runID, status string) {
	r.record(logger, "update run status", func() error { return r.Store.UpdateRunStatus(ctx, runID, status) })
}

// record runs a history write. History is best effort: failures are logged
// and never fail the run.
func (r *Runner) record(logger *zap.Logger, what string, fn func() error) {
	if r.Store == nil {
		return
	}
	if err := fn(); err != nil {
		logger.Warn("run history write failed", zap.String("op", what), zap.Error(err))
	}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func countRows(sources []ParsedSource) int64 {
	var n int64
	for _, s := range sources {
		n += int64(len(s.Rows))
	}
	return n
}
