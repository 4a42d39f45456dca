package pipeline

import (
	"time"

	"go.uber.org/zap"

	"employee-reports/internal/model"
)

// Stage names of a report run.
const (
	StageIngestion   = "ingestion"
	StageAggregation = "aggregation"
	StageExport      = "export"
)

// Tracker collects stage and source metrics of one run. A nil Tracker
// ignores every call.
type Tracker struct {
	metrics *model.RunMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewTracker creates a tracker for runID.
func NewTracker(runID string, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{logger: logger, now: time.Now}
	t.metrics = &model.RunMetrics{
		RunID:     runID,
		StartTime: t.now(),
		Status:    "running",
	}
	return t
}

// StartStage marks the start of a run stage
func (t *Tracker) StartStage(stage string) {
	if t == nil {
		return
	}
	t.metrics.Stages = append(t.metrics.Stages, model.StageMetrics{
		Name:      stage,
		StartTime: t.now(),
		Status:    "running",
	})
	t.logger.Debug("stage started", zap.String("stage", stage))
}

// EndStage marks the end of the most recent run of stage.
func (t *Tracker) EndStage(stage string, recordsProcessed int64, err error) {
	if t == nil {
		return
	}
	s := t.stage(stage)
	if s == nil {
		return
	}
	now := t.now()
	s.EndTime = &now
	s.Duration = now.Sub(s.StartTime)
	s.RecordsProcessed = recordsProcessed
	s.Status = "completed"
	if err != nil {
		s.Status = "failed"
	}
	t.logger.Debug("stage finished",
		zap.String("stage", stage),
		zap.String("status", s.Status),
		zap.Int64("records", recordsProcessed),
		zap.Duration("duration", s.Duration),
	)
}

// RecordSource stores the row count and resolved columns of a source.
func (t *Tracker) RecordSource(source string, rows int64, columns map[string]int) {
	if t == nil {
		return
	}
	t.metrics.Sources = append(t.metrics.Sources, model.SourceMetrics{
		SourceURL: source,
		RowsRead:  rows,
		Columns:   columns,
	})
	t.metrics.TotalRows += rows
}

// RecordReport stores the shape of the finished report.
func (t *Tracker) RecordReport(report *model.Report) {
	if t == nil || report == nil {
		return
	}
	t.metrics.Departments = report.Len()
	t.metrics.Employees = report.Employees()
}

// Complete marks the run as completed
func (t *Tracker) Complete() {
	t.finish(model.StatusCompleted)
}

// Fail marks the run as failed
func (t *Tracker) Fail() {
	t.finish(model.StatusFailed)
}

func (t *Tracker) finish(status string) {
	if t == nil {
		return
	}
	now := t.now()
	t.metrics.EndTime = &now
	t.metrics.Duration = now.Sub(t.metrics.StartTime)
	t.metrics.Status = status
}

// Metrics returns a copy of the current metrics.
func (t *Tracker) Metrics() model.RunMetrics {
	if t == nil {
		return model.RunMetrics{}
	}
	m := *t.metrics
	m.Stages = append([]model.StageMetrics(nil), t.metrics.Stages...)
	m.Sources = append([]model.SourceMetrics(nil), t.metrics.Sources...)
	return m
}

func (t *Tracker) stage(name string) *model.StageMetrics {
	for i := len(t.metrics.Stages) - 1; i >= 0; i-- {
		if t.metrics.Stages[i].Name == name {
			return &t.metrics.Stages[i]
		}
	}
	return nil
}
