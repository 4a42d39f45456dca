package model

import (
	"time"

	"employee-reports/pkg/utils"
)

// ReportKind names a report the tool can build.
type ReportKind string

const (
	ReportPayout ReportKind = "payout"
)

// ReportKinds lists the supported report kinds.
var ReportKinds = []ReportKind{ReportPayout}

// ParseReportKind validates a report kind supplied by the caller.
func ParseReportKind(s string) (ReportKind, error) {
	for _, k := range ReportKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", utils.NewUnknownReportError(s)
}

// OutputFormat names an encoding for the report artifact.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
)

// OutputFormats lists the supported output formats.
var OutputFormats = []OutputFormat{FormatJSON}

// ParseOutputFormat validates an output format. An empty string selects json.
func ParseOutputFormat(s string) (OutputFormat, error) {
	if s == "" {
		return FormatJSON, nil
	}
	for _, f := range OutputFormats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", utils.NewUnknownFormatError(s)
}

// Extension returns the file extension artifacts of this format carry.
func (f OutputFormat) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	default:
		return ""
	}
}

// ReportJobSpec holds the parameters of a single report run
type ReportJobSpec struct {
	Files  []string     `json:"files"`  // input sources, read in order
	Report ReportKind   `json:"report"` // e.g. payout
	Format OutputFormat `json:"format"` // e.g. json
	Output string       `json:"output"` // artifact name; defaults to the report kind
}

// OutputName returns the artifact name before extension handling.
func (j ReportJobSpec) OutputName() string {
	if j.Output != "" {
		return j.Output
	}
	return string(j.Report)
}

// Run statuses recorded in the history store.
const (
	StatusPending     = "pending"
	StatusIngesting   = "ingesting"
	StatusAggregating = "aggregating"
	StatusExporting   = "exporting"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
)

// RunRecord is a row of the run history.
type RunRecord struct {
	ID         string        `json:"id"`
	Spec       ReportJobSpec `json:"spec"`
	Status     string        `json:"status"`
	OutputPath string        `json:"output_path,omitempty"`
	Metrics    *RunMetrics   `json:"metrics,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// RunError is an error recorded against a run.
type RunError struct {
	RunID     string    `json:"run_id"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentTotal is the persisted summary of one department of a run.
type DepartmentTotal struct {
	Department  string `json:"department"`
	Employees   int    `json:"employees"`
	TotalHours  int64  `json:"total_hours"`
	TotalPayout int64  `json:"total_payout"`
}
