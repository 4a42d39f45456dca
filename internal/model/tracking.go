package model

import "time"

// RunMetrics summarizes one report run
type RunMetrics struct {
	RunID       string          `json:"run_id"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     *time.Time      `json:"end_time,omitempty"`
	Duration    time.Duration   `json:"duration"`
	Status      string          `json:"status"`
	Stages      []StageMetrics  `json:"stages"`
	Sources     []SourceMetrics `json:"sources"`
	TotalRows   int64           `json:"total_rows"`
	Departments int             `json:"departments"`
	Employees   int             `json:"employees"`
}

// StageMetrics represents metrics for a specific run stage
type StageMetrics struct {
	Name             string        `json:"name"`
	StartTime        time.Time     `json:"start_time"`
	EndTime          *time.Time    `json:"end_time,omitempty"`
	Duration         time.Duration `json:"duration"`
	RecordsProcessed int64         `json:"records_processed"`
	Status           string        `json:"status"` // "running", "completed", "failed"
}

// SourceMetrics represents metrics for a specific input source
type SourceMetrics struct {
	SourceURL string         `json:"source_url"`
	RowsRead  int64          `json:"rows_read"`
	Columns   map[string]int `json:"columns,omitempty"` // resolved column indices
}
