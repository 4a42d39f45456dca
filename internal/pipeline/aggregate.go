package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"employee-reports/internal/model"
	"employee-reports/pkg/utils"
)

// AggregateOptions tunes how sources are folded into a report.
type AggregateOptions struct {
	// LegacyColumnDefaults maps missing required columns to the first column.
	LegacyColumnDefaults bool
	Logger               *zap.Logger
	Tracker              *Tracker
}

// Aggregate folds the rows of every source, in order, into a new payout
// report and computes the department totals. Department and employee names
// are used as read; a later row for the same department and name replaces
// the earlier one.
func Aggregate(sources []ParsedSource, opts AggregateOptions) (*model.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := model.NewReport()
	for _, src := range sources {
		cols, missing, err := ValidateColumns(src.Name, ResolveColumns(src.Header), opts.LegacyColumnDefaults)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			logger.Warn("required columns not found, using first column",
				zap.String("source", src.Name),
				zap.Strings("columns", missing),
			)
		}

		if err := foldSource(report, src, cols); err != nil {
			return nil, err
		}
		opts.Tracker.RecordSource(src.Name, int64(len(src.Rows)), cols.AsMap())
		logger.Debug("source aggregated",
			zap.String("source", src.Name),
			zap.Int("rows", len(src.Rows)),
		)
	}

	if err := report.Finalize(); err != nil {
		return nil, utils.NewTotalsError(err)
	}
	return report, nil
}

// foldSource adds every data row of src to report.
func foldSource(report *model.Report, src ParsedSource, cols ColumnIndex) error {
	width := maxIndex(cols) + 1
	for i, row := range src.Rows {
		line := i + 2
		if i < len(src.Lines) {
			line = src.Lines[i]
		}
		if len(row) < width {
			return utils.NewParseError(src.Name, line, "row",
				fmt.Errorf("row has %d fields, need at least %d", len(row), width))
		}

		hours, err := utils.ParseInt(row[cols.HoursWorked])
		if err != nil {
			return utils.NewParseError(src.Name, line, ColumnHoursWorked, err)
		}
		rate, err := utils.ParseInt(row[cols.Rate])
		if err != nil {
			return utils.NewParseError(src.Name, line, ColumnRate, err)
		}

		entry, err := model.NewEmployeeEntry(hours, rate)
		if err != nil {
			return utils.NewParseError(src.Name, line, "payout", err)
		}
		report.Ensure(row[cols.Department]).Put(row[cols.Name], entry)
	}
	return nil
}

// maxIndex returns the highest column position a row must reach.
func maxIndex(cols ColumnIndex) int {
	m := 0
	for _, p := range []int{cols.Name, cols.Department, cols.HoursWorked, cols.Rate} {
		if p > m {
			m = p
		}
	}
	return m
}
