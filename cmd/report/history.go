package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"employee-reports/internal/pipeline"
	"employee-reports/internal/store"
)

const timeLayout = "2006-01-02 15:04:05"

func listHistory(ctx context.Context, history *store.Store, stdout, stderr io.Writer) int {
	if history == nil {
		fmt.Fprintln(stderr, "❌ run history is disabled; set REPORT_HISTORY_DB")
		return 1
	}
	runs, err := history.ListRuns(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "❌ failed to list runs: %v\n", err)
		return 1
	}
	for _, run := range runs {
		fmt.Fprintf(stdout, "%s  %-10s  %s  %s\n",
			run.ID, run.Status, run.CreatedAt.Format(timeLayout), run.OutputPath)
	}
	return 0
}

// showRun prints one recorded run: its job, recorded errors, department
// totals and whether the artifact it wrote can still be read.
func showRun(ctx context.Context, history *store.Store, runID string, stdout, stderr io.Writer) int {
	if history == nil {
		fmt.Fprintln(stderr, "❌ run history is disabled; set REPORT_HISTORY_DB")
		return 1
	}
	run, err := history.GetRun(ctx, runID)
	if errors.Is(err, store.ErrRunNotFound) {
		fmt.Fprintf(stderr, "❌ no run with id %s\n", runID)
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "❌ failed to load run: %v\n", err)
		return 1
	}
	runErrors, err := history.RunErrors(ctx, runID)
	if err != nil {
		fmt.Fprintf(stderr, "❌ failed to load run errors: %v\n", err)
		return 1
	}
	totals, err := history.DepartmentTotals(ctx, runID)
	if err != nil {
		fmt.Fprintf(stderr, "❌ failed to load department totals: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Run:      %s\n", run.ID)
	fmt.Fprintf(stdout, "Status:   %s\n", run.Status)
	fmt.Fprintf(stdout, "Created:  %s\n", run.CreatedAt.Format(timeLayout))
	fmt.Fprintf(stdout, "Report:   %s (%s)\n", run.Spec.Report, run.Spec.Format)
	fmt.Fprintf(stdout, "Sources:  %s\n", strings.Join(run.Spec.Files, ", "))
	if run.Metrics != nil {
		fmt.Fprintf(stdout, "Rows:     %d in %s\n", run.Metrics.TotalRows, run.Metrics.Duration)
	}

	for _, e := range runErrors {
		fmt.Fprintf(stdout, "Error:    [%s] %s\n", e.Code, e.Message)
	}

	if len(totals) > 0 {
		fmt.Fprintf(stdout, "\n%-20s %9s %12s %14s\n", "DEPARTMENT", "EMPLOYEES", "TOTAL_HOURS", "TOTAL_PAYOUT")
		for _, t := range totals {
			fmt.Fprintf(stdout, "%-20s %9d %12d %14d\n", t.Department, t.Employees, t.TotalHours, t.TotalPayout)
		}
	}

	if run.OutputPath != "" {
		report, err := pipeline.ReadReport(run.OutputPath)
		if err != nil {
			fmt.Fprintf(stdout, "\nOutput:   %s (unreadable: %v)\n", run.OutputPath, err)
		} else {
			fmt.Fprintf(stdout, "\nOutput:   %s (%d departments, %d employees)\n",
				run.OutputPath, report.Len(), report.Employees())
		}
	}
	return 0
}
