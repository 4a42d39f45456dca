package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"employee-reports/internal/config"
	"employee-reports/internal/model"
	"employee-reports/internal/observability"
	"employee-reports/internal/pipeline"
	"employee-reports/internal/store"
	"employee-reports/pkg/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "❌ %v\n", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "❌ failed to load config: %v\n", err)
		return 1
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s %s\n", cfg.App.Name, cfg.App.Version)
		return 0
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(stderr, "❌ failed to init logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var history *store.Store
	if cfg.History.Enabled() {
		history, err = store.Open(cfg.History.DBPath)
		if err != nil {
			logger.Warn("run history disabled", zap.String("db", cfg.History.DBPath), zap.Error(err))
		} else {
			defer history.Close()
		}
	}

	if opts.history {
		return listHistory(ctx, history, stdout, stderr)
	}
	if opts.runID != "" {
		return showRun(ctx, history, opts.runID, stdout, stderr)
	}

	kind, err := model.ParseReportKind(opts.report)
	if err != nil {
		fmt.Fprintln(stdout, userMessage(err))
		return 1
	}
	format, err := model.ParseOutputFormat(opts.format)
	if err != nil {
		fmt.Fprintln(stdout, userMessage(err))
		return 1
	}

	output := utils.NewOutputManager(cfg.Report.OutputDir)
	if err := output.EnsureOutputDir(); err != nil {
		fmt.Fprintln(stdout, userMessage(err))
		return 1
	}

	runner := &pipeline.Runner{
		Logger:               logger,
		Store:                history,
		Output:               output,
		LegacyColumnDefaults: cfg.Report.LegacyColumnDefaults,
	}
	job := model.ReportJobSpec{
		Files:  opts.files,
		Report: kind,
		Format: format,
		Output: opts.output,
	}

	res, err := runner.Run(ctx, pipeline.NewRunID(), job)
	if err != nil {
		fmt.Fprintln(stdout, userMessage(err))
		return 1
	}

	fmt.Fprintf(stdout, "✅ Report saved to file: %s\n", res.Path)
	return 0
}

// userMessage turns a run error into the line shown to the operator.
func userMessage(err error) string {
	re := utils.ToReportError(err)
	switch re.Code {
	case utils.CodeInputAccess:
		return fmt.Sprintf("❌ The file path is incorrect. (%v)", re)
	case utils.CodeUnknownReport:
		return "❌ Unknown report type."
	case utils.CodeUnknownFormat:
		return "❌ Unknown outgoing format."
	case utils.CodeSerialization:
		return fmt.Sprintf("❌ Failed to save report: %v", re)
	default:
		return fmt.Sprintf("❌ %v", re)
	}
}
