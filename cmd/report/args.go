package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"employee-reports/internal/model"
)

type options struct {
	files   []string
	report  string
	format  string
	output  string
	history bool
	runID   string
	version bool
}

// parseArgs accepts flags before, between or after the file arguments.
// Everything after "--" is a file.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.report, "report", "", "Report type to generate (payout)")
	fs.StringVar(&opts.format, "outgoing_format", string(model.FormatJSON), "Output type to generate (json)")
	fs.StringVar(&opts.output, "output", "", "Output file `name`; .json is appended if missing (default: report type)")
	fs.BoolVar(&opts.history, "history", false, "List recorded runs and exit (needs REPORT_HISTORY_DB)")
	fs.StringVar(&opts.runID, "run", "", "Show the status, errors and department totals of run `id` and exit (needs REPORT_HISTORY_DB)")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `Employee report generator

Usage:
  report --report payout data1.csv data2.csv
  report data1.csv --report payout --outgoing_format json --output payout.json

Flags:
`)
		fs.PrintDefaults()
	}

	head, tail := args, []string(nil)
	for i, a := range args {
		if a == "--" {
			head, tail = args[:i], args[i+1:]
			break
		}
	}

	rest := head
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		opts.files = append(opts.files, rest[0])
		rest = rest[1:]
	}
	opts.files = append(opts.files, tail...)

	if opts.version || opts.history || opts.runID != "" {
		return opts, nil
	}
	if len(opts.files) == 0 {
		fs.Usage()
		return nil, errors.New("at least one input file is required")
	}
	if opts.report == "" {
		fs.Usage()
		return nil, errors.New("flag -report is required")
	}
	return opts, nil
}
