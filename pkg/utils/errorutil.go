package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried by ReportError.
const (
	CodeInputAccess   = "INPUT_ACCESS"
	CodeParse         = "PARSE"
	CodeMissingColumn = "MISSING_COLUMN"
	CodeSerialization = "SERIALIZATION"
	CodeUnknownReport = "UNKNOWN_REPORT"
	CodeUnknownFormat = "UNKNOWN_FORMAT"
	CodeInvalidJob    = "INVALID_JOB"
	CodeInternal      = "INTERNAL"
)

// ReportError standardizes failures surfaced by a report run.
type ReportError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *ReportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewReportError constructs a ReportError.
func NewReportError(code, message string, details map[string]any, err error) *ReportError {
	return &ReportError{Code: code, Message: message, Details: details, Err: err}
}

func NewInputAccessError(source string, err error) error {
	return NewReportError(CodeInputAccess, fmt.Sprintf("cannot read source %s", source),
		map[string]any{"source": source}, err)
}

// NewParseError reports a malformed value. line is 1-based and counts the header.
func NewParseError(source string, line int, column string, err error) error {
	return NewReportError(CodeParse, fmt.Sprintf("%s:%d: invalid %s", source, line, column),
		map[string]any{"source": source, "line": line, "column": column}, err)
}

// NewTotalsError reports department totals that cannot be computed.
func NewTotalsError(err error) error {
	return NewReportError(CodeParse, "cannot compute department totals", nil, err)
}

func NewMissingColumnError(source string, columns []string) error {
	return NewReportError(CodeMissingColumn,
		fmt.Sprintf("source %s is missing required column(s): %s", source, strings.Join(columns, ", ")),
		map[string]any{"source": source, "columns": columns}, nil)
}

func NewSerializationError(destination string, err error) error {
	return NewReportError(CodeSerialization, fmt.Sprintf("cannot write report %s", destination),
		map[string]any{"destination": destination}, err)
}

func NewUnknownReportError(kind string) error {
	return NewReportError(CodeUnknownReport, fmt.Sprintf("unknown report type %q", kind),
		map[string]any{"report": kind}, nil)
}

func NewUnknownFormatError(format string) error {
	return NewReportError(CodeUnknownFormat, fmt.Sprintf("unknown outgoing format %q", format),
		map[string]any{"format": format}, nil)
}

// NewInvalidJobError reports a job description that cannot be run.
func NewInvalidJobError(message string) error {
	return NewReportError(CodeInvalidJob, message, nil, nil)
}

// ToReportError converts generic errors to ReportError.
func ToReportError(err error) *ReportError {
	if err == nil {
		return nil
	}
	var reportErr *ReportError
	if errors.As(err, &reportErr) {
		return reportErr
	}
	return &ReportError{
		Code:    CodeInternal,
		Message: "internal error",
		Err:     err,
	}
}

// CodeOf returns the ReportError code of err, or "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToReportError(err).Code
}
