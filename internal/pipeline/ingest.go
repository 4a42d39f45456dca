package pipeline

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"employee-reports/pkg/utils"
)

// ------------------- Ingestion -------------------

// Opener opens an input source by name.
type Opener func(name string) (io.ReadCloser, error)

// FileOpener opens sources from the local filesystem.
func FileOpener(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// Source is one opened input.
type Source struct {
	Name   string
	reader io.ReadCloser
}

// SourceSet holds every opened input of a run. Close releases all of them.
type SourceSet struct {
	Sources []Source
}

// OpenSources opens every named source before any is read. If one fails,
// the handles opened so far are closed and an input-access error is returned.
func OpenSources(names []string, open Opener) (*SourceSet, error) {
	if open == nil {
		open = FileOpener
	}
	set := &SourceSet{Sources: make([]Source, 0, len(names))}
	for _, name := range names {
		rc, err := open(name)
		if err != nil {
			set.Close()
			return nil, utils.NewInputAccessError(name, err)
		}
		set.Sources = append(set.Sources, Source{Name: name, reader: rc})
	}
	return set, nil
}

// Close releases every handle, returning the joined close errors.
func (s *SourceSet) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := range s.Sources {
		if s.Sources[i].reader == nil {
			continue
		}
		if err := s.Sources[i].reader.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Sources[i].reader = nil
	}
	return errors.Join(errs...)
}

// ParsedSource is the header and data rows of one source.
type ParsedSource struct {
	Name   string
	Header []string
	Rows   [][]string
	Lines  []int // file line of each row
}

// ReadAll reads every source of the set to completion, in order.
func (s *SourceSet) ReadAll() ([]ParsedSource, error) {
	parsed := make([]ParsedSource, 0, len(s.Sources))
	for _, src := range s.Sources {
		p, err := ReadSource(src.Name, src.reader)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, p)
	}
	return parsed, nil
}

// ReadSource decodes comma-delimited text: the first record is the header,
// every later record is a data row.
func ReadSource(name string, r io.Reader) (ParsedSource, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err == io.EOF {
		return ParsedSource{}, utils.NewParseError(name, 1, "header", errors.New("source is empty"))
	}
	if err != nil {
		return ParsedSource{}, decodeError(name, err)
	}

	p := ParsedSource{Name: name, Header: header}
	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			return p, nil
		}
		if err != nil {
			return ParsedSource{}, decodeError(name, err)
		}
		line, _ := csvReader.FieldPos(0)
		p.Rows = append(p.Rows, row)
		p.Lines = append(p.Lines, line)
	}
}

// decodeError maps malformed records to PARSE and read failures to INPUT_ACCESS.
func decodeError(name string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return utils.NewParseError(name, pe.Line, "record", pe.Err)
	}
	return utils.NewInputAccessError(name, err)
}
