package pipeline

import (
	"strings"

	"employee-reports/pkg/utils"
)

// Column names located in every source header.
const (
	ColumnName        = "name"
	ColumnEmail       = "email"
	ColumnDepartment  = "department"
	ColumnHoursWorked = "hours_worked"
	ColumnRate        = "rate"
)

// rateMarkers are substrings that identify the pay-rate column.
var rateMarkers = []string{"hourly_rate", "salary", "rate"}

// requiredColumns feed the report; email is located but never required.
var requiredColumns = []string{ColumnName, ColumnDepartment, ColumnHoursWorked, ColumnRate}

// ColumnIndex holds the positions of the named columns in one source.
// A negative index means the header did not contain the column.
type ColumnIndex struct {
	Name        int
	Email       int
	Department  int
	HoursWorked int
	Rate        int
}

// ResolveColumns scans header fields left to right. A field containing one of
// the rate markers is the rate column; otherwise a field equal to a column
// name is that column. When a header repeats, the last match wins.
func ResolveColumns(header []string) ColumnIndex {
	idx := ColumnIndex{Name: -1, Email: -1, Department: -1, HoursWorked: -1, Rate: -1}
	for i, raw := range header {
		h := utils.CleanHeader(raw)
		if isRateHeader(h) {
			idx.Rate = i
			continue
		}
		switch h {
		case ColumnHoursWorked:
			idx.HoursWorked = i
		case ColumnDepartment:
			idx.Department = i
		case ColumnName:
			idx.Name = i
		case ColumnEmail:
			idx.Email = i
		}
	}
	return idx
}

func isRateHeader(h string) bool {
	for _, m := range rateMarkers {
		if strings.Contains(h, m) {
			return true
		}
	}
	return false
}

// Missing lists the required columns the header lacks.
func (c ColumnIndex) Missing() []string {
	var missing []string
	for _, col := range requiredColumns {
		if c.position(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}

// WithDefaults maps every unresolved column to the first column.
func (c ColumnIndex) WithDefaults() ColumnIndex {
	for _, p := range []*int{&c.Name, &c.Email, &c.Department, &c.HoursWorked, &c.Rate} {
		if *p < 0 {
			*p = 0
		}
	}
	return c
}

// AsMap returns the resolved positions keyed by column name.
func (c ColumnIndex) AsMap() map[string]int {
	return map[string]int{
		ColumnName:        c.Name,
		ColumnEmail:       c.Email,
		ColumnDepartment:  c.Department,
		ColumnHoursWorked: c.HoursWorked,
		ColumnRate:        c.Rate,
	}
}

func (c ColumnIndex) position(col string) int {
	switch col {
	case ColumnName:
		return c.Name
	case ColumnEmail:
		return c.Email
	case ColumnDepartment:
		return c.Department
	case ColumnHoursWorked:
		return c.HoursWorked
	case ColumnRate:
		return c.Rate
	}
	return -1
}

// ValidateColumns checks a resolved header. With legacy defaults, missing
// columns fall back to the first column and are returned for logging;
// otherwise they are a missing-column error.
func ValidateColumns(source string, idx ColumnIndex, legacyDefaults bool) (ColumnIndex, []string, error) {
	missing := idx.Missing()
	if len(missing) > 0 && !legacyDefaults {
		return idx, missing, utils.NewMissingColumnError(source, missing)
	}
	if legacyDefaults {
		idx = idx.WithDefaults()
	}
	return idx, missing, nil
}
