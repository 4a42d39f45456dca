package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"employee-reports/pkg/utils"
)

// Keys the per-department totals occupy in the report document.
const (
	TotalPayoutKey = "total_payout"
	TotalHoursKey  = "total_hours"
)

// EmployeeEntry is the compensation of one employee
type EmployeeEntry struct {
	Hours  int64
	Rate   int64
	Payout int64
}

// NewEmployeeEntry builds an entry whose Payout is Hours*Rate. It fails
// with utils.ErrOverflow when the payout does not fit in an int64.
func NewEmployeeEntry(hours, rate int64) (EmployeeEntry, error) {
	payout, err := utils.MulInt(hours, rate)
	if err != nil {
		return EmployeeEntry{}, err
	}
	return EmployeeEntry{Hours: hours, Rate: rate, Payout: payout}, nil
}

// Totals are the per-department sums over employee entries
type Totals struct {
	Payout int64
	Hours  int64
}

// DepartmentReport holds the employees of one department, in first-seen
// order, and their totals.
type DepartmentReport struct {
	Name      string
	Totals    Totals
	names     []string
	employees map[string]EmployeeEntry
}

// NewDepartmentReport creates an empty department bucket.
func NewDepartmentReport(name string) *DepartmentReport {
	return &DepartmentReport{
		Name:      name,
		employees: make(map[string]EmployeeEntry),
	}
}

// Put inserts an employee entry, overwriting an earlier entry with the same
// name while keeping its original position.
func (d *DepartmentReport) Put(name string, entry EmployeeEntry) {
	if _, exists := d.employees[name]; !exists {
		d.names = append(d.names, name)
	}
	d.employees[name] = entry
}

// Employee looks up an entry by display name.
func (d *DepartmentReport) Employee(name string) (EmployeeEntry, bool) {
	e, ok := d.employees[name]
	return e, ok
}

// Names returns employee names in first-seen order.
func (d *DepartmentReport) Names() []string {
	return append([]string(nil), d.names...)
}

// Len returns the number of employees.
func (d *DepartmentReport) Len() int {
	return len(d.names)
}

// ComputeTotals recomputes Totals from the employee entries. Totals are left
// unchanged if a sum overflows.
func (d *DepartmentReport) ComputeTotals() error {
	var t Totals
	for _, name := range d.names {
		e := d.employees[name]
		var err error
		if t.Payout, err = utils.AddInt(t.Payout, e.Payout); err != nil {
			return fmt.Errorf("department %q total_payout: %w", d.Name, err)
		}
		if t.Hours, err = utils.AddInt(t.Hours, e.Hours); err != nil {
			return fmt.Errorf("department %q total_hours: %w", d.Name, err)
		}
	}
	d.Totals = t
	return nil
}

// Report maps department names, in first-seen order, to their reports
type Report struct {
	order       []string
	departments map[string]*DepartmentReport
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{departments: make(map[string]*DepartmentReport)}
}

// Department looks up a department by name.
func (r *Report) Department(name string) (*DepartmentReport, bool) {
	d, ok := r.departments[name]
	return d, ok
}

// Ensure returns the named department, creating it if needed.
func (r *Report) Ensure(name string) *DepartmentReport {
	if d, ok := r.departments[name]; ok {
		return d
	}
	d := NewDepartmentReport(name)
	r.departments[name] = d
	r.order = append(r.order, name)
	return d
}

// Departments returns department names in first-seen order.
func (r *Report) Departments() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of departments.
func (r *Report) Len() int {
	return len(r.order)
}

// Employees returns the number of employee entries across all departments.
func (r *Report) Employees() int {
	n := 0
	for _, name := range r.order {
		n += r.departments[name].Len()
	}
	return n
}

// Finalize computes the totals of every department.
func (r *Report) Finalize() error {
	for _, name := range r.order {
		if err := r.departments[name].ComputeTotals(); err != nil {
			return err
		}
	}
	return nil
}

// Summary flattens the report into per-department totals.
func (r *Report) Summary() []DepartmentTotal {
	out := make([]DepartmentTotal, 0, len(r.order))
	for _, name := range r.order {
		d := r.departments[name]
		out = append(out, DepartmentTotal{
			Department:  name,
			Employees:   d.Len(),
			TotalHours:  d.Totals.Hours,
			TotalPayout: d.Totals.Payout,
		})
	}
	return out
}

// ------------------- Document encoding -------------------
//
// The document keeps the historical flat shape: employees and the two totals
// share one object per department. Hours, rate and totals are written as
// decimal strings, payout as a number.

type employeeDoc struct {
	Hours  string `json:"hours"`
	Rate   string `json:"rate"`
	Payout int64  `json:"payout"`
}

// MarshalJSON writes departments in first-seen order.
func (r *Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeMember(&buf, name, r.departments[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes employees in first-seen order followed by the totals.
func (d *DepartmentReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range d.names {
		if name == TotalPayoutKey || name == TotalHoursKey {
			return nil, fmt.Errorf("department %q: employee name %q collides with a total field", d.Name, name)
		}
		e := d.employees[name]
		doc := employeeDoc{Hours: utils.FormatInt(e.Hours), Rate: utils.FormatInt(e.Rate), Payout: e.Payout}
		if err := writeMember(&buf, name, doc); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, TotalPayoutKey, utils.FormatInt(d.Totals.Payout)); err != nil {
		return nil, err
	}
	buf.WriteByte(',')
	if err := writeMember(&buf, TotalHoursKey, utils.FormatInt(d.Totals.Hours)); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a report document, keeping member order.
func (r *Report) UnmarshalJSON(data []byte) error {
	*r = *NewReport()
	return readObject(data, func(key string, raw json.RawMessage) error {
		if _, dup := r.departments[key]; dup {
			return fmt.Errorf("duplicate department %q", key)
		}
		d := r.Ensure(key)
		return d.UnmarshalJSON(raw)
	})
}

// UnmarshalJSON reads one department object.
func (d *DepartmentReport) UnmarshalJSON(data []byte) error {
	name := d.Name
	*d = *NewDepartmentReport(name)
	return readObject(data, func(key string, raw json.RawMessage) error {
		switch key {
		case TotalPayoutKey:
			return decodeInt(raw, &d.Totals.Payout)
		case TotalHoursKey:
			return decodeInt(raw, &d.Totals.Hours)
		}
		var doc struct {
			Hours  json.RawMessage `json:"hours"`
			Rate   json.RawMessage `json:"rate"`
			Payout json.RawMessage `json:"payout"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("employee %q: %w", key, err)
		}
		var hours, rate, payout int64
		if err := decodeInt(doc.Hours, &hours); err != nil {
			return fmt.Errorf("employee %q hours: %w", key, err)
		}
		if err := decodeInt(doc.Rate, &rate); err != nil {
			return fmt.Errorf("employee %q rate: %w", key, err)
		}
		if err := decodeInt(doc.Payout, &payout); err != nil {
			return fmt.Errorf("employee %q payout: %w", key, err)
		}
		entry, err := NewEmployeeEntry(hours, rate)
		if err != nil {
			return fmt.Errorf("employee %q: %w", key, err)
		}
		if entry.Payout != payout {
			return fmt.Errorf("employee %q: payout %d is not hours*rate (%d)", key, payout, entry.Payout)
		}
		d.Put(key, entry)
		return nil
	})
}

// writeMember appends `"key":value` without HTML escaping.
func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := encodeNoEscape(key)
	if err != nil {
		return err
	}
	v, err := encodeNoEscape(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// readObject walks the members of a JSON object in document order.
func readObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// decodeInt accepts an integer written either as a JSON number or a string.
func decodeInt(raw json.RawMessage, dst *int64) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing value")
	}
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}
