package pipeline

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"employee-reports/internal/model"
	"employee-reports/pkg/utils"
)

var data1CSV = `id,email,name,department,hours_worked,hourly_rate
1,alice@example.com,Alice Johnson,Marketing,160,50
2,bob@example.com,Bob Smith,Design,150,40
3,carol@example.com,Carol Williams,Design,170,60
`

var data2CSV = `department,id,email,name,hours_worked,rate
HR,101,grace@example.com,Grace Lee,160,45
Marketing,102,henry@example.com,Henry Martin,150,35
HR,103,ivy@example.com,Ivy Clark,158,38
`

var data3CSV = `email,name,department,hours_worked,salary,id
karen@example.com,Karen White,Sales,165,50,201
liam@example.com,Liam Harris,HR,155,42,202
mia@example.com,Mia Young,Sales,160,37,203
`

func entry(hours, rate int64) model.EmployeeEntry {
	e, err := model.NewEmployeeEntry(hours, rate)
	if err != nil {
		panic(err)
	}
	return e
}

func parseSources(t *testing.T, bodies ...string) []ParsedSource {
	t.Helper()
	var out []ParsedSource
	for i, body := range bodies {
		p, err := ReadSource("data"+string(rune('1'+i))+".csv", strings.NewReader(body))
		if err != nil {
			t.Fatalf("ReadSource failed: %v", err)
		}
		out = append(out, p)
	}
	return out
}

func mustAggregate(t *testing.T, sources []ParsedSource) *model.Report {
	t.Helper()
	report, err := Aggregate(sources, AggregateOptions{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	return report
}

func assertInvariants(t *testing.T, report *model.Report) {
	t.Helper()
	for _, dept := range report.Departments() {
		d, _ := report.Department(dept)
		var payout, hours int64
		for _, name := range d.Names() {
			e, _ := d.Employee(name)
			if e.Payout != e.Hours*e.Rate {
				t.Errorf("%s/%s: payout %d != %d*%d", dept, name, e.Payout, e.Hours, e.Rate)
			}
			payout += e.Payout
			hours += e.Hours
		}
		if d.Totals.Payout != payout || d.Totals.Hours != hours {
			t.Errorf("%s: totals %+v, want payout %d hours %d", dept, d.Totals, payout, hours)
		}
	}
}

func TestAggregateTwoRowScenario(t *testing.T) {
	report := mustAggregate(t, parseSources(t, "name,department,hours_worked,rate\nAlice,HR,160,50\nBob,HR,150,50\n"))

	if got := report.Departments(); !reflect.DeepEqual(got, []string{"HR"}) {
		t.Fatalf("Departments = %v", got)
	}
	hr, _ := report.Department("HR")
	alice, _ := hr.Employee("Alice")
	bob, _ := hr.Employee("Bob")
	if alice != entry(160, 50) || bob != entry(150, 50) {
		t.Errorf("Alice = %+v, Bob = %+v", alice, bob)
	}
	if hr.Totals != (model.Totals{Payout: 15500, Hours: 310}) {
		t.Errorf("Totals = %+v", hr.Totals)
	}
}

func TestAggregateMergesSourcesWithDifferentLayouts(t *testing.T) {
	report := mustAggregate(t, parseSources(t, data1CSV, data2CSV, data3CSV))
	assertInvariants(t, report)

	want := []model.DepartmentTotal{
		{Department: "Marketing", Employees: 2, TotalHours: 310, TotalPayout: 160*50 + 150*35},
		{Department: "Design", Employees: 2, TotalHours: 320, TotalPayout: 150*40 + 170*60},
		{Department: "HR", Employees: 3, TotalHours: 473, TotalPayout: 160*45 + 158*38 + 155*42},
		{Department: "Sales", Employees: 2, TotalHours: 325, TotalPayout: 165*50 + 160*37},
	}
	if got := report.Summary(); !reflect.DeepEqual(got, want) {
		t.Errorf("Summary =\n%+v\nwant\n%+v", got, want)
	}
}

func TestAggregateSingleEmployeeDepartment(t *testing.T) {
	report := mustAggregate(t, parseSources(t, "name,department,hours_worked,rate\nSolo,Ops,12,7\n"))
	ops, _ := report.Department("Ops")
	solo, _ := ops.Employee("Solo")
	if ops.Totals.Payout != solo.Payout || ops.Totals.Hours != solo.Hours {
		t.Errorf("Totals = %+v, employee = %+v", ops.Totals, solo)
	}
}

func TestAggregateLaterRowOverwrites(t *testing.T) {
	report := mustAggregate(t, parseSources(t,
		"name,department,hours_worked,rate\nAlice,HR,10,10\n",
		"department,name,hours_worked,rate\nHR,Alice,20,10\nIT,Alice,5,5\n",
	))
	hr, _ := report.Department("HR")
	if hr.Len() != 1 {
		t.Fatalf("HR has %d employees, want 1", hr.Len())
	}
	if hr.Totals != (model.Totals{Payout: 200, Hours: 20}) {
		t.Errorf("HR totals = %+v", hr.Totals)
	}
	if _, ok := report.Department("IT"); !ok {
		t.Error("IT department missing")
	}
}

func TestAggregateKeysAreRaw(t *testing.T) {
	report := mustAggregate(t, parseSources(t, "name,department,hours_worked,rate\nAlice,HR ,1,1\nAlice,HR,1,1\n"))
	if report.Len() != 2 {
		t.Errorf("Departments = %q, want \"HR \" and \"HR\" kept apart", report.Departments())
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	sources := parseSources(t, data1CSV, data2CSV, data3CSV)
	first := mustAggregate(t, sources)
	second := mustAggregate(t, sources)
	if !reflect.DeepEqual(first, second) {
		t.Error("aggregating the same sources twice gave different reports")
	}
}

func TestAggregateParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		column string
		line   int
	}{
		{"fractional hours", "name,department,hours_worked,rate\nA,HR,1,1\nB,HR,7.5,10\n", "hours_worked", 3},
		{"text rate", "name,department,hours_worked,rate\nA,HR,10,ten\n", "rate", 2},
		{"empty rate", "name,department,hours_worked,rate\nA,HR,10,\n", "rate", 2},
		{"short row", "name,department,hours_worked,rate\nA,HR\n", "row", 2},
		{"payout overflow", "name,department,hours_worked,rate\nC,HR,1,1\nA,HR,4294967296,4294967296\n", "payout", 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Aggregate(parseSources(t, c.body), AggregateOptions{})
			re := utils.ToReportError(err)
			if re == nil || re.Code != utils.CodeParse {
				t.Fatalf("err = %v, want parse error", err)
			}
			if re.Details["column"] != c.column || re.Details["line"] != c.line {
				t.Errorf("details = %v, want column %s line %d", re.Details, c.column, c.line)
			}
		})
	}
}

func TestAggregateTotalsOverflow(t *testing.T) {
	body := "name,department,hours_worked,rate\nB,HR,9223372036854775807,1\nC,HR,1,1\n"
	report, err := Aggregate(parseSources(t, body), AggregateOptions{})
	if report != nil {
		t.Errorf("report = %+v, want nil", report)
	}
	if utils.CodeOf(err) != utils.CodeParse || !errors.Is(err, utils.ErrOverflow) {
		t.Fatalf("err = %v, want parse error wrapping overflow", err)
	}
	if !strings.Contains(err.Error(), `"HR"`) {
		t.Errorf("err = %v, want department named", err)
	}
}

func TestAggregateMissingColumn(t *testing.T) {
	sources := parseSources(t, "name,hours_worked,rate\nAlice,10,5\n")

	_, err := Aggregate(sources, AggregateOptions{})
	if utils.CodeOf(err) != utils.CodeMissingColumn {
		t.Fatalf("err = %v, want missing column error", err)
	}

	// legacy mode reads the department from the first column
	report, err := Aggregate(sources, AggregateOptions{LegacyColumnDefaults: true})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	alice, ok := report.Department("Alice")
	if !ok {
		t.Fatalf("Departments = %v", report.Departments())
	}
	if alice.Totals != (model.Totals{Payout: 50, Hours: 10}) {
		t.Errorf("Totals = %+v", alice.Totals)
	}
}

func TestAggregateRecordsSourceMetrics(t *testing.T) {
	tracker := NewTracker("run-1", nil)
	_, err := Aggregate(parseSources(t, data1CSV, data2CSV), AggregateOptions{Tracker: tracker})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	m := tracker.Metrics()
	if len(m.Sources) != 2 || m.TotalRows != 6 {
		t.Fatalf("metrics = %+v", m)
	}
	if m.Sources[1].Columns[ColumnDepartment] != 0 || m.Sources[1].Columns[ColumnRate] != 5 {
		t.Errorf("data2 columns = %v", m.Sources[1].Columns)
	}
}
