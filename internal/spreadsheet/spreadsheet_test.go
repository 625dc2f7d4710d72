package spreadsheet

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
)

func TestWriteEmployeesReadsBack(t *testing.T) {
	employees := []hrms.Employee{
		{EmployeeID: "EMP001", FullName: "Ann Lee", Email: "a@x.com", Department: "Eng"},
		{EmployeeID: "EMP002", FullName: "Bo Chen", Email: "bo@x.com", Department: "Sales"},
	}
	var buf bytes.Buffer
	if err := WriteEmployees(&buf, employees); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := ReadRows(&buf, "employees.xlsx")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if strings.Join(rows[0], "|") != "Employee ID|Full Name|Email|Department" {
		t.Fatalf("header = %v", rows[0])
	}

	parsed, err := ParseEmployees(rows)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed) != 2 || parsed[1].Line != 3 || parsed[1].Input.FullName != "Bo Chen" {
		t.Fatalf("unexpected parsed rows: %+v", parsed)
	}
}

func TestWriteAttendanceUsesNames(t *testing.T) {
	records := []hrms.AttendanceRecord{
		{EmployeeID: "EMP001", Date: "2024-03-01", Status: hrms.StatusPresent},
		{EmployeeID: "EMP404", Date: "2024-03-02", Status: hrms.StatusAbsent},
	}
	var buf bytes.Buffer
	if err := WriteAttendance(&buf, records, map[string]string{"EMP001": "Ann Lee"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := ReadRows(&buf, "attendance.xlsx")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got := strings.Join(rows[1], "|"); got != "2024-03-01|EMP001|Ann Lee|Present" {
		t.Fatalf("row 1 = %q", got)
	}
	if got := rows[2]; len(got) < 4 || got[2] != "" || got[3] != "Absent" {
		t.Fatalf("row 2 = %v", got)
	}
}

func TestReadRowsRejectsGarbage(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("not a workbook"), "roster.xlsx"); err == nil {
		t.Fatalf("expected an error for invalid xlsx")
	}
}

func TestParseEmployeesHeaderMapping(t *testing.T) {
	rows := [][]string{
		{" Department ", "NAME", "E-mail ignored", "Email", "Employee  ID"},
		{"Eng", "Ann Lee", "x", "a@x.com", "EMP001"},
		{"", "  ", "", "", ""},
		{"Ops", "Cy Diaz", "", "cy@x.com", "EMP003"},
	}
	parsed, err := ParseEmployees(rows)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []EmployeeRow{
		{Line: 2, Input: hrms.EmployeeInput{EmployeeID: "EMP001", FullName: "Ann Lee", Email: "a@x.com", Department: "Eng"}},
		{Line: 4, Input: hrms.EmployeeInput{EmployeeID: "EMP003", FullName: "Cy Diaz", Email: "cy@x.com", Department: "Ops"}},
	}
	if len(parsed) != len(want) {
		t.Fatalf("parsed %d rows, want %d", len(parsed), len(want))
	}
	for i := range want {
		if parsed[i] != want[i] {
			t.Fatalf("row %d = %+v, want %+v", i, parsed[i], want[i])
		}
	}
}

func TestParseEmployeesMissingColumn(t *testing.T) {
	_, err := ParseEmployees([][]string{{"Employee ID", "Full Name", "Email"}})
	if err == nil || !strings.Contains(err.Error(), "department") {
		t.Fatalf("expected missing department error, got %v", err)
	}
	if _, err := ParseEmployees(nil); !errors.Is(err, ErrEmptySheet) {
		t.Fatalf("empty input = %v", err)
	}
}

type fakeCreator struct {
	calls []hrms.EmployeeInput
	fail  map[string]error
}

func (f *fakeCreator) CreateEmployee(ctx context.Context, in hrms.EmployeeInput) (*hrms.Employee, error) {
	f.calls = append(f.calls, in)
	if err := f.fail[in.EmployeeID]; err != nil {
		return nil, err
	}
	return &hrms.Employee{EmployeeID: in.EmployeeID}, nil
}

func TestImportEmployees(t *testing.T) {
	api := &fakeCreator{fail: map[string]error{
		"EMP002": &apiclient.APIError{StatusCode: 400, Detail: "Employee with ID 'EMP002' already exists"},
	}}
	rows := []EmployeeRow{
		{Line: 2, Input: hrms.EmployeeInput{EmployeeID: "EMP001", FullName: "Ann", Email: "a@x.com", Department: "Eng"}},
		{Line: 3, Input: hrms.EmployeeInput{EmployeeID: "EMP002", FullName: "Bo", Email: "bo@x.com", Department: "Eng"}},
		{Line: 4, Input: hrms.EmployeeInput{EmployeeID: "EMP003", FullName: "Cy", Email: "bad", Department: "Eng"}},
		{Line: 5, Input: hrms.EmployeeInput{EmployeeID: "EMP004", FullName: "Di", Email: "d@x.com", Department: "Ops"}},
	}

	result, err := ImportEmployees(context.Background(), api, rows)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if strings.Join(result.Created, ",") != "EMP001,EMP004" {
		t.Fatalf("created = %v", result.Created)
	}
	if len(api.calls) != 3 {
		t.Fatalf("invalid rows must not reach the backend, calls = %d", len(api.calls))
	}
	want := []RowError{
		{Line: 3, EmployeeID: "EMP002", Message: "Employee with ID 'EMP002' already exists"},
		{Line: 4, EmployeeID: "EMP003", Message: "Invalid email format"},
	}
	if len(result.Failed) != len(want) {
		t.Fatalf("failed = %+v", result.Failed)
	}
	for i := range want {
		if result.Failed[i] != want[i] {
			t.Fatalf("failure %d = %+v, want %+v", i, result.Failed[i], want[i])
		}
	}
	if got := result.Summary(); got != "Imported 2 employee(s), 2 row(s) skipped" {
		t.Fatalf("summary = %q", got)
	}
}

func TestImportEmployeesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &fakeCreator{}
	_, err := ImportEmployees(ctx, api, []EmployeeRow{{Line: 2, Input: hrms.EmployeeInput{EmployeeID: "EMP001"}}})
	if !errors.Is(err, context.Canceled) || len(api.calls) != 0 {
		t.Fatalf("err = %v, calls = %d", err, len(api.calls))
	}
}
