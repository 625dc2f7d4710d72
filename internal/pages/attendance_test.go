package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/notify"
	"github.com/phillip-england/hrmslite/internal/viewstate"
)

func fixedNow() time.Time {
	return time.Date(2024, time.March, 4, 15, 0, 0, 0, time.UTC)
}

func attendanceAPI() *fakeAPI {
	api := newFakeAPI()
	api.employees = []hrms.Employee{
		{EmployeeID: "EMP001", FullName: "Ann Lee", Department: "Eng", Email: "a@x.com"},
		{EmployeeID: "EMP002", FullName: "Bo Chen", Department: "Sales", Email: "bo@x.com"},
		{EmployeeID: "EMP007", FullName: "Gil Park", Department: "Ops", Email: "g@x.com"},
	}
	api.records["EMP001"] = []hrms.AttendanceRecord{{ID: 1, EmployeeID: "EMP001", Date: "2024-03-01", Status: hrms.StatusPresent}}
	api.records["EMP002"] = []hrms.AttendanceRecord{{ID: 2, EmployeeID: "EMP002", Date: "2024-03-02", Status: hrms.StatusAbsent}}
	api.summaries["EMP007"] = hrms.AttendanceSummary{EmployeeID: "EMP007", EmployeeName: "Gil Park", TotalPresent: 3, TotalAbsent: 1, TotalRecords: 4}
	return api
}

func TestAttendanceDefaults(t *testing.T) {
	page := NewAttendance(attendanceAPI(), nil, fixedNow)
	view := page.View("/attendance")
	if view.MarkDate != "2024-03-04" || view.MarkStatus != hrms.StatusPresent {
		t.Fatalf("unexpected mark defaults: %q %q", view.MarkDate, view.MarkStatus)
	}
	if view.Phase != viewstate.PhaseLoading || view.Selected != "" {
		t.Fatalf("unexpected initial view: %+v", view)
	}
}

func TestAttendanceEmptyAndError(t *testing.T) {
	page := NewAttendance(newFakeAPI(), nil, fixedNow)
	_ = page.Fetch(context.Background())
	if view := page.View(""); view.Phase != viewstate.PhaseEmpty || view.Empty.Title != "No employees found" {
		t.Fatalf("unexpected empty view: %+v", view)
	}

	api := newFakeAPI()
	api.listErr = errors.New("boom")
	page = NewAttendance(api, nil, fixedNow)
	_ = page.Fetch(context.Background())
	view := page.View("/attendance")
	if view.Phase != viewstate.PhaseError || view.Error.Message != "Failed to load employees" || view.Error.RetryURL != "/attendance" {
		t.Fatalf("unexpected error view: %+v", view.Error)
	}
}

func TestAttendanceSelectLoadsRecordsAndSummary(t *testing.T) {
	api := attendanceAPI()
	page := NewAttendance(api, nil, fixedNow)
	_ = page.Fetch(context.Background())

	if err := page.Select(context.Background(), "EMP007"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(api.recordsCalls) != 1 || api.recordsCalls[0].EmployeeID != "EMP007" || !api.recordsCalls[0].Range.IsZero() {
		t.Fatalf("unexpected records calls: %+v", api.recordsCalls)
	}
	if len(api.summaryCalls) != 1 || api.summaryCalls[0] != "EMP007" {
		t.Fatalf("unexpected summary calls: %v", api.summaryCalls)
	}
	view := page.View("")
	if view.SelectedName != "Gil Park" || view.Summary == nil || view.Summary.TotalRecords != 4 {
		t.Fatalf("unexpected panel: %+v", view)
	}
	if !view.NoRecords || view.RecordsLoading {
		t.Fatalf("expected inline no-records state: %+v", view)
	}
}

func TestAttendanceSelectNoneClearsWithoutCalls(t *testing.T) {
	api := attendanceAPI()
	page := NewAttendance(api, nil, fixedNow)
	_ = page.Fetch(context.Background())
	_ = page.Select(context.Background(), "EMP001")
	before := api.networkCalls()

	if err := page.Select(context.Background(), ""); err != nil {
		t.Fatalf("select none: %v", err)
	}
	if api.networkCalls() != before {
		t.Fatalf("clearing the selection hit the backend")
	}
	view := page.View("")
	if view.Selected != "" || len(view.Records) != 0 || view.Summary != nil || view.NoRecords {
		t.Fatalf("panel should be cleared: %+v", view)
	}
}

func TestAttendanceStaleSelectionIsDiscarded(t *testing.T) {
	api := attendanceAPI()
	api.recordGates = map[string]chan struct{}{"EMP001": make(chan struct{})}
	api.recordStarted = make(chan string, 1)
	page := NewAttendance(api, nil, fixedNow)
	_ = page.Fetch(context.Background())

	first := make(chan error, 1)
	go func() { first <- page.Select(context.Background(), "EMP001") }()
	if got := <-api.recordStarted; got != "EMP001" {
		t.Fatalf("unexpected blocked employee %q", got)
	}

	if err := page.Select(context.Background(), "EMP002"); err != nil {
		t.Fatalf("second select: %v", err)
	}
	close(api.recordGates["EMP001"])
	if err := <-first; !errors.Is(err, ErrStaleSelection) {
		t.Fatalf("first select = %v, want ErrStaleSelection", err)
	}

	view := page.View("")
	if view.Selected != "EMP002" || len(view.Records) != 1 || view.Records[0].EmployeeID != "EMP002" {
		t.Fatalf("stale records leaked into the panel: %+v", view.Records)
	}
}

func TestAttendanceFilterApplyAndClear(t *testing.T) {
	api := attendanceAPI()
	page := NewAttendance(api, nil, fixedNow)
	_ = page.Fetch(context.Background())
	_ = page.Select(context.Background(), "EMP001")

	window := hrms.DateRange{StartDate: "2024-03-01", EndDate: "2024-03-31"}
	page.SetFilter(window)
	if err := page.ApplyFilter(context.Background()); err != nil {
		t.Fatalf("apply filter: %v", err)
	}
	if last := api.recordsCalls[len(api.recordsCalls)-1]; last.Range != window {
		t.Fatalf("filter not forwarded: %+v", last)
	}

	if err := page.ClearFilter(context.Background()); err != nil {
		t.Fatalf("clear filter: %v", err)
	}
	if last := api.recordsCalls[len(api.recordsCalls)-1]; !last.Range.IsZero() {
		t.Fatalf("clear should fetch unfiltered: %+v", last)
	}
	if !page.View("").Filter.IsZero() {
		t.Fatalf("filter inputs should be cleared")
	}
	if len(api.recordsCalls) != 3 {
		t.Fatalf("records calls = %d, want 3", len(api.recordsCalls))
	}
}

func TestAttendanceMarkWithoutSelection(t *testing.T) {
	api := attendanceAPI()
	rec := notify.NewRecorder()
	page := NewAttendance(api, rec, fixedNow)
	_ = page.Fetch(context.Background())
	before := api.networkCalls()

	if err := page.Mark(context.Background()); !errors.Is(err, ErrNoEmployeeSelected) {
		t.Fatalf("mark = %v", err)
	}
	if api.networkCalls() != before {
		t.Fatalf("mark without selection hit the backend")
	}
	notes := rec.Notifications()
	if len(notes) != 1 || notes[0].Message != "Please select an employee first" {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
}

func TestAttendanceMarkSuccessReloadsWithFilter(t *testing.T) {
	api := attendanceAPI()
	rec := notify.NewRecorder()
	page := NewAttendance(api, rec, fixedNow)
	_ = page.Fetch(context.Background())
	_ = page.Select(context.Background(), "EMP007")
	window := hrms.DateRange{StartDate: "2024-03-01", EndDate: "2024-03-31"}
	page.SetFilter(window)

	page.SetMark("2024-03-04", hrms.StatusPresent)
	if got := page.ToggleStatus(); got != hrms.StatusAbsent {
		t.Fatalf("toggle = %q", got)
	}
	if err := page.Mark(context.Background()); err != nil {
		t.Fatalf("mark: %v", err)
	}

	want := hrms.AttendanceInput{EmployeeID: "EMP007", Date: "2024-03-04", Status: hrms.StatusAbsent}
	if len(api.marked) != 1 || api.marked[0] != want {
		t.Fatalf("unexpected mark payload: %+v", api.marked)
	}
	if last := api.recordsCalls[len(api.recordsCalls)-1]; last.Range != window {
		t.Fatalf("reload ignored the active filter: %+v", last)
	}
	if len(api.summaryCalls) != 2 {
		t.Fatalf("summary calls = %d, want 2", len(api.summaryCalls))
	}
	view := page.View("")
	if len(view.Records) != 1 || view.Records[0].Status != hrms.StatusAbsent {
		t.Fatalf("records not refreshed: %+v", view.Records)
	}
	notes := rec.Notifications()
	if len(notes) != 1 || notes[0].Message != "Attendance marked as Absent" || notes[0].Detail != "EMP007 on 2024-03-04" {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
}

func TestAttendanceMarkFailures(t *testing.T) {
	tests := []struct {
		name    string
		date    string
		markErr error
		want    string
		wantErr error
	}{
		{name: "bad date", date: "03/04/2024", want: "Date must be YYYY-MM-DD", wantErr: ErrInvalidMark},
		{name: "backend detail", date: "2024-03-04", markErr: &apiclient.APIError{StatusCode: 404, Detail: "Employee with ID 'EMP007' not found"}, want: "Employee with ID 'EMP007' not found"},
		{name: "transport", date: "2024-03-04", markErr: errors.New("reset"), want: "Failed to mark attendance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := attendanceAPI()
			api.markErr = tt.markErr
			rec := notify.NewRecorder()
			page := NewAttendance(api, rec, fixedNow)
			_ = page.Fetch(context.Background())
			_ = page.Select(context.Background(), "EMP007")
			page.SetMark(tt.date, hrms.StatusPresent)

			err := page.Mark(context.Background())
			if err == nil {
				t.Fatalf("expected mark error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("mark = %v, want %v", err, tt.wantErr)
			}
			notes := rec.Notifications()
			if len(notes) != 1 || notes[0].Level != notify.LevelError || notes[0].Message != tt.want {
				t.Fatalf("unexpected notifications: %+v", notes)
			}
			if len(api.recordsCalls) != 1 {
				t.Fatalf("failed mark must not reload, records calls = %d", len(api.recordsCalls))
			}
		})
	}
}

func TestAttendancePanelLoadFailure(t *testing.T) {
	api := attendanceAPI()
	api.summaryErr = errors.New("summary down")
	rec := notify.NewRecorder()
	page := NewAttendance(api, rec, fixedNow)
	_ = page.Fetch(context.Background())

	if err := page.Select(context.Background(), "EMP001"); err == nil {
		t.Fatalf("expected panel error")
	}
	if page.View("").RecordsLoading {
		t.Fatalf("loading flag should be cleared after failure")
	}
	notes := rec.Notifications()
	if len(notes) != 1 || notes[0].Message != "Failed to load attendance records" {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
}

func TestAttendanceFailedLoadDropsPreviousEmployeePanel(t *testing.T) {
	api := attendanceAPI()
	page := NewAttendance(api, nil, fixedNow)
	_ = page.Fetch(context.Background())

	if err := page.Select(context.Background(), "EMP001"); err != nil {
		t.Fatalf("select: %v", err)
	}
	api.recordsErr = errors.New("records down")

	if err := page.ApplyFilter(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
	if view := page.View(""); len(view.Records) != 1 || view.Summary == nil {
		t.Fatalf("same-employee reload failure should keep its panel: %+v", view)
	}

	if err := page.Select(context.Background(), "EMP002"); err == nil {
		t.Fatalf("expected panel error")
	}
	view := page.View("")
	if view.Selected != "EMP002" || view.SelectedName != "Bo Chen" {
		t.Fatalf("selection not applied: %+v", view)
	}
	if len(view.Records) != 0 || view.Summary != nil {
		t.Fatalf("EMP001 panel leaked under EMP002: %+v", view)
	}
}
