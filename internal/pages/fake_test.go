package pages

import (
	"context"
	"sync"

	"github.com/phillip-england/hrmslite/internal/hrms"
)

type recordsCall struct {
	EmployeeID string
	Range      hrms.DateRange
}

// fakeAPI implements every controller API interface and records calls.
type fakeAPI struct {
	mu sync.Mutex

	employees  []hrms.Employee
	records    map[string][]hrms.AttendanceRecord
	summaries  map[string]hrms.AttendanceSummary
	dashboard  *hrms.DashboardSummary
	listErr    error
	createErr  error
	deleteErr  error
	markErr    error
	recordsErr error
	summaryErr error
	dashErr    error

	listCalls    int
	dashCalls    int
	created      []hrms.EmployeeInput
	deleted      []string
	marked       []hrms.AttendanceInput
	recordsCalls []recordsCall
	summaryCalls []string

	// listGate, when set, blocks ListEmployees until closed; listStarted is
	// signalled first.
	listGate    chan struct{}
	listStarted chan struct{}
	// recordGates block ListEmployeeAttendance per employee.
	recordGates   map[string]chan struct{}
	recordStarted chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		records:   map[string][]hrms.AttendanceRecord{},
		summaries: map[string]hrms.AttendanceSummary{},
	}
}

func (f *fakeAPI) ListEmployees(ctx context.Context) ([]hrms.Employee, error) {
	f.mu.Lock()
	f.listCalls++
	gate, started := f.listGate, f.listStarted
	f.mu.Unlock()
	if gate != nil {
		if started != nil {
			started <- struct{}{}
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]hrms.Employee, len(f.employees))
	copy(out, f.employees)
	return out, nil
}

func (f *fakeAPI) CreateEmployee(ctx context.Context, in hrms.EmployeeInput) (*hrms.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	emp := hrms.Employee{EmployeeID: in.EmployeeID, FullName: in.FullName, Email: in.Email, Department: in.Department}
	f.employees = append([]hrms.Employee{emp}, f.employees...)
	return &emp, nil
}

func (f *fakeAPI) DeleteEmployee(ctx context.Context, employeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, employeeID)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.employees[:0]
	for _, emp := range f.employees {
		if emp.EmployeeID != employeeID {
			kept = append(kept, emp)
		}
	}
	f.employees = kept
	return nil
}

func (f *fakeAPI) ListEmployeeAttendance(ctx context.Context, employeeID string, r hrms.DateRange) ([]hrms.AttendanceRecord, error) {
	f.mu.Lock()
	f.recordsCalls = append(f.recordsCalls, recordsCall{EmployeeID: employeeID, Range: r})
	gate := f.recordGates[employeeID]
	started := f.recordStarted
	f.mu.Unlock()
	if gate != nil {
		if started != nil {
			started <- employeeID
		}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordsErr != nil {
		return nil, f.recordsErr
	}
	return f.records[employeeID], nil
}

func (f *fakeAPI) GetAttendanceSummary(ctx context.Context, employeeID string) (*hrms.AttendanceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaryCalls = append(f.summaryCalls, employeeID)
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	s := f.summaries[employeeID]
	return &s, nil
}

func (f *fakeAPI) MarkAttendance(ctx context.Context, in hrms.AttendanceInput) (*hrms.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, in)
	if f.markErr != nil {
		return nil, f.markErr
	}
	rec := hrms.AttendanceRecord{ID: int64(len(f.marked)), EmployeeID: in.EmployeeID, Date: in.Date, Status: in.Status}
	f.records[in.EmployeeID] = append([]hrms.AttendanceRecord{rec}, f.records[in.EmployeeID]...)
	return &rec, nil
}

func (f *fakeAPI) GetDashboardSummary(ctx context.Context) (*hrms.DashboardSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dashCalls++
	if f.dashErr != nil {
		return nil, f.dashErr
	}
	if f.dashboard == nil {
		return &hrms.DashboardSummary{}, nil
	}
	d := *f.dashboard
	return &d, nil
}

func (f *fakeAPI) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls + f.dashCalls + len(f.created) + len(f.deleted) + len(f.marked) + len(f.recordsCalls) + len(f.summaryCalls)
}
