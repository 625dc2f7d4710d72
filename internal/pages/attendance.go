package pages

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/notify"
	"github.com/phillip-england/hrmslite/internal/viewstate"
)

var (
	ErrNoEmployeeSelected = errors.New("pages: no employee selected")
	ErrInvalidMark        = errors.New("pages: invalid attendance entry")
	// ErrStaleSelection is returned when a panel load finished after the
	// selection moved on; its result was dropped.
	ErrStaleSelection = errors.New("pages: selection changed before load finished")
)

type AttendanceAPI interface {
	ListEmployees(ctx context.Context) ([]hrms.Employee, error)
	ListEmployeeAttendance(ctx context.Context, employeeID string, r hrms.DateRange) ([]hrms.AttendanceRecord, error)
	GetAttendanceSummary(ctx context.Context, employeeID string) (*hrms.AttendanceSummary, error)
	MarkAttendance(ctx context.Context, in hrms.AttendanceInput) (*hrms.AttendanceRecord, error)
}

// Attendance drives the attendance page: an employee list that gates the
// page, and a per-employee panel of records plus summary.
type Attendance struct {
	api      AttendanceAPI
	notifier notify.Notifier

	mu             sync.Mutex
	employees      viewstate.Fetch[[]hrms.Employee]
	selected       string
	generation     uint64
	records        []hrms.AttendanceRecord
	summary        *hrms.AttendanceSummary
	panelFor       string
	recordsLoading bool
	filter         hrms.DateRange
	markDate       string
	markStatus     hrms.Status
	marking        bool
}

func NewAttendance(api AttendanceAPI, notifier notify.Notifier, now func() time.Time) *Attendance {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	if now == nil {
		now = time.Now
	}
	return &Attendance{
		api:        api,
		notifier:   notifier,
		markDate:   hrms.Today(now()),
		markStatus: hrms.StatusPresent,
	}
}

type AttendanceView struct {
	Phase          viewstate.Phase
	Loading        viewstate.LoadingState
	Empty          viewstate.EmptyState
	Error          viewstate.ErrorState
	Employees      []hrms.Employee
	Selected       string
	SelectedName   string
	Records        []hrms.AttendanceRecord
	Summary        *hrms.AttendanceSummary
	RecordsLoading bool
	RecordsLoader  viewstate.LoadingState
	NoRecords      bool
	Filter         hrms.DateRange
	MarkDate       string
	MarkStatus     hrms.Status
	Marking        bool
}

func (p *Attendance) Fetch(ctx context.Context) error {
	p.mu.Lock()
	p.employees.Begin()
	p.mu.Unlock()

	employees, err := p.api.ListEmployees(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.employees.Fail(apiclient.MessageOr(err, "Failed to load employees"))
		return err
	}
	p.employees.Succeed(employees)
	return nil
}

// Select changes the active employee. An empty id clears the panel without a
// call; otherwise records (with the current filter) and summary are loaded.
func (p *Attendance) Select(ctx context.Context, employeeID string) error {
	p.mu.Lock()
	p.selected = employeeID
	p.generation++
	if employeeID == "" {
		p.records = nil
		p.summary = nil
		p.panelFor = ""
		p.recordsLoading = false
		p.mu.Unlock()
		return nil
	}
	gen := p.generation
	filter := p.filter
	p.mu.Unlock()

	return p.loadPanel(ctx, employeeID, gen, filter)
}

func (p *Attendance) SetFilter(r hrms.DateRange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = r
}

// ApplyFilter re-fetches the panel with both bounds.
func (p *Attendance) ApplyFilter(ctx context.Context) error {
	return p.reload(ctx)
}

// ClearFilter resets both bounds and re-fetches unfiltered.
func (p *Attendance) ClearFilter(ctx context.Context) error {
	p.SetFilter(hrms.DateRange{})
	return p.reload(ctx)
}

func (p *Attendance) SetMark(date string, status hrms.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markDate = date
	p.markStatus = status
}

func (p *Attendance) ToggleStatus() hrms.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markStatus = p.markStatus.Toggle()
	return p.markStatus
}

// Mark submits the mark form for the selected employee, then reloads the
// panel for the current filter window.
func (p *Attendance) Mark(ctx context.Context) error {
	p.mu.Lock()
	if p.selected == "" {
		p.mu.Unlock()
		notify.Error(p.notifier, "Please select an employee first")
		return ErrNoEmployeeSelected
	}
	if p.marking {
		p.mu.Unlock()
		return nil
	}
	in := hrms.AttendanceInput{EmployeeID: p.selected, Date: p.markDate, Status: p.markStatus}
	if errs := hrms.ValidateAttendance(in); errs != nil {
		p.mu.Unlock()
		msg := errs["date"]
		if msg == "" {
			msg = errs["status"]
		}
		if msg == "" {
			msg = "Failed to mark attendance"
		}
		notify.Error(p.notifier, msg)
		return ErrInvalidMark
	}
	p.marking = true
	p.mu.Unlock()

	_, err := p.api.MarkAttendance(ctx, in)

	p.mu.Lock()
	p.marking = false
	p.mu.Unlock()
	if err != nil {
		notify.Error(p.notifier, apiclient.MessageOr(err, "Failed to mark attendance"))
		return err
	}

	notify.Success(p.notifier, "Attendance marked as "+string(in.Status), in.EmployeeID+" on "+in.Date)
	// A failed reload has already raised its own notification.
	_ = p.reload(ctx)
	return nil
}

func (p *Attendance) reload(ctx context.Context) error {
	p.mu.Lock()
	employeeID := p.selected
	if employeeID == "" {
		p.mu.Unlock()
		return nil
	}
	p.generation++
	gen := p.generation
	filter := p.filter
	p.mu.Unlock()

	return p.loadPanel(ctx, employeeID, gen, filter)
}

// loadPanel fetches records and summary concurrently and applies them only if
// gen is still the active generation.
func (p *Attendance) loadPanel(ctx context.Context, employeeID string, gen uint64, filter hrms.DateRange) error {
	p.mu.Lock()
	p.recordsLoading = true
	p.mu.Unlock()

	var (
		records []hrms.AttendanceRecord
		summary *hrms.AttendanceSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = p.api.ListEmployeeAttendance(gctx, employeeID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = p.api.GetAttendanceSummary(gctx, employeeID)
		return err
	})
	err := g.Wait()

	p.mu.Lock()
	if gen != p.generation || employeeID != p.selected {
		p.mu.Unlock()
		return ErrStaleSelection
	}
	p.recordsLoading = false
	if err != nil {
		// Records of a previously selected employee must not show under this one.
		if p.panelFor != employeeID {
			p.records = nil
			p.summary = nil
			p.panelFor = ""
		}
		p.mu.Unlock()
		notify.Error(p.notifier, "Failed to load attendance records")
		return err
	}
	p.records = records
	p.summary = summary
	p.panelFor = employeeID
	p.mu.Unlock()
	return nil
}

func (p *Attendance) View(retryURL string) AttendanceView {
	p.mu.Lock()
	defer p.mu.Unlock()

	name := ""
	for _, emp := range p.employees.Data {
		if emp.EmployeeID == p.selected {
			name = emp.FullName
			break
		}
	}
	var summary *hrms.AttendanceSummary
	if p.summary != nil {
		s := *p.summary
		summary = &s
	}
	return AttendanceView{
		Phase:          p.employees.Phase(viewstate.EmptySlice[hrms.Employee]),
		Loading:        viewstate.NewLoading("Loading attendance page..."),
		Empty:          viewstate.NewEmptyState("No employees found", "Add employees first to start tracking attendance.", "calendar"),
		Error:          viewstate.NewErrorState(p.employees.Err, retryURL),
		Employees:      p.employees.Data,
		Selected:       p.selected,
		SelectedName:   name,
		Records:        p.records,
		Summary:        summary,
		RecordsLoading: p.recordsLoading,
		RecordsLoader:  viewstate.NewLoading("Loading records..."),
		NoRecords:      p.selected != "" && !p.recordsLoading && len(p.records) == 0,
		Filter:         p.filter,
		MarkDate:       p.markDate,
		MarkStatus:     p.markStatus,
		Marking:        p.marking,
	}
}
