// Package pages holds the page controllers. A controller owns the view state
// of one page instance and talks to the backend only through the API
// interface it is given. Nothing is shared between instances.
package pages

import (
	"context"
	"errors"
	"sync"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/notify"
	"github.com/phillip-england/hrmslite/internal/viewstate"
)

var ErrNoDeleteTarget = errors.New("pages: no employee selected for deletion")

type EmployeeAPI interface {
	ListEmployees(ctx context.Context) ([]hrms.Employee, error)
	CreateEmployee(ctx context.Context, in hrms.EmployeeInput) (*hrms.Employee, error)
	DeleteEmployee(ctx context.Context, employeeID string) error
}

// Employees drives the employee directory: list, search, add, delete.
type Employees struct {
	api      EmployeeAPI
	notifier notify.Notifier

	mu           sync.Mutex
	list         viewstate.Fetch[[]hrms.Employee]
	search       string
	form         hrms.EmployeeInput
	formOpen     bool
	formErrors   hrms.FieldErrors
	submitting   bool
	deleteTarget *hrms.Employee
	deleting     bool
}

func NewEmployees(api EmployeeAPI, notifier notify.Notifier) *Employees {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Employees{api: api, notifier: notifier}
}

// EmployeesView is a render snapshot.
type EmployeesView struct {
	Phase        viewstate.Phase
	State        viewstate.State
	Loading      viewstate.LoadingState
	Empty        viewstate.EmptyState
	Error        viewstate.ErrorState
	Employees    []hrms.Employee
	Filtered     []hrms.Employee
	Search       string
	NoMatches    bool
	Form         hrms.EmployeeInput
	FormOpen     bool
	FormErrors   hrms.FieldErrors
	Submitting   bool
	DeleteTarget *hrms.Employee
	Deleting     bool
}

// Fetch (re)loads the directory.
func (p *Employees) Fetch(ctx context.Context) error {
	p.mu.Lock()
	p.list.Begin()
	p.mu.Unlock()

	employees, err := p.api.ListEmployees(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.list.Fail(apiclient.MessageOr(err, "Failed to load employees"))
		return err
	}
	p.list.Succeed(employees)
	return nil
}

func (p *Employees) SetSearch(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.search = term
}

// Filtered applies the search term to the loaded list without calling the
// backend.
func (p *Employees) Filtered() []hrms.Employee {
	p.mu.Lock()
	defer p.mu.Unlock()
	return hrms.FilterEmployees(p.list.Data, p.search)
}

func (p *Employees) OpenForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.formOpen = true
}

// CloseForm hides the form and drops its field errors. Entered values are kept
// until a successful submit clears them.
func (p *Employees) CloseForm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.formOpen = false
	p.formErrors = nil
}

func (p *Employees) SetForm(in hrms.EmployeeInput) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.form = in
}

// Submit validates the form and, when valid, creates the employee. A
// validation failure returns hrms.FieldErrors and makes no call.
func (p *Employees) Submit(ctx context.Context) error {
	p.mu.Lock()
	if p.submitting {
		p.mu.Unlock()
		return nil
	}
	in := p.form
	if errs := hrms.ValidateEmployee(in); errs != nil {
		p.formErrors = errs
		p.formOpen = true
		p.mu.Unlock()
		return errs
	}
	p.formErrors = nil
	p.submitting = true
	p.mu.Unlock()

	created, err := p.api.CreateEmployee(ctx, in)

	p.mu.Lock()
	p.submitting = false
	if err != nil {
		p.formOpen = true
		p.mu.Unlock()
		notify.Error(p.notifier, apiclient.MessageOr(err, "Failed to add employee"))
		return err
	}
	p.form = hrms.EmployeeInput{}
	p.formOpen = false
	p.mu.Unlock()

	detail := in.EmployeeID + " " + in.FullName
	if created != nil {
		detail = created.EmployeeID + " " + created.FullName
	}
	notify.Success(p.notifier, "Employee added successfully!", detail)
	_ = p.Fetch(ctx)
	return nil
}

// SelectDeleteTarget is the first delete phase. It never calls the backend.
func (p *Employees) SelectDeleteTarget(emp hrms.Employee) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteTarget = &emp
}

func (p *Employees) CancelDelete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteTarget = nil
}

// ConfirmDelete is the second delete phase.
func (p *Employees) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	if p.deleteTarget == nil {
		p.mu.Unlock()
		return ErrNoDeleteTarget
	}
	if p.deleting {
		p.mu.Unlock()
		return nil
	}
	target := *p.deleteTarget
	p.deleting = true
	p.mu.Unlock()

	err := p.api.DeleteEmployee(ctx, target.EmployeeID)

	p.mu.Lock()
	p.deleting = false
	if err != nil {
		p.mu.Unlock()
		notify.Error(p.notifier, apiclient.MessageOr(err, "Failed to delete employee"))
		return err
	}
	p.deleteTarget = nil
	p.mu.Unlock()

	notify.Success(p.notifier, "Employee deleted successfully", target.EmployeeID)
	_ = p.Fetch(ctx)
	return nil
}

func (p *Employees) State() viewstate.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.State
}

// View derives everything a template needs, in fixed state precedence.
func (p *Employees) View(retryURL string) EmployeesView {
	p.mu.Lock()
	defer p.mu.Unlock()

	filtered := hrms.FilterEmployees(p.list.Data, p.search)
	phase := p.list.Phase(viewstate.EmptySlice[hrms.Employee])
	var target *hrms.Employee
	if p.deleteTarget != nil {
		t := *p.deleteTarget
		target = &t
	}
	return EmployeesView{
		Phase:        phase,
		State:        p.list.State,
		Loading:      viewstate.NewLoading("Loading employees..."),
		Empty:        viewstate.NewEmptyState("No employees yet", "Get started by adding your first employee to the system.", "users"),
		Error:        viewstate.NewErrorState(p.list.Err, retryURL),
		Employees:    p.list.Data,
		Filtered:     filtered,
		Search:       p.search,
		NoMatches:    phase == viewstate.PhaseReady && len(filtered) == 0,
		Form:         p.form,
		FormOpen:     p.formOpen,
		FormErrors:   p.formErrors,
		Submitting:   p.submitting,
		DeleteTarget: target,
		Deleting:     p.deleting,
	}
}
