package clientapp

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/notify"
	"github.com/phillip-england/hrmslite/internal/pages"
)

func (s *server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	rec := notify.NewRecorder()
	page := pages.NewDashboard(s.api)
	_ = page.Fetch(r.Context())

	view := page.View(r.URL.RequestURI())
	s.render(w, r, http.StatusOK, s.dashboardTmpl, pageData{Title: "Dashboard", Active: "dashboard", Dashboard: &view}, rec)
}

func (s *server) employeesPage(w http.ResponseWriter, r *http.Request) {
	rec := notify.NewRecorder()
	page := pages.NewEmployees(s.api, s.notifier(rec))
	_ = page.Fetch(r.Context())

	q := r.URL.Query()
	page.SetSearch(q.Get("q"))
	if q.Get("add") == "1" {
		page.OpenForm()
	}
	if id := strings.TrimSpace(q.Get("delete")); id != "" {
		if emp, ok := findEmployee(page.View("").Employees, id); ok {
			page.SelectDeleteTarget(emp)
		}
	}
	s.renderEmployees(w, r, http.StatusOK, page, r.URL.RequestURI(), rec)
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/employees?error=Invalid+form+submission", http.StatusSeeOther)
		return
	}

	rec := notify.NewRecorder()
	page := pages.NewEmployees(s.api, s.notifier(rec))
	page.SetSearch(r.PostFormValue("q"))
	page.OpenForm()
	page.SetForm(hrms.EmployeeInput{
		EmployeeID: strings.TrimSpace(r.PostFormValue("employee_id")),
		FullName:   strings.TrimSpace(r.PostFormValue("full_name")),
		Email:      r.PostFormValue("email"),
		Department: strings.TrimSpace(r.PostFormValue("department")),
	})

	err := page.Submit(r.Context())
	if err == nil {
		var q url.Values
		if search := strings.TrimSpace(r.PostFormValue("q")); search != "" {
			q = url.Values{"q": {search}}
		}
		redirectWithFlash(w, r, "/employees", q, successMessage(rec), "")
		return
	}

	status := http.StatusOK
	var fieldErrs hrms.FieldErrors
	if errors.As(err, &fieldErrs) {
		status = http.StatusUnprocessableEntity
	}
	// The open form still needs the directory underneath it.
	_ = page.Fetch(r.Context())
	s.renderEmployees(w, r, status, page, "/employees", rec)
}

func (s *server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec := notify.NewRecorder()
	page := pages.NewEmployees(s.api, s.notifier(rec))
	_ = page.Fetch(r.Context())

	emp, ok := findEmployee(page.View("").Employees, id)
	if !ok {
		found, err := s.api.GetEmployee(r.Context(), id)
		switch {
		case apiclient.IsNotFound(err):
			notify.Error(rec, "Employee not found")
			s.renderEmployees(w, r, http.StatusNotFound, page, "/employees", rec)
			return
		case err != nil:
			notify.Error(rec, apiclient.MessageOr(err, "Failed to delete employee"))
			s.renderEmployees(w, r, http.StatusBadGateway, page, "/employees", rec)
			return
		}
		emp = *found
	}

	page.SelectDeleteTarget(emp)
	if err := page.ConfirmDelete(r.Context()); err == nil {
		redirectWithFlash(w, r, "/employees", nil, successMessage(rec), "")
		return
	}
	s.renderEmployees(w, r, http.StatusOK, page, "/employees", rec)
}

func (s *server) renderEmployees(w http.ResponseWriter, r *http.Request, status int, page *pages.Employees, retryURL string, rec *notify.Recorder) {
	view := page.View(retryURL)
	s.render(w, r, status, s.employeesTmpl, pageData{Title: "Employees", Active: "employees", Employees: &view}, rec)
}

func findEmployee(employees []hrms.Employee, id string) (hrms.Employee, bool) {
	for _, emp := range employees {
		if emp.EmployeeID == id {
			return emp, true
		}
	}
	return hrms.Employee{}, false
}

func (s *server) attendancePage(w http.ResponseWriter, r *http.Request) {
	rec := notify.NewRecorder()
	page := pages.NewAttendance(s.api, s.notifier(rec), s.now)
	if err := page.Fetch(r.Context()); err == nil {
		q := r.URL.Query()
		page.SetFilter(hrms.DateRange{StartDate: q.Get("start_date"), EndDate: q.Get("end_date")})
		_ = page.Select(r.Context(), strings.TrimSpace(q.Get("employee")))
	}
	s.renderAttendance(w, r, http.StatusOK, page, r.URL.RequestURI(), rec)
}

func (s *server) markAttendance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/attendance?error=Invalid+form+submission", http.StatusSeeOther)
		return
	}
	employeeID := strings.TrimSpace(r.PostFormValue("employee"))
	filter := hrms.DateRange{StartDate: r.PostFormValue("start_date"), EndDate: r.PostFormValue("end_date")}
	retryURL := "/attendance"
	if employeeID != "" {
		retryURL += "?" + url.Values{"employee": {employeeID}}.Encode()
	}

	rec := notify.NewRecorder()
	page := pages.NewAttendance(s.api, s.notifier(rec), s.now)
	if err := page.Fetch(r.Context()); err != nil {
		s.renderAttendance(w, r, http.StatusOK, page, retryURL, rec)
		return
	}
	page.SetFilter(filter)
	if employeeID != "" {
		_ = page.Select(r.Context(), employeeID)
	}
	page.SetMark(strings.TrimSpace(r.PostFormValue("date")), hrms.Status(r.PostFormValue("status")))

	err := page.Mark(r.Context())
	if err == nil {
		redirectWithFlash(w, r, "/attendance", attendanceQuery(employeeID, filter), successMessage(rec), "")
		return
	}
	status := http.StatusOK
	if errors.Is(err, pages.ErrNoEmployeeSelected) || errors.Is(err, pages.ErrInvalidMark) {
		status = http.StatusUnprocessableEntity
	}
	s.renderAttendance(w, r, status, page, retryURL, rec)
}

func attendanceQuery(employeeID string, filter hrms.DateRange) url.Values {
	q := url.Values{}
	if employeeID != "" {
		q.Set("employee", employeeID)
	}
	if filter.StartDate != "" {
		q.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		q.Set("end_date", filter.EndDate)
	}
	return q
}

// successMessage is the first success toast a controller raised, carried
// across the redirect as ?message=.
func successMessage(rec *notify.Recorder) string {
	for _, n := range rec.Notifications() {
		if n.Level == notify.LevelSuccess {
			return n.Message
		}
	}
	return ""
}

func (s *server) renderAttendance(w http.ResponseWriter, r *http.Request, status int, page *pages.Attendance, retryURL string, rec *notify.Recorder) {
	view := page.View(retryURL)
	s.render(w, r, status, s.attendanceTmpl, pageData{Title: "Attendance", Active: "attendance", Attendance: &view}, rec)
}
