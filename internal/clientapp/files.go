package clientapp

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
	"github.com/phillip-england/hrmslite/internal/notify"
	"github.com/phillip-england/hrmslite/internal/spreadsheet"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportBytes  = 10 << 20

	importTooLargeMessage = "Upload a spreadsheet under 10 MB"
)

func (s *server) exportEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.api.ListEmployees(r.Context())
	if err != nil {
		http.Error(w, apiclient.MessageOr(err, "Failed to load employees"), http.StatusBadGateway)
		return
	}
	employees = hrms.FilterEmployees(employees, r.URL.Query().Get("q"))

	var buf bytes.Buffer
	if err := spreadsheet.WriteEmployees(&buf, employees); err != nil {
		http.Error(w, "unable to build spreadsheet", http.StatusInternalServerError)
		log.Printf("employee export failed: %v", err)
		return
	}
	writeAttachment(w, "employees.xlsx", buf.Bytes())
}

func (s *server) exportAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := hrms.AttendanceFilter{
		EmployeeID: strings.TrimSpace(q.Get("employee")),
		DateRange:  hrms.DateRange{StartDate: q.Get("start_date"), EndDate: q.Get("end_date")},
	}

	var (
		records   []hrms.AttendanceRecord
		employees []hrms.Employee
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		records, err = s.api.ListAttendance(ctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		employees, err = s.api.ListEmployees(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		http.Error(w, apiclient.MessageOr(err, "Failed to load attendance records"), http.StatusBadGateway)
		return
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteAttendance(&buf, records, hrms.EmployeeNames(employees)); err != nil {
		http.Error(w, "unable to build spreadsheet", http.StatusInternalServerError)
		log.Printf("attendance export failed: %v", err)
		return
	}
	name := "attendance.xlsx"
	if filter.EmployeeID != "" {
		name = "attendance-" + filter.EmployeeID + ".xlsx"
	}
	writeAttachment(w, name, buf.Bytes())
}

func (s *server) importEmployees(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		importTooLarge(w, r)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		redirectEmployees(w, r, "", "Choose a spreadsheet to import")
		return
	}
	defer file.Close()
	if header.Size > maxImportBytes {
		importTooLarge(w, r)
		return
	}

	rows, err := spreadsheet.ReadRows(file, header.Filename)
	if err != nil {
		log.Printf("employee import read failed for %q: %v", header.Filename, err)
		redirectEmployees(w, r, "", "Unable to read spreadsheet")
		return
	}
	parsed, err := spreadsheet.ParseEmployees(rows)
	if err != nil {
		redirectEmployees(w, r, "", strings.TrimPrefix(err.Error(), "spreadsheet: "))
		return
	}

	result, err := spreadsheet.ImportEmployees(r.Context(), s.api, parsed)
	if err != nil {
		log.Printf("employee import interrupted after %d row(s): %v", len(result.Created), err)
		redirectEmployees(w, r, "", fmt.Sprintf("Import interrupted after %d employee(s) were added", len(result.Created)))
		return
	}
	if len(result.Created) > 0 && s.audit != nil {
		notify.Success(s.audit, result.Summary(), strings.Join(result.Created, ", "))
	}

	var failure string
	if len(result.Failed) > 0 {
		first := result.Failed[0]
		failure = fmt.Sprintf("Line %d: %s", first.Line, first.Message)
	}
	redirectEmployees(w, r, result.Summary(), failure)
}

func importTooLarge(w http.ResponseWriter, r *http.Request) {
	redirectEmployees(w, r, "", importTooLargeMessage)
}

func redirectEmployees(w http.ResponseWriter, r *http.Request, message, failure string) {
	redirectWithFlash(w, r, "/employees", nil, message, failure)
}

// redirectWithFlash answers a POST with 303 to path, carrying q plus the
// ?message= and ?error= toasts.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, path string, q url.Values, message, failure string) {
	if q == nil {
		q = url.Values{}
	}
	if message != "" {
		q.Set("message", message)
	}
	if failure != "" {
		q.Set("error", failure)
	}
	target := path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func writeAttachment(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}
