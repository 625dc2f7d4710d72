package hrms

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Toggle flips between Present and Absent.
func (s Status) Toggle() Status {
	if s == StatusPresent {
		return StatusAbsent
	}
	return StatusPresent
}

// ParseStatus accepts only the two backend spellings.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("hrms: status must be %q or %q", StatusPresent, StatusAbsent)
	}
	return s, nil
}

// AttendanceRecord is one employee's status on one date.
type AttendanceRecord struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     Status `json:"status"`
}

// AttendanceInput is the mark-attendance payload.
type AttendanceInput struct {
	EmployeeID string `json:"employee_id" validate:"notblank"`
	Date       string `json:"date" validate:"calendardate"`
	Status     Status `json:"status" validate:"oneof=Present Absent"`
}

// AttendanceSummary is the backend's cumulative per-employee tally.
type AttendanceSummary struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	TotalPresent int    `json:"total_present"`
	TotalAbsent  int    `json:"total_absent"`
	TotalRecords int    `json:"total_records"`
}

// DateRange holds optional inclusive bounds. Empty means unbounded.
type DateRange struct {
	StartDate string
	EndDate   string
}

func (r DateRange) IsZero() bool {
	return r.StartDate == "" && r.EndDate == ""
}

// AttendanceFilter narrows the global attendance listing.
type AttendanceFilter struct {
	EmployeeID string
	DateRange
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("hrms: invalid date %q", raw)
	}
	return t, nil
}

// Today formats now as a calendar date in now's location.
func Today(now time.Time) string {
	return now.Format(DateLayout)
}
