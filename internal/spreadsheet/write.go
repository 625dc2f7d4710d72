package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/hrmslite/internal/hrms"
)

const sheetName = "Sheet1"

var (
	EmployeeHeaders   = []string{"Employee ID", "Full Name", "Email", "Department"}
	AttendanceHeaders = []string{"Date", "Employee ID", "Employee Name", "Status"}
)

// WriteEmployees writes the directory as a single-sheet xlsx workbook in the
// order given.
func WriteEmployees(w io.Writer, employees []hrms.Employee) error {
	rows := make([][]any, 0, len(employees))
	for _, emp := range employees {
		rows = append(rows, []any{emp.EmployeeID, emp.FullName, emp.Email, emp.Department})
	}
	return writeSheet(w, EmployeeHeaders, rows)
}

// WriteAttendance writes attendance records. names maps employee ids to display
// names; unknown ids get an empty name cell.
func WriteAttendance(w io.Writer, records []hrms.AttendanceRecord, names map[string]string) error {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []any{rec.Date, rec.EmployeeID, names[rec.EmployeeID], string(rec.Status)})
	}
	return writeSheet(w, AttendanceHeaders, rows)
}

func writeSheet(w io.Writer, headers []string, rows [][]any) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := file.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("spreadsheet: write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("spreadsheet: row %d: %w", i+2, err)
		}
		if err := file.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("spreadsheet: write row %d: %w", i+2, err)
		}
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("spreadsheet: header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("spreadsheet: header width: %w", err)
	}
	if err := file.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("spreadsheet: header style: %w", err)
	}
	if err := file.SetColWidth(sheetName, "A", lastCol, 22); err != nil {
		return fmt.Errorf("spreadsheet: column width: %w", err)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("spreadsheet: encode workbook: %w", err)
	}
	return nil
}
