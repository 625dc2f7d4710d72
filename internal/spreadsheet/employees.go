package spreadsheet

import (
	"context"
	"fmt"

	"github.com/phillip-england/hrmslite/internal/apiclient"
	"github.com/phillip-england/hrmslite/internal/hrms"
)

// EmployeeRow is one parsed data row and its 1-based line in the sheet.
type EmployeeRow struct {
	Line  int
	Input hrms.EmployeeInput
}

var employeeHeaderAliases = map[string]string{
	"employee id": "employee_id",
	"employee_id": "employee_id",
	"id":          "employee_id",
	"full name":   "full_name",
	"full_name":   "full_name",
	"name":        "full_name",
	"email":       "email",
	"department":  "department",
}

// ParseEmployees maps the header row onto employee fields and returns one
// row per non-blank data line. Every column is required.
func ParseEmployees(rows [][]string) ([]EmployeeRow, error) {
	if len(rows) == 0 {
		return nil, ErrEmptySheet
	}

	index := map[string]int{}
	for i, header := range rows[0] {
		field, ok := employeeHeaderAliases[normalizeHeader(header)]
		if !ok {
			continue
		}
		if _, seen := index[field]; !seen {
			index[field] = i
		}
	}
	for _, required := range []struct{ field, label string }{
		{"employee_id", "employee id"},
		{"full_name", "full name"},
		{"email", "email"},
		{"department", "department"},
	} {
		if _, ok := index[required.field]; !ok {
			return nil, fmt.Errorf("spreadsheet: missing required column: %s", required.label)
		}
	}

	var out []EmployeeRow
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		out = append(out, EmployeeRow{
			Line: i + 2,
			Input: hrms.EmployeeInput{
				EmployeeID: cellValue(row, index["employee_id"]),
				FullName:   cellValue(row, index["full_name"]),
				Email:      cellValue(row, index["email"]),
				Department: cellValue(row, index["department"]),
			},
		})
	}
	return out, nil
}

type EmployeeCreator interface {
	CreateEmployee(ctx context.Context, in hrms.EmployeeInput) (*hrms.Employee, error)
}

type RowError struct {
	Line       int
	EmployeeID string
	Message    string
}

type ImportResult struct {
	Created []string
	Failed  []RowError
}

// Summary is a one-line description suitable for a flash message.
func (r ImportResult) Summary() string {
	msg := fmt.Sprintf("Imported %d employee(s)", len(r.Created))
	if len(r.Failed) > 0 {
		msg += fmt.Sprintf(", %d row(s) skipped", len(r.Failed))
	}
	return msg
}

// ImportEmployees validates each row and creates the valid ones in sheet
// order. A failed row never stops the rows after it; only a cancelled context
// does.
func ImportEmployees(ctx context.Context, api EmployeeCreator, rows []EmployeeRow) (ImportResult, error) {
	var result ImportResult
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if errs := hrms.ValidateEmployee(row.Input); errs != nil {
			result.Failed = append(result.Failed, RowError{Line: row.Line, EmployeeID: row.Input.EmployeeID, Message: firstFieldError(errs)})
			continue
		}
		if _, err := api.CreateEmployee(ctx, row.Input); err != nil {
			result.Failed = append(result.Failed, RowError{Line: row.Line, EmployeeID: row.Input.EmployeeID, Message: apiclient.MessageOr(err, "Failed to add employee")})
			continue
		}
		result.Created = append(result.Created, row.Input.EmployeeID)
	}
	return result, nil
}

func firstFieldError(errs hrms.FieldErrors) string {
	for _, field := range []string{"employee_id", "full_name", "email", "department"} {
		if msg, ok := errs[field]; ok {
			return msg
		}
	}
	return errs.Error()
}
