// Package hrms holds the employee and attendance types exchanged with the
// HRMS backend, plus the client-side form validation applied before any
// mutating call.
package hrms

import "strings"

// Employee is a directory entry as returned by the backend.
type Employee struct {
	ID         int64  `json:"id,omitempty"`
	EmployeeID string `json:"employee_id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// EmployeeInput is the create-employee payload and the state of the add form.
type EmployeeInput struct {
	EmployeeID string `json:"employee_id" validate:"notblank"`
	FullName   string `json:"full_name" validate:"notblank"`
	Email      string `json:"email" validate:"notblank,hrmsemail"`
	Department string `json:"department" validate:"notblank"`
}

// FilterEmployees returns the employees whose name, id, department or email
// contains term, ignoring case. An empty term keeps every entry. Order is
// preserved.
func FilterEmployees(employees []Employee, term string) []Employee {
	needle := strings.ToLower(term)
	out := make([]Employee, 0, len(employees))
	for _, emp := range employees {
		if needle == "" ||
			strings.Contains(strings.ToLower(emp.FullName), needle) ||
			strings.Contains(strings.ToLower(emp.EmployeeID), needle) ||
			strings.Contains(strings.ToLower(emp.Department), needle) ||
			strings.Contains(strings.ToLower(emp.Email), needle) {
			out = append(out, emp)
		}
	}
	return out
}

// EmployeeNames maps employee_id to full_name.
func EmployeeNames(employees []Employee) map[string]string {
	names := make(map[string]string, len(employees))
	for _, emp := range employees {
		names[emp.EmployeeID] = emp.FullName
	}
	return names
}
