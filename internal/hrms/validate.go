package hrms

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// FieldErrors maps a payload field (json name) to a user-facing message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "hrms: " + strings.Join(parts, "; ")
}

var fieldMessages = map[string]map[string]string{
	"employee_id": {"notblank": "Employee ID is required"},
	"full_name":   {"notblank": "Full name is required"},
	"email":       {"notblank": "Email is required", "hrmsemail": "Invalid email format"},
	"department":  {"notblank": "Department is required"},
	"date":        {"calendardate": "Date must be YYYY-MM-DD"},
	"status":      {"oneof": "Status must be 'Present' or 'Absent'"},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("hrmsemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

// ValidateEmployee checks the add-employee form. It is pure and returns nil
// when the input may be sent to the backend.
func ValidateEmployee(in EmployeeInput) FieldErrors {
	return structErrors(in)
}

// ValidateAttendance checks a mark-attendance payload.
func ValidateAttendance(in AttendanceInput) FieldErrors {
	return structErrors(in)
}

func structErrors(v any) FieldErrors {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"": err.Error()}
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		msg := fe.Field() + " is invalid"
		if byTag, ok := fieldMessages[fe.Field()]; ok {
			if m, ok := byTag[fe.Tag()]; ok {
				msg = m
			}
		}
		out[fe.Field()] = msg
	}
	return out
}
