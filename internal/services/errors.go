package services

import (
	"errors"
	"fmt"

	"github.com/rubnab73/School/internal/validator"
)

var (
	ErrValidationFailed   = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidRole        = errors.New("invalid role")

	ErrDepartmentNotFound    = fmt.Errorf("department %w", ErrNotFound)
	ErrDepartmentHasStudents = errors.New("department has students assigned")
	ErrStudentNotFound       = fmt.Errorf("student %w", ErrNotFound)
	ErrCourseNotFound        = fmt.Errorf("course %w", ErrNotFound)
	ErrProfileNotFound       = fmt.Errorf("profile %w", ErrNotFound)

	// ErrEnrollmentConflict is returned when a concurrent toggle inserted the same pair first.
	ErrEnrollmentConflict = errors.New("enrollment changed concurrently")
)

// ValidationErrors is re-exported so handlers only depend on services
type ValidationErrors = validator.ValidationErrors

// validationError wraps field errors so both errors.Is(err, ErrValidationFailed)
// and errors.As(err, &ValidationErrors{}) match.
type validationError struct {
	fields ValidationErrors
}

func (e *validationError) Error() string { return e.fields.Error() }

func (e *validationError) Unwrap() []error { return []error{ErrValidationFailed, e.fields} }

func newValidationError(err error) error {
	var fields ValidationErrors
	if errors.As(err, &fields) {
		return &validationError{fields: fields}
	}
	return fmt.Errorf("%w: %v", ErrValidationFailed, err)
}

// BusinessRuleError reports a write refused by a domain rule
type BusinessRuleError struct {
	Rule    string
	Message string
	Err     error
}

func (e *BusinessRuleError) Error() string { return e.Message }

func (e *BusinessRuleError) Unwrap() error { return e.Err }

func NewBusinessRuleError(rule, message string, err error) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Err: err}
}
