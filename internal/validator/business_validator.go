package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rubnab73/School/internal/models"
)

// Validator wraps go-playground/validator with the form rules used by the services
type Validator struct {
	validate *validator.Validate
}

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Messages returns one human readable line per field error.
func (ve ValidationErrors) Messages() []string {
	out := make([]string, len(ve))
	for i, e := range ve {
		out[i] = e.Field + " " + e.Message
	}
	return out
}

// New creates a validator with the custom rules registered
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates struct tags, returning ValidationErrors or nil
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerRules() {
	// Role accepts "STUDENT", "student" or "ROLE_STUDENT" style values
	v.validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := models.ParseRole(fl.Field().String())
		return err == nil
	})

	v.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// max_bytes bounds the encoded length; max counts runes
	v.validate.RegisterValidation("max_bytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
}

// ToValidationErrors converts validator errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "not_blank":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "max_bytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "role":
		return "must be one of STUDENT, TEACHER, ADMIN"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
