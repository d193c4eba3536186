package utils

import (
	"fmt"
	"reflect"
	"strings"

	apperrors "calendar-backend/pkg/errors"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds the shared validator, reporting fields by their json
// names so error bodies match the wire format.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct validates a struct based on its validation tags
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateRequest validates a request payload and reports the first failing
// field as a typed validation error carrying the json field name.
func ValidateRequest(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	if validationErrors, ok := err.(validator.ValidationErrors); ok && len(validationErrors) > 0 {
		e := validationErrors[0]
		return apperrors.NewValidationError(formatFieldError(e)).
			WithField(lowerFirst(e.Field()))
	}
	return apperrors.NewValidationError("Invalid request")
}

// formatValidationError formats validation errors into readable messages
func formatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var msgs []string
	for _, e := range validationErrors {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// formatFieldError formats a single field validation error
func formatFieldError(e validator.FieldError) string {
	field := lowerFirst(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
