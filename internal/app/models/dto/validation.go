package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed binding rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HandleValidationError converts binding errors into an ErrorDetail. The first
// failing field is reported as Field; every failure is listed in Details.
func HandleValidationError(err error) *ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return NewErrorDetail(ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: jsonName(fe), Message: formatValidationError(fe)})
	}
	return NewErrorDetail(ErrorCodeValidationFailed, fields[0].Message).
		WithField(fields[0].Field).
		WithDetails(fields)
}

func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func formatValidationError(fe validator.FieldError) string {
	field := jsonName(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "phone":
		return field + " must contain up to 10 digits"
	case "username":
		return field + " may contain letters, digits and @/./+/-/_ only"
	case "hexcolor":
		return field + " must be a hex color like #3788d8"
	case "gt":
		return field + " must be greater than " + fe.Param()
	default:
		return field + " validation failed: " + fe.Tag()
	}
}
