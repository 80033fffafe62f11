package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Field limits shared by binding tags and service checks.
const (
	UsernameMaxLength = 150
	UnitMaxLength     = 14
	PhoneMaxLength    = 10
	PlateMaxLength    = 10
	TitleMaxLength    = 200
	PasswordMinLength = 8
	DefaultEventColor = "#3788d8"
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
	Phone    *regexp.Regexp
	HexColor *regexp.Regexp
	Plate    *regexp.Regexp
}{
	Username: regexp.MustCompile(`^[\w.@+-]+$`),
	Phone:    regexp.MustCompile(`^\d{1,10}$`),
	HexColor: regexp.MustCompile(`^#[0-9a-fA-F]{6}$`),
	Plate:    regexp.MustCompile(`^[A-Z0-9-]{1,10}$`),
}

// StringValidation is a small fluent checker for a single string value.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a required string validation over the trimmed value.
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length in runes
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length in runes
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}

	n := utf8.RuneCountInString(v.Value)
	if v.MinLen > 0 && n < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && n > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// NormalizePlate upper-cases a license plate and strips surrounding blanks.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// IsHexColor reports whether s looks like #rrggbb.
func IsHexColor(s string) bool {
	return CompiledPatterns.HexColor.MatchString(s)
}

// RegisterCustomValidators adds the portal specific binding tags to v.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || CompiledPatterns.Phone.MatchString(s)
	}); err != nil {
		return err
	}
	return v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return CompiledPatterns.Username.MatchString(s) && utf8.RuneCountInString(s) <= UsernameMaxLength
	})
}
