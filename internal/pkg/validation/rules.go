package validation

import (
	"regexp"
)

// Field rules shared by the registration and profile endpoints.
var (
	EmailPattern = `^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`

	// Student numbers are 8 digits.
	StudentNumberPattern = `^\d{8}$`

	PasswordMinLength = 8
	NameMinLength     = 2
	NameMaxLength     = 100
)

// CompiledPatterns caches the compiled patterns.
var CompiledPatterns = struct {
	Email         *regexp.Regexp
	StudentNumber *regexp.Regexp
}{
	Email:         regexp.MustCompile(EmailPattern),
	StudentNumber: regexp.MustCompile(StudentNumberPattern),
}

// StringValidation validates a single string field with a builder-style API.
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a validation for a required string field
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
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
	if v.Required && v.Value == "" {
		return false
	}

	// Empty optional values skip the remaining checks.
	if !v.Required && v.Value == "" {
		return true
	}

	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}

	return true
}
