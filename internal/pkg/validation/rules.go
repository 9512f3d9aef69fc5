package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/projecthub/internal/app/models"
)

// Validation rule patterns
var (
	// Roll numbers: 2 digit intake year, department letters, serial number
	RollNumberPattern = `^[0-9]{2}[A-Za-z]{2,4}[0-9]{2,4}$`

	// Password min length
	PasswordMinLength = 8

	// Name validation min/max length
	NameMinLength = 2
	NameMaxLength = 100

	// Marks are percentages
	MarkMin = 0.0
	MarkMax = 100.0
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	RollNumber *regexp.Regexp
}{
	RollNumber: regexp.MustCompile(RollNumberPattern),
}

// String validation
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
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

// RangeValidation checks a number against a closed interval
type RangeValidation struct {
	Value float64
	Min   float64
	Max   float64
}

// NewRangeValidation creates a new range validation
func NewRangeValidation(value, min, max float64) *RangeValidation {
	return &RangeValidation{Value: value, Min: min, Max: max}
}

// Validate reports whether Min <= Value <= Max; NaN never validates
func (v *RangeValidation) Validate() bool {
	return v.Value >= v.Min && v.Value <= v.Max
}

// ValidMark reports whether m lies in the mark range
func ValidMark(m float64) bool {
	return NewRangeValidation(m, MarkMin, MarkMax).Validate()
}

// ValidRollNumber reports whether s is a well-formed roll number
func ValidRollNumber(s string) bool {
	return NewStringValidation(s).WithMaxLength(20).WithPattern(CompiledPatterns.RollNumber).Validate()
}

// Register adds the custom tags used by request DTOs to v
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("tab", func(fl validator.FieldLevel) bool {
		return models.IsValidTab(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("registering tab validator: %w", err)
	}
	if err := v.RegisterValidation("rollno", func(fl validator.FieldLevel) bool {
		return ValidRollNumber(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("registering rollno validator: %w", err)
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
