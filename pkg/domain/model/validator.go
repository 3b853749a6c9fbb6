package model

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/formloom/formloom/pkg/domain/types"
)

const (
	// MaxTextLength is the upper bound for text, textarea and file values
	MaxTextLength = 255
	// MinPasswordLength is the lower bound for password values
	MinPasswordLength = 6
)

// emailPattern requires a local part, a domain containing a dot and a
// TLD of at least two letters. Matching is case-insensitive.
var emailPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// dateLayouts are the accepted date formats besides RFC3339: ISO date,
// US order and European order.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
}

// ValidationResult is the outcome of validating a single field value.
// Message is empty when the value is valid.
type ValidationResult struct {
	IsValid bool
	Message string
}

func validResult() ValidationResult {
	return ValidationResult{IsValid: true}
}

func invalidResult(format string, args ...any) ValidationResult {
	return ValidationResult{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports one failing field of a form. It is a transient
// result value and never persisted.
type ValidationError struct {
	FieldUUID FieldUUID
	Message   string
}

// ValidateFieldValue checks a single value against a field type and its
// constraints. It never fails with an error: the outcome is always a
// structured result. The rules are ordered: a blank value on a required
// field short-circuits everything else, a blank value on an optional
// field is always valid, and only then does the type-specific check run.
func ValidateFieldValue(value string, fieldType types.FieldType, required bool, options []string, fieldName string) ValidationResult {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		if required {
			return invalidResult("%s is required", fieldName)
		}
		return validResult()
	}

	switch fieldType {
	case types.FieldTypeText, types.FieldTypeTextarea, types.FieldTypeFile:
		return validateTextLength(trimmed, fieldName)
	case types.FieldTypeNumber:
		return validateNumber(trimmed, fieldName)
	case types.FieldTypeEmail:
		return validateEmail(trimmed, fieldName)
	case types.FieldTypePassword:
		// Password length is checked on the raw value; surrounding
		// whitespace counts as characters.
		return validatePassword(value, fieldName)
	case types.FieldTypeDropdown, types.FieldTypeRadio:
		return validateOption(trimmed, options, fieldName)
	case types.FieldTypeDate:
		return validateDate(trimmed, fieldName)
	case types.FieldTypeCheckbox:
		// Membership of the individual selections is checked at the
		// field level (IsValueValidOption), not here.
		return validResult()
	case types.FieldTypeDescription:
		return validResult()
	default:
		return validResult()
	}
}

func validateTextLength(value, fieldName string) ValidationResult {
	if len([]rune(value)) > MaxTextLength {
		return invalidResult("%s must be at most %d characters", fieldName, MaxTextLength)
	}
	return validResult()
}

func validateNumber(value, fieldName string) ValidationResult {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return invalidResult("%s must be a valid number", fieldName)
	}
	return validResult()
}

func validateEmail(value, fieldName string) ValidationResult {
	if !emailPattern.MatchString(value) {
		return invalidResult("%s must be a valid email address", fieldName)
	}
	return validResult()
}

func validatePassword(value, fieldName string) ValidationResult {
	if len([]rune(value)) < MinPasswordLength {
		return invalidResult("%s must be at least %d characters", fieldName, MinPasswordLength)
	}
	return validResult()
}

func validateOption(value string, options []string, fieldName string) ValidationResult {
	for _, option := range options {
		if value == option {
			return validResult()
		}
	}
	return invalidResult("%s must be one of the available options", fieldName)
}

func validateDate(value, fieldName string) ValidationResult {
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return validResult()
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return validResult()
		}
	}
	return invalidResult("%s must be a valid date", fieldName)
}

// ValidateFields runs the field validator over a field list using each
// field's current value, required flag and option set. Failures are
// returned in field order.
func ValidateFields(fields []FormField) []ValidationError {
	var failures []ValidationError
	for _, field := range fields {
		result := ValidateFieldValue(field.Value, field.Type, field.Required, field.OptionValues(), field.DisplayName())
		if !result.IsValid {
			failures = append(failures, ValidationError{
				FieldUUID: field.UUID,
				Message:   result.Message,
			})
		}
	}
	return failures
}

// AllFieldsValid checks if every field in the list passes validation
func AllFieldsValid(fields []FormField) bool {
	return len(ValidateFields(fields)) == 0
}

// ValidationMessages collects the failure messages of a field list in
// field order
func ValidationMessages(fields []FormField) []string {
	failures := ValidateFields(fields)
	messages := make([]string, len(failures))
	for i, failure := range failures {
		messages[i] = failure.Message
	}
	return messages
}
