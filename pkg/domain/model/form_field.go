package model

import (
	"strings"

	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/google/uuid"
)

// FieldUUID is a UUID-based identifier for FormField
type FieldUUID string

// NewFieldUUID generates a new UUID v4 FieldUUID
func NewFieldUUID() FieldUUID {
	return FieldUUID(uuid.New().String())
}

// String returns the string representation of FieldUUID
func (u FieldUUID) String() string {
	return string(u)
}

// FormField represents a single input of a form definition. A field is
// immutable: updater methods return a modified copy and never change the
// receiver. Value holds the current user input as a string; checkbox
// fields encode multiple selections as a comma-separated list.
type FormField struct {
	UUID            FieldUUID
	Type            types.FieldType
	Name            string
	Label           string
	Required        bool
	Options         []FieldOption
	Value           string
	ValidationError string
}

// Clone returns a deep copy of the field
func (f FormField) Clone() FormField {
	clone := f
	if f.Options != nil {
		clone.Options = make([]FieldOption, len(f.Options))
		copy(clone.Options, f.Options)
	}
	return clone
}

// WithValue returns a copy of the field carrying the new value. Setting a
// value clears any previous validation error.
func (f FormField) WithValue(value string) FormField {
	clone := f.Clone()
	clone.Value = value
	clone.ValidationError = ""
	return clone
}

// WithValidationError returns a copy of the field carrying the given
// validation message. An empty message clears the error.
func (f FormField) WithValidationError(message string) FormField {
	clone := f.Clone()
	clone.ValidationError = message
	return clone
}

// HasValidationError checks if the field currently carries a validation error
func (f FormField) HasValidationError() bool {
	return f.ValidationError != ""
}

// IsBlank checks if the field value is empty after trimming whitespace
func (f FormField) IsBlank() bool {
	return strings.TrimSpace(f.Value) == ""
}

// DisplayName returns the label shown to users, falling back to the
// machine name when no label is configured.
func (f FormField) DisplayName() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

// OptionValues returns the values of all options in definition order
func (f FormField) OptionValues() []string {
	values := make([]string, len(f.Options))
	for i, opt := range f.Options {
		values[i] = opt.Value
	}
	return values
}

// SelectedValues splits the field value into individual selections.
// Checkbox fields store multiple selections comma-separated; each
// selection is trimmed and blanks are dropped. For single-value fields
// the result has at most one element.
func (f FormField) SelectedValues() []string {
	if f.Type != types.FieldTypeCheckbox {
		trimmed := strings.TrimSpace(f.Value)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var selected []string
	for _, part := range strings.Split(f.Value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			selected = append(selected, trimmed)
		}
	}
	return selected
}

// IsValueValidOption checks the current value against the option set.
// Blank values and non-option field types are always considered valid.
// For checkbox fields every comma-separated selection must match an
// option value; for dropdown and radio the whole trimmed value must.
func (f FormField) IsValueValidOption() bool {
	if !f.Type.RequiresOptions() || f.IsBlank() {
		return true
	}

	valid := make(map[string]bool, len(f.Options))
	for _, opt := range f.Options {
		valid[opt.Value] = true
	}

	for _, selection := range f.SelectedValues() {
		if !valid[selection] {
			return false
		}
	}
	return true
}
