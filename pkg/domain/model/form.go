package model

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// FormID is the identifier of a form definition. It is usually supplied
// by the definition source; DeriveFormID synthesizes one from the title
// when the source omits it.
type FormID string

// String returns the string representation of FormID
func (id FormID) String() string {
	return string(id)
}

var formIDStripPattern = regexp.MustCompile(`[^a-z0-9-]`)

// DeriveFormID builds a FormID from a form title by lower-casing it,
// replacing spaces with hyphens and stripping every character outside
// [a-z0-9-]. The result may be empty when the title contains no usable
// characters; callers must handle that case.
func DeriveFormID(title string) FormID {
	id := strings.ToLower(strings.TrimSpace(title))
	id = strings.ReplaceAll(id, " ", "-")
	id = formIDStripPattern.ReplaceAllString(id, "")
	return FormID(id)
}

// DynamicForm is an immutable form definition: an ordered field list plus
// sections referencing contiguous field ranges. Field order is
// significant since section ranges index into it. All updater methods
// return a new DynamicForm and never mutate the receiver; the
// authoritative record of user input is the FormEntry, not the form.
type DynamicForm struct {
	ID        FormID
	Title     string
	Fields    []FormField
	Sections  []FormSection
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the form
func (f DynamicForm) Clone() DynamicForm {
	clone := f
	if f.Fields != nil {
		clone.Fields = make([]FormField, len(f.Fields))
		for i, field := range f.Fields {
			clone.Fields[i] = field.Clone()
		}
	}
	if f.Sections != nil {
		clone.Sections = make([]FormSection, len(f.Sections))
		copy(clone.Sections, f.Sections)
	}
	return clone
}

// FieldsInSection returns the fields covered by the section's inclusive
// [From, To] range. Out-of-range bounds are clamped to the field
// sequence instead of failing; a range that is degenerate after
// clamping yields an empty slice.
func (f DynamicForm) FieldsInSection(section FormSection) []FormField {
	from := section.From
	if from < 0 {
		from = 0
	}
	to := section.To
	if to > len(f.Fields)-1 {
		to = len(f.Fields) - 1
	}
	if from > to {
		return []FormField{}
	}

	fields := make([]FormField, 0, to-from+1)
	for i := from; i <= to; i++ {
		fields = append(fields, f.Fields[i].Clone())
	}
	return fields
}

// FieldByUUID looks up a field by its identifier
func (f DynamicForm) FieldByUUID(fieldUUID FieldUUID) (FormField, bool) {
	for _, field := range f.Fields {
		if field.UUID == fieldUUID {
			return field.Clone(), true
		}
	}
	return FormField{}, false
}

// fieldIndex returns the position of a field in the field sequence, or -1
func (f DynamicForm) fieldIndex(fieldUUID FieldUUID) int {
	for i, field := range f.Fields {
		if field.UUID == fieldUUID {
			return i
		}
	}
	return -1
}

// UpdateFieldValue returns a new form with the matching field carrying
// the given value and a cleared validation error, and UpdatedAt bumped.
// When the field does not exist the form is returned unchanged apart
// from being a fresh copy.
func (f DynamicForm) UpdateFieldValue(fieldUUID FieldUUID, value string) DynamicForm {
	clone := f.Clone()
	if i := clone.fieldIndex(fieldUUID); i >= 0 {
		clone.Fields[i] = clone.Fields[i].WithValue(value)
		clone.UpdatedAt = time.Now()
	}
	return clone
}

// UpdateFieldValidation returns a new form with the matching field
// carrying the given validation message. An empty message clears the
// error. Unknown field UUIDs leave the form unchanged.
func (f DynamicForm) UpdateFieldValidation(fieldUUID FieldUUID, message string) DynamicForm {
	clone := f.Clone()
	if i := clone.fieldIndex(fieldUUID); i >= 0 {
		clone.Fields[i] = clone.Fields[i].WithValidationError(message)
	}
	return clone
}

// IsValid checks that no field currently carries a validation error
func (f DynamicForm) IsValid() bool {
	for _, field := range f.Fields {
		if field.HasValidationError() {
			return false
		}
	}
	return true
}

// RequiredFields returns the required fields in definition order
func (f DynamicForm) RequiredFields() []FormField {
	var required []FormField
	for _, field := range f.Fields {
		if field.Required {
			required = append(required, field.Clone())
		}
	}
	return required
}

// CompletionPercentage reports the fraction of required fields holding a
// non-blank value, in [0, 1]. A form without required fields is complete
// by definition and reports 1.0.
func (f DynamicForm) CompletionPercentage() float64 {
	var required, filled int
	for _, field := range f.Fields {
		if !field.Required {
			continue
		}
		required++
		if !field.IsBlank() {
			filled++
		}
	}
	if required == 0 {
		return 1.0
	}
	return float64(filled) / float64(required)
}

// WithFieldValues projects an entry's values onto the form's fields and
// returns the resulting form. Fields without a stored value keep their
// current one. Used to render a form pre-filled from a persisted entry.
func (f DynamicForm) WithFieldValues(entry FormEntry) DynamicForm {
	clone := f.Clone()
	for i, field := range clone.Fields {
		if value, ok := entry.FieldValues[field.UUID]; ok {
			clone.Fields[i] = field.WithValue(value)
		}
	}
	return clone
}

// SectionContaining returns the section whose field-index range covers
// the given field
func (f DynamicForm) SectionContaining(fieldUUID FieldUUID) (FormSection, bool) {
	i := f.fieldIndex(fieldUUID)
	if i < 0 {
		return FormSection{}, false
	}
	for _, section := range f.Sections {
		if section.Contains(i) {
			return section, true
		}
	}
	return FormSection{}, false
}

// SortedSections returns the sections ordered by their Index
func (f DynamicForm) SortedSections() []FormSection {
	sections := make([]FormSection, len(f.Sections))
	copy(sections, f.Sections)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Index < sections[j].Index
	})
	return sections
}

// Validate runs the field validator over every field using its current
// value and returns the failures in field order. An empty result means
// the form content is valid.
func (f DynamicForm) Validate() []ValidationError {
	return ValidateFields(f.Fields)
}
