package model

import "github.com/google/uuid"

// SectionUUID is a UUID-based identifier for FormSection
type SectionUUID string

// NewSectionUUID generates a new UUID v4 SectionUUID
func NewSectionUUID() SectionUUID {
	return SectionUUID(uuid.New().String())
}

// String returns the string representation of SectionUUID
func (u SectionUUID) String() string {
	return string(u)
}

// FormSection groups a contiguous range of a form's fields under a title.
// From and To are indices into the parent form's field sequence and the
// range is inclusive on both ends. Index determines section ordering.
// The title may contain HTML markup supplied by the form definition.
type FormSection struct {
	UUID  SectionUUID
	Title string
	From  int
	To    int
	Index int
}

// Contains checks if the given field index falls within the section range
func (s FormSection) Contains(fieldIndex int) bool {
	return fieldIndex >= s.From && fieldIndex <= s.To
}
