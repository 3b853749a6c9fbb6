package types

// FieldType represents the input type of a form field
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeEmail       FieldType = "email"
	FieldTypePassword    FieldType = "password"
	FieldTypeDropdown    FieldType = "dropdown"
	FieldTypeDescription FieldType = "description"
	FieldTypeDate        FieldType = "date"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeFile        FieldType = "file"
)

// AllFieldTypes returns all valid field types
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeNumber,
		FieldTypeEmail,
		FieldTypePassword,
		FieldTypeDropdown,
		FieldTypeDescription,
		FieldTypeDate,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeTextarea,
		FieldTypeFile,
	}
}

// IsValid checks if the field type is valid
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeText,
		FieldTypeNumber,
		FieldTypeEmail,
		FieldTypePassword,
		FieldTypeDropdown,
		FieldTypeDescription,
		FieldTypeDate,
		FieldTypeRadio,
		FieldTypeCheckbox,
		FieldTypeTextarea,
		FieldTypeFile:
		return true
	default:
		return false
	}
}

// RequiresOptions reports whether fields of this type select from an option set
func (t FieldType) RequiresOptions() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// String returns the string representation of the field type
func (t FieldType) String() string {
	return string(t)
}

// ParseFieldType parses a raw type string into a FieldType.
// Unknown or empty strings normalize to FieldTypeText; this is the only
// place the unknown→text fallback happens, so every other switch on
// FieldType can stay exhaustive over the closed set.
func ParseFieldType(s string) FieldType {
	ft := FieldType(s)
	if !ft.IsValid() {
		return FieldTypeText
	}
	return ft
}
