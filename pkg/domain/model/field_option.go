package model

// FieldOption represents one selectable choice of a dropdown, radio or
// checkbox field. The Value is the identity used for membership checks,
// the Label is the display text.
type FieldOption struct {
	Label string
	Value string
}
