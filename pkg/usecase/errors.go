package usecase

import "errors"

// Sentinel errors for the use case layer
var (
	// Not found errors
	ErrFormNotFound  = errors.New("form not found")
	ErrEntryNotFound = errors.New("entry not found")

	// Lifecycle errors
	ErrSourceIsDraft = errors.New("cannot start an edit draft from a draft entry")

	// Definition errors
	ErrInvalidDefinition = errors.New("invalid form definition")
)

// Context keys for error values
const (
	FormIDKey    = "form_id"
	EntryIDKey   = "entry_id"
	FieldUUIDKey = "field_uuid"
)
