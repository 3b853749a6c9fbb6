package model

import (
	"time"

	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/google/uuid"
)

// EntryID is a UUID-based identifier for FormEntry
type EntryID string

// NewEntryID generates a new UUID v4 EntryID
func NewEntryID() EntryID {
	return EntryID(uuid.New().String())
}

// String returns the string representation of EntryID
func (id EntryID) String() string {
	return string(id)
}

// FormEntry is one set of user-entered values against a form definition.
// Entries are immutable: lifecycle methods return a modified copy. The
// lifecycle state is derived from the IsDraft/IsComplete flags together
// with SourceEntryID; see Status. SourceEntryID is set once when an entry
// is created as an edit draft of another entry and never changes
// afterwards. An empty SourceEntryID means the entry has no source.
type FormEntry struct {
	ID            EntryID
	FormID        FormID
	SourceEntryID EntryID
	FieldValues   map[FieldUUID]string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	IsComplete    bool
	IsDraft       bool
}

// NewDraft creates an empty draft entry for the given form
func NewDraft(formID FormID) FormEntry {
	now := time.Now()
	return FormEntry{
		ID:          NewEntryID(),
		FormID:      formID,
		FieldValues: map[FieldUUID]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
		IsDraft:     true,
	}
}

// NewEditDraft creates a draft staging a revision of an existing entry.
// The new entry copies the source's field values under a fresh identity
// and keeps a back-reference to the source in SourceEntryID.
func NewEditDraft(source FormEntry) FormEntry {
	now := time.Now()
	return FormEntry{
		ID:            NewEntryID(),
		FormID:        source.FormID,
		SourceEntryID: source.ID,
		FieldValues:   copyFieldValues(source.FieldValues),
		CreatedAt:     now,
		UpdatedAt:     now,
		IsDraft:       true,
	}
}

func copyFieldValues(values map[FieldUUID]string) map[FieldUUID]string {
	cloned := make(map[FieldUUID]string, len(values))
	for k, v := range values {
		cloned[k] = v
	}
	return cloned
}

// Clone returns a deep copy of the entry
func (e FormEntry) Clone() FormEntry {
	clone := e
	clone.FieldValues = copyFieldValues(e.FieldValues)
	return clone
}

// HasSource checks if the entry was created as an edit draft of another entry
func (e FormEntry) HasSource() bool {
	return e.SourceEntryID != ""
}

// Status derives the lifecycle state from the entry flags. The four
// states are mutually exclusive: draft, edit_draft, submitted, completed.
func (e FormEntry) Status() types.EntryStatus {
	switch {
	case e.IsDraft && e.HasSource():
		return types.EntryStatusEditDraft
	case e.IsDraft:
		return types.EntryStatusDraft
	case e.IsComplete:
		return types.EntryStatusCompleted
	default:
		return types.EntryStatusSubmitted
	}
}

// UpdateFieldValue returns a copy with one field value replaced. Editing
// re-marks the entry as a draft, so updating a completed entry reopens it.
func (e FormEntry) UpdateFieldValue(fieldUUID FieldUUID, value string) FormEntry {
	clone := e.Clone()
	clone.FieldValues[fieldUUID] = value
	clone.IsDraft = true
	clone.IsComplete = false
	clone.UpdatedAt = time.Now()
	return clone
}

// UpdateFieldValues returns a copy with all given values merged in.
// Like UpdateFieldValue it re-marks the entry as a draft.
func (e FormEntry) UpdateFieldValues(values map[FieldUUID]string) FormEntry {
	clone := e.Clone()
	for k, v := range values {
		clone.FieldValues[k] = v
	}
	clone.IsDraft = true
	clone.IsComplete = false
	clone.UpdatedAt = time.Now()
	return clone
}

// MarkAsComplete finalizes the entry: the draft flag is cleared and the
// entry becomes completed
func (e FormEntry) MarkAsComplete() FormEntry {
	clone := e.Clone()
	clone.IsDraft = false
	clone.IsComplete = true
	clone.UpdatedAt = time.Now()
	return clone
}

// MarkAsDraft forces the entry back into the draft state
func (e FormEntry) MarkAsDraft() FormEntry {
	clone := e.Clone()
	clone.IsDraft = true
	clone.IsComplete = false
	clone.UpdatedAt = time.Now()
	return clone
}

// Duplicate creates an independent copy of the entry as a new draft. The
// copy has no source reference; it is a plain copy, not an edit draft.
// An empty newID generates a fresh identity.
func (e FormEntry) Duplicate(newID EntryID) FormEntry {
	if newID == "" {
		newID = NewEntryID()
	}
	now := time.Now()
	return FormEntry{
		ID:          newID,
		FormID:      e.FormID,
		FieldValues: copyFieldValues(e.FieldValues),
		CreatedAt:   now,
		UpdatedAt:   now,
		IsDraft:     true,
	}
}

// ValidateAgainstForm checks the entry's values against a form
// definition and returns a message per failing field. Blank required
// fields fail the required check regardless of type; non-blank values
// additionally pass through the type-specific field validator. The
// result is computed on demand and never stored on the entry.
func (e FormEntry) ValidateAgainstForm(form DynamicForm) map[FieldUUID]string {
	failures := make(map[FieldUUID]string)
	for _, field := range form.Fields {
		value := e.FieldValues[field.UUID]
		result := ValidateFieldValue(value, field.Type, field.Required, field.OptionValues(), field.DisplayName())
		if !result.IsValid {
			failures[field.UUID] = result.Message
		}
	}
	return failures
}
