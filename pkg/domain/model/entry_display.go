package model

import (
	"sort"
	"strings"

	"github.com/formloom/formloom/pkg/domain/types"
)

const (
	displayTitleMaxLen = 22
	displayTimeLayout  = "Jan 2, 2006 15:04"
)

// DisplayTitle derives a human-readable title for the entry. Edit drafts
// are labeled as such; otherwise the first non-blank field value is used,
// truncated with an ellipsis. Entries without any value fall back to a
// creation-timestamp placeholder for drafts and an ID prefix otherwise.
func (e FormEntry) DisplayTitle() string {
	if e.Status() == types.EntryStatusEditDraft {
		return "Edit Draft"
	}
	if value := e.firstNonBlankValue(); value != "" {
		return truncateDisplayValue(value, displayTitleMaxLen)
	}
	if e.IsDraft {
		return "Draft started " + e.CreatedAt.Format(displayTimeLayout)
	}
	return "Entry " + shortEntryID(e.ID)
}

// DisplaySubtitle derives a secondary line describing the entry state:
// the source reference for edit drafts, otherwise the lifecycle state
// with the last-updated timestamp.
func (e FormEntry) DisplaySubtitle() string {
	switch e.Status() {
	case types.EntryStatusEditDraft:
		return "Editing entry " + shortEntryID(e.SourceEntryID)
	case types.EntryStatusDraft:
		return "Draft saved " + e.UpdatedAt.Format(displayTimeLayout)
	case types.EntryStatusCompleted:
		return "Completed " + e.UpdatedAt.Format(displayTimeLayout)
	default:
		return "Submitted " + e.UpdatedAt.Format(displayTimeLayout)
	}
}

// firstNonBlankValue returns the first non-blank field value in lexical
// field-UUID order. Map iteration order is randomized, so the keys are
// sorted to keep the derived title stable across calls.
func (e FormEntry) firstNonBlankValue() string {
	keys := make([]string, 0, len(e.FieldValues))
	for k := range e.FieldValues {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		if value := strings.TrimSpace(e.FieldValues[FieldUUID(k)]); value != "" {
			return value
		}
	}
	return ""
}

func truncateDisplayValue(value string, maxLen int) string {
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	return string(runes[:maxLen]) + "..."
}

func shortEntryID(id EntryID) string {
	const prefixLen = 8
	s := string(id)
	if len(s) <= prefixLen {
		return s
	}
	return s[:prefixLen]
}

// FormattedCreatedAt returns the creation timestamp in display format
func (e FormEntry) FormattedCreatedAt() string {
	return e.CreatedAt.Format(displayTimeLayout)
}

// FormattedUpdatedAt returns the update timestamp in display format
func (e FormEntry) FormattedUpdatedAt() string {
	return e.UpdatedAt.Format(displayTimeLayout)
}
