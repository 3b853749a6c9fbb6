package types

import "fmt"

// EntryStatus represents the lifecycle state of a form entry
type EntryStatus string

const (
	// EntryStatusDraft is an unfinished entry with no link to a prior entry
	EntryStatusDraft EntryStatus = "draft"
	// EntryStatusEditDraft is a draft staged from an existing entry
	EntryStatusEditDraft EntryStatus = "edit_draft"
	// EntryStatusSubmitted is a finalized entry not yet marked complete
	EntryStatusSubmitted EntryStatus = "submitted"
	// EntryStatusCompleted is a finalized, completed entry
	EntryStatusCompleted EntryStatus = "completed"
)

// AllEntryStatuses returns all valid entry statuses
func AllEntryStatuses() []EntryStatus {
	return []EntryStatus{
		EntryStatusDraft,
		EntryStatusEditDraft,
		EntryStatusSubmitted,
		EntryStatusCompleted,
	}
}

// IsValid checks if the entry status is valid
func (s EntryStatus) IsValid() bool {
	switch s {
	case EntryStatusDraft,
		EntryStatusEditDraft,
		EntryStatusSubmitted,
		EntryStatusCompleted:
		return true
	default:
		return false
	}
}

// String returns the string representation of the entry status
func (s EntryStatus) String() string {
	return string(s)
}

// DisplayName returns the human-readable name of the entry status
func (s EntryStatus) DisplayName() string {
	switch s {
	case EntryStatusDraft:
		return "Draft"
	case EntryStatusEditDraft:
		return "Edit Draft"
	case EntryStatusSubmitted:
		return "Submitted"
	case EntryStatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// ParseEntryStatus parses a string into an EntryStatus
func ParseEntryStatus(s string) (EntryStatus, error) {
	status := EntryStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid entry status: %s", s)
	}
	return status, nil
}
