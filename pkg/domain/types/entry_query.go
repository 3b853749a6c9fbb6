package types

import "fmt"

// EntryFilter selects a subset of entries by lifecycle state
type EntryFilter string

const (
	EntryFilterAll        EntryFilter = "all"
	EntryFilterDrafts     EntryFilter = "drafts"
	EntryFilterCompleted  EntryFilter = "completed"
	EntryFilterEditDrafts EntryFilter = "edit_drafts"
)

// AllEntryFilters returns all valid entry filters
func AllEntryFilters() []EntryFilter {
	return []EntryFilter{
		EntryFilterAll,
		EntryFilterDrafts,
		EntryFilterCompleted,
		EntryFilterEditDrafts,
	}
}

// IsValid checks if the entry filter is valid
func (f EntryFilter) IsValid() bool {
	switch f {
	case EntryFilterAll, EntryFilterDrafts, EntryFilterCompleted, EntryFilterEditDrafts:
		return true
	default:
		return false
	}
}

// String returns the string representation of the entry filter
func (f EntryFilter) String() string {
	return string(f)
}

// Matches checks if an entry status is selected by the filter
func (f EntryFilter) Matches(status EntryStatus) bool {
	switch f {
	case EntryFilterDrafts:
		return status == EntryStatusDraft
	case EntryFilterCompleted:
		return status == EntryStatusCompleted
	case EntryFilterEditDrafts:
		return status == EntryStatusEditDraft
	default:
		return true
	}
}

// ParseEntryFilter parses a string into an EntryFilter, treating empty as all
func ParseEntryFilter(s string) (EntryFilter, error) {
	if s == "" {
		return EntryFilterAll, nil
	}
	filter := EntryFilter(s)
	if !filter.IsValid() {
		return "", fmt.Errorf("invalid entry filter: %s", s)
	}
	return filter, nil
}

// EntrySortKey selects the timestamp entries are ordered by
type EntrySortKey string

const (
	EntrySortKeyUpdatedAt EntrySortKey = "updated_at"
	EntrySortKeyCreatedAt EntrySortKey = "created_at"
)

// IsValid checks if the sort key is valid
func (k EntrySortKey) IsValid() bool {
	return k == EntrySortKeyUpdatedAt || k == EntrySortKeyCreatedAt
}

// String returns the string representation of the sort key
func (k EntrySortKey) String() string {
	return string(k)
}

// ParseEntrySortKey parses a string into an EntrySortKey, treating empty as updated_at
func ParseEntrySortKey(s string) (EntrySortKey, error) {
	if s == "" {
		return EntrySortKeyUpdatedAt, nil
	}
	key := EntrySortKey(s)
	if !key.IsValid() {
		return "", fmt.Errorf("invalid entry sort key: %s", s)
	}
	return key, nil
}

// SortOrder is the direction of a sort
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// IsValid checks if the sort order is valid
func (o SortOrder) IsValid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}

// String returns the string representation of the sort order
func (o SortOrder) String() string {
	return string(o)
}

// ParseSortOrder parses a string into a SortOrder, treating empty as desc
func ParseSortOrder(s string) (SortOrder, error) {
	if s == "" {
		return SortOrderDesc, nil
	}
	order := SortOrder(s)
	if !order.IsValid() {
		return "", fmt.Errorf("invalid sort order: %s", s)
	}
	return order, nil
}
