package model

import (
	"sort"
	"strings"

	"github.com/formloom/formloom/pkg/domain/types"
)

// FilterEntriesByStatus returns the entries matching the given filter.
// The input slice is never modified.
func FilterEntriesByStatus(entries []*FormEntry, filter types.EntryFilter) []*FormEntry {
	filtered := make([]*FormEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.Matches(entry.Status()) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// SearchEntries returns the entries matching a free-text query. Matching
// is a case-insensitive substring test against everything a user can see
// about an entry: derived titles, identifiers, status name, every field
// value and key, and the formatted timestamps. A blank query matches all
// entries.
func SearchEntries(entries []*FormEntry, query string) []*FormEntry {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		matched := make([]*FormEntry, len(entries))
		copy(matched, entries)
		return matched
	}

	var matched []*FormEntry
	for _, entry := range entries {
		if entryMatches(entry, needle) {
			matched = append(matched, entry)
		}
	}
	return matched
}

func entryMatches(entry *FormEntry, needle string) bool {
	haystacks := []string{
		entry.DisplayTitle(),
		entry.DisplaySubtitle(),
		string(entry.ID),
		string(entry.SourceEntryID),
		entry.Status().DisplayName(),
		entry.FormattedCreatedAt(),
		entry.FormattedUpdatedAt(),
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	for key, value := range entry.FieldValues {
		if strings.Contains(strings.ToLower(string(key)), needle) {
			return true
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

// SortEntries returns a new slice ordered by the given timestamp key and
// direction. The sort is stable: entries with equal keys keep their
// prior relative order.
func SortEntries(entries []*FormEntry, key types.EntrySortKey, order types.SortOrder) []*FormEntry {
	sorted := make([]*FormEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].UpdatedAt, sorted[j].UpdatedAt
		if key == types.EntrySortKeyCreatedAt {
			a, b = sorted[i].CreatedAt, sorted[j].CreatedAt
		}
		if order == types.SortOrderAsc {
			return a.Before(b)
		}
		return b.Before(a)
	})
	return sorted
}
