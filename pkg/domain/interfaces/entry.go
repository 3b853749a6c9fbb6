package interfaces

import (
	"context"
	"time"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
)

// EntryRepository defines the interface for form entry data access.
// Every write that returns without error is immediately visible to a
// subsequent read through the same repository instance.
type EntryRepository interface {
	// List retrieves all entries
	List(ctx context.Context) ([]*model.FormEntry, error)

	// Get retrieves an entry by ID
	Get(ctx context.Context, id model.EntryID) (*model.FormEntry, error)

	// ListByForm retrieves all entries belonging to a form
	ListByForm(ctx context.Context, formID model.FormID) ([]*model.FormEntry, error)

	// Watch streams the entry every time it changes. The current state
	// is delivered first. The channel is closed when the context is
	// cancelled or the entry is deleted.
	Watch(ctx context.Context, id model.EntryID) (<-chan *model.FormEntry, error)

	// WatchByForm streams the full entry set of a form on every change
	// to any of its entries. The current set is delivered first. The
	// channel is closed when the context is cancelled.
	WatchByForm(ctx context.Context, formID model.FormID) (<-chan []*model.FormEntry, error)

	// Create inserts a new entry, generating an ID when the entry
	// carries none, and returns the stored entry.
	Create(ctx context.Context, entry *model.FormEntry) (*model.FormEntry, error)

	// Update replaces an existing entry. A missing target is reported
	// as a not-found error.
	Update(ctx context.Context, entry *model.FormEntry) error

	// Delete removes an entry by ID. A missing target is reported as a
	// not-found error.
	Delete(ctx context.Context, id model.EntryID) error

	// GetNewDraft retrieves the current plain draft of a form, one
	// without a source entry. Returns nil, nil when no such draft
	// exists.
	GetNewDraft(ctx context.Context, formID model.FormID) (*model.FormEntry, error)

	// GetEditDraft retrieves the draft staging a revision of the given
	// source entry. Returns nil, nil when no such draft exists.
	GetEditDraft(ctx context.Context, sourceEntryID model.EntryID) (*model.FormEntry, error)

	// ListDrafts retrieves every draft of a form, including edit drafts
	ListDrafts(ctx context.Context, formID model.FormID) ([]*model.FormEntry, error)

	// DeleteDrafts removes every draft of a form and reports how many
	// were removed
	DeleteDrafts(ctx context.Context, formID model.FormID) (int, error)

	// ListByStatus retrieves the entries of a form matching the filter
	ListByStatus(ctx context.Context, formID model.FormID, filter types.EntryFilter) ([]*model.FormEntry, error)

	// ListUpdatedBetween retrieves entries updated within [from, to)
	ListUpdatedBetween(ctx context.Context, from, to time.Time) ([]*model.FormEntry, error)
}
