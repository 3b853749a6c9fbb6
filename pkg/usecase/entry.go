package usecase

import (
	"context"

	"github.com/formloom/formloom/pkg/domain/interfaces"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type EntryUseCase struct {
	repo     interfaces.Repository
	autoSave *AutoSaver
}

func NewEntryUseCase(repo interfaces.Repository, autoSave *AutoSaver) *EntryUseCase {
	return &EntryUseCase{
		repo:     repo,
		autoSave: autoSave,
	}
}

// QueryOptions narrows and orders a form's entry list. The zero value
// means: all statuses, no search, most recently updated first.
type QueryOptions struct {
	Filter  types.EntryFilter
	Search  string
	SortKey types.EntrySortKey
	Order   types.SortOrder
}

func (o QueryOptions) normalized() QueryOptions {
	if o.Filter == "" {
		o.Filter = types.EntryFilterAll
	}
	if o.SortKey == "" {
		o.SortKey = types.EntrySortKeyUpdatedAt
	}
	if o.Order == "" {
		o.Order = types.SortOrderDesc
	}
	return o
}

func (uc *EntryUseCase) GetEntry(ctx context.Context, id model.EntryID) (*model.FormEntry, error) {
	entry, err := uc.repo.Entry().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
	}

	return entry, nil
}

// ListEntries loads a form's entries and runs them through the pure
// filter/search/sort pipeline.
func (uc *EntryUseCase) ListEntries(ctx context.Context, formID model.FormID, opts QueryOptions) ([]*model.FormEntry, error) {
	if _, err := uc.repo.Form().Get(ctx, formID); err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, formID))
	}

	entries, err := uc.repo.Entry().ListByForm(ctx, formID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list entries", goerr.V(FormIDKey, formID))
	}

	opts = opts.normalized()
	entries = model.FilterEntriesByStatus(entries, opts.Filter)
	entries = model.SearchEntries(entries, opts.Search)
	entries = model.SortEntries(entries, opts.SortKey, opts.Order)

	return entries, nil
}

// StartDraft returns the form's current new draft, creating one when
// none exists. Repeated calls land on the same draft.
func (uc *EntryUseCase) StartDraft(ctx context.Context, formID model.FormID) (*model.FormEntry, error) {
	if _, err := uc.repo.Form().Get(ctx, formID); err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, formID))
	}

	existing, err := uc.repo.Entry().GetNewDraft(ctx, formID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up current draft", goerr.V(FormIDKey, formID))
	}
	if existing != nil {
		return existing, nil
	}

	draft := model.NewDraft(formID)
	created, err := uc.repo.Entry().Create(ctx, &draft)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create draft", goerr.V(FormIDKey, formID))
	}

	return created, nil
}

// StartEditDraft returns the edit draft staging a revision of the given
// entry, deriving one from the entry when none exists.
func (uc *EntryUseCase) StartEditDraft(ctx context.Context, sourceEntryID model.EntryID) (*model.FormEntry, error) {
	source, err := uc.repo.Entry().Get(ctx, sourceEntryID)
	if err != nil {
		return nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, sourceEntryID))
	}
	if source.IsDraft {
		return nil, goerr.Wrap(ErrSourceIsDraft, "edit drafts derive from submitted or completed entries",
			goerr.V(EntryIDKey, sourceEntryID))
	}

	existing, err := uc.repo.Entry().GetEditDraft(ctx, sourceEntryID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up edit draft", goerr.V(EntryIDKey, sourceEntryID))
	}
	if existing != nil {
		return existing, nil
	}

	draft := model.NewEditDraft(*source)
	created, err := uc.repo.Entry().Create(ctx, &draft)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create edit draft", goerr.V(EntryIDKey, sourceEntryID))
	}

	return created, nil
}

// UpdateEntryValues applies field values to an entry and queues the
// result for auto-save. The returned entry reflects the applied values
// even though the write may still be pending.
func (uc *EntryUseCase) UpdateEntryValues(ctx context.Context, id model.EntryID, values map[model.FieldUUID]string) (*model.FormEntry, error) {
	base, pending := uc.autoSave.Pending(id)
	if !pending {
		stored, err := uc.repo.Entry().Get(ctx, id)
		if err != nil {
			return nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
		}
		base = stored
	}

	updated := base.UpdateFieldValues(values)
	uc.autoSave.Schedule(ctx, &updated)

	return &updated, nil
}

// SaveEntry persists any pending auto-save immediately and returns the
// stored entry.
func (uc *EntryUseCase) SaveEntry(ctx context.Context, id model.EntryID) (*model.FormEntry, error) {
	if err := uc.autoSave.Flush(ctx, id); err != nil {
		return nil, err
	}

	return uc.GetEntry(ctx, id)
}

// CompleteEntry validates an entry against its form and marks it
// completed. Validation failures come back as a field-to-message map
// with a nil error; the entry stays untouched in that case.
func (uc *EntryUseCase) CompleteEntry(ctx context.Context, id model.EntryID) (*model.FormEntry, map[model.FieldUUID]string, error) {
	// Pending edits must take part in validation
	if err := uc.autoSave.Flush(ctx, id); err != nil {
		return nil, nil, err
	}

	entry, err := uc.repo.Entry().Get(ctx, id)
	if err != nil {
		return nil, nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
	}

	form, err := uc.repo.Form().Get(ctx, entry.FormID)
	if err != nil {
		return nil, nil, goerr.Wrap(ErrFormNotFound, "form not found",
			goerr.V(FormIDKey, entry.FormID),
			goerr.V(EntryIDKey, id))
	}

	if fieldErrors := entry.ValidateAgainstForm(*form); len(fieldErrors) > 0 {
		return nil, fieldErrors, nil
	}

	completed := entry.MarkAsComplete()
	if err := uc.repo.Entry().Update(ctx, &completed); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to complete entry", goerr.V(EntryIDKey, id))
	}

	return &completed, nil, nil
}

// ReopenEntry puts a completed or submitted entry back into draft
// state.
func (uc *EntryUseCase) ReopenEntry(ctx context.Context, id model.EntryID) (*model.FormEntry, error) {
	entry, err := uc.repo.Entry().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
	}

	reopened := entry.MarkAsDraft()
	if err := uc.repo.Entry().Update(ctx, &reopened); err != nil {
		return nil, goerr.Wrap(err, "failed to reopen entry", goerr.V(EntryIDKey, id))
	}

	return &reopened, nil
}

// DuplicateEntry creates an independent draft copy of an entry.
func (uc *EntryUseCase) DuplicateEntry(ctx context.Context, id model.EntryID) (*model.FormEntry, error) {
	source, err := uc.repo.Entry().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
	}

	copied := source.Duplicate("")
	created, err := uc.repo.Entry().Create(ctx, &copied)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to duplicate entry", goerr.V(EntryIDKey, id))
	}

	return created, nil
}

// DeleteEntry removes an entry along with any edit draft staging a
// revision of it.
func (uc *EntryUseCase) DeleteEntry(ctx context.Context, id model.EntryID) error {
	uc.autoSave.Cancel(id)

	editDraft, err := uc.repo.Entry().GetEditDraft(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to look up edit draft", goerr.V(EntryIDKey, id))
	}
	if editDraft != nil {
		uc.autoSave.Cancel(editDraft.ID)
		if err := uc.repo.Entry().Delete(ctx, editDraft.ID); err != nil {
			return goerr.Wrap(err, "failed to delete edit draft",
				goerr.V(EntryIDKey, id),
				goerr.V("edit_draft_id", editDraft.ID))
		}
	}

	if err := uc.repo.Entry().Delete(ctx, id); err != nil {
		return goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
	}

	return nil
}

// DiscardDrafts drops every draft of a form, pending auto-saves
// included, and reports how many entries were removed.
func (uc *EntryUseCase) DiscardDrafts(ctx context.Context, formID model.FormID) (int, error) {
	uc.autoSave.CancelForm(formID)

	deleted, err := uc.repo.Entry().DeleteDrafts(ctx, formID)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to discard drafts", goerr.V(FormIDKey, formID))
	}

	return deleted, nil
}

// WatchEntry streams an entry's state, current state first.
func (uc *EntryUseCase) WatchEntry(ctx context.Context, id model.EntryID) (<-chan *model.FormEntry, error) {
	ch, err := uc.repo.Entry().Watch(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrEntryNotFound, "entry not found", goerr.V(EntryIDKey, id))
	}

	return ch, nil
}

// WatchFormEntries streams a form's full entry set on every change.
func (uc *EntryUseCase) WatchFormEntries(ctx context.Context, formID model.FormID) (<-chan []*model.FormEntry, error) {
	if _, err := uc.repo.Form().Get(ctx, formID); err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, formID))
	}

	ch, err := uc.repo.Entry().WatchByForm(ctx, formID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to watch entries", goerr.V(FormIDKey, formID))
	}

	return ch, nil
}
