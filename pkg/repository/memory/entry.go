package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type entryRepository struct {
	mu           sync.RWMutex
	entries      map[model.EntryID]*model.FormEntry
	watchers     map[model.EntryID]map[int]chan *model.FormEntry
	formWatchers map[model.FormID]map[int]chan []*model.FormEntry
	nextWatchID  int
}

func newEntryRepository() *entryRepository {
	return &entryRepository{
		entries:      make(map[model.EntryID]*model.FormEntry),
		watchers:     make(map[model.EntryID]map[int]chan *model.FormEntry),
		formWatchers: make(map[model.FormID]map[int]chan []*model.FormEntry),
	}
}

// copyEntry creates a deep copy of an entry
func copyEntry(e *model.FormEntry) *model.FormEntry {
	clone := e.Clone()
	return &clone
}

// sortEntriesLatestFirst orders entries by update time, newest first.
// Ties fall back to ID so results stay deterministic.
func sortEntriesLatestFirst(entries []*model.FormEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].UpdatedAt.Equal(entries[j].UpdatedAt) {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		}
		return entries[i].ID < entries[j].ID
	})
}

func (r *entryRepository) List(ctx context.Context) ([]*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*model.FormEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		entries = append(entries, copyEntry(entry))
	}
	sortEntriesLatestFirst(entries)

	return entries, nil
}

func (r *entryRepository) Get(ctx context.Context, id model.EntryID) (*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", id))
	}

	return copyEntry(entry), nil
}

func (r *entryRepository) ListByForm(ctx context.Context, formID model.FormID) ([]*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.listByFormLocked(formID), nil
}

// listByFormLocked collects copies of a form's entries, newest first.
// Callers must hold at least the read lock.
func (r *entryRepository) listByFormLocked(formID model.FormID) []*model.FormEntry {
	entries := []*model.FormEntry{}
	for _, entry := range r.entries {
		if entry.FormID == formID {
			entries = append(entries, copyEntry(entry))
		}
	}
	sortEntriesLatestFirst(entries)
	return entries
}

func (r *entryRepository) Watch(ctx context.Context, id model.EntryID) (<-chan *model.FormEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", id))
	}

	ch := make(chan *model.FormEntry, watchBuffer)
	watchID := r.nextWatchID
	r.nextWatchID++
	if r.watchers[id] == nil {
		r.watchers[id] = make(map[int]chan *model.FormEntry)
	}
	r.watchers[id][watchID] = ch

	// Deliver the current state first
	ch <- copyEntry(entry)

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		if watchers, ok := r.watchers[id]; ok {
			if c, ok := watchers[watchID]; ok {
				delete(watchers, watchID)
				close(c)
			}
		}
	}()

	return ch, nil
}

func (r *entryRepository) WatchByForm(ctx context.Context, formID model.FormID) (<-chan []*model.FormEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan []*model.FormEntry, watchBuffer)
	watchID := r.nextWatchID
	r.nextWatchID++
	if r.formWatchers[formID] == nil {
		r.formWatchers[formID] = make(map[int]chan []*model.FormEntry)
	}
	r.formWatchers[formID][watchID] = ch

	// Deliver the current set first
	ch <- r.listByFormLocked(formID)

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		defer r.mu.Unlock()
		if watchers, ok := r.formWatchers[formID]; ok {
			if c, ok := watchers[watchID]; ok {
				delete(watchers, watchID)
				close(c)
			}
		}
	}()

	return ch, nil
}

// notifyEntryLocked pushes the current state of an entry to its
// watchers. Callers must hold the write lock.
func (r *entryRepository) notifyEntryLocked(id model.EntryID) {
	entry, exists := r.entries[id]
	if !exists {
		return
	}
	for _, ch := range r.watchers[id] {
		trySend(ch, copyEntry(entry))
	}
}

// notifyFormLocked pushes the current entry set of a form to its
// watchers. Callers must hold the write lock.
func (r *entryRepository) notifyFormLocked(formID model.FormID) {
	if len(r.formWatchers[formID]) == 0 {
		return
	}
	entries := r.listByFormLocked(formID)
	for _, ch := range r.formWatchers[formID] {
		trySend(ch, entries)
	}
}

// closeWatchersLocked terminates every subscription of a deleted
// entry. Callers must hold the write lock.
func (r *entryRepository) closeWatchersLocked(id model.EntryID) {
	for watchID, ch := range r.watchers[id] {
		delete(r.watchers[id], watchID)
		close(ch)
	}
	delete(r.watchers, id)
}

func (r *entryRepository) Create(ctx context.Context, entry *model.FormEntry) (*model.FormEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyEntry(entry)
	if stored.ID == "" {
		stored.ID = model.NewEntryID()
	}
	if _, exists := r.entries[stored.ID]; exists {
		return nil, goerr.Wrap(ErrAlreadyExists, "entry already exists", goerr.V("id", stored.ID))
	}

	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}

	r.entries[stored.ID] = stored
	r.notifyEntryLocked(stored.ID)
	r.notifyFormLocked(stored.FormID)

	return copyEntry(stored), nil
}

func (r *entryRepository) Update(ctx context.Context, entry *model.FormEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.entries[entry.ID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", entry.ID))
	}

	stored := copyEntry(entry)
	r.entries[stored.ID] = stored
	r.notifyEntryLocked(stored.ID)
	r.notifyFormLocked(stored.FormID)
	if previous.FormID != stored.FormID {
		r.notifyFormLocked(previous.FormID)
	}

	return nil
}

func (r *entryRepository) Delete(ctx context.Context, id model.EntryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[id]
	if !exists {
		return goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", id))
	}

	delete(r.entries, id)
	r.closeWatchersLocked(id)
	r.notifyFormLocked(entry.FormID)

	return nil
}

func (r *entryRepository) GetNewDraft(ctx context.Context, formID model.FormID) (*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.FormEntry
	for _, entry := range r.entries {
		if entry.FormID != formID || !entry.IsDraft || entry.HasSource() {
			continue
		}
		if latest == nil || entry.UpdatedAt.After(latest.UpdatedAt) {
			latest = entry
		}
	}
	if latest == nil {
		return nil, nil
	}

	return copyEntry(latest), nil
}

func (r *entryRepository) GetEditDraft(ctx context.Context, sourceEntryID model.EntryID) (*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.FormEntry
	for _, entry := range r.entries {
		if !entry.IsDraft || entry.SourceEntryID != sourceEntryID {
			continue
		}
		if latest == nil || entry.UpdatedAt.After(latest.UpdatedAt) {
			latest = entry
		}
	}
	if latest == nil {
		return nil, nil
	}

	return copyEntry(latest), nil
}

func (r *entryRepository) ListDrafts(ctx context.Context, formID model.FormID) ([]*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*model.FormEntry{}
	for _, entry := range r.entries {
		if entry.FormID == formID && entry.IsDraft {
			entries = append(entries, copyEntry(entry))
		}
	}
	sortEntriesLatestFirst(entries)

	return entries, nil
}

func (r *entryRepository) DeleteDrafts(ctx context.Context, formID model.FormID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted []model.EntryID
	for id, entry := range r.entries {
		if entry.FormID == formID && entry.IsDraft {
			deleted = append(deleted, id)
		}
	}
	for _, id := range deleted {
		delete(r.entries, id)
		r.closeWatchersLocked(id)
	}
	if len(deleted) > 0 {
		r.notifyFormLocked(formID)
	}

	return len(deleted), nil
}

func (r *entryRepository) ListByStatus(ctx context.Context, formID model.FormID, filter types.EntryFilter) ([]*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*model.FormEntry{}
	for _, entry := range r.entries {
		if entry.FormID == formID && filter.Matches(entry.Status()) {
			entries = append(entries, copyEntry(entry))
		}
	}
	sortEntriesLatestFirst(entries)

	return entries, nil
}

func (r *entryRepository) ListUpdatedBetween(ctx context.Context, from, to time.Time) ([]*model.FormEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*model.FormEntry{}
	for _, entry := range r.entries {
		if !entry.UpdatedAt.Before(from) && entry.UpdatedAt.Before(to) {
			entries = append(entries, copyEntry(entry))
		}
	}
	sortEntriesLatestFirst(entries)

	return entries, nil
}
