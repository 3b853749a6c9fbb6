package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type formRepository struct {
	mu          sync.RWMutex
	forms       map[model.FormID]*model.DynamicForm
	initialized bool
	watchers    map[model.FormID]map[int]chan *model.DynamicForm
	nextWatchID int
}

func newFormRepository() *formRepository {
	return &formRepository{
		forms:    make(map[model.FormID]*model.DynamicForm),
		watchers: make(map[model.FormID]map[int]chan *model.DynamicForm),
	}
}

// copyForm creates a deep copy of a form
func copyForm(f *model.DynamicForm) *model.DynamicForm {
	clone := f.Clone()
	return &clone
}

func (r *formRepository) List(ctx context.Context) ([]*model.DynamicForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	forms := make([]*model.DynamicForm, 0, len(r.forms))
	for _, form := range r.forms {
		forms = append(forms, copyForm(form))
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].ID < forms[j].ID
	})

	return forms, nil
}

func (r *formRepository) Get(ctx context.Context, id model.FormID) (*model.DynamicForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	form, exists := r.forms[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}

	return copyForm(form), nil
}

func (r *formRepository) Watch(ctx context.Context, id model.FormID) (<-chan *model.DynamicForm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	form, exists := r.forms[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}

	ch := make(chan *model.DynamicForm, watchBuffer)
	watchID := r.nextWatchID
	r.nextWatchID++
	if r.watchers[id] == nil {
		r.watchers[id] = make(map[int]chan *model.DynamicForm)
	}
	r.watchers[id][watchID] = ch

	// Deliver the current state first
	ch <- copyForm(form)

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

// notifyLocked pushes the current state of a form to its watchers.
// Callers must hold the write lock.
func (r *formRepository) notifyLocked(id model.FormID) {
	form, exists := r.forms[id]
	if !exists {
		return
	}
	for _, ch := range r.watchers[id] {
		trySend(ch, copyForm(form))
	}
}

// closeWatchersLocked terminates every subscription of a deleted form.
// Callers must hold the write lock.
func (r *formRepository) closeWatchersLocked(id model.FormID) {
	for watchID, ch := range r.watchers[id] {
		delete(r.watchers[id], watchID)
		close(ch)
	}
	delete(r.watchers, id)
}

func (r *formRepository) Create(ctx context.Context, form *model.DynamicForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[form.ID]; exists {
		return goerr.Wrap(ErrAlreadyExists, "form already exists", goerr.V("id", form.ID))
	}

	r.forms[form.ID] = copyForm(form)
	r.notifyLocked(form.ID)
	return nil
}

func (r *formRepository) Update(ctx context.Context, form *model.DynamicForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[form.ID]; !exists {
		return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", form.ID))
	}

	r.forms[form.ID] = copyForm(form)
	r.notifyLocked(form.ID)
	return nil
}

func (r *formRepository) Delete(ctx context.Context, id model.FormID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.forms[id]; !exists {
		return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}

	delete(r.forms, id)
	r.closeWatchersLocked(id)
	return nil
}

func (r *formRepository) ReplaceAll(ctx context.Context, forms []*model.DynamicForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	replaced := make(map[model.FormID]*model.DynamicForm, len(forms))
	for _, form := range forms {
		replaced[form.ID] = copyForm(form)
	}

	previous := r.forms
	r.forms = replaced
	r.initialized = true

	// Surviving forms get their new state, vanished forms terminate
	// their subscriptions.
	for id := range previous {
		if _, survives := replaced[id]; !survives {
			r.closeWatchersLocked(id)
		}
	}
	for id := range replaced {
		r.notifyLocked(id)
	}

	return nil
}

func (r *formRepository) IsInitialized(ctx context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized, nil
}

func (r *formRepository) SearchByTitle(ctx context.Context, query string) ([]*model.DynamicForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	var forms []*model.DynamicForm
	for _, form := range r.forms {
		if strings.Contains(strings.ToLower(form.Title), needle) {
			forms = append(forms, copyForm(form))
		}
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].ID < forms[j].ID
	})

	return forms, nil
}

func (r *formRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.DynamicForm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var forms []*model.DynamicForm
	for _, form := range r.forms {
		if !form.CreatedAt.Before(from) && form.CreatedAt.Before(to) {
			forms = append(forms, copyForm(form))
		}
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].ID < forms[j].ID
	})

	return forms, nil
}
