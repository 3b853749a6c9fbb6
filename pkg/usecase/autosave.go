package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/formloom/formloom/pkg/domain/interfaces"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
)

// AutoSaver coalesces rapid successive draft updates into one persisted
// write. Each Schedule replaces the entry's pending snapshot and
// restarts its timer; the write happens once the quiet window passes
// without another update.
type AutoSaver struct {
	repo     interfaces.Repository
	interval time.Duration

	mu      sync.Mutex
	pending map[model.EntryID]*pendingSave
}

type pendingSave struct {
	timer *time.Timer
	entry *model.FormEntry
}

func NewAutoSaver(repo interfaces.Repository, interval time.Duration) *AutoSaver {
	return &AutoSaver{
		repo:     repo,
		interval: interval,
		pending:  make(map[model.EntryID]*pendingSave),
	}
}

// Schedule queues an entry snapshot for deferred persistence.
func (a *AutoSaver) Schedule(ctx context.Context, entry *model.FormEntry) {
	snapshot := entry.Clone()
	id := snapshot.ID

	a.mu.Lock()
	defer a.mu.Unlock()

	if prev, ok := a.pending[id]; ok {
		prev.timer.Stop()
	}

	p := &pendingSave{entry: &snapshot}
	p.timer = time.AfterFunc(a.interval, func() {
		a.fire(ctx, id, p)
	})
	a.pending[id] = p
}

// fire persists a due snapshot unless it was superseded or cancelled
// while the timer was running.
func (a *AutoSaver) fire(ctx context.Context, id model.EntryID, p *pendingSave) {
	a.mu.Lock()
	if a.pending[id] != p {
		a.mu.Unlock()
		return
	}
	delete(a.pending, id)
	a.mu.Unlock()

	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := a.repo.Entry().Update(ctx, p.entry); err != nil {
			return goerr.Wrap(err, "auto-save failed", goerr.V(EntryIDKey, id))
		}
		return nil
	})
}

// Pending returns the queued snapshot of an entry, if any.
func (a *AutoSaver) Pending(id model.EntryID) (*model.FormEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[id]
	if !ok {
		return nil, false
	}

	snapshot := p.entry.Clone()
	return &snapshot, true
}

// Flush persists an entry's pending snapshot immediately and cancels
// its timer. No-op when nothing is pending.
func (a *AutoSaver) Flush(ctx context.Context, id model.EntryID) error {
	a.mu.Lock()
	p, ok := a.pending[id]
	if ok {
		p.timer.Stop()
		delete(a.pending, id)
	}
	a.mu.Unlock()

	if !ok {
		return nil
	}

	if err := a.repo.Entry().Update(ctx, p.entry); err != nil {
		return goerr.Wrap(err, "failed to flush pending auto-save", goerr.V(EntryIDKey, id))
	}

	return nil
}

// Cancel drops an entry's pending snapshot without persisting it.
// Reports whether a snapshot was pending.
func (a *AutoSaver) Cancel(id model.EntryID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.pending[id]
	if !ok {
		return false
	}

	p.timer.Stop()
	delete(a.pending, id)
	return true
}

// CancelForm drops every pending snapshot belonging to a form and
// reports how many were dropped.
func (a *AutoSaver) CancelForm(formID model.FormID) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	dropped := 0
	for id, p := range a.pending {
		if p.entry.FormID != formID {
			continue
		}
		p.timer.Stop()
		delete(a.pending, id)
		dropped++
	}

	return dropped
}

// Close flushes every pending snapshot. Call on shutdown.
func (a *AutoSaver) Close(ctx context.Context) error {
	a.mu.Lock()
	remaining := make([]*pendingSave, 0, len(a.pending))
	for id, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, id)
		remaining = append(remaining, p)
	}
	a.mu.Unlock()

	var errs []error
	for _, p := range remaining {
		if err := a.repo.Entry().Update(ctx, p.entry); err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to flush pending auto-save",
				goerr.V(EntryIDKey, p.entry.ID)))
		}
	}

	return errors.Join(errs...)
}
