package usecase

import (
	"context"
	"time"

	"github.com/formloom/formloom/pkg/domain/interfaces"
)

// DefaultAutoSaveInterval is the quiet window after the last value
// update before a draft is persisted.
const DefaultAutoSaveInterval = 1500 * time.Millisecond

type UseCases struct {
	repo             interfaces.Repository
	autoSaveInterval time.Duration

	Form     *FormUseCase
	Entry    *EntryUseCase
	AutoSave *AutoSaver
}

type Option func(*UseCases)

// WithAutoSaveInterval overrides the debounce window for draft
// persistence.
func WithAutoSaveInterval(interval time.Duration) Option {
	return func(uc *UseCases) {
		uc.autoSaveInterval = interval
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:             repo,
		autoSaveInterval: DefaultAutoSaveInterval,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.AutoSave = NewAutoSaver(repo, uc.autoSaveInterval)
	uc.Form = NewFormUseCase(repo, uc.AutoSave)
	uc.Entry = NewEntryUseCase(repo, uc.AutoSave)

	return uc
}

// Close flushes pending auto-saves. Call on shutdown.
func (uc *UseCases) Close(ctx context.Context) error {
	return uc.AutoSave.Close(ctx)
}
