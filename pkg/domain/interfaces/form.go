package interfaces

import (
	"context"
	"time"

	"github.com/formloom/formloom/pkg/domain/model"
)

// FormRepository defines the interface for form definition data access.
// Every write that returns without error is immediately visible to a
// subsequent read through the same repository instance.
type FormRepository interface {
	// List retrieves all form definitions
	List(ctx context.Context) ([]*model.DynamicForm, error)

	// Get retrieves a form by ID
	Get(ctx context.Context, id model.FormID) (*model.DynamicForm, error)

	// Watch streams the form every time it changes. The current state is
	// delivered first. The channel is closed when the context is
	// cancelled or the form is deleted.
	Watch(ctx context.Context, id model.FormID) (<-chan *model.DynamicForm, error)

	// Create inserts a new form definition
	Create(ctx context.Context, form *model.DynamicForm) error

	// Update replaces an existing form definition. A missing target is
	// reported as a not-found error.
	Update(ctx context.Context, form *model.DynamicForm) error

	// Delete removes a form by ID. A missing target is reported as a
	// not-found error.
	Delete(ctx context.Context, id model.FormID) error

	// ReplaceAll clears the stored definitions and loads the given set,
	// marking the store as initialized.
	ReplaceAll(ctx context.Context, forms []*model.DynamicForm) error

	// IsInitialized reports whether the definition store has been seeded
	IsInitialized(ctx context.Context) (bool, error)

	// SearchByTitle retrieves forms whose title contains the query,
	// case-insensitively
	SearchByTitle(ctx context.Context, query string) ([]*model.DynamicForm, error)

	// ListCreatedBetween retrieves forms created within [from, to)
	ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.DynamicForm, error)
}
