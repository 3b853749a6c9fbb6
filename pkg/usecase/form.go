package usecase

import (
	"context"
	"time"

	"github.com/formloom/formloom/pkg/domain/interfaces"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type FormUseCase struct {
	repo     interfaces.Repository
	autoSave *AutoSaver
}

func NewFormUseCase(repo interfaces.Repository, autoSave *AutoSaver) *FormUseCase {
	return &FormUseCase{
		repo:     repo,
		autoSave: autoSave,
	}
}

func (uc *FormUseCase) GetForm(ctx context.Context, id model.FormID) (*model.DynamicForm, error) {
	form, err := uc.repo.Form().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, id))
	}

	return form, nil
}

func (uc *FormUseCase) ListForms(ctx context.Context) ([]*model.DynamicForm, error) {
	forms, err := uc.repo.Form().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list forms")
	}

	return forms, nil
}

func (uc *FormUseCase) CreateForm(ctx context.Context, form *model.DynamicForm) (*model.DynamicForm, error) {
	if form.Title == "" {
		return nil, goerr.New("form title is required")
	}

	created := form.Clone()
	if created.ID == "" {
		created.ID = model.DeriveFormID(created.Title)
	}
	if created.ID == "" {
		created.ID = model.FormID(uuid.New().String())
	}

	if issues := fieldIdentityIssues(&created); len(issues) > 0 {
		return nil, goerr.Wrap(ErrInvalidDefinition, "form definition has broken field identities",
			goerr.V(FormIDKey, created.ID),
			goerr.V("issues", issueMessages(issues)))
	}

	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = now
	}

	if err := uc.repo.Form().Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to create form", goerr.V(FormIDKey, created.ID))
	}

	return &created, nil
}

func (uc *FormUseCase) UpdateForm(ctx context.Context, form *model.DynamicForm) (*model.DynamicForm, error) {
	if form.Title == "" {
		return nil, goerr.New("form title is required")
	}

	existing, err := uc.repo.Form().Get(ctx, form.ID)
	if err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, form.ID))
	}

	updated := form.Clone()
	if issues := fieldIdentityIssues(&updated); len(issues) > 0 {
		return nil, goerr.Wrap(ErrInvalidDefinition, "form definition has broken field identities",
			goerr.V(FormIDKey, updated.ID),
			goerr.V("issues", issueMessages(issues)))
	}

	// Creation time survives updates
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Form().Update(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update form", goerr.V(FormIDKey, form.ID))
	}

	return &updated, nil
}

// DeleteForm removes a form together with all of its entries.
func (uc *FormUseCase) DeleteForm(ctx context.Context, id model.FormID) error {
	entries, err := uc.repo.Entry().ListByForm(ctx, id)
	if err != nil {
		return goerr.Wrap(err, "failed to list entries for form", goerr.V(FormIDKey, id))
	}

	uc.autoSave.CancelForm(id)

	for _, entry := range entries {
		if err := uc.repo.Entry().Delete(ctx, entry.ID); err != nil {
			return goerr.Wrap(err, "failed to delete entry",
				goerr.V(FormIDKey, id),
				goerr.V(EntryIDKey, entry.ID))
		}
	}

	if err := uc.repo.Form().Delete(ctx, id); err != nil {
		return goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, id))
	}

	return nil
}

func (uc *FormUseCase) SearchForms(ctx context.Context, query string) ([]*model.DynamicForm, error) {
	forms, err := uc.repo.Form().SearchByTitle(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search forms", goerr.V("query", query))
	}

	return forms, nil
}

// WatchForm streams a form's state, current state first.
func (uc *FormUseCase) WatchForm(ctx context.Context, id model.FormID) (<-chan *model.DynamicForm, error) {
	ch, err := uc.repo.Form().Watch(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(ErrFormNotFound, "form not found", goerr.V(FormIDKey, id))
	}

	return ch, nil
}

// LoadFromSources replaces the whole form set with the given
// definitions and marks the repository initialized.
func (uc *FormUseCase) LoadFromSources(ctx context.Context, forms []*model.DynamicForm) error {
	for _, form := range forms {
		if issues := fieldIdentityIssues(form); len(issues) > 0 {
			return goerr.Wrap(ErrInvalidDefinition, "form definition has broken field identities",
				goerr.V(FormIDKey, form.ID),
				goerr.V("issues", issueMessages(issues)))
		}
	}

	if err := uc.repo.Form().ReplaceAll(ctx, forms); err != nil {
		return goerr.Wrap(err, "failed to load forms")
	}

	return nil
}

// EnsureSeeded loads the definitions only when the repository has never
// been initialized. Reports whether seeding happened.
func (uc *FormUseCase) EnsureSeeded(ctx context.Context, forms []*model.DynamicForm) (bool, error) {
	initialized, err := uc.repo.Form().IsInitialized(ctx)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check form initialization")
	}
	if initialized {
		return false, nil
	}

	if err := uc.LoadFromSources(ctx, forms); err != nil {
		return false, err
	}

	return true, nil
}
