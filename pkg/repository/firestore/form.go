package firestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/domain/types"
	"github.com/formloom/formloom/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// watchBuffer bounds pending notifications per subscription
const watchBuffer = 8

type formDocument struct {
	ID        string            `firestore:"id"`
	Title     string            `firestore:"title"`
	Fields    []fieldDocument   `firestore:"fields"`
	Sections  []sectionDocument `firestore:"sections"`
	CreatedAt time.Time         `firestore:"created_at"`
	UpdatedAt time.Time         `firestore:"updated_at"`
}

type fieldDocument struct {
	UUID     string           `firestore:"uuid"`
	Type     string           `firestore:"type"`
	Name     string           `firestore:"name"`
	Label    string           `firestore:"label"`
	Required bool             `firestore:"required"`
	Options  []optionDocument `firestore:"options"`
	Value    string           `firestore:"value"`
}

type optionDocument struct {
	Label string `firestore:"label"`
	Value string `firestore:"value"`
}

type sectionDocument struct {
	UUID  string `firestore:"uuid"`
	Title string `firestore:"title"`
	From  int    `firestore:"from"`
	To    int    `firestore:"to"`
	Index int    `firestore:"index"`
}

type metaDocument struct {
	Initialized bool      `firestore:"initialized"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

func newFormDocument(form *model.DynamicForm) *formDocument {
	doc := &formDocument{
		ID:        string(form.ID),
		Title:     form.Title,
		Fields:    make([]fieldDocument, 0, len(form.Fields)),
		Sections:  make([]sectionDocument, 0, len(form.Sections)),
		CreatedAt: form.CreatedAt,
		UpdatedAt: form.UpdatedAt,
	}
	for _, field := range form.Fields {
		options := make([]optionDocument, 0, len(field.Options))
		for _, opt := range field.Options {
			options = append(options, optionDocument{Label: opt.Label, Value: opt.Value})
		}
		doc.Fields = append(doc.Fields, fieldDocument{
			UUID:     string(field.UUID),
			Type:     field.Type.String(),
			Name:     field.Name,
			Label:    field.Label,
			Required: field.Required,
			Options:  options,
			Value:    field.Value,
		})
	}
	for _, section := range form.Sections {
		doc.Sections = append(doc.Sections, sectionDocument{
			UUID:  string(section.UUID),
			Title: section.Title,
			From:  section.From,
			To:    section.To,
			Index: section.Index,
		})
	}
	return doc
}

func (d *formDocument) toModel() *model.DynamicForm {
	form := &model.DynamicForm{
		ID:        model.FormID(d.ID),
		Title:     d.Title,
		Fields:    make([]model.FormField, 0, len(d.Fields)),
		Sections:  make([]model.FormSection, 0, len(d.Sections)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, field := range d.Fields {
		options := make([]model.FieldOption, 0, len(field.Options))
		for _, opt := range field.Options {
			options = append(options, model.FieldOption{Label: opt.Label, Value: opt.Value})
		}
		form.Fields = append(form.Fields, model.FormField{
			UUID:     model.FieldUUID(field.UUID),
			Type:     types.ParseFieldType(field.Type),
			Name:     field.Name,
			Label:    field.Label,
			Required: field.Required,
			Options:  options,
			Value:    field.Value,
		})
	}
	for _, section := range d.Sections {
		form.Sections = append(form.Sections, model.FormSection{
			UUID:  model.SectionUUID(section.UUID),
			Title: section.Title,
			From:  section.From,
			To:    section.To,
			Index: section.Index,
		})
	}
	return form
}

type formRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFormRepository(client *firestore.Client) *formRepository {
	return &formRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *formRepository) formsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_forms"
	}
	return "forms"
}

func (r *formRepository) metaCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_meta"
	}
	return "meta"
}

func (r *formRepository) formsMetaDoc() string {
	return "forms"
}

func (r *formRepository) List(ctx context.Context) ([]*model.DynamicForm, error) {
	iter := r.client.Collection(r.formsCollection()).Documents(ctx)
	defer iter.Stop()

	var forms []*model.DynamicForm
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate forms")
		}

		var doc formDocument
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode form", goerr.V("doc_id", docSnap.Ref.ID))
		}

		forms = append(forms, doc.toModel())
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].ID < forms[j].ID
	})

	return forms, nil
}

func (r *formRepository) Get(ctx context.Context, id model.FormID) (*model.DynamicForm, error) {
	docSnap, err := r.client.Collection(r.formsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get form", goerr.V("id", id))
	}

	var doc formDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode form", goerr.V("id", id))
	}

	return doc.toModel(), nil
}

func (r *formRepository) Watch(ctx context.Context, id model.FormID) (<-chan *model.DynamicForm, error) {
	docRef := r.client.Collection(r.formsCollection()).Doc(string(id))
	snapIter := docRef.Snapshots(ctx)

	// The first snapshot carries the current state and proves the form
	// exists before a channel is handed out.
	snap, err := snapIter.Next()
	if err != nil {
		snapIter.Stop()
		return nil, goerr.Wrap(err, "failed to watch form", goerr.V("id", id))
	}
	if !snap.Exists() {
		snapIter.Stop()
		return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
	}

	var doc formDocument
	if err := snap.DataTo(&doc); err != nil {
		snapIter.Stop()
		return nil, goerr.Wrap(err, "failed to decode form", goerr.V("id", id))
	}

	ch := make(chan *model.DynamicForm, watchBuffer)
	ch <- doc.toModel()

	go func() {
		defer snapIter.Stop()
		defer close(ch)
		for {
			snap, err := snapIter.Next()
			if err != nil {
				// Cancellation or stream failure ends the subscription
				return
			}
			if !snap.Exists() {
				return
			}

			var doc formDocument
			if err := snap.DataTo(&doc); err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to decode watched form", goerr.V("id", id)), "watch form")
				continue
			}

			select {
			case ch <- doc.toModel():
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (r *formRepository) Create(ctx context.Context, form *model.DynamicForm) error {
	docRef := r.client.Collection(r.formsCollection()).Doc(string(form.ID))

	_, err := docRef.Get(ctx)
	if err == nil {
		return goerr.Wrap(ErrAlreadyExists, "form already exists", goerr.V("id", form.ID))
	}
	if status.Code(err) != codes.NotFound {
		return goerr.Wrap(err, "failed to check form existence", goerr.V("id", form.ID))
	}

	if _, err := docRef.Set(ctx, newFormDocument(form)); err != nil {
		return goerr.Wrap(err, "failed to create form", goerr.V("id", form.ID))
	}

	return nil
}

func (r *formRepository) Update(ctx context.Context, form *model.DynamicForm) error {
	docRef := r.client.Collection(r.formsCollection()).Doc(string(form.ID))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", form.ID))
		}
		return goerr.Wrap(err, "failed to check form existence", goerr.V("id", form.ID))
	}

	if _, err := docRef.Set(ctx, newFormDocument(form)); err != nil {
		return goerr.Wrap(err, "failed to update form", goerr.V("id", form.ID))
	}

	return nil
}

func (r *formRepository) Delete(ctx context.Context, id model.FormID) error {
	docRef := r.client.Collection(r.formsCollection()).Doc(string(id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check form existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete form", goerr.V("id", id))
	}

	return nil
}

func (r *formRepository) ReplaceAll(ctx context.Context, forms []*model.DynamicForm) error {
	keep := make(map[string]bool, len(forms))
	for _, form := range forms {
		keep[string(form.ID)] = true
	}

	// Remove forms that are not part of the new set
	iter := r.client.Collection(r.formsCollection()).Documents(ctx)
	bulkWriter := r.client.BulkWriter(ctx)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			iter.Stop()
			bulkWriter.End()
			return goerr.Wrap(err, "failed to iterate forms for replacement")
		}
		if keep[docSnap.Ref.ID] {
			continue
		}
		if _, err := bulkWriter.Delete(docSnap.Ref); err != nil {
			iter.Stop()
			bulkWriter.End()
			return goerr.Wrap(err, "failed to delete form", goerr.V("doc_id", docSnap.Ref.ID))
		}
	}
	iter.Stop()

	for _, form := range forms {
		docRef := r.client.Collection(r.formsCollection()).Doc(string(form.ID))
		if _, err := bulkWriter.Set(docRef, newFormDocument(form)); err != nil {
			bulkWriter.End()
			return goerr.Wrap(err, "failed to store form", goerr.V("id", form.ID))
		}
	}
	bulkWriter.End()

	metaRef := r.client.Collection(r.metaCollection()).Doc(r.formsMetaDoc())
	if _, err := metaRef.Set(ctx, &metaDocument{
		Initialized: true,
		UpdatedAt:   time.Now().UTC(),
	}); err != nil {
		return goerr.Wrap(err, "failed to mark forms as initialized")
	}

	return nil
}

func (r *formRepository) IsInitialized(ctx context.Context) (bool, error) {
	docSnap, err := r.client.Collection(r.metaCollection()).Doc(r.formsMetaDoc()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to get forms meta")
	}

	var doc metaDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return false, goerr.Wrap(err, "failed to decode forms meta")
	}

	return doc.Initialized, nil
}

func (r *formRepository) SearchByTitle(ctx context.Context, query string) ([]*model.DynamicForm, error) {
	// Firestore has no substring operator, so titles are matched
	// client-side.
	forms, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matched := make([]*model.DynamicForm, 0, len(forms))
	for _, form := range forms {
		if strings.Contains(strings.ToLower(form.Title), needle) {
			matched = append(matched, form)
		}
	}

	return matched, nil
}

func (r *formRepository) ListCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.DynamicForm, error) {
	iter := r.client.Collection(r.formsCollection()).
		Where("created_at", ">=", from).
		Where("created_at", "<", to).
		Documents(ctx)
	defer iter.Stop()

	var forms []*model.DynamicForm
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate forms by creation time")
		}

		var doc formDocument
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode form", goerr.V("doc_id", docSnap.Ref.ID))
		}

		forms = append(forms, doc.toModel())
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].ID < forms[j].ID
	})

	return forms, nil
}
