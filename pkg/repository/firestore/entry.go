package firestore

import (
	"context"
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

type entryDocument struct {
	ID            string            `firestore:"id"`
	FormID        string            `firestore:"form_id"`
	SourceEntryID string            `firestore:"source_entry_id"`
	FieldValues   map[string]string `firestore:"field_values"`
	CreatedAt     time.Time         `firestore:"created_at"`
	UpdatedAt     time.Time         `firestore:"updated_at"`
	IsComplete    bool              `firestore:"is_complete"`
	IsDraft       bool              `firestore:"is_draft"`
}

func newEntryDocument(entry *model.FormEntry) *entryDocument {
	fieldValues := make(map[string]string, len(entry.FieldValues))
	for uuid, value := range entry.FieldValues {
		fieldValues[string(uuid)] = value
	}
	return &entryDocument{
		ID:            string(entry.ID),
		FormID:        string(entry.FormID),
		SourceEntryID: string(entry.SourceEntryID),
		FieldValues:   fieldValues,
		CreatedAt:     entry.CreatedAt,
		UpdatedAt:     entry.UpdatedAt,
		IsComplete:    entry.IsComplete,
		IsDraft:       entry.IsDraft,
	}
}

func (d *entryDocument) toModel() *model.FormEntry {
	fieldValues := make(map[model.FieldUUID]string, len(d.FieldValues))
	for uuid, value := range d.FieldValues {
		fieldValues[model.FieldUUID(uuid)] = value
	}
	return &model.FormEntry{
		ID:            model.EntryID(d.ID),
		FormID:        model.FormID(d.FormID),
		SourceEntryID: model.EntryID(d.SourceEntryID),
		FieldValues:   fieldValues,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		IsComplete:    d.IsComplete,
		IsDraft:       d.IsDraft,
	}
}

type entryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newEntryRepository(client *firestore.Client) *entryRepository {
	return &entryRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *entryRepository) entriesCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_entries"
	}
	return "entries"
}

func decodeEntrySnapshot(docSnap *firestore.DocumentSnapshot) (*model.FormEntry, error) {
	var doc entryDocument
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode entry", goerr.V("doc_id", docSnap.Ref.ID))
	}
	return doc.toModel(), nil
}

func collectEntries(iter *firestore.DocumentIterator) ([]*model.FormEntry, error) {
	entries := []*model.FormEntry{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate entries")
		}

		entry, err := decodeEntrySnapshot(docSnap)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *entryRepository) List(ctx context.Context) ([]*model.FormEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectEntries(iter)
}

func (r *entryRepository) Get(ctx context.Context, id model.EntryID) (*model.FormEntry, error) {
	docSnap, err := r.client.Collection(r.entriesCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get entry", goerr.V("id", id))
	}

	return decodeEntrySnapshot(docSnap)
}

func (r *entryRepository) ListByForm(ctx context.Context, formID model.FormID) ([]*model.FormEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		Where("form_id", "==", string(formID)).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectEntries(iter)
}

func (r *entryRepository) Watch(ctx context.Context, id model.EntryID) (<-chan *model.FormEntry, error) {
	docRef := r.client.Collection(r.entriesCollection()).Doc(string(id))
	snapIter := docRef.Snapshots(ctx)

	snap, err := snapIter.Next()
	if err != nil {
		snapIter.Stop()
		return nil, goerr.Wrap(err, "failed to watch entry", goerr.V("id", id))
	}
	if !snap.Exists() {
		snapIter.Stop()
		return nil, goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", id))
	}

	entry, err := decodeEntrySnapshot(snap)
	if err != nil {
		snapIter.Stop()
		return nil, err
	}

	ch := make(chan *model.FormEntry, watchBuffer)
	ch <- entry

	go func() {
		defer snapIter.Stop()
		defer close(ch)
		for {
			snap, err := snapIter.Next()
			if err != nil {
				return
			}
			if !snap.Exists() {
				return
			}

			entry, err := decodeEntrySnapshot(snap)
			if err != nil {
				errutil.Handle(ctx, err, "watch entry")
				continue
			}

			select {
			case ch <- entry:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (r *entryRepository) WatchByForm(ctx context.Context, formID model.FormID) (<-chan []*model.FormEntry, error) {
	query := r.client.Collection(r.entriesCollection()).
		Where("form_id", "==", string(formID)).
		OrderBy("updated_at", firestore.Desc)
	snapIter := query.Snapshots(ctx)

	first, err := snapIter.Next()
	if err != nil {
		snapIter.Stop()
		return nil, goerr.Wrap(err, "failed to watch entries", goerr.V("formID", formID))
	}
	entries, err := collectEntries(first.Documents)
	if err != nil {
		snapIter.Stop()
		return nil, err
	}

	ch := make(chan []*model.FormEntry, watchBuffer)
	ch <- entries

	go func() {
		defer snapIter.Stop()
		defer close(ch)
		for {
			snap, err := snapIter.Next()
			if err != nil {
				return
			}

			entries, err := collectEntries(snap.Documents)
			if err != nil {
				errutil.Handle(ctx, err, "watch entries")
				continue
			}

			select {
			case ch <- entries:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch, nil
}

func (r *entryRepository) Create(ctx context.Context, entry *model.FormEntry) (*model.FormEntry, error) {
	stored := entry.Clone()
	if stored.ID == "" {
		stored.ID = model.NewEntryID()
	}

	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
	}

	docRef := r.client.Collection(r.entriesCollection()).Doc(string(stored.ID))

	_, err := docRef.Get(ctx)
	if err == nil {
		return nil, goerr.Wrap(ErrAlreadyExists, "entry already exists", goerr.V("id", stored.ID))
	}
	if status.Code(err) != codes.NotFound {
		return nil, goerr.Wrap(err, "failed to check entry existence", goerr.V("id", stored.ID))
	}

	if _, err := docRef.Set(ctx, newEntryDocument(&stored)); err != nil {
		return nil, goerr.Wrap(err, "failed to create entry", goerr.V("id", stored.ID))
	}

	return &stored, nil
}

func (r *entryRepository) Update(ctx context.Context, entry *model.FormEntry) error {
	docRef := r.client.Collection(r.entriesCollection()).Doc(string(entry.ID))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", entry.ID))
		}
		return goerr.Wrap(err, "failed to check entry existence", goerr.V("id", entry.ID))
	}

	if _, err := docRef.Set(ctx, newEntryDocument(entry)); err != nil {
		return goerr.Wrap(err, "failed to update entry", goerr.V("id", entry.ID))
	}

	return nil
}

func (r *entryRepository) Delete(ctx context.Context, id model.EntryID) error {
	docRef := r.client.Collection(r.entriesCollection()).Doc(string(id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "entry not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to check entry existence", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete entry", goerr.V("id", id))
	}

	return nil
}

func (r *entryRepository) GetNewDraft(ctx context.Context, formID model.FormID) (*model.FormEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		Where("form_id", "==", string(formID)).
		Where("is_draft", "==", true).
		Where("source_entry_id", "==", "").
		OrderBy("updated_at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get new draft", goerr.V("formID", formID))
	}

	return decodeEntrySnapshot(docSnap)
}

func (r *entryRepository) GetEditDraft(ctx context.Context, sourceEntryID model.EntryID) (*model.FormEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		Where("source_entry_id", "==", string(sourceEntryID)).
		Where("is_draft", "==", true).
		OrderBy("updated_at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	docSnap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get edit draft", goerr.V("sourceEntryID", sourceEntryID))
	}

	return decodeEntrySnapshot(docSnap)
}

func (r *entryRepository) ListDrafts(ctx context.Context, formID model.FormID) ([]*model.FormEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		Where("form_id", "==", string(formID)).
		Where("is_draft", "==", true).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectEntries(iter)
}

func (r *entryRepository) DeleteDrafts(ctx context.Context, formID model.FormID) (int, error) {
	const batchSize = 500
	totalDeleted := 0

	for {
		query := r.client.Collection(r.entriesCollection()).
			Where("form_id", "==", string(formID)).
			Where("is_draft", "==", true).
			Limit(batchSize)

		iter := query.Documents(ctx)
		bulkWriter := r.client.BulkWriter(ctx)
		count := 0

		for {
			docSnap, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to iterate drafts for deletion")
			}

			if _, err := bulkWriter.Delete(docSnap.Ref); err != nil {
				iter.Stop()
				bulkWriter.End()
				return totalDeleted, goerr.Wrap(err, "failed to delete draft")
			}
			count++
		}
		iter.Stop()
		bulkWriter.End()

		if count == 0 {
			break
		}
		totalDeleted += count

		if count < batchSize {
			break
		}
	}

	return totalDeleted, nil
}

func (r *entryRepository) ListByStatus(ctx context.Context, formID model.FormID, filter types.EntryFilter) ([]*model.FormEntry, error) {
	// Status derives from the draft flag combined with the source
	// reference, so the filter is applied client-side.
	entries, err := r.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}

	matched := []*model.FormEntry{}
	for _, entry := range entries {
		if filter.Matches(entry.Status()) {
			matched = append(matched, entry)
		}
	}

	return matched, nil
}

func (r *entryRepository) ListUpdatedBetween(ctx context.Context, from, to time.Time) ([]*model.FormEntry, error) {
	iter := r.client.Collection(r.entriesCollection()).
		Where("updated_at", ">=", from).
		Where("updated_at", "<", to).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	return collectEntries(iter)
}
