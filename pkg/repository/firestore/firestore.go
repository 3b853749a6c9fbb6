package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/formloom/formloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNotFound      = goerr.New("not found")
	ErrAlreadyExists = goerr.New("already exists")
)

type Firestore struct {
	client *firestore.Client
	form   *formRepository
	entry  *entryRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix isolates collections under a prefix, mainly for
// running tests against a shared database.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.form.collectionPrefix = prefix
		f.entry.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default
// database of the project.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client: client,
		form:   newFormRepository(client),
		entry:  newEntryRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Form() interfaces.FormRepository {
	return f.form
}

func (f *Firestore) Entry() interfaces.EntryRepository {
	return f.entry
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
