package memory

import (
	"github.com/formloom/formloom/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Sentinel errors shared by all in-memory repositories
var (
	// ErrNotFound is returned when the requested entity does not exist
	ErrNotFound = goerr.New("not found")
	// ErrAlreadyExists is returned when creating an entity whose ID is taken
	ErrAlreadyExists = goerr.New("already exists")
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is an in-memory repository for development and testing. All
// repositories are safe for concurrent use.
type Memory struct {
	form  *formRepository
	entry *entryRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		form:  newFormRepository(),
		entry: newEntryRepository(),
	}
}

func (m *Memory) Form() interfaces.FormRepository {
	return m.form
}

func (m *Memory) Entry() interfaces.EntryRepository {
	return m.entry
}

// Close is a no-op for the in-memory repository
func (m *Memory) Close() error {
	return nil
}
