package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Form() FormRepository
	Entry() EntryRepository

	// Close releases the underlying client resources. Calling any
	// repository method after Close is undefined.
	Close() error
}
