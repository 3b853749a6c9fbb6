package sink

import "context"

// Sink receives named export records
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}
