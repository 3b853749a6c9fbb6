package mapper

import "github.com/m-mizutani/goerr/v2"

// ErrInvalidData is returned when a raw structure is missing a required
// key. Optional keys never trigger it; they degrade to defaults instead.
var ErrInvalidData = goerr.New("invalid data")

// Context keys for error values
const (
	MissingKeyKey = "missing_key"
	EntityKey     = "entity"
	IndexKey      = "index"
)
