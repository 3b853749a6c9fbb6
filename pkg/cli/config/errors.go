package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidManifest  = goerr.New("invalid sources manifest")
	ErrDuplicateSource  = goerr.New("duplicate source name")
	ErrDuplicateForm    = goerr.New("duplicate form ID across sources")
	ErrInvalidLogConfig = goerr.New("invalid logger configuration")
)

// Context keys for error values
const (
	ManifestPathKey = "manifest_path"
	SourceNameKey   = "source_name"
	SourceDirKey    = "source_dir"
	FormIDKey       = "form_id"
)
