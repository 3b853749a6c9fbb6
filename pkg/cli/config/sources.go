package config

import (
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/formloom/formloom/pkg/service/assets"
)

// Sources holds CLI flags for form definition sources. Definitions can
// come from a single directory, from a TOML manifest listing several
// directories, or both.
type Sources struct {
	dir      string
	manifest string
}

// Flags returns CLI flags for form definition sources
func (x *Sources) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "definitions",
			Aliases:     []string{"d"},
			Usage:       "Directory of form definition files (*.json)",
			Category:    "Form definitions",
			Sources:     cli.EnvVars("FORMLOOM_DEFINITIONS"),
			Destination: &x.dir,
		},
		&cli.StringFlag{
			Name:        "sources",
			Usage:       "TOML manifest listing form definition directories",
			Category:    "Form definitions",
			Sources:     cli.EnvVars("FORMLOOM_SOURCES"),
			Destination: &x.manifest,
		},
	}
}

// Configured reports whether any definition source has been provided.
func (x *Sources) Configured() bool {
	return x.dir != "" || x.manifest != ""
}

// Load reads form definitions from every configured source. Form IDs
// must be unique across all sources.
func (x *Sources) Load() ([]*model.DynamicForm, error) {
	var dirs []string
	if x.manifest != "" {
		manifest, err := LoadManifest(x.manifest)
		if err != nil {
			return nil, err
		}
		for _, src := range manifest.Sources {
			dirs = append(dirs, src.resolveDir(x.manifest))
		}
	}
	if x.dir != "" {
		dirs = append(dirs, x.dir)
	}

	seen := make(map[model.FormID]string)
	var forms []*model.DynamicForm
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read definitions directory", goerr.V(SourceDirKey, dir))
		}
		if !info.IsDir() {
			return nil, goerr.New("definitions path is not a directory", goerr.V(SourceDirKey, dir))
		}

		loaded, err := assets.NewDirLoader(dir).Load()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load form definitions", goerr.V(SourceDirKey, dir))
		}

		for _, form := range loaded {
			if prev, ok := seen[form.ID]; ok {
				return nil, goerr.Wrap(ErrDuplicateForm, "form is defined in multiple sources",
					goerr.V(FormIDKey, form.ID),
					goerr.V(SourceDirKey, dir),
					goerr.V("conflicts_with", prev))
			}
			seen[form.ID] = dir
			forms = append(forms, form)
		}
	}

	return forms, nil
}

// Manifest is the root of a sources TOML file:
//
//	[[source]]
//	name = "surveys"
//	dir = "./definitions/surveys"
type Manifest struct {
	Sources []Source `toml:"source"`
}

// Source points at one directory of form definition files
type Source struct {
	Name string `toml:"name"`
	Dir  string `toml:"dir"`
}

// Validate checks if the Source is valid
func (s *Source) Validate() error {
	if s.Name == "" {
		return goerr.Wrap(ErrInvalidManifest, "source name is required")
	}
	if s.Dir == "" {
		return goerr.Wrap(ErrInvalidManifest, "source dir is required", goerr.V(SourceNameKey, s.Name))
	}
	return nil
}

// resolveDir interprets a relative source dir against the manifest
// location, so a manifest can travel with its definition directories.
func (s *Source) resolveDir(manifestPath string) string {
	if filepath.IsAbs(s.Dir) {
		return s.Dir
	}
	return filepath.Join(filepath.Dir(manifestPath), s.Dir)
}

// Validate checks if the Manifest is valid
func (m *Manifest) Validate() error {
	names := make(map[string]bool)
	for _, src := range m.Sources {
		if err := src.Validate(); err != nil {
			return err
		}
		if names[src.Name] {
			return goerr.Wrap(ErrDuplicateSource, "source names must be unique", goerr.V(SourceNameKey, src.Name))
		}
		names[src.Name] = true
	}
	return nil
}

// LoadManifest loads a sources manifest from a TOML file
func LoadManifest(path string) (*Manifest, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read sources manifest", goerr.V(ManifestPathKey, path))
	}

	var manifest Manifest
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML manifest", goerr.V(ManifestPathKey, path))
	}

	if err := manifest.Validate(); err != nil {
		return nil, goerr.Wrap(err, "manifest validation failed", goerr.V(ManifestPathKey, path))
	}

	return &manifest, nil
}
