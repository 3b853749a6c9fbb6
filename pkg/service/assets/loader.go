package assets

import (
	"encoding/json"
	"io/fs"
	"os"
	"strings"

	"github.com/formloom/formloom/pkg/domain/mapper"
	"github.com/formloom/formloom/pkg/domain/model"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// Loader reads form definition files from a file tree. Each *.json file
// holds one form definition in the external map representation.
type Loader struct {
	fsys fs.FS
}

func New(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// NewDirLoader reads definitions from a local directory.
func NewDirLoader(dir string) *Loader {
	return New(os.DirFS(dir))
}

// Load decodes every definition file in name order. A definition
// without an "id" gets one derived from its title, falling back to a
// generated UUID when the title yields nothing usable.
func (l *Loader) Load() ([]*model.DynamicForm, error) {
	names, err := fs.Glob(l.fsys, "*.json")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list form definition files")
	}

	seen := make(map[model.FormID]string, len(names))
	forms := make([]*model.DynamicForm, 0, len(names))
	for _, name := range names {
		form, err := l.loadFile(name)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[form.ID]; ok {
			return nil, goerr.New("duplicate form ID across definition files",
				goerr.V("id", form.ID),
				goerr.V("file", name),
				goerr.V("conflictsWith", prev))
		}
		seen[form.ID] = name

		forms = append(forms, form)
	}

	return forms, nil
}

func (l *Loader) loadFile(name string) (*model.DynamicForm, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read form definition", goerr.V("file", name))
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse form definition", goerr.V("file", name))
	}

	ensureFormID(raw)

	form, err := mapper.FormFromMap(raw)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode form definition", goerr.V("file", name))
	}

	return &form, nil
}

// ensureFormID synthesizes a missing or blank "id" from the title. The
// mapper itself stays strict about the key being present, and a
// present-but-malformed id is left for the mapper to reject.
func ensureFormID(raw map[string]any) {
	if v, exists := raw["id"]; exists {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) != "" {
			return
		}
	}

	title, _ := raw["title"].(string)
	id := model.DeriveFormID(title)
	if id == "" {
		id = model.FormID(uuid.New().String())
	}
	raw["id"] = string(id)
}
