package sink

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

// Dir writes export records into a local directory, one file per
// record.
type Dir struct {
	dir string
}

var _ Sink = &Dir{}

func NewDir(dir string) *Dir {
	return &Dir{dir: dir}
}

func (s *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create export directory", goerr.V("dir", s.dir))
	}

	path := filepath.Join(s.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write export file", goerr.V("path", path))
	}

	return nil
}

func (s *Dir) Close() error {
	return nil
}
