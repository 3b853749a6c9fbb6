package sink

import (
	"context"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// GCS writes export records as objects in a Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ Sink = &GCS{}

type GCSOption func(*GCS)

// WithObjectPrefix places every object under the given key prefix.
func WithObjectPrefix(prefix string) GCSOption {
	return func(s *GCS) {
		s.prefix = prefix
	}
}

func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	s := &GCS{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *GCS) Write(ctx context.Context, name string, data []byte) error {
	object := path.Join(s.prefix, name)
	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write export object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize export object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", object))
	}

	return nil
}

func (s *GCS) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
