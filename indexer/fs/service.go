package fs

import (
	"context"

	"github.com/viant/afs/storage"
)

// Service abstracts listing and downloading source objects so that local folders and
// bucket URLs (gs://, s3://) are read the same way.
type Service interface {
	// List returns objects available at the given location; the first entry may be the location itself.
	List(ctx context.Context, location string) ([]storage.Object, error)
	// Download returns the content of the given object.
	Download(ctx context.Context, object storage.Object) ([]byte, error)
	// Exists reports whether location exists.
	Exists(ctx context.Context, location string) (bool, error)
}
