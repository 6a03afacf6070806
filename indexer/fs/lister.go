package fs

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// File is a source file found under a source location.
type File struct {
	Object storage.Object
	// Path is the object path without scheme and host; it keys the hash ledger.
	Path string
	Name string
	Size int64
}

// Stem returns the file name without its extension.
func (f *File) Stem() string {
	return strings.TrimSuffix(f.Name, path.Ext(f.Name))
}

// Filter reports whether a file at location with size should be listed.
type Filter func(location string, size int) bool

// Normalize turns location into an AFS URL: relative paths become absolute and
// scheme-less absolute paths become file:// URLs.
func Normalize(location string) (string, error) {
	norm := location
	if url.Scheme(norm, "") == "" && url.IsRelative(norm) {
		abs, err := filepath.Abs(norm)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path for %s: %w", location, err)
		}
		norm = abs
	}
	if url.Scheme(norm, "") == "" && !url.IsRelative(norm) {
		norm = url.ToFileURL(norm)
	}
	return norm, nil
}

// List walks location recursively and returns the files accepted by filter, sorted by path.
func List(ctx context.Context, svc Service, location string, filter Filter) ([]File, error) {
	norm, err := Normalize(location)
	if err != nil {
		return nil, err
	}
	var files []File
	if err := walk(ctx, svc, norm, filter, &files); err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func walk(ctx context.Context, svc Service, location string, filter Filter, files *[]File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objects, err := svc.List(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to list %v: %w", location, err)
	}
	self := url.Path(location)
	for _, object := range objects {
		objectPath := url.Path(object.URL())
		if object.IsDir() {
			if url.Equals(objectPath, self) || strings.TrimRight(objectPath, "/") == strings.TrimRight(self, "/") {
				continue
			}
			if err := walk(ctx, svc, object.URL(), filter, files); err != nil {
				return err
			}
			continue
		}
		if filter != nil && !filter(objectPath, int(object.Size())) {
			continue
		}
		*files = append(*files, File{Object: object, Path: objectPath, Name: object.Name(), Size: object.Size()})
	}
	return nil
}
