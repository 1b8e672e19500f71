// Package storage defines the file storage contract consumed by the upload
// gate and the geodata service, with disk and S3 backends in subpackages.
package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// FileStore stores uploaded file bytes and deletes them again by key.
//
// Save returns the stored file's URL (an opaque path from the API's point
// of view — the disk backend returns "/uploads/<name>", the S3 backend an
// object URL). Delete takes the key derived by KeyFromURL.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// KeyFromURL derives the storage key from a stored file URL: the path
// segment after the last "/", with the extension stripped. This mirrors
// how keys were derived when records were written, so delete finds the
// right object regardless of backend.
func KeyFromURL(fileURL string) string {
	name := path.Base(fileURL)
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
