// Package disk implements storage.FileStore on the local filesystem.
// Files land in a single uploads directory and are served statically at
// /uploads/ by the HTTP server.
package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/xid"

	"github.com/sakif/geodata-manager/internal/storage"
)

var _ storage.FileStore = (*Store)(nil)

// Store writes uploaded files under dir. Stored names are prefixed with an
// xid so two uploads of "area.geojson" cannot clobber each other.
type Store struct {
	dir string
}

// New creates the uploads directory if needed and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("disk: creating upload dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save streams r into the uploads directory and returns the public URL
// path ("/uploads/<xid>_<originalName>"). Only the base of originalName is
// used, so a client-supplied path like "../../etc/passwd" cannot escape
// the directory.
func (s *Store) Save(_ context.Context, originalName string, r io.Reader) (string, error) {
	name := xid.New().String() + "_" + filepath.Base(originalName)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("disk: creating file %s: %w", name, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("disk: writing file %s: %w", name, err)
	}

	return "/uploads/" + name, nil
}

// Delete removes the stored file matching key. The key carries no
// extension (see storage.KeyFromURL), so the match is "<key>.*".
// A key that matches nothing is an error, per the FileStore contract.
func (s *Store) Delete(_ context.Context, key string) error {
	matches, err := filepath.Glob(filepath.Join(s.dir, key+".*"))
	if err != nil {
		return fmt.Errorf("disk: matching key %s: %w", key, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("disk: no stored file for key %s", key)
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return fmt.Errorf("disk: removing %s: %w", m, err)
		}
	}
	return nil
}
