package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vaultsync/internal/domain"
)

// FS is a filesystem-backed blob backend rooted at a directory. Paths use
// forward slashes and map to files below the root.
type FS struct {
	root string
}

// NewFS returns a backend rooted at dir. The directory is created on first
// write.
func NewFS(dir string) *FS { return &FS{root: dir} }

func (b *FS) file(path string) string {
	return filepath.Join(b.root, filepath.FromSlash(path))
}

// Read returns the blob at path, or ok=false if the file does not exist.
func (b *FS) Read(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.file(path))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Write stores data at path via a temp file and rename, so readers never see
// a half-written blob.
func (b *FS) Write(path string, data []byte) error {
	target := b.file(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// List returns every stored path starting with prefix. A missing root means
// nothing was written yet.
func (b *FS) List(prefix string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(b.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(p, ".tmp") {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			out = append(out, rel)
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

var _ domain.Backend = (*FS)(nil)
