// Package cache keeps parsed commit logs on disk as lz4-compressed gob
// streams, keyed by a digest of the raw input.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4/v4"
)

const (
	dirPerm    = 0o750
	fileSuffix = ".gob.lz4"
)

// ErrInvalidKey is returned for keys that could escape the cache directory.
var ErrInvalidKey = errors.New("invalid cache key")

// Store is a directory of compressed entries.
type Store struct {
	dir string
}

// New opens (creating if needed) a store rooted at dir.
func New(dir string) (*Store, error) {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get decodes the entry for key into v. A missing entry is a miss, not an error.
func (s *Store) Get(key string, v any) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("open cache entry: %w", err)
	}
	defer f.Close()

	decodeErr := gob.NewDecoder(lz4.NewReader(f)).Decode(v)
	if decodeErr != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", key, decodeErr)
	}

	return true, nil
}

// Put encodes v under key. The entry becomes visible atomically.
func (s *Store) Put(key string, v any) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}

	tmpName := tmp.Name()

	zw := lz4.NewWriter(tmp)

	encodeErr := gob.NewEncoder(zw).Encode(v)
	closeErr := errors.Join(zw.Close(), tmp.Close())

	if encodeErr != nil || closeErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("write cache entry %s: %w", key, errors.Join(encodeErr, closeErr))
	}

	renameErr := os.Rename(tmpName, path)
	if renameErr != nil {
		os.Remove(tmpName)

		return fmt.Errorf("commit cache entry %s: %w", key, renameErr)
	}

	return nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	return filepath.Join(s.dir, key+fileSuffix), nil
}
