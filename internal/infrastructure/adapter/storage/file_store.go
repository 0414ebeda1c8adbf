package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/generation"
)

// FileStore keeps artifacts as files in one directory. The location is the file path.
type FileStore struct {
	dir string
}

var _ generation.ArtifactStore = (*FileStore)(nil)

// NewFileStore creates dir when missing
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve artifact dir %q: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir %q: %w", abs, err)
	}
	return &FileStore{dir: abs}, nil
}

// Save writes data atomically under the base name of key
func (s *FileStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(key)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid artifact key %q", key)
	}
	path := filepath.Join(s.dir, name)

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create artifact %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write artifact %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close artifact %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("store artifact %q: %w", name, err)
	}
	return path, nil
}

// Load reads an artifact saved by this store. Paths outside the store's directory are not served.
func (s *FileStore) Load(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Clean(location)
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	if !strings.HasPrefix(path, s.dir+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", errs.ErrArtifactNotFound, location)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", errs.ErrArtifactNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact %q: %w", location, err)
	}
	return data, nil
}
