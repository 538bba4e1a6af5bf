package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/tilegrid/pkg/project"
)

// FileStore keeps one JSON document per project in a directory tree.
// File names are derived from a hash of the project name so that any valid
// name maps to a safe path.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string { return s.dir }

// Get reads and validates the named project.
func (s *FileStore) Get(ctx context.Context, name string) (*project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	return decode(data)
}

// Put writes p, replacing any previous version atomically.
func (s *FileStore) Put(ctx context.Context, p *project.Project) error {
	data, err := encode(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(p.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

// Delete removes the named project.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete project file: %w", err)
	}
	return nil
}

// List reads every stored document and returns the project names in
// ascending order. Unreadable or invalid documents are skipped.
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		p, err := decode(data)
		if err != nil {
			return nil
		}
		names = append(names, p.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error {
	return nil
}

// path maps a project name to its file, using the first two hash characters
// as a subdirectory.
func (s *FileStore) path(name string) string {
	hash := Hash([]byte(name))
	return filepath.Join(s.dir, hash[:2], hash[2:]+".json")
}

// Hash computes a SHA-256 hash of the input data as a 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var _ Store = (*FileStore)(nil)
