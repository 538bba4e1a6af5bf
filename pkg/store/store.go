// Package store persists project documents.
//
// A [Store] keeps projects by name. Backends are chosen by configuration:
//   - memory: in-process map for tests and throwaway servers
//   - file: one JSON file per project under a directory (CLI default)
//   - redis: one key per project plus an index set, for shared servers
//   - mongo: one document per project in a "projects" collection
//
// Every backend returns [ErrNotFound] for a missing project and validates
// documents on the way out, so callers always receive a project that passes
// [project.Project.Validate].
//
// # Usage
//
//	s, err := store.Open(ctx, store.Config{Backend: store.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	p, err := s.Get(ctx, "live-set")
//	if errors.Is(err, store.ErrNotFound) {
//	    p = project.New("live-set", grid.Default())
//	}
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/tilegrid/pkg/project"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a project does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown store backend")
)

// Store is the interface for project storage backends.
// Implementations are safe for concurrent use.
type Store interface {
	// Get returns the project with the given name, or ErrNotFound.
	Get(ctx context.Context, name string) (*project.Project, error)

	// Put creates or replaces a project, keyed by its name.
	Put(ctx context.Context, p *project.Project) error

	// Delete removes a project. It returns ErrNotFound if none exists.
	Delete(ctx context.Context, name string) error

	// List returns all project names in ascending order.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPrefix   string `toml:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// DefaultConfig returns a file-backed configuration with the default
// connection settings for the network backends.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendFile,
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "tilegrid:",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "tilegrid",
	}
}

// Validate checks that the backend is known.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendMongo:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
}

// DefaultDir returns the directory used by the file backend when none is
// configured: $XDG_DATA_HOME/tilegrid/projects, or ~/.local/share/tilegrid/projects.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "tilegrid", "projects"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tilegrid", "projects"), nil
}

// Open connects to the configured backend. The returned store reports its
// operations to the registered observability hooks.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendMemory:
		s = NewMemoryStore()
	case BackendFile:
		dir := cfg.Dir
		if dir == "" {
			if dir, err = DefaultDir(); err != nil {
				return nil, err
			}
		}
		s, err = NewFileStore(dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix})
	case BackendMongo:
		s, err = NewMongoStore(ctx, MongoConfig{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend, err)
	}
	return Instrument(s, cfg.Backend), nil
}

// encode and decode share the JSON document format across the byte-oriented
// backends, so a project written by one backend reads back in another.
func encode(p *project.Project) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return project.Marshal(p, project.FormatJSON)
}

func decode(data []byte) (*project.Project, error) {
	return project.Unmarshal(data, project.FormatJSON)
}
