package store

import (
	"context"
	"errors"

	"github.com/matzehuels/tilegrid/pkg/observability"
	"github.com/matzehuels/tilegrid/pkg/project"
)

// instrumented reports every operation of a Store to observability hooks.
type instrumented struct {
	Store
	backend string
}

// Instrument wraps s so that its operations are reported to
// observability.Store() under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

func (s *instrumented) Get(ctx context.Context, name string) (*project.Project, error) {
	p, err := s.Store.Get(ctx, name)
	switch {
	case err == nil:
		observability.Store().OnLoad(ctx, s.backend, name, true)
	case errors.Is(err, ErrNotFound):
		observability.Store().OnLoad(ctx, s.backend, name, false)
	default:
		observability.Store().OnError(ctx, s.backend, "get", err)
	}
	return p, err
}

func (s *instrumented) Put(ctx context.Context, p *project.Project) error {
	if err := s.Store.Put(ctx, p); err != nil {
		observability.Store().OnError(ctx, s.backend, "put", err)
		return err
	}
	observability.Store().OnSave(ctx, s.backend, p.Name, len(p.Tiles))
	return nil
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	err := s.Store.Delete(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		observability.Store().OnError(ctx, s.backend, "delete", err)
	}
	return err
}

func (s *instrumented) List(ctx context.Context) ([]string, error) {
	names, err := s.Store.List(ctx)
	if err != nil {
		observability.Store().OnError(ctx, s.backend, "list", err)
	}
	return names, err
}
