// Package memory provides a type store that lives for the process lifetime.
package memory

import (
	"context"
	"sync"

	"github.com/marmos91/filebridge/pkg/cmis"
)

// Store keeps registered type definitions in memory.
type Store struct {
	mu   sync.Mutex
	defs []*cmis.TypeDefinition
}

func New() *Store {
	return &Store{}
}

func (s *Store) LoadTypes(ctx context.Context) ([]*cmis.TypeDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*cmis.TypeDefinition, 0, len(s.defs))
	for _, d := range s.defs {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (s *Store) SaveType(ctx context.Context, def *cmis.TypeDefinition) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = append(s.defs, def.Clone())
	return nil
}

func (s *Store) Close() error {
	return nil
}
