package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/pitabwire/lingua/culture"
)

type staticScope struct {
	basePath string
	tag      culture.Tag
}

// Static is an in-memory provider, useful for embedded defaults and tests.
type Static struct {
	mu        sync.RWMutex
	resources map[staticScope]map[string][]byte
}

// NewStatic returns an empty static provider.
func NewStatic() *Static {
	return &Static{resources: map[staticScope]map[string][]byte{}}
}

// Add stores a copy of data for the triple, replacing any previous value.
func (s *Static) Add(basePath string, tag culture.Tag, key string, data []byte) *Static {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := staticScope{basePath: basePath, tag: tag}
	entries, ok := s.resources[scope]
	if !ok {
		entries = map[string][]byte{}
		s.resources[scope] = entries
	}
	entries[key] = append([]byte(nil), data...)
	return s
}

// AddString is Add for text resources.
func (s *Static) AddString(basePath string, tag culture.Tag, key, value string) *Static {
	return s.Add(basePath, tag, key, []byte(value))
}

// Remove deletes the resource for the triple if present.
func (s *Static) Remove(basePath string, tag culture.Tag, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scope := staticScope{basePath: basePath, tag: tag}
	delete(s.resources[scope], key)
	if len(s.resources[scope]) == 0 {
		delete(s.resources, scope)
	}
}

// Open returns a copy of the stored bytes.
func (s *Static) Open(ctx context.Context, basePath string, tag culture.Tag, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.resources[staticScope{basePath: basePath, tag: tag}][key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ObjectPath(basePath, tag, key))
	}
	return append([]byte(nil), data...), nil
}

// Exists reports whether any resource was added for the culture under basePath.
func (s *Static) Exists(ctx context.Context, basePath string, tag culture.Tag) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.resources[staticScope{basePath: basePath, tag: tag}]) > 0, nil
}
