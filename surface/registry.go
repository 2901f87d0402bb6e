// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Factory creates a Surface from opts.
type Factory func(opts Options) (Surface, error)

// Backend is a named way of creating atlas surfaces.
type Backend struct {
	Name string

	// Priority orders automatic selection, highest first. The built-in
	// backends are "texture" at 100 and "image" at 10.
	Priority int

	Open Factory

	// Available reports whether the backend can work on this system at
	// all. Nil means always. A backend may still fail in Open, for example
	// when Options carry no GPU provider.
	Available func() bool
}

func (b Backend) available() bool {
	return b.Available == nil || b.Available()
}

// Registry errors.
var (
	// ErrNoBackendAvailable is returned by Open when no backend is
	// registered and available.
	ErrNoBackendAvailable = errors.New("surface: no backend available")

	// ErrUnknownBackend is returned by OpenByName for an unregistered name.
	ErrUnknownBackend = errors.New("surface: unknown backend")

	// ErrBackendUnavailable is returned by OpenByName for a backend whose
	// Available reports false.
	ErrBackendUnavailable = errors.New("surface: backend unavailable")
)

// Registry holds backends ordered by priority, then name.
type Registry struct {
	mu       sync.RWMutex
	backends []Backend
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

func compareBackends(a, b Backend) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// Register adds b, replacing any backend with the same name.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backends = slices.DeleteFunc(r.backends, func(old Backend) bool { return old.Name == b.Name })
	i, _ := slices.BinarySearchFunc(r.backends, b, compareBackends)
	r.backends = slices.Insert(r.backends, i, b)
}

// Unregister removes the backend called name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends = slices.DeleteFunc(r.backends, func(b Backend) bool { return b.Name == name })
}

// Backends returns the registered backends in selection order. With
// availableOnly set, backends whose Available reports false are left out.
func (r *Registry) Backends(availableOnly bool) []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Backend, 0, len(r.backends))
	for _, b := range r.backends {
		if availableOnly && !b.available() {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Lookup returns the backend called name.
func (r *Registry) Lookup(name string) (Backend, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := slices.IndexFunc(r.backends, func(b Backend) bool { return b.Name == name })
	if i < 0 {
		return Backend{}, false
	}
	return r.backends[i], true
}

// OpenByName creates a surface with the backend called name.
func (r *Registry) OpenByName(name string, opts Options) (Surface, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, ErrInvalidSize
	}
	b, ok := r.Lookup(name)
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	case !b.available():
		return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, name)
	}
	return b.Open(opts)
}

// Open creates a surface with the first available backend whose Open
// succeeds and reports its name. When every backend fails, the error joins
// each backend's failure.
func (r *Registry) Open(opts Options) (Surface, string, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, "", ErrInvalidSize
	}

	var errs []error
	for _, b := range r.Backends(true) {
		s, err := b.Open(opts)
		if err == nil {
			return s, b.Name, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", b.Name, err))
	}
	if len(errs) == 0 {
		return nil, "", ErrNoBackendAvailable
	}
	return nil, "", errors.Join(errs...)
}

var defaultRegistry = NewRegistry()

// Register adds b to the default registry.
func Register(b Backend) {
	defaultRegistry.Register(b)
}

// Backends lists the default registry's backends in selection order.
func Backends(availableOnly bool) []Backend {
	return defaultRegistry.Backends(availableOnly)
}

// Open creates a surface with the best working backend of the default
// registry.
func Open(opts Options) (Surface, string, error) {
	return defaultRegistry.Open(opts)
}

// OpenByName creates a surface with a named backend of the default
// registry.
func OpenByName(name string, opts Options) (Surface, error) {
	return defaultRegistry.OpenByName(name, opts)
}

func init() {
	Register(Backend{
		Name:     "image",
		Priority: 10,
		Open: func(opts Options) (Surface, error) {
			return NewImageSurface(opts.Width, opts.Height), nil
		},
	})
}
