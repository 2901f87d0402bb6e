// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"slices"
	"testing"
)

func openImage(opts Options) (Surface, error) {
	return NewImageSurface(opts.Width, opts.Height), nil
}

func backendNames(bs []Backend) []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return names
}

var testOpts = Options{Width: 64, Height: 32}

// --- Registry Tests ---

func TestRegistry_RegisterLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(Backend{Name: "cpu", Priority: 50, Open: openImage})

	b, ok := r.Lookup("cpu")
	if !ok {
		t.Fatal("registered backend not found")
	}
	if b.Name != "cpu" || b.Priority != 50 {
		t.Errorf("backend = {%s %d}, want {cpu 50}", b.Name, b.Priority)
	}
	if !b.available() {
		t.Error("nil Available should mean always available")
	}

	// Registering the same name replaces it.
	r.Register(Backend{Name: "cpu", Priority: 5, Open: openImage})
	if got := r.Backends(false); len(got) != 1 || got[0].Priority != 5 {
		t.Errorf("after re-register: %+v", got)
	}

	r.Unregister("cpu")
	if _, ok := r.Lookup("cpu"); ok {
		t.Error("backend still present after Unregister")
	}
}

func TestRegistry_Ordering(t *testing.T) {
	r := NewRegistry()
	r.Register(Backend{Name: "low", Priority: 10, Open: openImage})
	r.Register(Backend{Name: "high", Priority: 100, Open: openImage})
	r.Register(Backend{Name: "mid-b", Priority: 50, Open: openImage})
	r.Register(Backend{Name: "mid-a", Priority: 50, Open: openImage})
	r.Register(Backend{Name: "off", Priority: 200, Open: openImage, Available: func() bool { return false }})

	want := []string{"off", "high", "mid-a", "mid-b", "low"}
	if got := backendNames(r.Backends(false)); !slices.Equal(got, want) {
		t.Errorf("Backends(false) = %v, want %v", got, want)
	}
	want = []string{"high", "mid-a", "mid-b", "low"}
	if got := backendNames(r.Backends(true)); !slices.Equal(got, want) {
		t.Errorf("Backends(true) = %v, want %v", got, want)
	}
}

func TestRegistry_OpenPicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	var opened []string
	track := func(name string) Factory {
		return func(opts Options) (Surface, error) {
			opened = append(opened, name)
			return openImage(opts)
		}
	}
	r.Register(Backend{Name: "low", Priority: 10, Open: track("low")})
	r.Register(Backend{Name: "high", Priority: 100, Open: track("high")})

	s, name, err := r.Open(testOpts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if name != "high" || !slices.Equal(opened, []string{"high"}) {
		t.Errorf("name = %q, opened = %v, want high only", name, opened)
	}
	if s.Width() != 64 || s.Height() != 32 {
		t.Errorf("size = %dx%d, want 64x32", s.Width(), s.Height())
	}
}

func TestRegistry_OpenFallsBack(t *testing.T) {
	r := NewRegistry()
	boom := errors.New("no device")
	r.Register(Backend{Name: "gpu", Priority: 100, Open: func(Options) (Surface, error) { return nil, boom }})
	r.Register(Backend{Name: "cpu", Priority: 10, Open: openImage})

	s, name, err := r.Open(testOpts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := s.(*ImageSurface); !ok || name != "cpu" {
		t.Errorf("Open returned %T from %q, want *ImageSurface from cpu", s, name)
	}

	r.Unregister("cpu")
	if _, _, err := r.Open(testOpts); !errors.Is(err, boom) {
		t.Errorf("Open with only failing backend: err = %v, want %v", err, boom)
	}
}

func TestRegistry_Errors(t *testing.T) {
	r := NewRegistry()

	if _, _, err := r.Open(testOpts); !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("empty registry: err = %v, want ErrNoBackendAvailable", err)
	}
	if _, err := r.OpenByName("vulkan", testOpts); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("unknown backend: err = %v", err)
	}

	r.Register(Backend{Name: "off", Priority: 10, Open: openImage, Available: func() bool { return false }})
	if _, err := r.OpenByName("off", testOpts); !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("unavailable backend: err = %v", err)
	}

	r.Register(Backend{Name: "cpu", Priority: 10, Open: openImage})
	if _, err := r.OpenByName("cpu", Options{Width: 0, Height: 8}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("zero width: err = %v, want ErrInvalidSize", err)
	}
	if _, _, err := r.Open(Options{Width: 8, Height: -1}); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("negative height: err = %v, want ErrInvalidSize", err)
	}
}

func TestDefaultRegistry_FallsBackToImage(t *testing.T) {
	names := backendNames(Backends(true))
	if !slices.Contains(names, "image") {
		t.Fatalf("image backend missing from %v", names)
	}

	// Without a GPU provider the texture backend fails and Open falls back.
	s, name, err := Open(Options{Width: 16, Height: 16})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*ImageSurface); !ok || name != "image" {
		t.Errorf("Open returned %T from %q, want *ImageSurface from image", s, name)
	}
}
