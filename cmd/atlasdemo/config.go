// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
)

// label is one string drawn every frame.
type label struct {
	Text string `toml:"text"`
	Size int    `toml:"size"`
	X    int    `toml:"x"`
	Y    int    `toml:"y"`
}

// scene describes a demo run. Every field can be set from a TOML file;
// command-line flags override the file.
type scene struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
	Border int `toml:"border"`

	// Backend names the surface backend. Empty picks the best one that
	// opens.
	Backend string `toml:"backend"`

	// Frames is the number of frames rendered.
	Frames int `toml:"frames"`

	// Churn skips label i in frame f when (i+f) % Churn == 0, so some runs
	// go stale and get evicted. Zero draws every label every frame.
	Churn int `toml:"churn"`

	// MaxKeys bounds the renderer's recency list.
	MaxKeys int `toml:"max_keys"`

	// Viewport is the size of the composed preview.
	ViewportWidth  int `toml:"viewport_width"`
	ViewportHeight int `toml:"viewport_height"`

	Labels []label `toml:"label"`
}

func defaultScene() scene {
	s := scene{
		Width:          256,
		Height:         256,
		Border:         1,
		Frames:         8,
		Churn:          3,
		MaxKeys:        1024,
		ViewportWidth:  640,
		ViewportHeight: 480,
	}
	words := []string{
		"Hello", "World", "runatlas", "glyph runs", "Καλημέρα",
		"Player One", "Score: 1200", "Game Over", "Level 3", "Ready?",
	}
	for i, w := range words {
		s.Labels = append(s.Labels, label{
			Text: w,
			Size: 14 + 4*(i%4),
			X:    16 + 300*(i%2),
			Y:    16 + 40*(i/2),
		})
	}
	return s
}

// decodeScene reads TOML from r on top of the defaults. A file that lists
// labels replaces the default labels. Unknown keys are an error.
func decodeScene(r io.Reader) (scene, error) {
	s := defaultScene()
	s.Labels = nil
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return scene{}, fmt.Errorf("atlasdemo: decode scene: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return scene{}, fmt.Errorf("atlasdemo: unknown scene keys: %s", strings.Join(keys, ", "))
	}
	if len(s.Labels) == 0 {
		s.Labels = defaultScene().Labels
	}
	return s, s.validate()
}

func (s scene) validate() error {
	var errs []error
	if s.Frames < 1 {
		errs = append(errs, errors.New("frames must be positive"))
	}
	if s.Churn < 0 {
		errs = append(errs, errors.New("churn must be non-negative"))
	}
	if s.ViewportWidth < 1 || s.ViewportHeight < 1 {
		errs = append(errs, errors.New("viewport must be positive"))
	}
	for i, l := range s.Labels {
		if l.Text == "" {
			errs = append(errs, fmt.Errorf("label %d: empty text", i))
		}
		if l.Size < 1 {
			errs = append(errs, fmt.Errorf("label %d: size must be positive", i))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("atlasdemo: invalid scene: %w", err)
	}
	return nil
}

// encode writes s as TOML.
func (s scene) encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}

// drawn reports whether label i is drawn in frame f.
func (s scene) drawn(i, f int) bool {
	return s.Churn == 0 || (i+f)%s.Churn != 0
}
