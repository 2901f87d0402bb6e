// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/gogpu/runatlas/surface"
)

// --- Scene Tests ---

func TestDefaultScene_Valid(t *testing.T) {
	sc := defaultScene()
	if err := sc.validate(); err != nil {
		t.Fatalf("default scene invalid: %v", err)
	}
	if len(sc.Labels) == 0 {
		t.Error("default scene has no labels")
	}
}

func TestDecodeScene(t *testing.T) {
	const src = `
width = 512
frames = 3
churn = 0

[[label]]
text = "Hi"
size = 20
x = 4
y = 8
`
	sc, err := decodeScene(strings.NewReader(src))
	if err != nil {
		t.Fatalf("decodeScene: %v", err)
	}
	if sc.Width != 512 || sc.Frames != 3 || sc.Churn != 0 {
		t.Errorf("scene = %+v", sc)
	}
	// Unset keys keep their defaults.
	if sc.Height != 256 || sc.Border != 1 {
		t.Errorf("Height = %d, Border = %d, want defaults", sc.Height, sc.Border)
	}
	want := label{Text: "Hi", Size: 20, X: 4, Y: 8}
	if len(sc.Labels) != 1 || sc.Labels[0] != want {
		t.Errorf("Labels = %+v, want [%+v]", sc.Labels, want)
	}
}

func TestDecodeScene_DefaultLabels(t *testing.T) {
	sc, err := decodeScene(strings.NewReader("frames = 2\n"))
	if err != nil {
		t.Fatalf("decodeScene: %v", err)
	}
	if len(sc.Labels) != len(defaultScene().Labels) {
		t.Errorf("got %d labels, want the defaults", len(sc.Labels))
	}
}

func TestDecodeScene_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "width = = 3", "decode scene"},
		{"unknown key", "colour = 3", "unknown scene keys: colour"},
		{"frames", "frames = 0", "frames must be positive"},
		{"churn", "churn = -2", "churn must be non-negative"},
		{"label size", "[[label]]\ntext = \"x\"\nsize = 0", "label 0: size must be positive"},
		{"label text", "[[label]]\nsize = 10", "label 0: empty text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeScene(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestScene_EncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := defaultScene().encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	sc, err := decodeScene(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	def := defaultScene()
	if sc.Width != def.Width || sc.MaxKeys != def.MaxKeys || len(sc.Labels) != len(def.Labels) {
		t.Errorf("round trip changed scene: %+v", sc)
	}
}

func TestScene_Drawn(t *testing.T) {
	sc := scene{Churn: 3}
	skipped := 0
	for i := range 9 {
		if !sc.drawn(i, 0) {
			skipped++
		}
	}
	if skipped != 3 {
		t.Errorf("skipped %d of 9 labels, want 3", skipped)
	}

	sc.Churn = 0
	if !sc.drawn(0, 0) {
		t.Error("churn 0 must draw everything")
	}
}

// --- Run Tests ---

func TestRun_WritesImages(t *testing.T) {
	dir := t.TempDir()
	sc := defaultScene()
	sc.Frames = 3

	log := newLogger(false, true)
	if err := run(log, sc, dir+"/atlas.png", dir+"/preview.png"); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"atlas.png", "preview.png"} {
		if _, err := os.Stat(dir + "/" + name); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}
}

func TestRun_Backends(t *testing.T) {
	dir := t.TempDir()
	sc := defaultScene()
	sc.Frames = 2
	log := newLogger(false, true)

	// The image backend can be named explicitly.
	sc.Backend = "image"
	if err := run(log, sc, dir+"/atlas.png", ""); err != nil {
		t.Fatalf("run with image backend: %v", err)
	}
	if _, err := os.Stat(dir + "/atlas.png"); err != nil {
		t.Errorf("atlas not written: %v", err)
	}

	// Without a GPU provider the texture backend cannot open.
	sc.Backend = "texture"
	if err := run(log, sc, dir+"/tex.png", ""); err == nil {
		t.Error("run with texture backend and no provider succeeded")
	}

	sc.Backend = "nope"
	if err := run(log, sc, dir+"/nope.png", ""); !errors.Is(err, surface.ErrUnknownBackend) {
		t.Errorf("unknown backend: err = %v, want ErrUnknownBackend", err)
	}
}
