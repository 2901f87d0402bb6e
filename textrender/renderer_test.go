// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textrender

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"
	"testing"

	"github.com/gogpu/runatlas"
	"github.com/gogpu/runatlas/surface"
)

// squareShaper returns a solid 16x16 bitmap for any text and counts calls.
type squareShaper struct {
	calls int
	err   error
}

func (s *squareShaper) shape(_ string, _ int) (runatlas.Bitmap, error) {
	s.calls++
	if s.err != nil {
		return runatlas.Bitmap{}, s.err
	}
	b := runatlas.NewBitmap(16, 16)
	for i := range b.Pix {
		b.Pix[i] = 255
	}
	return b, nil
}

// newStrip returns a renderer over a 64x16 borderless atlas that holds
// exactly four 16x16 runs.
func newStrip(t *testing.T, opts ...Option) (*Renderer, *squareShaper, *surface.ImageSurface) {
	t.Helper()
	a, err := runatlas.New(64, 16, runatlas.WithBorder(0))
	if err != nil {
		t.Fatal(err)
	}
	sh := &squareShaper{}
	surf := surface.NewImageSurface(64, 16)
	r, err := New(a, sh.shape, surf, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return r, sh, surf
}

func mustDraw(t *testing.T, r *Renderer, texts ...string) {
	t.Helper()
	for i, text := range texts {
		if err := r.Draw(text, 12, i*20, 0); err != nil {
			t.Fatalf("Draw(%q): %v", text, err)
		}
	}
}

func mustRender(t *testing.T, r *Renderer) []Quad {
	t.Helper()
	quads, err := r.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return quads
}

func key(text string) runatlas.Key {
	return runatlas.Key{Text: text, Size: 12}
}

// --- Renderer Tests ---

func TestNew_Errors(t *testing.T) {
	a, _ := runatlas.New(16, 16)
	surf := surface.NewImageSurface(16, 16)
	sh := (&squareShaper{}).shape

	if _, err := New(nil, sh, surf); !errors.Is(err, ErrNilAtlas) {
		t.Errorf("nil atlas: err = %v", err)
	}
	if _, err := New(a, nil, surf); !errors.Is(err, ErrNilShaper) {
		t.Errorf("nil shaper: err = %v", err)
	}
	if _, err := New(a, sh, nil); !errors.Is(err, runatlas.ErrNilWriter) {
		t.Errorf("nil writer: err = %v", err)
	}
	var ce *ConfigError
	if _, err := New(a, sh, surf, WithMaxKeys(0)); !errors.As(err, &ce) || ce.Field != "MaxKeys" {
		t.Errorf("MaxKeys 0: err = %v", err)
	}
	if _, err := New(a, sh, surf, WithFrameLifetime(-1)); !errors.As(err, &ce) || ce.Field != "FrameLifetime" {
		t.Errorf("FrameLifetime -1: err = %v", err)
	}
	if _, err := New(a, sh, surf, WithWorkers(-1)); !errors.As(err, &ce) || ce.Field != "Workers" {
		t.Errorf("Workers -1: err = %v", err)
	}
}

func TestRenderer_DrawAndRender(t *testing.T) {
	r, sh, surf := newStrip(t)

	mustDraw(t, r, "a", "b", "a")
	if sh.calls != 2 {
		t.Errorf("shape calls = %d, want 2", sh.calls)
	}
	if r.Atlas().PendingLen() != 2 {
		t.Errorf("PendingLen = %d, want 2", r.Atlas().PendingLen())
	}

	quads := mustRender(t, r)
	if len(quads) != 3 {
		t.Fatalf("got %d quads, want 3", len(quads))
	}
	if quads[0].Src != quads[2].Src {
		t.Errorf("same key, different rects: %v vs %v", quads[0].Src, quads[2].Src)
	}
	if quads[1].Dst != image.Pt(20, 0) {
		t.Errorf("quads[1].Dst = %v, want (20,0)", quads[1].Dst)
	}
	if r.Atlas().PendingLen() != 0 {
		t.Errorf("PendingLen after Render = %d", r.Atlas().PendingLen())
	}
	if surf.Writes() != 2 {
		t.Errorf("surface writes = %d, want 2", surf.Writes())
	}

	st := r.Stats()
	if st.Frames != 1 || st.Draws != 3 || st.Shaped != 2 || st.Hits != 1 {
		t.Errorf("stats = %+v", st)
	}
	if r.Frame() != 2 {
		t.Errorf("Frame = %d, want 2", r.Frame())
	}

	// Next frame hits the atlas without shaping or writing.
	mustDraw(t, r, "b")
	mustRender(t, r)
	if sh.calls != 2 || surf.Writes() != 2 {
		t.Errorf("calls = %d, writes = %d after cached frame", sh.calls, surf.Writes())
	}
}

func TestRenderer_EvictsStaleOnOutOfSpace(t *testing.T) {
	r, _, _ := newStrip(t)

	mustDraw(t, r, "a", "b", "c", "d")
	mustRender(t, r)

	mustDraw(t, r, "b", "e")
	quads := mustRender(t, r)
	if len(quads) != 2 {
		t.Fatalf("got %d quads, want 2", len(quads))
	}

	a := r.Atlas()
	if a.Contains(key("a")) {
		t.Error("least recently drawn key a survived")
	}
	for _, k := range []string{"b", "c", "d", "e"} {
		if !a.Contains(key(k)) {
			t.Errorf("key %q missing", k)
		}
	}
	st := r.Stats()
	if st.Evictions != 1 || st.Retries != 1 {
		t.Errorf("Evictions = %d, Retries = %d, want 1, 1", st.Evictions, st.Retries)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestRenderer_KeepsCurrentFrame(t *testing.T) {
	r, _, _ := newStrip(t)

	mustDraw(t, r, "a", "b", "c", "d")
	err := r.Draw("e", 12, 0, 0)
	if !errors.Is(err, runatlas.ErrOutOfSpace) {
		t.Fatalf("Draw over capacity: err = %v, want ErrOutOfSpace", err)
	}
	if r.Atlas().Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Atlas().Len())
	}
	if got := len(mustRender(t, r)); got != 4 {
		t.Errorf("got %d quads, want 4", got)
	}
}

func TestRenderer_OversizedRun(t *testing.T) {
	a, _ := runatlas.New(8, 8, runatlas.WithBorder(0))
	sh := &squareShaper{}
	r, err := New(a, sh.shape, surface.NewImageSurface(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Draw("huge", 12, 0, 0); !errors.Is(err, runatlas.ErrOutOfSpace) {
		t.Errorf("err = %v, want ErrOutOfSpace", err)
	}
	if r.Tracked() != 0 {
		t.Errorf("Tracked = %d, want 0", r.Tracked())
	}
}

func TestRenderer_MaxKeys(t *testing.T) {
	r, _, _ := newStrip(t, WithMaxKeys(2))

	mustDraw(t, r, "a", "b")
	mustRender(t, r)
	mustDraw(t, r, "c")
	mustRender(t, r)

	if r.Tracked() != 2 {
		t.Errorf("Tracked = %d, want 2", r.Tracked())
	}
	if r.Atlas().Len() != 2 || r.Atlas().Contains(key("a")) {
		t.Errorf("atlas keys = %v, want [b c]", r.Atlas().Keys())
	}
	if r.Stats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", r.Stats().Evictions)
	}
}

func TestRenderer_MidFrameEviction(t *testing.T) {
	r, _, _ := newStrip(t, WithMaxKeys(1))

	mustDraw(t, r, "a", "b")
	quads := mustRender(t, r)
	if len(quads) != 1 || quads[0].Key != key("b") {
		t.Errorf("quads = %+v, want only b", quads)
	}
}

func TestRenderer_ReinsertedKeyUsesCurrentRect(t *testing.T) {
	r, _, _ := newStrip(t, WithMaxKeys(2))

	// "a" is pushed out of the recency list by "c", then drawn again and
	// lands in another slot. Its first quad must follow it.
	mustDraw(t, r, "a", "b", "c", "d", "a")
	quads := mustRender(t, r)
	if len(quads) == 0 {
		t.Fatal("no quads")
	}

	for _, q := range quads {
		e := r.Atlas().Peek(q.Key)
		if e.State == runatlas.Missing {
			t.Errorf("quad for %v, which is not in the atlas", q.Key)
			continue
		}
		if q.Src != e.Rect {
			t.Errorf("quad %v Src = %v, atlas holds it at %v", q.Key, q.Src, e.Rect)
		}
	}
}

func TestRenderer_FrameLifetime(t *testing.T) {
	r, _, _ := newStrip(t, WithFrameLifetime(2))

	mustDraw(t, r, "a")
	mustRender(t, r) // frame 1
	mustDraw(t, r, "b")
	mustRender(t, r) // frame 2: a idle for 1 frame
	if !r.Atlas().Contains(key("a")) {
		t.Fatal("a expired too early")
	}
	mustDraw(t, r, "b")
	mustRender(t, r) // frame 3: a idle for 2 frames
	if r.Atlas().Contains(key("a")) {
		t.Error("a not expired after 2 idle frames")
	}
	if !r.Atlas().Contains(key("b")) {
		t.Error("b expired while in use")
	}
}

func TestRenderer_ShapeError(t *testing.T) {
	r, sh, _ := newStrip(t)
	boom := errors.New("no glyphs")
	sh.err = boom

	if err := r.Draw("x", 12, 0, 0); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if quads := mustRender(t, r); len(quads) != 0 {
		t.Errorf("got %d quads after failed draw", len(quads))
	}
}

type failingWriter struct{}

func (failingWriter) WriteRegion(image.Rectangle, runatlas.Bitmap) error {
	return errors.New("device lost")
}

func TestRenderer_RenderWriteError(t *testing.T) {
	a, _ := runatlas.New(64, 64)
	sh := &squareShaper{}
	r, err := New(a, sh.shape, failingWriter{})
	if err != nil {
		t.Fatal(err)
	}
	mustDraw(t, r, "a")
	if _, err := r.Render(); err == nil {
		t.Fatal("Render succeeded with failing writer")
	}
	if r.Frame() != 1 {
		t.Errorf("Frame = %d after failed Render, want 1", r.Frame())
	}
	if a.PendingLen() != 1 {
		t.Errorf("PendingLen = %d, want 1", a.PendingLen())
	}
}

func TestRenderer_Reset(t *testing.T) {
	r, _, _ := newStrip(t)
	mustDraw(t, r, "a", "b")
	r.Reset()

	if r.Atlas().Len() != 0 || r.Tracked() != 0 {
		t.Errorf("Len = %d, Tracked = %d after Reset", r.Atlas().Len(), r.Tracked())
	}
	if got := len(mustRender(t, r)); got != 0 {
		t.Errorf("got %d quads after Reset", got)
	}
	if r.Stats().Evictions != 0 {
		t.Errorf("Reset counted %d evictions", r.Stats().Evictions)
	}
}

// --- Prefetch Tests ---

// syncShaper is a squareShaper safe for concurrent use that fails for one
// text.
type syncShaper struct {
	calls atomic.Int64
	fail  string
	err   error
}

func (s *syncShaper) shape(text string, _ int) (runatlas.Bitmap, error) {
	s.calls.Add(1)
	if text == s.fail {
		return runatlas.Bitmap{}, s.err
	}
	b := runatlas.NewBitmap(16, 16)
	for i := range b.Pix {
		b.Pix[i] = 255
	}
	return b, nil
}

func newPrefetchStrip(t *testing.T, sh *syncShaper) *Renderer {
	t.Helper()
	a, err := runatlas.New(64, 16, runatlas.WithBorder(0))
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(a, sh.shape, surface.NewImageSurface(64, 16), WithWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)
	return r
}

func TestRenderer_Prefetch(t *testing.T) {
	sh := &syncShaper{}
	r := newPrefetchStrip(t, sh)

	runs := []Run{{"a", 12}, {"b", 12}, {"a", 12}, {"c", 12}}
	if err := r.Prefetch(runs); err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if sh.calls.Load() != 3 {
		t.Errorf("shape calls = %d, want 3", sh.calls.Load())
	}
	// Inserted in the order given.
	for i, text := range []string{"a", "b", "c"} {
		if got := r.Atlas().Lookup(key(text)).Rect.Min.X; got != i*16 {
			t.Errorf("%s at x = %d, want %d", text, got, i*16)
		}
	}

	mustDraw(t, r, "a", "b", "c")
	if st := r.Stats(); st.Shaped != 3 || st.Hits != 3 {
		t.Errorf("Shaped = %d, Hits = %d, want 3 and 3", st.Shaped, st.Hits)
	}
	if quads := mustRender(t, r); len(quads) != 3 {
		t.Errorf("got %d quads, want 3", len(quads))
	}

	// A second prefetch of present runs shapes nothing.
	if err := r.Prefetch(runs); err != nil {
		t.Fatal(err)
	}
	if sh.calls.Load() != 3 {
		t.Errorf("shape calls = %d after cached prefetch, want 3", sh.calls.Load())
	}
}

func TestRenderer_Prefetch_PartialError(t *testing.T) {
	boom := errors.New("no glyphs")
	sh := &syncShaper{fail: "bad", err: boom}
	r := newPrefetchStrip(t, sh)

	err := r.Prefetch([]Run{{"a", 12}, {"bad", 12}, {"c", 12}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !r.Atlas().Contains(key("a")) || !r.Atlas().Contains(key("c")) {
		t.Errorf("atlas keys = %v, want a and c", r.Atlas().Keys())
	}
	if r.Atlas().Contains(key("bad")) {
		t.Error("failed run inserted")
	}
}

func TestRenderer_Prefetch_CountsAsCurrent(t *testing.T) {
	sh := &syncShaper{}
	r := newPrefetchStrip(t, sh)

	if err := r.Prefetch([]Run{{"a", 12}, {"b", 12}, {"c", 12}, {"d", 12}}); err != nil {
		t.Fatal(err)
	}
	// The strip is full of runs for this frame, so nothing may be evicted.
	if err := r.Draw("e", 12, 0, 0); !errors.Is(err, runatlas.ErrOutOfSpace) {
		t.Errorf("err = %v, want ErrOutOfSpace", err)
	}
	mustRender(t, r)

	// Next frame the prefetched runs are stale.
	if err := r.Draw("e", 12, 0, 0); err != nil {
		t.Errorf("Draw next frame: %v", err)
	}
}

func TestRenderer_Prefetch_Closed(t *testing.T) {
	sh := &syncShaper{}
	r := newPrefetchStrip(t, sh)
	r.Close()
	r.Close()

	if err := r.Prefetch([]Run{{"a", 12}}); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
	if err := r.Draw("a", 12, 0, 0); err != nil {
		t.Errorf("Draw after Close: %v", err)
	}
}

// --- Quad Tests ---

func TestVertices(t *testing.T) {
	q := newQuad(key("a"), image.Rect(0, 0, 16, 8), image.Pt(0, 0), image.Rect(0, 0, 64, 32))
	if q.UV != [4]float32{0, 0, 0.25, 0.25} {
		t.Errorf("UV = %v", q.UV)
	}

	v := Vertices([]Quad{q}, 32, 16)
	if len(v) != VerticesPerQuad*FloatsPerVertex {
		t.Fatalf("len = %d", len(v))
	}
	const eps = 1e-5
	near := func(a, b float32) bool { return a-b < eps && b-a < eps }

	// Top-left corner maps to clip (-1, 1).
	if !near(v[0], -1) || !near(v[1], 1) || v[2] != 0 || v[3] != 0 {
		t.Errorf("vertex 0 = %v", v[0:4])
	}
	// Bottom-right corner (16, 8) maps to clip (0, 0).
	br := v[4*4 : 4*4+4]
	if !near(br[0], 0) || !near(br[1], 0) || br[2] != 0.25 || br[3] != 0.25 {
		t.Errorf("vertex 4 = %v", br)
	}
}

func TestCompose(t *testing.T) {
	r, _, surf := newStrip(t)
	if err := r.Draw("a", 12, 5, 3); err != nil {
		t.Fatal(err)
	}
	quads := mustRender(t, r)

	dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
	Compose(dst, surf.Image(), quads, color.RGBA{R: 255, A: 255})

	if got := dst.RGBAAt(5, 3); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel (5,3) = %v, want red", got)
	}
	if got := dst.RGBAAt(30, 3); got.A != 0 {
		t.Errorf("pixel (30,3) = %v, want transparent", got)
	}
}

// --- Benchmarks ---

func BenchmarkRenderer_CachedFrame(b *testing.B) {
	a, _ := runatlas.New(512, 512)
	sh := &squareShaper{}
	r, _ := New(a, sh.shape, surface.NewImageSurface(512, 512))
	texts := []string{"one", "two", "three", "four", "five"}
	for b.Loop() {
		for i, text := range texts {
			_ = r.Draw(text, 12, i*20, 0)
		}
		_, _ = r.Render()
	}
}
