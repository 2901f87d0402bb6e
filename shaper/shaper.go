// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shaper

import (
	"bytes"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/runatlas"
	"github.com/gogpu/runatlas/internal/cache"
)

// Default cache sizes.
const (
	// DefaultMetricsCapacity bounds the number of sizes whose metrics are
	// memoized.
	DefaultMetricsCapacity = 64

	// DefaultOutlineCapacity is the per-shard capacity of the outline cache.
	DefaultOutlineCapacity = 512
)

// Option configures a Shaper.
type Option func(*options)

type options struct {
	lang            language.Language
	metricsCapacity int
	outlineCapacity int
}

// WithLanguage sets the BCP 47 language passed to the shaping engine.
// Default: "en".
func WithLanguage(tag string) Option {
	return func(o *options) {
		o.lang = language.NewLanguage(tag)
	}
}

// WithMetricsCapacity bounds how many sizes keep memoized metrics.
func WithMetricsCapacity(n int) Option {
	return func(o *options) {
		o.metricsCapacity = n
	}
}

// WithOutlineCapacity sets the per-shard capacity of the glyph outline
// cache.
func WithOutlineCapacity(n int) Option {
	return func(o *options) {
		o.outlineCapacity = n
	}
}

// fontEntry holds one registered font in both parsed forms: go-text for
// shaping and sfnt for outlines. Glyph indices agree between the two.
type fontEntry struct {
	name    string
	shaping *font.Font
	outline *sfnt.Font
}

// Shaper shapes and rasterizes text runs.
type Shaper struct {
	lang language.Language

	mu       sync.RWMutex
	fonts    []*fontEntry
	byScript map[language.Script]int
	gen      uint64 // bumped by RegisterFont

	// metrics memoizes vertical metrics per font generation and size.
	metrics *cache.Cache[metricsKey, Metrics]

	// outlines caches scaled glyph outlines keyed by font, glyph and size.
	outlines *cache.Sharded[uint64, []sfnt.Segment]

	// hbPool pools HarfbuzzShaper instances, which are not safe for
	// concurrent use.
	hbPool sync.Pool
}

// New creates a Shaper with no fonts.
func New(opts ...Option) *Shaper {
	o := options{
		lang:            language.NewLanguage("en"),
		metricsCapacity: DefaultMetricsCapacity,
		outlineCapacity: DefaultOutlineCapacity,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Shaper{
		lang:     o.lang,
		byScript: make(map[language.Script]int),
		metrics:  cache.New[metricsKey, Metrics](o.metricsCapacity),
		outlines: cache.NewSharded[uint64, []sfnt.Segment](o.outlineCapacity, cache.Uint64Hasher),
		hbPool: sync.Pool{
			New: func() any { return &shaping.HarfbuzzShaper{} },
		},
	}
}

// RegisterFont parses data and adds it to the shaper. The first registered
// font is the fallback for every script. Later fonts are used for the given
// scripts; registering a script again moves it to the newer font.
//
// Memoized metrics are cleared, since the new font can change line height.
func (s *Shaper) RegisterFont(data []byte, scripts ...language.Script) error {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	outline, err := sfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}

	entry := &fontEntry{shaping: face.Font, outline: outline}
	if name, err := outline.Name(nil, sfnt.NameIDFamily); err == nil {
		entry.name = name
	}

	s.mu.Lock()
	idx := len(s.fonts)
	s.fonts = append(s.fonts, entry)
	for _, sc := range scripts {
		s.byScript[sc] = idx
	}
	s.gen++
	s.mu.Unlock()

	// Entries of older generations can no longer be hit.
	s.metrics.Purge()

	runatlas.Logger().Debug("shaper: font registered",
		slog.String("family", entry.name),
		slog.Int("index", idx),
		slog.Int("scripts", len(scripts)))
	return nil
}

// FontCount returns the number of registered fonts.
func (s *Shaper) FontCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fonts)
}

// Families returns the family names of registered fonts in registration
// order. Fonts without a family name yield "".
func (s *Shaper) Families() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.fonts))
	for i, f := range s.fonts {
		names[i] = f.name
	}
	return names
}

// Shape lays out text at size (pixels per em) and rasterizes it.
// The bitmap is as wide as the laid-out glyphs and as tall as
// Metrics(size).Height().
func (s *Shaper) Shape(text string, size int) (runatlas.Bitmap, error) {
	fonts, err := s.snapshot(text, size)
	if err != nil {
		return runatlas.Bitmap{}, err
	}
	m, err := s.Metrics(size)
	if err != nil {
		return runatlas.Bitmap{}, err
	}
	l := s.layout(fonts.entries, fonts.byScript, text, size)
	return s.rasterize(l, m), nil
}

// Measure returns the size of the bitmap Shape would produce, without
// rasterizing.
func (s *Shaper) Measure(text string, size int) (width, height int, err error) {
	fonts, err := s.snapshot(text, size)
	if err != nil {
		return 0, 0, err
	}
	m, err := s.Metrics(size)
	if err != nil {
		return 0, 0, err
	}
	l := s.layout(fonts.entries, fonts.byScript, text, size)
	return l.width(), m.Height(), nil
}

// CacheStats describes one of the shaper's caches.
type CacheStats = cache.Stats

// Stats reports the outline and metrics cache statistics.
func (s *Shaper) Stats() (outlines, metrics CacheStats) {
	return s.outlines.Stats(), s.metrics.Stats()
}

type fontSet struct {
	entries  []*fontEntry
	byScript map[language.Script]int
}

// snapshot validates the request and copies the font tables so shaping
// runs without holding the lock.
func (s *Shaper) snapshot(text string, size int) (fontSet, error) {
	if size <= 0 {
		return fontSet{}, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if text == "" {
		return fontSet{}, ErrEmptyText
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.fonts) == 0 {
		return fontSet{}, ErrNoFonts
	}
	return fontSet{
		entries:  slices.Clone(s.fonts),
		byScript: maps.Clone(s.byScript),
	}, nil
}
