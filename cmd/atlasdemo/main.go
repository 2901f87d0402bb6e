// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command atlasdemo renders a few frames of text through a runatlas atlas
// and saves the atlas surface and a composed preview as PNG.
//
// Usage:
//
//	atlasdemo [-config scene.toml] [-backend image] [-frames 8] [-churn 3] [-out atlas.png]
//
// Run with -dump-config to print the default scene as TOML.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"

	"github.com/go-text/typesetting/language"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/term"

	"github.com/gogpu/runatlas"
	"github.com/gogpu/runatlas/shaper"
	"github.com/gogpu/runatlas/surface"
	"github.com/gogpu/runatlas/textrender"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML scene file")
		width      = flag.Int("width", 0, "atlas width (overrides scene)")
		height     = flag.Int("height", 0, "atlas height (overrides scene)")
		backend    = flag.String("backend", "", "surface backend, empty for the best available (overrides scene)")
		frames     = flag.Int("frames", 0, "frames to render (overrides scene)")
		churn      = flag.Int("churn", -1, "skip label i in frame f when (i+f)%churn == 0 (overrides scene)")
		output     = flag.String("out", "atlas.png", "atlas surface output file")
		preview    = flag.String("preview", "preview.png", "composed preview output file, empty to skip")
		verbose    = flag.Bool("v", false, "debug logging")
		jsonLog    = flag.Bool("json", false, "JSON logs even on a terminal")
		dump       = flag.Bool("dump-config", false, "print the default scene as TOML and exit")
	)
	flag.Parse()

	log := newLogger(*verbose, *jsonLog)
	runatlas.SetLogger(log)

	if *dump {
		if err := defaultScene().encode(os.Stdout); err != nil {
			log.Error("encode scene", slog.Any("err", err))
			os.Exit(1)
		}
		return
	}

	sc, err := loadScene(*configPath)
	if err != nil {
		log.Error("load scene", slog.Any("err", err))
		os.Exit(1)
	}
	if *width > 0 {
		sc.Width = *width
	}
	if *height > 0 {
		sc.Height = *height
	}
	if *backend != "" {
		sc.Backend = *backend
	}
	if *frames > 0 {
		sc.Frames = *frames
	}
	if *churn >= 0 {
		sc.Churn = *churn
	}

	if err := run(log, sc, *output, *preview); err != nil {
		log.Error("atlasdemo failed", slog.Any("err", err))
		os.Exit(1)
	}
}

// newLogger logs text to a terminal and JSON otherwise.
func newLogger(verbose, forceJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if !forceJSON && term.IsTerminal(int(os.Stderr.Fd())) { //nolint:gosec // fd fits int
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

func loadScene(path string) (scene, error) {
	if path == "" {
		sc := defaultScene()
		return sc, sc.validate()
	}
	f, err := os.Open(path) //nolint:gosec // user-provided scene path
	if err != nil {
		return scene{}, err
	}
	defer f.Close()
	return decodeScene(f)
}

func run(log *slog.Logger, sc scene, output, preview string) error {
	sh := shaper.New()
	if err := sh.RegisterFont(goregular.TTF); err != nil {
		return err
	}
	if err := sh.RegisterFont(gomono.TTF, language.Greek); err != nil {
		return err
	}

	atlas, err := runatlas.New(sc.Width, sc.Height, runatlas.WithBorder(sc.Border))
	if err != nil {
		return err
	}
	surf, err := openSurface(log, sc)
	if err != nil {
		return err
	}
	defer surf.Close()

	r, err := textrender.New(atlas, sh.Shape, surf, textrender.WithMaxKeys(sc.MaxKeys))
	if err != nil {
		return err
	}
	defer r.Close()

	var quads []textrender.Quad
	for f := range sc.Frames {
		runs := make([]textrender.Run, 0, len(sc.Labels))
		for i, l := range sc.Labels {
			if sc.drawn(i, f) {
				runs = append(runs, textrender.Run{Text: l.Text, Size: l.Size})
			}
		}
		if err := r.Prefetch(runs); err != nil {
			log.Warn("prefetch failed", slog.Int("frame", f), slog.Any("err", err))
		}

		for i, l := range sc.Labels {
			if !sc.drawn(i, f) {
				continue
			}
			if err := r.Draw(l.Text, l.Size, l.X, l.Y); err != nil {
				log.Warn("draw failed", slog.String("text", l.Text), slog.Int("size", l.Size), slog.Any("err", err))
			}
		}
		if quads, err = r.Render(); err != nil {
			return err
		}

		st := atlas.Stats()
		log.Info("frame",
			slog.Int("frame", f),
			slog.Int("quads", len(quads)),
			slog.Int("entries", st.Entries),
			slog.Float64("utilization", st.Utilization),
			slog.Uint64("evictions", r.Stats().Evictions))
	}

	if err := atlas.Validate(); err != nil {
		return fmt.Errorf("atlas inconsistent after run: %w", err)
	}

	rs, ss := r.Stats(), atlas.Stats()
	fmt.Printf("frames=%d shaped=%d hits=%d evictions=%d retries=%d entries=%d utilization=%.1f%%\n",
		rs.Frames, rs.Shaped, rs.Hits, rs.Evictions, rs.Retries, ss.Entries, 100*ss.Utilization)

	img, ok := surf.(*surface.ImageSurface)
	if !ok {
		log.Info("surface is not host readable, skipping images")
		return nil
	}
	if err := img.SavePNG(output); err != nil {
		return err
	}
	log.Info("atlas saved", slog.String("path", output))

	if preview == "" {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, sc.ViewportWidth, sc.ViewportHeight))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	textrender.Compose(dst, img.Image(), quads, color.Black)
	if err := savePNG(preview, dst); err != nil {
		return err
	}
	log.Info("preview saved", slog.String("path", preview))
	return nil
}

// openSurface opens the scene's backend, or the best one that opens.
func openSurface(log *slog.Logger, sc scene) (surface.Surface, error) {
	opts := surface.Options{Width: sc.Width, Height: sc.Height, Label: "atlasdemo"}
	if sc.Backend != "" {
		return surface.OpenByName(sc.Backend, opts)
	}
	s, name, err := surface.Open(opts)
	if err != nil {
		return nil, err
	}
	log.Debug("surface opened", slog.String("backend", name))
	return s, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // user-provided output path
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
