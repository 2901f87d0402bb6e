// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"errors"
	"image"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Border != 1 || cfg.RowAlign != 4 || cfg.RowSlack != 2 {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "Width"},
		{"huge width", func(c *Config) { c.Width = MaxDimension + 1 }, "Width"},
		{"negative height", func(c *Config) { c.Height = -4 }, "Height"},
		{"huge height", func(c *Config) { c.Height = MaxDimension + 1 }, "Height"},
		{"negative border", func(c *Config) { c.Border = -1 }, "Border"},
		{"border fills surface", func(c *Config) { c.Width, c.Border = 8, 4 }, "Border"},
		{"zero row align", func(c *Config) { c.RowAlign = 0 }, "RowAlign"},
		{"negative slack", func(c *Config) { c.RowSlack = -1 }, "RowSlack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("err = %v, want *ConfigError", err)
			}
			if ce.Field != tt.field {
				t.Errorf("Field = %q, want %q", ce.Field, tt.field)
			}
		})
	}
}

func TestNew_Options(t *testing.T) {
	a, err := New(128, 64, WithBorder(2), WithRowAlign(8), WithRowSlack(0))
	if err != nil {
		t.Fatal(err)
	}
	cfg := a.Config()
	if cfg.Width != 128 || cfg.Height != 64 || cfg.Border != 2 || cfg.RowAlign != 8 || cfg.RowSlack != 0 {
		t.Errorf("Config = %+v", cfg)
	}

	rect, err := a.InsertNew(Key{"opt", 10}, NewBitmap(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	e := a.Lookup(Key{"opt", 10})
	if e.Slot.Min != rect.Min.Sub(image.Pt(2, 2)) {
		t.Errorf("slot %v does not carry a 2px border around %v", e.Slot, rect)
	}
	if a.Stats().Rows != 2 {
		t.Errorf("Rows = %d, want a split row", a.Stats().Rows)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(0, 10); err == nil {
		t.Error("New(0, 10) succeeded")
	}
	if _, err := NewWithConfig(Config{Width: 10, Height: 10}); err == nil {
		t.Error("zero RowAlign accepted")
	}
}
