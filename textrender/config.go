// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package textrender

// Config holds renderer configuration.
type Config struct {
	// MaxKeys bounds the recency list. When a new key pushes it past the
	// limit, the least recently drawn key is removed from the atlas.
	// It should exceed the number of distinct strings drawn per frame.
	// Default: 4096
	MaxKeys int

	// FrameLifetime removes keys not drawn for this many frames at the end
	// of each Render. Zero keeps keys until space runs out.
	// Default: 0
	FrameLifetime int

	// Workers is the number of goroutines Prefetch shapes on.
	// Zero uses GOMAXPROCS.
	// Default: 0
	Workers int
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		MaxKeys: 4096,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.MaxKeys < 1 {
		return &ConfigError{Field: "MaxKeys", Reason: "must be positive"}
	}
	if c.FrameLifetime < 0 {
		return &ConfigError{Field: "FrameLifetime", Reason: "must be non-negative"}
	}
	if c.Workers < 0 {
		return &ConfigError{Field: "Workers", Reason: "must be non-negative"}
	}
	return nil
}

// Option configures a Renderer.
type Option func(*Config)

// WithMaxKeys sets the recency list capacity.
func WithMaxKeys(n int) Option {
	return func(c *Config) {
		c.MaxKeys = n
	}
}

// WithFrameLifetime sets how many frames a key may go undrawn before it is
// removed.
func WithFrameLifetime(frames int) Option {
	return func(c *Config) {
		c.FrameLifetime = frames
	}
}

// WithWorkers sets the number of shaping goroutines used by Prefetch.
func WithWorkers(n int) Option {
	return func(c *Config) {
		c.Workers = n
	}
}
