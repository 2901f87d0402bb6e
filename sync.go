// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import (
	"image"
	"sync"
)

// SyncAtlas is an Atlas guarded by a single mutex, for callers that shape
// runs on worker goroutines. Every method holds the lock for its whole
// duration; Do runs several operations atomically.
type SyncAtlas struct {
	mu    sync.RWMutex
	atlas *Atlas
}

// NewSyncAtlas wraps a. The caller must not use a directly afterwards.
func NewSyncAtlas(a *Atlas) *SyncAtlas {
	return &SyncAtlas{atlas: a}
}

// Lookup is Atlas.Lookup under a read lock.
func (s *SyncAtlas) Lookup(key Key) Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atlas.Lookup(key)
}

// InsertNew is Atlas.InsertNew under the lock.
func (s *SyncAtlas) InsertNew(key Key, bmp Bitmap) (image.Rectangle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atlas.InsertNew(key, bmp)
}

// Remove is Atlas.Remove under the lock.
func (s *SyncAtlas) Remove(key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atlas.Remove(key)
}

// FlushPending is Atlas.FlushPending under the lock.
func (s *SyncAtlas) FlushPending() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atlas.FlushPending()
}

// Flush is Atlas.Flush under the lock. The writer is called with the lock
// held and must not call back into s.
func (s *SyncAtlas) Flush(w SurfaceWriter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atlas.Flush(w)
}

// Clear is Atlas.Clear under the lock.
func (s *SyncAtlas) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atlas.Clear()
}

// Len is Atlas.Len under a read lock.
func (s *SyncAtlas) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atlas.Len()
}

// Stats is Atlas.Stats under a read lock.
func (s *SyncAtlas) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atlas.Stats()
}

// Validate is Atlas.Validate under a read lock.
func (s *SyncAtlas) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atlas.Validate()
}

// Do runs f with exclusive access to the underlying atlas.
// f must not retain the atlas after returning.
func (s *SyncAtlas) Do(f func(a *Atlas) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f(s.atlas)
}
