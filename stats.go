// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package runatlas

import "sync/atomic"

// counters holds the running totals behind Stats.
type counters struct {
	hits       atomic.Uint64
	misses     atomic.Uint64
	inserts    atomic.Uint64
	removes    atomic.Uint64
	outOfSpace atomic.Uint64
	flushed    atomic.Uint64
}

// Stats is a snapshot of atlas activity and shape.
type Stats struct {
	// Hits counts lookups that found a pending or committed entry.
	Hits uint64

	// Misses counts lookups that found nothing.
	Misses uint64

	// Inserts counts successful InsertNew calls.
	Inserts uint64

	// Removes counts successful Remove calls.
	Removes uint64

	// OutOfSpace counts InsertNew calls that failed with ErrOutOfSpace.
	OutOfSpace uint64

	// Flushed counts entries committed by FlushPending or Flush.
	Flushed uint64

	Entries int
	Pending int

	Rows      int
	Items     int
	FreeItems int

	// Utilization is the reserved fraction of the surface.
	Utilization float64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Stats returns counters and the current partition shape.
func (a *Atlas) Stats() Stats {
	g := a.graph.Stats()
	return Stats{
		Hits:        a.stats.hits.Load(),
		Misses:      a.stats.misses.Load(),
		Inserts:     a.stats.inserts.Load(),
		Removes:     a.stats.removes.Load(),
		OutOfSpace:  a.stats.outOfSpace.Load(),
		Flushed:     a.stats.flushed.Load(),
		Entries:     a.Len(),
		Pending:     a.PendingLen(),
		Rows:        g.Rows,
		Items:       g.Items,
		FreeItems:   g.FreeItems,
		Utilization: a.Utilization(),
	}
}

// ResetStats zeroes the activity counters.
func (a *Atlas) ResetStats() {
	a.stats.hits.Store(0)
	a.stats.misses.Store(0)
	a.stats.inserts.Store(0)
	a.stats.removes.Store(0)
	a.stats.outOfSpace.Store(0)
	a.stats.flushed.Store(0)
}
