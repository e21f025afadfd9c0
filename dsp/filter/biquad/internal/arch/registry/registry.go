// Package registry holds the Direct Form I block kernels available to the
// biquad package and picks one for the running CPU.
package registry

import (
	"sync"

	"github.com/cwbudde/algo-eq/internal/cpu"
)

// Coefficients are biquad transfer coefficients (a0 normalized to 1).
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// State is the Direct Form I history: the two previous inputs and outputs.
type State struct {
	X1, X2 float64
	Y1, Y2 float64
}

// ProcessBlockFn filters buf in place with one section and returns the
// updated history. Kernels must produce the same values as a per-sample
// loop over y = b0*x + b1*x1 + b2*x2 - a1*y1 - a2*y2.
type ProcessBlockFn func(c Coefficients, st State, buf []float64) State

// OpEntry is one registered kernel.
type OpEntry struct {
	Name         string
	SIMDLevel    cpu.SIMDLevel
	Priority     int
	ProcessBlock ProcessBlockFn
}

// OpRegistry stores available kernels.
type OpRegistry struct {
	mu      sync.RWMutex
	entries []OpEntry
	sorted  bool
}

// Global is the registry the biquad package dispatches through.
var Global = &OpRegistry{}

// Register adds a kernel.
func (r *OpRegistry) Register(entry OpEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	r.sorted = false
}

// Lookup returns the highest-priority kernel supported by features, or nil.
func (r *OpRegistry) Lookup(features cpu.Features) *OpEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sorted {
		r.sortByPriority()
		r.sorted = true
	}

	for i := range r.entries {
		entry := &r.entries[i]
		if cpu.Supports(features, entry.SIMDLevel) {
			return entry
		}
	}

	return nil
}

// insertion sort, descending priority; the list never holds more than a
// handful of entries.
func (r *OpRegistry) sortByPriority() {
	for i := 1; i < len(r.entries); i++ {
		key := r.entries[i]
		j := i - 1
		for j >= 0 && r.entries[j].Priority < key.Priority {
			r.entries[j+1] = r.entries[j]
			j--
		}
		r.entries[j+1] = key
	}
}

// ListEntries returns a copy of the registered kernels.
func (r *OpRegistry) ListEntries() []OpEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]OpEntry, len(r.entries))
	copy(entries, r.entries)

	return entries
}

// Reset clears all entries. Intended for tests.
func (r *OpRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	r.sorted = false
}
