// Package icnet implements components B through G of the runtime: the
// arena heap and allocator, the lock-free linker, the interaction rules,
// dereference, the per-worker reducer, and the parallel normaliser.
package icnet

import (
	"sync/atomic"

	"github.com/icnet/runtime/pkg/ptr"
)

// cell is one arena cell: two atomically addressable aux-port slots.
// Its own principal identity is never stored anywhere; a pointer carries
// its own tag and label, so the cell only needs to remember what its two
// aux ports currently point at.
type cell struct {
	p1 atomic.Uint64
	p2 atomic.Uint64
}

// Heap is the shared arena every worker's Net reads and writes through.
// Cell 0 is reserved and never allocated: it is the universal "nil" used
// both by the free-list terminator and by ERA's own address, matching the
// convention that a Ref or Loc pointing at cell 0 means "nothing here."
type Heap struct {
	cells []cell
}

// NewHeap allocates an arena of size cells plus the reserved nil cell.
func NewHeap(size uint64) *Heap {
	return &Heap{cells: make([]cell, size+1)}
}

func (h *Heap) slot(loc ptr.Loc) *atomic.Uint64 {
	c := &h.cells[loc.Cell()]
	if loc.Port() == 0 {
		return &c.p1
	}
	return &c.p2
}

// Len returns the number of allocatable cells (excluding the reserved nil
// cell at index 0).
func (h *Heap) Len() uint64 { return uint64(len(h.cells)) - 1 }
