package icnet

import (
	"fmt"
	"sync/atomic"

	"github.com/icnet/runtime/pkg/ptr"
)

// defScratchCap bounds how many nodes a single dereferenced definition may
// contain.
const defScratchCap = 16384

// Redex is an active pair: two principal pointers waiting to interact.
type Redex struct {
	A, B ptr.Ptr
}

// Counters tallies rewrites by category: annihilation, commutation,
// erasure, dereference, operator evaluation.
type Counters struct {
	Anni uint64 // annihilation
	Comm uint64 // commutation
	Eras uint64 // erasure
	Dref uint64 // dereference
	Oper uint64 // operator evaluation
}

// Total returns the sum of every counter, the runtime's "rewrite count."
func (c Counters) Total() uint64 { return c.Anni + c.Comm + c.Eras + c.Dref + c.Oper }

// Net is one worker's reducer state: its slice of the shared arena, its
// local redex bag, and its rewrite counters. A Net is never shared between
// goroutines; only the underlying Heap and Host are.
type Net struct {
	id   int
	heap *Heap
	host *Host
	pool *Pool // nil for a standalone, single-threaded Net

	lo, hi uint64 // [lo, hi): this worker's bump-allocation range
	next   uint64
	head   atomic.Uint64 // free-list head, a ptr.Ptr; cell 0 means empty

	rdex []Redex
	rwts Counters
	tick int
	root ptr.Loc

	scratch []uint64

	trace *Trace
}

// NewNet builds a single, self-contained worker over its own heap slice,
// suitable for sequential use via Normal/ReduceLimit without a Pool.
func NewNet(heap *Heap, host *Host) *Net {
	return newWorker(0, heap, host, nil, 1, heap.Len()+1)
}

func newWorker(id int, heap *Heap, host *Host, pool *Pool, lo, hi uint64) *Net {
	return &Net{
		id:      id,
		heap:    heap,
		host:    host,
		pool:    pool,
		lo:      lo,
		hi:      hi,
		next:    lo,
		scratch: make([]uint64, defScratchCap),
	}
}

// Stats returns a snapshot of this worker's rewrite counters.
func (n *Net) Stats() Counters { return n.rwts }

// TraceSnapshot returns the events recorded on this worker's trace ring, or
// nil if tracing was never enabled.
func (n *Net) TraceSnapshot() []Event {
	if n.trace == nil {
		return nil
	}
	return n.trace.Snapshot()
}

// EnableTrace attaches a ring-buffer event log of capacity cap to this
// worker. Pass 0 to disable (the default).
func (n *Net) EnableTrace(cap int) {
	if cap <= 0 {
		n.trace = nil
		return
	}
	n.trace = NewTrace(cap)
}

func (n *Net) slot(loc ptr.Loc) *atomic.Uint64 { return n.heap.slot(loc) }

// alloc claims one fresh cell, preferring the free list over the bump
// cursor. Only this Net's own goroutine ever pops its own free list.
func (n *Net) alloc() ptr.Loc {
	if h := ptr.Ptr(n.head.Load()); h.Loc().Cell() != 0 {
		loc := h.Loc()
		next := ptr.Ptr(n.slot(loc).Load())
		n.head.Store(uint64(next))
		return loc
	}
	if n.next >= n.hi {
		panic(fmt.Sprintf("icnet: heap exhausted: worker %d arena slice [%d,%d) overrun", n.id, n.lo, n.hi))
	}
	idx := n.next
	n.next++
	return ptr.NewLoc(idx, 0)
}

// safeAlloc claims a cell and locks both its aux ports, for code (like
// instantiate) that must allocate a whole batch of cells before any of
// them are safe to read.
func (n *Net) safeAlloc() ptr.Loc {
	loc := n.alloc()
	p1 := ptr.NewLoc(loc.Cell(), 0)
	p2 := ptr.NewLoc(loc.Cell(), 1)
	n.slot(p1).Store(uint64(ptr.LOCK))
	n.slot(p2).Store(uint64(ptr.LOCK))
	return loc
}

// allocNode allocates a cell and returns the principal pointer naming it.
func (n *Net) allocNode(tag ptr.Tag, lab ptr.Lab) ptr.Ptr {
	return ptr.New(tag, lab, n.alloc())
}

// halfFree writes NULL at loc; if the cell's other port is also NULL, the
// whole cell is dead and gets pushed onto the free list via a single CAS
// on its own port-1 slot. On CAS failure the cell is simply leaked:
// another thread won the race, and reclaiming less is always safe.
func (n *Net) halfFree(loc ptr.Loc) {
	n.slot(loc).Store(uint64(ptr.NULL))
	sib := loc.Other()
	if ptr.Ptr(n.slot(sib).Load()) != ptr.NULL {
		return
	}
	port1 := ptr.NewLoc(loc.Cell(), 0)
	oldHead := ptr.Ptr(n.head.Load())
	next := ptr.New(ptr.Red, 1, oldHead.Loc())
	if n.slot(port1).CompareAndSwap(uint64(ptr.NULL), uint64(next)) {
		n.head.Store(uint64(ptr.New(ptr.Red, 1, port1)))
	}
}

// weakHalfFree writes NULL at loc without attempting to reclaim the cell,
// for ports known to already be otherwise spoken for (e.g. the stored
// operand slot of an Op1 cell, whose sibling is still live).
func (n *Net) weakHalfFree(loc ptr.Loc) {
	n.slot(loc).Store(uint64(ptr.NULL))
}

func (n *Net) pushRedex(a, b ptr.Ptr) {
	n.rdex = append(n.rdex, Redex{A: a, B: b})
}

// Alloc, StorePort, LoadPort and PushRedex are the primitives a native
// definition builds its subgraph from, the same way instantiate builds a
// DefNet's literal nodes.
func (n *Net) Alloc() ptr.Loc { return n.alloc() }

func (n *Net) StorePort(loc ptr.Loc, p ptr.Ptr) { n.slot(loc).Store(uint64(p)) }

func (n *Net) LoadPort(loc ptr.Loc) ptr.Ptr { return ptr.Ptr(n.slot(loc).Load()) }

func (n *Net) PushRedex(a, b ptr.Ptr) { n.pushRedex(a, b) }

// take atomically swaps LOCK into dir and returns whatever was there,
// retrying past a transient LOCK left by a concurrent operation.
func (n *Net) take(dir ptr.Loc) ptr.Ptr {
	for {
		v := ptr.Ptr(n.slot(dir).Swap(uint64(ptr.LOCK)))
		if v != ptr.LOCK {
			return v
		}
	}
}

// Normal runs this Net to normal form sequentially: no barriers, no
// splitting, a single worker doing the full reduce/expand loop by itself.
func (n *Net) Normal() {
	for {
		n.drain()
		n.expand()
		if len(n.rdex) == 0 {
			return
		}
	}
}

// ReduceLimit drains at most max redexes and returns how many were
// processed, without ever calling expand. Used to bound a run that might
// not terminate.
func (n *Net) ReduceLimit(max uint64) uint64 {
	var done uint64
	for done < max && len(n.rdex) > 0 {
		rx := n.rdex[len(n.rdex)-1]
		n.rdex = n.rdex[:len(n.rdex)-1]
		n.interact(rx.A, rx.B)
		done++
	}
	return done
}

func (n *Net) drain() {
	for len(n.rdex) > 0 {
		rx := n.rdex[len(n.rdex)-1]
		n.rdex = n.rdex[:len(n.rdex)-1]
		n.interact(rx.A, rx.B)
	}
}

// Link wires two owned pointers through the linker, for callers that boot
// a net by connecting a starting graph themselves.
func (n *Net) Link(a, b ptr.Ptr) { n.link(a, b) }

// SetRoot overrides where expand starts its descent.
func (n *Net) SetRoot(loc ptr.Loc) { n.root = loc }

// RootLoc is the net's fixed boot location. Cell 0 is reserved by the
// allocator (it is never handed out by alloc), which leaves it free to
// double as the one slot every worker agrees to call "the root" without
// needing a separate allocation.
var RootLoc = ptr.NewLoc(0, 0)

// Boot stores a reference to the entry definition into the root. Call
// Normal or a Pool's ParallelNormal afterwards to reduce it.
func (n *Net) Boot(entry ptr.Ptr) {
	n.root = RootLoc
	n.slot(RootLoc).Store(uint64(entry))
}

// log2Tids returns how many of the worker id's low bits expand should
// consult before it has descended into a subtree private to this worker.
// A standalone Net (nil pool) never shares the graph with anyone else, so
// it always explores both children.
func (n *Net) log2Tids() int {
	if n.pool == nil {
		return 0
	}
	return n.pool.log2
}

// expand walks the graph from the root following only Ctr spines, forcing
// any Ref it meets (other than ERA) into a live subgraph. Each internal
// node is visited by at most one worker per branch: a worker below the
// fan-out depth picks its child by one bit of its own id, so that by depth
// log2(tids) every worker is alone in its own private subtree and is free
// to explore both children without racing anyone else for them.
func (n *Net) expand() {
	n.expandAt(n.root, 0)
}

func (n *Net) expandAt(loc ptr.Loc, depth int) {
	val := ptr.Ptr(n.slot(loc).Load())
	switch val.Tag() {
	case ptr.Ctr:
		if lim := n.log2Tids(); depth < lim {
			bit := (n.id >> uint(lim-1-depth)) & 1
			if bit == 0 {
				n.expandAt(val.P1(), depth+1)
			} else {
				n.expandAt(val.P2(), depth+1)
			}
			return
		}
		n.expandAt(val.P1(), depth+1)
		n.expandAt(val.P2(), depth+1)

	case ptr.Ref:
		if val == ptr.ERA {
			return
		}
		got := ptr.Ptr(n.slot(loc).Swap(uint64(ptr.LOCK)))
		if got.Tag() == ptr.Ref && got != ptr.ERA {
			n.rwts.Dref++
			n.call(got, loc.Var())
			return
		}
		// Another worker already claimed or rewrote this slot; put back
		// what we actually observed unless it was itself a transient lock.
		if got != ptr.LOCK {
			n.slot(loc).Store(uint64(got))
		}
	}
}
