package icnet

import (
	"sync/atomic"

	"github.com/icnet/runtime/pkg/ptr"
)

// Event is one recorded interaction: the tag pair involved, which worker
// handled it, and at what tick.
type Event struct {
	Worker int
	Tick   int
	ATag   ptr.Tag
	BTag   ptr.Tag
	ALabel ptr.Lab
	BLabel ptr.Lab
}

// Trace is a fixed-capacity ring buffer of Events, written with a single
// atomic index bump so it can be shared across workers without a lock.
// It exists purely as an external diagnostic collaborator: nothing in the
// reduction path ever reads it back.
type Trace struct {
	events []Event
	next   atomic.Uint64
}

// NewTrace allocates a ring of the given capacity.
func NewTrace(capacity int) *Trace {
	return &Trace{events: make([]Event, capacity)}
}

// Record appends one event, overwriting the oldest once the ring wraps.
func (t *Trace) Record(worker, tick int, a, b ptr.Ptr) {
	i := t.next.Add(1) - 1
	t.events[i%uint64(len(t.events))] = Event{
		Worker: worker,
		Tick:   tick,
		ATag:   a.Tag(),
		BTag:   b.Tag(),
		ALabel: a.Label(),
		BLabel: b.Label(),
	}
}

// Snapshot returns the events recorded so far, oldest first, capped at the
// ring's capacity.
func (t *Trace) Snapshot() []Event {
	total := t.next.Load()
	cap64 := uint64(len(t.events))
	if total < cap64 {
		out := make([]Event, total)
		copy(out, t.events[:total])
		return out
	}
	out := make([]Event, cap64)
	start := total % cap64
	copy(out, t.events[start:])
	copy(out[cap64-start:], t.events[:start])
	return out
}
