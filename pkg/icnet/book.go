package icnet

import (
	"fmt"
	"sync"

	"github.com/icnet/runtime/pkg/ptr"
)

// NativeFunc is a definition implemented directly in Go rather than as a
// closed net: it receives the worker reducing the call and the pointer
// that met the Ref.
type NativeFunc func(net *Net, other ptr.Ptr)

// NodeDef is one cell of a closed net literal, addressed by its position
// in DefNet.Nodes. Pointers inside P1/P2 that reference other nodes of the
// same definition use def-local addressing: Loc().Cell() is the index
// into Nodes, not a live heap cell, until instantiate() adjusts it.
type NodeDef struct {
	P1, P2 ptr.Ptr
}

// RedexDef is a redex baked directly into a definition, instantiated
// alongside its nodes every time the definition is called.
type RedexDef struct {
	A, B ptr.Ptr
}

// DefNet is a closed net literal: everything needed to instantiate one
// call of a non-native definition.
type DefNet struct {
	Root    ptr.Ptr
	Redexes []RedexDef
	Nodes   []NodeDef
}

// Def is one entry of the Book: a label plus either a native function or a
// closed net literal.
type Def struct {
	Name   string
	Lab    ptr.Lab
	Native NativeFunc
	Net    *DefNet
}

// Host is the bijective name <-> definition table: Define hands back a
// Ref pointer naming the definition, Lookup finds a definition by name,
// and Resolve/NameOf map a Ref's location back to the definition and its
// name.
type Host struct {
	mu      sync.RWMutex
	byName  map[string]*Def
	byIndex []*Def // index 0 reserved, matching the heap's reserved nil cell
}

// NewHost returns an empty Host.
func NewHost() *Host {
	return &Host{byName: make(map[string]*Def), byIndex: []*Def{nil}}
}

// Define registers a definition and returns the Ref pointer that names it.
func (h *Host) Define(def *Def) ptr.Ptr {
	h.mu.Lock()
	defer h.mu.Unlock()
	idx := uint64(len(h.byIndex))
	h.byIndex = append(h.byIndex, def)
	h.byName[def.Name] = def
	return ptr.NewRef(ptr.NewLoc(idx, 0), def.Lab)
}

// Lookup finds a definition by name.
func (h *Host) Lookup(name string) (*Def, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	d, ok := h.byName[name]
	return d, ok
}

// Resolve finds the definition a Ref's loc addresses. Panics on an
// unknown index: a Ref pointing nowhere is a malformed net, not something
// a caller can usefully recover from.
func (h *Host) Resolve(loc ptr.Loc) *Def {
	h.mu.RLock()
	defer h.mu.RUnlock()
	idx := loc.Cell()
	if idx == 0 || idx >= uint64(len(h.byIndex)) {
		panic(fmt.Sprintf("icnet: dereference of unknown definition at index %d", idx))
	}
	return h.byIndex[idx]
}

// NameOf is the inverse of Define/Resolve: it returns the human name of
// the definition a Ref's loc addresses, instead of a bare index.
func (h *Host) NameOf(loc ptr.Loc) (string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	idx := loc.Cell()
	if idx == 0 || idx >= uint64(len(h.byIndex)) {
		return "", false
	}
	d := h.byIndex[idx]
	if d == nil {
		return "", false
	}
	return d.Name, true
}
