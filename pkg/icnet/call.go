package icnet

import (
	"fmt"

	"github.com/icnet/runtime/pkg/ptr"
)

// call dereferences refPtr against other: a native definition runs
// directly, a closed-net definition is instantiated into fresh cells and
// wired to other.
func (n *Net) call(refPtr, other ptr.Ptr) {
	def := n.host.Resolve(refPtr.Loc())
	if def.Native != nil {
		def.Native(n, other)
		return
	}
	n.instantiate(def.Net, other)
}

// instantiate copies a closed net literal into fresh cells, adjusting
// every def-local address it contains to the freshly allocated ones, then
// links the literal's root to other.
func (n *Net) instantiate(dn *DefNet, other ptr.Ptr) {
	if len(dn.Nodes) > len(n.scratch) {
		panic(fmt.Sprintf("icnet: definition has %d nodes, exceeds instantiation scratch capacity %d", len(dn.Nodes), len(n.scratch)))
	}
	scratch := n.scratch[:len(dn.Nodes)]
	for i := range dn.Nodes {
		scratch[i] = n.safeAlloc().Cell()
	}

	adjust := func(p ptr.Ptr) ptr.Ptr {
		if p.IsNilary() {
			return p
		}
		cell := scratch[p.Loc().Cell()]
		return ptr.New(p.Tag(), p.Label(), ptr.NewLoc(cell, p.Loc().Port()))
	}

	for i, nd := range dn.Nodes {
		n.slot(ptr.NewLoc(scratch[i], 0)).Store(uint64(adjust(nd.P1)))
		n.slot(ptr.NewLoc(scratch[i], 1)).Store(uint64(adjust(nd.P2)))
	}
	for _, rx := range dn.Redexes {
		n.pushRedex(adjust(rx.A), adjust(rx.B))
	}
	n.link(adjust(dn.Root), other)
}
