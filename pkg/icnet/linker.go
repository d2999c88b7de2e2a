package icnet

import "github.com/icnet/runtime/pkg/ptr"

// link wires two owned pointers together. If both are principal, the pair
// becomes a redex (or, when both are nilary, annihilates on the spot — no
// redex is worth scheduling for two values that can never rewrite each
// other into anything but erasure). Otherwise each side that is itself an
// unresolved Var gets the other side written into its slot.
func (n *Net) link(a, b ptr.Ptr) {
	if a.IsPrincipal() && b.IsPrincipal() {
		if a.IsNilary() && b.IsNilary() {
			n.rwts.Eras++
			return
		}
		n.pushRedex(a, b)
		return
	}
	n.linker(a, b)
	n.linker(b, a)
}

func (n *Net) linker(a, b ptr.Ptr) {
	if a.Tag() != ptr.Var {
		return
	}
	n.slot(a.Loc()).Store(uint64(b))
}

// halfAtomicLink links an owned pointer bPtr to whatever is currently
// sitting at the aux slot aDir, which this call consumes.
func (n *Net) halfAtomicLink(aDir ptr.Loc, bPtr ptr.Ptr) {
	aPtr := n.take(aDir)
	if aPtr.IsPrincipal() && bPtr.IsPrincipal() {
		n.halfFree(aDir)
		n.pushRedex(aPtr, bPtr)
		return
	}
	n.atomicLinker(aPtr, aDir, bPtr)
	n.linker(bPtr, aPtr)
}

// atomicLink links whatever is sitting at two aux slots, consuming both.
func (n *Net) atomicLink(aDir, bDir ptr.Loc) {
	aPtr := n.take(aDir)
	bPtr := n.take(bDir)
	if aPtr.IsPrincipal() && bPtr.IsPrincipal() {
		n.halfFree(aDir)
		n.halfFree(bDir)
		n.pushRedex(aPtr, bPtr)
		return
	}
	n.atomicLinker(aPtr, aDir, bPtr)
	n.atomicLinker(bPtr, bDir, aPtr)
}

// atomicLinker installs bPtr wherever aPtr (taken from aDir) actually
// points, chasing redirection trails left by threads that lost a race.
func (n *Net) atomicLinker(aPtr ptr.Ptr, aDir ptr.Loc, bPtr ptr.Ptr) {
	if aPtr.Tag() != ptr.Var {
		n.halfFree(aDir)
		return
	}
	target := aPtr.Loc()
	expected := ptr.New(ptr.Var, 0, aDir)
	if n.slot(target).CompareAndSwap(uint64(expected), uint64(bPtr)) {
		n.halfFree(aDir)
		return
	}
	if bPtr.Tag() == ptr.Var {
		n.slot(aDir).Store(uint64(bPtr.Redirect()))
		return
	}
	n.slot(aDir).Store(uint64(bPtr))
	n.atomicLinkerPri(aPtr, aDir, bPtr)
}

// atomicLinkerPri walks a Red/Var chain from aPtr looking for a slot it can
// finally CAS bPtr into. If the walk instead reaches a principal pointer,
// two threads have converged on the same wire and resolveCollision breaks
// the tie.
func (n *Net) atomicLinkerPri(aPtr ptr.Ptr, aDir ptr.Loc, bPtr ptr.Ptr) {
	walk := aPtr
	for {
		loc := walk.Loc()
		v := ptr.Ptr(n.slot(loc).Load())
		if v == ptr.LOCK {
			continue
		}
		switch v.Tag() {
		case ptr.Red:
			n.halfFree(loc)
			walk = v.Unredirect()
		case ptr.Var:
			if n.slot(loc).CompareAndSwap(uint64(v), uint64(bPtr)) {
				n.halfFree(aDir)
				return
			}
		default:
			n.resolveCollision(aDir, loc)
			return
		}
	}
}

// resolveCollision breaks a tie when two threads' walks converge on the
// same wire, using a deadlock-free address-ordered rendezvous: both sides
// claim the lower location with GONE first. Whoever gets a real pointer
// back is the "first" thread; it claims the higher location too and pushes
// the redex made of the two swapped-out principals. The "second" thread
// (whose lower swap returns GONE) frees the lower, waits for the higher to
// be claimed, and frees it too.
func (n *Net) resolveCollision(aDir, bDir ptr.Loc) {
	lo, hi := aDir, bDir
	if hi < lo {
		lo, hi = hi, lo
	}
	x := ptr.Ptr(n.slot(lo).Swap(uint64(ptr.GONE)))
	if x != ptr.GONE {
		y := ptr.Ptr(n.slot(hi).Swap(uint64(ptr.GONE)))
		n.pushRedex(x, y)
		return
	}
	n.halfFree(lo)
	for !n.slot(hi).CompareAndSwap(uint64(ptr.GONE), uint64(ptr.LOCK)) {
	}
	n.halfFree(hi)
}
