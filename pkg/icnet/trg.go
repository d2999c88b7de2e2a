package icnet

import (
	"github.com/icnet/runtime/pkg/ops"
	"github.com/icnet/runtime/pkg/ptr"
)

// Trg is the target-port handle generated definitions build against:
// either a not-yet-materialized aux slot the caller doesn't own yet
// (TrgDir), or a pointer already in hand (TrgPtr). The Do* operations
// below constant-fold against a target that is already a Num or an
// eraser, and only allocate a node in the general case, so generated
// code pays for graph construction only when the shape is actually
// unknown.
type Trg struct {
	dir   ptr.Loc
	val   ptr.Ptr
	isDir bool
}

// TrgDir wraps an aux-port location this call doesn't yet own.
func TrgDir(l ptr.Loc) Trg { return Trg{dir: l, isDir: true} }

// TrgPtr wraps a pointer this call already owns.
func TrgPtr(p ptr.Ptr) Trg { return Trg{val: p} }

// Target reads the pointer a Trg currently names, without consuming it.
func (t Trg) Target(n *Net) ptr.Ptr {
	if t.isDir {
		return ptr.Ptr(n.slot(t.dir).Load())
	}
	return t.val
}

// FreeTrg releases a Trg that turned out not to be needed: a Dir gets
// half-freed, an owned Ptr needs nothing.
func (n *Net) FreeTrg(t Trg) {
	if t.isDir {
		n.halfFree(t.dir)
	}
}

// LinkTrgPtr links a Trg to an owned pointer, choosing the atomic or
// plain linker based on whether the Trg side is still unmaterialized.
func (n *Net) LinkTrgPtr(a Trg, b ptr.Ptr) {
	if a.isDir {
		n.halfAtomicLink(a.dir, b)
		return
	}
	n.link(a.val, b)
}

// LinkTrg links two Trgs to each other, picking whichever of link,
// half_atomic_link or atomic_link the pair's ownership calls for.
func (n *Net) LinkTrg(a, b Trg) {
	switch {
	case a.isDir && b.isDir:
		n.atomicLink(a.dir, b.dir)
	case a.isDir && !b.isDir:
		n.halfAtomicLink(a.dir, b.val)
	case !a.isDir && b.isDir:
		n.halfAtomicLink(b.dir, a.val)
	default:
		n.link(a.val, b.val)
	}
}

// DoCtr lowers "{lab x y}" against trg: if trg is already a same-labelled
// Ctr the two annihilate immediately (no allocation); a Num or eraser
// target is duplicated into both ports, as the Num/ERA x Ctr rules do;
// otherwise a fresh Ctr is allocated and linked in, and its two fresh aux
// ports are handed back as owned Var Trgs.
func (n *Net) DoCtr(trg Trg, lab ptr.Lab) (Trg, Trg) {
	p := trg.Target(n)
	if p.IsCtr(lab) {
		n.rwts.Anni++
		n.FreeTrg(trg)
		return TrgDir(p.P1()), TrgDir(p.P2())
	}
	if p.Tag() == ptr.Num || p == ptr.ERA {
		n.rwts.Comm++
		n.FreeTrg(trg)
		return TrgPtr(p), TrgPtr(p)
	}
	node := n.allocNode(ptr.Ctr, lab)
	n.LinkTrgPtr(trg, node)
	return TrgPtr(node.P1().Var()), TrgPtr(node.P2().Var())
}

// DoOp2Num lowers "<op x #b>": trg is the operand still unknown, b the
// already-known constant. A Num operand folds to op.apply(x, b) on the
// spot; ERA erases; otherwise an Op2 node is allocated holding #b, so
// the value arriving later at its principal goes through the ordinary
// Op2 rule and keeps the operand order.
func (n *Net) DoOp2Num(trg Trg, op ptr.Lab, b uint64) Trg {
	p := trg.Target(n)
	switch {
	case p.Tag() == ptr.Num:
		n.rwts.Oper += 2
		n.FreeTrg(trg)
		return TrgPtr(ptr.NewNum(ops.Apply(ops.Op(op), p.Num(), b)))
	case p == ptr.ERA:
		return TrgPtr(ptr.ERA)
	default:
		node := ptr.New(ptr.Op2, op, n.alloc())
		n.slot(node.P1()).Store(uint64(ptr.NewNum(b)))
		n.LinkTrgPtr(trg, node)
		return TrgPtr(node.P2().Var())
	}
}

// DoOp2 lowers "<op x y>": trg is the left operand, still unknown. A Num
// left operand becomes an Op1 holding it, ready to receive the right
// operand next; ERA erases both sides; otherwise a fresh Op2 is wired in.
func (n *Net) DoOp2(trg Trg, op ptr.Lab) (Trg, Trg) {
	p := trg.Target(n)
	switch {
	case p.Tag() == ptr.Num:
		n.rwts.Oper++
		n.FreeTrg(trg)
		node := ptr.New(ptr.Op1, op, n.alloc())
		n.slot(node.P1()).Store(uint64(p))
		return TrgPtr(node), TrgPtr(node.P2().Var())
	case p == ptr.ERA:
		return TrgPtr(ptr.ERA), TrgPtr(ptr.ERA)
	default:
		node := n.allocNode(ptr.Op2, op)
		n.LinkTrgPtr(trg, node)
		return TrgPtr(node.P1().Var()), TrgPtr(node.P2().Var())
	}
}

// DoOp1 lowers "<a op x>" where a is already known and trg is the
// remaining operand.
func (n *Net) DoOp1(trg Trg, op ptr.Lab, a uint64) Trg {
	p := trg.Target(n)
	switch {
	case p.Tag() == ptr.Num:
		n.rwts.Oper++
		n.FreeTrg(trg)
		return TrgPtr(ptr.NewNum(ops.Apply(ops.Op(op), a, p.Num())))
	case p == ptr.ERA:
		return TrgPtr(ptr.ERA)
	default:
		node := ptr.New(ptr.Op1, op, n.alloc())
		n.LinkTrgPtr(trg, node)
		n.slot(node.P1()).Store(uint64(ptr.NewNum(a)))
		return TrgPtr(node.P2().Var())
	}
}

// DoMat lowers "?<x y>": trg is the scrutinee, unknown. A known Num
// constant-folds directly into the matching branch shape; otherwise a
// fresh Mat node is allocated and its two aux ports handed back.
func (n *Net) DoMat(trg Trg) (Trg, Trg) {
	p := trg.Target(n)
	switch {
	case p.Tag() == ptr.Num:
		n.rwts.Oper++
		n.FreeTrg(trg)
		c1 := n.allocNode(ptr.Ctr, 0)
		if p.Num() == 0 {
			n.slot(c1.P2()).Store(uint64(ptr.ERA))
			return TrgPtr(c1.P1().Var()), TrgPtr(c1)
		}
		c2 := n.allocNode(ptr.Ctr, 0)
		n.slot(c1.P1()).Store(uint64(ptr.ERA))
		n.slot(c1.P2()).Store(uint64(c2))
		n.slot(c2.P1()).Store(uint64(ptr.NewNum(p.Num() - 1)))
		return TrgPtr(c2.P2().Var()), TrgPtr(c1)
	case p == ptr.ERA:
		return TrgPtr(ptr.ERA), TrgPtr(ptr.ERA)
	default:
		m := n.allocNode(ptr.Mat, 0)
		n.LinkTrgPtr(trg, m)
		return TrgPtr(m.P2().Var()), TrgPtr(m.P1().Var())
	}
}

// DoMatCon lowers the fused shape "?<(x y) out>", used when the source
// tree already shows the match's branch pair built from a literal Ctr. A
// Num or eraser scrutinee is resolved without allocating a Mat or that
// wrapper Ctr; in the general case both are allocated, with the Ctr stored
// straight into the Mat's first port.
func (n *Net) DoMatCon(trg, out Trg) (Trg, Trg) {
	p := trg.Target(n)
	switch {
	case p.Tag() == ptr.Num:
		n.rwts.Oper++
		n.FreeTrg(trg)
		if p.Num() == 0 {
			return out, TrgPtr(ptr.ERA)
		}
		c2 := n.allocNode(ptr.Ctr, 0)
		n.slot(c2.P1()).Store(uint64(ptr.NewNum(p.Num() - 1)))
		n.LinkTrgPtr(out, c2.P2().Var())
		return TrgPtr(ptr.ERA), TrgPtr(c2)
	case p == ptr.ERA:
		n.LinkTrgPtr(out, ptr.ERA)
		return TrgPtr(ptr.ERA), TrgPtr(ptr.ERA)
	default:
		m := n.allocNode(ptr.Mat, 0)
		c1 := n.allocNode(ptr.Ctr, 0)
		n.slot(m.P1()).Store(uint64(c1))
		n.LinkTrgPtr(out, m.P2().Var())
		n.LinkTrgPtr(trg, m)
		return TrgPtr(c1.P1().Var()), TrgPtr(c1.P2().Var())
	}
}

// DoMatConCon lowers the doubly-fused shape "?<(x (y z)) out>".
func (n *Net) DoMatConCon(trg, out Trg) (Trg, Trg, Trg) {
	p := trg.Target(n)
	switch {
	case p.Tag() == ptr.Num:
		n.rwts.Oper++
		n.FreeTrg(trg)
		if p.Num() == 0 {
			return out, TrgPtr(ptr.ERA), TrgPtr(ptr.ERA)
		}
		return TrgPtr(ptr.ERA), TrgPtr(ptr.NewNum(p.Num() - 1)), out
	case p == ptr.ERA:
		n.LinkTrgPtr(out, ptr.ERA)
		return TrgPtr(ptr.ERA), TrgPtr(ptr.ERA), TrgPtr(ptr.ERA)
	default:
		m := n.allocNode(ptr.Mat, 0)
		c1 := n.allocNode(ptr.Ctr, 0)
		c2 := n.allocNode(ptr.Ctr, 0)
		n.slot(m.P1()).Store(uint64(c1))
		n.slot(c1.P2()).Store(uint64(c2))
		n.LinkTrgPtr(out, m.P2().Var())
		n.LinkTrgPtr(trg, m)
		return TrgPtr(c1.P1().Var()), TrgPtr(c2.P1().Var()), TrgPtr(c2.P2().Var())
	}
}

// Make allocates a node of the given shape and links x, y into its aux
// ports in one step, for generated code that already knows both children.
func (n *Net) Make(tag ptr.Tag, lab ptr.Lab, x, y Trg) Trg {
	node := n.allocNode(tag, lab)
	n.LinkTrgPtr(x, node.P1().Var())
	n.LinkTrgPtr(y, node.P2().Var())
	return TrgPtr(node)
}
