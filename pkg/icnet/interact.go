package icnet

import (
	"fmt"

	"github.com/icnet/runtime/pkg/ops"
	"github.com/icnet/runtime/pkg/ptr"
)

func isNodeTag(t ptr.Tag) bool {
	return t == ptr.Ctr || t == ptr.Op1 || t == ptr.Op2 || t == ptr.Mat
}

// interact dispatches one active pair to the matching rewrite rule. Both a
// and b must already be principal pointers; anything else reaching here is
// a malformed net and a programming error, not a recoverable condition.
func (n *Net) interact(a, b ptr.Ptr) {
	if n.trace != nil {
		n.trace.Record(n.id, n.tick, a, b)
	}

	switch {
	case !a.IsPrincipal() || !b.IsPrincipal():
		panic(fmt.Sprintf("icnet: ill-formed redex: non-principal pointer in active pair (%v, %v)", a.Tag(), b.Tag()))

	case a.IsNilary() && b.IsNilary():
		n.rwts.Eras++

	case a.Tag() == ptr.Ctr && b.Tag() == ptr.Ctr && a.Label() == b.Label():
		n.rwts.Anni++
		n.anni2(a, b)

	case (a.Tag() == ptr.Op2 && b.Tag() == ptr.Op2) || (a.Tag() == ptr.Mat && b.Tag() == ptr.Mat):
		n.rwts.Anni++
		n.anni2(a, b)

	case a.Tag() == ptr.Op1 && b.Tag() == ptr.Op1:
		n.rwts.Anni++
		n.anni1(a, b)

	case a.Tag() == ptr.Ctr && b.Tag() == ptr.Ctr:
		n.rwts.Comm++
		n.comm22(a, b)

	case (a.Tag() == ptr.Ctr && b.Tag() == ptr.Op2) || (a.Tag() == ptr.Op2 && b.Tag() == ptr.Ctr):
		n.rwts.Comm++
		n.comm22(a, b)

	case a.Tag() == ptr.Ctr && b.Tag() == ptr.Mat && a.Label() != 0:
		n.rwts.Comm++
		n.comm22(a, b)
	case b.Tag() == ptr.Ctr && a.Tag() == ptr.Mat && b.Label() != 0:
		n.rwts.Comm++
		n.comm22(a, b)

	case (a.Tag() == ptr.Op1 && b.Tag() == ptr.Ctr) || (a.Tag() == ptr.Ctr && b.Tag() == ptr.Op1):
		n.rwts.Comm++
		n.comm12(a, b)

	case a == ptr.ERA && isNodeTag(b.Tag()):
		n.rwts.Comm++
		n.comm02(a, b)
	case b == ptr.ERA && isNodeTag(a.Tag()):
		n.rwts.Comm++
		n.comm02(b, a)

	case a.Tag() == ptr.Ref && b.Tag() == ptr.Ctr:
		if a.Label() >= b.Label() {
			n.rwts.Comm++
			n.comm02(a, b)
		} else {
			n.rwts.Dref++
			n.call(a, b)
		}
	case b.Tag() == ptr.Ref && a.Tag() == ptr.Ctr:
		if b.Label() >= a.Label() {
			n.rwts.Comm++
			n.comm02(b, a)
		} else {
			n.rwts.Dref++
			n.call(b, a)
		}

	case a.Tag() == ptr.Num && b.Tag() == ptr.Ctr:
		n.rwts.Comm++
		n.comm02(a, b)
	case b.Tag() == ptr.Num && a.Tag() == ptr.Ctr:
		n.rwts.Comm++
		n.comm02(b, a)

	case a.Tag() == ptr.Ref:
		n.rwts.Dref++
		n.call(a, b)
	case b.Tag() == ptr.Ref:
		n.rwts.Dref++
		n.call(b, a)

	case a.Tag() == ptr.Op2 && b.Tag() == ptr.Num:
		n.rwts.Oper++
		n.op2Num(a, b)
	case b.Tag() == ptr.Op2 && a.Tag() == ptr.Num:
		n.rwts.Oper++
		n.op2Num(b, a)

	case a.Tag() == ptr.Op1 && b.Tag() == ptr.Num:
		n.rwts.Oper++
		n.op1Num(a, b)
	case b.Tag() == ptr.Op1 && a.Tag() == ptr.Num:
		n.rwts.Oper++
		n.op1Num(b, a)

	case a.Tag() == ptr.Mat && b.Tag() == ptr.Num:
		n.rwts.Oper++
		n.matNum(a, b)
	case b.Tag() == ptr.Mat && a.Tag() == ptr.Num:
		n.rwts.Oper++
		n.matNum(b, a)

	default:
		panic(fmt.Sprintf("icnet: ill-formed net: unsupported interaction %v x %v", a.Tag(), b.Tag()))
	}
}

// anni2 annihilates two same-shaped binary nodes: their aux ports cross
// directly to each other and both cells die.
func (n *Net) anni2(a, b ptr.Ptr) {
	n.atomicLink(a.P1(), b.P1())
	n.atomicLink(a.P2(), b.P2())
}

// anni1 annihilates two Op1 nodes. Port 1 of each holds the already
// stored operand, which is now dead weight; only port 2 carries on.
func (n *Net) anni1(a, b ptr.Ptr) {
	n.weakHalfFree(a.P1())
	n.weakHalfFree(b.P1())
	n.atomicLink(a.P2(), b.P2())
}

// comm22 commutes two distinct binary nodes: each gets duplicated into the
// other's aux ports, with a crossover wiring between the four copies.
func (n *Net) comm22(a, b ptr.Ptr) {
	a1 := n.allocNode(a.Tag(), a.Label())
	a2 := n.allocNode(a.Tag(), a.Label())
	b1 := n.allocNode(b.Tag(), b.Label())
	b2 := n.allocNode(b.Tag(), b.Label())

	n.link(a1.P1().Var(), b1.P1().Var())
	n.link(a1.P2().Var(), b2.P1().Var())
	n.link(a2.P1().Var(), b1.P2().Var())
	n.link(a2.P2().Var(), b2.P2().Var())

	n.halfAtomicLink(a.P1(), b1)
	n.halfAtomicLink(a.P2(), b2)
	n.halfAtomicLink(b.P1(), a1)
	n.halfAtomicLink(b.P2(), a2)
}

// comm12 commutes an Op1 node (one stored operand, one live aux port)
// against a Ctr: the operand is duplicated into both Op1 copies.
func (n *Net) comm12(a, b ptr.Ptr) {
	op, ctr := a, b
	if b.Tag() == ptr.Op1 {
		op, ctr = b, a
	}
	operand := ptr.Ptr(n.slot(op.P1()).Load())
	n.weakHalfFree(op.P1())

	a1 := n.allocNode(ptr.Op1, op.Label())
	a2 := n.allocNode(ptr.Op1, op.Label())
	b2 := n.allocNode(ptr.Ctr, ctr.Label())

	n.slot(a1.P1()).Store(uint64(operand))
	n.slot(a2.P1()).Store(uint64(operand))

	n.link(a1.P2().Var(), b2.P1().Var())
	n.link(a2.P2().Var(), b2.P2().Var())

	n.halfAtomicLink(ctr.P1(), a1)
	n.halfAtomicLink(ctr.P2(), a2)
	n.halfAtomicLink(op.P2(), b2)
}

// comm02 duplicates a nilary pointer (Num, Ref, or ERA) into both of a
// node's aux ports.
func (n *Net) comm02(nilary, node ptr.Ptr) {
	n.halfAtomicLink(node.P1(), nilary)
	n.halfAtomicLink(node.P2(), nilary)
}

// op2Num partially applies an Op2 node to its first operand: a freshly
// allocated Op1 holding b takes its place, still waiting on its second
// operand, and the Op2 cell is freed as its ports are consumed. op1.P2 is
// brand new and unread by anyone else yet, so it is handed to the outer
// wire as an owned Var rather than taken through atomicLink, which would
// read its uninitialized memory instead of treating it as a fresh port.
func (n *Net) op2Num(opPtr, numPtr ptr.Ptr) {
	loc := n.alloc()
	op1 := ptr.New(ptr.Op1, opPtr.Label(), loc)
	n.slot(op1.P1()).Store(uint64(numPtr))
	n.halfAtomicLink(opPtr.P1(), op1)
	n.halfAtomicLink(opPtr.P2(), op1.P2().Var())
}

// op1Num evaluates a fully-applied operator and emits its Num result.
func (n *Net) op1Num(opPtr, numPtr ptr.Ptr) {
	storedA := ptr.Ptr(n.slot(opPtr.P1()).Load())
	n.weakHalfFree(opPtr.P1())
	result := ops.Apply(ops.Op(opPtr.Label()), storedA.Num(), numPtr.Num())
	n.halfAtomicLink(opPtr.P2(), ptr.NewNum(result))
}

// matNum selects a branch by the scrutinee's value. Port 1 holds the pair
// of branches, packed as a Ctr0(zero_branch, succ_branch); port 2 is the
// continuation that receives whichever branch fires.
func (n *Net) matNum(matPtr, numPtr ptr.Ptr) {
	branchesDir := matPtr.P1()
	contDir := matPtr.P2()
	branches := n.take(branchesDir)

	if num := numPtr.Num(); num == 0 {
		n.halfAtomicLink(branches.P2(), ptr.ERA)
		n.atomicLink(branches.P1(), contDir)
	} else {
		n.halfAtomicLink(branches.P1(), ptr.ERA)
		c2 := n.allocNode(ptr.Ctr, 0)
		n.slot(c2.P1()).Store(uint64(ptr.NewNum(num - 1)))
		n.halfAtomicLink(contDir, c2.P2().Var())
		n.halfAtomicLink(branches.P2(), c2)
	}
	n.halfFree(branchesDir)
}
