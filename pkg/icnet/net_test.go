package icnet

import (
	"testing"

	"github.com/icnet/runtime/pkg/ops"
	"github.com/icnet/runtime/pkg/ptr"
)

// wire joins two aux slots into one doubly-linked Var pair.
func wire(n *Net, a, b ptr.Loc) {
	n.slot(a).Store(uint64(b.Var()))
	n.slot(b).Store(uint64(a.Var()))
}

// buildChurch builds the Church numeral λf λx. fᵏx out of Ctr cells: label
// 0 for lambdas and applications, fanLab for the fan tree that shares f
// between the k applications. Returns the numeral's root principal.
func buildChurch(n *Net, k int, fanLab ptr.Lab) ptr.Ptr {
	lamF := n.allocNode(ptr.Ctr, 0)
	lamX := n.allocNode(ptr.Ctr, 0)
	n.slot(lamF.P2()).Store(uint64(lamX))
	if k == 0 {
		n.slot(lamF.P1()).Store(uint64(ptr.ERA))
		wire(n, lamX.P1(), lamX.P2())
		return lamF
	}
	apps := make([]ptr.Ptr, k)
	for i := range apps {
		apps[i] = n.allocNode(ptr.Ctr, 0)
	}
	feed := lamF.P1()
	for i := 0; i < k-1; i++ {
		fan := n.allocNode(ptr.Ctr, fanLab)
		n.slot(feed).Store(uint64(fan))
		n.slot(fan.P1()).Store(uint64(apps[i]))
		feed = fan.P2()
	}
	n.slot(feed).Store(uint64(apps[k-1]))
	wire(n, lamX.P1(), apps[0].P1())
	for i := 0; i+1 < k; i++ {
		wire(n, apps[i].P2(), apps[i+1].P1())
	}
	wire(n, apps[k-1].P2(), lamX.P2())
	return lamF
}

// buildAdd builds λa λb λf λx. a f (b f x), sharing f through one fan.
func buildAdd(n *Net, fanLab ptr.Lab) ptr.Ptr {
	lamA := n.allocNode(ptr.Ctr, 0)
	lamB := n.allocNode(ptr.Ctr, 0)
	lamF := n.allocNode(ptr.Ctr, 0)
	lamX := n.allocNode(ptr.Ctr, 0)
	appA1 := n.allocNode(ptr.Ctr, 0)
	appA2 := n.allocNode(ptr.Ctr, 0)
	appB1 := n.allocNode(ptr.Ctr, 0)
	appB2 := n.allocNode(ptr.Ctr, 0)
	fan := n.allocNode(ptr.Ctr, fanLab)

	n.slot(lamA.P2()).Store(uint64(lamB))
	n.slot(lamB.P2()).Store(uint64(lamF))
	n.slot(lamF.P2()).Store(uint64(lamX))
	n.slot(lamA.P1()).Store(uint64(appA1))
	n.slot(lamB.P1()).Store(uint64(appB1))
	n.slot(lamF.P1()).Store(uint64(fan))
	n.slot(appA1.P2()).Store(uint64(appA2))
	n.slot(appB1.P2()).Store(uint64(appB2))
	wire(n, fan.P1(), appA1.P1())
	wire(n, fan.P2(), appB1.P1())
	wire(n, lamX.P1(), appB2.P1())
	wire(n, appB2.P2(), appA2.P1())
	wire(n, appA2.P2(), lamX.P2())
	return lamA
}

// buildSucc builds λn. (+ n 1): a lambda whose binder feeds the principal
// of an Op2(Add) already holding the constant #1.
func buildSucc(n *Net) ptr.Ptr {
	lam := n.allocNode(ptr.Ctr, 0)
	op := n.allocNode(ptr.Op2, ptr.Lab(ops.Add))
	n.slot(lam.P1()).Store(uint64(op))
	n.slot(op.P1()).Store(uint64(ptr.NewNum(1)))
	wire(n, op.P2(), lam.P2())
	return lam
}

// applySpine redexes fn against a chain of application nodes delivering
// args in order, wiring the final result into out.
func applySpine(n *Net, fn ptr.Ptr, args []ptr.Ptr, out ptr.Loc) {
	apps := make([]ptr.Ptr, len(args))
	for i := range args {
		apps[i] = n.allocNode(ptr.Ctr, 0)
		n.slot(apps[i].P1()).Store(uint64(args[i]))
	}
	for i := 0; i+1 < len(apps); i++ {
		n.slot(apps[i].P2()).Store(uint64(apps[i+1]))
	}
	wire(n, apps[len(apps)-1].P2(), out)
	n.pushRedex(fn, apps[0])
}

// countChurch walks the x-chain of a normal-form Church numeral and
// returns how many application cells it crosses.
func countChurch(t *testing.T, n *Net, root ptr.Ptr) int {
	t.Helper()
	if root.Tag() != ptr.Ctr {
		t.Fatalf("root = %v, want the outer Ctr lambda", root)
	}
	lamX := ptr.Ptr(n.slot(root.P2()).Load())
	if lamX.Tag() != ptr.Ctr {
		t.Fatalf("body = %v, want the inner Ctr lambda", lamX)
	}
	count := 0
	cur := ptr.Ptr(n.slot(lamX.P1()).Load())
	for {
		if cur.Tag() != ptr.Var {
			t.Fatalf("x chain interrupted by %v after %d applications", cur, count)
		}
		if cur.Loc() == lamX.P2() {
			return count
		}
		count++
		if count > 1<<16 {
			t.Fatalf("x chain does not terminate")
		}
		cur = ptr.Ptr(n.slot(cur.Loc().Other()).Load())
	}
}

func TestBuildChurchHasExpectedApplicationCount(t *testing.T) {
	for _, k := range []int{0, 1, 4, 9} {
		n := NewNet(NewHeap(256), NewHost())
		root := buildChurch(n, k, 1)
		if got := countChurch(t, n, root); got != k {
			t.Errorf("church %d walks as %d applications", k, got)
		}
	}
}

// prepareFourPlusFour wires ((add c4 c4) succ #0) with the result wired
// into the root slot. Distinct fan labels per numeral keep the sharing
// graphs non-interfering.
func prepareFourPlusFour(n *Net) {
	add := buildAdd(n, 1)
	c4a := buildChurch(n, 4, 2)
	c4b := buildChurch(n, 4, 3)
	succ := buildSucc(n)
	applySpine(n, add, []ptr.Ptr{c4a, c4b, succ, ptr.NewNum(0)}, RootLoc)
}

func TestChurchFourPlusFourEvaluatesToEight(t *testing.T) {
	n := NewNet(NewHeap(1<<12), NewHost())
	prepareFourPlusFour(n)
	n.Normal()

	if got := n.LoadPort(RootLoc); got != ptr.NewNum(8) {
		t.Fatalf("root = %v, want #8", got)
	}
	if len(n.rdex) != 0 {
		t.Fatalf("redex bag still holds %d pairs after Normal", len(n.rdex))
	}
	// Eight successor applications, each an op2_num followed by an op1_num.
	if n.rwts.Oper != 16 {
		t.Errorf("Oper = %d, want 16", n.rwts.Oper)
	}
	if n.rwts.Anni == 0 || n.rwts.Comm == 0 {
		t.Errorf("stats = %+v, want both annihilations and commutations", n.rwts)
	}
}

func TestNormalIsDeterministic(t *testing.T) {
	run := func() Counters {
		n := NewNet(NewHeap(1<<12), NewHost())
		prepareFourPlusFour(n)
		n.Normal()
		return n.Stats()
	}
	first := run()
	second := run()
	if first != second {
		t.Fatalf("two sequential runs diverge: %+v vs %+v", first, second)
	}
}

func TestSelfDereferenceStreamIsBoundedByReduceLimit(t *testing.T) {
	host := NewHost()
	n := NewNet(NewHeap(16), host)
	def := &Def{Name: "loop"}
	ref := host.Define(def)
	def.Native = func(w *Net, other ptr.Ptr) {
		w.PushRedex(ref, other)
	}
	ctr := n.allocNode(ptr.Ctr, 1)
	n.slot(ctr.P1()).Store(uint64(ptr.ERA))
	n.slot(ctr.P2()).Store(uint64(ptr.ERA))
	n.pushRedex(ref, ctr)

	before := n.next
	const limit = 200_000
	if done := n.ReduceLimit(limit); done != limit {
		t.Fatalf("ReduceLimit processed %d redexes, want %d", done, limit)
	}
	if n.rwts.Dref != limit {
		t.Fatalf("Dref = %d, want %d", n.rwts.Dref, limit)
	}
	// The stream recreates its own redex without ever allocating.
	if n.next != before {
		t.Fatalf("heap cursor moved from %d to %d during a pure dereference stream", before, n.next)
	}
	if len(n.rdex) != 1 {
		t.Fatalf("redex bag holds %d pairs, want the single regenerated pair", len(n.rdex))
	}
}

func TestExpandForcesRefsAlongCtrSpine(t *testing.T) {
	host := NewHost()
	n := NewNet(NewHeap(64), host)
	seven := host.Define(&Def{Name: "seven", Net: &DefNet{Root: ptr.NewNum(7)}})
	nine := host.Define(&Def{Name: "nine", Net: &DefNet{Root: ptr.NewNum(9)}})

	spine := n.allocNode(ptr.Ctr, 0)
	n.slot(spine.P1()).Store(uint64(seven))
	n.slot(spine.P2()).Store(uint64(nine))
	n.Boot(spine)
	n.Normal()

	if got := n.LoadPort(spine.P1()); got != ptr.NewNum(7) {
		t.Errorf("spine.P1 = %v, want #7", got)
	}
	if got := n.LoadPort(spine.P2()); got != ptr.NewNum(9) {
		t.Errorf("spine.P2 = %v, want #9", got)
	}
	if n.rwts.Dref != 2 {
		t.Errorf("Dref = %d, want 2", n.rwts.Dref)
	}
}
