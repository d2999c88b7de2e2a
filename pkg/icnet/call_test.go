package icnet

import (
	"testing"

	"github.com/icnet/runtime/pkg/ptr"
)

func TestCallNativeDefRunsDirectly(t *testing.T) {
	host := NewHost()
	n := NewNet(NewHeap(8), host)

	called := false
	def := &Def{Name: "id"}
	ref := host.Define(def)
	def.Native = func(worker *Net, other ptr.Ptr) {
		called = true
		if other != ptr.NewNum(42) {
			t.Errorf("native received %v, want #42", other)
		}
	}

	n.call(ref, ptr.NewNum(42))
	if !called {
		t.Fatalf("native function was never invoked")
	}
}

func TestCallClosedNetLinksRootValueDirectly(t *testing.T) {
	host := NewHost()
	n := NewNet(NewHeap(64), host)

	// A literal with a nilary Root and no Nodes needs no scratch cells at
	// all: instantiate's root link writes Num(7) straight into RootLoc
	// the same way linker() resolves any Var-vs-value pair.
	def := &Def{Name: "seven", Net: &DefNet{Root: ptr.NewNum(7)}}
	ref := host.Define(def)

	n.Boot(ref)
	n.Normal()

	got := ptr.Ptr(n.slot(RootLoc).Load())
	if got != ptr.NewNum(7) {
		t.Fatalf("root = %v, want #7 instantiated from the def literal", got)
	}
	if n.rwts.Dref != 1 {
		t.Fatalf("Dref = %d, want 1", n.rwts.Dref)
	}
}

func TestCallClosedNetWithBakedRedexRunsImmediately(t *testing.T) {
	host := NewHost()
	n := NewNet(NewHeap(64), host)

	// @both-erase bakes a (* *) redex directly into the definition, so
	// instantiation itself enqueues it and the next drain fires it, with no
	// caller interaction at all.
	def := &Def{Name: "both-erase", Net: &DefNet{
		Root:    ptr.ERA,
		Redexes: []RedexDef{{A: ptr.ERA, B: ptr.ERA}},
	}}
	ref := host.Define(def)

	n.Boot(ref)
	n.Normal()

	if n.rwts.Eras != 1 {
		t.Fatalf("Eras = %d, want 1 (the baked redex)", n.rwts.Eras)
	}
	if n.rwts.Dref != 1 {
		t.Fatalf("Dref = %d, want 1", n.rwts.Dref)
	}
	if got := ptr.Ptr(n.slot(RootLoc).Load()); got != ptr.ERA {
		t.Fatalf("root = %v, want ERA", got)
	}
}
