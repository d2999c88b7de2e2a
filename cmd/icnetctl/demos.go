package main

import (
	"github.com/icnet/runtime/pkg/icnet"
	"github.com/icnet/runtime/pkg/ops"
	"github.com/icnet/runtime/pkg/ptr"
)

// demo bundles everything icnetctl needs to boot and read back one built-in
// program: how to prepare the net, and how to read its answer once reduced.
type demo struct {
	name    string
	about   string
	prepare func(n *icnet.Net, host *icnet.Host) (readback func() string)
}

var demos = map[string]demo{
	"add":  addDemo,
	"eras": erasDemo,
	"mat":  matDemo,
	"loop": loopDemo,
}

// addDemo evaluates "<+ #2 #3>" through a Host definition: @main
// dereferences into an Op2(Add) node whose first port is pre-loaded with
// #3 and whose principal is redexed against #2.
var addDemo = demo{
	name:  "add",
	about: `@main = <+ #2 #3>  (expect #5, 2 oper rewrites)`,
	prepare: func(n *icnet.Net, host *icnet.Host) func() string {
		def := &icnet.Def{Name: "main", Net: &icnet.DefNet{
			Root:    ptr.NewLoc(0, 1).Var(),
			Redexes: []icnet.RedexDef{{A: ptr.New(ptr.Op2, ptr.Lab(ops.Add), ptr.NewLoc(0, 0)), B: ptr.NewNum(2)}},
			Nodes:   []icnet.NodeDef{{P1: ptr.NewNum(3), P2: ptr.NewLoc(0, 1).Var()}},
		}}
		ref := host.Define(def)
		n.Boot(ref)
		return func() string {
			return n.LoadPort(icnet.RootLoc).String()
		}
	},
}

// erasDemo links two erasers directly: the minimal redex, one Eras rewrite.
var erasDemo = demo{
	name:  "eras",
	about: `(* *)  (expect annihilation into nothing, 1 eras rewrite)`,
	prepare: func(n *icnet.Net, host *icnet.Host) func() string {
		n.PushRedex(ptr.ERA, ptr.ERA)
		return func() string { return "(erased)" }
	},
}

// matDemo builds "?<(#10 *) #0>" directly on the arena: a Mat node whose
// branch pair is a Ctr0(zero_branch, succ_branch) and whose principal meets
// the zero selector, picking the #10 branch.
var matDemo = demo{
	name:  "mat",
	about: `?<(#10 *) #0>  (expect #10, selecting the zero branch)`,
	prepare: func(n *icnet.Net, host *icnet.Host) func() string {
		ctrLoc := n.Alloc()
		n.StorePort(ctrLoc, ptr.NewNum(10))
		n.StorePort(ptr.NewLoc(ctrLoc.Cell(), 1), ptr.ERA)

		matLoc := n.Alloc()
		n.StorePort(matLoc, ptr.New(ptr.Ctr, 0, ctrLoc))

		sinkLoc := n.Alloc()
		contLoc := ptr.NewLoc(matLoc.Cell(), 1)
		n.StorePort(contLoc, sinkLoc.Var())
		n.StorePort(sinkLoc, contLoc.Var())

		n.PushRedex(ptr.New(ptr.Mat, 0, matLoc), ptr.NewNum(0))
		return func() string { return n.LoadPort(sinkLoc).String() }
	},
}

// loopDemo dereferences a definition that immediately re-creates its own
// redex: every interact is a Dref that pushes an identical active pair back,
// so the stream never ends and the heap never grows. It demonstrates that
// ReduceLimit bounds work without the reducer ever running off the rails.
var loopDemo = demo{
	name:  "loop",
	about: `@loop = @loop  (never reaches normal form; bounded by --limit)`,
	prepare: func(n *icnet.Net, host *icnet.Host) func() string {
		def := &icnet.Def{Name: "loop"}
		ref := host.Define(def)
		def.Native = func(worker *icnet.Net, other ptr.Ptr) {
			worker.PushRedex(ref, other)
		}
		ctrLoc := n.Alloc()
		n.StorePort(ctrLoc, ptr.ERA)
		n.StorePort(ptr.NewLoc(ctrLoc.Cell(), 1), ptr.ERA)
		n.PushRedex(ref, ptr.New(ptr.Ctr, 1, ctrLoc))
		return func() string { return "(never converges — inspect Stats() instead)" }
	},
}
