// Package ops is the external "Op" module that §4.E's Op2/Op1 rules defer
// to: a closed, pure, total function over the runtime's 60-bit unboxed
// integers. It never allocates and never touches the heap, so it carries
// no dependency on pkg/icnet and can be swapped or extended without
// touching the interaction rules that call it.
package ops

import "fmt"

// Op is an opcode, stored in a Ptr's 16-bit label field on Op2/Op1 nodes.
type Op uint16

const (
	Add Op = iota
	Sub
	Mul
	Div
	Rem
	Eq
	Ne
	Lt
	Gt
	And
	Or
	Xor
	Lsh
	Rsh
)

func (o Op) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Rem:
		return "%"
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Gt:
		return ">"
	case And:
		return "&"
	case Or:
		return "|"
	case Xor:
		return "^"
	case Lsh:
		return "<<"
	case Rsh:
		return ">>"
	default:
		return fmt.Sprintf("Op(%d)", uint16(o))
	}
}

const mask60 = (uint64(1) << 60) - 1

// Apply evaluates x `op` y over 60-bit integers, wrapping silently on
// overflow. Comparisons yield 1 for true and 0 for false. Division and
// remainder by zero yield 0 rather than panicking: the runtime has no
// facility for signalling a fault back into the net, and a net that
// divides by zero is a bug in the net, not in this function.
func Apply(op Op, x, y uint64) uint64 {
	x &= mask60
	y &= mask60
	switch op {
	case Add:
		return (x + y) & mask60
	case Sub:
		return (x - y) & mask60
	case Mul:
		return (x * y) & mask60
	case Div:
		if y == 0 {
			return 0
		}
		return (x / y) & mask60
	case Rem:
		if y == 0 {
			return 0
		}
		return (x % y) & mask60
	case Eq:
		return boolNum(x == y)
	case Ne:
		return boolNum(x != y)
	case Lt:
		return boolNum(x < y)
	case Gt:
		return boolNum(x > y)
	case And:
		return x & y
	case Or:
		return x | y
	case Xor:
		return x ^ y
	case Lsh:
		return (x << (y & 63)) & mask60
	case Rsh:
		return (x >> (y & 63)) & mask60
	default:
		panic(fmt.Sprintf("ops: unrecognised opcode %d", uint16(op)))
	}
}

func boolNum(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
