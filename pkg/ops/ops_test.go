package ops

import "testing"

func TestArithmetic(t *testing.T) {
	cases := []struct {
		op   Op
		x, y uint64
		want uint64
	}{
		{Add, 2, 3, 5},
		{Sub, 5, 3, 2},
		{Mul, 4, 5, 20},
		{Div, 10, 3, 3},
		{Rem, 10, 3, 1},
		{Div, 10, 0, 0},
		{Rem, 10, 0, 0},
		{Eq, 4, 4, 1},
		{Eq, 4, 5, 0},
		{Ne, 4, 5, 1},
		{Lt, 3, 4, 1},
		{Gt, 4, 3, 1},
		{And, 0b1100, 0b1010, 0b1000},
		{Or, 0b1100, 0b1010, 0b1110},
		{Xor, 0b1100, 0b1010, 0b0110},
		{Lsh, 1, 4, 16},
		{Rsh, 16, 4, 1},
	}
	for _, c := range cases {
		if got := Apply(c.op, c.x, c.y); got != c.want {
			t.Errorf("Apply(%v, %d, %d) = %d, want %d", c.op, c.x, c.y, got, c.want)
		}
	}
}

func TestSubWrapsRatherThanGoingNegative(t *testing.T) {
	got := Apply(Sub, 0, 1)
	if got != mask60 {
		t.Fatalf("Apply(Sub, 0, 1) = %d, want %d (wrapped)", got, mask60)
	}
}

func TestMulWraps(t *testing.T) {
	big := mask60
	got := Apply(Mul, big, 2)
	want := (big * 2) & mask60
	if got != want {
		t.Fatalf("Apply(Mul, mask60, 2) = %d, want %d", got, want)
	}
}

func TestApplyPanicsOnUnknownOp(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unrecognised opcode")
		}
	}()
	Apply(Op(9999), 1, 1)
}
