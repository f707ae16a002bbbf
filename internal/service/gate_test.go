package service

import "testing"

func TestGateDecide(t *testing.T) {
	g := NewGate(10)

	cases := []struct {
		count int
		want  GateDecision
	}{
		{0, GateInsufficient},
		{9, GateInsufficient},
		{10, GateReady},
		{25, GateReady},
	}
	for _, tc := range cases {
		if got := g.Decide(tc.count); got != tc.want {
			t.Fatalf("Decide(%d) = %v, want %v", tc.count, got, tc.want)
		}
	}

	if g.Required() != 10 {
		t.Fatalf("Required() = %d, want 10", g.Required())
	}
}
