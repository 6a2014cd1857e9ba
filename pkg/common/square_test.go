package common

import "testing"

func TestTopology(t *testing.T) {
	var tests = []struct {
		diagonals bool
		mills     int
	}{
		{false, 16},
		{true, 20},
	}
	for _, test := range tests {
		var topo = TopologyFor(test.diagonals)
		if len(topo.Mills()) != test.mills {
			t.Error(test.diagonals, len(topo.Mills()))
		}
		for sq := 0; sq < SquareNB; sq++ {
			for x := topo.Adjacent(sq); x != 0; x &= x - 1 {
				if topo.Adjacent(FirstOne(x))&SquareMask(sq) == 0 {
					t.Error("asymmetric adjacency", SquareName(sq), SquareName(FirstOne(x)))
				}
			}
			for _, mill := range topo.MillsThrough(sq) {
				if PopCount(mill) != 3 || mill&SquareMask(sq) == 0 {
					t.Error("bad mill", SquareName(sq), mill)
				}
			}
		}
	}
}

func TestAdjacencyCounts(t *testing.T) {
	var plain = TopologyFor(false)
	var diag = TopologyFor(true)
	var tests = []struct {
		sq    int
		plain int
		diag  int
	}{
		{MakeSquare(0, 0), 3, 3},
		{MakeSquare(1, 0), 4, 4},
		{MakeSquare(0, 1), 2, 3},
		{MakeSquare(1, 1), 2, 4},
	}
	for _, test := range tests {
		if n := PopCount(plain.Adjacent(test.sq)); n != test.plain {
			t.Error(SquareName(test.sq), n, test.plain)
		}
		if n := PopCount(diag.Adjacent(test.sq)); n != test.diag {
			t.Error(SquareName(test.sq), n, test.diag)
		}
	}
}

func TestParseSquare(t *testing.T) {
	for sq := 0; sq < SquareNB; sq++ {
		var got, n, ok = ParseSquare(SquareName(sq))
		if !ok || n != 5 || got != sq {
			t.Error(SquareName(sq), got, n, ok)
		}
	}
	for _, s := range []string{"", "(0,1)", "(4,1)", "(1,9)", "1,1", "(1;1)"} {
		if _, _, ok := ParseSquare(s); ok {
			t.Error("parsed", s)
		}
	}
}
