package common

import (
	"fmt"
	"math/bits"
)

// The board is three concentric rings of eight seats.
// Seats run clockwise from the top middle point:
//
//	7 0 1
//	6   2
//	5 4 3
//
// Even seats are line midpoints and connect the rings,
// odd seats are corners and connect the rings only on boards with diagonals.
const (
	RingNB     = 3
	SeatNB     = 8
	SquareNB   = RingNB * SeatNB
	allSquares = uint32(1)<<SquareNB - 1
)

const SquareNone = -1

func MakeSquare(ring, seat int) int {
	return ring*SeatNB + seat
}

func Ring(sq int) int {
	return sq / SeatNB
}

func Seat(sq int) int {
	return sq % SeatNB
}

func IsValidSquare(sq int) bool {
	return sq >= 0 && sq < SquareNB
}

// SquareName returns the "(ring,seat)" notation, both 1-based.
func SquareName(sq int) string {
	if !IsValidSquare(sq) {
		return "(-)"
	}
	return fmt.Sprintf("(%d,%d)", Ring(sq)+1, Seat(sq)+1)
}

// ParseSquare parses "(r,s)" and returns the number of bytes consumed.
func ParseSquare(s string) (sq, n int, ok bool) {
	if len(s) < 5 || s[0] != '(' || s[2] != ',' || s[4] != ')' {
		return SquareNone, 0, false
	}
	var ring = int(s[1]) - '1'
	var seat = int(s[3]) - '1'
	if ring < 0 || ring >= RingNB || seat < 0 || seat >= SeatNB {
		return SquareNone, 0, false
	}
	return MakeSquare(ring, seat), 5, true
}

func SquareMask(sq int) uint32 {
	return 1 << uint(sq)
}

func PopCount(b uint32) int {
	return bits.OnesCount32(b)
}

func FirstOne(b uint32) int {
	return bits.TrailingZeros32(b)
}

// Topology holds cell adjacency and mill lines of one board shape.
type Topology struct {
	adjacent      [SquareNB]uint32
	mills         []uint32
	millsBySquare [SquareNB][]uint32
}

var topologies [2]Topology

func init() {
	initTopology(&topologies[0], false)
	initTopology(&topologies[1], true)
}

func TopologyFor(diagonals bool) *Topology {
	if diagonals {
		return &topologies[1]
	}
	return &topologies[0]
}

func initTopology(t *Topology, diagonals bool) {
	var link = func(a, b int) {
		t.adjacent[a] |= SquareMask(b)
		t.adjacent[b] |= SquareMask(a)
	}
	for ring := 0; ring < RingNB; ring++ {
		for seat := 0; seat < SeatNB; seat++ {
			link(MakeSquare(ring, seat), MakeSquare(ring, (seat+1)%SeatNB))
		}
		// corner-mid-corner lines inside a ring
		for mid := 0; mid < SeatNB; mid += 2 {
			t.mills = append(t.mills,
				SquareMask(MakeSquare(ring, (mid+SeatNB-1)%SeatNB))|
					SquareMask(MakeSquare(ring, mid))|
					SquareMask(MakeSquare(ring, mid+1)))
		}
	}
	for seat := 0; seat < SeatNB; seat++ {
		var corner = seat%2 == 1
		if corner && !diagonals {
			continue
		}
		var line uint32
		for ring := 0; ring < RingNB; ring++ {
			line |= SquareMask(MakeSquare(ring, seat))
			if ring > 0 {
				link(MakeSquare(ring-1, seat), MakeSquare(ring, seat))
			}
		}
		t.mills = append(t.mills, line)
	}
	for _, mill := range t.mills {
		for x := mill; x != 0; x &= x - 1 {
			var sq = FirstOne(x)
			t.millsBySquare[sq] = append(t.millsBySquare[sq], mill)
		}
	}
}

func (t *Topology) Adjacent(sq int) uint32 {
	return t.adjacent[sq]
}

func (t *Topology) Mills() []uint32 {
	return t.mills
}

func (t *Topology) MillsThrough(sq int) []uint32 {
	return t.millsBySquare[sq]
}
