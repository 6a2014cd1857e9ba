package common

import (
	"fmt"
	"strings"
)

// Move packs kind, from and to:
// bits 0-4 destination, bits 5-9 origin, bits 10-11 kind.
type Move int32

const MoveEmpty Move = 0

const MaxMoves = 256

const (
	MoveKindNone = iota
	MoveKindPlace
	MoveKindSlide
	MoveKindRemove
)

func MakePlace(sq int) Move {
	return Move(MoveKindPlace<<10 | sq)
}

func MakeSlide(from, to int) Move {
	return Move(MoveKindSlide<<10 | from<<5 | to)
}

func MakeRemove(sq int) Move {
	return Move(MoveKindRemove<<10 | sq)
}

func (m Move) Kind() int {
	return int(m>>10) & 3
}

func (m Move) From() int {
	return int(m>>5) & 31
}

func (m Move) To() int {
	return int(m & 31)
}

func (m Move) String() string {
	switch m.Kind() {
	case MoveKindPlace:
		return SquareName(m.To())
	case MoveKindSlide:
		return SquareName(m.From()) + "->" + SquareName(m.To())
	case MoveKindRemove:
		return "-" + SquareName(m.To())
	}
	return "none"
}

// ParseMove accepts "(r,s)", "(r,s)->(r,s)" and "-(r,s)".
func ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		var sq, n, ok = ParseSquare(s[1:])
		if !ok || n != len(s)-1 {
			return MoveEmpty, fmt.Errorf("parse move %q failed", s)
		}
		return MakeRemove(sq), nil
	}
	var from, n, ok = ParseSquare(s)
	if !ok {
		return MoveEmpty, fmt.Errorf("parse move %q failed", s)
	}
	if n == len(s) {
		return MakePlace(from), nil
	}
	var rest = s[n:]
	if !strings.HasPrefix(rest, "->") {
		return MoveEmpty, fmt.Errorf("parse move %q failed", s)
	}
	to, n2, ok := ParseSquare(rest[2:])
	if !ok || n2 != len(rest)-2 {
		return MoveEmpty, fmt.Errorf("parse move %q failed", s)
	}
	return MakeSlide(from, to), nil
}

type OrderedMove struct {
	Move Move
	Key  int
}
