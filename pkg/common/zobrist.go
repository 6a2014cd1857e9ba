package common

const maxInHand = 16

var (
	keyPieces     [4][SquareNB]uint64
	keySide       uint64
	keyPhase      [4]uint64
	keyAction     [3]uint64
	keyInHand     [ColorNB][maxInHand]uint64
	keyNeedRemove [4]uint64
	keyLastSlide  [ColorNB][SquareNB][SquareNB]uint64
)

func init() {
	var seed = uint64(0x9E3779B97F4A7C15)
	var next = func() uint64 {
		seed += 0x9E3779B97F4A7C15
		var z = seed
		z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
		z = (z ^ (z >> 27)) * 0x94D049BB133111EB
		return z ^ (z >> 31)
	}
	for piece := PieceBlack; piece <= PieceBanned; piece++ {
		for sq := 0; sq < SquareNB; sq++ {
			keyPieces[piece][sq] = next()
		}
	}
	keySide = next()
	for i := range keyPhase {
		keyPhase[i] = next()
	}
	for i := range keyAction {
		keyAction[i] = next()
	}
	for c := range keyInHand {
		for i := range keyInHand[c] {
			keyInHand[c][i] = next()
		}
	}
	for i := range keyNeedRemove {
		keyNeedRemove[i] = next()
	}
	for c := range keyLastSlide {
		for from := range keyLastSlide[c] {
			for to := range keyLastSlide[c][from] {
				keyLastSlide[c][from][to] = next()
			}
		}
	}
}

// computeKey fingerprints everything that decides the future of the game
// except the move counters and history. The last slide of each side counts
// only under NoImmediateMillReform, where it decides whether a mill closes.
func (p *Position) computeKey() uint64 {
	var key uint64
	for sq := 0; sq < SquareNB; sq++ {
		if piece := p.Board[sq]; piece != PieceEmpty {
			key ^= keyPieces[piece][sq]
		}
	}
	if p.SideToMove == White {
		key ^= keySide
	}
	key ^= keyPhase[p.Phase]
	key ^= keyAction[p.Action]
	key ^= keyInHand[Black][p.InHand[Black]]
	key ^= keyInHand[White][p.InHand[White]]
	key ^= keyNeedRemove[Min(p.NeedRemove, len(keyNeedRemove)-1)]
	if p.Rule.NoImmediateMillReform {
		for c, m := range p.lastSlide {
			if m.Kind() == MoveKindSlide {
				key ^= keyLastSlide[c][m.From()][m.To()]
			}
		}
	}
	return key
}
