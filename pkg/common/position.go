package common

import (
	"strings"
)

type state struct {
	Board      [SquareNB]Piece
	ByColor    [ColorNB]uint32
	Banned     uint32
	InHand     [ColorNB]int
	OnBoard    [ColorNB]int
	NeedRemove int
	Phase      Phase
	Action     Action
	SideToMove Color
	Rule50     int // actions since the last removal
	Winner     Color
	Reason     GameOverReason
	Key        uint64
	LastMove   Move
	lastSlide  [ColorNB]Move
}

// Position is the state of one game. It changes only through its Apply
// methods, every change is recorded so that UndoLast can revert it.
type Position struct {
	state
	Rule    RuleVariant
	topo    *Topology
	history []state
}

func NewPosition(rule RuleVariant) *Position {
	if err := rule.Validate(); err != nil {
		fault("%v", err)
	}
	var p = &Position{
		Rule:    rule,
		topo:    TopologyFor(rule.HasDiagonalLines),
		history: make([]state, 0, 256),
	}
	p.InHand[Black] = rule.PiecesCount
	p.InHand[White] = rule.PiecesCount
	p.Phase = PhaseReady
	p.Action = ActionPlace
	p.SideToMove = Black
	p.Winner = NoColor
	p.Key = p.computeKey()
	return p
}

// NewMovingPosition sets up a moving phase position with both hands empty.
func NewMovingPosition(rule RuleVariant, black, white uint32, side Color) (*Position, error) {
	if black&white != 0 || (black|white)&^allSquares != 0 {
		return nil, illegal("overlapping or invalid cells")
	}
	if PopCount(black) > rule.PiecesCount || PopCount(white) > rule.PiecesCount {
		return nil, illegal("too many pieces")
	}
	if side != Black && side != White {
		return nil, illegal("bad side %v", side)
	}
	var p = NewPosition(rule)
	p.InHand = [ColorNB]int{}
	for x := black; x != 0; x &= x - 1 {
		p.put(FirstOne(x), Black)
	}
	for x := white; x != 0; x &= x - 1 {
		p.put(FirstOne(x), White)
	}
	p.Phase = PhaseMoving
	p.Action = ActionSelect
	p.SideToMove = side
	p.Key = p.computeKey()
	for c := Black; c <= White; c++ {
		if p.OnBoard[c] < rule.PiecesAtLeast {
			p.setGameOver(c.Opponent(), ReasonFewPieces)
			return p, nil
		}
	}
	p.checkTurnStart()
	p.checkInvariants()
	return p, nil
}

// Clone returns an independent copy, history included.
func (p *Position) Clone() *Position {
	var result = *p
	result.history = make([]state, len(p.history), Max(len(p.history), 256))
	copy(result.history, p.history)
	return &result
}

func (p *Position) Topology() *Topology {
	return p.topo
}

func (p *Position) HistoryLen() int {
	return len(p.history)
}

func (p *Position) Start() {
	if p.Phase == PhaseReady {
		p.Phase = PhasePlacing
		p.Key = p.computeKey()
	}
}

func (p *Position) IsGameOver() bool {
	return p.Phase == PhaseGameOver
}

func (p *Position) Apply(m Move) error {
	switch m.Kind() {
	case MoveKindPlace:
		return p.ApplyPlace(m.To())
	case MoveKindSlide:
		return p.ApplyMove(m.From(), m.To())
	case MoveKindRemove:
		return p.ApplyRemove(m.To())
	}
	return illegal("empty move")
}

func (p *Position) ApplyPlace(sq int) error {
	var phase = p.Phase
	if phase == PhaseReady {
		phase = PhasePlacing
	}
	if phase != PhasePlacing || p.Action != ActionPlace {
		return illegal("place in phase %v action %v", p.Phase, p.Action)
	}
	if !IsValidSquare(sq) || p.Board[sq] != PieceEmpty {
		return illegal("place on %v", SquareName(sq))
	}
	var us = p.SideToMove
	if p.InHand[us] == 0 {
		return illegal("%v has no pieces in hand", us)
	}
	p.push()
	p.Phase = PhasePlacing
	p.InHand[us]--
	p.put(sq, us)
	p.Rule50++
	p.LastMove = MakePlace(sq)
	p.afterPieceArrived(sq, false)
	return nil
}

func (p *Position) ApplyMove(from, to int) error {
	var allowed = p.Phase == PhaseMoving && p.Action == ActionSelect ||
		p.Phase == PhasePlacing && p.Action == ActionPlace && p.Rule.MayMoveInPlacingPhase
	if !allowed {
		return illegal("move in phase %v action %v", p.Phase, p.Action)
	}
	var us = p.SideToMove
	if !IsValidSquare(from) || !IsValidSquare(to) ||
		p.Board[from] != PieceOf(us) || p.Board[to] != PieceEmpty {
		return illegal("move %v->%v", SquareName(from), SquareName(to))
	}
	if !p.canFly(us) && p.topo.adjacent[from]&SquareMask(to) == 0 {
		return illegal("%v is not adjacent to %v", SquareName(to), SquareName(from))
	}
	var prev = p.lastSlide[us]
	var reform = p.Rule.NoImmediateMillReform &&
		prev.Kind() == MoveKindSlide && prev.From() == to && prev.To() == from
	var m = MakeSlide(from, to)
	p.push()
	p.take(from, us)
	p.put(to, us)
	p.Rule50++
	p.LastMove = m
	p.lastSlide[us] = m
	p.afterPieceArrived(to, reform)
	return nil
}

func (p *Position) ApplyRemove(sq int) error {
	if p.Phase == PhaseGameOver || p.Action != ActionRemove || p.NeedRemove <= 0 {
		return illegal("remove in phase %v action %v", p.Phase, p.Action)
	}
	var us = p.SideToMove
	var them = us.Opponent()
	if !IsValidSquare(sq) || p.Board[sq] != PieceOf(them) {
		return illegal("remove on %v", SquareName(sq))
	}
	if !p.Rule.MayRemoveFromMillsAlways && p.inMill(sq, them) && !p.allInMills(them) {
		return illegal("%v is protected by a mill", SquareName(sq))
	}
	p.push()
	p.take(sq, them)
	if p.Phase == PhasePlacing && p.Rule.HasBannedLocations {
		p.Board[sq] = PieceBanned
		p.Banned |= SquareMask(sq)
	}
	p.NeedRemove--
	p.Rule50 = 0
	p.LastMove = MakeRemove(sq)
	if p.OnBoard[them]+p.InHand[them] < p.Rule.PiecesAtLeast {
		p.setGameOver(us, ReasonFewPieces)
		return nil
	}
	if p.NeedRemove > 0 && p.OnBoard[them] > 0 {
		p.Key = p.computeKey()
		p.checkInvariants()
		return nil
	}
	p.NeedRemove = 0
	p.endTurn()
	return nil
}

func (p *Position) Resign(c Color) error {
	if p.Phase == PhaseGameOver || c > White {
		return illegal("resign in phase %v", p.Phase)
	}
	p.push()
	p.setGameOver(c.Opponent(), ReasonResign)
	return nil
}

func (p *Position) UndoLast() error {
	if len(p.history) == 0 {
		return ErrNoHistory
	}
	p.state = p.history[len(p.history)-1]
	p.history = p.history[:len(p.history)-1]
	return nil
}

func (p *Position) push() {
	p.history = append(p.history, p.state)
}

func (p *Position) put(sq int, c Color) {
	p.Board[sq] = PieceOf(c)
	p.ByColor[c] |= SquareMask(sq)
	p.OnBoard[c]++
}

func (p *Position) take(sq int, c Color) {
	p.Board[sq] = PieceEmpty
	p.ByColor[c] &^= SquareMask(sq)
	p.OnBoard[c]--
}

func (p *Position) afterPieceArrived(sq int, reform bool) {
	var us = p.SideToMove
	var them = us.Opponent()
	var mills = p.millsAt(sq, us)
	if mills > 0 && !reform {
		if p.Rule.SingleRemovalForMultiMill {
			mills = 1
		}
		mills = Min(mills, p.OnBoard[them])
		if mills > 0 {
			p.NeedRemove = mills
			p.Action = ActionRemove
			p.Key = p.computeKey()
			p.checkInvariants()
			return
		}
	}
	p.endTurn()
}

func (p *Position) endTurn() {
	var us = p.SideToMove
	var them = us.Opponent()
	switch p.Phase {
	case PhasePlacing:
		if p.emptySquares() == 0 {
			if p.Rule.IsBlackLoseButNotDrawWhenBoardFull {
				p.setGameOver(White, ReasonBoardFull)
			} else {
				p.setGameOver(NoColor, ReasonBoardFull)
			}
			return
		}
		if p.InHand[Black] == 0 && p.InHand[White] == 0 {
			p.Phase = PhaseMoving
			p.Action = ActionSelect
			for x := p.Banned; x != 0; x &= x - 1 {
				p.Board[FirstOne(x)] = PieceEmpty
			}
			p.Banned = 0
			p.SideToMove = Color(let(p.Rule.IsDefenderMoveFirst, int(us), int(them)))
		} else {
			p.Action = ActionPlace
			p.SideToMove = them
		}
	case PhaseMoving:
		p.Action = ActionSelect
		p.SideToMove = them
	}
	p.Key = p.computeKey()
	p.checkTurnStart()
	p.checkInvariants()
}

// checkTurnStart applies the blocked-side and draw rules to the side about to move.
func (p *Position) checkTurnStart() {
	var mustSlide = p.Phase == PhaseMoving ||
		p.Phase == PhasePlacing && p.InHand[p.SideToMove] == 0
	if mustSlide && !p.hasSlide(p.SideToMove) {
		if p.Rule.IsLoseButNotChangeSideWhenNoWay {
			p.setGameOver(p.SideToMove.Opponent(), ReasonNoLegalMoves)
			return
		}
		if !p.hasSlide(p.SideToMove.Opponent()) {
			p.setGameOver(NoColor, ReasonNoLegalMoves)
			return
		}
		p.SideToMove = p.SideToMove.Opponent()
		p.Key = p.computeKey()
	}
	if p.Phase != PhaseMoving {
		return
	}
	if p.Rule.MaxStepsLedToDraw > 0 && p.Rule50 >= p.Rule.MaxStepsLedToDraw {
		p.setGameOver(NoColor, ReasonRule50)
		return
	}
	if p.Rule.MaxStepsLedToDrawThreePieces > 0 &&
		(p.OnBoard[Black] <= p.Rule.FlyPieceCount || p.OnBoard[White] <= p.Rule.FlyPieceCount) &&
		p.Rule50 >= p.Rule.MaxStepsLedToDrawThreePieces {
		p.setGameOver(NoColor, ReasonRule50)
		return
	}
	if p.Rule.ThreefoldRepetitionRule && p.repetitions() >= 2 {
		p.setGameOver(NoColor, ReasonRepetition)
	}
}

// repetitions counts earlier occurrences of the current position since the last removal.
func (p *Position) repetitions() int {
	var count = 0
	for i := len(p.history) - 1; i >= 0 && i >= len(p.history)-p.Rule50-1; i-- {
		if p.history[i].Key == p.Key {
			count++
		}
	}
	return count
}

func (p *Position) setGameOver(winner Color, reason GameOverReason) {
	p.Phase = PhaseGameOver
	p.Action = ActionSelect
	p.NeedRemove = 0
	p.Winner = winner
	p.Reason = reason
	p.Key = p.computeKey()
	p.checkInvariants()
}

func (p *Position) checkInvariants() {
	for c := Black; c <= White; c++ {
		if p.InHand[c] < 0 || p.OnBoard[c] < 0 {
			fault("negative piece count for %v: hand %v board %v", c, p.InHand[c], p.OnBoard[c])
		}
		if p.OnBoard[c] != PopCount(p.ByColor[c]) {
			fault("board count mismatch for %v: %v != %v", c, p.OnBoard[c], PopCount(p.ByColor[c]))
		}
		if p.OnBoard[c]+p.InHand[c] > p.Rule.PiecesCount {
			fault("too many pieces for %v", c)
		}
	}
	if p.ByColor[Black]&p.ByColor[White] != 0 {
		fault("overlapping pieces")
	}
	if p.NeedRemove < 0 || (p.Action == ActionRemove) != (p.NeedRemove > 0) {
		fault("action %v with %v pieces to remove", p.Action, p.NeedRemove)
	}
}

func (p *Position) occupied() uint32 {
	return p.ByColor[Black] | p.ByColor[White] | p.Banned
}

func (p *Position) emptyMask() uint32 {
	return allSquares &^ p.occupied()
}

func (p *Position) emptySquares() int {
	return PopCount(p.emptyMask())
}

func (p *Position) millsAt(sq int, c Color) int {
	var count = 0
	for _, mill := range p.topo.millsBySquare[sq] {
		if p.ByColor[c]&mill == mill {
			count++
		}
	}
	return count
}

func (p *Position) inMill(sq int, c Color) bool {
	return p.millsAt(sq, c) > 0
}

func (p *Position) allInMills(c Color) bool {
	for x := p.ByColor[c]; x != 0; x &= x - 1 {
		if !p.inMill(FirstOne(x), c) {
			return false
		}
	}
	return true
}

// IsInMill reports whether the piece on sq belongs to a closed mill.
func (p *Position) IsInMill(sq int) bool {
	switch p.Board[sq] {
	case PieceBlack:
		return p.inMill(sq, Black)
	case PieceWhite:
		return p.inMill(sq, White)
	}
	return false
}

func (p *Position) canFly(c Color) bool {
	return p.Rule.MayFly && p.Phase == PhaseMoving &&
		p.InHand[c] == 0 && p.OnBoard[c] <= p.Rule.FlyPieceCount
}

func (p *Position) String() string {
	var grid [7][7]byte
	for i := range grid {
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}
	var seatOffsets = [SeatNB][2]int{{-1, 0}, {-1, 1}, {0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}}
	for sq := 0; sq < SquareNB; sq++ {
		var d = Ring(sq) + 1
		var o = seatOffsets[Seat(sq)]
		grid[3+o[0]*d][3+o[1]*d] = p.Board[sq].Char()
	}
	var sb strings.Builder
	for i := range grid {
		sb.Write(grid[i][:])
		sb.WriteByte('\n')
	}
	sb.WriteString(p.SideToMove.String())
	sb.WriteString(" to ")
	sb.WriteString(p.Action.String())
	sb.WriteString(", phase ")
	sb.WriteString(p.Phase.String())
	if p.Phase == PhaseGameOver {
		sb.WriteString(", winner ")
		sb.WriteString(p.Winner.String())
		sb.WriteString(" (")
		sb.WriteString(p.Reason.String())
		sb.WriteString(")")
	}
	return sb.String()
}
