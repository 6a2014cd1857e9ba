package common

import "time"

type Color int

const (
	Black Color = iota
	White
	NoColor
)

const ColorNB = 2

func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "none"
}

type Phase int

const (
	PhaseReady Phase = iota
	PhasePlacing
	PhaseMoving
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhasePlacing:
		return "placing"
	case PhaseMoving:
		return "moving"
	case PhaseGameOver:
		return "gameOver"
	}
	return "unknown"
}

type Action int

const (
	ActionSelect Action = iota
	ActionPlace
	ActionRemove
)

func (a Action) String() string {
	switch a {
	case ActionSelect:
		return "select"
	case ActionPlace:
		return "place"
	case ActionRemove:
		return "remove"
	}
	return "unknown"
}

type Piece uint8

const (
	PieceEmpty Piece = iota
	PieceBlack
	PieceWhite
	PieceBanned
)

func PieceOf(c Color) Piece {
	return PieceBlack + Piece(c)
}

func (p Piece) Char() byte {
	return ".@Ox"[p]
}

type GameOverReason int

const (
	ReasonNone GameOverReason = iota
	ReasonBoardFull
	ReasonNoLegalMoves
	ReasonFewPieces
	ReasonRule50
	ReasonRepetition
	ReasonResign
)

func (r GameOverReason) String() string {
	switch r {
	case ReasonBoardFull:
		return "board full"
	case ReasonNoLegalMoves:
		return "no legal moves"
	case ReasonFewPieces:
		return "too few pieces"
	case ReasonRule50:
		return "move rule"
	case ReasonRepetition:
		return "threefold repetition"
	case ReasonResign:
		return "resignation"
	}
	return "none"
}

type LimitsType struct {
	Infinite bool
	Depth    int
	MoveTime int // milliseconds
}

type SearchParams struct {
	Position *Position
	Limits   LimitsType
	Progress func(si SearchInfo)
	// Wait blocks while the search is paused and returns the time spent waiting.
	Wait func() time.Duration
}

type SearchInfo struct {
	Score    int
	Depth    int
	Nodes    int64
	Time     time.Duration
	MainLine []Move
}

func (si *SearchInfo) BestMove() Move {
	if len(si.MainLine) == 0 {
		return MoveEmpty
	}
	return si.MainLine[0]
}
