package common

import (
	"fmt"
	"sync/atomic"
)

type RuleVariant struct {
	Name        string
	Description string

	PiecesCount   int // per side
	FlyPieceCount int // a side may fly with this many pieces or fewer on board
	PiecesAtLeast int // a side with fewer pieces loses

	HasDiagonalLines bool
	MayFly           bool

	// Cells emptied by a removal stay banned until the moving phase.
	HasBannedLocations bool

	// Lasker Morris: a piece on the board may be moved instead of placing one.
	MayMoveInPlacingPhase bool

	// The side that placed last also moves first in the moving phase.
	IsDefenderMoveFirst bool

	// Closing several mills at once still removes one piece.
	SingleRemovalForMultiMill bool

	// Pieces in a mill may be removed even when other pieces are available.
	MayRemoveFromMillsAlways bool

	// Moving a piece back to the cell it just left does not close a mill.
	NoImmediateMillReform bool

	// A board filled during placing is a loss for black instead of a draw.
	IsBlackLoseButNotDrawWhenBoardFull bool

	// A side without legal moves loses instead of passing.
	IsLoseButNotChangeSideWhenNoWay bool

	MaxStepsLedToDraw            int
	MaxStepsLedToDrawThreePieces int
	ThreefoldRepetitionRule      bool
}

func (r *RuleVariant) Validate() error {
	if r.PiecesCount <= 0 || 2*r.PiecesCount > SquareNB {
		return fmt.Errorf("rule %q: bad piece count %v", r.Name, r.PiecesCount)
	}
	if r.FlyPieceCount < 0 || r.FlyPieceCount > r.PiecesCount {
		return fmt.Errorf("rule %q: bad fly piece count %v", r.Name, r.FlyPieceCount)
	}
	if r.PiecesAtLeast < 0 || r.PiecesAtLeast > r.PiecesCount {
		return fmt.Errorf("rule %q: bad pieces at least %v", r.Name, r.PiecesAtLeast)
	}
	if r.MaxStepsLedToDraw < 0 || r.MaxStepsLedToDrawThreePieces < 0 {
		return fmt.Errorf("rule %q: negative draw step limit", r.Name)
	}
	return nil
}

const DefaultRuleIndex = 2

var rules = [...]RuleVariant{
	{
		Name:                               "Cheng San Qi",
		Description:                        "9 pieces each, pieces in a mill are protected while others exist, no flying.",
		PiecesCount:                        9,
		FlyPieceCount:                      3,
		PiecesAtLeast:                      3,
		SingleRemovalForMultiMill:          true,
		IsBlackLoseButNotDrawWhenBoardFull: true,
		IsLoseButNotChangeSideWhenNoWay:    true,
		MaxStepsLedToDraw:                  100,
		MaxStepsLedToDrawThreePieces:       100,
		ThreefoldRepetitionRule:            true,
	},
	{
		Name:                               "Da San Qi",
		Description:                        "12 pieces each on a board with diagonals, emptied cells stay banned while placing.",
		PiecesCount:                        12,
		FlyPieceCount:                      3,
		PiecesAtLeast:                      3,
		HasDiagonalLines:                   true,
		HasBannedLocations:                 true,
		IsDefenderMoveFirst:                true,
		SingleRemovalForMultiMill:          true,
		MayRemoveFromMillsAlways:           true,
		IsBlackLoseButNotDrawWhenBoardFull: true,
		IsLoseButNotChangeSideWhenNoWay:    true,
		MaxStepsLedToDraw:                  100,
		MaxStepsLedToDrawThreePieces:       100,
		ThreefoldRepetitionRule:            true,
	},
	{
		Name:                               "Nine Men's Morris",
		Description:                        "Cheng San Qi where a side left with 3 pieces may fly to any empty cell.",
		PiecesCount:                        9,
		FlyPieceCount:                      3,
		PiecesAtLeast:                      3,
		SingleRemovalForMultiMill:          true,
		IsBlackLoseButNotDrawWhenBoardFull: true,
		IsLoseButNotChangeSideWhenNoWay:    true,
		MayFly:                             true,
		MaxStepsLedToDraw:                  100,
		MaxStepsLedToDrawThreePieces:       100,
		ThreefoldRepetitionRule:            true,
	},
	{
		Name:                               "Twelve Men's Morris",
		Description:                        "Nine Men's Morris with 12 pieces on a board with diagonals.",
		PiecesCount:                        12,
		FlyPieceCount:                      3,
		PiecesAtLeast:                      3,
		HasDiagonalLines:                   true,
		SingleRemovalForMultiMill:          true,
		IsBlackLoseButNotDrawWhenBoardFull: true,
		IsLoseButNotChangeSideWhenNoWay:    true,
		MayFly:                             true,
		MaxStepsLedToDraw:                  100,
		MaxStepsLedToDrawThreePieces:       100,
		ThreefoldRepetitionRule:            true,
	},
	{
		Name:                               "Lasker Morris",
		Description:                        "Nine Men's Morris with 10 pieces where pieces may move before all are placed.",
		PiecesCount:                        10,
		FlyPieceCount:                      3,
		PiecesAtLeast:                      3,
		MayMoveInPlacingPhase:              true,
		SingleRemovalForMultiMill:          true,
		IsBlackLoseButNotDrawWhenBoardFull: true,
		IsLoseButNotChangeSideWhenNoWay:    true,
		MayFly:                             true,
		MaxStepsLedToDraw:                  100,
		MaxStepsLedToDrawThreePieces:       100,
		ThreefoldRepetitionRule:            true,
	},
}

// Rules returns a copy of the built-in variants in catalog order.
func Rules() []RuleVariant {
	var result = make([]RuleVariant, len(rules))
	copy(result, rules[:])
	return result
}

func RuleByIndex(index int) (RuleVariant, error) {
	if index < 0 || index >= len(rules) {
		return RuleVariant{}, fmt.Errorf("%w: %v not in [0, %v)", ErrRuleIndexOutOfRange, index, len(rules))
	}
	return rules[index], nil
}

type activeRule struct {
	index int
	rule  RuleVariant
}

// Catalog tracks the selected variant. Readers always observe a whole variant.
type Catalog struct {
	active atomic.Pointer[activeRule]
}

func NewCatalog() *Catalog {
	var c = &Catalog{}
	c.active.Store(&activeRule{index: DefaultRuleIndex, rule: rules[DefaultRuleIndex]})
	return c
}

func (c *Catalog) Count() int {
	return len(rules)
}

func (c *Catalog) Select(index int) error {
	var rule, err = RuleByIndex(index)
	if err != nil {
		return err
	}
	c.active.Store(&activeRule{index: index, rule: rule})
	return nil
}

func (c *Catalog) Active() (int, RuleVariant) {
	var a = c.active.Load()
	return a.index, a.rule
}
