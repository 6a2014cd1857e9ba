package engine

import (
	. "github.com/millgame/mill/pkg/common"
)

const (
	stackSize     = 128
	maxHeight     = stackSize - 1
	valueDraw     = 0
	valueMate     = 30000
	valueInfinity = valueMate + 1
	valueWin      = valueMate - 2*maxHeight
	valueLoss     = -valueWin
)

func winIn(height int) int {
	return valueMate - height
}

func lossIn(height int) int {
	return -valueMate + height
}

func valueToTT(v, height int) int {
	if v >= valueWin {
		return v + height
	}

	if v <= valueLoss {
		return v - height
	}

	return v
}

func valueFromTT(v, height int) int {
	if v >= valueWin {
		return v - height
	}

	if v <= valueLoss {
		return v + height
	}

	return v
}

// IsProvenWin reports a score the search proved to be a forced win.
func IsProvenWin(score int) bool {
	return score >= valueWin
}

func IsProvenLoss(score int) bool {
	return score <= valueLoss
}

// endgame outcomes are scored beyond any reachable search height
func endgameScore(outcome Outcome, height int) int {
	switch outcome {
	case OutcomeWin:
		return winIn(maxHeight + height)
	case OutcomeLoss:
		return lossIn(maxHeight + height)
	}
	return valueDraw
}

func inEndgameScope(p *Position, maxPieces int) bool {
	return p.Phase == PhaseMoving &&
		p.Action == ActionSelect &&
		p.OnBoard[Black]+p.OnBoard[White] <= maxPieces
}
