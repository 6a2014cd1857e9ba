package eval

import (
	"github.com/millgame/mill/pkg/common"
)

// ValueTerminal is the magnitude of a decided game.
const ValueTerminal = 20000

type Weights struct {
	InHand            int
	OnBoardPlacing    int
	PlacingNeedRemove int
	OnBoardMoving     int
	MovingNeedRemove  int
	Mobility          int
}

var DefaultWeights = Weights{
	InHand:            50,
	OnBoardPlacing:    50,
	PlacingNeedRemove: 50,
	OnBoardMoving:     60,
	MovingNeedRemove:  60,
	Mobility:          2,
}

type Features struct {
	Mobility bool
}

type EvaluationService struct {
	Weights
	Features
}

func NewEvaluationService() *EvaluationService {
	return &EvaluationService{Weights: DefaultWeights}
}

func NewMobilityEvaluationService() *EvaluationService {
	return &EvaluationService{
		Weights:  DefaultWeights,
		Features: Features{Mobility: true},
	}
}

// Evaluate returns the score for the side to move.
func (e *EvaluationService) Evaluate(p *common.Position) int {
	var eval int
	switch p.Phase {
	case common.PhaseReady, common.PhasePlacing:
		eval = e.InHand*(p.InHand[common.Black]-p.InHand[common.White]) +
			e.OnBoardPlacing*(p.OnBoard[common.Black]-p.OnBoard[common.White]) +
			e.PlacingNeedRemove*removalDebt(p)
	case common.PhaseMoving:
		eval = e.OnBoardMoving*(p.OnBoard[common.Black]-p.OnBoard[common.White]) +
			e.MovingNeedRemove*removalDebt(p)
		if e.Features.Mobility {
			eval += e.Weights.Mobility * p.MobilityDiff()
		}
	case common.PhaseGameOver:
		eval = terminal(p)
	}
	if p.SideToMove == common.White {
		eval = -eval
	}
	return eval
}

// removalDebt is positive while black has removals pending.
func removalDebt(p *common.Position) int {
	if p.Action != common.ActionRemove {
		return 0
	}
	if p.SideToMove == common.Black {
		return p.NeedRemove
	}
	return -p.NeedRemove
}

func terminal(p *common.Position) int {
	switch p.Reason {
	case common.ReasonRule50, common.ReasonRepetition:
		return 0
	}
	switch p.Winner {
	case common.Black:
		return ValueTerminal
	case common.White:
		return -ValueTerminal
	}
	return 0
}
