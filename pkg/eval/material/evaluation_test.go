package eval

import (
	"testing"

	"github.com/millgame/mill/pkg/common"
)

func newPosition(t *testing.T) *common.Position {
	var rule, err = common.RuleByIndex(common.DefaultRuleIndex)
	if err != nil {
		t.Fatal(err)
	}
	return common.NewPosition(rule)
}

func play(t *testing.T, p *common.Position, moves ...string) {
	for _, s := range moves {
		var m, err = common.ParseMove(s)
		if err != nil {
			t.Fatal(err)
		}
		if err = p.Apply(m); err != nil {
			t.Fatal(s, err)
		}
	}
}

func TestEvaluatePlacing(t *testing.T) {
	var e = NewEvaluationService()
	var p = newPosition(t)
	if score := e.Evaluate(p); score != 0 {
		t.Error("start", score)
	}
	play(t, p, "(1,1)")
	// black has one piece on board, white one more in hand
	if score := e.Evaluate(p); score != 0 {
		t.Error("symmetric material", score)
	}
	play(t, p, "(3,5)", "(1,8)", "(3,6)", "(1,2)")
	var pending = e.Evaluate(p)
	if pending != DefaultWeights.PlacingNeedRemove {
		t.Error("pending removal", pending)
	}
	play(t, p, "-(3,5)")
	// white to move, one piece down
	if score := e.Evaluate(p); score != -DefaultWeights.OnBoardPlacing {
		t.Error("after removal", score)
	}
}

func TestEvaluateSideSymmetry(t *testing.T) {
	var e = NewEvaluationService()
	var p = newPosition(t)
	play(t, p, "(1,8)", "(3,5)", "(1,1)", "(3,6)", "(1,2)", "-(3,5)")
	var white = e.Evaluate(p)
	play(t, p, "(2,2)")
	var black = e.Evaluate(p)
	if white != -black {
		t.Error(white, black)
	}
}

func TestEvaluateGameOver(t *testing.T) {
	var e = NewEvaluationService()
	var p = newPosition(t)
	play(t, p, "(1,1)")
	if err := p.Resign(common.White); err != nil {
		t.Fatal(err)
	}
	// white is still the side to move and has lost
	if score := e.Evaluate(p); score != -ValueTerminal {
		t.Error(score)
	}
}

// Mobility weighting is provisional until the intended formula is confirmed.
func TestEvaluateMobilityFeature(t *testing.T) {
	var plain = NewEvaluationService()
	var mobility = NewMobilityEvaluationService()
	var p = newPosition(t)
	if plain.Evaluate(p) != mobility.Evaluate(p) {
		t.Error("mobility must not affect placing")
	}
}
