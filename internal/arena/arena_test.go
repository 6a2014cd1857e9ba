package arena

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

func testConfig(t *testing.T) Config {
	var cfg = NewConfig()
	cfg.Concurrency = 2
	cfg.Openings = 1
	cfg.OpeningPlies = 2
	cfg.Depth = 1
	cfg.MaxPlies = 200
	cfg.Seed = 7
	cfg.OptionsA.Hash = 1
	cfg.OptionsB.Hash = 1
	cfg.EndgameFile = filepath.Join(t.TempDir(), "endgame.gob")
	return cfg
}

func TestRunPlaysAllGames(t *testing.T) {
	var cfg = testConfig(t)
	cfg.OptionsA.LearnEndgame = true
	cfg.EvalB = "mobility"
	var summary, err = Run(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Games != 2 || summary.Wins+summary.Losses+summary.Draws != 2 {
		t.Errorf("%+v", summary)
	}
	if _, err := os.Stat(cfg.EndgameFile); err != nil {
		t.Error("endgame store not flushed", err)
	}
	var cache = engine.NewEndgameCache(cfg.EndgameFile, zerolog.Nop())
	if err := cache.LoadFromStore(); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != summary.EndgameEntries {
		t.Error(cache.Len(), summary.EndgameEntries)
	}
}

func TestRunActsWhenMoveTimeIsOver(t *testing.T) {
	var cfg = testConfig(t)
	cfg.Depth = 0
	cfg.MoveTime = 5 * time.Millisecond
	cfg.MaxPlies = 12
	var summary, err = Run(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Games != 2 {
		t.Errorf("%+v", summary)
	}
}

func TestRunBadRule(t *testing.T) {
	var cfg = testConfig(t)
	cfg.RuleIndex = 99
	if _, err := Run(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Error("expected error")
	}
}

func TestRandomOpeningIsSeeded(t *testing.T) {
	var rule, _ = common.RuleByIndex(common.DefaultRuleIndex)
	var a, err = randomOpening(rule, 6, newRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	b, err := randomOpening(rule, 6, newRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 6 || len(b) != 6 {
		t.Fatal(len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("ply %v: %v != %v", i, a[i], b[i])
		}
	}
}

func TestRandomEndgames(t *testing.T) {
	var rule, _ = common.RuleByIndex(common.DefaultRuleIndex)
	var positions, err = RandomEndgames(rule, 20, 7, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) == 0 {
		t.Fatal("no positions")
	}
	var keys = make(map[uint64]bool)
	for _, p := range positions {
		var total = p.OnBoard[common.Black] + p.OnBoard[common.White]
		if p.Phase != common.PhaseMoving || total > 7 ||
			p.OnBoard[common.Black] < rule.PiecesAtLeast || p.OnBoard[common.White] < rule.PiecesAtLeast {
			t.Errorf("bad endgame\n%v", p)
		}
		if keys[p.Key] {
			t.Error("duplicate position")
		}
		keys[p.Key] = true
	}
	if _, err := RandomEndgames(rule, 1, 5, 3); err == nil {
		t.Error("expected error for too few pieces")
	}
}

func squares(t *testing.T, names ...string) uint32 {
	t.Helper()
	var result uint32
	for _, name := range names {
		var sq, _, ok = common.ParseSquare(name)
		if !ok {
			t.Fatal(name)
		}
		result |= common.SquareMask(sq)
	}
	return result
}

func TestPrecomputeLearnsWin(t *testing.T) {
	var rule, _ = common.RuleByIndex(common.DefaultRuleIndex)
	var p, err = common.NewMovingPosition(rule,
		squares(t, "(1,8)", "(1,1)", "(1,3)", "(3,1)"),
		squares(t, "(3,4)", "(3,6)", "(2,8)"), common.Black)
	if err != nil {
		t.Fatal(err)
	}
	var cache = engine.NewEndgameCache("", zerolog.Nop())
	var options = engine.NewOptions()
	options.Hash = 1
	proven, err := Precompute(context.Background(), zerolog.Nop(),
		[]*common.Position{p}, cache, "", options, 2, 4)
	if err != nil {
		t.Fatal(err)
	}
	if proven != 1 {
		t.Error("proven", proven)
	}
	if outcome, ok := cache.Lookup(p.Key); !ok || outcome != engine.OutcomeWin {
		t.Error(outcome, ok)
	}
}

func TestComputeStat(t *testing.T) {
	var tests = []struct {
		wins, losses, draws int
		fraction, elo       float64
	}{
		{1, 1, 0, 0.5, 0},
		{0, 0, 4, 0.5, 0},
		{3, 1, 0, 0.75, 190.8},
	}
	for _, test := range tests {
		var stat = computeStat(test.wins, test.losses, test.draws)
		if math.Abs(stat.winningFraction-test.fraction) > 1e-9 ||
			math.Abs(stat.eloDifference-test.elo) > 0.1 {
			t.Errorf("%+v: %+v", test, stat)
		}
	}
}
