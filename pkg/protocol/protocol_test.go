package protocol

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/millgame/mill/pkg/command"
	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
	material "github.com/millgame/mill/pkg/eval/material"
)

func newTestProtocol() (*Protocol, *engine.Engine) {
	var options = engine.NewOptions()
	options.Hash = 1
	var eng = engine.NewEngine(func() interface{} {
		return material.NewEvaluationService()
	}, options, zerolog.Nop())
	var commands = command.NewChannel(command.DefaultCapacity)
	var worker = engine.NewWorker(eng, commands, zerolog.Nop())
	var pr = New("Mill", "test", worker, commands, common.NewCatalog(),
		[]Option{
			&IntOption{Name: "Hash", Min: 1, Max: 1024, Value: &eng.Options.Hash},
			&BoolOption{Name: "RandomOrdering", Value: &eng.Options.RandomOrdering},
		}, zerolog.Nop())
	return pr, eng
}

func run(t *testing.T, pr *Protocol, input ...string) string {
	t.Helper()
	var out bytes.Buffer
	var err = pr.Run(context.Background(), strings.NewReader(strings.Join(input, "\n")+"\n"), &out)
	if err != nil {
		t.Fatal(err)
	}
	return out.String()
}

func countLines(output, prefix string) int {
	var n = 0
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func TestGoAppliesReportedMove(t *testing.T) {
	var pr, _ = newTestProtocol()
	var output = run(t, pr,
		"newgame",
		"position startpos moves (1,8) (3,5) (1,1) (3,3)",
		"go depth 2")
	if !strings.Contains(output, "bestmove (1,2)\n") {
		t.Fatalf("no mill move in output:\n%v", output)
	}
	if !strings.Contains(output, "info depth 2 ") {
		t.Errorf("no progress in output:\n%v", output)
	}
	if pr.position.Action != common.ActionRemove || pr.position.SideToMove != common.Black {
		t.Errorf("move not applied: %v %v", pr.position.SideToMove, pr.position.Action)
	}
	if pr.position.HistoryLen() != 5 {
		t.Errorf("history %v", pr.position.HistoryLen())
	}
}

func TestRuleSelection(t *testing.T) {
	var pr, _ = newTestProtocol()
	var output = run(t, pr, "rules", "rule 1", "rule 9", "rule x")
	if countLines(output, "rule ") != len(common.Rules()) {
		t.Errorf("rules output:\n%v", output)
	}
	if countLines(output, "error ") != 2 {
		t.Errorf("expected two errors:\n%v", output)
	}
	var index, rule = pr.catalog.Active()
	if index != 1 || pr.position.Rule.Name != rule.Name || pr.position.Rule.PiecesCount != 12 {
		t.Errorf("active rule %v %v", index, pr.position.Rule.Name)
	}
}

func TestMoveAndUndo(t *testing.T) {
	var pr, _ = newTestProtocol()
	var output = run(t, pr, "move (1,1)", "move (1,1)", "move (9,9)", "undo")
	if countLines(output, "error ") != 2 {
		t.Errorf("expected two errors:\n%v", output)
	}
	if pr.position.HistoryLen() != 0 || pr.position.Board[0] != common.PieceEmpty {
		t.Error("undo did not restore the start position")
	}
	output = run(t, pr, "undo")
	if countLines(output, "error ") != 1 {
		t.Errorf("undo on empty history:\n%v", output)
	}
}

func TestSetOption(t *testing.T) {
	var pr, eng = newTestProtocol()
	var output = run(t, pr,
		"setoption name hash value 4",
		"setoption name RandomOrdering value true",
		"setoption name Hash value 100000",
		"setoption name Threads value 2",
		"options")
	if eng.Options.Hash != 4 || !eng.Options.RandomOrdering {
		t.Errorf("options not set: %+v", eng.Options)
	}
	if countLines(output, "error ") != 2 {
		t.Errorf("expected two errors:\n%v", output)
	}
	if countLines(output, "option name ") != 2 {
		t.Errorf("options output:\n%v", output)
	}
}

func TestCommandsRejectedWhileSearching(t *testing.T) {
	var pr, _ = newTestProtocol()
	var output = run(t, pr, "go infinite", "move (1,1)", "newgame", "d", "stop")
	if countLines(output, "error search still run") != 2 {
		t.Errorf("expected two rejected commands:\n%v", output)
	}
	if countLines(output, "stopped depth ") != 1 {
		t.Errorf("no stop report:\n%v", output)
	}
	if strings.Contains(output, "bestmove") {
		t.Errorf("stop must not report a move:\n%v", output)
	}
	if pr.position.HistoryLen() != 0 {
		t.Error("position changed")
	}
}

func TestStopAfterSearchEndedReportsMove(t *testing.T) {
	var pr, _ = newTestProtocol()
	var out bytes.Buffer
	pr.ctx = context.Background()
	pr.out = &out
	if err := pr.handle("go depth 1"); err != nil {
		t.Fatal(err)
	}
	if _, err := pr.worker.Wait(); err != nil {
		t.Fatal(err)
	}
	if err := pr.handle("stop"); err != nil {
		t.Fatal(err)
	}
	var output = out.String()
	if countLines(output, "bestmove ") != 1 || countLines(output, "stopped ") != 0 {
		t.Errorf("stop output:\n%v", output)
	}
	if pr.position.HistoryLen() != 1 {
		t.Errorf("history %v", pr.position.HistoryLen())
	}
}

func TestActReportsMove(t *testing.T) {
	var pr, _ = newTestProtocol()
	var output = run(t, pr, "go infinite", "act")
	if countLines(output, "bestmove ") != 1 {
		t.Fatalf("act output:\n%v", output)
	}
	if pr.position.HistoryLen() != 1 {
		t.Errorf("history %v", pr.position.HistoryLen())
	}
}

func TestGoOnFinishedGame(t *testing.T) {
	var pr, _ = newTestProtocol()
	if err := pr.position.Resign(common.Black); err != nil {
		t.Fatal(err)
	}
	var output = run(t, pr, "go depth 1")
	if countLines(output, "error ") != 1 || strings.Contains(output, "bestmove") {
		t.Errorf("go on a finished game:\n%v", output)
	}
}

func TestDrawOffer(t *testing.T) {
	var pr, _ = newTestProtocol()
	var output = run(t, pr, "draw")
	if !strings.Contains(output, engine.DrawDeclinedCommand+"\n") {
		t.Errorf("draw output:\n%v", output)
	}
}
