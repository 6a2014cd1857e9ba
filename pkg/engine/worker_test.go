package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/millgame/mill/pkg/command"
	. "github.com/millgame/mill/pkg/common"
)

func newTestWorker() (*Worker, *command.Channel) {
	var commands = command.NewChannel(command.DefaultCapacity)
	return NewWorker(newTestEngine(testOptions()), commands, zerolog.Nop()), commands
}

func moveCommands(msgs []string) []string {
	var result []string
	for _, msg := range msgs {
		if !strings.HasPrefix(msg, "info ") {
			result = append(result, msg)
		}
	}
	return result
}

func TestWorkerEmitsBestMove(t *testing.T) {
	var w, commands = newTestWorker()
	var p = newGame(t, "(1,8)", "(3,5)", "(1,1)", "(3,3)")
	if err := w.Start(context.Background(), p, LimitsType{Depth: 2}); err != nil {
		t.Fatal(err)
	}
	var si, err = w.Wait()
	if err != nil {
		t.Fatal(err)
	}
	if w.State() != WorkerFinished {
		t.Error(w.State())
	}
	var got = moveCommands(commands.Drain())
	if len(got) != 1 || got[0] != "(1,2)" || si.BestMove().String() != "(1,2)" {
		t.Error(got, si.BestMove())
	}
}

func TestWorkerStopReturnsCompletedDepth(t *testing.T) {
	var w, commands = newTestWorker()
	if err := w.Start(context.Background(), newGame(t), LimitsType{Infinite: true}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	var si, err = w.Stop()
	if err != nil {
		t.Fatal(err)
	}
	if w.State() != WorkerIdle {
		t.Error(w.State())
	}
	var msgs = commands.Drain()
	if moves := moveCommands(msgs); len(moves) != 0 {
		t.Error("stop emitted", moves)
	}
	if len(msgs) == 0 {
		t.Fatal("no completed depth")
	}
	var last = msgs[len(msgs)-1]
	if !strings.HasPrefix(last, fmt.Sprintf("info depth %d ", si.Depth)) {
		t.Error(last, si.Depth)
	}
	if si.BestMove() == MoveEmpty {
		t.Error("no best move")
	}
}

func TestWorkerAct(t *testing.T) {
	var w, commands = newTestWorker()
	if err := w.Start(context.Background(), newGame(t), LimitsType{Infinite: true}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	var si, err = w.Act()
	if err != nil {
		t.Fatal(err)
	}
	if w.State() != WorkerFinished {
		t.Error(w.State())
	}
	var got = moveCommands(commands.Drain())
	if len(got) != 1 || got[0] != si.BestMove().String() {
		t.Error(got, si.BestMove())
	}
}

func TestWorkerPauseResume(t *testing.T) {
	var w, _ = newTestWorker()
	if err := w.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Error(err)
	}
	if err := w.Pause(); !errors.Is(err, ErrNotSearching) {
		t.Error(err)
	}
	if err := w.Start(context.Background(), newGame(t), LimitsType{Depth: 100, MoveTime: 100}); err != nil {
		t.Fatal(err)
	}
	if err := w.Pause(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)
	if w.State() != WorkerPaused {
		t.Fatal("paused time counted against the budget", w.State())
	}
	if err := w.Resume(); err != nil {
		t.Fatal(err)
	}
	if err := w.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Error(err)
	}
	if _, err := w.Wait(); err != nil {
		t.Fatal(err)
	}
	if w.State() != WorkerFinished {
		t.Error(w.State())
	}
}

func TestWorkerStopWhilePaused(t *testing.T) {
	var w, commands = newTestWorker()
	if err := w.Start(context.Background(), newGame(t), LimitsType{Infinite: true}); err != nil {
		t.Fatal(err)
	}
	if err := w.Pause(); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if w.State() != WorkerIdle {
		t.Error(w.State())
	}
	if moves := moveCommands(commands.Drain()); len(moves) != 0 {
		t.Error(moves)
	}
}

func TestWorkerBusy(t *testing.T) {
	var w, _ = newTestWorker()
	var p = newGame(t)
	if err := w.Start(context.Background(), p, LimitsType{Infinite: true}); err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background(), p, LimitsType{Infinite: true}); !errors.Is(err, ErrWorkerBusy) {
		t.Error(err)
	}
	w.Stop()
	if err := w.Start(context.Background(), p, LimitsType{Depth: 1}); err != nil {
		t.Error("start after stop", err)
	}
	w.Wait()
}

func TestWorkerParentCancel(t *testing.T) {
	var w, commands = newTestWorker()
	var ctx, cancel = context.WithCancel(context.Background())
	if err := w.Start(ctx, newGame(t), LimitsType{Infinite: true}); err != nil {
		t.Fatal(err)
	}
	cancel()
	w.Wait()
	if w.State() != WorkerCancelled {
		t.Error(w.State())
	}
	if moves := moveCommands(commands.Drain()); len(moves) != 0 {
		t.Error(moves)
	}
}

func TestWorkerParentCancelWhilePaused(t *testing.T) {
	var w, commands = newTestWorker()
	var ctx, cancel = context.WithCancel(context.Background())
	if err := w.Start(ctx, newGame(t), LimitsType{Infinite: true}); err != nil {
		t.Fatal(err)
	}
	if err := w.Pause(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	cancel()
	var finished = make(chan struct{})
	go func() {
		defer close(finished)
		w.Wait()
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("paused worker did not end after its context was cancelled")
	}
	if w.State() != WorkerCancelled {
		t.Error(w.State())
	}
	if moves := moveCommands(commands.Drain()); len(moves) != 0 {
		t.Error(moves)
	}
}

func TestWorkerGameOver(t *testing.T) {
	var w, _ = newTestWorker()
	var p = newGame(t, "(1,1)")
	p.Resign(Black)
	if err := w.Start(context.Background(), p, LimitsType{}); !errors.Is(err, ErrNoLegalSearch) {
		t.Error(err)
	}
	if w.State() != WorkerIdle {
		t.Error(w.State())
	}
}

func TestWorkerResign(t *testing.T) {
	var rule, _ = RuleByIndex(DefaultRuleIndex)
	var p, err = NewMovingPosition(rule,
		squares(t, "(1,1)", "(2,5)", "(3,7)", "(2,3)"),
		squares(t, "(3,4)", "(1,6)", "(2,7)", "(3,8)"), White)
	if err != nil {
		t.Fatal(err)
	}
	// every reply of white is a known loss
	var cache = NewEndgameCache("", zerolog.Nop())
	var buffer [MaxMoves]OrderedMove
	for _, om := range p.GenerateMoves(buffer[:]) {
		if err := p.Apply(om.Move); err != nil {
			t.Fatal(err)
		}
		if err := cache.Record(p.Key, OutcomeWin); err != nil {
			t.Fatal(err)
		}
		p.UndoLast()
	}

	var options = testOptions()
	options.ResignIfMostLose = true
	options.EndgameMaxPieces = 8
	var e = newTestEngine(options)
	e.SetEndgameCache(cache)
	var commands = command.NewChannel(4)
	var w = NewWorker(e, commands, zerolog.Nop())
	if err := w.Start(context.Background(), p, LimitsType{Depth: 1}); err != nil {
		t.Fatal(err)
	}
	w.Wait()
	if got := moveCommands(commands.Drain()); len(got) != 1 || got[0] != ResignCommand {
		t.Error(got)
	}
}

func TestWorkerOfferDraw(t *testing.T) {
	var w, commands = newTestWorker()
	var p = newWinningEndgame(t)
	if err := w.Start(context.Background(), p, LimitsType{Depth: 2}); err != nil {
		t.Fatal(err)
	}
	w.Wait()
	commands.Drain()
	if w.OfferDraw() {
		t.Error("winning side accepted a draw")
	}
	if msg, _ := commands.Read(); msg != DrawDeclinedCommand {
		t.Error(msg)
	}
}
