package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	. "github.com/millgame/mill/pkg/common"
)

var (
	ErrWorkerBusy   = errors.New("worker busy")
	ErrNotPaused    = errors.New("worker not paused")
	ErrNotSearching = errors.New("worker not searching")
)

type WorkerState int

const (
	WorkerIdle WorkerState = iota
	WorkerSearching
	WorkerPaused
	WorkerFinished
	WorkerCancelled
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerSearching:
		return "searching"
	case WorkerPaused:
		return "paused"
	case WorkerFinished:
		return "finished"
	case WorkerCancelled:
		return "cancelled"
	}
	return "unknown"
}

// CommandWriter receives the worker output. Write reports false when full.
type CommandWriter interface {
	Write(msg string) bool
}

const (
	ResignCommand       = "resign"
	DrawAcceptedCommand = "draw accepted"
	DrawDeclinedCommand = "draw declined"
)

const (
	emitRetries    = 50
	emitRetryDelay = 10 * time.Millisecond
)

type finishMode int

const (
	finishEmit finishMode = iota
	finishSilent
)

// Worker runs one search at a time on its own goroutine and reports the
// chosen move to a CommandWriter.
type Worker struct {
	engine   *Engine
	commands CommandWriter
	log      zerolog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	state  WorkerState
	mode   finishMode
	cancel context.CancelCauseFunc
	done   chan struct{}
	result SearchInfo
	err    error
}

func NewWorker(engine *Engine, commands CommandWriter, log zerolog.Logger) *Worker {
	var w = &Worker{
		engine:   engine,
		commands: commands,
		log:      log,
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *Worker) Engine() *Engine {
	return w.engine
}

func (w *Worker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

var (
	errStop = errors.New("stop")
	errAct  = errors.New("act")
)

// Start searches a private copy of p. The caller keeps ownership of p.
func (w *Worker) Start(ctx context.Context, p *Position, limits LimitsType) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == WorkerSearching || w.state == WorkerPaused {
		return ErrWorkerBusy
	}
	if p.IsGameOver() {
		return ErrNoLegalSearch
	}
	var searchCtx, cancel = context.WithCancelCause(ctx)
	w.state = WorkerSearching
	w.mode = finishEmit
	w.cancel = cancel
	w.done = make(chan struct{})
	w.result = SearchInfo{}
	w.err = nil
	var done = w.done
	context.AfterFunc(searchCtx, func() {
		w.wakePaused(done)
	})
	go w.run(searchCtx, cancel, p.Clone(), limits, done)
	return nil
}

// wakePaused resumes a paused search whose context ended.
func (w *Worker) wakePaused(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done == done && w.state == WorkerPaused {
		w.state = WorkerSearching
		w.cond.Broadcast()
	}
}

func (w *Worker) run(ctx context.Context, cancel context.CancelCauseFunc,
	p *Position, limits LimitsType, done chan struct{}) {
	defer close(done)
	var info, err = w.search(ctx, p, limits)
	var interrupted = ctx.Err() != nil
	var acted = context.Cause(ctx) == errAct
	cancel(nil)

	var emit bool
	w.mu.Lock()
	w.result = info
	w.err = err
	switch {
	case err != nil:
		w.state = WorkerCancelled
	case w.mode == finishSilent:
		w.state = WorkerIdle
	case interrupted && !acted:
		w.state = WorkerCancelled
	default:
		w.state = WorkerFinished
		emit = true
	}
	w.mu.Unlock()
	if emit {
		w.emit(info)
	}
}

func (w *Worker) search(ctx context.Context, p *Position, limits LimitsType) (info SearchInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			var fault, ok = r.(EngineFault)
			if !ok {
				panic(r)
			}
			w.log.Error().Str("reason", fault.Reason).Msg("engine fault")
			err = fmt.Errorf("search aborted: %w", fault)
		}
	}()
	w.log.Debug().
		Str("phase", p.Phase.String()).
		Str("side", p.SideToMove.String()).
		Msg("search started")
	info, err = w.engine.Search(ctx, SearchParams{
		Position: p,
		Limits:   limits,
		Progress: w.onProgress,
		Wait:     w.waitWhilePaused,
	})
	if err == nil {
		w.log.Debug().
			Int("depth", info.Depth).
			Int("score", info.Score).
			Int64("nodes", info.Nodes).
			Dur("time", info.Time).
			Msg("search finished")
	}
	return
}

func (w *Worker) onProgress(si SearchInfo) {
	var msg = fmt.Sprintf("info depth %d score %d nodes %d", si.Depth, si.Score, si.Nodes)
	if !w.commands.Write(msg) {
		w.log.Debug().Str("command", msg).Msg("progress dropped")
	}
}

func (w *Worker) waitWhilePaused() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != WorkerPaused {
		return 0
	}
	var start = time.Now()
	for w.state == WorkerPaused {
		w.cond.Wait()
	}
	return time.Since(start)
}

func (w *Worker) emit(info SearchInfo) {
	var msg string
	if w.engine.ResignIfMostLose && info.Depth > 0 && IsProvenLoss(info.Score) {
		msg = ResignCommand
	} else if m := info.BestMove(); m != MoveEmpty {
		msg = m.String()
	} else {
		return
	}
	w.write(msg)
}

func (w *Worker) write(msg string) {
	for i := 0; i < emitRetries; i++ {
		if w.commands.Write(msg) {
			w.log.Debug().Str("command", msg).Msg("command sent")
			return
		}
		time.Sleep(emitRetryDelay)
	}
	w.log.Warn().Str("command", msg).Msg("command channel full, dropped")
}

func (w *Worker) Pause() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != WorkerSearching {
		return ErrNotSearching
	}
	w.state = WorkerPaused
	return nil
}

func (w *Worker) Resume() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != WorkerPaused {
		return ErrNotPaused
	}
	w.state = WorkerSearching
	w.cond.Broadcast()
	return nil
}

// Stop cancels the search and waits for the worker to become idle.
// Nothing is emitted. The result of the last completed depth is returned.
func (w *Worker) Stop() (SearchInfo, error) {
	return w.finish(finishSilent, errStop)
}

// Act cancels the search and emits the best move found so far.
func (w *Worker) Act() (SearchInfo, error) {
	return w.finish(finishEmit, errAct)
}

func (w *Worker) finish(mode finishMode, cause error) (SearchInfo, error) {
	w.mu.Lock()
	var done = w.done
	if w.state == WorkerSearching || w.state == WorkerPaused {
		w.mode = mode
		w.state = WorkerSearching
		w.cancel(cause)
		w.cond.Broadcast()
	}
	w.mu.Unlock()
	if done != nil {
		<-done
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if mode == finishSilent && w.state != WorkerCancelled {
		w.state = WorkerIdle
	}
	return w.result, w.err
}

// Wait blocks until the current search ends.
func (w *Worker) Wait() (SearchInfo, error) {
	w.mu.Lock()
	var done = w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result, w.err
}

// OfferDraw answers a draw offer from the last search result.
func (w *Worker) OfferDraw() bool {
	w.mu.Lock()
	var accept = w.result.Depth > 0 && w.result.Score <= valueDraw
	w.mu.Unlock()
	if accept {
		w.write(DrawAcceptedCommand)
	} else {
		w.write(DrawDeclinedCommand)
	}
	return accept
}
