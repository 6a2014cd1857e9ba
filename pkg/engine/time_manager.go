package engine

import (
	"context"
	"sync/atomic"
	"time"

	. "github.com/millgame/mill/pkg/common"
)

// timeManager owns the stop flag of one search. The flag is raised when the
// context is done, when the move time is spent or when the depth limit is reached.
// Time spent paused does not count.
type timeManager struct {
	start     time.Time
	limits    LimitsType
	hardLimit time.Duration
	paused    time.Duration
	wait      func() time.Duration
	done      atomic.Bool
	stop      func() bool
}

func newTimeManager(ctx context.Context, start time.Time,
	limits LimitsType, moveTime int, wait func() time.Duration) *timeManager {

	var tm = &timeManager{
		start:  start,
		limits: limits,
		wait:   wait,
	}
	if limits.MoveTime > 0 {
		tm.hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
	} else if moveTime > 0 && !limits.Infinite {
		tm.hardLimit = time.Duration(moveTime) * time.Millisecond
	}
	tm.stop = context.AfterFunc(ctx, func() {
		tm.done.Store(true)
	})
	return tm
}

func (tm *timeManager) IsDone() bool {
	return tm.done.Load()
}

// OnNodesChanged is called periodically from the search.
func (tm *timeManager) OnNodesChanged(nodes int) {
	if tm.wait != nil {
		tm.paused += tm.wait()
	}
	if tm.hardLimit != 0 && tm.Elapsed() >= tm.hardLimit {
		tm.done.Store(true)
	}
}

func (tm *timeManager) OnIterationComplete(line mainLine, ceiling int) {
	if line.depth >= ceiling {
		tm.done.Store(true)
		return
	}
	if tm.limits.Infinite {
		return
	}
	if line.score >= winIn(line.depth) ||
		line.score <= lossIn(line.depth) {
		tm.done.Store(true)
		return
	}
}

func (tm *timeManager) Elapsed() time.Duration {
	return time.Since(tm.start) - tm.paused
}

func (tm *timeManager) Close() {
	tm.stop()
}
