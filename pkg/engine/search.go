package engine

import (
	"errors"

	. "github.com/millgame/mill/pkg/common"
)

var errSearchTimeout = errors.New("search timeout")

// iterativeDeepening keeps the result of the last fully searched depth.
// A deeper pass that is interrupted is discarded.
func iterativeDeepening(e *Engine, ml []Move) {
	defer func() {
		if r := recover(); r != nil {
			if r == errSearchTimeout {
				return
			}
			panic(r)
		}
	}()

	var t = &e.thread
	var depth = 1
	if !e.IterativeDeepening {
		depth = e.ceiling
	}
	for ; depth <= e.ceiling; depth++ {
		if e.timeManager.IsDone() {
			return
		}
		var score = t.searchRoot(ml, depth)
		e.onIterationComplete(t, depth, score)
	}
}

// searchRoot searches the root moves in the given order with a full window.
// Of moves with equal scores the first one wins.
func (t *thread) searchRoot(ml []Move, depth int) int {
	const height = 0
	t.clearPV(height)
	var position = t.position
	var us = position.SideToMove
	var alpha, beta = -valueInfinity, valueInfinity
	var best = -valueInfinity
	var bestMove Move
	for _, move := range ml {
		t.makeMove(move)
		var score = t.childScore(us, alpha, beta, depth-1, height+1)
		t.unmakeMove()
		if score > best {
			best = score
			bestMove = move
			alpha = Max(alpha, score)
			t.assignPV(height, move)
		}
	}
	t.engine.transTable.Update(position.Key, depth, valueToTT(best, height), boundExact, bestMove)
	return best
}

// childScore scores the position after a move from the mover's point of view.
// After a mill the mover moves again, so the score is not negated.
func (t *thread) childScore(us Color, alpha, beta, depth, height int) int {
	if t.position.SideToMove == us {
		return t.alphaBeta(alpha, beta, depth, height)
	}
	return -t.alphaBeta(-beta, -alpha, depth, height)
}

// main search method
func (t *thread) alphaBeta(alpha, beta, depth, height int) int {
	t.clearPV(height)
	t.incNodes()

	var e = t.engine
	var position = t.position
	if position.IsGameOver() {
		return t.terminalScore(height)
	}
	if height >= maxHeight {
		return t.evaluator.Evaluate(position)
	}
	if e.endgame != nil && inEndgameScope(position, e.EndgameMaxPieces) {
		if outcome, ok := e.endgame.Lookup(position.Key); ok {
			return endgameScore(outcome, height)
		}
	}
	if depth <= 0 {
		return t.evaluator.Evaluate(position)
	}

	var ttValue, ttMove, ttHit = e.transTable.Lookup(position.Key, depth, height, alpha, beta)
	if ttHit {
		return ttValue
	}

	var us = position.SideToMove
	var mi = moveIterator{
		position:  position,
		buffer:    t.stack[height].moveList[:],
		history:   &t.history,
		transMove: ttMove,
	}
	mi.Init()

	var searched = t.stack[height].searched[:0]
	var best = -valueInfinity
	var bestMove Move
	var oldAlpha = alpha

	for mi.Reset(); ; {
		var move = mi.Next()
		if move == MoveEmpty {
			break
		}
		t.makeMove(move)
		var score = t.childScore(us, alpha, beta, depth-1, height+1)
		t.unmakeMove()
		searched = append(searched, move)

		if score > best {
			best = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			t.assignPV(height, move)
			if alpha >= beta {
				break
			}
		}
	}

	if bestMove == MoveEmpty {
		return lossIn(height)
	}

	if alpha > oldAlpha {
		t.history.Update(us, searched, bestMove, depth)
	}

	var ttBound = 0
	if best > oldAlpha {
		ttBound |= boundLower
	}
	if best < beta {
		ttBound |= boundUpper
	}
	e.transTable.Update(position.Key, depth, valueToTT(best, height), ttBound, bestMove)

	return best
}

func (t *thread) terminalScore(height int) int {
	var v = t.evaluator.Evaluate(t.position)
	if v > 0 {
		return winIn(height)
	}
	if v < 0 {
		return lossIn(height)
	}
	return valueDraw
}

func (t *thread) incNodes() {
	t.nodes++
	var tm = t.engine.timeManager
	if t.nodes&255 == 0 {
		tm.OnNodesChanged(int(t.engine.nodes + t.nodes))
	}
	if tm.IsDone() {
		panic(errSearchTimeout)
	}
}

func (t *thread) makeMove(move Move) {
	if err := t.position.Apply(move); err != nil {
		panic(EngineFault{Reason: "generated move rejected: " + err.Error()})
	}
}

func (t *thread) unmakeMove() {
	if err := t.position.UndoLast(); err != nil {
		panic(EngineFault{Reason: "undo failed: " + err.Error()})
	}
}

func (t *thread) clearPV(height int) {
	t.stack[height].pv.clear()
}

func (t *thread) assignPV(height int, m Move) {
	t.stack[height].pv.assign(m, &t.stack[height+1].pv)
}
