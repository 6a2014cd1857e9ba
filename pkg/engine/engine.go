package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	. "github.com/millgame/mill/pkg/common"
)

var ErrNoLegalSearch = errors.New("no legal search")

type Engine struct {
	Options
	evalBuilder func() interface{}
	log         zerolog.Logger
	endgame     *EndgameCache
	timeManager *timeManager
	transTable  *transTable
	rng         *frand.RNG
	thread      thread
	progress    func(SearchInfo)
	mainLine    mainLine
	ceiling     int
	nodes       int64
}

type thread struct {
	engine    *Engine
	evaluator IEvaluator
	history   historyService
	position  *Position
	nodes     int64
	stack     [stackSize]struct {
		moveList [MaxMoves]OrderedMove
		searched [MaxMoves]Move
		pv       pv
	}
}

type pv struct {
	items [stackSize]Move
	size  int
}

type mainLine struct {
	moves []Move
	score int
	depth int
}

type IEvaluator interface {
	Evaluate(p *Position) int
}

func NewEngine(evalBuilder func() interface{}, options Options, log zerolog.Logger) *Engine {
	var e = &Engine{
		Options:     options,
		evalBuilder: evalBuilder,
		log:         log,
	}
	e.thread.engine = e
	return e
}

// SetEndgameCache attaches a shared endgame cache, nil detaches it.
func (e *Engine) SetEndgameCache(c *EndgameCache) {
	e.endgame = c
}

func (e *Engine) EndgameCache() *EndgameCache {
	return e.endgame
}

func (e *Engine) Prepare() {
	e.Options.normalize()
	if e.transTable == nil || e.transTable.Size() != e.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Hash)
	}
	if e.thread.evaluator == nil {
		e.thread.evaluator = e.buildEvaluator()
	}
	if e.rng == nil {
		e.rng = newRNG(e.Seed)
	}
}

func newRNG(seed uint64) *frand.RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return frand.NewCustom(key[:], 1024, 12)
}

// Clear forgets everything learned in the previous game.
func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	e.thread.history.Clear()
	e.rng = nil
}

func (e *Engine) Search(ctx context.Context, searchParams SearchParams) (SearchInfo, error) {
	var root = searchParams.Position
	if root == nil || root.IsGameOver() {
		return SearchInfo{}, ErrNoLegalSearch
	}
	var start = time.Now()
	e.Prepare()
	var p = root.Clone()
	p.Start()
	e.timeManager = newTimeManager(ctx, start, searchParams.Limits, e.MoveTime, searchParams.Wait)
	defer e.timeManager.Close()
	e.transTable.IncDate()
	e.ceiling = e.depthCeiling(p, searchParams.Limits)
	e.progress = searchParams.Progress
	e.nodes = 0
	var t = &e.thread
	t.nodes = 0
	t.position = p

	var rootKey = p.Key
	var learn = e.LearnEndgame && e.endgame != nil && inEndgameScope(p, e.EndgameMaxPieces)
	var ml = e.genRootMoves()
	if len(ml) == 0 {
		return SearchInfo{}, ErrNoLegalSearch
	}
	e.mainLine = mainLine{moves: []Move{ml[0]}}
	if len(ml) > 1 {
		iterativeDeepening(e, ml)
	}
	e.nodes += t.nodes
	t.nodes = 0
	t.position = nil

	if learn && e.mainLine.depth > 0 {
		e.learnEndgame(rootKey, e.mainLine.score)
	}
	return e.currentSearchResult(), nil
}

func (e *Engine) learnEndgame(key uint64, score int) {
	var outcome Outcome
	if IsProvenWin(score) {
		outcome = OutcomeWin
	} else if IsProvenLoss(score) {
		outcome = OutcomeLoss
	} else {
		return
	}
	if err := e.endgame.Record(key, outcome); err != nil {
		e.log.Warn().Err(err).Msg("endgame record failed")
	}
}

func (e *Engine) depthCeiling(p *Position, limits LimitsType) int {
	if limits.Depth > 0 {
		return Min(limits.Depth, maxHeight)
	}
	if limits.Infinite {
		return maxHeight
	}
	if p.Phase == PhaseMoving {
		return e.MovingDepth
	}
	var depth = e.PlacingDepth
	if e.DynamicPlacingDepth {
		var placed = 2*p.Rule.PiecesCount - p.InHand[Black] - p.InHand[White]
		depth = Min(depth+placed/4, Max(e.MovingDepth, e.PlacingDepth))
	}
	return depth
}

func (e *Engine) genRootMoves() []Move {
	var t = &e.thread
	var buffer = t.stack[0].moveList[:]
	var result []Move
	for _, om := range t.position.GenerateMoves(buffer) {
		result = append(result, om.Move)
	}
	if e.RandomOrdering {
		e.rng.Shuffle(len(result), func(i, j int) {
			result[i], result[j] = result[j], result[i]
		})
	}
	return result
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    e.mainLine.score,
		Nodes:    e.nodes,
		Time:     e.timeManager.Elapsed(),
	}
}

func (e *Engine) onIterationComplete(t *thread, depth, score int) {
	e.nodes += t.nodes
	t.nodes = 0
	e.mainLine = mainLine{
		depth: depth,
		score: score,
		moves: t.stack[0].pv.toSlice(),
	}
	e.log.Debug().
		Int("depth", depth).
		Int("score", score).
		Int64("nodes", e.nodes).
		Str("move", e.mainLine.moves[0].String()).
		Msg("iteration complete")
	e.timeManager.OnIterationComplete(e.mainLine, e.ceiling)
	if e.progress != nil && e.nodes >= int64(e.ProgressMinNodes) {
		e.progress(e.currentSearchResult())
	}
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

func (e *Engine) buildEvaluator() IEvaluator {
	var evaluationService = e.evalBuilder()
	if e, ok := evaluationService.(IEvaluator); ok {
		return e
	}
	panic(errors.New("bad eval builder"))
}
