package arena

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/millgame/mill/internal/evalbuilder"
	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

// RandomEndgames returns up to n moving phase positions with at most
// maxPieces pieces on the board. Positions already decided are skipped.
func RandomEndgames(rule common.RuleVariant, n, maxPieces int, seed uint64) ([]*common.Position, error) {
	var least = common.Max(rule.PiecesAtLeast, 1)
	if maxPieces < 2*least {
		return nil, fmt.Errorf("max pieces %v below %v", maxPieces, 2*least)
	}
	var rng = newRNG(seed)
	var result []*common.Position
	var seen = make(map[uint64]bool)
	for attempt := 0; len(result) < n && attempt < 10*n; attempt++ {
		var black = least + rng.Intn(common.Min(rule.PiecesCount, maxPieces-least)-least+1)
		var white = least + rng.Intn(common.Min(rule.PiecesCount, maxPieces-black)-least+1)
		var cells = rng.Perm(common.SquareNB)
		var blackMask, whiteMask uint32
		for i := 0; i < black; i++ {
			blackMask |= common.SquareMask(cells[i])
		}
		for i := black; i < black+white; i++ {
			whiteMask |= common.SquareMask(cells[i])
		}
		var side = common.Color(rng.Intn(common.ColorNB))
		var p, err = common.NewMovingPosition(rule, blackMask, whiteMask, side)
		if err != nil {
			return nil, err
		}
		if p.IsGameOver() || seen[p.Key] {
			continue
		}
		seen[p.Key] = true
		result = append(result, p)
	}
	return result, nil
}

// Precompute searches positions concurrently and lets every engine record
// proven outcomes into endgame. It returns the number of proven positions.
func Precompute(
	ctx context.Context,
	log zerolog.Logger,
	positions []*common.Position,
	endgame *engine.EndgameCache,
	evalKey string,
	options engine.Options,
	concurrency int,
	depth int,
) (int, error) {
	log = log.With().Str("component", "precompute").Logger()
	options.LearnEndgame = true
	options.RandomOrdering = false
	for _, p := range positions {
		options.EndgameMaxPieces = common.Max(options.EndgameMaxPieces, p.OnBoard[common.Black]+p.OnBoard[common.White])
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	var tasks = make(chan *common.Position)
	var proven atomic.Int64

	g.Go(func() error {
		defer close(tasks)
		for _, p := range positions {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case tasks <- p:
			}
		}
		return nil
	})

	for i := 0; i < concurrency; i++ {
		g.Go(func() error {
			var eng = engine.NewEngine(evalbuilder.Get(evalKey), options, log)
			eng.SetEndgameCache(endgame)
			for p := range tasks {
				var si, err = eng.Search(ctx, common.SearchParams{
					Position: p,
					Limits:   common.LimitsType{Depth: depth},
				})
				if err != nil {
					return err
				}
				if engine.IsProvenWin(si.Score) || engine.IsProvenLoss(si.Score) {
					proven.Add(1)
				}
				eng.Clear()
			}
			return nil
		})
	}

	var err = g.Wait()
	log.Info().
		Int("positions", len(positions)).
		Int64("proven", proven.Load()).
		Int("entries", endgame.Len()).
		Msg("precompute finished")
	return int(proven.Load()), err
}
