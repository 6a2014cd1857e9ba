// Package arena plays engine against engine games.
package arena

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

// Run plays cfg.Openings pairs of games. All engines share one endgame
// cache, it is loaded from and flushed to cfg.EndgameFile.
func Run(ctx context.Context, cfg Config, log zerolog.Logger) (Summary, error) {
	log = log.With().Str("component", "arena").Logger()
	log.Info().Msg("arena started")
	defer log.Info().Msg("arena finished")

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	log.Info().
		Int("NumCPU", runtime.NumCPU()).
		Int("GOMAXPROCS", runtime.GOMAXPROCS(0)).
		Int("gameConcurrency", cfg.Concurrency).
		Msg("settings")

	var rule, err = common.RuleByIndex(cfg.RuleIndex)
	if err != nil {
		return Summary{}, err
	}
	var endgame = engine.NewEndgameCache(cfg.EndgameFile, log)
	if err := endgame.LoadFromStore(); err != nil {
		log.Warn().Err(err).Msg("endgame store ignored")
	}

	g, ctx := errgroup.WithContext(ctx)

	var gameInfos = make(chan gameInfo)
	var gameResults = make(chan gameResult)
	var summary Summary

	g.Go(func() error {
		defer close(gameInfos)
		return loadOpenings(ctx, cfg, rule, gameInfos)
	})

	g.Go(func() error {
		summary = showResults(log, gameResults)
		return nil
	})

	var wg = &sync.WaitGroup{}

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return playGames(ctx, log, cfg, rule, endgame, gameInfos, gameResults)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(gameResults)
		return nil
	})

	err = g.Wait()
	if flushErr := endgame.FlushToStore(); flushErr != nil && err == nil {
		err = flushErr
	}
	summary.EndgameEntries = endgame.Len()
	return summary, err
}

func playGames(
	ctx context.Context,
	log zerolog.Logger,
	cfg Config,
	rule common.RuleVariant,
	endgame *engine.EndgameCache,
	gameInfos <-chan gameInfo,
	gameResults chan<- gameResult,
) error {
	var playerA = newPlayer(cfg.EvalA, cfg.OptionsA, endgame, log.With().Str("player", "A").Logger())
	var playerB = newPlayer(cfg.EvalB, cfg.OptionsB, endgame, log.With().Str("player", "B").Logger())
	for gameInfo := range gameInfos {
		var res, err = playGame(ctx, log, playerA, playerB, cfg, rule, gameInfo)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gameResults <- res:
		}
	}
	return nil
}
