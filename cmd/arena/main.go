package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/millgame/mill/internal/arena"
	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

type Config struct {
	arena.Config
	Precompute int
	MaxPieces  int
	Verbose    bool
	Profile    string
}

var config = Config{Config: arena.NewConfig()}

func main() {
	var moveTime int
	flag.IntVar(&config.Concurrency, "concurrency", config.Concurrency, "number of games played at once")
	flag.IntVar(&config.Openings, "openings", config.Openings, "number of openings, each is played twice")
	flag.IntVar(&config.OpeningPlies, "plies", config.OpeningPlies, "random plies of every opening")
	flag.IntVar(&config.RuleIndex, "rule", config.RuleIndex, "rule variant index")
	flag.IntVar(&config.Depth, "depth", config.Depth, "search depth, 0 searches until movetime")
	flag.IntVar(&moveTime, "movetime", 0, "milliseconds per move before the arena acts")
	flag.IntVar(&config.MaxPlies, "maxplies", config.MaxPlies, "adjudicate a draw after this many plies")
	flag.Uint64Var(&config.Seed, "seed", uint64(time.Now().UnixNano()), "seed of openings and engines")
	flag.StringVar(&config.EvalA, "evalA", "", "evaluation of engine A")
	flag.StringVar(&config.EvalB, "evalB", "", "evaluation of engine B")
	flag.BoolVar(&config.OptionsA.LearnEndgame, "learn", false, "record proven endgames")
	flag.StringVar(&config.EndgameFile, "endgame", "", "endgame store file")
	flag.IntVar(&config.Precompute, "precompute", 0, "search this many random endgames before the games")
	flag.IntVar(&config.MaxPieces, "maxpieces", 7, "pieces on board in precomputed endgames")
	flag.BoolVar(&config.Verbose, "v", false, "debug logging")
	flag.StringVar(&config.Profile, "profile", "", "write a cpu or mem profile")
	flag.Parse()
	config.MoveTime = time.Duration(moveTime) * time.Millisecond
	config.OptionsB.LearnEndgame = config.OptionsA.LearnEndgame
	config.OptionsA.RandomOrdering = true
	config.OptionsB.RandomOrdering = true

	var level = zerolog.InfoLevel
	if config.Verbose {
		level = zerolog.DebugLevel
	}
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	switch config.Profile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	var err = run(logger)
	if err != nil {
		logger.Error().Err(err).Msg("arena failed")
	}
}

func run(logger zerolog.Logger) error {
	logger.Info().Interface("config", config).Msg("arena config")

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if config.Precompute > 0 {
		if err := precompute(ctx, logger); err != nil {
			return err
		}
	}

	var summary, err = arena.Run(ctx, config.Config, logger)
	logger.Info().
		Int("games", summary.Games).
		Int("wins", summary.Wins).
		Int("losses", summary.Losses).
		Int("draws", summary.Draws).
		Float64("elo", summary.EloDifference).
		Int("endgameEntries", summary.EndgameEntries).
		Msg("summary")
	return err
}

func precompute(ctx context.Context, logger zerolog.Logger) error {
	var rule, err = common.RuleByIndex(config.RuleIndex)
	if err != nil {
		return err
	}
	positions, err := arena.RandomEndgames(rule, config.Precompute, config.MaxPieces, config.Seed)
	if err != nil {
		return err
	}
	var endgame = engine.NewEndgameCache(config.EndgameFile, logger)
	if err := endgame.LoadFromStore(); err != nil {
		logger.Warn().Err(err).Msg("endgame store ignored")
	}
	var depth = config.Depth
	if depth == 0 {
		depth = config.OptionsA.MovingDepth
	}
	_, err = arena.Precompute(ctx, logger, positions, endgame,
		config.EvalA, config.OptionsA, config.Concurrency, depth)
	if err != nil {
		return err
	}
	return endgame.FlushToStore()
}
