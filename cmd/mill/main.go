package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"runtime"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"github.com/millgame/mill/internal/evalbuilder"
	"github.com/millgame/mill/pkg/command"
	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
	"github.com/millgame/mill/pkg/protocol"
)

const name = "Mill"

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
)

var (
	flgConfig  string
	flgEval    string
	flgEndgame string
	flgRule    int
	flgVerbose bool
	flgProfile string
)

func main() {
	flag.StringVar(&flgConfig, "config", "", "JSON file with engine options")
	flag.StringVar(&flgEval, "eval", "", "specifies evaluation function (material, mobility)")
	flag.StringVar(&flgEndgame, "endgame", "", "endgame store file")
	flag.IntVar(&flgRule, "rule", common.DefaultRuleIndex, "rule variant index")
	flag.BoolVar(&flgVerbose, "v", false, "debug logging")
	flag.StringVar(&flgProfile, "profile", "", "write a cpu or mem profile")
	flag.Parse()

	var logger = newLogger(flgVerbose)

	switch flgProfile {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}

	logger.Info().
		Str("name", name).
		Str("VersionName", versionName).
		Str("BuildDate", buildDate).
		Str("GitRevision", gitRevision).
		Str("RuntimeVersion", runtime.Version()).
		Str("GOARCH", runtime.GOARCH).
		Str("GOOS", runtime.GOOS).
		Int("NumCPU", runtime.NumCPU()).
		Msg("starting")

	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	var level = zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func loadOptions(path string) (engine.Options, error) {
	var options = engine.NewOptions()
	if path == "" {
		return options, nil
	}
	var data, err = os.ReadFile(path)
	if err != nil {
		return options, err
	}
	err = json.Unmarshal(data, &options)
	return options, err
}

func run(logger zerolog.Logger) error {
	var options, err = loadOptions(flgConfig)
	if err != nil {
		return err
	}
	if flgEndgame != "" {
		options.EndgameFile = flgEndgame
	}

	var catalog = common.NewCatalog()
	if err := catalog.Select(flgRule); err != nil {
		return err
	}

	var eng = engine.NewEngine(evalbuilder.Get(flgEval), options, logger)
	var endgame = engine.NewEndgameCache(options.EndgameFile, logger)
	if err := endgame.LoadFromStore(); err != nil {
		logger.Warn().Err(err).Msg("endgame store ignored")
	}
	eng.SetEndgameCache(endgame)
	defer func() {
		if err := endgame.FlushToStore(); err != nil {
			logger.Error().Err(err).Msg("endgame store not saved")
		}
	}()

	var commands = command.NewChannel(command.DefaultCapacity)
	var worker = engine.NewWorker(eng, commands, logger.With().Str("component", "worker").Logger())

	var pr = protocol.New(name, versionName, worker, commands, catalog,
		[]protocol.Option{
			&protocol.IntOption{Name: "Hash", Min: 1, Max: 1 << 12, Value: &eng.Options.Hash},
			&protocol.IntOption{Name: "PlacingDepth", Min: 1, Max: 64, Value: &eng.Options.PlacingDepth},
			&protocol.IntOption{Name: "MovingDepth", Min: 1, Max: 64, Value: &eng.Options.MovingDepth},
			&protocol.IntOption{Name: "MoveTime", Min: 0, Max: 1 << 24, Value: &eng.Options.MoveTime},
			&protocol.IntOption{Name: "EndgameMaxPieces", Min: 0, Max: common.SquareNB, Value: &eng.Options.EndgameMaxPieces},
			&protocol.IntOption{Name: "ProgressMinNodes", Min: 0, Max: 1 << 30, Value: &eng.Options.ProgressMinNodes},
			&protocol.BoolOption{Name: "DynamicPlacingDepth", Value: &eng.Options.DynamicPlacingDepth},
			&protocol.BoolOption{Name: "IterativeDeepening", Value: &eng.Options.IterativeDeepening},
			&protocol.BoolOption{Name: "RandomOrdering", Value: &eng.Options.RandomOrdering},
			&protocol.BoolOption{Name: "LearnEndgame", Value: &eng.Options.LearnEndgame},
			&protocol.BoolOption{Name: "ResignIfMostLose", Value: &eng.Options.ResignIfMostLose},
		},
		logger,
	)

	var ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err = pr.Run(ctx, os.Stdin, os.Stdout)
	if err == context.Canceled {
		err = nil
	}
	return err
}
