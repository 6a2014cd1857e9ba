package arena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/millgame/mill/internal/evalbuilder"
	"github.com/millgame/mill/pkg/command"
	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

// player is one engine with its own worker and command channel.
type player struct {
	worker   *engine.Worker
	commands *command.Channel
}

func newPlayer(evalKey string, options engine.Options,
	endgame *engine.EndgameCache, log zerolog.Logger) *player {
	var eng = engine.NewEngine(evalbuilder.Get(evalKey), options, log)
	eng.SetEndgameCache(endgame)
	eng.Prepare()
	var commands = command.NewChannel(command.DefaultCapacity)
	return &player{
		worker:   engine.NewWorker(eng, commands, log),
		commands: commands,
	}
}

func (pl *player) newGame(seed uint64) {
	var eng = pl.worker.Engine()
	eng.Seed = seed
	eng.Clear()
	pl.commands.Drain()
}

// think runs one search and returns the reported command. When moveTime
// runs out first the worker is told to act.
func (pl *player) think(ctx context.Context, p *common.Position,
	limits common.LimitsType, moveTime time.Duration) (string, error) {

	if err := pl.worker.Start(ctx, p, limits); err != nil {
		return "", err
	}
	var done = make(chan struct{})
	go func() {
		defer close(done)
		pl.worker.Wait()
	}()
	var timeout <-chan time.Time
	if moveTime > 0 {
		var timer = time.NewTimer(moveTime)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-done:
	case <-timeout:
		pl.worker.Act()
		<-done
	case <-ctx.Done():
		pl.worker.Stop()
		<-done
		return "", ctx.Err()
	}
	var _, err = pl.worker.Wait()
	if err != nil {
		return "", err
	}
	var reply string
	for _, msg := range pl.commands.Drain() {
		if !strings.HasPrefix(msg, "info ") {
			reply = msg
		}
	}
	if reply == "" {
		return "", fmt.Errorf("worker %v without reply", pl.worker.State())
	}
	return reply, nil
}

func playGame(
	ctx context.Context,
	log zerolog.Logger,
	playerA, playerB *player,
	cfg Config,
	rule common.RuleVariant,
	info gameInfo,
) (gameResult, error) {

	var gameLog = log.With().
		Str("game", info.id.String()).
		Int("number", info.gameNumber).
		Logger()
	gameLog.Debug().Bool("engineAIsBlack", info.engineAIsBlack).Msg("game started")

	playerA.newGame(info.seed)
	playerB.newGame(info.seed)

	var p = common.NewPosition(rule)
	p.Start()
	for _, move := range info.opening {
		if err := p.Apply(move); err != nil {
			return gameResult{}, fmt.Errorf("opening move %v: %w", move, err)
		}
	}

	var limits = common.LimitsType{Depth: cfg.Depth}
	if cfg.Depth == 0 && cfg.MoveTime > 0 {
		limits.Infinite = true
	}

	for !p.IsGameOver() {
		if cfg.MaxPlies > 0 && p.HistoryLen() >= cfg.MaxPlies {
			return newGameResult(info, p, "max plies"), nil
		}
		var pl = playerB
		if (p.SideToMove == common.Black) == info.engineAIsBlack {
			pl = playerA
		}
		var reply, err = pl.think(ctx, p, limits, cfg.MoveTime)
		if err != nil {
			return gameResult{}, err
		}
		if reply == engine.ResignCommand {
			if err := p.Resign(p.SideToMove); err != nil {
				return gameResult{}, err
			}
			break
		}
		move, err := common.ParseMove(reply)
		if err != nil {
			return gameResult{}, err
		}
		if err := p.Apply(move); err != nil {
			return gameResult{}, fmt.Errorf("bad move %v: %w", move, err)
		}
	}
	var res = newGameResult(info, p, p.Reason.String())
	gameLog.Debug().
		Int("plies", res.plies).
		Str("winner", res.winner.String()).
		Str("reason", res.reason).
		Msg("game finished")
	return res, nil
}

func newGameResult(info gameInfo, p *common.Position, reason string) gameResult {
	var res = gameResult{
		gameInfo: info,
		plies:    p.HistoryLen(),
		winner:   common.NoColor,
		reason:   reason,
		result:   gameResultDraw,
	}
	if p.IsGameOver() {
		res.winner = p.Winner
		switch p.Winner {
		case common.Black:
			res.result = gameResultBlackWins
		case common.White:
			res.result = gameResultWhiteWins
		}
	}
	return res
}
