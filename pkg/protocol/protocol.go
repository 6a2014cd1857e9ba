// Package protocol drives a search worker from line based text commands.
package protocol

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/millgame/mill/pkg/command"
	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

var (
	errSearchRunning   = errors.New("search still run")
	errNoSearch        = errors.New("no search running")
	errCommandNotFound = errors.New("command not found")
)

const pollInterval = 5 * time.Millisecond

type Protocol struct {
	name     string
	version  string
	log      zerolog.Logger
	catalog  *common.Catalog
	worker   *engine.Worker
	commands *command.Channel
	options  []Option
	ctx      context.Context
	out      io.Writer
	position *common.Position
	gameID   uuid.UUID
	thinking bool
}

// New returns a protocol reading worker output from commands. The worker
// must write to the same channel.
func New(name, version string, worker *engine.Worker, commands *command.Channel,
	catalog *common.Catalog, options []Option, log zerolog.Logger) *Protocol {
	var pr = &Protocol{
		name:     name,
		version:  version,
		log:      log.With().Str("component", "protocol").Logger(),
		catalog:  catalog,
		worker:   worker,
		commands: commands,
		options:  options,
		out:      io.Discard,
	}
	pr.newGame()
	return pr
}

// Run handles commands from in until quit, end of input or ctx is done.
// At end of input a running search is waited for.
func (pr *Protocol) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	pr.ctx = ctx
	pr.out = out
	fmt.Fprintf(out, "id name %s %s\n", pr.name, pr.version)

	var lines = make(chan string)
	go func() {
		defer close(lines)
		readCommands(ctx, in, lines)
	}()

	var ticker = time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			pr.worker.Stop()
			return ctx.Err()
		case <-ticker.C:
			pr.poll()
		case commandLine, ok := <-lines:
			if !ok {
				if pr.thinking {
					pr.worker.Wait()
				}
				pr.poll()
				return nil
			}
			if commandLine == "quit" {
				pr.worker.Stop()
				return nil
			}
			var err = pr.handle(commandLine)
			if err != nil {
				pr.log.Warn().Err(err).Str("command", commandLine).Msg("command failed")
				fmt.Fprintf(out, "error %v\n", err)
			}
		}
	}
}

func readCommands(ctx context.Context, in io.Reader, lines chan<- string) {
	var scanner = bufio.NewScanner(in)
	for scanner.Scan() {
		var commandLine = strings.TrimSpace(scanner.Text())
		if commandLine == "" {
			continue
		}
		select {
		case lines <- commandLine:
		case <-ctx.Done():
			return
		}
		if commandLine == "quit" {
			return
		}
	}
}

// poll forwards worker output. The canonical position changes only here,
// when the worker reports a move.
func (pr *Protocol) poll() {
	for _, msg := range pr.commands.Drain() {
		pr.onEngineCommand(msg)
	}
	if !pr.thinking {
		return
	}
	switch pr.worker.State() {
	case engine.WorkerSearching, engine.WorkerPaused:
		return
	}
	var _, err = pr.worker.Wait()
	for _, msg := range pr.commands.Drain() {
		pr.onEngineCommand(msg)
	}
	if pr.thinking {
		pr.thinking = false
		if err != nil {
			pr.log.Error().Err(err).Str("game", pr.gameID.String()).Msg("search failed")
			fmt.Fprintf(pr.out, "error %v\n", err)
		}
	}
}

func (pr *Protocol) onEngineCommand(msg string) {
	switch {
	case strings.HasPrefix(msg, "info "):
		fmt.Fprintln(pr.out, msg)
	case msg == engine.DrawAcceptedCommand || msg == engine.DrawDeclinedCommand:
		fmt.Fprintln(pr.out, msg)
	case msg == engine.ResignCommand:
		pr.thinking = false
		var side = pr.position.SideToMove
		if err := pr.position.Resign(side); err != nil {
			pr.log.Error().Err(err).Msg("resign rejected")
			return
		}
		pr.log.Info().
			Str("game", pr.gameID.String()).
			Str("side", side.String()).
			Msg("engine resigned")
		fmt.Fprintln(pr.out, "resign")
		pr.printGameOver()
	default:
		pr.thinking = false
		var m, err = common.ParseMove(msg)
		if err == nil {
			err = pr.position.Apply(m)
		}
		if err != nil {
			pr.log.Error().Err(err).Str("move", msg).Msg("engine move rejected")
			fmt.Fprintf(pr.out, "error %v\n", err)
			return
		}
		fmt.Fprintf(pr.out, "bestmove %v\n", m)
		pr.printGameOver()
	}
}

func (pr *Protocol) printGameOver() {
	if !pr.position.IsGameOver() {
		return
	}
	pr.log.Info().
		Str("game", pr.gameID.String()).
		Str("winner", pr.position.Winner.String()).
		Str("reason", pr.position.Reason.String()).
		Msg("game over")
	fmt.Fprintf(pr.out, "gameover winner %v reason %v\n",
		pr.position.Winner, pr.position.Reason)
}

func (pr *Protocol) handle(commandLine string) error {
	var fields = strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil
	}
	var commandName = fields[0]
	fields = fields[1:]

	var h func(fields []string) error

	switch commandName {
	case "stop":
		h = pr.stopCommand
	case "pause":
		h = pr.pauseCommand
	case "resume":
		h = pr.resumeCommand
	case "act":
		h = pr.actCommand
	case "draw":
		h = pr.drawCommand
	case "d":
		h = pr.displayCommand
	case "isready":
		h = pr.isReadyCommand
	}
	if h == nil && pr.thinking {
		return errSearchRunning
	}

	switch commandName {
	case "rules":
		h = pr.rulesCommand
	case "rule":
		h = pr.ruleCommand
	case "newgame":
		h = pr.newGameCommand
	case "position":
		h = pr.positionCommand
	case "move":
		h = pr.moveCommand
	case "undo":
		h = pr.undoCommand
	case "go":
		h = pr.goCommand
	case "options":
		h = pr.optionsCommand
	case "setoption":
		h = pr.setOptionCommand
	}

	if h == nil {
		return errCommandNotFound
	}

	return h(fields)
}

func (pr *Protocol) newGame() {
	var index, rule = pr.catalog.Active()
	pr.position = common.NewPosition(rule)
	pr.gameID = uuid.New()
	pr.log.Info().
		Str("game", pr.gameID.String()).
		Int("rule", index).
		Str("name", rule.Name).
		Msg("new game")
}

func (pr *Protocol) rulesCommand(fields []string) error {
	var active, _ = pr.catalog.Active()
	for i, rule := range common.Rules() {
		var mark = ""
		if i == active {
			mark = " *"
		}
		fmt.Fprintf(pr.out, "rule %d %s%s: %s\n", i, rule.Name, mark, rule.Description)
	}
	return nil
}

func (pr *Protocol) ruleCommand(fields []string) error {
	if len(fields) != 1 {
		return errors.New("invalid rule arguments")
	}
	var index, err = strconv.Atoi(fields[0])
	if err != nil {
		return err
	}
	if err = pr.catalog.Select(index); err != nil {
		return err
	}
	pr.worker.Engine().Clear()
	pr.newGame()
	fmt.Fprintf(pr.out, "game %v rule %d %s\n", pr.gameID, index, pr.position.Rule.Name)
	return nil
}

func (pr *Protocol) newGameCommand(fields []string) error {
	pr.worker.Engine().Clear()
	pr.newGame()
	fmt.Fprintf(pr.out, "game %v\n", pr.gameID)
	return nil
}

func (pr *Protocol) positionCommand(fields []string) error {
	var args = fields
	if len(args) != 0 && args[0] == "startpos" {
		args = args[1:]
	}
	if len(args) != 0 && args[0] != "moves" {
		return errors.New("unknown position command")
	}
	var _, rule = pr.catalog.Active()
	var p = common.NewPosition(rule)
	if len(args) != 0 {
		for _, smove := range args[1:] {
			var m, err = common.ParseMove(smove)
			if err != nil {
				return err
			}
			if err = p.Apply(m); err != nil {
				return err
			}
		}
	}
	pr.position = p
	return nil
}

func (pr *Protocol) moveCommand(fields []string) error {
	if len(fields) != 1 {
		return errors.New("invalid move arguments")
	}
	var m, err = common.ParseMove(fields[0])
	if err != nil {
		return err
	}
	if err = pr.position.Apply(m); err != nil {
		return err
	}
	pr.printGameOver()
	return nil
}

func (pr *Protocol) undoCommand(fields []string) error {
	return pr.position.UndoLast()
}

func (pr *Protocol) goCommand(fields []string) error {
	var limits = parseLimits(fields)
	var err = pr.worker.Start(pr.ctx, pr.position, limits)
	if err != nil {
		return err
	}
	pr.thinking = true
	pr.log.Debug().
		Str("game", pr.gameID.String()).
		Int("depth", limits.Depth).
		Int("movetime", limits.MoveTime).
		Bool("infinite", limits.Infinite).
		Msg("go")
	return nil
}

func (pr *Protocol) stopCommand(fields []string) error {
	if !pr.thinking {
		return errNoSearch
	}
	var si, err = pr.worker.Stop()
	// A search that ended before the stop has already reported its move.
	for _, msg := range pr.commands.Drain() {
		pr.onEngineCommand(msg)
	}
	var stopped = pr.thinking
	pr.thinking = false
	if err != nil {
		return err
	}
	if stopped {
		fmt.Fprintf(pr.out, "stopped depth %d score %d nodes %d\n", si.Depth, si.Score, si.Nodes)
	}
	return nil
}

func (pr *Protocol) pauseCommand(fields []string) error {
	return pr.worker.Pause()
}

func (pr *Protocol) resumeCommand(fields []string) error {
	return pr.worker.Resume()
}

func (pr *Protocol) actCommand(fields []string) error {
	if !pr.thinking {
		return errNoSearch
	}
	var _, err = pr.worker.Act()
	pr.poll()
	return err
}

func (pr *Protocol) drawCommand(fields []string) error {
	pr.worker.OfferDraw()
	for _, msg := range pr.commands.Drain() {
		pr.onEngineCommand(msg)
	}
	return nil
}

func (pr *Protocol) displayCommand(fields []string) error {
	fmt.Fprintln(pr.out, pr.position.String())
	fmt.Fprintf(pr.out, "game %v key %016x worker %v\n",
		pr.gameID, pr.position.Key, pr.worker.State())
	return nil
}

func (pr *Protocol) optionsCommand(fields []string) error {
	for _, option := range pr.options {
		fmt.Fprintln(pr.out, option.OptionString())
	}
	return nil
}

func (pr *Protocol) setOptionCommand(fields []string) error {
	if len(fields) < 4 {
		return errors.New("invalid setoption arguments")
	}
	var name, value = fields[1], fields[3]
	for _, option := range pr.options {
		if strings.EqualFold(option.OptionName(), name) {
			return option.Set(value)
		}
	}
	return errors.New("unhandled option")
}

func (pr *Protocol) isReadyCommand(fields []string) error {
	if !pr.thinking {
		pr.worker.Engine().Prepare()
	}
	fmt.Fprintln(pr.out, "readyok")
	return nil
}

func parseLimits(args []string) (result common.LimitsType) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				result.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				result.MoveTime, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "infinite":
			result.Infinite = true
		}
	}
	return
}
