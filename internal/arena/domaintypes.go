package arena

import (
	"time"

	"github.com/google/uuid"

	"github.com/millgame/mill/pkg/common"
	"github.com/millgame/mill/pkg/engine"
)

const (
	gameResultDraw = iota
	gameResultBlackWins
	gameResultWhiteWins
)

type Config struct {
	Concurrency  int
	Openings     int // every opening is played twice with colors swapped
	OpeningPlies int
	RuleIndex    int
	Seed         uint64
	Depth        int
	// MoveTime is how long a side may think before the arena acts for it.
	// Zero waits for the search to finish.
	MoveTime    time.Duration
	MaxPlies    int
	EvalA       string
	EvalB       string
	OptionsA    engine.Options
	OptionsB    engine.Options
	EndgameFile string
}

func NewConfig() Config {
	return Config{
		Concurrency:  2,
		Openings:     8,
		OpeningPlies: 4,
		RuleIndex:    common.DefaultRuleIndex,
		Depth:        4,
		MaxPlies:     600,
		OptionsA:     engine.NewOptions(),
		OptionsB:     engine.NewOptions(),
	}
}

type gameInfo struct {
	id             uuid.UUID
	opening        []common.Move
	engineAIsBlack bool
	gameNumber     int
	seed           uint64
}

type gameResult struct {
	gameInfo gameInfo
	plies    int
	winner   common.Color
	reason   string
	result   int
}

type Summary struct {
	Games           int
	Wins            int
	Losses          int
	Draws           int
	EndgameEntries  int
	WinningFraction float64
	EloDifference   float64
}
