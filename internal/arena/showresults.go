package arena

import (
	"math"

	"github.com/rs/zerolog"
)

func showResults(
	log zerolog.Logger,
	gameResults <-chan gameResult,
) Summary {
	var summary Summary
	for gameResult := range gameResults {
		summary.Games++
		log.Info().
			Str("game", gameResult.gameInfo.id.String()).
			Int("number", gameResult.gameInfo.gameNumber).
			Str("result", gameResultString(gameResult.result)).
			Str("reason", gameResult.reason).
			Int("plies", gameResult.plies).
			Msg("finished game")
		if gameResult.result == gameResultDraw {
			summary.Draws++
		} else if gameResult.result == gameResultBlackWins && gameResult.gameInfo.engineAIsBlack ||
			gameResult.result == gameResultWhiteWins && !gameResult.gameInfo.engineAIsBlack {
			summary.Wins++
		} else {
			summary.Losses++
		}
		var stat = computeStat(summary.Wins, summary.Losses, summary.Draws)
		summary.WinningFraction = stat.winningFraction
		summary.EloDifference = stat.eloDifference
		log.Info().
			Int("wins", summary.Wins).
			Int("losses", summary.Losses).
			Int("draws", summary.Draws).
			Float64("fraction", stat.winningFraction).
			Float64("elo", stat.eloDifference).
			Float64("los", stat.los).
			Msg("score")
	}
	return summary
}

type gameStatistics struct {
	winningFraction float64
	eloDifference   float64
	los             float64
}

// https://www.chessprogramming.org/Match_Statistics
func computeStat(wins, losses, draws int) gameStatistics {
	var games = wins + losses + draws
	if games == 0 {
		return gameStatistics{}
	}
	var winningFraction = (float64(wins) + 0.5*float64(draws)) / float64(games)
	var eloDifference = -math.Log(1/winningFraction-1) * 400 / math.Ln10
	var los = 0.5
	if wins+losses != 0 {
		los = 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
	}
	return gameStatistics{
		winningFraction: winningFraction,
		eloDifference:   eloDifference,
		los:             los,
	}
}

func gameResultString(v int) string {
	switch v {
	case gameResultBlackWins:
		return "1-0"
	case gameResultWhiteWins:
		return "0-1"
	case gameResultDraw:
		return "1/2-1/2"
	}
	return ""
}
