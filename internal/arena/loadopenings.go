package arena

import (
	"context"
	"encoding/binary"

	"github.com/google/uuid"
	"lukechampine.com/frand"

	"github.com/millgame/mill/pkg/common"
)

func newRNG(seed uint64) *frand.RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return frand.NewCustom(key[:], 1024, 12)
}

func loadOpenings(
	ctx context.Context,
	cfg Config,
	rule common.RuleVariant,
	gameInfos chan<- gameInfo,
) error {

	var rng = newRNG(cfg.Seed)

	for i := 0; i < cfg.Openings; i++ {
		var opening, err = randomOpening(rule, cfg.OpeningPlies, rng)
		if err != nil {
			return err
		}
		for j, engineAIsBlack := range [2]bool{true, false} {
			var gameNumber = 1 + 2*i + j
			var info = gameInfo{
				id:             uuid.New(),
				opening:        opening,
				engineAIsBlack: engineAIsBlack,
				gameNumber:     gameNumber,
				seed:           cfg.Seed + uint64(gameNumber),
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case gameInfos <- info:
			}
		}
	}

	return nil
}

// randomOpening plays uniformly random legal actions from the start position.
func randomOpening(rule common.RuleVariant, plies int, rng *frand.RNG) ([]common.Move, error) {
	var p = common.NewPosition(rule)
	p.Start()
	var buf [common.MaxMoves]common.OrderedMove
	var result []common.Move
	for len(result) < plies && !p.IsGameOver() {
		var ml = p.GenerateMoves(buf[:])
		if len(ml) == 0 {
			break
		}
		var move = ml[rng.Intn(len(ml))].Move
		if err := p.Apply(move); err != nil {
			return nil, err
		}
		result = append(result, move)
	}
	return result, nil
}
