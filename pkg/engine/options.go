package engine

type Options struct {
	Hash                int    `json:"hash"` // megabytes
	PlacingDepth        int    `json:"placingDepth"`
	DynamicPlacingDepth bool   `json:"dynamicPlacingDepth"`
	MovingDepth         int    `json:"movingDepth"`
	IterativeDeepening  bool   `json:"iterativeDeepening"`
	MoveTime            int    `json:"moveTime"` // milliseconds, 0 means no limit
	RandomOrdering      bool   `json:"randomOrdering"`
	Seed                uint64 `json:"seed"`
	LearnEndgame        bool   `json:"learnEndgame"`
	EndgameMaxPieces    int    `json:"endgameMaxPieces"`
	EndgameFile         string `json:"endgameFile"`
	ResignIfMostLose    bool   `json:"resignIfMostLose"`
	ProgressMinNodes    int    `json:"progressMinNodes"`
}

func NewOptions() Options {
	return Options{
		Hash:                16,
		PlacingDepth:        3,
		DynamicPlacingDepth: true,
		MovingDepth:         10,
		IterativeDeepening:  true,
		EndgameMaxPieces:    7,
	}
}

func (o *Options) normalize() {
	if o.Hash <= 0 {
		o.Hash = 1
	}
	if o.PlacingDepth <= 0 {
		o.PlacingDepth = 1
	}
	if o.MovingDepth <= 0 {
		o.MovingDepth = 1
	}
	if o.PlacingDepth > maxHeight {
		o.PlacingDepth = maxHeight
	}
	if o.MovingDepth > maxHeight {
		o.MovingDepth = maxHeight
	}
}
