package engine

import . "github.com/millgame/mill/pkg/common"

const historyMax = 1 << 14

// moves are indexed by their 12 bit encoding
type historyService struct {
	table [ColorNB][1 << 12]int16
}

func (h *historyService) Clear() {
	for side := range h.table {
		for i := range h.table[side] {
			h.table[side][i] = 0
		}
	}
}

func (h *historyService) Read(side Color, m Move) int {
	return int(h.table[side][m&0xfff])
}

func (h *historyService) Update(side Color, searched []Move, bestMove Move, depth int) {
	var bonus = Min(depth*depth, 400)
	for _, m := range searched {
		var good = m == bestMove
		updateHistory(&h.table[side][m&0xfff], bonus, good)
		if good {
			break
		}
	}
}

// Exponential moving average
func updateHistory(v *int16, bonus int, good bool) {
	var newVal int
	if good {
		newVal = historyMax
	} else {
		newVal = -historyMax
	}
	*v += int16((newVal - int(*v)) * bonus / 512)
}
