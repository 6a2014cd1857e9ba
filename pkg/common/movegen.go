package common

// GenerateMoves appends every legal action of the side to move to ml[:0].
func (p *Position) GenerateMoves(ml []OrderedMove) []OrderedMove {
	ml = ml[:0]
	var us = p.SideToMove
	switch {
	case p.Phase == PhaseGameOver:
		return ml
	case p.Action == ActionRemove:
		var them = us.Opponent()
		var targets = p.removable(them)
		for x := targets; x != 0; x &= x - 1 {
			ml = append(ml, OrderedMove{Move: MakeRemove(FirstOne(x))})
		}
	case p.Action == ActionPlace:
		if p.InHand[us] > 0 {
			for x := p.emptyMask(); x != 0; x &= x - 1 {
				ml = append(ml, OrderedMove{Move: MakePlace(FirstOne(x))})
			}
		}
		if p.Rule.MayMoveInPlacingPhase && p.Phase != PhaseReady {
			ml = p.appendSlides(ml, us)
		}
	default:
		ml = p.appendSlides(ml, us)
	}
	return ml
}

func (p *Position) removable(them Color) uint32 {
	var pieces = p.ByColor[them]
	if p.Rule.MayRemoveFromMillsAlways {
		return pieces
	}
	var free uint32
	for x := pieces; x != 0; x &= x - 1 {
		var sq = FirstOne(x)
		if !p.inMill(sq, them) {
			free |= SquareMask(sq)
		}
	}
	if free == 0 {
		return pieces
	}
	return free
}

func (p *Position) slideTargets(from int, us Color) uint32 {
	if p.canFly(us) {
		return p.emptyMask()
	}
	return p.topo.adjacent[from] & p.emptyMask()
}

func (p *Position) appendSlides(ml []OrderedMove, us Color) []OrderedMove {
	for x := p.ByColor[us]; x != 0; x &= x - 1 {
		var from = FirstOne(x)
		for y := p.slideTargets(from, us); y != 0; y &= y - 1 {
			ml = append(ml, OrderedMove{Move: MakeSlide(from, FirstOne(y))})
		}
	}
	return ml
}

func (p *Position) hasSlide(c Color) bool {
	for x := p.ByColor[c]; x != 0; x &= x - 1 {
		if p.slideTargets(FirstOne(x), c) != 0 {
			return true
		}
	}
	return false
}

func (p *Position) countSlides(c Color) int {
	var count = 0
	for x := p.ByColor[c]; x != 0; x &= x - 1 {
		count += PopCount(p.slideTargets(FirstOne(x), c))
	}
	return count
}

// MobilityDiff returns black's slide count minus white's.
func (p *Position) MobilityDiff() int {
	return p.countSlides(Black) - p.countSlides(White)
}
