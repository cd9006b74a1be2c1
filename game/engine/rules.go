package engine

// checkRockIsPushIntact looks for "rock" / "is" / "push" in a straight line
// through the "is" text, vertically (reading down) or horizontally (reading
// right).
func (s *GameState) checkRockIsPushIntact() bool {
	i, j := s.isText.I, s.isText.J
	if i > 0 && i < s.level.Height-1 &&
		s.Grid[i-1][j].Contains(RockText) && s.Grid[i+1][j].Contains(PushText) {
		return true
	}
	if j > 0 && j < s.level.Width-1 &&
		s.Grid[i][j-1].Contains(RockText) && s.Grid[i][j+1].Contains(PushText) {
		return true
	}
	return false
}

// HaveWon reports whether the key sits on the door
func (s *GameState) HaveWon() bool {
	door := s.level.Door
	return s.Grid[door.I][door.J].Contains(Key)
}

func (s *GameState) AllBabasAlive() bool {
	return !s.Baba1.IsDead() && !s.Baba2.IsDead()
}

// BabasOnSameSpace reports whether both Babas are alive and share a cell
func (s *GameState) BabasOnSameSpace() bool {
	if s.Baba1.IsDead() || s.Baba2.IsDead() {
		return false
	}
	return s.Baba1 == s.Baba2
}

// PossibleToWin reports whether the level heuristic still considers a win reachable
func (s *GameState) PossibleToWin() bool {
	return s.level.heuristic().PossibleToWin(s)
}

// Score rates a non-winning state for best-leaf selection
func (s *GameState) Score() int {
	return s.level.heuristic().Score(s)
}
