package engine

import "fmt"

// ApplyMove returns the state reached by moving both Babas in direction.
// Baba1 moves first, then Baba2, then deaths and the rule are recalculated.
func (s *GameState) ApplyMove(direction Direction) *GameState {
	if s.Turn >= MaxTurnCount {
		panic(fmt.Sprintf("engine: move history full at turn %d", s.Turn))
	}

	next := *s
	next.Baba1 = next.moveBaba(next.Baba1, direction)
	next.Baba2 = next.moveBaba(next.Baba2, direction)
	next.recalculate()
	next.Moves[next.Turn] = direction
	next.Turn++
	return &next
}

// moveBaba returns the Baba's coordinate after trying to step in direction
func (s *GameState) moveBaba(baba Coordinate, direction Direction) Coordinate {
	if baba.IsDead() {
		return baba
	}
	di, dj := direction.Delta()
	if (di == 0 && dj == 0) || s.willGoOutOfBounds(baba.I, baba.J, di, dj) {
		return baba
	}

	// The Baba's own cell is passed as empty: a Baba standing on the key
	// must not push it into the door from underneath.
	if !s.checkCellAndMoveObjects(baba.I+di, baba.J+dj, di, dj, 0) {
		return baba
	}
	return Coordinate{I: baba.I + di, J: baba.J + dj}
}

// checkCellAndMoveObjects reports whether the cell at (i, j) can be entered
// from prev. When the cell holds movable objects they are pushed one step
// further first, recursively.
func (s *GameState) checkCellAndMoveObjects(i, j, di, dj int8, prev Cell) bool {
	cell := s.Grid[i][j]
	if cell.Contains(Immovable) {
		return false
	}
	// The door only accepts the key, and only when nothing else is pushed with it.
	if cell.Contains(Door) {
		return prev.Contains(Key) && !prev.Remove(Key).HasMovable(s.ruleActive)
	}
	if !cell.HasMovable(s.ruleActive) {
		return true
	}

	if s.willGoOutOfBounds(i, j, di, dj) {
		return false
	}
	ni, nj := i+di, j+dj
	if !s.checkCellAndMoveObjects(ni, nj, di, dj, cell) {
		return false
	}

	for _, obj := range alwaysMovable {
		if !s.Grid[i][j].Contains(obj) {
			continue
		}
		s.Grid[i][j] = s.Grid[i][j].Remove(obj)
		s.Grid[ni][nj] = s.Grid[ni][nj].Add(obj)
		switch obj {
		case IsText:
			s.isText = Coordinate{I: ni, J: nj}
		case Key:
			s.key = Coordinate{I: ni, J: nj}
		}
	}
	if s.ruleActive && cell.Contains(Rock) {
		s.Grid[i][j] = s.Grid[i][j].Remove(Rock)
		s.Grid[ni][nj] = s.Grid[ni][nj].Add(Rock)
	}
	return true
}

func (s *GameState) willGoOutOfBounds(i, j, di, dj int8) bool {
	return (i == 0 && di < 0) || (i == s.level.Height-1 && di > 0) ||
		(j == 0 && dj < 0) || (j == s.level.Width-1 && dj > 0)
}

// recalculate refreshes deaths and the "rock is push" flag after a move
func (s *GameState) recalculate() {
	// Two Babas on one cell keep each other afloat.
	if !s.BabasOnSameSpace() {
		if !s.Baba1.IsDead() && s.Grid[s.Baba1.I][s.Baba1.J].IsEmpty() {
			s.Baba1 = Dead
		}
		if !s.Baba2.IsDead() && s.Grid[s.Baba2.I][s.Baba2.J].IsEmpty() {
			s.Baba2 = Dead
		}
	}
	s.ruleActive = s.checkRockIsPushIntact()
}
