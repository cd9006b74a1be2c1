package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidLevel is returned when a level layout cannot produce a playable state
var ErrInvalidLevel = errors.New("invalid level")

// Grid is the fixed-capacity cell array. Cells outside the level bounds stay empty.
type Grid [MaxGridHeight][MaxGridWidth]Cell

// Level holds the immutable geometry shared by every state of one puzzle
type Level struct {
	Name      string
	Height    int8
	Width     int8
	Door      Coordinate
	Heuristic Heuristic
}

// InBounds reports whether c lies on the level grid
func (l *Level) InBounds(c Coordinate) bool {
	return c.I >= 0 && c.I < l.Height && c.J >= 0 && c.J < l.Width
}

func (l *Level) heuristic() Heuristic {
	if l.Heuristic == nil {
		return defaultHeuristic{}
	}
	return l.Heuristic
}

// GameState is one node of the search tree. States are values: ApplyMove
// copies the receiver and never changes it.
type GameState struct {
	Turn  uint8
	Grid  Grid
	Moves [MaxTurnCount]Direction
	Baba1 Coordinate
	Baba2 Coordinate

	level      *Level
	key        Coordinate
	isText     Coordinate
	ruleActive bool
}

// NewGameState builds the turn-0 state of a level. The grid must contain the
// door at the level's door coordinate, a key and the "is" text.
func NewGameState(level *Level, grid Grid, baba1, baba2 Coordinate) (*GameState, error) {
	if level == nil {
		return nil, fmt.Errorf("%w: level is nil", ErrInvalidLevel)
	}
	if level.Height < 1 || level.Height > MaxGridHeight || level.Width < 1 || level.Width > MaxGridWidth {
		return nil, fmt.Errorf("%w: dimensions %dx%d exceed %dx%d", ErrInvalidLevel,
			level.Height, level.Width, MaxGridHeight, MaxGridWidth)
	}
	s := &GameState{
		Grid:   grid,
		Baba1:  baba1,
		Baba2:  baba2,
		level:  level,
		key:    Dead,
		isText: Dead,
	}
	for i := int8(0); i < level.Height; i++ {
		for j := int8(0); j < level.Width; j++ {
			cell := grid[i][j]
			if cell.Contains(Key) {
				s.key = Coordinate{I: i, J: j}
			}
			if cell.Contains(IsText) {
				s.isText = Coordinate{I: i, J: j}
			}
		}
	}

	switch {
	case s.key.IsDead():
		return nil, fmt.Errorf("%w: no key on the grid", ErrInvalidLevel)
	case s.isText.IsDead():
		return nil, fmt.Errorf("%w: no \"is\" text on the grid", ErrInvalidLevel)
	case !level.InBounds(level.Door) || !grid[level.Door.I][level.Door.J].Contains(Door):
		return nil, fmt.Errorf("%w: door missing at %s", ErrInvalidLevel, level.Door)
	}
	for _, b := range []Coordinate{baba1, baba2} {
		if !b.IsDead() && !level.InBounds(b) {
			return nil, fmt.Errorf("%w: baba at %s is off the grid", ErrInvalidLevel, b)
		}
	}

	s.recalculate()
	return s, nil
}

// MustNewGameState is like NewGameState but panics on a malformed level.
// Use it for layouts compiled into the program.
func MustNewGameState(level *Level, grid Grid, baba1, baba2 Coordinate) *GameState {
	s, err := NewGameState(level, grid, baba1, baba2)
	if err != nil {
		panic(err)
	}
	return s
}

// Level returns the geometry this state belongs to
func (s *GameState) Level() *Level {
	return s.level
}

// Cell returns the contents of the cell at c
func (s *GameState) Cell(c Coordinate) Cell {
	return s.Grid[c.I][c.J]
}

// KeyPosition returns the cached key coordinate
func (s *GameState) KeyPosition() Coordinate {
	return s.key
}

// IsTextPosition returns the cached coordinate of the "is" text, the anchor of the rule check
func (s *GameState) IsTextPosition() Coordinate {
	return s.isText
}

// RuleActive reports whether "rock is push" was intact after the last move
func (s *GameState) RuleActive() bool {
	return s.ruleActive
}

// MoveHistory returns the moves taken from the current root
func (s *GameState) MoveHistory() []Direction {
	moves := make([]Direction, s.Turn)
	copy(moves, s.Moves[:s.Turn])
	return moves
}

// ResetContext returns a copy of the state with the turn counter and move
// history cleared, so it can root a new search iteration.
func (s *GameState) ResetContext() *GameState {
	next := *s
	next.Turn = 0
	next.Moves = [MaxTurnCount]Direction{}
	return &next
}

// Simulate applies moves in order starting from s
func Simulate(s *GameState, moves []Direction) (*GameState, error) {
	if int(s.Turn)+len(moves) > MaxTurnCount {
		return nil, fmt.Errorf("%d moves exceed the history capacity of %d", int(s.Turn)+len(moves), MaxTurnCount)
	}
	for i, d := range moves {
		if d == NoDirection || d > Left {
			return nil, fmt.Errorf("move %d: invalid direction %d", i+1, d)
		}
		s = s.ApplyMove(d)
	}
	return s, nil
}
