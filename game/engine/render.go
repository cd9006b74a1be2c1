package engine

import (
	"fmt"
	"strings"
)

var objectChar = map[GameObject]byte{
	Baba:      'B',
	Immovable: 'X',
	Tile:      '^',
	Rock:      'R',
	Door:      'D',
	Key:       'K',
	RockText:  '1',
	IsText:    '2',
	PushText:  '3',
}

// renderPriority decides which object is drawn when a cell holds several
var renderPriority = [...]GameObject{Immovable, Key, Door, Rock, PushText, IsText, RockText, Tile}

// Rows renders the grid one string per row, without a border
func (s *GameState) Rows() []string {
	rows := make([]string, s.level.Height)
	var b strings.Builder
	for i := int8(0); i < s.level.Height; i++ {
		b.Reset()
		for j := int8(0); j < s.level.Width; j++ {
			b.WriteByte(s.cellChar(i, j))
		}
		rows[i] = b.String()
	}
	return rows
}

func (s *GameState) cellChar(i, j int8) byte {
	c := Coordinate{I: i, J: j}
	if c == s.Baba1 || c == s.Baba2 {
		return objectChar[Baba]
	}
	cell := s.Grid[i][j]
	for _, obj := range renderPriority {
		if cell.Contains(obj) {
			return objectChar[obj]
		}
	}
	return ' '
}

// String renders the grid inside a wall border
func (s *GameState) String() string {
	var b strings.Builder
	border := strings.Repeat("X", int(s.level.Width)+2)
	b.WriteString(border)
	b.WriteByte('\n')
	for _, row := range s.Rows() {
		b.WriteByte('X')
		b.WriteString(row)
		b.WriteString("X\n")
	}
	b.WriteString(border)
	return b.String()
}

// FormatMoves renders the move history as "N moves: U R D L"
func (s *GameState) FormatMoves() string {
	return FormatMoveList(s.Moves[:s.Turn])
}

// FormatMoveList renders any move list in the FormatMoves layout
func FormatMoveList(moves []Direction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d moves:", len(moves))
	for _, d := range moves {
		b.WriteByte(' ')
		b.WriteString(d.Short())
	}
	return b.String()
}
