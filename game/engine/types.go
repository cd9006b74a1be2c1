package engine

import (
	"fmt"
	"strings"
)

// GameObject represents the kinds of objects that can occupy a grid cell
type GameObject uint16

const (
	Baba GameObject = iota // rendering only, tokens are tracked by coordinate
	Immovable
	Tile
	Rock
	Door
	Key
	RockText
	IsText
	PushText
)

const (
	// Grid capacity. Levels may use any size up to these bounds.
	MaxGridHeight = 18
	MaxGridWidth  = 18

	// MaxTurnCount is the capacity of the per-state move history
	MaxTurnCount = 128
)

var objectNames = map[GameObject]string{
	Baba:      "baba",
	Immovable: "immovable",
	Tile:      "tile",
	Rock:      "rock",
	Door:      "door",
	Key:       "key",
	RockText:  "rock_text",
	IsText:    "is_text",
	PushText:  "push_text",
}

func (o GameObject) String() string {
	if name, ok := objectNames[o]; ok {
		return name
	}
	return fmt.Sprintf("object(%d)", uint16(o))
}

// Direction is a move applied to both Babas at once
type Direction uint8

const (
	NoDirection Direction = iota
	Up
	Right
	Down
	Left
)

// Directions lists the four moves in the order the solver pushes them
var Directions = [4]Direction{Up, Right, Down, Left}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	}
	return "none"
}

// Short returns the single-letter notation used in move listings
func (d Direction) Short() string {
	switch d {
	case Up:
		return "U"
	case Right:
		return "R"
	case Down:
		return "D"
	case Left:
		return "L"
	}
	return "-"
}

// Delta returns the row and column offsets of a direction
func (d Direction) Delta() (di, dj int8) {
	switch d {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 0
}

// ParseDirection accepts "up", "u", "U" and the like
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	case "left", "l":
		return Left, nil
	}
	return NoDirection, fmt.Errorf("invalid direction %q", s)
}

// ParseDirections parses a list of directions, failing on the first bad entry
func ParseDirections(moves []string) ([]Direction, error) {
	dirs := make([]Direction, 0, len(moves))
	for i, m := range moves {
		d, err := ParseDirection(m)
		if err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Coordinate is a (row, column) position on the grid
type Coordinate struct {
	I int8 `json:"i"`
	J int8 `json:"j"`
}

// Dead marks a Baba that has floated off the platforms
var Dead = Coordinate{I: -1, J: -1}

// IsDead reports whether the coordinate is the off-board sentinel
func (c Coordinate) IsDead() bool {
	return c.I < 0
}

func (c Coordinate) String() string {
	if c.IsDead() {
		return "dead"
	}
	return fmt.Sprintf("(%d,%d)", c.I, c.J)
}
