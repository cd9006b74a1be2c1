package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// LevelConfig is the JSON form of a level. Terrain and objects are two
// overlaid character layers of the same size.
type LevelConfig struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Height      int               `json:"height"`
	Width       int               `json:"width"`
	Heuristic   string            `json:"heuristic,omitempty"`
	Terrain     []string          `json:"terrain"`
	Objects     []string          `json:"objects"`
	Legend      map[string]string `json:"legend,omitempty"`
}

// Terrain characters
const (
	TerrainEmpty = '.'
	TerrainTile  = '^'
	TerrainWall  = 'X'
)

// Object characters. 'A' places the first Baba and 'B' the second; the
// order decides which one moves first each turn.
const (
	ObjectNone     = '.'
	ObjectBaba1    = 'A'
	ObjectBaba2    = 'B'
	ObjectRock     = 'R'
	ObjectDoor     = 'D'
	ObjectKey      = 'K'
	ObjectRockText = '1'
	ObjectIsText   = '2'
	ObjectPushText = '3'
)

var objectChars = map[rune]GameObject{
	ObjectRock:     Rock,
	ObjectDoor:     Door,
	ObjectKey:      Key,
	ObjectRockText: RockText,
	ObjectIsText:   IsText,
	ObjectPushText: PushText,
}

var legend = map[string]string{
	".": "empty",
	"^": "tile",
	"X": "wall",
	"A": "baba_1",
	"B": "baba_2",
	"R": "rock",
	"D": "door",
	"K": "key",
	"1": "rock_text",
	"2": "is_text",
	"3": "push_text",
}

// DefaultLegend returns a copy of the legend describing the layout characters
func DefaultLegend() map[string]string {
	out := make(map[string]string, len(legend))
	for k, v := range legend {
		out[k] = v
	}
	return out
}

// ValidateLevelConfig checks a level for shape and for the objects every
// playable state needs.
func ValidateLevelConfig(config *LevelConfig) error {
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Height < 1 || config.Height > MaxGridHeight {
		return fmt.Errorf("config validation: height must be between 1 and %d, got %d", MaxGridHeight, config.Height)
	}
	if config.Width < 1 || config.Width > MaxGridWidth {
		return fmt.Errorf("config validation: width must be between 1 and %d, got %d", MaxGridWidth, config.Width)
	}
	if _, err := LookupHeuristic(config.Heuristic); err != nil {
		return fmt.Errorf("config validation: %v", err)
	}

	layers := []struct {
		name string
		rows []string
	}{{"terrain", config.Terrain}, {"objects", config.Objects}}
	for _, layer := range layers {
		if len(layer.rows) != config.Height {
			return fmt.Errorf("config validation: %s must have %d rows to match height, got %d",
				layer.name, config.Height, len(layer.rows))
		}
		for i, row := range layer.rows {
			if len(row) != config.Width {
				return fmt.Errorf("config validation: %s row %d must have %d characters to match width, got %d",
					layer.name, i+1, config.Width, len(row))
			}
		}
	}

	for i, row := range config.Terrain {
		for j, char := range row {
			switch char {
			case TerrainEmpty, TerrainTile, TerrainWall:
			default:
				return fmt.Errorf("config validation: invalid terrain character '%c' at row %d, col %d", char, i+1, j+1)
			}
		}
	}

	counts := make(map[rune]int)
	for i, row := range config.Objects {
		for j, char := range row {
			switch char {
			case ObjectNone:
				continue
			case ObjectBaba1, ObjectBaba2, ObjectRock, ObjectDoor, ObjectKey,
				ObjectRockText, ObjectIsText, ObjectPushText:
			default:
				return fmt.Errorf("config validation: invalid object character '%c' at row %d, col %d", char, i+1, j+1)
			}
			if config.Terrain[i][j] == TerrainWall {
				return fmt.Errorf("config validation: object '%c' at row %d, col %d sits on a wall", char, i+1, j+1)
			}
			counts[char]++
		}
	}

	for _, req := range []struct {
		char rune
		name string
	}{
		{ObjectBaba1, "first baba (A)"},
		{ObjectBaba2, "second baba (B)"},
		{ObjectDoor, "door (D)"},
		{ObjectKey, "key (K)"},
		{ObjectIsText, "is text (2)"},
	} {
		if counts[req.char] != 1 {
			return fmt.Errorf("config validation: layout must contain exactly one %s, got %d", req.name, counts[req.char])
		}
	}
	if counts[ObjectRockText] > 1 {
		return fmt.Errorf("config validation: layout may contain at most one rock text (1), got %d", counts[ObjectRockText])
	}
	if counts[ObjectPushText] > 1 {
		return fmt.Errorf("config validation: layout may contain at most one push text (3), got %d", counts[ObjectPushText])
	}

	return nil
}

// LoadLevelConfig loads and validates a level from a JSON file
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var config LevelConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateLevelConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// NewLevelState validates config and builds its turn-0 state
func NewLevelState(config *LevelConfig) (*GameState, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	heuristic, _ := LookupHeuristic(config.Heuristic)

	level := &Level{
		Name:      config.Name,
		Height:    int8(config.Height),
		Width:     int8(config.Width),
		Heuristic: heuristic,
	}
	var grid Grid
	baba1, baba2 := Dead, Dead
	for i := 0; i < config.Height; i++ {
		for j := 0; j < config.Width; j++ {
			switch config.Terrain[i][j] {
			case TerrainTile:
				grid[i][j] = grid[i][j].Add(Tile)
			case TerrainWall:
				grid[i][j] = grid[i][j].Add(Immovable)
			}

			c := Coordinate{I: int8(i), J: int8(j)}
			switch char := rune(config.Objects[i][j]); char {
			case ObjectBaba1:
				baba1 = c
			case ObjectBaba2:
				baba2 = c
			case ObjectDoor:
				level.Door = c
				grid[i][j] = grid[i][j].Add(Door)
			default:
				if obj, ok := objectChars[char]; ok {
					grid[i][j] = grid[i][j].Add(obj)
				}
			}
		}
	}

	return NewGameState(level, grid, baba1, baba2)
}

// MustLevelState is like NewLevelState but panics on an invalid config.
// It is meant for the built-in levels.
func MustLevelState(config *LevelConfig) *GameState {
	s, err := NewLevelState(config)
	if err != nil {
		panic(err)
	}
	return s
}
