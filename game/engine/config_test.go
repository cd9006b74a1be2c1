package engine

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidConfig() *LevelConfig {
	return &LevelConfig{
		Name:        "Test Config",
		Description: "A valid test level",
		Height:      4,
		Width:       5,
		Heuristic:   DefaultHeuristicName,
		Terrain: []string{
			"^^^^^",
			"^^^^^",
			"^^^^.",
			"X^^^^",
		},
		Objects: []string{
			"A...B",
			"123..",
			".....",
			"...KD",
		},
		Legend: DefaultLegend(),
	}
}

func TestValidateLevelConfig_Valid(t *testing.T) {
	if err := ValidateLevelConfig(createValidConfig()); err != nil {
		t.Errorf("ValidateLevelConfig() error = %v", err)
	}
}

func TestValidateLevelConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *LevelConfig)
		want   string
	}{
		{"missing name", func(c *LevelConfig) { c.Name = "" }, "name is required"},
		{"height too large", func(c *LevelConfig) { c.Height = MaxGridHeight + 1 }, "height must be between"},
		{"zero width", func(c *LevelConfig) { c.Width = 0 }, "width must be between"},
		{"unknown heuristic", func(c *LevelConfig) { c.Heuristic = "nope" }, "unknown heuristic"},
		{"terrain row count", func(c *LevelConfig) { c.Terrain = c.Terrain[:3] }, "terrain must have 4 rows"},
		{"objects row length", func(c *LevelConfig) { c.Objects[2] = "...." }, "objects row 3 must have 5 characters"},
		{"bad terrain char", func(c *LevelConfig) { c.Terrain[1] = "^^?^^" }, "invalid terrain character '?'"},
		{"bad object char", func(c *LevelConfig) { c.Objects[2] = "..Z.." }, "invalid object character 'Z'"},
		{"object on wall", func(c *LevelConfig) { c.Objects[3] = "R..KD" }, "sits on a wall"},
		{"missing second baba", func(c *LevelConfig) { c.Objects[0] = "A...." }, "exactly one second baba"},
		{"two keys", func(c *LevelConfig) { c.Objects[2] = "K...." }, "exactly one key"},
		{"missing door", func(c *LevelConfig) { c.Objects[3] = "...K." }, "exactly one door"},
		{"missing is text", func(c *LevelConfig) { c.Objects[1] = "1.3.." }, "exactly one is text"},
		{"two push texts", func(c *LevelConfig) { c.Objects[2] = "3...." }, "at most one push text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.modify(config)
			err := ValidateLevelConfig(config)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestBuiltinLevelsAreValid(t *testing.T) {
	for _, config := range BuiltinLevels() {
		t.Run(config.Name, func(t *testing.T) {
			if err := ValidateLevelConfig(config); err != nil {
				t.Fatalf("ValidateLevelConfig() error = %v", err)
			}
			if _, err := NewLevelState(config); err != nil {
				t.Fatalf("NewLevelState() error = %v", err)
			}
		})
	}
}

func TestNewLevelState_FloatiestPlatforms(t *testing.T) {
	state := MustLevelState(FloatiestPlatformsConfig())

	if state.Baba1 != at(5, 4) || state.Baba2 != at(5, 12) {
		t.Errorf("babas = %s %s, want (5,4) (5,12)", state.Baba1, state.Baba2)
	}
	if state.Level().Door != at(12, 4) {
		t.Errorf("door = %s, want (12,4)", state.Level().Door)
	}
	if state.KeyPosition() != at(11, 12) {
		t.Errorf("key = %s, want (11,12)", state.KeyPosition())
	}
	if state.IsTextPosition() != at(4, 12) {
		t.Errorf("is text = %s, want (4,12)", state.IsTextPosition())
	}
	if !state.RuleActive() {
		t.Error("rock is push should start active")
	}
	if got := CountObjects(&state.Grid, Rock); got != 3 {
		t.Errorf("rocks = %d, want 3", got)
	}
	if got := CountObjects(&state.Grid, Immovable); got != 22 {
		t.Errorf("walls = %d, want 22", got)
	}
	if got := state.Level().Heuristic.Name(); got != FloatiestPlatformsHeuristicName {
		t.Errorf("heuristic = %q", got)
	}
	if state.Turn != 0 {
		t.Errorf("turn = %d, want 0", state.Turn)
	}
}

func TestNewLevelState_InvalidConfig(t *testing.T) {
	config := createValidConfig()
	config.Objects[3] = "....."

	_, err := NewLevelState(config)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("error = %v, want ErrInvalidLevel", err)
	}
}

func TestMustLevelState_Panics(t *testing.T) {
	config := createValidConfig()
	config.Name = ""

	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	MustLevelState(config)
}

func TestNewGameState_Errors(t *testing.T) {
	valid := MustLevelState(createValidConfig())

	tests := []struct {
		name   string
		level  *Level
		modify func(g *Grid)
		baba   Coordinate
	}{
		{"nil level", nil, func(g *Grid) {}, at(0, 0)},
		{"oversized level", &Level{Height: MaxGridHeight + 1, Width: 5, Door: at(3, 4)}, func(g *Grid) {}, at(0, 0)},
		{"no key", valid.Level(), func(g *Grid) { g[3][3] = g[3][3].Remove(Key) }, at(0, 0)},
		{"no is text", valid.Level(), func(g *Grid) { g[1][1] = g[1][1].Remove(IsText) }, at(0, 0)},
		{"no door", valid.Level(), func(g *Grid) { g[3][4] = g[3][4].Remove(Door) }, at(0, 0)},
		{"baba off grid", valid.Level(), func(g *Grid) {}, at(9, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid := valid.Grid
			tt.modify(&grid)
			_, err := NewGameState(tt.level, grid, tt.baba, valid.Baba2)
			if !errors.Is(err, ErrInvalidLevel) {
				t.Errorf("error = %v, want ErrInvalidLevel", err)
			}
		})
	}
}

func TestLoadLevelConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		data, err := json.Marshal(createValidConfig())
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(dir, "valid.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}

		config, err := LoadLevelConfig(path)
		if err != nil {
			t.Fatalf("LoadLevelConfig() error = %v", err)
		}
		if config.Name != "Test Config" || config.Height != 4 || config.Width != 5 {
			t.Errorf("unexpected config: %+v", config)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadLevelConfig(path); err == nil {
			t.Error("expected an error for invalid JSON")
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		config := createValidConfig()
		config.Objects[0] = "....."
		data, _ := json.Marshal(config)
		path := filepath.Join(dir, "invalid.json")
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadLevelConfig(path); err == nil {
			t.Error("expected a validation error")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadLevelConfig(filepath.Join(dir, "missing.json")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}
