package engine

// Built-in level names
const (
	FloatiestPlatformsName = "floatiest_platforms"
	TestLevelName          = "test_level"
)

var floatiestTerrain = []string{
	"XXX....XXX........",
	"..................",
	"..................",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..................",
	"..........^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...^^^^^...",
	"..^^^^^...........",
	"...............XXX",
	"XXX............XXX",
	"XXXX...........XXX",
}

// FloatiestPlatformsConfig returns the "Floatiest Platforms" level: two
// Babas on separate floating platforms, three rocks to build a bridge and
// the "rock is push" rule sitting on the upper right platform.
func FloatiestPlatformsConfig() *LevelConfig {
	return &LevelConfig{
		Name:        FloatiestPlatformsName,
		Description: "Floatiest Platforms: bridge the upper platforms with rocks, merge both Babas and push the key into the door",
		Height:      MaxGridHeight,
		Width:       MaxGridWidth,
		Heuristic:   FloatiestPlatformsHeuristicName,
		Terrain:     append([]string(nil), floatiestTerrain...),
		Objects: []string{
			"..................",
			"..................",
			"..................",
			"..................",
			"...R.......123....",
			"....A.......B.....",
			".....R.....R......",
			"..................",
			"..................",
			"..................",
			"..................",
			"............K.....",
			"....D.............",
			"..................",
			"..................",
			"..................",
			"..................",
			"..................",
		},
		Legend: DefaultLegend(),
	}
}

// TestLevelConfig returns a level that is won in a single move to the right
func TestLevelConfig() *LevelConfig {
	terrain := append([]string(nil), floatiestTerrain...)
	// No walls on the test level.
	terrain[0] = ".................."
	terrain[15] = ".................."
	terrain[16] = ".................."
	terrain[17] = ".................."
	return &LevelConfig{
		Name:        TestLevelName,
		Description: "Sanity check level: the first Baba stands next to the key, which stands next to the door",
		Height:      MaxGridHeight,
		Width:       MaxGridWidth,
		Heuristic:   DefaultHeuristicName,
		Terrain:     terrain,
		Objects: []string{
			"..................",
			"..................",
			"..................",
			"..................",
			"............2.....",
			"............B.....",
			"..................",
			"..................",
			"..................",
			"..................",
			"..................",
			"..................",
			"..AKD.............",
			"..................",
			"..................",
			"..................",
			"..................",
			"..................",
		},
		Legend: DefaultLegend(),
	}
}

// BuiltinLevels returns fresh copies of every level compiled into the program
func BuiltinLevels() []*LevelConfig {
	return []*LevelConfig{FloatiestPlatformsConfig(), TestLevelConfig()}
}
