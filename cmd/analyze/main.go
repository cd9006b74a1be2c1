// Command analyze prints quick, human-readable facts about the levels in a
// configs directory. It summarizes dimensions, object counts, the starting
// rule and heuristic verdicts, and highlights layouts that cannot be won
// before any search is spent on them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/babasolver/game/config"
	"github.com/wricardo/mcp-training/babasolver/game/engine"
)

// LevelReport is the analysis of one level's turn-0 state
type LevelReport struct {
	Name            string
	Height, Width   int
	Heuristic       string
	Counts          map[engine.GameObject]int
	KeyDoorDistance int
	BabaDistance    int
	RuleActive      bool
	PossibleToWin   bool
	Score           int
	Warnings        []string
}

var countedObjects = []engine.GameObject{
	engine.Tile, engine.Immovable, engine.Rock, engine.Key,
	engine.RockText, engine.IsText, engine.PushText,
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "summarize level files before solving them",
		ArgsUsage: "[level...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(cmd.Root().Writer, cmd.String("config-dir"), cmd.Args().Slice())
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run analyzes the named levels, or every level the manager knows
func run(w io.Writer, configDir string, names []string) error {
	levels, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		infos, err := levels.ListLevels()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.LevelID)
		}
	}

	for _, name := range names {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", name)
		level, err := levels.LoadLevel(name)
		if err != nil {
			fmt.Fprintf(w, "Error loading level: %v\n", err)
			continue
		}
		report, err := analyzeLevel(level)
		if err != nil {
			fmt.Fprintf(w, "Error building level: %v\n", err)
			continue
		}
		printReport(w, report)
	}
	return nil
}

func analyzeLevel(level *engine.LevelConfig) (*LevelReport, error) {
	state, err := engine.NewLevelState(level)
	if err != nil {
		return nil, err
	}

	heuristic := level.Heuristic
	if heuristic == "" {
		heuristic = engine.DefaultHeuristicName
	}

	report := &LevelReport{
		Name:            level.Name,
		Height:          level.Height,
		Width:           level.Width,
		Heuristic:       heuristic,
		Counts:          make(map[engine.GameObject]int),
		KeyDoorDistance: engine.ManhattanDistance(state.KeyPosition(), state.Level().Door),
		BabaDistance:    engine.ManhattanDistance(state.Baba1, state.Baba2),
		RuleActive:      state.RuleActive(),
		PossibleToWin:   state.PossibleToWin(),
		Score:           state.Score(),
	}
	for _, obj := range countedObjects {
		report.Counts[obj] = engine.CountObjects(&state.Grid, obj)
	}

	if report.Counts[engine.RockText] == 0 || report.Counts[engine.PushText] == 0 {
		report.Warnings = append(report.Warnings, `"rock is push" cannot be formed, rocks are never pushable`)
	}
	if !state.AllBabasAlive() {
		report.Warnings = append(report.Warnings, "a Baba starts on empty space")
	}
	if keyCornered(state) {
		report.Warnings = append(report.Warnings, "the key is cornered and can never be pushed")
	}
	if !report.PossibleToWin {
		report.Warnings = append(report.Warnings, "the heuristic rejects the initial state")
	}
	return report, nil
}

// blocked reports whether nothing can stand at c: off the grid or a wall
func blocked(state *engine.GameState, c engine.Coordinate) bool {
	if !state.Level().InBounds(c) {
		return true
	}
	cell := state.Cell(c)
	return cell.HasImmovable() && !cell.Contains(engine.Door)
}

// keyCornered detects a key with blocked neighbours on both axes. Pushing
// it needs a free cell behind it, so it can never move again.
func keyCornered(state *engine.GameState) bool {
	key := state.KeyPosition()
	at := func(di, dj int8) engine.Coordinate {
		return engine.Coordinate{I: key.I + di, J: key.J + dj}
	}
	vertical := blocked(state, at(-1, 0)) || blocked(state, at(1, 0))
	horizontal := blocked(state, at(0, -1)) || blocked(state, at(0, 1))
	return vertical && horizontal
}

func printReport(w io.Writer, r *LevelReport) {
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", r.Height, r.Width)
	fmt.Fprintf(w, "Heuristic: %s\n", r.Heuristic)

	objects := make([]engine.GameObject, 0, len(r.Counts))
	for obj := range r.Counts {
		objects = append(objects, obj)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i] < objects[j] })
	for _, obj := range objects {
		fmt.Fprintf(w, "  %-10s %d\n", obj, r.Counts[obj])
	}

	fmt.Fprintf(w, "Key to door: %d steps\n", r.KeyDoorDistance)
	fmt.Fprintf(w, "Baba to Baba: %d steps\n", r.BabaDistance)
	fmt.Fprintf(w, "Rock is push at start: %v\n", r.RuleActive)
	fmt.Fprintf(w, "Initial score: %d\n", r.Score)

	if len(r.Warnings) == 0 {
		fmt.Fprintf(w, "✅ No obvious dead ends\n")
		return
	}
	for _, warning := range r.Warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}
}
