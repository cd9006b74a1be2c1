package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/babasolver/game/config"
	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
)

func solveCommand() *cli.Command {
	defaults := solver.DefaultOptions()
	return &cli.Command{
		Name:      "solve",
		Usage:     "search a level for a winning move sequence",
		ArgsUsage: "[level]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"i"},
				Usage:   "restarts from the best leaf of the previous iteration",
				Value:   defaults.IterationCount,
				Sources: cli.EnvVars("BABA_ITERATION_COUNT"),
			},
			&cli.IntFlag{
				Name:    "depth",
				Aliases: []string{"d"},
				Usage:   "moves searched per iteration",
				Value:   defaults.MaxTurnDepth,
				Sources: cli.EnvVars("BABA_MAX_TURN_DEPTH"),
			},
			&cli.IntFlag{
				Name:    "parallelism-depth",
				Aliases: []string{"p"},
				Usage:   "turn at which the search forks into workers",
				Value:   defaults.ParallelismDepth,
				Sources: cli.EnvVars("BABA_PARALLELISM_DEPTH"),
			},
			&cli.IntFlag{
				Name:    "cache-depth",
				Aliases: []string{"c"},
				Usage:   "deepest turn whose states are memoized",
				Value:   defaults.MaxCacheDepth,
				Sources: cli.EnvVars("BABA_MAX_CACHE_DEPTH"),
			},
			&cli.IntFlag{
				Name:    "print-every",
				Usage:   "progress log interval in moves, 0 to disable",
				Value:   int(defaults.PrintEveryNMoves),
				Sources: cli.EnvVars("BABA_PRINT_EVERY_N_MOVES"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "cap on concurrent workers, 0 for one per fork",
				Value:   defaults.MaxWorkers,
				Sources: cli.EnvVars("BABA_MAX_WORKERS"),
			},
			&cli.BoolFlag{
				Name:    "turn-sensitive-cache",
				Usage:   "memoize positions per turn instead of by position only",
				Sources: cli.EnvVars("BABA_TURN_SENSITIVE_CACHE"),
			},
		},
		Action: runSolve,
	}
}

// solveOptions collects the solver flags
func solveOptions(cmd *cli.Command) (solver.Options, error) {
	if cmd.Int("print-every") < 0 {
		return solver.Options{}, fmt.Errorf("%w: print interval must not be negative", solver.ErrInvalidOptions)
	}
	opts := solver.Options{
		IterationCount:     cmd.Int("iterations"),
		MaxTurnDepth:       cmd.Int("depth"),
		ParallelismDepth:   cmd.Int("parallelism-depth"),
		MaxCacheDepth:      cmd.Int("cache-depth"),
		PrintEveryNMoves:   uint64(cmd.Int("print-every")),
		MaxWorkers:         cmd.Int("workers"),
		TurnSensitiveCache: cmd.Bool("turn-sensitive-cache"),
	}
	return opts, opts.Validate()
}

// levelManager opens the level directory named by the root flags
func levelManager(cmd *cli.Command) (*config.Manager, error) {
	return newLevelManager(cmd.String("config-dir"), cmd.String("default-level"))
}

func loadState(cmd *cli.Command, name string) (*engine.GameState, error) {
	levels, err := levelManager(cmd)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = levels.DefaultName()
	}
	return levels.NewState(name)
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	opts, err := solveOptions(cmd)
	if err != nil {
		return err
	}
	initial, err := loadState(cmd, cmd.Args().First())
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "Level %s\n%s\n\n", initial.Level().Name, initial)

	result, err := solver.New(opts, log.Logger).Solve(ctx, initial)
	if result != nil {
		writeReport(out, result)
	}
	if errors.Is(err, context.Canceled) {
		log.Warn().Msg("solve-interrupted")
		return nil
	}
	return err
}

// writeReport prints the per-iteration statistics and the final line
func writeReport(w io.Writer, result *solver.Result) {
	for i, s := range result.Stats {
		fmt.Fprintf(w, "Iteration %d\n", i+1)
		fmt.Fprintf(w, "  Total moves:    %s (%s)\n", solver.FormatNumberWithCommas(s.TotalMoves), solver.FormatNumberWithSuffix(s.TotalMoves))
		fmt.Fprintf(w, "  Unique moves:   %s\n", solver.FormatNumberWithCommas(s.UniqueMoves()))
		fmt.Fprintf(w, "  Cache hits:     %s\n", solver.FormatNumberWithCommas(s.CacheHits))
		fmt.Fprintf(w, "  Cache size:     %s\n", solver.FormatNumberWithCommas(s.CacheSize))
		fmt.Fprintf(w, "  Parallel roots: %d\n", s.ParallelRoots)
		fmt.Fprintf(w, "  Leaves:         %s\n", solver.FormatNumberWithCommas(s.Leaves))
		fmt.Fprintf(w, "  Elapsed:        %s (%s per move)\n", s.Elapsed, s.TimePerMove())
	}

	switch {
	case result.Won:
		fmt.Fprintf(w, "\nSOLVED: %s\n", engine.FormatMoveList(result.Moves))
	case result.State != nil:
		fmt.Fprintf(w, "\nNo solution found. Best line (score %d): %s\n", result.Score, engine.FormatMoveList(result.Moves))
	default:
		fmt.Fprintf(w, "\nNo solution found. Every line was pruned.\n")
	}
	if result.State != nil {
		fmt.Fprintf(w, "%s\n", result.State)
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "replay moves on a level and print the resulting board",
		ArgsUsage: "<level> <moves...>  (e.g. floatiest_platforms U R R D or up,right)",
		Action:    runSimulate,
	}
}

// parseMoveArgs accepts moves separated by spaces or commas
func parseMoveArgs(args []string) ([]engine.Direction, error) {
	var fields []string
	for _, arg := range args {
		fields = append(fields, strings.FieldsFunc(arg, func(r rune) bool {
			return r == ',' || r == ' '
		})...)
	}
	return engine.ParseDirections(fields)
}

func runSimulate(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("simulate needs a level name")
	}
	moves, err := parseMoveArgs(args[1:])
	if err != nil {
		return err
	}
	initial, err := loadState(cmd, args[0])
	if err != nil {
		return err
	}
	final, err := engine.Simulate(initial, moves)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprintf(out, "%s\n%s\n", final.FormatMoves(), final)
	fmt.Fprintf(out, "won=%v alive=%v together=%v rock_is_push=%v possible=%v score=%d\n",
		final.HaveWon(), final.AllBabasAlive(), final.BabasOnSameSpace(),
		final.RuleActive(), final.PossibleToWin(), final.Score())
	return nil
}

func levelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "levels",
		Usage: "inspect level files",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list level files and built-in levels",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					levels, err := levelManager(cmd)
					if err != nil {
						return err
					}
					infos, err := levels.ListLevels()
					if err != nil {
						return err
					}
					out := cmd.Root().Writer
					for _, l := range infos {
						source := l.Filename
						if l.Builtin {
							source = "built-in"
						}
						fmt.Fprintf(out, "%-24s %2dx%-2d  %-20s %s\n", l.LevelID, l.Height, l.Width, l.Heuristic, source)
					}
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "print a level's initial board",
				ArgsUsage: "[level]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					state, err := loadState(cmd, cmd.Args().First())
					if err != nil {
						return err
					}
					level := state.Level()
					fmt.Fprintf(cmd.Root().Writer, "%s (%dx%d)\n%s\n", level.Name, level.Height, level.Width, state)
					return nil
				},
			},
			{
				Name:      "import",
				Usage:     "validate a level file and save it into the config directory",
				ArgsUsage: "<file> [name]",
				Action:    runImportLevel,
			},
			{
				Name:      "validate",
				Usage:     "check level files without loading them into the manager",
				ArgsUsage: "<file...>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					files := cmd.Args().Slice()
					if len(files) == 0 {
						return fmt.Errorf("validate needs at least one file")
					}
					out := cmd.Root().Writer
					failed := 0
					for _, file := range files {
						if _, err := engine.LoadLevelConfig(file); err != nil {
							failed++
							fmt.Fprintf(out, "FAIL %s: %v\n", file, err)
							continue
						}
						fmt.Fprintf(out, "ok   %s\n", file)
					}
					if failed > 0 {
						return fmt.Errorf("%d of %d level files are invalid", failed, len(files))
					}
					return nil
				},
			},
		},
	}
}

func runImportLevel(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return errors.New("import needs a level file")
	}
	level, err := engine.LoadLevelConfig(args[0])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	name := level.Name
	if len(args) > 1 {
		name = strings.TrimSuffix(args[1], ".json")
	}

	levels, err := levelManager(cmd)
	if err != nil {
		return err
	}
	if err := levels.SaveLevel(name, level); err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "saved %s to %s\n", name, filepath.Join(cmd.String("config-dir"), name+".json"))
	return nil
}
