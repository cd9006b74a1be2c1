package solver

import (
	"errors"
	"fmt"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
)

var ErrInvalidOptions = errors.New("invalid solver options")

// Options trade CPU time and memory for search reach
type Options struct {
	// IterationCount is the number of restarts from the best leaf of the
	// previous iteration.
	IterationCount int `json:"iteration_count"`
	// MaxTurnDepth is the number of moves searched from each iteration's root.
	MaxTurnDepth int `json:"max_turn_depth"`
	// ParallelismDepth is the turn at which the sequential search hands its
	// frontier to one worker per state.
	ParallelismDepth int `json:"parallelism_depth"`
	// MaxCacheDepth is the deepest turn whose states are memoized.
	MaxCacheDepth int `json:"max_cache_depth"`
	// PrintEveryNMoves is the progress log interval. Zero disables it.
	PrintEveryNMoves uint64 `json:"print_every_n_moves"`
	// TurnSensitiveCache keys the memo table on the turn as well, so equal
	// positions reached at different depths are searched separately.
	TurnSensitiveCache bool `json:"turn_sensitive_cache"`
	// MaxWorkers caps the parallel workers. Zero runs one per fork root.
	MaxWorkers int `json:"max_workers"`
}

// DefaultOptions returns the tuning used for the built-in level
func DefaultOptions() Options {
	return Options{
		IterationCount:   1,
		MaxTurnDepth:     20,
		ParallelismDepth: 2,
		MaxCacheDepth:    20,
		PrintEveryNMoves: 1_000_000,
	}
}

// Validate reports the first inconsistent option
func (o Options) Validate() error {
	switch {
	case o.IterationCount < 1:
		return fmt.Errorf("%w: iteration count must be at least 1, got %d", ErrInvalidOptions, o.IterationCount)
	case o.MaxTurnDepth < 1:
		return fmt.Errorf("%w: max turn depth must be at least 1, got %d", ErrInvalidOptions, o.MaxTurnDepth)
	case o.MaxTurnDepth > engine.MaxTurnCount:
		return fmt.Errorf("%w: max turn depth must not exceed the move history capacity (%d), got %d",
			ErrInvalidOptions, engine.MaxTurnCount, o.MaxTurnDepth)
	case o.ParallelismDepth < 1:
		return fmt.Errorf("%w: parallelism depth must be at least 1, got %d", ErrInvalidOptions, o.ParallelismDepth)
	case o.MaxCacheDepth < 0:
		return fmt.Errorf("%w: max cache depth must not be negative, got %d", ErrInvalidOptions, o.MaxCacheDepth)
	case o.MaxWorkers < 0:
		return fmt.Errorf("%w: max workers must not be negative, got %d", ErrInvalidOptions, o.MaxWorkers)
	}
	return nil
}
