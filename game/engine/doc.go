// Package engine provides the game rules for a two-Baba "Baba Is You" level.
//
// The engine package implements:
//   - Bitmask grid cells and the fixed-capacity grid
//   - Move resolution with recursive push chains and the door/key win
//   - Deaths on empty cells, suppressed while both Babas share a cell
//   - The "rock is push" rule, recalculated after every move
//   - State identity (hash and equality) for memoization
//   - Level loading from JSON layouts and per-level heuristics
//
// Core Types:
//
// GameState is one search node. It is a value: ApplyMove copies the
// receiver and returns the next state. Level holds the geometry shared by
// every state of a puzzle, and LevelConfig is its JSON form.
//
// Usage:
//
//	state, err := engine.NewLevelState(engine.FloatiestPlatformsConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	next := state.ApplyMove(engine.Right)
//	fmt.Println(next)
//	fmt.Println(next.FormatMoves())
//
// Rules:
//
// Both Babas move in the same direction every turn, the first one first.
// Walls and the door block movement. The key, the rule texts and, while
// "rock is push" is intact, rocks are pushed along. The level is won when
// the key is pushed into the door.
package engine
