// Package config provides level management for the solver.
//
// The config package handles:
//   - Loading level layouts from JSON files
//   - Falling back to the levels compiled into the engine
//   - Level validation before caching or saving
//   - Level discovery and listing
//
// Level Format:
//
// Levels are stored as JSON files in the configs directory. Each level
// defines a terrain layer (X=wall, ^=tile, .=empty) and an object layer
// (A and B for the two Babas, R=rock, D=door, K=key, 1/2/3 for the
// "rock", "is" and "push" texts), plus the name of the heuristic used to
// prune and rank search states.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	state, err := manager.NewState("floatiest_platforms")
//	levels, err := manager.ListLevels()
//
// A file named like a built-in level shadows it.
package config
