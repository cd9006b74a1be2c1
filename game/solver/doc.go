// Package solver runs the exhaustive depth-limited search over engine states.
//
// Each iteration expands the tree sequentially up to ParallelismDepth,
// then hands every surviving state to its own worker goroutine together
// with a private copy of the memo table. The first win stops all workers;
// otherwise the best-scoring leaf becomes the root of the next iteration.
//
// Usage:
//
//	s := solver.New(solver.DefaultOptions(), log.Logger)
//	result, err := s.Solve(ctx, engine.MustLevelState(engine.FloatiestPlatformsConfig()))
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.State.FormatMoves())
package solver
