package solver

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
)

// SequentialWorker is the worker id reported for the sequential phase
const SequentialWorker = -1

// ctxCheckInterval is how many moves a search runs between context checks
const ctxCheckInterval = 4096

// Progress is emitted every Options.PrintEveryNMoves moves per worker
type Progress struct {
	Iteration int    `json:"iteration"`
	Worker    int    `json:"worker"`
	Moves     uint64 `json:"moves"`
	CacheSize int    `json:"cache_size"`
	StackSize int    `json:"stack_size"`
}

// IterationReport is emitted when an iteration finishes
type IterationReport struct {
	Iteration int                `json:"iteration"`
	Won       bool               `json:"won"`
	Score     int                `json:"score"`
	Moves     []engine.Direction `json:"moves"`
	Stats     Stats              `json:"stats"`
}

// ProgressListener receives search events. Calls are serialized.
type ProgressListener interface {
	OnProgress(p Progress)
	OnIterationDone(r IterationReport)
}

// Result is the outcome of Solve. State is the winning state when Won is
// set, otherwise the best-scoring leaf of the last iteration that reached
// one. It is nil only when the first iteration pruned every branch.
// Score is the heuristic score of State. For a win it only records where
// the heuristic placed the winning position and does not rank solutions.
type Result struct {
	State      *engine.GameState
	Won        bool
	Score      int
	Iterations int
	// Moves is the full path from the initial state across all iterations
	Moves []engine.Direction
	Stats []Stats
}

type Solver struct {
	opts     Options
	logger   zerolog.Logger
	listener ProgressListener
}

// New creates a solver. Options are validated by Solve.
func New(opts Options, logger zerolog.Logger) *Solver {
	return &Solver{opts: opts, logger: logger}
}

// WithListener attaches a progress listener and returns the solver
func (s *Solver) WithListener(l ProgressListener) *Solver {
	s.listener = l
	return s
}

func (s *Solver) Options() Options {
	return s.opts
}

// Solve searches for a winning move sequence from initial. Exhausting the
// tree without a win is not an error. On cancellation the best result so
// far is returned together with the context error.
func (s *Solver) Solve(ctx context.Context, initial *engine.GameState) (*Result, error) {
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("level", initial.Level().Name).
		Int("iterations", s.opts.IterationCount).
		Int("max_turn_depth", s.opts.MaxTurnDepth).
		Int("parallelism_depth", s.opts.ParallelismDepth).
		Int("max_cache_depth", s.opts.MaxCacheDepth).
		Msg("solve-starting")

	result := &Result{}
	current := initial
	for i := 1; i <= s.opts.IterationCount; i++ {
		root := current.ResetContext()
		s.logger.Info().Int("iteration", i).Msg("iteration-starting")
		if e := s.logger.Debug(); e.Enabled() {
			e.Msg("root state\n" + root.String())
		}

		it, err := s.iterate(ctx, i, root)
		result.Iterations = i
		result.Stats = append(result.Stats, it.stats)
		if it.best != nil {
			result.State = it.best
			result.Won = it.won
			result.Score = it.best.Score()
		}
		if err != nil {
			if it.best != nil {
				result.Moves = append(result.Moves, it.best.MoveHistory()...)
			}
			return result, err
		}

		report := IterationReport{Iteration: i, Won: it.won, Stats: it.stats}
		if it.best != nil {
			result.Moves = append(result.Moves, it.best.MoveHistory()...)
			report.Score = result.Score
			report.Moves = it.best.MoveHistory()
		}
		s.logIteration(report, it.best)
		if s.listener != nil {
			s.listener.OnIterationDone(report)
		}

		if it.won {
			break
		}
		if it.best == nil {
			// Keep the previous iteration's leaf, there is nothing to restart from
			s.logger.Warn().Int("iteration", i).Msg("no-leaf-reached")
			break
		}
		current = it.best
	}
	return result, nil
}

func (s *Solver) logIteration(r IterationReport, best *engine.GameState) {
	ev := s.logger.Info().
		Int("iteration", r.Iteration).
		Bool("won", r.Won).
		Str("total_moves", FormatNumberWithCommas(r.Stats.TotalMoves)).
		Str("cache_size", FormatNumberWithCommas(r.Stats.CacheSize)).
		Str("cache_hits", FormatNumberWithCommas(r.Stats.CacheHits)).
		Str("unique_moves", FormatNumberWithCommas(r.Stats.UniqueMoves())).
		Int("parallel_roots", r.Stats.ParallelRoots).
		Str("leaves", FormatNumberWithCommas(r.Stats.Leaves)).
		Dur("elapsed", r.Stats.Elapsed).
		Dur("time_per_move", r.Stats.TimePerMove())
	if best == nil {
		ev.Msg("iteration-finished")
		return
	}
	ev.Int("score", r.Score).Str("moves", best.FormatMoves()).Msg("iteration-finished")
	if e := s.logger.Debug(); e.Enabled() {
		e.Msg("best state\n" + best.String())
	}
}

type verdict int

const (
	verdictExpand verdict = iota
	verdictWon
	verdictCached
	verdictPruned
	verdictLeaf
)

// classify decides what happens to a freshly generated state. The order
// matters: a win beats everything and the memo table is consulted before
// the prune so pruned states are still remembered.
func (s *Solver) classify(child *engine.GameState, memo *MemoTable) verdict {
	if child.HaveWon() {
		return verdictWon
	}
	if int(child.Turn) <= s.opts.MaxCacheDepth && memo.Visit(child) {
		return verdictCached
	}
	if !child.PossibleToWin() {
		return verdictPruned
	}
	if int(child.Turn) >= s.opts.MaxTurnDepth {
		return verdictLeaf
	}
	return verdictExpand
}

type nextMove struct {
	state *engine.GameState
	dir   engine.Direction
}

// pushChildren pushes Up first so Left is explored first
func pushChildren(stack []nextMove, state *engine.GameState) []nextMove {
	for _, dir := range engine.Directions {
		stack = append(stack, nextMove{state: state, dir: dir})
	}
	return stack
}

type iteration struct {
	best  *engine.GameState
	won   bool
	stats Stats
}

// iterate runs one sequential phase followed by the parallel phase
func (s *Solver) iterate(ctx context.Context, number int, root *engine.GameState) (iteration, error) {
	start := time.Now()
	memo := NewMemoTable(s.opts.TurnSensitiveCache)
	memo.Visit(root)

	agg := &aggregate{solver: s, iteration: number}
	var roots []*engine.GameState
	var moves, hits, leaves uint64
	bestScore := math.MinInt
	var best *engine.GameState

	finish := func() iteration {
		it := iteration{best: best, won: agg.winner != nil}
		if agg.winner != nil {
			it.best = agg.winner
		}
		it.stats = Stats{
			TotalMoves:    moves + agg.moves,
			CacheHits:     hits + agg.cacheHits,
			CacheSize:     uint64(memo.Len()) + agg.cacheSize,
			ParallelRoots: len(roots),
			Leaves:        leaves + agg.leaves,
			Elapsed:       time.Since(start),
		}
		return it
	}

	stack := pushChildren(nil, root)
	for len(stack) > 0 {
		moves++
		if moves%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return finish(), err
			}
		}
		if s.opts.PrintEveryNMoves > 0 && moves%s.opts.PrintEveryNMoves == 0 {
			agg.progress(Progress{Iteration: number, Worker: SequentialWorker, Moves: moves, CacheSize: memo.Len(), StackSize: len(stack)})
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		child := cur.state.ApplyMove(cur.dir)

		switch s.classify(child, memo) {
		case verdictWon:
			s.logger.Info().Int("turn", int(child.Turn)).Msg("win-found")
			agg.winner = child
			return finish(), nil
		case verdictCached:
			hits++
			continue
		case verdictPruned:
			continue
		case verdictLeaf:
			leaves++
			if score := child.Score(); score > bestScore {
				bestScore = score
				best = child
			}
			continue
		}

		if int(child.Turn) >= s.opts.ParallelismDepth {
			roots = append(roots, child)
			continue
		}
		stack = pushChildren(stack, child)
	}

	if len(roots) == 0 {
		return finish(), nil
	}

	s.logger.Info().Int("threads", len(roots)).Msg("parallel-phase-starting")
	agg.bestLeaves = make([]*engine.GameState, len(roots))
	agg.bestScores = make([]int, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.MaxWorkers > 0 {
		g.SetLimit(s.opts.MaxWorkers)
	}
	for id, r := range roots {
		g.Go(func() error {
			return s.runWorker(gctx, agg, id, r, memo)
		})
	}
	err := g.Wait()

	// Sequential leaves first, then workers in root order; ties keep the earlier one.
	for id, leaf := range agg.bestLeaves {
		if leaf != nil && agg.bestScores[id] > bestScore {
			bestScore = agg.bestScores[id]
			best = leaf
		}
	}
	return finish(), err
}

// aggregate is the only state shared between workers. Everything except
// won is guarded by mu.
type aggregate struct {
	solver    *Solver
	iteration int

	won atomic.Bool

	mu         sync.Mutex
	winner     *engine.GameState
	moves      uint64
	cacheHits  uint64
	cacheSize  uint64
	leaves     uint64
	finished   int
	bestLeaves []*engine.GameState
	bestScores []int
}

func (a *aggregate) progress(p Progress) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.solver.logger.Info().
		Int("thread", p.Worker).
		Uint64("move", p.Moves).
		Str("move_short", FormatNumberWithSuffix(p.Moves)).
		Int("cache_size", p.CacheSize).
		Str("cache_short", FormatNumberWithSuffix(uint64(p.CacheSize))).
		Int("stack_size", p.StackSize).
		Msg("search-progress")
	if a.solver.listener != nil {
		a.solver.listener.OnProgress(p)
	}
}

func (a *aggregate) win(state *engine.GameState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.winner == nil {
		a.winner = state
		a.solver.logger.Info().Int("turn", int(state.Turn)).Msg("win-found")
	}
	a.won.Store(true)
}

type workerResult struct {
	moves, cacheHits, leaves uint64
	cacheSize                int
	best                     *engine.GameState
	bestScore                int
}

func (a *aggregate) finish(id int, r workerResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.finished++
	a.moves += r.moves
	a.cacheHits += r.cacheHits
	a.cacheSize += uint64(r.cacheSize)
	a.leaves += r.leaves
	a.bestLeaves[id] = r.best
	a.bestScores[id] = r.bestScore
	a.solver.logger.Debug().
		Int("thread", id).
		Int("finished", a.finished).
		Int("threads", len(a.bestLeaves)).
		Str("moves", FormatNumberWithSuffix(r.moves)).
		Str("cache", FormatNumberWithSuffix(uint64(r.cacheSize))).
		Str("leaves", FormatNumberWithSuffix(r.leaves)).
		Msg("thread-finished")
}

// runWorker searches the subtree below root with a private copy of the memo table
func (s *Solver) runWorker(ctx context.Context, agg *aggregate, id int, root *engine.GameState, shared *MemoTable) error {
	memo := shared.Clone()
	res := workerResult{bestScore: math.MinInt}
	defer func() {
		res.cacheSize = memo.Len()
		agg.finish(id, res)
	}()

	stack := pushChildren(nil, root)
	for len(stack) > 0 {
		if agg.won.Load() {
			return nil
		}
		res.moves++
		if res.moves%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if s.opts.PrintEveryNMoves > 0 && res.moves%s.opts.PrintEveryNMoves == 0 {
			agg.progress(Progress{Iteration: agg.iteration, Worker: id, Moves: res.moves, CacheSize: memo.Len(), StackSize: len(stack)})
		}

		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		child := cur.state.ApplyMove(cur.dir)

		switch s.classify(child, memo) {
		case verdictWon:
			agg.win(child)
			return nil
		case verdictCached:
			res.cacheHits++
			continue
		case verdictPruned:
			continue
		case verdictLeaf:
			res.leaves++
			if score := child.Score(); score > res.bestScore {
				res.bestScore = score
				res.best = child
			}
			continue
		}
		stack = pushChildren(stack, child)
	}
	return nil
}
