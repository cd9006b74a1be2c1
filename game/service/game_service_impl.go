package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
)

// job is one running or finished solve. info is guarded by mu.
type job struct {
	mu     sync.RWMutex
	info   JobInfo
	cancel context.CancelFunc
	done   chan struct{}
}

func (j *job) snapshot() *JobInfo {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.info.clone()
}

// solveServiceImpl implements the SolveService interface
type solveServiceImpl struct {
	levels    LevelManager
	publisher ProgressPublisher
	logger    zerolog.Logger

	// baseCtx outlives any request; Shutdown cancels it
	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup

	jobs     map[string]*job
	closed   bool
	mu       sync.RWMutex
	nowFunc  func() time.Time
	newJobID func() string
}

// NewSolveService creates a new solve service. publisher may be nil.
func NewSolveService(levels LevelManager, publisher ProgressPublisher, logger zerolog.Logger) SolveService {
	ctx, cancel := context.WithCancel(context.Background())
	return &solveServiceImpl{
		levels:     levels,
		publisher:  publisher,
		logger:     logger,
		baseCtx:    ctx,
		baseCancel: cancel,
		jobs:       make(map[string]*job),
		nowFunc:    time.Now,
		newJobID:   uuid.NewString,
	}
}

func (s *solveServiceImpl) publish(jobID, eventType string, data interface{}) {
	if s.publisher != nil {
		s.publisher.BroadcastEvent(jobID, eventType, data)
	}
}

// loadLevel resolves name, falling back to the default level when empty
func (s *solveServiceImpl) loadLevel(name string) (string, *engine.LevelConfig, error) {
	if name == "" {
		level := s.levels.GetDefault()
		if level == nil {
			return "", nil, ErrLevelNotFound
		}
		return level.Name, level, nil
	}

	level, err := s.levels.LoadLevel(name)
	if err != nil {
		if errors.Is(err, ErrLevelNotFound) {
			if available, listErr := s.levels.ListLevels(); listErr == nil && len(available) > 0 {
				ids := make([]string, 0, len(available))
				for _, l := range available {
					ids = append(ids, l.LevelID)
				}
				return "", nil, fmt.Errorf("%w: '%s'. Available levels: %s", ErrLevelNotFound, name, strings.Join(ids, ", "))
			}
		}
		return "", nil, err
	}
	return strings.TrimSuffix(name, ".json"), level, nil
}

// ListLevels returns every level the manager can load
func (s *solveServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.levels.ListLevels()
}

// GetLevel returns a level with its rendered initial board
func (s *solveServiceImpl) GetLevel(ctx context.Context, name string) (*LevelDetail, error) {
	id, level, err := s.loadLevel(name)
	if err != nil {
		return nil, err
	}
	state, err := engine.NewLevelState(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return &LevelDetail{LevelID: id, Config: level, Board: state.Rows()}, nil
}

// Simulate replays moves from the initial state of a level
func (s *solveServiceImpl) Simulate(ctx context.Context, name string, moves []string) (*SimulateResult, error) {
	id, level, err := s.loadLevel(name)
	if err != nil {
		return nil, err
	}
	dirs, err := engine.ParseDirections(moves)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMoves, err)
	}
	initial, err := engine.NewLevelState(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	state, err := engine.Simulate(initial, dirs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMoves, err)
	}

	return &SimulateResult{
		LevelID:       id,
		Moves:         state.MoveHistory(),
		Turn:          int(state.Turn),
		Won:           state.HaveWon(),
		AllBabasAlive: state.AllBabasAlive(),
		BabasTogether: state.BabasOnSameSpace(),
		RuleActive:    state.RuleActive(),
		PossibleToWin: state.PossibleToWin(),
		Score:         state.Score(),
		Board:         state.Rows(),
	}, nil
}

// StartSolve launches a solve job in the background and returns at once.
// The job outlives ctx; use CancelJob to stop it.
func (s *solveServiceImpl) StartSolve(ctx context.Context, name string, opts solver.Options) (*JobInfo, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	id, level, err := s.loadLevel(name)
	if err != nil {
		return nil, err
	}
	initial, err := engine.NewLevelState(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	jobCtx, cancel := context.WithCancel(s.baseCtx)
	j := &job{
		info: JobInfo{
			ID:        s.newJobID(),
			LevelID:   id,
			Status:    JobRunning,
			Options:   opts,
			CreatedAt: s.nowFunc(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.jobs[j.info.ID] = j
	s.wg.Add(1)
	s.mu.Unlock()

	info := j.snapshot()
	s.logger.Info().Str("job", info.ID).Str("level", id).Msg("solve-job-started")
	s.publish(info.ID, EventSolveStarted, info)

	go s.run(jobCtx, j, initial)
	return info, nil
}

func (s *solveServiceImpl) run(ctx context.Context, j *job, initial *engine.GameState) {
	defer s.wg.Done()
	defer close(j.done)
	defer j.cancel()

	id := j.info.ID
	logger := s.logger.With().Str("job", id).Logger()
	result, err := solver.New(j.info.Options, logger).
		WithListener(&jobListener{service: s, job: j}).
		Solve(ctx, initial)

	finished := s.nowFunc()
	j.mu.Lock()
	j.info.FinishedAt = &finished
	if result != nil {
		j.info.Iterations = result.Iterations
		j.info.Won = result.Won
		j.info.Score = result.Score
		j.info.Moves = result.Moves
		j.info.Stats = result.Stats
		if result.State != nil {
			j.info.Solution = engine.FormatMoveList(result.Moves)
			j.info.Board = result.State.Rows()
		}
	}
	switch {
	case errors.Is(err, context.Canceled):
		j.info.Status = JobCancelled
	case err != nil:
		j.info.Status = JobFailed
		j.info.Error = err.Error()
	case result.Won:
		j.info.Status = JobWon
	default:
		j.info.Status = JobExhausted
	}
	j.mu.Unlock()

	info := j.snapshot()
	logger.Info().Str("status", string(info.Status)).Int("score", info.Score).Msg("solve-job-finished")
	s.publish(id, EventSolveFinished, info)
}

// jobListener records solver events on the job and forwards them
type jobListener struct {
	service *solveServiceImpl
	job     *job
}

func (l *jobListener) OnProgress(p solver.Progress) {
	l.job.mu.Lock()
	l.job.info.Progress = &p
	l.job.mu.Unlock()
	l.service.publish(l.job.info.ID, EventProgress, p)
}

func (l *jobListener) OnIterationDone(r solver.IterationReport) {
	l.job.mu.Lock()
	l.job.info.Iterations = r.Iteration
	l.job.info.Score = r.Score
	l.job.info.Stats = append(l.job.info.Stats, r.Stats)
	l.job.mu.Unlock()
	l.service.publish(l.job.info.ID, EventIteration, r)
}

func (s *solveServiceImpl) getJob(id string) (*job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return j, nil
}

// GetJob returns a snapshot of a job
func (s *solveServiceImpl) GetJob(ctx context.Context, id string) (*JobInfo, error) {
	j, err := s.getJob(id)
	if err != nil {
		return nil, err
	}
	return j.snapshot(), nil
}

// ListJobs returns every job, oldest first
func (s *solveServiceImpl) ListJobs(ctx context.Context) ([]*JobInfo, error) {
	s.mu.RLock()
	result := make([]*JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, j.snapshot())
	}
	s.mu.RUnlock()

	sort.Slice(result, func(a, b int) bool {
		if result[a].CreatedAt.Equal(result[b].CreatedAt) {
			return result[a].ID < result[b].ID
		}
		return result[a].CreatedAt.Before(result[b].CreatedAt)
	})
	return result, nil
}

// CancelJob stops a running job and waits for it to settle. Cancelling a
// finished job is a no-op.
func (s *solveServiceImpl) CancelJob(ctx context.Context, id string) (*JobInfo, error) {
	j, err := s.getJob(id)
	if err != nil {
		return nil, err
	}
	j.cancel()
	return s.wait(ctx, j)
}

// WaitJob blocks until the job stops or ctx is done
func (s *solveServiceImpl) WaitJob(ctx context.Context, id string) (*JobInfo, error) {
	j, err := s.getJob(id)
	if err != nil {
		return nil, err
	}
	return s.wait(ctx, j)
}

func (s *solveServiceImpl) wait(ctx context.Context, j *job) (*JobInfo, error) {
	select {
	case <-j.done:
		return j.snapshot(), nil
	case <-ctx.Done():
		return j.snapshot(), ctx.Err()
	}
}

// Shutdown refuses new jobs, cancels the running ones and waits for them
func (s *solveServiceImpl) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.baseCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
