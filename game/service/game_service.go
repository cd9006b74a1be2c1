package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
	ErrJobNotFound   = errors.New("solve job not found")
	ErrInvalidMoves  = errors.New("invalid moves")
	ErrShuttingDown  = errors.New("service is shutting down")
)

// SolveService defines all solver-related operations
type SolveService interface {
	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	GetLevel(ctx context.Context, name string) (*LevelDetail, error)
	Simulate(ctx context.Context, name string, moves []string) (*SimulateResult, error)

	// Solve jobs
	StartSolve(ctx context.Context, name string, opts solver.Options) (*JobInfo, error)
	GetJob(ctx context.Context, id string) (*JobInfo, error)
	ListJobs(ctx context.Context) ([]*JobInfo, error)
	CancelJob(ctx context.Context, id string) (*JobInfo, error)
	WaitJob(ctx context.Context, id string) (*JobInfo, error)

	// Shutdown cancels every running job and waits for them to stop
	Shutdown(ctx context.Context) error
}

// LevelManager handles level loading
type LevelManager interface {
	LoadLevel(name string) (*engine.LevelConfig, error)
	ListLevels() ([]*LevelInfo, error)
	GetDefault() *engine.LevelConfig
}

// ProgressPublisher receives job events for live subscribers
type ProgressPublisher interface {
	BroadcastEvent(jobID, eventType string, data interface{})
}

// Event types sent through a ProgressPublisher
const (
	EventSolveStarted  = "solve_started"
	EventProgress      = "progress"
	EventIteration     = "iteration"
	EventSolveFinished = "solve_finished"
)
