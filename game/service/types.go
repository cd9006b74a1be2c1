package service

import (
	"time"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
)

// LevelInfo provides information about a level
type LevelInfo struct {
	LevelID     string `json:"level_id"` // The identifier to use for solves and simulations
	Filename    string `json:"filename,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Height      int    `json:"height"`
	Width       int    `json:"width"`
	Heuristic   string `json:"heuristic"`
	Builtin     bool   `json:"builtin"`
}

// LevelDetail is a level with its rendered initial state
type LevelDetail struct {
	LevelID string              `json:"level_id"`
	Config  *engine.LevelConfig `json:"config"`
	Board   []string            `json:"board"`
}

// SimulateResult is the state reached by replaying a move list
type SimulateResult struct {
	LevelID       string             `json:"level_id"`
	Moves         []engine.Direction `json:"moves"`
	Turn          int                `json:"turn"`
	Won           bool               `json:"won"`
	AllBabasAlive bool               `json:"all_babas_alive"`
	BabasTogether bool               `json:"babas_together"`
	RuleActive    bool               `json:"rule_active"`
	PossibleToWin bool               `json:"possible_to_win"`
	Score         int                `json:"score"`
	Board         []string           `json:"board"`
}

// JobStatus is the lifecycle stage of a solve job
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobWon       JobStatus = "won"
	JobExhausted JobStatus = "exhausted" // finished without a win
	JobCancelled JobStatus = "cancelled"
	JobFailed    JobStatus = "failed"
)

// Done reports whether the job has stopped
func (s JobStatus) Done() bool {
	return s != JobRunning
}

// JobInfo is a snapshot of a solve job
type JobInfo struct {
	ID         string             `json:"id"`
	LevelID    string             `json:"level_id"`
	Status     JobStatus          `json:"status"`
	Options    solver.Options     `json:"options"`
	CreatedAt  time.Time          `json:"created_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Progress   *solver.Progress   `json:"progress,omitempty"`
	Iterations int                `json:"iterations"`
	Won        bool               `json:"won"`
	Score      int                `json:"score"`
	Moves      []engine.Direction `json:"moves,omitempty"`
	Solution   string             `json:"solution,omitempty"`
	Board      []string           `json:"board,omitempty"`
	Stats      []solver.Stats     `json:"stats,omitempty"`
	Error      string             `json:"error,omitempty"`
}

func (j *JobInfo) clone() *JobInfo {
	c := *j
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		c.FinishedAt = &t
	}
	if j.Progress != nil {
		p := *j.Progress
		c.Progress = &p
	}
	c.Moves = append([]engine.Direction(nil), j.Moves...)
	c.Board = append([]string(nil), j.Board...)
	c.Stats = append([]solver.Stats(nil), j.Stats...)
	return &c
}
