package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/service"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
	"github.com/wricardo/mcp-training/babasolver/transport/websocket"
)

// MockSolveService implements service.SolveService for testing
type MockSolveService struct {
	ListLevelsFunc func(ctx context.Context) ([]*service.LevelInfo, error)
	GetLevelFunc   func(ctx context.Context, name string) (*service.LevelDetail, error)
	SimulateFunc   func(ctx context.Context, name string, moves []string) (*service.SimulateResult, error)
	StartSolveFunc func(ctx context.Context, name string, opts solver.Options) (*service.JobInfo, error)
	GetJobFunc     func(ctx context.Context, id string) (*service.JobInfo, error)
	ListJobsFunc   func(ctx context.Context) ([]*service.JobInfo, error)
	CancelJobFunc  func(ctx context.Context, id string) (*service.JobInfo, error)
}

func (m *MockSolveService) ListLevels(ctx context.Context) ([]*service.LevelInfo, error) {
	if m.ListLevelsFunc != nil {
		return m.ListLevelsFunc(ctx)
	}
	return []*service.LevelInfo{{LevelID: engine.TestLevelName}}, nil
}

func (m *MockSolveService) GetLevel(ctx context.Context, name string) (*service.LevelDetail, error) {
	if m.GetLevelFunc != nil {
		return m.GetLevelFunc(ctx, name)
	}
	return &service.LevelDetail{LevelID: name}, nil
}

func (m *MockSolveService) Simulate(ctx context.Context, name string, moves []string) (*service.SimulateResult, error) {
	if m.SimulateFunc != nil {
		return m.SimulateFunc(ctx, name, moves)
	}
	return &service.SimulateResult{LevelID: name, Turn: len(moves)}, nil
}

func (m *MockSolveService) StartSolve(ctx context.Context, name string, opts solver.Options) (*service.JobInfo, error) {
	if m.StartSolveFunc != nil {
		return m.StartSolveFunc(ctx, name, opts)
	}
	return &service.JobInfo{ID: "job-1", LevelID: name, Status: service.JobRunning, Options: opts}, nil
}

func (m *MockSolveService) GetJob(ctx context.Context, id string) (*service.JobInfo, error) {
	if m.GetJobFunc != nil {
		return m.GetJobFunc(ctx, id)
	}
	return &service.JobInfo{ID: id, Status: service.JobRunning}, nil
}

func (m *MockSolveService) ListJobs(ctx context.Context) ([]*service.JobInfo, error) {
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx)
	}
	return []*service.JobInfo{}, nil
}

func (m *MockSolveService) CancelJob(ctx context.Context, id string) (*service.JobInfo, error) {
	if m.CancelJobFunc != nil {
		return m.CancelJobFunc(ctx, id)
	}
	return &service.JobInfo{ID: id, Status: service.JobCancelled}, nil
}

func (m *MockSolveService) WaitJob(ctx context.Context, id string) (*service.JobInfo, error) {
	return m.GetJob(ctx, id)
}

func (m *MockSolveService) Shutdown(ctx context.Context) error {
	return nil
}

func newTestServer(svc service.SolveService) *Server {
	return NewServer(svc, nil, zerolog.Nop())
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doRequest(t, newTestServer(&MockSolveService{}), "GET", "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleListLevels(t *testing.T) {
	tests := []struct {
		name       string
		mock       *MockSolveService
		wantStatus int
		wantCount  int
	}{
		{"levels", &MockSolveService{}, http.StatusOK, 1},
		{
			"empty list encodes as array",
			&MockSolveService{ListLevelsFunc: func(ctx context.Context) ([]*service.LevelInfo, error) { return nil, nil }},
			http.StatusOK, 0,
		},
		{
			"failure",
			&MockSolveService{ListLevelsFunc: func(ctx context.Context) ([]*service.LevelInfo, error) {
				return nil, fmt.Errorf("failed to read level directory")
			}},
			http.StatusInternalServerError, -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, newTestServer(tt.mock), "GET", "/api/levels", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantCount < 0 {
				return
			}
			var levels []service.LevelInfo
			if err := json.Unmarshal(w.Body.Bytes(), &levels); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if len(levels) != tt.wantCount {
				t.Errorf("Expected %d levels, got %d", tt.wantCount, len(levels))
			}
		})
	}
}

func TestHandleGetLevel(t *testing.T) {
	mock := &MockSolveService{
		GetLevelFunc: func(ctx context.Context, name string) (*service.LevelDetail, error) {
			if name != engine.TestLevelName {
				return nil, fmt.Errorf("%w: '%s'", service.ErrLevelNotFound, name)
			}
			return &service.LevelDetail{LevelID: name, Board: []string{"..A"}}, nil
		},
	}
	s := newTestServer(mock)

	w := doRequest(t, s, "GET", "/api/levels/"+engine.TestLevelName, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var detail service.LevelDetail
	json.Unmarshal(w.Body.Bytes(), &detail)
	if detail.LevelID != engine.TestLevelName || len(detail.Board) != 1 {
		t.Errorf("Unexpected detail %+v", detail)
	}

	w = doRequest(t, s, "GET", "/api/levels/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleSimulate(t *testing.T) {
	var gotMoves []string
	mock := &MockSolveService{
		SimulateFunc: func(ctx context.Context, name string, moves []string) (*service.SimulateResult, error) {
			gotMoves = moves
			for _, m := range moves {
				if _, err := engine.ParseDirection(m); err != nil {
					return nil, fmt.Errorf("%w: %v", service.ErrInvalidMoves, err)
				}
			}
			return &service.SimulateResult{LevelID: name, Turn: len(moves), Won: true}, nil
		},
	}
	s := newTestServer(mock)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid moves", `{"moves":["right","up"]}`, http.StatusOK},
		{"bad direction", `{"moves":["sideways"]}`, http.StatusBadRequest},
		{"malformed body", `{"moves":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, "POST", "/api/levels/test_level/simulate", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}

	doRequest(t, s, "POST", "/api/levels/test_level/simulate", `{"moves":["right","up"]}`)
	if len(gotMoves) != 2 || gotMoves[0] != "right" {
		t.Errorf("Moves not forwarded: %v", gotMoves)
	}
}

func TestHandleStartSolve(t *testing.T) {
	var gotLevel string
	var gotOpts solver.Options
	mock := &MockSolveService{
		StartSolveFunc: func(ctx context.Context, name string, opts solver.Options) (*service.JobInfo, error) {
			gotLevel, gotOpts = name, opts
			if err := opts.Validate(); err != nil {
				return nil, err
			}
			return &service.JobInfo{ID: "job-1", LevelID: name, Status: service.JobRunning, Options: opts}, nil
		},
	}
	s := newTestServer(mock)

	t.Run("defaults for empty body", func(t *testing.T) {
		w := doRequest(t, s, "POST", "/api/solves", "")
		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected status 202, got %d: %s", w.Code, w.Body.String())
		}
		if gotLevel != "" || gotOpts != solver.DefaultOptions() {
			t.Errorf("Expected defaults, got level %q options %+v", gotLevel, gotOpts)
		}
	})

	t.Run("options overlay the defaults", func(t *testing.T) {
		w := doRequest(t, s, "POST", "/api/solves", `{"level":"test_level","options":{"max_turn_depth":5}}`)
		if w.Code != http.StatusAccepted {
			t.Fatalf("Expected status 202, got %d", w.Code)
		}
		want := solver.DefaultOptions()
		want.MaxTurnDepth = 5
		if gotLevel != "test_level" || gotOpts != want {
			t.Errorf("Expected %+v, got %+v", want, gotOpts)
		}

		var job service.JobInfo
		json.Unmarshal(w.Body.Bytes(), &job)
		if job.ID != "job-1" || job.Status != service.JobRunning {
			t.Errorf("Unexpected job %+v", job)
		}
	})

	t.Run("invalid options", func(t *testing.T) {
		w := doRequest(t, s, "POST", "/api/solves", `{"options":{"iteration_count":0}}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		w := doRequest(t, s, "POST", "/api/solves", `{"level":`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("shutting down", func(t *testing.T) {
		down := newTestServer(&MockSolveService{
			StartSolveFunc: func(ctx context.Context, name string, opts solver.Options) (*service.JobInfo, error) {
				return nil, service.ErrShuttingDown
			},
		})
		w := doRequest(t, down, "POST", "/api/solves", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestHandleListSolves(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &MockSolveService{
		ListJobsFunc: func(ctx context.Context) ([]*service.JobInfo, error) {
			return []*service.JobInfo{
				{ID: "a", Status: service.JobWon, CreatedAt: base},
				{ID: "b", Status: service.JobRunning, CreatedAt: base.Add(time.Second)},
				{ID: "c", Status: service.JobWon, CreatedAt: base.Add(2 * time.Second)},
			}, nil
		},
	}
	s := newTestServer(mock)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"all", "", []string{"a", "b", "c"}},
		{"by status", "?status=won", []string{"a", "c"}},
		{"limit keeps newest", "?limit=2", []string{"b", "c"}},
		{"status and limit", "?status=won&limit=1", []string{"c"}},
		{"bad limit ignored", "?limit=x", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, s, "GET", "/api/solves"+tt.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			var resp struct {
				Solves []service.JobInfo `json:"solves"`
				Count  int               `json:"count"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			var ids []string
			for _, j := range resp.Solves {
				ids = append(ids, j.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tt.wantIDs, ",") || resp.Count != len(tt.wantIDs) {
				t.Errorf("Expected %v, got %v (count %d)", tt.wantIDs, ids, resp.Count)
			}
		})
	}
}

func TestHandleGetAndCancelSolve(t *testing.T) {
	mock := &MockSolveService{
		GetJobFunc: func(ctx context.Context, id string) (*service.JobInfo, error) {
			if id != "job-1" {
				return nil, service.ErrJobNotFound
			}
			return &service.JobInfo{ID: id, Status: service.JobRunning}, nil
		},
		CancelJobFunc: func(ctx context.Context, id string) (*service.JobInfo, error) {
			if id != "job-1" {
				return nil, service.ErrJobNotFound
			}
			return &service.JobInfo{ID: id, Status: service.JobCancelled}, nil
		},
	}
	s := newTestServer(mock)

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantJob    service.JobStatus
	}{
		{"GET", "/api/solves/job-1", http.StatusOK, service.JobRunning},
		{"GET", "/api/solves/nope", http.StatusNotFound, ""},
		{"DELETE", "/api/solves/job-1", http.StatusOK, service.JobCancelled},
		{"DELETE", "/api/solves/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := doRequest(t, s, tt.method, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantJob == "" {
				return
			}
			var job service.JobInfo
			json.Unmarshal(w.Body.Bytes(), &job)
			if job.Status != tt.wantJob {
				t.Errorf("Expected status %s, got %s", tt.wantJob, job.Status)
			}
		})
	}
}

func TestHandleWebSocket(t *testing.T) {
	t.Run("disabled without hub", func(t *testing.T) {
		w := doRequest(t, newTestServer(&MockSolveService{}), "GET", "/ws?job=job-1", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})

	mock := &MockSolveService{
		GetJobFunc: func(ctx context.Context, id string) (*service.JobInfo, error) {
			return nil, service.ErrJobNotFound
		},
	}
	s := NewServer(mock, websocket.NewHub(zerolog.Nop()), zerolog.Nop())

	t.Run("job parameter required", func(t *testing.T) {
		w := doRequest(t, s, "GET", "/ws", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		w := doRequest(t, s, "GET", "/ws?job=nope", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	w := doRequest(t, newTestServer(&MockSolveService{}), "PUT", "/api/solves", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
