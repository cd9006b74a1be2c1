package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/babasolver/api"
	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Baba Solver" {
		t.Errorf("Expected app name Baba Solver, got %s", AppName)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(&buf, false)
	logger.Debug().Msg("hidden")
	logger.Info().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("Unexpected info-level output: %q", buf.String())
	}

	buf.Reset()
	logger = newLogger(&buf, true)
	logger.Debug().Msg("details")
	if !strings.Contains(buf.String(), "details") {
		t.Errorf("Expected debug output, got %q", buf.String())
	}
}

func TestInitializeServices(t *testing.T) {
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	solveService, err := initializeServices("configs", "", nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	levels, err := solveService.ListLevels(context.Background())
	if err != nil {
		t.Fatalf("ListLevels failed: %v", err)
	}
	if len(levels) < 2 {
		t.Errorf("Expected at least the two shipped levels, got %d", len(levels))
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	_, err := initializeServices("/non/existent/path", "", nil, zerolog.Nop())
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestParseMoveArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []engine.Direction
		wantErr bool
	}{
		{"letters", []string{"U", "R", "d", "l"}, []engine.Direction{engine.Up, engine.Right, engine.Down, engine.Left}, false},
		{"comma separated", []string{"up,right", "down"}, []engine.Direction{engine.Up, engine.Right, engine.Down}, false},
		{"quoted list", []string{"U R  L"}, []engine.Direction{engine.Up, engine.Right, engine.Left}, false},
		{"empty", nil, []engine.Direction{}, false},
		{"invalid", []string{"U", "jump"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMoveArgs(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseMoveArgs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d moves, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Move %d: expected %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

// runCommand executes the CLI against the shipped configs and returns what it printed
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCommandIn(t, "configs", args...)
}

func runCommandIn(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &buf
	cmd.ErrWriter = &buf
	err := cmd.Run(context.Background(), append([]string{"babasolver", "--config-dir", configDir}, args...))
	return buf.String(), err
}

func TestSolveCommand(t *testing.T) {
	out, err := runCommand(t, "solve", "--depth", "1", "--parallelism-depth", "1", "--print-every", "0", engine.TestLevelName)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for _, want := range []string{"Level test_level", "Iteration 1", "Total moves:", "SOLVED: 1 moves: R"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestSolveCommandInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"zero depth", []string{"--depth", "0"}},
		{"zero iterations", []string{"--iterations", "0"}},
		{"negative print interval", []string{"--print-every=-1"}},
		{"negative workers", []string{"--workers=-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"solve"}, tt.args...)
			_, err := runCommand(t, append(args, engine.TestLevelName)...)
			if !errors.Is(err, solver.ErrInvalidOptions) {
				t.Errorf("Expected ErrInvalidOptions, got %v", err)
			}
		})
	}
}

func TestSolveCommandUnknownLevel(t *testing.T) {
	if _, err := runCommand(t, "solve", "--depth", "1", "no_such_level"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}

func TestSimulateCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
		wantErr  bool
	}{
		{
			name:     "winning move",
			args:     []string{engine.TestLevelName, "r"},
			contains: []string{"1 moves: R", "won=true"},
		},
		{
			name:     "no moves",
			args:     []string{engine.TestLevelName},
			contains: []string{"0 moves:", "won=false", "alive=true"},
		},
		{name: "missing level", args: nil, wantErr: true},
		{name: "bad move", args: []string{engine.TestLevelName, "sideways"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, append([]string{"simulate"}, tt.args...)...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("simulate error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestLevelsCommands(t *testing.T) {
	out, err := runCommand(t, "levels", "list")
	if err != nil {
		t.Fatalf("levels list failed: %v", err)
	}
	for _, want := range []string{engine.FloatiestPlatformsName, engine.TestLevelName} {
		if !strings.Contains(out, want) {
			t.Errorf("levels list missing %q:\n%s", want, out)
		}
	}

	out, err = runCommand(t, "levels", "show", engine.TestLevelName)
	if err != nil {
		t.Fatalf("levels show failed: %v", err)
	}
	if !strings.Contains(out, "test_level") || !strings.Contains(out, "XXX") {
		t.Errorf("Unexpected levels show output:\n%s", out)
	}
}

func TestDefaultLevelFlag(t *testing.T) {
	out, err := runCommand(t, "--default-level", engine.TestLevelName, "levels", "show")
	if err != nil {
		t.Fatalf("levels show failed: %v", err)
	}
	if !strings.HasPrefix(out, engine.TestLevelName+" (18x18)") {
		t.Errorf("Expected the default level to be shown, got:\n%s", out)
	}

	if _, err := runCommand(t, "--default-level", "no_such_level", "levels", "show"); err == nil {
		t.Error("Expected an error for an unknown default level")
	}
}

func TestLevelsImportCommand(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join("configs", engine.TestLevelName+".json")

	out, err := runCommandIn(t, dir, "levels", "import", source, "copy.json")
	if err != nil {
		t.Fatalf("levels import failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "saved copy") {
		t.Errorf("Unexpected import output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "copy.json")); err != nil {
		t.Fatalf("Expected imported file: %v", err)
	}

	out, err = runCommandIn(t, dir, "simulate", "copy", "r")
	if err != nil {
		t.Fatalf("simulate on imported level failed: %v", err)
	}
	if !strings.Contains(out, "won=true") {
		t.Errorf("Expected the imported level to play like the original:\n%s", out)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name": "bad"}`), 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
	if _, err := runCommandIn(t, dir, "levels", "import", bad); err == nil {
		t.Error("Expected an invalid level to be rejected")
	}
	if _, err := runCommandIn(t, dir, "levels", "import"); err == nil {
		t.Error("Expected an error without a file")
	}
}

func TestLevelsValidateCommand(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name": "bad", "height": 0}`), 0644); err != nil {
		t.Fatalf("Failed to write level file: %v", err)
	}
	good := filepath.Join("configs", engine.TestLevelName+".json")

	out, err := runCommand(t, "levels", "validate", good)
	if err != nil {
		t.Fatalf("Expected %s to validate: %v\n%s", good, err, out)
	}
	if !strings.Contains(out, "ok") {
		t.Errorf("Expected ok line, got:\n%s", out)
	}

	out, err = runCommand(t, "levels", "validate", good, bad)
	if err == nil {
		t.Error("Expected validation failure")
	}
	if !strings.Contains(out, "FAIL "+bad) {
		t.Errorf("Expected FAIL line for %s, got:\n%s", bad, out)
	}
}

func TestWriteReport(t *testing.T) {
	tests := []struct {
		name   string
		result *solver.Result
		want   string
	}{
		{
			name:   "pruned",
			result: &solver.Result{Iterations: 1, Stats: []solver.Stats{{TotalMoves: 4, CacheHits: 1}}},
			want:   "Every line was pruned",
		},
		{
			name: "best line",
			result: &solver.Result{
				Iterations: 1,
				State:      engine.MustLevelState(engine.TestLevelConfig()),
				Score:      -1,
				Moves:      []engine.Direction{engine.Up, engine.Left},
				Stats:      []solver.Stats{{TotalMoves: 12345}},
			},
			want: "Best line (score -1): 2 moves: U L",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeReport(&buf, tt.result)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Report missing %q:\n%s", tt.want, buf.String())
			}
		})
	}
}

func TestApiAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("Expected health probe, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	if !apiAvailable(context.Background(), healthy.URL) {
		t.Error("Expected healthy server to be available")
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()
	if apiAvailable(context.Background(), down.URL) {
		t.Error("Expected closed server to be unavailable")
	}
}

func TestMCPEndpoint(t *testing.T) {
	solveService, err := initializeServices("configs", "", nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	handler := newHandler(api.NewServer(solveService, nil, zerolog.Nop()), "http://unused")

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	req := httptest.NewRequest("POST", "/mcp", body)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"jsonrpc":"2.0"`) {
		t.Errorf("Expected a JSON-RPC response, got %s", w.Body.String())
	}

	req = httptest.NewRequest("GET", "/mcp", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /mcp, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/health", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected API routes to stay mounted, got %d", w.Code)
	}
}
