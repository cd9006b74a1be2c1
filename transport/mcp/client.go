package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/service"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Baba Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Baba Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

PUZZLE:
Two Babas move together every turn. Push the key (K) into the door (D) to win.
Walking onto empty space kills a Baba unless both share the cell.

AVAILABLE TOOLS:
- list_levels: List available levels
- describe_level: Show a level's initial board and legend
- simulate_moves: Replay a move list and inspect the resulting board
- start_solve: Start a background exhaustive search
- get_solve: Progress or result of a solve job
- list_solves: List solve jobs
- cancel_solve: Stop a running solve job
- solver_instructions: Rules, board legend and tuning advice

Start small: max_turn_depth around 10 finishes in seconds, 20 can take minutes.`),
	)

	c.registerTools()
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func intProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Levels
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_levels",
		Description: "List the levels that can be simulated or solved",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListLevels)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_level",
		Description: "Show a level's initial board, heuristic and legend",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": stringProp("Level id from list_levels (optional, defaults to the default level)"),
			},
		},
	}, c.handleDescribeLevel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate_moves",
		Description: "Replay moves from a level's initial state and show the result",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level": stringProp("Level id"),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right", "u", "d", "l", "r"},
					},
					"description": "Moves applied to both Babas, in order",
				},
			},
			Required: []string{"level", "moves"},
		},
	}, c.handleSimulate)

	// Solve jobs
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_solve",
		Description: "Start a background solve. Unset options keep their defaults.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"level":             stringProp("Level id (optional)"),
				"iteration_count":   intProp("Restarts from the best leaf of the previous iteration"),
				"max_turn_depth":    intProp("Moves searched per iteration"),
				"parallelism_depth": intProp("Turn at which the search forks into workers"),
				"max_cache_depth":   intProp("Deepest turn whose states are memoized"),
				"max_workers":       intProp("Cap on concurrent workers, 0 for one per fork"),
			},
		},
	}, c.handleStartSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_solve",
		Description: "Get the progress or result of a solve job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": stringProp("Solve job id"),
			},
			Required: []string{"id"},
		},
	}, c.handleGetSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_solves",
		Description: "List solve jobs, oldest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"running", "won", "exhausted", "cancelled", "failed"},
					"description": "Only jobs with this status",
				},
				"limit": intProp("Only the most recent jobs"),
			},
		},
	}, c.handleListSolves)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_solve",
		Description: "Cancel a running solve job",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"id": stringProp("Solve job id"),
			},
			Required: []string{"id"},
		},
	}, c.handleCancelSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solver_instructions",
		Description: "Get the puzzle rules, board legend and solver tuning advice",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var levels []service.LevelInfo
	if err := c.apiCall(ctx, "GET", "/api/levels", nil, &levels); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available Levels (%d):\n\n", len(levels))
	for _, l := range levels {
		source := "file"
		if l.Builtin {
			source = "built-in"
		}
		fmt.Fprintf(&b, "• %s (%dx%d, heuristic: %s, %s)\n", l.LevelID, l.Height, l.Width, l.Heuristic, source)
		if l.Description != "" {
			fmt.Fprintf(&b, "  %s\n", l.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleDescribeLevel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	level, _ := args["level"].(string)
	if level == "" {
		level = engine.FloatiestPlatformsName
	}

	var detail service.LevelDetail
	if err := c.apiCall(ctx, "GET", "/api/levels/"+url.PathEscape(level), nil, &detail); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatLevelDetail(&detail)), nil
}

func (c *Client) handleSimulate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	level, _ := args["level"].(string)
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	var result service.SimulateResult
	path := fmt.Sprintf("/api/levels/%s/simulate", url.PathEscape(level))
	if err := c.apiCall(ctx, "POST", path, map[string]interface{}{"moves": moves}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSimulation(&result)), nil
}

func (c *Client) handleStartSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	level, _ := args["level"].(string)

	opts := solver.DefaultOptions()
	for key, target := range map[string]*int{
		"iteration_count":   &opts.IterationCount,
		"max_turn_depth":    &opts.MaxTurnDepth,
		"parallelism_depth": &opts.ParallelismDepth,
		"max_cache_depth":   &opts.MaxCacheDepth,
		"max_workers":       &opts.MaxWorkers,
	} {
		if v, ok := args[key].(float64); ok {
			*target = int(v)
		}
	}

	body := map[string]interface{}{"level": level, "options": opts}
	var job service.JobInfo
	if err := c.apiCall(ctx, "POST", "/api/solves", body, &job); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Started solve %s on %s\nDepth %d, %d iteration(s), fork at turn %d\nUse get_solve with this id to follow it.",
		job.ID, job.LevelID, job.Options.MaxTurnDepth, job.Options.IterationCount, job.Options.ParallelismDepth)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, _ := args["id"].(string)

	var job service.JobInfo
	if err := c.apiCall(ctx, "GET", "/api/solves/"+url.PathEscape(id), nil, &job); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJob(&job)), nil
}

func (c *Client) handleListSolves(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	query := url.Values{}
	if status, ok := args["status"].(string); ok && status != "" {
		query.Set("status", status)
	}
	if limit, ok := args["limit"].(float64); ok {
		query.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	path := "/api/solves"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var response struct {
		Count  int               `json:"count"`
		Solves []service.JobInfo `json:"solves"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Solve Jobs (%d):\n\n", response.Count)
	for _, j := range response.Solves {
		fmt.Fprintf(&b, "- %s %s on %s (started %s)", j.ID, j.Status, j.LevelID, j.CreatedAt.Format("15:04:05"))
		if j.Solution != "" {
			fmt.Fprintf(&b, ": %s", j.Solution)
		}
		b.WriteByte('\n')
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleCancelSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	id, _ := args["id"].(string)

	var job service.JobInfo
	if err := c.apiCall(ctx, "DELETE", "/api/solves/"+url.PathEscape(id), nil, &job); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJob(&job)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Baba Solver - Instructions

RULES:
• Every move is applied to both Babas, the first Baba moves first
• Walls (X) and the door (D) block movement
• The key (K) and the three text blocks (1 "rock", 2 "is", 3 "push") are pushed along
• Rocks (R) are pushed only while "rock is push" reads left-to-right or top-to-bottom
  around the "is" text; otherwise Babas walk over them
• A Baba standing on empty space (" ") dies, unless both Babas share the cell
• Pushing the key into the door wins

BOARD LEGEND:
B Baba   X wall   ^ tile   R rock   D door   K key
1 "rock" text   2 "is" text   3 "push" text   (blank) empty space

SEARCH OPTIONS:
• max_turn_depth: moves per iteration. The tree grows about 4x per move, the memo
  table keeps it in check. Start near 10.
• parallelism_depth: turn where the search forks into one worker per state. 2 gives
  up to 16 workers.
• max_cache_depth: deeper states are not memoized, trading memory for repeated work.
• iteration_count: more than 1 restarts from the best unfinished line, which is a
  greedy way to reach deeper solutions.

WORKFLOW:
1. list_levels, then describe_level to see the board
2. simulate_moves to try a hypothesis
3. start_solve, then poll get_solve until the status is no longer "running"
4. simulate_moves with the solution to check it`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatBoard(b *strings.Builder, rows []string) {
	border := strings.Repeat("X", len(rows[0])+2)
	b.WriteString(border + "\n")
	for _, row := range rows {
		b.WriteString("X" + row + "X\n")
	}
	b.WriteString(border + "\n")
}

func formatLevelDetail(d *service.LevelDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\n", d.LevelID)
	if d.Config != nil {
		if d.Config.Description != "" {
			fmt.Fprintf(&b, "%s\n", d.Config.Description)
		}
		heuristic := d.Config.Heuristic
		if heuristic == "" {
			heuristic = engine.DefaultHeuristicName
		}
		fmt.Fprintf(&b, "Size: %dx%d, heuristic: %s\n", d.Config.Height, d.Config.Width, heuristic)
	}
	if len(d.Board) > 0 {
		b.WriteString("\n")
		formatBoard(&b, d.Board)
	}
	return b.String()
}

func formatSimulation(r *service.SimulateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %s\n", r.LevelID, engine.FormatMoveList(r.Moves))
	switch {
	case r.Won:
		b.WriteString("Status: WON - the key is in the door\n")
	case !r.AllBabasAlive:
		b.WriteString("Status: a Baba died\n")
	case !r.PossibleToWin:
		b.WriteString("Status: unwinnable according to the level heuristic\n")
	default:
		b.WriteString("Status: in progress\n")
	}
	fmt.Fprintf(&b, "Babas together: %v, rock is push: %v, score: %d\n", r.BabasTogether, r.RuleActive, r.Score)
	if len(r.Board) > 0 {
		b.WriteString("\n")
		formatBoard(&b, r.Board)
	}
	return b.String()
}

func formatJob(j *service.JobInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Solve %s on %s: %s\n", j.ID, j.LevelID, strings.ToUpper(string(j.Status)))
	fmt.Fprintf(&b, "Options: depth %d, %d iteration(s), fork at %d, cache depth %d\n",
		j.Options.MaxTurnDepth, j.Options.IterationCount, j.Options.ParallelismDepth, j.Options.MaxCacheDepth)

	if j.Status == service.JobRunning && j.Progress != nil {
		fmt.Fprintf(&b, "Progress: iteration %d, %s moves, cache %s\n",
			j.Progress.Iteration,
			solver.FormatNumberWithSuffix(j.Progress.Moves),
			solver.FormatNumberWithSuffix(uint64(j.Progress.CacheSize)))
	}
	for i, s := range j.Stats {
		fmt.Fprintf(&b, "Iteration %d: %s moves (%s unique), cache %s, %d workers, %s\n",
			i+1,
			solver.FormatNumberWithCommas(s.TotalMoves),
			solver.FormatNumberWithCommas(s.UniqueMoves()),
			solver.FormatNumberWithCommas(s.CacheSize),
			s.ParallelRoots,
			s.Elapsed.Round(time.Millisecond))
	}
	if j.Solution != "" {
		label := "Best line"
		if j.Won {
			label = "Solution"
		}
		fmt.Fprintf(&b, "%s (score %d): %s\n", label, j.Score, j.Solution)
	}
	if j.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", j.Error)
	}
	if len(j.Board) > 0 {
		b.WriteString("\n")
		formatBoard(&b, j.Board)
	}
	return b.String()
}
