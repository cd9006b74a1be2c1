// Package mcp provides the Model Context Protocol interface to the solver.
//
// The Client is a thin proxy: every tool call becomes a REST request
// against the api package, so the MCP server holds no state of its own and
// can point at a local or a remote solver.
//
// MCP Tools:
//   - list_levels: List level files and built-in levels
//   - describe_level: Initial board, size and heuristic of a level
//   - simulate_moves: Replay a move list and report the resulting state
//   - start_solve: Start a background solve with optional tuning
//   - get_solve: Progress, per-iteration statistics and result of a job
//   - list_solves: List jobs, optionally filtered by status
//   - cancel_solve: Stop a running job
//   - solver_instructions: Rules, board legend and tuning advice
//
// Transport Modes:
//   - Stdio: ServeStdio(client.GetMCPServer()) for local MCP clients
//   - HTTP: HandleMessage mounted at /mcp next to the REST API
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
