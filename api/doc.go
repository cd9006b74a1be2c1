// Package api provides the HTTP REST API for the solver.
//
// Endpoints:
//
// Levels:
//   - GET /api/levels - List available levels
//   - GET /api/levels/{name} - Level layout and rendered initial board
//   - POST /api/levels/{name}/simulate - Replay {"moves": ["up", "r", ...]}
//
// Solve jobs:
//   - POST /api/solves - Start a solve {"level": "...", "options": {...}}
//   - GET /api/solves - List jobs (?status=won&limit=10)
//   - GET /api/solves/{id} - Job snapshot with progress and result
//   - DELETE /api/solves/{id} - Cancel a job
//
// Streaming:
//   - GET /ws?job={id} - WebSocket stream of the job's events
//
// Other:
//   - GET /api/health - Liveness probe
//
// Options omitted from a start request keep their default values. Errors
// are returned as {"error": "..."} with 400 for invalid input, 404 for
// unknown levels or jobs and 503 while shutting down.
package api
