// Package service provides the business logic layer between the transports
// (HTTP, WebSocket, MCP) and the solver.
//
// The service package implements:
//   - Level listing, inspection and move simulation
//   - Background solve jobs with their own cancellable context
//   - Job progress forwarding to a ProgressPublisher
//   - Graceful shutdown of running jobs
//
// Core Interfaces:
//
// SolveService is the main service interface. LevelManager supplies level
// layouts (game/config.Manager implements it) and ProgressPublisher
// receives job events (the websocket hub implements it).
//
// Usage:
//
//	levels, _ := config.NewManager("configs")
//	svc := service.NewSolveService(levels, hub, log.Logger)
//
//	job, err := svc.StartSolve(ctx, "floatiest_platforms", solver.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	final, err := svc.WaitJob(ctx, job.ID)
//
// Jobs are identified by UUIDs and are kept in memory until the process
// exits. A job is not tied to the request that started it.
package service
