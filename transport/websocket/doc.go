// Package websocket streams solve job events to browser and CLI watchers.
//
// The package uses a hub-and-spoke model where a central Hub owns every
// connection. Each client has a read and a write goroutine; only the hub
// goroutine touches the client sets.
//
// Message Protocol:
//
// Messages are JSON objects {job_id, event, data, timestamp}. Events are
// solve_started, progress, iteration and solve_finished. Incoming messages
// are ignored.
//
// Usage:
//
//	hub := websocket.NewHub(log.Logger)
//	go hub.Run(ctx)
//
//	svc := service.NewSolveService(levels, hub, log.Logger)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("job"))
//	})
//
// BroadcastEvent never blocks the caller. Events are dropped when the hub
// falls behind, and a client whose buffer is full is disconnected.
package websocket
