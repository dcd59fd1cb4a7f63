// Package websocket pushes board updates to browsers watching a session.
//
// A single Hub owns every connection. Clients join a session with
// /ws?session=<id> and receive a JSON Message whenever an intent changes that
// session's board:
//
//	{"session_id": "ab12", "event": "board_update", "board": {...}}
//
// The board field is the engine's BoardView, so viewers never merge carry-over
// themselves. Connections are receive-only; incoming frames only keep the
// connection alive.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
//
// Run returns when ctx is cancelled and closes every client. Broadcasts are
// queued and dropped with a warning when the queue is full, so intent handlers
// never block on slow viewers.
package websocket
