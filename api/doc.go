// Package api exposes the wall tracker over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - create a session ({"config_id": "standard"})
//   - GET /api/sessions - list sessions (?sort=created|accessed&order=asc|desc&limit=N&config=ID)
//   - GET /api/sessions/{id} - session info
//   - DELETE /api/sessions/{id} - delete a session
//
// Tracker:
//   - GET /api/sessions/{id}/state - raw tracker state
//   - GET /api/sessions/{id}/board - merged board view (?format=text for a text rendering)
//   - POST /api/sessions/{id}/intent - apply one intent
//   - POST /api/sessions/{id}/bulk-intent - apply up to 50 intents
//   - POST /api/sessions/{id}/mark-mode - toggle mark mode
//   - POST /api/sessions/{id}/reset - empty every board
//   - GET /api/sessions/{id}/history - paginated intent history (?page&limit&order)
//
// Rulesets:
//   - GET /api/configs - list rulesets
//   - POST /api/configs - save a ruleset
//   - GET /api/configs/{name} - load a ruleset
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket board updates
//
// An intent body names an action and a zero-based rotation and lane:
//
//	{"action": "place", "rotation": 0, "lane": 2}
//
// Actions are place, break, unbreak, remove, activate, secondary and
// toggle_mark. Intents the rules reject (wall cap, mark mode, empty lane) still
// return 200 with success false and an outcome code.
//
// Errors are JSON objects:
//
//	{"error": "session ab12: session not found"}
//
// Unknown sessions and rulesets map to 404, malformed bodies, bad coordinates,
// unknown actions and invalid rulesets to 400.
//
// Every mutating request pushes the new board to the session's WebSocket
// viewers.
package api
