// Package mcp exposes the wall tracker to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API and turns the
// response into text, with the board drawn by engine.BoardView.Render.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - board_state: merged board of every rotation
//   - place_wall, break_wall, unbreak_wall, remove_wall: one lane intent
//   - apply_intents: a batch of intents, optionally after a reset
//   - toggle_mark_mode, reset_board
//   - intent_history, list_configs, game_instructions
//
// Rotation and lane arguments start at 1 to match the rendering; the client
// converts them to the zero-based indices the REST API takes.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//
//	// Stdio mode
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode, one JSON-RPC message per POST /mcp
//	response := client.GetMCPServer().HandleMessage(ctx, body)
package mcp
