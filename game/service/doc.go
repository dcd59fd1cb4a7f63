// Package service provides the business logic layer for the wall tracker.
//
// The service package implements:
//   - Multi-session tracker management
//   - Intent validation and dispatch (place, break, unbreak, remove, mark mode, reset)
//   - Batched intents with a per-call limit
//   - Paginated intent history
//   - Ruleset listing, loading and saving
//
// Core Interfaces:
//
// GameService is the main service interface used by the REST API and, through
// it, the MCP tools. SessionManager and ConfigManager are implemented by the
// session and config packages.
//
// Every intent runs under one service mutex, so a reader never sees a
// half-applied break or carry-forward. Returned GameState values are snapshots.
//
// Errors:
//
// ErrInvalidCoordinates and ErrUnknownAction mark intents the client got wrong;
// the engine itself never fails an intent, it records a no-op outcome instead.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr, logger)
//
//	info, err := svc.CreateSession(ctx, "standard")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := svc.ApplyIntent(ctx, info.ID, service.Intent{Action: "place", Rotation: 0, Lane: 2})
package service
