// Package session keeps wall tracker sessions in memory.
//
// Each session owns one engine.GameEngine and its ruleset. Sessions are keyed by
// a short case-insensitive ID; Create generates a random 4-character hex ID when
// none is given and retries on collision.
//
// Sessions live only as long as the process. CleanupExpiredSessions removes
// those not accessed within a maximum age and is driven by a ticker in main.
//
// Usage:
//
//	manager := session.NewManager(logger)
//
//	sess, err := manager.Create("", ruleset)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	sessions := manager.List()
package session
