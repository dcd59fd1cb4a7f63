package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

func createTestConfig() *engine.GameConfig {
	config := engine.DefaultConfig()
	config.Name = "Test Config"
	return config
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID == "" {
			t.Error("Expected auto-generated session ID")
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got %d characters", len(session.ID))
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid session ID", func(t *testing.T) {
		_, err := manager.Create("bad/id", config)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalidConfig := createTestConfig()
		invalidConfig.Name = "" // Make config invalid
		_, err := manager.Create("invalid-test", invalidConfig)
		if err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	// Create test session
	created, _ := manager.Create("get-test", config)

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("get-test")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected session ID '%s', got '%s'", created.ID, session.ID)
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("GET-TEST")
		if err != nil {
			t.Fatalf("Failed to get session with different case: %v", err)
		}
		if session.ID != created.ID {
			t.Errorf("Expected same session regardless of case")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	t.Run("create new session", func(t *testing.T) {
		session, err := manager.GetOrCreate("new-session", config)
		if err != nil {
			t.Fatalf("Failed to get or create session: %v", err)
		}
		if session.ID != "new-session" {
			t.Errorf("Expected session ID 'new-session', got '%s'", session.ID)
		}
	})

	t.Run("get existing session", func(t *testing.T) {
		// Should get the same session without creating new one
		session, err := manager.GetOrCreate("new-session", config)
		if err != nil {
			t.Fatalf("Failed to get existing session: %v", err)
		}
		if session.ID != "new-session" {
			t.Errorf("Expected same session ID")
		}
	})
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	// Create test session
	manager.Create("delete-test", config)

	t.Run("delete existing session", func(t *testing.T) {
		err := manager.Delete("delete-test")
		if err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		// Verify session is deleted
		_, err = manager.Get("delete-test")
		if err != ErrSessionNotFound {
			t.Error("Expected session to be deleted")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		err := manager.Delete("non-existent")
		if err != ErrSessionNotFound {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		manager.Create("case-test", config)
		err := manager.Delete("CASE-TEST")
		if err != nil {
			t.Fatalf("Failed to delete with different case: %v", err)
		}
		_, err = manager.Get("case-test")
		if err != ErrSessionNotFound {
			t.Error("Expected session to be deleted regardless of case")
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	// Create multiple sessions
	session1, _ := manager.Create("list-1", config)
	session2, _ := manager.Create("list-2", config)
	session3, _ := manager.Create("list-3", config)

	sessions := manager.List()

	if len(sessions) < 3 {
		t.Errorf("Expected at least 3 sessions, got %d", len(sessions))
	}

	// Verify all created sessions are in the list
	foundSessions := make(map[string]bool)
	for _, s := range sessions {
		foundSessions[s.ID] = true
	}

	if !foundSessions[session1.ID] {
		t.Error("Session 1 not found in list")
	}
	if !foundSessions[session2.ID] {
		t.Error("Session 2 not found in list")
	}
	if !foundSessions[session3.ID] {
		t.Error("Session 3 not found in list")
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	// Create sessions with different last access times
	active, _ := manager.Create("active", config)
	expired, _ := manager.Create("expired", config)

	// Simulate expired session
	expired.LastAccessedAt = time.Now().Add(-2 * time.Hour)
	active.LastAccessedAt = time.Now()

	// Clean up sessions older than 1 hour
	deleted := manager.CleanupExpiredSessions(1 * time.Hour)

	if deleted != 1 {
		t.Errorf("Expected 1 session to be deleted, got %d", deleted)
	}

	// Verify expired session is deleted
	_, err := manager.Get("expired")
	if err != ErrSessionNotFound {
		t.Error("Expected expired session to be deleted")
	}

	// Verify active session still exists
	_, err = manager.Get("active")
	if err != nil {
		t.Error("Expected active session to still exist")
	}
}

func TestManager_CleanupLogs(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	manager := NewManager(zap.New(core))

	stale, _ := manager.Create("stale", createTestConfig())
	stale.LastAccessedAt = time.Now().Add(-time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Minute); removed != 1 {
		t.Fatalf("Expected 1 removed session, got %d", removed)
	}

	entries := logs.FilterMessage("expired sessions removed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one cleanup log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["removed"]; got != int64(1) {
		t.Errorf("Expected removed=1 in log fields, got %v", got)
	}

	// Nothing to remove, nothing logged
	manager.CleanupExpiredSessions(time.Minute)
	if logs.Len() != 1 {
		t.Errorf("Expected no further log entries, got %d", logs.Len())
	}
}

// carryIntoSecondRotation fills rotation 1 to the wall cap and breaks seven
// walls, which carries four survivors into rotation 2.
func carryIntoSecondRotation(t *testing.T, eng *engine.GameEngine) {
	t.Helper()
	for i := 0; i < engine.WallCap; i++ {
		if !eng.Place(0, i%engine.Lanes) {
			t.Fatalf("Place %d failed", i)
		}
	}
	eng.ToggleMarkMode()
	for i := 0; i < engine.BreakCap; i++ {
		if !eng.MarkOrBreak(0, i%engine.Lanes) {
			t.Fatalf("Break %d failed", i)
		}
	}
	if got := engine.CountWalls(eng.GetState().CarryOver[1]); got != 4 {
		t.Fatalf("Expected 4 carried walls, got %d", got)
	}
}

func TestManager_CleanupDropsCarryOverState(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	stale, err := manager.Create("carry", config)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	carryIntoSecondRotation(t, stale.Engine)
	stale.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Fatalf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("CARRY"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}

	fresh, err := manager.Create("carry", config)
	if err != nil {
		t.Fatalf("Failed to reuse session ID after cleanup: %v", err)
	}
	state := fresh.Engine.GetState()
	for r := range state.CarryOver {
		if n := engine.CountWalls(state.CarryOver[r]); n != 0 {
			t.Errorf("Expected empty carry-over in rotation %d, got %d walls", r+1, n)
		}
	}
	if fresh.Engine.IsMarkMode() {
		t.Error("Expected mark mode off in a fresh session")
	}
}

func TestManager_CarryOverIsolation(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	first, _ := manager.Create("first", config)
	second, _ := manager.Create("second", config)

	carryIntoSecondRotation(t, first.Engine)

	got, err := manager.Get("First")
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.Engine.GetBoardView().Rotations[1].CarryCount != 4 {
		t.Error("Expected the carry-over to be visible through Get")
	}

	view := second.Engine.GetBoardView()
	if view.Rotations[1].CarryCount != 0 || view.Rotations[0].BreakCount != 0 {
		t.Errorf("Expected untouched second session, got carry %d breaks %d",
			view.Rotations[1].CarryCount, view.Rotations[0].BreakCount)
	}
}

func TestManager_SessionUsesItsRuleset(t *testing.T) {
	manager := NewManager(nil)

	compact := createTestConfig()
	compact.Name = "compact"
	compact.Lanes = 4
	compact.Rotations = 4
	compact.MaxWalls = 5
	compact.WallCap = 8
	compact.BreakCap = 5

	session, err := manager.Create("small", compact)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	view := session.Engine.GetBoardView()
	if len(view.Rotations) != 4 || len(view.Rotations[0].Lanes) != 4 {
		t.Errorf("Expected a 4x4 board, got %d rotations of %d lanes", len(view.Rotations), len(view.Rotations[0].Lanes))
	}
	if session.Engine.Place(0, 4) {
		t.Error("Expected lane 5 to be out of range for a 4-lane ruleset")
	}

	invalid := createTestConfig()
	invalid.WallCap = 0
	if _, err := manager.Create("broken", invalid); err == nil {
		t.Error("Expected an invalid ruleset to be rejected")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected only the valid session to be stored, got %d", manager.Count())
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	session, _ := manager.Create("access-test", config)
	originalTime := session.LastAccessedAt

	// Wait a bit to ensure time difference
	time.Sleep(10 * time.Millisecond)

	err := manager.UpdateLastAccessed("access-test")
	if err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}

	// Get session again to verify update
	updated, _ := manager.Get("access-test")
	if !updated.LastAccessedAt.After(originalTime) {
		t.Error("Expected LastAccessedAt to be updated")
	}
}

func TestManager_Exists(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	manager.Create("exists-test", config)

	t.Run("existing session", func(t *testing.T) {
		if !manager.sessionExists("exists-test") {
			t.Error("Expected session to exist")
		}
	})

	t.Run("case-insensitive existence check", func(t *testing.T) {
		if !manager.sessionExists("EXISTS-TEST") {
			t.Error("Expected session to exist regardless of case")
		}
	})

	t.Run("non-existent session", func(t *testing.T) {
		if manager.sessionExists("non-existent") {
			t.Error("Expected session not to exist")
		}
	})
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	// Test concurrent session creation
	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			sessionID := strings.ToLower(generateRandomID())
			_, err := manager.Create(sessionID, config)
			if err != nil && err != ErrSessionAlreadyExists {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	// Check for unexpected errors
	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// Verify sessions were created
	sessions := manager.List()
	if len(sessions) == 0 {
		t.Error("Expected sessions to be created")
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	// Create two sessions
	session1, _ := manager.Create("iso-1", config)
	session2, _ := manager.Create("iso-2", config)

	// Modify session 1
	session1.Engine.Place(0, 0)
	session1.Engine.ToggleMarkMode()

	// Verify session 2 is not affected
	if session2.Engine.GetWallCount(0) != 0 {
		t.Error("Session 2 should not be affected by session 1 placements")
	}
	if session2.Engine.IsMarkMode() {
		t.Error("Sessions should have independent mark mode")
	}
	if session1.Engine.GetWallCount(0) != 1 {
		t.Errorf("Expected 1 wall in session 1, got %d", session1.Engine.GetWallCount(0))
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	generatedIDs := make(map[string]bool)

	// Generate multiple sessions and check for uniqueness
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		// Verify ID format (4 hex characters)
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}

// Helper function to generate random ID for testing
func generateRandomID() string {
	return "test-" + time.Now().Format("150405")
}
