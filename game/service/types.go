package service

import (
	"time"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

// SessionInfo provides information about a tracker session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// Intent is one player gesture addressed to a lane
type Intent struct {
	Action   string `json:"action"`
	Rotation int    `json:"rotation"`
	Lane     int    `json:"lane"`
}

// IntentResult contains the result of a single intent
type IntentResult struct {
	Success   bool              `json:"success"`
	Outcome   string            `json:"outcome"`
	Message   string            `json:"message"`
	Intent    Intent            `json:"intent"`
	GameState *engine.GameState `json:"game_state"`
	Board     *engine.BoardView `json:"board"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// BulkIntentResult contains the result of a batch of intents
type BulkIntentResult struct {
	IntentsExecuted  int               `json:"intents_executed"`
	RequestedIntents int               `json:"requested_intents"`
	Success          bool              `json:"success"`
	GameState        *engine.GameState `json:"game_state"`
	Board            *engine.BoardView `json:"board"`
	Events           []GameEvent       `json:"events"`
	Steps            []IntentStep      `json:"steps,omitempty"`
	StoppedReason    string            `json:"stopped_reason,omitempty"`
	StoppedOnIntent  int               `json:"stopped_on_intent,omitempty"` // 1-based index of the intent that stopped the batch
	Truncated        bool              `json:"truncated,omitempty"`
	Limit            int               `json:"limit,omitempty"`
	Wipe             bool              `json:"wipe"`
	Message          string            `json:"message,omitempty"`
}

// IntentStep is a compact record for each executed intent in a batch
type IntentStep struct {
	Idx        int    `json:"idx"`
	Action     string `json:"action"`
	Rotation   int    `json:"rotation"`
	Lane       int    `json:"lane"`
	Outcome    string `json:"outcome"`
	Success    bool   `json:"success"`
	WallCount  int    `json:"wall_count"`
	BreakCount int    `json:"break_count"`
}

// Event types
const (
	EventPlace        = "place"
	EventWipe         = "wipe"
	EventBreak        = "break"
	EventCarryForward = "carry_forward"
	EventUnbreak      = "unbreak"
	EventRemove       = "remove"
	EventMarkMode     = "mark_mode"
	EventReset        = "reset"
)

// GameEvent represents something that changed the tracker
type GameEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Rotation  int       `json:"rotation"`
	Lane      int       `json:"lane"`
}

// HistoryOptions configures intent history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated intent history
type HistoryResponse struct {
	Intents      []engine.IntentEntry `json:"intents"`
	TotalIntents int                  `json:"total_intents"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
	TotalPages   int                  `json:"total_pages"`
	HasNext      bool                 `json:"has_next"`
	HasPrevious  bool                 `json:"has_previous"`
}

// ConfigInfo provides information about a ruleset
type ConfigInfo struct {
	Filename          string `json:"filename"`
	ConfigID          string `json:"config_id"` // The identifier to use for session creation
	Name              string `json:"name"`      // Display name
	Description       string `json:"description"`
	Lanes             int    `json:"lanes"`
	Rotations         int    `json:"rotations"`
	MaxWalls          int    `json:"max_walls"`
	WallCap           int    `json:"wall_cap"`
	BreakCap          int    `json:"break_cap"`
	RollbackCarryOver bool   `json:"rollback_carry_over"`
}
