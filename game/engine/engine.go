package engine

import "fmt"

// Engine provides the main interface for tracker operations
type Engine interface {
	// State management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsWipe() bool
	IsMarkMode() bool

	// Intents
	Place(rotation, lane int) bool
	MarkOrBreak(rotation, lane int) bool
	Unbreak(rotation, lane int) bool
	Remove(rotation, lane int) bool
	Activate(rotation, lane int) bool
	SecondaryActivate(rotation, lane int) bool
	ToggleMarkMode() bool

	// Counts
	GetWallCount(rotation int) int
	GetBreakCount(rotation int) int

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetIntentHistory() []IntentEntry
	GetLastIntent() *IntentEntry

	// Read-only view for renderers
	GetBoardView() *BoardView
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewEngine creates a new engine with the provided ruleset
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}, nil
}

// NewEngineWithDefaults creates a new engine with the standard ruleset
func NewEngineWithDefaults() *GameEngine {
	config := DefaultConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the current state
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if len(state.Boards) != e.config.Rotations || len(state.CarryOver) != e.config.Rotations {
		return fmt.Errorf("state has %d boards and %d carry-over boards, ruleset needs %d",
			len(state.Boards), len(state.CarryOver), e.config.Rotations)
	}
	if len(state.CarriedFrom) != e.config.Rotations {
		state.CarriedFrom = make([]bool, e.config.Rotations)
	}
	e.state = state
	return nil
}

// Reset empties every board and carry-over, leaves mark mode and clears the wipe flag
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.IntentHistory
	prevTotal := e.state.TotalIntents

	e.state = InitGameStateFromConfig(e.config)
	e.state.Message = formatMessage(e.config.Messages.Reset, DefaultMessages().Reset)

	e.state.IntentHistory = prevHistory
	e.state.TotalIntents = prevTotal
	e.state.AddIntentToHistory(ActionReset, -1, -1, OutcomeReset, true)

	// The reset entry belongs to the previous segment
	e.state.CurrentIntents = []IntentEntry{}
	e.state.CurrentIntentsCount = 0

	return e.state
}

// IsWipe reports whether a placement overflowed a lane since the last reset
func (e *GameEngine) IsWipe() bool {
	return e.state.Wipe
}

// IsMarkMode reports whether mark mode is on
func (e *GameEngine) IsMarkMode() bool {
	return e.state.MarkMode
}

// Place adds a wall to the top of a lane. No-op in mark mode.
func (e *GameEngine) Place(rotation, lane int) bool {
	return e.apply(ActionPlace, rotation, lane, e.state.PlaceWall)
}

// MarkOrBreak breaks the topmost unbroken wall of a lane
func (e *GameEngine) MarkOrBreak(rotation, lane int) bool {
	return e.apply(ActionBreak, rotation, lane, e.state.BreakWall)
}

// Unbreak restores the lowest broken wall of a lane
func (e *GameEngine) Unbreak(rotation, lane int) bool {
	return e.apply(ActionUnbreak, rotation, lane, e.state.UnbreakWall)
}

// Remove pops the lane's own top wall, or unbreaks when mark mode is on
func (e *GameEngine) Remove(rotation, lane int) bool {
	if e.state.MarkMode {
		return e.apply(ActionRemove, rotation, lane, e.state.UnbreakWall)
	}
	return e.apply(ActionRemove, rotation, lane, e.state.RemoveWall)
}

// Activate is the primary gesture: break in mark mode, place otherwise
func (e *GameEngine) Activate(rotation, lane int) bool {
	if e.state.MarkMode {
		return e.MarkOrBreak(rotation, lane)
	}
	return e.Place(rotation, lane)
}

// SecondaryActivate is the secondary gesture
func (e *GameEngine) SecondaryActivate(rotation, lane int) bool {
	return e.Remove(rotation, lane)
}

// ToggleMarkMode flips mark mode and returns the new value
func (e *GameEngine) ToggleMarkMode() bool {
	e.state.MarkMode = !e.state.MarkMode
	outcome := OutcomeMarkModeOff
	e.state.Message = "Mark mode: OFF"
	if e.state.MarkMode {
		outcome = OutcomeMarkModeOn
		e.state.Message = "Mark mode: ON"
	}
	e.state.AddIntentToHistory(ActionToggleMark, -1, -1, outcome, true)
	return e.state.MarkMode
}

func (e *GameEngine) apply(action string, rotation, lane int, op func(int, int, *GameConfig) string) bool {
	outcome := op(rotation, lane, e.config)
	success := succeeded(outcome)
	e.state.AddIntentToHistory(action, rotation, lane, outcome, success)
	return success
}

// ApplyIntent dispatches an action by name
func (e *GameEngine) ApplyIntent(action string, rotation, lane int) (bool, error) {
	switch action {
	case ActionPlace:
		return e.Place(rotation, lane), nil
	case ActionBreak:
		return e.MarkOrBreak(rotation, lane), nil
	case ActionUnbreak:
		return e.Unbreak(rotation, lane), nil
	case ActionRemove:
		return e.Remove(rotation, lane), nil
	case ActionActivate:
		return e.Activate(rotation, lane), nil
	case ActionSecondary:
		return e.SecondaryActivate(rotation, lane), nil
	case ActionToggleMark:
		e.ToggleMarkMode()
		return true, nil
	case ActionReset:
		e.Reset()
		return true, nil
	default:
		return false, fmt.Errorf("unknown action %q", action)
	}
}

// GetWallCount returns the own-board wall count of a rotation
func (e *GameEngine) GetWallCount(rotation int) int {
	if rotation < 0 || rotation >= len(e.state.Boards) {
		return 0
	}
	return e.state.WallCount(rotation)
}

// GetBreakCount returns the break count of a rotation, own and carried
func (e *GameEngine) GetBreakCount(rotation int) int {
	if rotation < 0 || rotation >= len(e.state.Boards) {
		return 0
	}
	return e.state.BreakCount(rotation)
}

// GetConfig returns the current ruleset
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new ruleset and resets the tracker
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetIntentHistory returns the complete intent history
func (e *GameEngine) GetIntentHistory() []IntentEntry {
	return e.state.IntentHistory
}

// GetLastIntent returns the last intent, or nil if none
func (e *GameEngine) GetLastIntent() *IntentEntry {
	if len(e.state.IntentHistory) == 0 {
		return nil
	}
	return &e.state.IntentHistory[len(e.state.IntentHistory)-1]
}

// GetBoardView returns the merged read-only view of every rotation
func (e *GameEngine) GetBoardView() *BoardView {
	return BuildBoardView(e.state, e.config)
}
