package engine

// WallKind is the structural type of a wall, or X when the wall is broken
type WallKind string

const (
	KindN      WallKind = "N"
	KindH      WallKind = "H"
	KindM      WallKind = "M"
	KindBroken WallKind = "X"

	// BreakLabel is the display label for a broken wall
	BreakLabel = "Break"
)

// Provenance records where a wall came from
type Provenance string

const (
	Placed Provenance = "placed"
	Carry  Provenance = "carry"
)

const (
	// Board geometry and limits
	Lanes     = 6
	Rotations = 6
	MaxWalls  = 6
	WallCap   = 11
	BreakCap  = 7

	// Validation constants
	MinDimension        = 1
	MaxDimension        = 12
	MaxBulkIntents      = 50
	WebSocketBufferSize = 256
)

// Intent actions accepted by the engine
const (
	ActionPlace      = "place"
	ActionBreak      = "break"
	ActionUnbreak    = "unbreak"
	ActionRemove     = "remove"
	ActionActivate   = "activate"
	ActionSecondary  = "secondary"
	ActionToggleMark = "toggle_mark"
	ActionReset      = "reset"
)

// Outcome codes recorded in the intent history
const (
	OutcomePlaced           = "placed"
	OutcomeWipe             = "wipe"
	OutcomeWallCap          = "wall_cap"
	OutcomeBreakCap         = "break_cap"
	OutcomeMarkMode         = "mark_mode"
	OutcomeBroken           = "broken"
	OutcomeCarriedForward   = "carried_forward"
	OutcomeUnbroken         = "unbroken"
	OutcomeRemoved          = "removed"
	OutcomeNothingToBreak   = "nothing_to_break"
	OutcomeNothingToUnbreak = "nothing_to_unbreak"
	OutcomeLaneEmpty        = "lane_empty"
	OutcomeOutOfRange       = "out_of_range"
	OutcomeMarkModeOn       = "mark_mode_on"
	OutcomeMarkModeOff      = "mark_mode_off"
	OutcomeReset            = "reset"
)

// Wall is a single marker in a lane
type Wall struct {
	Type   WallKind   `json:"type" yaml:"type"`
	Source Provenance `json:"source" yaml:"source"`
}

// IsBroken reports whether the wall has been marked broken
func (w Wall) IsBroken() bool {
	return w.Type == KindBroken
}

// Lane is an ordered stack of walls, bottom first. Index is the row.
type Lane []Wall

// Board holds one lane stack per lane for a single rotation
type Board []Lane

// Messages holds the text shown after each intent. Templates with verbs are
// formatted with rotation and lane numbers (1-based).
type Messages struct {
	Welcome          string `json:"welcome" yaml:"welcome"`
	Placed           string `json:"placed" yaml:"placed"`
	Wipe             string `json:"wipe" yaml:"wipe"`
	WallCap          string `json:"wall_cap" yaml:"wall_cap"`
	BreakCap         string `json:"break_cap" yaml:"break_cap"`
	MarkModeBlocks   string `json:"mark_mode_blocks" yaml:"mark_mode_blocks"`
	Broken           string `json:"broken" yaml:"broken"`
	CarriedForward   string `json:"carried_forward" yaml:"carried_forward"`
	Unbroken         string `json:"unbroken" yaml:"unbroken"`
	Removed          string `json:"removed" yaml:"removed"`
	NothingToBreak   string `json:"nothing_to_break" yaml:"nothing_to_break"`
	NothingToUnbreak string `json:"nothing_to_unbreak" yaml:"nothing_to_unbreak"`
	LaneEmpty        string `json:"lane_empty" yaml:"lane_empty"`
	Reset            string `json:"reset" yaml:"reset"`
}

// GameConfig is a ruleset: board geometry, limits, colours and messages
type GameConfig struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Lanes       int    `json:"lanes" yaml:"lanes"`
	Rotations   int    `json:"rotations" yaml:"rotations"`
	MaxWalls    int    `json:"max_walls" yaml:"max_walls"`
	WallCap     int    `json:"wall_cap" yaml:"wall_cap"`
	BreakCap    int    `json:"break_cap" yaml:"break_cap"`

	// RollbackCarryOver clears carry-over written by a rotation when an unbreak
	// takes that rotation back below the break cap. Off by default.
	RollbackCarryOver bool `json:"rollback_carry_over" yaml:"rollback_carry_over"`

	Colors   map[WallKind]string `json:"colors" yaml:"colors"`
	Messages Messages            `json:"messages" yaml:"messages"`
}

// GameState is the complete state of one tracker
type GameState struct {
	Boards    []Board `json:"boards"`
	CarryOver []Board `json:"carry_over"`
	MarkMode  bool    `json:"mark_mode"`
	Wipe      bool    `json:"wipe"`
	Message   string  `json:"message"`

	// CarriedFrom[r] is set when rotation r wrote the carry-over of r+1
	CarriedFrom []bool `json:"carried_from"`

	ConfigName    string        `json:"config_name"`
	IntentHistory []IntentEntry `json:"intent_history"`
	TotalIntents  int           `json:"total_intents"`

	// CurrentIntents mirrors IntentHistory since the last reset
	CurrentIntents      []IntentEntry `json:"current_intents"`
	CurrentIntentsCount int           `json:"current_intents_count"`
}

// IntentEntry records one intent and what it did
type IntentEntry struct {
	Action       string `json:"action"`
	Rotation     int    `json:"rotation"`
	Lane         int    `json:"lane"`
	Outcome      string `json:"outcome"`
	Success      bool   `json:"success"`
	Timestamp    int64  `json:"timestamp"`
	IntentNumber int    `json:"intent_number"`
}
