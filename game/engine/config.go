package engine

import (
	"fmt"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// messageVerbs is the number of %d verbs each template may carry
var messageVerbs = map[string]int{
	"placed":             2,
	"wipe":               1,
	"wall_cap":           1,
	"break_cap":          1,
	"broken":             2,
	"carried_forward":    2,
	"unbroken":           2,
	"removed":            2,
	"mark_mode_blocks":   0,
	"nothing_to_break":   0,
	"nothing_to_unbreak": 0,
	"lane_empty":         0,
	"reset":              0,
}

// ValidateGameConfig validates a ruleset for correctness
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	dims := []struct {
		field string
		value int
	}{
		{"lanes", config.Lanes},
		{"rotations", config.Rotations},
		{"max_walls", config.MaxWalls},
	}
	for _, d := range dims {
		if d.value < MinDimension || d.value > MaxDimension {
			return fmt.Errorf("config validation: %s must be between %d and %d, got %d", d.field, MinDimension, MaxDimension, d.value)
		}
	}

	if config.WallCap < 1 {
		return fmt.Errorf("config validation: wall_cap must be at least 1, got %d", config.WallCap)
	}
	if config.BreakCap < 1 {
		return fmt.Errorf("config validation: break_cap must be at least 1, got %d", config.BreakCap)
	}
	if limit := config.Lanes * config.MaxWalls; config.WallCap > limit {
		return fmt.Errorf("config validation: wall_cap %d exceeds board capacity %d (lanes * max_walls)", config.WallCap, limit)
	}

	for _, kind := range []WallKind{KindN, KindH, KindM, KindBroken} {
		color, ok := config.Colors[kind]
		if !ok {
			return fmt.Errorf("config validation: colors['%s'] is required", kind)
		}
		if !hexColor.MatchString(color) {
			return fmt.Errorf("config validation: colors['%s'] must be a #RRGGBB value, got '%s'", kind, color)
		}
	}

	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Wipe == "" {
		return fmt.Errorf("config validation: messages.wipe is required")
	}

	for key, tmpl := range config.Messages.templates() {
		want := messageVerbs[key]
		got := strings.Count(tmpl, "%d")
		if got != 0 && got != want {
			return fmt.Errorf("config validation: messages.%s must contain %d %%d verbs or none, got %d", key, want, got)
		}
		if strings.Count(tmpl, "%") != strings.Count(tmpl, "%d")+2*strings.Count(tmpl, "%%") {
			return fmt.Errorf("config validation: messages.%s may only use %%d verbs", key)
		}
	}

	return nil
}

func (m Messages) templates() map[string]string {
	return map[string]string{
		"placed":             m.Placed,
		"wipe":               m.Wipe,
		"wall_cap":           m.WallCap,
		"break_cap":          m.BreakCap,
		"mark_mode_blocks":   m.MarkModeBlocks,
		"broken":             m.Broken,
		"carried_forward":    m.CarriedForward,
		"unbroken":           m.Unbroken,
		"removed":            m.Removed,
		"nothing_to_break":   m.NothingToBreak,
		"nothing_to_unbreak": m.NothingToUnbreak,
		"lane_empty":         m.LaneEmpty,
		"reset":              m.Reset,
	}
}

// DefaultConfig returns the standard ruleset
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "standard",
		Description: "Six lanes, six rotations, six walls per lane, 11 walls and 7 breaks per rotation",
		Lanes:       Lanes,
		Rotations:   Rotations,
		MaxWalls:    MaxWalls,
		WallCap:     WallCap,
		BreakCap:    BreakCap,
		Colors:      DefaultColors(),
		Messages:    DefaultMessages(),
	}
}

// DefaultColors returns the colour used for each wall type
func DefaultColors() map[WallKind]string {
	return map[WallKind]string{
		KindN:      "#20298C",
		KindH:      "#190848",
		KindM:      "#4A4897",
		KindBroken: "#FF4D4D",
	}
}

// DefaultMessages returns the standard message templates
func DefaultMessages() Messages {
	return Messages{
		Welcome:          "Place walls lane by lane. Turn on mark mode to break them.",
		Placed:           "Wall placed in rotation %d, lane %d",
		Wipe:             "Wipe! A lane has %d or more walls.",
		WallCap:          "Wall limit reached in rotation %d",
		BreakCap:         "Break limit reached in rotation %d",
		MarkModeBlocks:   "Mark mode is on, placing is disabled",
		Broken:           "Wall broken in rotation %d, lane %d",
		CarriedForward:   "%d walls carried into rotation %d",
		Unbroken:         "Wall restored in rotation %d, lane %d",
		Removed:          "Wall removed from rotation %d, lane %d",
		NothingToBreak:   "Nothing left to break in that lane",
		NothingToUnbreak: "No broken wall in that lane",
		LaneEmpty:        "No placed wall to remove in that lane",
		Reset:            "Board reset",
	}
}

// InitGameStateFromConfig creates an empty state for the ruleset
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultConfig()
	}

	boards := make([]Board, config.Rotations)
	carry := make([]Board, config.Rotations)
	for r := 0; r < config.Rotations; r++ {
		boards[r] = NewBoard(config.Lanes)
		carry[r] = NewBoard(config.Lanes)
	}

	return &GameState{
		Boards:              boards,
		CarryOver:           carry,
		MarkMode:            false,
		Wipe:                false,
		Message:             config.Messages.Welcome,
		CarriedFrom:         make([]bool, config.Rotations),
		ConfigName:          config.Name,
		IntentHistory:       []IntentEntry{},
		TotalIntents:        0,
		CurrentIntents:      []IntentEntry{},
		CurrentIntentsCount: 0,
	}
}

// formatMessage fills a template, falling back when it is empty. Templates
// without verbs are returned as-is.
func formatMessage(tmpl, fallback string, args ...any) string {
	if tmpl == "" {
		tmpl = fallback
	}
	if !strings.Contains(tmpl, "%") {
		return tmpl
	}
	if strings.Count(tmpl, "%d") == 0 {
		return strings.ReplaceAll(tmpl, "%%", "%")
	}
	return fmt.Sprintf(tmpl, args...)
}
