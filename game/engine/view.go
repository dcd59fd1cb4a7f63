package engine

import (
	"fmt"
	"strings"
)

// WallView is a wall as a renderer shows it
type WallView struct {
	Row    int        `json:"row"`
	Type   WallKind   `json:"type"`
	Label  string     `json:"label"`
	Color  string     `json:"color"`
	Source Provenance `json:"source"`
}

// RotationView is the merged view of one rotation
type RotationView struct {
	Index      int          `json:"index"`
	Lanes      [][]WallView `json:"lanes"`
	WallCount  int          `json:"wall_count"`
	CarryCount int          `json:"carry_count"`
	BreakCount int          `json:"break_count"`
	WallCap    int          `json:"wall_cap"`
	BreakCap   int          `json:"break_cap"`
}

// BoardView is everything a renderer needs to draw the tracker
type BoardView struct {
	ConfigName string         `json:"config_name"`
	MaxWalls   int            `json:"max_walls"`
	Rotations  []RotationView `json:"rotations"`
	MarkMode   bool           `json:"mark_mode"`
	Wipe       bool           `json:"wipe"`
	Message    string         `json:"message"`
}

// BuildBoardView merges carry-over and own stacks into a renderable view
func BuildBoardView(state *GameState, config *GameConfig) *BoardView {
	if config == nil {
		config = DefaultConfig()
	}
	view := &BoardView{
		ConfigName: config.Name,
		MaxWalls:   config.MaxWalls,
		Rotations:  make([]RotationView, 0, len(state.Boards)),
		MarkMode:   state.MarkMode,
		Wipe:       state.Wipe,
		Message:    state.Message,
	}

	for r := range state.Boards {
		rv := RotationView{
			Index:      r,
			Lanes:      make([][]WallView, len(state.Boards[r])),
			WallCount:  state.WallCount(r),
			CarryCount: CountWalls(state.CarryOver[r]),
			BreakCount: state.BreakCount(r),
			WallCap:    config.WallCap,
			BreakCap:   config.BreakCap,
		}
		for l := range state.Boards[r] {
			stack := state.Stack(r, l)
			walls := make([]WallView, len(stack))
			for i, w := range stack {
				walls[i] = WallView{
					Row:    i,
					Type:   w.Type,
					Label:  DisplayLabel(w.Type),
					Color:  config.Colors[w.Type],
					Source: w.Source,
				}
			}
			rv.Lanes[l] = walls
		}
		view.Rotations = append(view.Rotations, rv)
	}

	return view
}

// Render draws the view as text, top row first, one block per rotation
func (v *BoardView) Render() string {
	var b strings.Builder
	for _, rv := range v.Rotations {
		fmt.Fprintf(&b, "Rotation %d  walls %d/%d  breaks %d/%d\n",
			rv.Index+1, rv.WallCount, rv.WallCap, rv.BreakCount, rv.BreakCap)
		for row := v.MaxWalls - 1; row >= 0; row-- {
			fmt.Fprintf(&b, "Row %d |", row+1)
			for _, lane := range rv.Lanes {
				cell := "  .  "
				if row < len(lane) {
					cell = fmt.Sprintf(" %-4s", cellLabel(lane[row]))
				}
				b.WriteString(cell)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if v.Wipe {
		fmt.Fprintf(&b, "Wipe! A lane has %d or more walls.\n", v.MaxWalls)
	}
	if v.MarkMode {
		b.WriteString("Mark Mode: ON\n")
	} else {
		b.WriteString("Mark Mode: OFF\n")
	}
	return b.String()
}

// cellLabel abbreviates a wall for text output; carried walls get a trailing '
func cellLabel(w WallView) string {
	label := string(w.Type)
	if w.Type == KindBroken {
		label = "Brk"
	}
	if w.Source == Carry {
		label += "'"
	}
	return label
}
