package main

import (
	"fmt"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

// checkBoard returns every limit the board view violates
func checkBoard(board *engine.BoardView) []string {
	var violations []string
	for _, rv := range board.Rotations {
		if rv.WallCount > rv.WallCap {
			violations = append(violations, fmt.Sprintf("rotation %d: %d walls exceeds cap %d", rv.Index+1, rv.WallCount, rv.WallCap))
		}
		if rv.BreakCount > rv.BreakCap {
			violations = append(violations, fmt.Sprintf("rotation %d: %d breaks exceeds cap %d", rv.Index+1, rv.BreakCount, rv.BreakCap))
		}
		if rv.Index == 0 && rv.CarryCount > 0 {
			violations = append(violations, fmt.Sprintf("rotation 1 holds %d carried walls", rv.CarryCount))
		}

		for l, lane := range rv.Lanes {
			carried := 0
			for i, w := range lane {
				if w.Row != i {
					violations = append(violations, fmt.Sprintf("rotation %d lane %d: wall at position %d reports row %d", rv.Index+1, l+1, i, w.Row))
				}
				if w.Source == engine.Carry {
					carried++
					if i != carried-1 {
						violations = append(violations, fmt.Sprintf("rotation %d lane %d: carried wall above a placed wall", rv.Index+1, l+1))
					}
				}
			}
			if carried > board.MaxWalls {
				violations = append(violations, fmt.Sprintf("rotation %d lane %d: %d carried walls exceeds %d", rv.Index+1, l+1, carried, board.MaxWalls))
			}
		}
	}
	return violations
}
