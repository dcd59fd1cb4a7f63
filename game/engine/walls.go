package engine

import (
	"time"
)

// InRange reports whether rotation and lane address a lane on this state
func (gs *GameState) InRange(rotation, lane int) bool {
	if rotation < 0 || rotation >= len(gs.Boards) {
		return false
	}
	return lane >= 0 && lane < len(gs.Boards[rotation])
}

// Stack returns the merged carry-over and own stack of a lane
func (gs *GameState) Stack(rotation, lane int) Lane {
	return Merge(gs.CarryOver[rotation][lane], gs.Boards[rotation][lane])
}

// WallCount is the number of walls placed in a rotation's own board
func (gs *GameState) WallCount(rotation int) int {
	return CountWalls(gs.Boards[rotation])
}

// TotalWallCount counts own and carried walls of a rotation
func (gs *GameState) TotalWallCount(rotation int) int {
	return CountWalls(gs.Boards[rotation]) + CountWalls(gs.CarryOver[rotation])
}

// BreakCount counts broken walls of a rotation, own and carried
func (gs *GameState) BreakCount(rotation int) int {
	return CountBreaks(gs.Boards[rotation]) + CountBreaks(gs.CarryOver[rotation])
}

// PlaceWall adds a wall to the top of a lane's own stack
func (gs *GameState) PlaceWall(rotation, lane int, config *GameConfig) string {
	if !gs.InRange(rotation, lane) {
		return OutcomeOutOfRange
	}
	if gs.MarkMode {
		gs.Message = formatMessage(config.Messages.MarkModeBlocks, DefaultMessages().MarkModeBlocks)
		return OutcomeMarkMode
	}
	if gs.WallCount(rotation) >= config.WallCap {
		gs.Message = formatMessage(config.Messages.WallCap, DefaultMessages().WallCap, rotation+1)
		return OutcomeWallCap
	}
	if gs.BreakCount(rotation) >= config.BreakCap {
		gs.Message = formatMessage(config.Messages.BreakCap, DefaultMessages().BreakCap, rotation+1)
		return OutcomeBreakCap
	}

	row := len(gs.CarryOver[rotation][lane]) + len(gs.Boards[rotation][lane])
	if row >= config.MaxWalls {
		gs.Wipe = true
		gs.Message = formatMessage(config.Messages.Wipe, DefaultMessages().Wipe, config.MaxWalls)
		return OutcomeWipe
	}

	gs.Boards[rotation][lane] = append(gs.Boards[rotation][lane], Wall{Type: RowType(row), Source: Placed})
	gs.Message = formatMessage(config.Messages.Placed, DefaultMessages().Placed, rotation+1, lane+1)
	return OutcomePlaced
}

// BreakWall marks the topmost unbroken wall of the merged stack as broken and
// carries survivors forward when the rotation reaches the break cap.
func (gs *GameState) BreakWall(rotation, lane int, config *GameConfig) string {
	if !gs.InRange(rotation, lane) {
		return OutcomeOutOfRange
	}
	before := gs.BreakCount(rotation)
	if before >= config.BreakCap {
		gs.Message = formatMessage(config.Messages.BreakCap, DefaultMessages().BreakCap, rotation+1)
		return OutcomeBreakCap
	}

	carrySize := len(gs.CarryOver[rotation][lane])
	stack := gs.Stack(rotation, lane)
	target := -1
	for i := len(stack) - 1; i >= 0; i-- {
		if !stack[i].IsBroken() {
			target = i
			break
		}
	}
	if target < 0 {
		gs.Message = formatMessage(config.Messages.NothingToBreak, DefaultMessages().NothingToBreak)
		return OutcomeNothingToBreak
	}

	stack[target] = Wall{Type: KindBroken, Source: stack[target].Source}
	gs.CarryOver[rotation][lane], gs.Boards[rotation][lane] = Split(stack, carrySize)
	gs.Message = formatMessage(config.Messages.Broken, DefaultMessages().Broken, rotation+1, lane+1)

	after := gs.BreakCount(rotation)
	if before < config.BreakCap && after == config.BreakCap &&
		gs.TotalWallCount(rotation) >= config.WallCap &&
		rotation+1 < len(gs.Boards) {
		carried := gs.carryForward(rotation, config)
		gs.Message = formatMessage(config.Messages.CarriedForward, DefaultMessages().CarriedForward, carried, rotation+2)
		return OutcomeCarriedForward
	}

	return OutcomeBroken
}

// carryForward replaces the next rotation's carry-over with the unbroken walls
// of this rotation, carry first, and returns how many walls were carried.
func (gs *GameState) carryForward(rotation int, config *GameConfig) int {
	next := NewBoard(len(gs.Boards[rotation]))
	carried := 0
	for l := range next {
		survivors := Merge(Unbroken(gs.CarryOver[rotation][l]), Unbroken(gs.Boards[rotation][l]))
		if len(survivors) > config.MaxWalls {
			survivors = survivors[:config.MaxWalls]
		}
		for i := range survivors {
			survivors[i].Source = Carry
		}
		next[l] = survivors
		carried += len(survivors)
	}
	gs.CarryOver[rotation+1] = next
	gs.CarriedFrom[rotation] = true
	return carried
}

// UnbreakWall restores the lowest broken wall of the merged stack to the type
// of the row it now sits on.
func (gs *GameState) UnbreakWall(rotation, lane int, config *GameConfig) string {
	if !gs.InRange(rotation, lane) {
		return OutcomeOutOfRange
	}

	carrySize := len(gs.CarryOver[rotation][lane])
	stack := gs.Stack(rotation, lane)
	target := -1
	for i := range stack {
		if stack[i].IsBroken() {
			target = i
			break
		}
	}
	if target < 0 {
		gs.Message = formatMessage(config.Messages.NothingToUnbreak, DefaultMessages().NothingToUnbreak)
		return OutcomeNothingToUnbreak
	}

	stack[target] = Wall{Type: RowType(target), Source: stack[target].Source}
	gs.CarryOver[rotation][lane], gs.Boards[rotation][lane] = Split(stack, carrySize)
	gs.Message = formatMessage(config.Messages.Unbroken, DefaultMessages().Unbroken, rotation+1, lane+1)

	if config.RollbackCarryOver && gs.BreakCount(rotation) < config.BreakCap {
		gs.rollbackCarryOver(rotation)
	}

	return OutcomeUnbroken
}

// rollbackCarryOver clears carry-over written from rotation onwards, following
// the chain of rotations whose own carry-forward was derived from a cleared one.
// Own walls of a cleared rotation drop to lower rows and take those rows' types.
func (gs *GameState) rollbackCarryOver(rotation int) {
	for r := rotation; r+1 < len(gs.Boards) && gs.CarriedFrom[r]; r++ {
		gs.CarryOver[r+1] = NewBoard(len(gs.Boards[r+1]))
		gs.CarriedFrom[r] = false
		for l := range gs.Boards[r+1] {
			gs.Boards[r+1][l] = retype(gs.Boards[r+1][l])
		}
	}
}

// retype gives each unbroken wall the type of the row it sits on
func retype(lane Lane) Lane {
	out := make(Lane, len(lane))
	for i, w := range lane {
		if !w.IsBroken() {
			w.Type = RowType(i)
		}
		out[i] = w
	}
	return out
}

// RemoveWall pops the top wall of a lane's own stack. Carry-over is never removed.
func (gs *GameState) RemoveWall(rotation, lane int, config *GameConfig) string {
	if !gs.InRange(rotation, lane) {
		return OutcomeOutOfRange
	}

	own := gs.Boards[rotation][lane]
	if len(own) == 0 {
		gs.Message = formatMessage(config.Messages.LaneEmpty, DefaultMessages().LaneEmpty)
		return OutcomeLaneEmpty
	}

	gs.Boards[rotation][lane] = append(Lane{}, own[:len(own)-1]...)
	gs.Message = formatMessage(config.Messages.Removed, DefaultMessages().Removed, rotation+1, lane+1)
	return OutcomeRemoved
}

// AddIntentToHistory records an intent in the cumulative and current histories
func (gs *GameState) AddIntentToHistory(action string, rotation, lane int, outcome string, success bool) {
	entry := IntentEntry{
		Action:       action,
		Rotation:     rotation,
		Lane:         lane,
		Outcome:      outcome,
		Success:      success,
		Timestamp:    time.Now().Unix(),
		IntentNumber: gs.TotalIntents + 1,
	}
	gs.IntentHistory = append(gs.IntentHistory, entry)
	gs.TotalIntents++

	gs.CurrentIntents = append(gs.CurrentIntents, entry)
	gs.CurrentIntentsCount++
}

// succeeded reports whether an outcome means the intent took effect. A wipe
// raises the flag but rejects the wall, so it does not count.
func succeeded(outcome string) bool {
	switch outcome {
	case OutcomePlaced, OutcomeBroken, OutcomeCarriedForward,
		OutcomeUnbroken, OutcomeRemoved, OutcomeMarkModeOn, OutcomeMarkModeOff, OutcomeReset:
		return true
	default:
		return false
	}
}
