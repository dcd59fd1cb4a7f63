package engine

// RowType returns the wall type implied by a row in the merged stack
func RowType(row int) WallKind {
	switch row {
	case 0:
		return KindN
	case 1:
		return KindH
	case 2, 3:
		return KindM
	case 4:
		return KindH
	case 5:
		return KindM
	default:
		return KindM
	}
}

// Merge returns carry followed by own as a new stack
func Merge(carry, own Lane) Lane {
	stack := make(Lane, 0, len(carry)+len(own))
	stack = append(stack, carry...)
	return append(stack, own...)
}

// Split cuts a merged stack back into its carry prefix and own suffix
func Split(stack Lane, carrySize int) (Lane, Lane) {
	if carrySize > len(stack) {
		carrySize = len(stack)
	}
	carry := make(Lane, carrySize)
	copy(carry, stack[:carrySize])
	own := make(Lane, len(stack)-carrySize)
	copy(own, stack[carrySize:])
	return carry, own
}

// NewBoard creates a board with the given number of empty lanes
func NewBoard(lanes int) Board {
	board := make(Board, lanes)
	for i := range board {
		board[i] = Lane{}
	}
	return board
}

// CountWalls counts every wall on a board
func CountWalls(board Board) int {
	count := 0
	for _, lane := range board {
		count += len(lane)
	}
	return count
}

// CountBreaks counts broken walls on a board
func CountBreaks(board Board) int {
	count := 0
	for _, lane := range board {
		for _, wall := range lane {
			if wall.IsBroken() {
				count++
			}
		}
	}
	return count
}

// Unbroken returns the walls of a lane that are not broken, in order
func Unbroken(lane Lane) Lane {
	out := Lane{}
	for _, wall := range lane {
		if !wall.IsBroken() {
			out = append(out, wall)
		}
	}
	return out
}

// DisplayLabel returns the label a renderer shows for a wall type
func DisplayLabel(kind WallKind) string {
	if kind == KindBroken {
		return BreakLabel
	}
	return string(kind)
}

// Clone returns a deep copy of the state
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Boards = make([]Board, len(gs.Boards))
	for r, board := range gs.Boards {
		out.Boards[r] = cloneBoard(board)
	}
	out.CarryOver = make([]Board, len(gs.CarryOver))
	for r, board := range gs.CarryOver {
		out.CarryOver[r] = cloneBoard(board)
	}
	out.CarriedFrom = append([]bool{}, gs.CarriedFrom...)
	out.IntentHistory = append([]IntentEntry{}, gs.IntentHistory...)
	out.CurrentIntents = append([]IntentEntry{}, gs.CurrentIntents...)
	return &out
}

func cloneBoard(board Board) Board {
	out := make(Board, len(board))
	for i, lane := range board {
		out[i] = append(Lane{}, lane...)
	}
	return out
}
