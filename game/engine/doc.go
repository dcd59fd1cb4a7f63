// Package engine provides the rules engine for the rotation wall tracker.
//
// The engine package implements:
//   - Wall placement with per-lane height, per-rotation wall and break limits
//   - Breaking and restoring walls in the merged carry-over + own stack
//   - Carry-forward of surviving walls into the next rotation
//   - Mark mode routing of the primary and secondary gestures
//   - Ruleset validation and a read-only board view for renderers
//
// Core Types:
//
// The Engine interface defines the contract consumed by the service layer and
// is implemented by GameEngine. GameState holds the boards, carry-over store,
// mark mode and wipe flags and the intent history. GameConfig is a ruleset
// loaded from JSON or YAML.
//
// Usage:
//
//	eng := engine.NewEngineWithDefaults()
//
//	eng.Place(0, 0)       // rotation 1, lane 1
//	eng.ToggleMarkMode()
//	eng.Activate(0, 0)    // breaks the top wall while mark mode is on
//
//	view := eng.GetBoardView()
//	fmt.Print(view.Render())
//
// Rules:
//
// A lane's row number counts carried walls first, so the first wall placed
// above two carried walls sits on row 2 and is an M. Placing into a lane that
// is already MaxWalls high raises the wipe flag, which stays up until Reset.
// When a break brings a rotation to exactly BreakCap breaks while it holds at
// least WallCap walls, every unbroken wall is carried into the next rotation.
// Intents never fail; rejected intents leave the state as it was.
package engine
