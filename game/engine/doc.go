// Package engine provides the core game logic for the Gift Quest game.
//
// The engine package implements the game mechanics including:
//   - Grid-based movement and collision detection over ASCII map layouts
//   - Date-gated doors that unlock as the quest calendar advances
//   - Chest riddles with normalized exact-match answer checking
//   - Monotonic per-level progress tracked through a pluggable store
//   - The hub / room / riddle / gallery view machine
//
// Core Types:
//
// Engine drives one player's run through a Quest. Grid is a parsed
// ASCII map; every out-of-bounds coordinate reads as a wall, so
// movement never bounds-checks. Quest and Level define the content
// loaded from JSON configs and validated by ValidateQuest. MoveOutcome
// and ViewState are the read surface transports render from.
//
// Usage:
//
//	quest := engine.DefaultQuest()
//
//	eng, err := engine.New(quest, store, "2025-12-12")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := eng.AttemptMove(engine.Up)
//	state := eng.ViewState()
//
// Game Rules:
//
// Players explore a hub with numbered doors, one per quest level. A
// door opens only once its unlock date has arrived; the current date is
// injected by the caller and compared lexically against ISO dates.
// Behind each door is a room with a chest, and each chest poses a
// riddle. Solving a riddle marks the level complete forever. The
// gallery shows a stage title that advances with the number of solved
// levels.
package engine
