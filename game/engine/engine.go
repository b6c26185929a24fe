package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/dmelato/giftquest/game/progress"
)

// State errors returned when an operation is invoked in the wrong view.
var (
	ErrNoActiveRiddle = errors.New("no riddle is open")
	ErrNotInHub       = errors.New("not in the hub")
	ErrNotInGallery   = errors.New("gallery is not open")
)

// Engine drives one player's run through a quest: grid traversal,
// date-gated doors, riddles and the view machine. It is not safe for
// concurrent use; callers serialize access per player.
type Engine struct {
	quest    *Quest
	store    progress.Store
	progress progress.State
	today    string

	view     View
	activeID int
	grid     Grid
	pos      Position
	facing   Direction
}

// New builds an engine for a quest. The store may be nil for throwaway
// runs; when present, previously solved levels are loaded once here and
// saved back after each solve. The current date is injected, never read
// from the clock, so tests and debug overrides control time.
func New(quest *Quest, store progress.Store, today string) (*Engine, error) {
	if err := ValidateQuest(quest); err != nil {
		return nil, err
	}
	if !isISODate(today) {
		return nil, fmt.Errorf("today %q is not YYYY-MM-DD", today)
	}
	e := &Engine{
		quest:    quest,
		store:    store,
		progress: progress.State{},
		today:    today,
	}
	if store != nil {
		// Stored state can outlive the quest that wrote it (a renamed
		// config, a hand-edited file). Keep only ids the catalog knows,
		// so stray keys never inflate the completed count.
		for id, solved := range store.Load() {
			if _, ok := quest.Level(id); ok && solved {
				e.progress[id] = true
			}
		}
	}
	e.enterHub()
	return e, nil
}

// Started reports whether the quest's first day has arrived.
func (e *Engine) Started() bool {
	return e.quest.StartDate <= e.today
}

// Quest returns the quest the engine is running.
func (e *Engine) Quest() *Quest { return e.quest }

// Today returns the injected current date.
func (e *Engine) Today() string { return e.today }

// View returns the current view.
func (e *Engine) View() View { return e.view }

// Position returns the player's current grid position.
func (e *Engine) Position() Position { return e.pos }

// Facing returns the player's current facing direction.
func (e *Engine) Facing() Direction { return e.facing }

// CompletedCount returns how many levels are solved.
func (e *Engine) CompletedCount() int { return e.progress.CompletedCount() }

// Progress returns a copy of the solved state.
func (e *Engine) Progress() progress.State { return e.progress.Clone() }

// enterHub re-initializes the hub grid and player placement. Entering a
// grid always spawns at its start marker facing down.
func (e *Engine) enterHub() {
	e.grid = ParseGrid(e.quest.HubLayout)
	e.pos = e.grid.FindStart()
	e.facing = Down
	e.view = ViewHub
	e.activeID = 0
}

func (e *Engine) enterRoom(l *Level) {
	e.grid = ParseGrid(l.MapLayout)
	e.pos = e.grid.FindStart()
	e.facing = Down
	e.view = ViewRoom
	e.activeID = l.ID
}

// AttemptMove resolves one movement intent against the tile adjacent to
// the player. Walls block (the player still turns), locked doors
// refuse entry without turning, open doors swap the room in, chests
// open the riddle, everything else is a step.
func (e *Engine) AttemptMove(dir Direction) MoveOutcome {
	if !dir.IsValid() {
		return e.outcome(Blocked, 0, "")
	}
	if e.view != ViewHub && e.view != ViewRoom {
		return e.outcome(Blocked, 0, "")
	}

	dx, dy := dir.Delta()
	target := Position{X: e.pos.X + dx, Y: e.pos.Y + dy}
	tile := e.grid.TileAt(target.X, target.Y)

	switch tile.Kind {
	case Door:
		level, ok := e.quest.Level(tile.DoorID)
		if !ok {
			// A door digit with no level behind it is scenery.
			e.facing = dir
			return e.outcome(Blocked, 0, "")
		}
		if !IsUnlocked(level.UnlockDate, e.today) {
			return e.outcome(DoorLocked, level.ID, e.quest.LockedMessageFor(level))
		}
		e.enterRoom(level)
		return e.outcome(DoorEntered, level.ID, "")

	case Wall:
		e.facing = dir
		return e.outcome(Blocked, 0, "")

	case Chest:
		// The player steps onto the chest tile, then the riddle opens.
		e.facing = dir
		e.pos = target
		e.view = ViewRiddle
		return e.outcome(ChestFound, e.activeID, "")

	default:
		e.facing = dir
		e.pos = target
		return e.outcome(Moved, 0, "")
	}
}

func (e *Engine) outcome(kind OutcomeKind, levelID int, msg string) MoveOutcome {
	return MoveOutcome{
		Kind:     kind,
		LevelID:  levelID,
		Message:  msg,
		Position: e.pos,
		Facing:   e.facing,
		View:     e.view,
	}
}

// SubmitAnswer checks a guess against the open riddle. Solving marks
// the level complete; solved state only ever goes from false to true,
// and re-solving an already solved level is a harmless success.
// Persistence is best effort: a failed save is logged, never surfaced
// as a gameplay error.
func (e *Engine) SubmitAnswer(raw string) (bool, error) {
	if e.view != ViewRiddle {
		return false, ErrNoActiveRiddle
	}
	level, ok := e.quest.Level(e.activeID)
	if !ok {
		return false, ErrNoActiveRiddle
	}
	if !level.Accepts(raw) {
		return false, nil
	}
	if e.progress.MarkSolved(level.ID) && e.store != nil {
		if err := e.store.Save(e.progress); err != nil {
			log.Printf("Warning: failed to save progress for level %d: %v", level.ID, err)
		}
	}
	return true, nil
}

// ActiveLevel returns the level of the current room or riddle.
func (e *Engine) ActiveLevel() (*Level, bool) {
	if e.activeID == 0 {
		return nil, false
	}
	return e.quest.Level(e.activeID)
}

// CloseRiddle dismisses the open riddle and returns to the hub, solved
// or not.
func (e *Engine) CloseRiddle() error {
	if e.view != ViewRiddle {
		return ErrNoActiveRiddle
	}
	e.enterHub()
	return nil
}

// OpenGallery shows the progress gallery. Only reachable from the hub.
func (e *Engine) OpenGallery() error {
	if e.view != ViewHub {
		return ErrNotInHub
	}
	e.view = ViewGallery
	return nil
}

// CloseGallery returns from the gallery to the hub.
func (e *Engine) CloseGallery() error {
	if e.view != ViewGallery {
		return ErrNotInGallery
	}
	e.enterHub()
	return nil
}

// ReturnToHub abandons whatever view is open and respawns in the hub.
func (e *Engine) ReturnToHub() {
	e.enterHub()
}

// ResetProgress wipes all solved levels, both in memory and in the
// store, and respawns the player in the hub.
func (e *Engine) ResetProgress() error {
	e.progress = progress.State{}
	e.enterHub()
	if e.store != nil {
		if err := e.store.Reset(); err != nil {
			return fmt.Errorf("failed to reset stored progress: %w", err)
		}
	}
	return nil
}

// GalleryStage returns the gallery stage index for the current solved
// count, clamped to the configured stage titles.
func (e *Engine) GalleryStage() int {
	stage := e.progress.CompletedCount()
	if max := len(e.quest.GalleryStages) - 1; max >= 0 && stage > max {
		stage = max
	}
	return stage
}

// ViewState snapshots the engine for rendering.
func (e *Engine) ViewState() *ViewState {
	completed := e.progress.CompletedCount()
	vs := &ViewState{
		View:           e.view,
		ActiveLevelID:  e.activeID,
		Layout:         e.grid.Rows(),
		Position:       e.pos,
		Facing:         e.facing,
		CompletedCount: completed,
		TotalLevels:    len(e.quest.Levels),
		GalleryStage:   e.GalleryStage(),
		StageTitle:     e.quest.StageTitle(completed),
		Today:          e.today,
		Started:        e.Started(),
	}

	switch e.view {
	case ViewHub:
		vs.Doors = make(map[int]DoorStatus, len(e.quest.Levels))
		for i := range e.quest.Levels {
			l := &e.quest.Levels[i]
			vs.Doors[l.ID] = DoorStatus{
				Locked:    !IsUnlocked(l.UnlockDate, e.today),
				Completed: e.progress.Solved(l.ID),
			}
		}
		if completed == len(e.quest.Levels) {
			vs.Message = e.quest.Messages.QuestComplete
		} else {
			vs.Message = e.quest.Messages.Welcome
		}
	case ViewRiddle:
		if level, ok := e.ActiveLevel(); ok {
			vs.LevelTitle = level.Title
			vs.RiddleText = level.Riddle
			vs.Solved = e.progress.Solved(level.ID)
			if vs.Solved {
				vs.RewardMessage = level.RewardMessage
			}
		}
	case ViewRoom:
		if level, ok := e.ActiveLevel(); ok {
			vs.LevelTitle = level.Title
		}
	}

	if !vs.Started {
		vs.Message = e.quest.Messages.NotStarted
	}
	return vs
}
