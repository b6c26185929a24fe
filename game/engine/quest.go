package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidQuest is wrapped by every validation failure so callers can
// test for the class of error without matching message text.
var ErrInvalidQuest = errors.New("invalid quest configuration")

// Quest is a complete quest definition: the hub map, the gallery stage
// titles, shared message strings, and the ordered levels behind the
// hub's doors.
type Quest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Recipient   string   `json:"recipient,omitempty"`
	StartDate   string   `json:"start_date"`
	HubLayout   []string `json:"hub_layout"`

	// GalleryStages are the titles shown in the progress gallery, one
	// per completed-count from zero up to the level count.
	GalleryStages []string `json:"gallery_stages"`

	Messages QuestMessages `json:"messages"`
	Levels   []Level       `json:"levels"`
}

// QuestMessages are the shared strings a quest shows outside any one
// level.
type QuestMessages struct {
	Welcome       string `json:"welcome,omitempty"`
	DefaultLocked string `json:"default_locked,omitempty"`
	TryAgain      string `json:"try_again,omitempty"`
	NotStarted    string `json:"not_started,omitempty"`
	QuestComplete string `json:"quest_complete,omitempty"`
}

// Level is one door's worth of quest: a date gate, a room map, and the
// riddle waiting in the room's chest.
type Level struct {
	ID            int      `json:"id"`
	UnlockDate    string   `json:"unlock_date"`
	Title         string   `json:"title"`
	Riddle        string   `json:"riddle"`
	Answers       []string `json:"answers"`
	RewardMessage string   `json:"reward_message"`
	LockedMessage string   `json:"locked_message,omitempty"`
	MapLayout     []string `json:"map_layout"`

	answers AnswerSet
}

// Accepts reports whether the raw guess matches one of the level's
// accepted answers. The answer set is built by ValidateQuest; an
// unvalidated level accepts nothing.
func (l *Level) Accepts(raw string) bool {
	return l.answers.Matches(raw)
}

// Level returns the level with the given id.
func (q *Quest) Level(id int) (*Level, bool) {
	for i := range q.Levels {
		if q.Levels[i].ID == id {
			return &q.Levels[i], true
		}
	}
	return nil, false
}

// LockedMessageFor returns the locked-door message for a level, falling
// back to the quest-wide default.
func (q *Quest) LockedMessageFor(l *Level) string {
	if l.LockedMessage != "" {
		return l.LockedMessage
	}
	if q.Messages.DefaultLocked != "" {
		return q.Messages.DefaultLocked
	}
	return "This door is still locked. Come back later."
}

// StageTitle returns the gallery title for a completed count, clamped
// to the configured stages.
func (q *Quest) StageTitle(completed int) string {
	if len(q.GalleryStages) == 0 {
		return ""
	}
	idx := completed
	if idx >= len(q.GalleryStages) {
		idx = len(q.GalleryStages) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return q.GalleryStages[idx]
}

// ValidateQuest checks a quest configuration for structural problems
// and, on success, indexes each level's accepted answers so lookups are
// a set membership test. Every failure wraps ErrInvalidQuest.
func ValidateQuest(q *Quest) error {
	if q == nil {
		return fmt.Errorf("%w: quest is nil", ErrInvalidQuest)
	}
	if q.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidQuest)
	}
	if !isISODate(q.StartDate) {
		return fmt.Errorf("%w: start_date %q is not YYYY-MM-DD", ErrInvalidQuest, q.StartDate)
	}
	if len(q.HubLayout) == 0 {
		return fmt.Errorf("%w: hub_layout is empty", ErrInvalidQuest)
	}
	if len(q.Levels) == 0 {
		return fmt.Errorf("%w: quest has no levels", ErrInvalidQuest)
	}

	hub := ParseGrid(q.HubLayout)
	if n := hub.CountTiles(Start); n != 1 {
		return fmt.Errorf("%w: hub_layout must have exactly one start tile, found %d", ErrInvalidQuest, n)
	}
	if n := hub.CountTiles(Chest); n != 0 {
		return fmt.Errorf("%w: hub_layout must not contain chests, found %d", ErrInvalidQuest, n)
	}

	seen := make(map[int]bool)
	prevDate := ""
	for i := range q.Levels {
		l := &q.Levels[i]
		if l.ID < MinDoorID || l.ID > MaxDoorID {
			return fmt.Errorf("%w: level %d: id must be between %d and %d", ErrInvalidQuest, l.ID, MinDoorID, MaxDoorID)
		}
		if seen[l.ID] {
			return fmt.Errorf("%w: duplicate level id %d", ErrInvalidQuest, l.ID)
		}
		seen[l.ID] = true
		if !isISODate(l.UnlockDate) {
			return fmt.Errorf("%w: level %d: unlock_date %q is not YYYY-MM-DD", ErrInvalidQuest, l.ID, l.UnlockDate)
		}
		if prevDate != "" && l.UnlockDate < prevDate {
			return fmt.Errorf("%w: level %d: unlock_date %s precedes previous level's %s", ErrInvalidQuest, l.ID, l.UnlockDate, prevDate)
		}
		prevDate = l.UnlockDate
		if l.Riddle == "" {
			return fmt.Errorf("%w: level %d: riddle text is required", ErrInvalidQuest, l.ID)
		}
		if len(l.Answers) == 0 {
			return fmt.Errorf("%w: level %d: at least one answer is required", ErrInvalidQuest, l.ID)
		}
		for _, a := range l.Answers {
			if Normalize(a) == "" {
				return fmt.Errorf("%w: level %d: answers must not be blank", ErrInvalidQuest, l.ID)
			}
		}
		if len(l.MapLayout) == 0 {
			return fmt.Errorf("%w: level %d: map_layout is empty", ErrInvalidQuest, l.ID)
		}
		room := ParseGrid(l.MapLayout)
		if n := room.CountTiles(Chest); n != 1 {
			return fmt.Errorf("%w: level %d: map_layout must have exactly one chest, found %d", ErrInvalidQuest, l.ID, n)
		}
		if n := room.CountTiles(Start); n > 1 {
			return fmt.Errorf("%w: level %d: map_layout must have at most one start tile, found %d", ErrInvalidQuest, l.ID, n)
		}
		if n := room.CountTiles(Door); n != 0 {
			return fmt.Errorf("%w: level %d: rooms must not contain doors", ErrInvalidQuest, l.ID)
		}
	}

	// Hub doors and levels must agree both ways.
	for _, id := range hub.DoorIDs() {
		if !seen[id] {
			return fmt.Errorf("%w: hub door %d has no matching level", ErrInvalidQuest, id)
		}
	}
	for i := range q.Levels {
		if _, ok := hub.FindDoor(q.Levels[i].ID); !ok {
			return fmt.Errorf("%w: level %d has no door in the hub", ErrInvalidQuest, q.Levels[i].ID)
		}
	}

	if len(q.GalleryStages) > 0 && len(q.GalleryStages) != len(q.Levels)+1 {
		return fmt.Errorf("%w: gallery_stages must have %d entries (level count + 1), found %d",
			ErrInvalidQuest, len(q.Levels)+1, len(q.GalleryStages))
	}

	for i := range q.Levels {
		q.Levels[i].answers = NewAnswerSet(q.Levels[i].Answers)
	}
	return nil
}
