package service

import (
	"time"

	"github.com/dmelato/giftquest/game/engine"
)

// Navigation targets accepted by Navigate.
const (
	NavHub         = "hub"
	NavGallery     = "gallery"
	NavCloseRiddle = "close_riddle"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	QuestName      string            `json:"quest_name"`
	Today          string            `json:"today"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	ViewState      *engine.ViewState `json:"view_state"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Outcome   engine.MoveOutcome `json:"outcome"`
	ViewState *engine.ViewState  `json:"view_state"`
	Events    []GameEvent        `json:"events,omitempty"`
}

// AnswerResult contains the result of a riddle answer submission
type AnswerResult struct {
	Correct        bool              `json:"correct"`
	AlreadySolved  bool              `json:"already_solved,omitempty"`
	RewardMessage  string            `json:"reward_message,omitempty"`
	Message        string            `json:"message,omitempty"`
	CompletedCount int               `json:"completed_count"`
	QuestComplete  bool              `json:"quest_complete"`
	ViewState      *engine.ViewState `json:"view_state"`
	Events         []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "door_entered", "door_locked", "chest_found", "riddle_solved", "quest_complete"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	LevelID   int       `json:"level_id,omitempty"`
}

// QuestInfo provides information about a quest configuration
type QuestInfo struct {
	Filename    string `json:"filename"`
	QuestID     string `json:"quest_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Recipient   string `json:"recipient,omitempty"`
	StartDate   string `json:"start_date"`
	LevelCount  int    `json:"level_count"`
}
