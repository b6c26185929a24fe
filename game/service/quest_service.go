package service

import (
	"context"
	"time"

	"github.com/dmelato/giftquest/game/engine"
)

// QuestService defines all quest-related operations
type QuestService interface {
	// Session Management. An empty session id gets a generated one; a
	// known id resumes that player's stored progress.
	CreateSession(ctx context.Context, sessionID, questName, today string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (*AnswerResult, error)
	Navigate(ctx context.Context, sessionID, target string) (*engine.ViewState, error)
	ResetProgress(ctx context.Context, sessionID string) (*engine.ViewState, error)

	// Game State
	GetViewState(ctx context.Context, sessionID string) (*engine.ViewState, error)

	// Quests
	ListQuests(ctx context.Context) ([]*QuestInfo, error)
	LoadQuest(ctx context.Context, questName string) (*engine.Quest, error)
	SaveQuest(ctx context.Context, questName string, quest *engine.Quest) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, quest *engine.Quest, today string) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, quest *engine.Quest, today string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// QuestManager handles quest configuration loading
type QuestManager interface {
	LoadQuest(name string) (*engine.Quest, error)
	ListQuests() ([]*QuestInfo, error)
	GetDefault() *engine.Quest
	SaveQuest(name string, quest *engine.Quest) error
}

// Session represents an active game session. The engine inside is the
// only mutable game state; solved progress persists through the
// engine's store, the rest of the session is ephemeral.
type Session struct {
	ID             string
	Engine         *engine.Engine
	Quest          *engine.Quest
	QuestName      string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
