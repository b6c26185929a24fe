package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmelato/giftquest/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidTarget    = errors.New("invalid navigation target")
	ErrQuestNotStarted  = errors.New("quest has not started yet")
)

// questServiceImpl implements QuestService. The mutex serializes all
// game operations so each engine only ever sees one mutation at a
// time.
type questServiceImpl struct {
	sessionManager SessionManager
	questManager   QuestManager
	mu             sync.RWMutex
}

// NewQuestService creates a new quest service
func NewQuestService(sessionManager SessionManager, questManager QuestManager) QuestService {
	return &questServiceImpl{
		sessionManager: sessionManager,
		questManager:   questManager,
	}
}

// CreateSession creates a new game session. An empty quest name picks
// the default quest; an empty date means the server's current day. The
// date is resolved here, once, so the engine itself never touches the
// clock.
func (s *questServiceImpl) CreateSession(ctx context.Context, sessionID, questName, today string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var quest *engine.Quest
	if questName == "" {
		quest = s.questManager.GetDefault()
		questName = quest.Name
	} else {
		var err error
		quest, err = s.questManager.LoadQuest(questName)
		if err != nil {
			return nil, fmt.Errorf("failed to load quest %s: %w", questName, err)
		}
	}

	if today == "" {
		today = time.Now().Format("2006-01-02")
	}

	session, err := s.sessionManager.Create(sessionID, quest, today)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.QuestName = questName

	return s.sessionInfo(session), nil
}

// GetSession returns information about an existing session
func (s *questServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return s.sessionInfo(session), nil
}

// ListSessions returns information about all active sessions
func (s *questServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessionManager.List()
	infos := make([]*SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, s.sessionInfo(session))
	}
	return infos, nil
}

// DeleteSession removes a session. Stored progress survives deletion;
// only an explicit reset wipes it.
func (s *questServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessionManager.Delete(sessionID); err != nil {
		return ErrSessionNotFound
	}
	return nil
}

// Move executes a single movement attempt
func (s *questServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	dir := engine.Direction(direction)
	if !dir.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDirection, direction)
	}
	if !session.Engine.Started() {
		return nil, ErrQuestNotStarted
	}

	outcome := session.Engine.AttemptMove(dir)

	return &MoveResult{
		Outcome:   outcome,
		ViewState: session.Engine.ViewState(),
		Events:    extractMoveEvents(session, outcome),
	}, nil
}

// SubmitAnswer checks a guess against the currently open riddle
func (s *questServiceImpl) SubmitAnswer(ctx context.Context, sessionID, answer string) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	eng := session.Engine
	level, hasLevel := eng.ActiveLevel()
	alreadySolved := hasLevel && eng.Progress().Solved(level.ID)

	correct, err := eng.SubmitAnswer(answer)
	if err != nil {
		return nil, err
	}

	result := &AnswerResult{
		Correct:        correct,
		AlreadySolved:  alreadySolved,
		CompletedCount: eng.CompletedCount(),
		QuestComplete:  eng.CompletedCount() == len(session.Quest.Levels),
		ViewState:      eng.ViewState(),
	}

	if correct {
		result.RewardMessage = level.RewardMessage
		if !alreadySolved {
			result.Events = append(result.Events, GameEvent{
				Type:      "riddle_solved",
				Message:   fmt.Sprintf("Solved %s", level.Title),
				Timestamp: time.Now(),
				LevelID:   level.ID,
			})
			if result.QuestComplete {
				result.Events = append(result.Events, GameEvent{
					Type:      "quest_complete",
					Message:   session.Quest.Messages.QuestComplete,
					Timestamp: time.Now(),
				})
			}
		}
	} else {
		result.Message = session.Quest.Messages.TryAgain
	}

	return result, nil
}

// Navigate moves between views without grid movement: back to the hub,
// into the gallery, or closing an open riddle.
func (s *questServiceImpl) Navigate(ctx context.Context, sessionID, target string) (*engine.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	eng := session.Engine
	switch target {
	case NavHub:
		eng.ReturnToHub()
	case NavGallery:
		if err := eng.OpenGallery(); err != nil {
			return nil, err
		}
	case NavCloseRiddle:
		if err := eng.CloseRiddle(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	return eng.ViewState(), nil
}

// ResetProgress wipes all solved levels for the session's player
func (s *questServiceImpl) ResetProgress(ctx context.Context, sessionID string) (*engine.ViewState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	s.sessionManager.UpdateLastAccessed(sessionID)

	if err := session.Engine.ResetProgress(); err != nil {
		return nil, err
	}
	return session.Engine.ViewState(), nil
}

// GetViewState returns the render-ready snapshot for a session
func (s *questServiceImpl) GetViewState(ctx context.Context, sessionID string) (*engine.ViewState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessionManager.Get(sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return session.Engine.ViewState(), nil
}

// ListQuests returns all available quest configurations
func (s *questServiceImpl) ListQuests(ctx context.Context) ([]*QuestInfo, error) {
	return s.questManager.ListQuests()
}

// LoadQuest returns a quest configuration by name
func (s *questServiceImpl) LoadQuest(ctx context.Context, questName string) (*engine.Quest, error) {
	return s.questManager.LoadQuest(questName)
}

// SaveQuest validates and persists a quest configuration
func (s *questServiceImpl) SaveQuest(ctx context.Context, questName string, quest *engine.Quest) error {
	return s.questManager.SaveQuest(questName, quest)
}

func (s *questServiceImpl) sessionInfo(session *Session) *SessionInfo {
	return &SessionInfo{
		ID:             session.ID,
		QuestName:      session.QuestName,
		Today:          session.Engine.Today(),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		ViewState:      session.Engine.ViewState(),
	}
}

// extractMoveEvents turns a move outcome into gameplay events worth
// announcing. Plain steps and bumps into walls stay quiet.
func extractMoveEvents(session *Session, outcome engine.MoveOutcome) []GameEvent {
	var events []GameEvent
	now := time.Now()

	switch outcome.Kind {
	case engine.DoorEntered:
		title := fmt.Sprintf("level %d", outcome.LevelID)
		if level, ok := session.Quest.Level(outcome.LevelID); ok {
			title = level.Title
		}
		events = append(events, GameEvent{
			Type:      "door_entered",
			Message:   fmt.Sprintf("Entered %s", title),
			Timestamp: now,
			LevelID:   outcome.LevelID,
		})
	case engine.DoorLocked:
		events = append(events, GameEvent{
			Type:      "door_locked",
			Message:   outcome.Message,
			Timestamp: now,
			LevelID:   outcome.LevelID,
		})
	case engine.ChestFound:
		events = append(events, GameEvent{
			Type:      "chest_found",
			Message:   "You found a chest! Answer its riddle to claim the gift.",
			Timestamp: now,
			LevelID:   outcome.LevelID,
		})
	}

	return events
}
