package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmelato/giftquest/game/engine"
	"github.com/dmelato/giftquest/game/service"
)

// MockQuestService implements service.QuestService for testing
type MockQuestService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, sessionID, questName, today string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc          func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error)
	SubmitAnswerFunc  func(ctx context.Context, sessionID, answer string) (*service.AnswerResult, error)
	NavigateFunc      func(ctx context.Context, sessionID, target string) (*engine.ViewState, error)
	ResetProgressFunc func(ctx context.Context, sessionID string) (*engine.ViewState, error)

	// Game State
	GetViewStateFunc func(ctx context.Context, sessionID string) (*engine.ViewState, error)

	// Quests
	ListQuestsFunc func(ctx context.Context) ([]*service.QuestInfo, error)
	LoadQuestFunc  func(ctx context.Context, questName string) (*engine.Quest, error)
	SaveQuestFunc  func(ctx context.Context, questName string, quest *engine.Quest) error
}

func (m *MockQuestService) CreateSession(ctx context.Context, sessionID, questName, today string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, sessionID, questName, today)
	}
	return &service.SessionInfo{
		ID:        "abcd",
		QuestName: questName,
		Today:     today,
		CreatedAt: time.Now(),
		ViewState: &engine.ViewState{View: engine.ViewHub},
	}, nil
}

func (m *MockQuestService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{
		ID:        sessionID,
		QuestName: "test-quest",
		CreatedAt: time.Now(),
		ViewState: &engine.ViewState{View: engine.ViewHub},
	}, nil
}

func (m *MockQuestService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockQuestService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockQuestService) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction)
	}
	return &service.MoveResult{
		Outcome:   engine.MoveOutcome{Kind: engine.Moved},
		ViewState: &engine.ViewState{View: engine.ViewHub},
	}, nil
}

func (m *MockQuestService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*service.AnswerResult, error) {
	if m.SubmitAnswerFunc != nil {
		return m.SubmitAnswerFunc(ctx, sessionID, answer)
	}
	return &service.AnswerResult{
		Correct:   true,
		ViewState: &engine.ViewState{View: engine.ViewRiddle},
	}, nil
}

func (m *MockQuestService) Navigate(ctx context.Context, sessionID, target string) (*engine.ViewState, error) {
	if m.NavigateFunc != nil {
		return m.NavigateFunc(ctx, sessionID, target)
	}
	return &engine.ViewState{View: engine.ViewHub}, nil
}

func (m *MockQuestService) ResetProgress(ctx context.Context, sessionID string) (*engine.ViewState, error) {
	if m.ResetProgressFunc != nil {
		return m.ResetProgressFunc(ctx, sessionID)
	}
	return &engine.ViewState{View: engine.ViewHub}, nil
}

func (m *MockQuestService) GetViewState(ctx context.Context, sessionID string) (*engine.ViewState, error) {
	if m.GetViewStateFunc != nil {
		return m.GetViewStateFunc(ctx, sessionID)
	}
	return &engine.ViewState{View: engine.ViewHub}, nil
}

func (m *MockQuestService) ListQuests(ctx context.Context) ([]*service.QuestInfo, error) {
	if m.ListQuestsFunc != nil {
		return m.ListQuestsFunc(ctx)
	}
	return []*service.QuestInfo{}, nil
}

func (m *MockQuestService) LoadQuest(ctx context.Context, questName string) (*engine.Quest, error) {
	if m.LoadQuestFunc != nil {
		return m.LoadQuestFunc(ctx, questName)
	}
	return &engine.Quest{Name: questName}, nil
}

func (m *MockQuestService) SaveQuest(ctx context.Context, questName string, quest *engine.Quest) error {
	if m.SaveQuestFunc != nil {
		return m.SaveQuestFunc(ctx, questName, quest)
	}
	return nil
}

func newTestServer(mock *MockQuestService) *Server {
	return NewServer(mock, nil)
}

func doRequest(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleCreateSession(t *testing.T) {
	mock := &MockQuestService{
		CreateSessionFunc: func(ctx context.Context, sessionID, questName, today string) (*service.SessionInfo, error) {
			if sessionID != "wxyz" || questName != "winter" || today != "2025-12-11" {
				t.Errorf("Unexpected args: %q %q %q", sessionID, questName, today)
			}
			return &service.SessionInfo{ID: sessionID, QuestName: questName, Today: today}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/sessions", map[string]string{
		"session_id": "wxyz",
		"quest_id":   "winter",
		"date":       "2025-12-11",
	})

	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var info service.SessionInfo
	if err := json.Unmarshal(recorder.Body.Bytes(), &info); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if info.ID != "wxyz" {
		t.Errorf("Expected session wxyz, got %q", info.ID)
	}
}

func TestHandleCreateSession_EmptyBody(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	recorder := doRequest(t, server, "POST", "/api/sessions", nil)
	if recorder.Code != http.StatusCreated {
		t.Errorf("Expected 201 for empty body, got %d", recorder.Code)
	}
}

func TestHandleGetSession_NotFound(t *testing.T) {
	mock := &MockQuestService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "GET", "/api/sessions/ghost", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", recorder.Code)
	}
}

func TestHandleListSessions_SortAndLimit(t *testing.T) {
	now := time.Now()
	mock := &MockQuestService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-2 * time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
			}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "GET", "/api/sessions?sort=created&order=desc&limit=2", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var resp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("Expected 2 sessions after limit, got %d", resp.Count)
	}
	if resp.Sessions[0].ID != "new" || resp.Sessions[1].ID != "mid" {
		t.Errorf("Expected newest first, got %s then %s", resp.Sessions[0].ID, resp.Sessions[1].ID)
	}
}

func TestHandleMove(t *testing.T) {
	mock := &MockQuestService{
		MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
			if direction != "up" {
				t.Errorf("Expected direction up, got %q", direction)
			}
			return &service.MoveResult{
				Outcome:   engine.MoveOutcome{Kind: engine.DoorEntered, LevelID: 3},
				ViewState: &engine.ViewState{View: engine.ViewRoom, ActiveLevelID: 3},
			}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/sessions/abcd/move", map[string]string{"direction": "up"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var result service.MoveResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Outcome.Kind != engine.DoorEntered {
		t.Errorf("Expected door_entered, got %s", result.Outcome.Kind)
	}
}

func TestHandleMove_ErrorStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"session missing", service.ErrSessionNotFound, http.StatusNotFound},
		{"bad direction", fmt.Errorf("%w: sideways", service.ErrInvalidDirection), http.StatusBadRequest},
		{"not started", service.ErrQuestNotStarted, http.StatusConflict},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mock := &MockQuestService{
				MoveFunc: func(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
					return nil, c.err
				},
			}
			server := newTestServer(mock)

			recorder := doRequest(t, server, "POST", "/api/sessions/abcd/move", map[string]string{"direction": "up"})
			if recorder.Code != c.want {
				t.Errorf("Expected %d, got %d", c.want, recorder.Code)
			}
		})
	}
}

func TestHandleMove_InvalidBody(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	req := httptest.NewRequest("POST", "/api/sessions/abcd/move", bytes.NewReader([]byte("{not json")))
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", recorder.Code)
	}
}

func TestHandleSubmitAnswer(t *testing.T) {
	mock := &MockQuestService{
		SubmitAnswerFunc: func(ctx context.Context, sessionID, answer string) (*service.AnswerResult, error) {
			if answer != "scarf" {
				t.Errorf("Expected answer scarf, got %q", answer)
			}
			return &service.AnswerResult{
				Correct:        true,
				RewardMessage:  "Found it!",
				CompletedCount: 1,
				ViewState:      &engine.ViewState{View: engine.ViewRiddle, Solved: true},
			}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/sessions/abcd/answer", map[string]string{"answer": "scarf"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var result service.AnswerResult
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !result.Correct || result.RewardMessage != "Found it!" {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestHandleSubmitAnswer_NoRiddleOpen(t *testing.T) {
	mock := &MockQuestService{
		SubmitAnswerFunc: func(ctx context.Context, sessionID, answer string) (*service.AnswerResult, error) {
			return nil, engine.ErrNoActiveRiddle
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/sessions/abcd/answer", map[string]string{"answer": "scarf"})
	if recorder.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", recorder.Code)
	}
}

func TestHandleNavigate(t *testing.T) {
	mock := &MockQuestService{
		NavigateFunc: func(ctx context.Context, sessionID, target string) (*engine.ViewState, error) {
			if target != "gallery" {
				t.Errorf("Expected target gallery, got %q", target)
			}
			return &engine.ViewState{View: engine.ViewGallery, GalleryStage: 2}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/sessions/abcd/navigate", map[string]string{"target": "gallery"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var state engine.ViewState
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.View != engine.ViewGallery {
		t.Errorf("Expected gallery view, got %s", state.View)
	}
}

func TestHandleNavigate_InvalidTarget(t *testing.T) {
	mock := &MockQuestService{
		NavigateFunc: func(ctx context.Context, sessionID, target string) (*engine.ViewState, error) {
			return nil, fmt.Errorf("%w: basement", service.ErrInvalidTarget)
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/sessions/abcd/navigate", map[string]string{"target": "basement"})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", recorder.Code)
	}
}

func TestHandleResetProgress(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	recorder := doRequest(t, server, "POST", "/api/sessions/abcd/reset", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var resp struct {
		Message string            `json:"message"`
		State   *engine.ViewState `json:"state"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.State == nil || resp.State.View != engine.ViewHub {
		t.Error("Expected hub state in reset response")
	}
}

func TestHandleGetViewState(t *testing.T) {
	mock := &MockQuestService{
		GetViewStateFunc: func(ctx context.Context, sessionID string) (*engine.ViewState, error) {
			return &engine.ViewState{
				View:           engine.ViewHub,
				CompletedCount: 3,
				TotalLevels:    7,
				Doors:          map[int]engine.DoorStatus{1: {Completed: true}},
			}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "GET", "/api/sessions/abcd/state", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var state engine.ViewState
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if state.CompletedCount != 3 || state.TotalLevels != 7 {
		t.Errorf("Unexpected counts: %d/%d", state.CompletedCount, state.TotalLevels)
	}
	if !state.Doors[1].Completed {
		t.Error("Expected door 1 completed")
	}
}

func TestHandleCreateQuest(t *testing.T) {
	saved := false
	mock := &MockQuestService{
		SaveQuestFunc: func(ctx context.Context, questName string, quest *engine.Quest) error {
			saved = true
			if questName != "My Quest" {
				t.Errorf("Expected quest name, got %q", questName)
			}
			return nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "POST", "/api/quests", map[string]interface{}{
		"name":       "My Quest",
		"start_date": "2025-12-01",
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", recorder.Code)
	}
	if !saved {
		t.Error("Expected quest to be saved")
	}
}

func TestHandleCreateQuest_MissingName(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	recorder := doRequest(t, server, "POST", "/api/quests", map[string]string{"start_date": "2025-12-01"})
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", recorder.Code)
	}
}

func TestHandleGetQuest_StripsExtension(t *testing.T) {
	mock := &MockQuestService{
		LoadQuestFunc: func(ctx context.Context, questName string) (*engine.Quest, error) {
			if questName != "winter" {
				t.Errorf("Expected winter, got %q", questName)
			}
			return &engine.Quest{Name: "Winter Quest"}, nil
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "GET", "/api/quests/winter.json", nil)
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", recorder.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	recorder := doRequest(t, server, "GET", "/api/health", nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %q", resp["status"])
	}
}

func TestUnknownRoute_NotFound(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	for _, path := range []string{"/", "/static/app.js", "/api/nope"} {
		recorder := doRequest(t, server, "GET", path, nil)
		if recorder.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for %s, got %d", path, recorder.Code)
		}
	}
}

func TestHandleWebSocket_MissingSession(t *testing.T) {
	server := newTestServer(&MockQuestService{})

	recorder := doRequest(t, server, "GET", "/ws", nil)
	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without session parameter, got %d", recorder.Code)
	}
}

func TestHandleWebSocket_UnknownSession(t *testing.T) {
	mock := &MockQuestService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}
	server := newTestServer(mock)

	recorder := doRequest(t, server, "GET", "/ws?session=ghost", nil)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", recorder.Code)
	}
}
