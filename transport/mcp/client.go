package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dmelato/giftquest/game/engine"
	"github.com/dmelato/giftquest/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Gift Quest Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Gift Quest Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Explore a hub with numbered doors. Doors unlock day by day. Behind each
door is a room with a chest; each chest poses a riddle. Solve the riddle
to mark the level complete and learn where the gift is hidden.

AVAILABLE TOOLS:
- quest_state: Current view state with ASCII map
- move: Single move (up/down/left/right)
- submit_answer: Answer the currently open riddle
- navigate: Switch views (hub / gallery / close_riddle)
- reset_progress: Wipe all solved levels
- create_session: Create or resume a game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_quests: List available quest configurations
- game_instructions: Full game rules

NOTE: Movement only works in the hub and inside rooms. When a chest
opens its riddle, use submit_answer or navigate to continue.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session. Reusing a session_id resumes that player's saved progress.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to create or resume (optional, generated if empty)",
				},
				"quest_id": map[string]interface{}{
					"type":        "string",
					"description": "Name of the quest to play (optional, default quest if empty)",
				},
				"date": map[string]interface{}{
					"type":        "string",
					"description": "Override for the current date as YYYY-MM-DD (optional, useful for testing locked doors)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "quest_state",
		Description: "Get the current view state with an ASCII map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleQuestState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one tile in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "submit_answer",
		Description: "Answer the currently open riddle. Matching is case-insensitive and ignores surrounding spaces.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "The guess to submit",
				},
			},
			Required: []string{"session_id", "answer"},
		},
	}, c.handleSubmitAnswer)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "navigate",
		Description: "Switch views without moving: back to the hub, into the gallery, or close an open riddle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"target": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"hub", "gallery", "close_riddle"},
					"description": "Where to go",
				},
			},
			Required: []string{"session_id", "target"},
		},
	}, c.handleNavigate)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_progress",
		Description: "Wipe all solved levels for this session's player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleResetProgress)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_quests",
		Description: "List available quest configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListQuests)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	questID, _ := args["quest_id"].(string)
	date, _ := args["date"].(string)

	body := map[string]string{}
	if sessionID != "" {
		body["session_id"] = sessionID
	}
	if questID != "" {
		body["quest_id"] = questID
	}
	if date != "" {
		body["date"] = date
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nQuest: %s\nDate: %s\n\n%s",
		session.ID, session.QuestName, session.Today,
		formatViewState(session.ViewState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		completed := 0
		total := 0
		if s.ViewState != nil {
			completed = s.ViewState.CompletedCount
			total = s.ViewState.TotalLevels
		}
		result += fmt.Sprintf("- %s (Quest: %s, Solved: %d/%d, Created: %s)\n",
			s.ID, s.QuestName, completed, total, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Session: %s\nQuest: %s\nDate: %s\nCreated: %s\n\n%s",
		session.ID, session.QuestName, session.Today,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatViewState(session.ViewState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleQuestState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.ViewState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatViewState(&state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	body := map[string]interface{}{
		"direction": direction,
	}

	var result service.MoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleSubmitAnswer(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	answer, _ := args["answer"].(string)

	body := map[string]interface{}{
		"answer": answer,
	}

	var result service.AnswerResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/answer", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatAnswerResult(&result)), nil
}

func (c *Client) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	target, _ := args["target"].(string)

	body := map[string]interface{}{
		"target": target,
	}

	var state engine.ViewState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/navigate", sessionID), body, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatViewState(&state)), nil
}

func (c *Client) handleResetProgress(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.ViewState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatViewState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListQuests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var quests []service.QuestInfo
	err := c.apiCall("GET", "/api/quests", nil, &quests)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Quests:\n\n"
	for _, quest := range quests {
		result += fmt.Sprintf("• %s (id: %s)\n  %s\n  Starts: %s, Levels: %d\n\n",
			quest.Name, quest.QuestID, quest.Description, quest.StartDate, quest.LevelCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Gift Quest Game - Complete Instructions

GAME OBJECTIVE:
Explore the hub, open each numbered door on its day, find the chest in
the room behind it, and solve the chest's riddle to claim the gift.

MAP LEGEND:
• @ - Your current position
• W - Wall (impassable; the outside of the map is also wall)
• . - Floor (walkable)
• S - Start tile (where you spawn in each map)
• C - Chest (step into it to open its riddle)
• 1-7 - Numbered doors (hub only)

DOOR RULES:
• Each door belongs to one quest level with an unlock date
• A door opens only once its date has arrived; until then it reports
  a locked message and you stay where you are
• Walking into an open door puts you inside its room at the room's
  start tile
• Solved levels stay solved; you can revisit any unlocked room

RIDDLES:
• Stepping into a chest opens the level's riddle
• Answers are matched exactly after lowercasing and trimming spaces
• A correct answer reveals the reward message telling you where the
  real-world gift is hidden
• Close the riddle (navigate close_riddle) to return to the hub

VIEWS:
• hub - the main map with the numbered doors
• room - inside one level, find the chest
• riddle - a chest is open, submit_answer or close it
• gallery - progress display; the stage title advances with each
  solved level (navigate gallery from the hub)

SESSION MANAGEMENT:
• Sessions have short 4-character ids; reusing an id resumes that
  player's saved progress
• The "date" parameter on create_session overrides the current day,
  which is handy for previewing locked doors

Use quest_state whenever you are unsure what the map looks like.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

// formatViewState renders a view state as text with an ASCII map. The
// player is drawn as @ over the underlying layout.
func formatViewState(state *engine.ViewState) string {
	if state == nil {
		return "No view state available"
	}

	var b strings.Builder

	b.WriteString(fmt.Sprintf("View: %s | Date: %s | Solved: %d/%d\n",
		state.View, state.Today, state.CompletedCount, state.TotalLevels))

	if !state.Started {
		b.WriteString("\nThe quest has not started yet.\n")
		if state.Message != "" {
			b.WriteString(state.Message + "\n")
		}
		return b.String()
	}

	switch state.View {
	case engine.ViewRiddle:
		b.WriteString(fmt.Sprintf("\n%s\n\nRiddle: %s\n", state.LevelTitle, state.RiddleText))
		if state.Solved {
			b.WriteString(fmt.Sprintf("\nSolved! %s\n", state.RewardMessage))
		} else {
			b.WriteString("\nUse submit_answer to guess, or navigate close_riddle to back out.\n")
		}
		return b.String()

	case engine.ViewGallery:
		b.WriteString(fmt.Sprintf("\nGallery stage %d: %s\n", state.GalleryStage, state.StageTitle))
		b.WriteString("Use navigate hub to return.\n")
		return b.String()
	}

	if state.LevelTitle != "" {
		b.WriteString(state.LevelTitle + "\n")
	}
	b.WriteString("\n")

	for y, row := range state.Layout {
		for x := 0; x < len(row); x++ {
			if x == state.Position.X && y == state.Position.Y {
				b.WriteString("@")
			} else {
				b.WriteByte(row[x])
			}
		}
		b.WriteString("\n")
	}

	if len(state.Doors) > 0 {
		b.WriteString("\nDoors:\n")
		ids := make([]int, 0, len(state.Doors))
		for id := range state.Doors {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			status := state.Doors[id]
			mark := "open"
			if status.Locked {
				mark = "locked"
			}
			if status.Completed {
				mark += ", solved"
			}
			b.WriteString(fmt.Sprintf("  %d: %s\n", id, mark))
		}
	}

	if state.Message != "" {
		b.WriteString(fmt.Sprintf("\n%s\n", state.Message))
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	switch result.Outcome.Kind {
	case engine.Moved:
		b.WriteString("Moved.\n")
	case engine.Blocked:
		b.WriteString("Blocked by a wall.\n")
	case engine.DoorLocked:
		b.WriteString(fmt.Sprintf("Door %d is locked: %s\n", result.Outcome.LevelID, result.Outcome.Message))
	case engine.DoorEntered:
		b.WriteString(fmt.Sprintf("Entered door %d.\n", result.Outcome.LevelID))
	case engine.ChestFound:
		b.WriteString("You found the chest!\n")
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n" + formatViewState(result.ViewState))
	return b.String()
}

func formatAnswerResult(result *service.AnswerResult) string {
	var b strings.Builder

	if result.Correct {
		b.WriteString("Correct!\n")
		if result.RewardMessage != "" {
			b.WriteString(result.RewardMessage + "\n")
		}
		if result.QuestComplete {
			b.WriteString("\nAll levels solved, the quest is complete!\n")
		}
	} else {
		b.WriteString("Not quite.\n")
		if result.Message != "" {
			b.WriteString(result.Message + "\n")
		}
	}

	b.WriteString(fmt.Sprintf("Solved: %d/%d\n", result.CompletedCount, result.ViewState.TotalLevels))
	b.WriteString("\n" + formatViewState(result.ViewState))
	return b.String()
}
