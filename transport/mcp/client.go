package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
	"github.com/wricardo/mcp-training/rotationwalls/game/service"
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
		baseURL: strings.TrimSuffix(baseURL, "/"),
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
		"Rotation Walls Tracker",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Rotation Walls Tracker - MCP Interface

This is a thin client that proxies all requests to the REST API server.

The board has rotations, each with lanes. Walls stack bottom-up in a lane and
their type follows the row: N, H, M, M, H, M. Rotation and lane numbers in these
tools are 1-based, matching the rendered board.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage trackers
- board_state: render the merged board
- place_wall, break_wall, unbreak_wall, remove_wall: change one lane
- apply_intents: run a batch of intents
- toggle_mark_mode: switch between placing and breaking
- reset_board: empty every rotation
- intent_history: list past intents
- list_configs: list rulesets
- game_instructions: the full rules`),
	)

	c.registerTools()
}

func laneSchema(required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
			"rotation": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Rotation number, starting at 1",
			},
			"lane": map[string]interface{}{
				"type":        "integer",
				"minimum":     1,
				"description": "Lane number, starting at 1",
			},
		},
		Required: required,
	}
}

func sessionSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID",
			},
		},
		Required: []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new tracker session with optional ruleset selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Ruleset to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active tracker sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details and the board of a specific session",
		InputSchema: sessionSchema(),
	}, c.handleGetSession)

	// Tracker operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Render the merged board of every rotation, including carried walls",
		InputSchema: sessionSchema(),
	}, c.handleBoardState)

	lane := []string{"session_id", "rotation", "lane"}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "place_wall",
		Description: "Place a wall on top of a lane. Ignored in mark mode or when the rotation is capped.",
		InputSchema: laneSchema(lane...),
	}, c.laneHandler(engine.ActionPlace))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "break_wall",
		Description: "Break the topmost unbroken wall of a lane",
		InputSchema: laneSchema(lane...),
	}, c.laneHandler(engine.ActionBreak))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "unbreak_wall",
		Description: "Restore the lowest broken wall of a lane",
		InputSchema: laneSchema(lane...),
	}, c.laneHandler(engine.ActionUnbreak))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "remove_wall",
		Description: "Remove the top placed wall of a lane (unbreaks instead while mark mode is on)",
		InputSchema: laneSchema(lane...),
	}, c.laneHandler(engine.ActionRemove))

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "apply_intents",
		Description: "Apply up to 50 intents in order. Rejected intents do not stop the batch; invalid ones do.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"intents": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"action": map[string]interface{}{
								"type": "string",
								"enum": []string{
									engine.ActionPlace, engine.ActionBreak, engine.ActionUnbreak,
									engine.ActionRemove, engine.ActionActivate, engine.ActionSecondary,
									engine.ActionToggleMark, engine.ActionReset,
								},
							},
							"rotation": map[string]interface{}{"type": "integer", "minimum": 1},
							"lane":     map[string]interface{}{"type": "integer", "minimum": 1},
						},
						"required": []string{"action"},
					},
					"description": "Intents to apply, rotation and lane starting at 1",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset the board first",
				},
			},
			Required: []string{"session_id", "intents"},
		},
	}, c.handleApplyIntents)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_mark_mode",
		Description: "Switch mark mode on or off. In mark mode the primary gesture breaks walls.",
		InputSchema: sessionSchema(),
	}, c.handleToggleMarkMode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_board",
		Description: "Empty every rotation and clear the wipe flag",
		InputSchema: sessionSchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "intent_history",
		Description: "Get the intent history of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleIntentHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rulesets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the complete tracker rules",
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

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
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

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

func sessionPath(args map[string]interface{}, suffix string) (string, error) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", fmt.Errorf("session_id is required")
	}
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix, nil
}

// intentFrom converts 1-based tool arguments to a zero-based intent
func intentFrom(action string, args map[string]interface{}) (service.Intent, error) {
	rotation, okR := args["rotation"].(float64)
	lane, okL := args["lane"].(float64)
	if !okR || !okL {
		return service.Intent{}, fmt.Errorf("rotation and lane are required")
	}
	return service.Intent{Action: action, Rotation: int(rotation) - 1, Lane: int(lane) - 1}, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", info.ID, info.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", path, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/board")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var board engine.BoardView
	if err := c.apiCall(ctx, "GET", path, nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board)), nil
}

// laneHandler builds the handler for a single-lane intent tool
func (c *Client) laneHandler(action string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(request)
		path, err := sessionPath(args, "/intent")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		intent, err := intentFrom(action, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var result service.IntentResult
		if err := c.apiCall(ctx, "POST", path, intent, &result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(formatIntentResult(&result)), nil
	}
}

func (c *Client) handleApplyIntents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/bulk-intent")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reset, _ := args["reset"].(bool)
	raw, _ := args["intents"].([]interface{})

	intents := make([]service.Intent, 0, len(raw))
	for i, item := range raw {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("intent %d is not an object", i+1)), nil
		}
		action, _ := fields["action"].(string)
		action = service.NormalizeAction(action)
		if !service.IsLaneAction(action) {
			// the service rejects unknown actions
			intents = append(intents, service.Intent{Action: action, Rotation: -1, Lane: -1})
			continue
		}
		intent, err := intentFrom(action, fields)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("intent %d: %v", i+1, err)), nil
		}
		intents = append(intents, intent)
	}

	body := map[string]interface{}{
		"intents": intents,
		"reset":   reset,
	}

	var result service.BulkIntentResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkResult(&result)), nil
}

func (c *Client) handleToggleMarkMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := sessionPath(arguments(request), "/mark-mode")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result service.IntentResult
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatIntentResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/reset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall(ctx, "POST", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	boardPath, _ := sessionPath(args, "/board")
	var board engine.BoardView
	if err := c.apiCall(ctx, "GET", boardPath, nil, &board); err != nil {
		return mcp.NewToolResultText(response.Message), nil
	}

	return mcp.NewToolResultText(response.Message + "\n\n" + formatBoard(&board)), nil
}

func (c *Client) handleIntentHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	path, err := sessionPath(args, "/history")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Rulesets:\n\n")
	for _, cfg := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  %d rotations x %d lanes, %d rows, wall cap %d, break cap %d\n\n",
			cfg.ConfigID, cfg.Name, cfg.Description,
			cfg.Rotations, cfg.Lanes, cfg.MaxWalls, cfg.WallCap, cfg.BreakCap)
	}

	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `Rotation Walls Tracker - Rules

BOARD:
The tracker has one board per rotation. Each board has lanes, and each lane is a
stack of walls that grows upward. The row a wall lands on fixes its type:

  Row 1: N   Row 2: H   Row 3: M   Row 4: M   Row 5: H   Row 6: M

PLACING:
• place_wall adds a wall on top of a lane.
• A rotation holds at most 11 placed walls, and stops accepting walls once it
  has 7 breaks.
• Placing on a lane that is already full raises a Wipe. The wall is not added
  and the wipe stays until reset_board.

BREAKING:
• break_wall (or any primary gesture in mark mode) breaks the topmost unbroken
  wall of the lane, shown as "Brk". A rotation takes at most 7 breaks.
• unbreak_wall restores the lowest broken wall to the type of its row.
• remove_wall pops the top placed wall. In mark mode it unbreaks instead.

CARRY-FORWARD:
When the 7th break lands on a rotation holding at least 11 walls, its unbroken
walls move to the bottom of the same lanes in the next rotation. Carried walls
are marked with ' and are never removed, only broken or unbroken.

MARK MODE:
toggle_mark_mode switches the primary gesture from placing to breaking. Placing
is refused while mark mode is on.

NUMBERING:
Rotation and lane numbers in tool arguments start at 1, matching the board
rendering.`

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	header := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n",
		info.ID, info.ConfigName, info.CreatedAt.Format("2006-01-02 15:04:05"))
	if info.GameState == nil || info.GameConfig == nil {
		return header + "No board available"
	}
	return header + formatBoard(engine.BuildBoardView(info.GameState, info.GameConfig))
}

func formatBoard(board *engine.BoardView) string {
	if board == nil {
		return "No board available"
	}
	out := board.Render()
	if board.Message != "" {
		out += fmt.Sprintf("Message: %s\n", board.Message)
	}
	return out
}

func status(success bool) string {
	if success {
		return "✓"
	}
	return "✗"
}

func formatIntentResult(result *service.IntentResult) string {
	var b strings.Builder
	intent := result.Intent
	if intent.Rotation >= 0 {
		fmt.Fprintf(&b, "%s %s rotation %d lane %d: %s\n",
			status(result.Success), intent.Action, intent.Rotation+1, intent.Lane+1, result.Outcome)
	} else {
		fmt.Fprintf(&b, "%s %s: %s\n", status(result.Success), intent.Action, result.Outcome)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatBoard(result.Board))
	return b.String()
}

func formatBulkResult(result *service.BulkIntentResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Executed %d/%d intents\n", result.IntentsExecuted, result.RequestedIntents)
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to the first %d intents\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped at intent %d: %s\n", result.StoppedOnIntent, result.StoppedReason)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, s := range result.Steps {
			if !service.IsLaneAction(s.Action) {
				fmt.Fprintf(&b, "%d. %s %s -> %s\n", s.Idx, status(s.Success), s.Action, s.Outcome)
				continue
			}
			fmt.Fprintf(&b, "%d. %s %s r%d l%d -> %s (walls %d, breaks %d)\n",
				s.Idx, status(s.Success), s.Action, s.Rotation+1, s.Lane+1, s.Outcome, s.WallCount, s.BreakCount)
		}
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatBoard(result.Board))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Intent History (Page %d/%d), total %d\n\n",
		history.Page, history.TotalPages, history.TotalIntents)

	for _, entry := range history.Intents {
		if entry.Rotation >= 0 {
			fmt.Fprintf(&b, "%d. %s %s r%d l%d -> %s\n",
				entry.IntentNumber, status(entry.Success), entry.Action, entry.Rotation+1, entry.Lane+1, entry.Outcome)
		} else {
			fmt.Fprintf(&b, "%d. %s %s -> %s\n",
				entry.IntentNumber, status(entry.Success), entry.Action, entry.Outcome)
		}
	}

	return b.String()
}
