package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/mcp-training/rotationwalls/api"
	"github.com/wricardo/mcp-training/rotationwalls/game/config"
	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
	"github.com/wricardo/mcp-training/rotationwalls/game/service"
	"github.com/wricardo/mcp-training/rotationwalls/game/session"
)

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "Expected text content in result")
	return text.Text
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api/sessions/ab12", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	t.Run("plain body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Internal Server Error"))
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/health", nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API error")
	})

	t.Run("json error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "session zz: session not found"})
		}))
		defer server.Close()

		err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api/sessions/zz", nil, nil)
		require.Error(t, err)
		assert.Equal(t, "session zz: session not found", err.Error())
	})
}

func TestClient_createSession(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(service.SessionInfo{ID: "ab12", ConfigName: "compact"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleCreateSession(context.Background(),
		callRequest("create_session", map[string]interface{}{"config_id": "compact"}))
	require.NoError(t, err)

	text := resultText(t, result)
	assert.Contains(t, text, "ab12")
	assert.Equal(t, "compact", body["config_id"])
}

func TestClient_laneToolsUseZeroBasedIntents(t *testing.T) {
	tools := map[string]string{
		"place_wall":   engine.ActionPlace,
		"break_wall":   engine.ActionBreak,
		"unbreak_wall": engine.ActionUnbreak,
		"remove_wall":  engine.ActionRemove,
	}

	for tool, action := range tools {
		t.Run(tool, func(t *testing.T) {
			var got service.Intent
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/sessions/ab12/intent", r.URL.Path)
				json.NewDecoder(r.Body).Decode(&got)
				json.NewEncoder(w).Encode(service.IntentResult{
					Success: true,
					Outcome: "ok",
					Intent:  got,
					Board:   engine.NewEngineWithDefaults().GetBoardView(),
				})
			}))
			defer server.Close()

			handler := NewClient(server.URL).laneHandler(action)
			result, err := handler(context.Background(), callRequest(tool, map[string]interface{}{
				"session_id": "ab12",
				"rotation":   float64(2),
				"lane":       float64(5),
			}))
			require.NoError(t, err)

			assert.Equal(t, service.Intent{Action: action, Rotation: 1, Lane: 4}, got)
			text := resultText(t, result)
			assert.Contains(t, text, "rotation 2 lane 5")
			assert.Contains(t, text, "Rotation 1  walls 0/11")
		})
	}
}

func TestClient_missingArguments(t *testing.T) {
	client := NewClient("http://localhost:1")

	result, err := client.laneHandler(engine.ActionPlace)(context.Background(),
		callRequest("place_wall", map[string]interface{}{"session_id": "ab12"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "rotation and lane are required")

	result, err = client.handleBoardState(context.Background(), callRequest("board_state", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "session_id is required")
}

func TestClient_applyIntents(t *testing.T) {
	var body struct {
		Intents []service.Intent `json:"intents"`
		Reset   bool             `json:"reset"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/ab12/bulk-intent", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(service.BulkIntentResult{
			IntentsExecuted:  len(body.Intents),
			RequestedIntents: len(body.Intents),
			Success:          true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleApplyIntents(context.Background(), callRequest("apply_intents", map[string]interface{}{
		"session_id": "ab12",
		"reset":      true,
		"intents": []interface{}{
			map[string]interface{}{"action": "place", "rotation": float64(1), "lane": float64(1)},
			map[string]interface{}{"action": "toggle_mark"},
			map[string]interface{}{"action": "break", "rotation": float64(1), "lane": float64(1)},
		},
	}))
	require.NoError(t, err)

	assert.True(t, body.Reset)
	assert.Equal(t, []service.Intent{
		{Action: "place", Rotation: 0, Lane: 0},
		{Action: "toggle_mark", Rotation: -1, Lane: -1},
		{Action: "break", Rotation: 0, Lane: 0},
	}, body.Intents)
	assert.Contains(t, resultText(t, result), "Executed 3/3 intents")
}

func TestClient_applyIntentsLanelessAliases(t *testing.T) {
	client := newLiveClient(t)
	ctx := context.Background()

	var info service.SessionInfo
	require.NoError(t, client.apiCall(ctx, "POST", "/api/sessions", map[string]string{}, &info))

	result, err := client.handleApplyIntents(ctx, callRequest("apply_intents", map[string]interface{}{
		"session_id": info.ID,
		"intents": []interface{}{
			map[string]interface{}{"action": "place", "rotation": float64(1), "lane": float64(2)},
			map[string]interface{}{"action": "mark_mode"},
			map[string]interface{}{"action": "Mark", "rotation": float64(1), "lane": float64(2)},
			map[string]interface{}{"action": "toggle_mark_mode"},
			map[string]interface{}{"action": "reset"},
		},
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	text := resultText(t, result)
	assert.Contains(t, text, "Executed 5/5 intents")
	assert.Contains(t, text, "1. ✓ place r1 l2 -> placed (walls 1, breaks 0)")
	assert.Contains(t, text, "2. ✓ toggle_mark -> mark_mode_on\n")
	assert.Contains(t, text, "3. ✓ break r1 l2 -> broken (walls 1, breaks 1)")
	assert.Contains(t, text, "4. ✓ toggle_mark -> mark_mode_off\n")
	assert.Contains(t, text, "5. ✓ reset -> reset\n")
	assert.NotContains(t, text, "r0 l0")

	result, err = client.handleApplyIntents(ctx, callRequest("apply_intents", map[string]interface{}{
		"session_id": info.ID,
		"intents": []interface{}{
			map[string]interface{}{"action": "place"},
		},
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "rotation and lane are required")

	result, err = client.handleApplyIntents(ctx, callRequest("apply_intents", map[string]interface{}{
		"session_id": info.ID,
		"intents": []interface{}{
			map[string]interface{}{"action": "jump"},
		},
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Stopped at intent 1")
}

func TestClient_intentHistoryQuery(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(service.HistoryResponse{
			Intents: []engine.IntentEntry{
				{Action: "place", Rotation: 0, Lane: 3, Outcome: "placed", Success: true, IntentNumber: 1},
				{Action: "toggle_mark", Rotation: -1, Lane: -1, Outcome: "mark_mode_on", Success: true, IntentNumber: 2},
			},
			TotalIntents: 2,
			Page:         2,
			TotalPages:   2,
		})
	}))
	defer server.Close()

	result, err := NewClient(server.URL).handleIntentHistory(context.Background(),
		callRequest("intent_history", map[string]interface{}{
			"session_id": "ab12",
			"page":       float64(2),
			"limit":      float64(5),
		}))
	require.NoError(t, err)

	assert.Equal(t, "limit=5&page=2", query)
	text := resultText(t, result)
	assert.Contains(t, text, "1. ✓ place r1 l4 -> placed")
	assert.Contains(t, text, "2. ✓ toggle_mark -> mark_mode_on")
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callRequest("game_instructions", nil))
	require.NoError(t, err)

	text := resultText(t, result)
	for _, content := range []string{"BOARD:", "PLACING:", "BREAKING:", "CARRY-FORWARD:", "MARK MODE:", "Wipe"} {
		assert.Contains(t, text, content)
	}
}

func TestFormatIntentResult(t *testing.T) {
	eng := engine.NewEngineWithDefaults()
	eng.Place(0, 0)

	text := formatIntentResult(&service.IntentResult{
		Success: true,
		Outcome: engine.OutcomePlaced,
		Intent:  service.Intent{Action: engine.ActionPlace, Rotation: 0, Lane: 0},
		Board:   eng.GetBoardView(),
		Events:  []service.GameEvent{{Type: service.EventPlace, Message: "Placed"}},
	})

	assert.Contains(t, text, "✓ place rotation 1 lane 1: placed")
	assert.Contains(t, text, "- place: Placed")
	assert.Contains(t, text, "Rotation 1  walls 1/11  breaks 0/7")

	text = formatIntentResult(&service.IntentResult{
		Success: true,
		Outcome: engine.OutcomeMarkModeOn,
		Intent:  service.Intent{Action: engine.ActionToggleMark, Rotation: -1, Lane: -1},
	})
	assert.True(t, strings.HasPrefix(text, "✓ toggle_mark: mark_mode_on"))
	assert.Contains(t, text, "No board available")
}

// End-to-end through the real REST stack

func newLiveClient(t *testing.T) *Client {
	t.Helper()
	configs, err := config.NewManager(t.TempDir())
	require.NoError(t, err)
	svc := service.NewGameService(session.NewManager(nil), configs, nil)

	ts := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL)
}

func TestClient_Integration(t *testing.T) {
	client := newLiveClient(t)
	ctx := context.Background()

	var info service.SessionInfo
	require.NoError(t, client.apiCall(ctx, "POST", "/api/sessions", map[string]string{}, &info))

	place := client.laneHandler(engine.ActionPlace)
	for i := 0; i < 3; i++ {
		result, err := place(ctx, callRequest("place_wall", map[string]interface{}{
			"session_id": info.ID, "rotation": float64(1), "lane": float64(6),
		}))
		require.NoError(t, err)
		require.False(t, result.IsError, resultText(t, result))
	}

	result, err := client.handleBoardState(ctx, callRequest("board_state", map[string]interface{}{"session_id": info.ID}))
	require.NoError(t, err)
	text := resultText(t, result)
	assert.Contains(t, text, "Rotation 1  walls 3/11  breaks 0/7")
	assert.Contains(t, text, "Mark Mode: OFF")

	result, err = client.handleToggleMarkMode(ctx, callRequest("toggle_mark_mode", map[string]interface{}{"session_id": info.ID}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Mark Mode: ON")

	result, err = client.laneHandler(engine.ActionBreak)(ctx, callRequest("break_wall", map[string]interface{}{
		"session_id": info.ID, "rotation": float64(1), "lane": float64(6),
	}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "break rotation 1 lane 6: broken")
	assert.Contains(t, text, "breaks 1/7")

	result, err = client.laneHandler(engine.ActionPlace)(ctx, callRequest("place_wall", map[string]interface{}{
		"session_id": info.ID, "rotation": float64(9), "lane": float64(1),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "invalid coordinates")

	result, err = client.handleReset(ctx, callRequest("reset_board", map[string]interface{}{"session_id": info.ID}))
	require.NoError(t, err)
	text = resultText(t, result)
	assert.Contains(t, text, "Board reset successfully")
	assert.Contains(t, text, "Rotation 1  walls 0/11  breaks 0/7")

	result, err = client.handleListConfigs(ctx, callRequest("list_configs", nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Available Rulesets")

	result, err = client.handleGetSession(ctx, callRequest("get_session", map[string]interface{}{"session_id": "zzzz"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
