package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wricardo/mcp-training/rotationwalls/game/service"
)

// Client drives one tracker session over the HTTP API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateSession starts a session on the named ruleset, or the server default
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body any
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = info.ID
	return &info, nil
}

// BulkIntent applies a batch of 0-based intents
func (c *Client) BulkIntent(ctx context.Context, intents []service.Intent) (*service.BulkIntentResult, error) {
	req := struct {
		Intents []service.Intent `json:"intents"`
	}{intents}

	var result service.BulkIntentResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/bulk-intent"), req, &result); err != nil {
		return nil, fmt.Errorf("bulk intent: %w", err)
	}
	return &result, nil
}

// Close deletes the session
func (c *Client) Close(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	if err := c.do(ctx, http.MethodDelete, c.sessionPath(""), nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	c.sessionID = ""
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + c.sessionID + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s - %s", resp.Status, bytes.TrimSpace(data))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
