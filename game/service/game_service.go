package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

var (
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	ErrUnknownAction      = errors.New("unknown action")
)

// GameService defines all tracker operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Intents
	ApplyIntent(ctx context.Context, sessionID string, intent Intent) (*IntentResult, error)
	BulkApply(ctx context.Context, sessionID string, intents []Intent, reset bool) (*BulkIntentResult, error)
	ToggleMarkMode(ctx context.Context, sessionID string) (*IntentResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Tracker State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetBoardView(ctx context.Context, sessionID string) (*engine.BoardView, error)
	GetIntentHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles ruleset loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active tracker session
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
