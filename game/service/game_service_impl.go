package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	logger   *zap.Logger
	mu       sync.RWMutex
}

// actionAliases maps accepted spellings onto engine actions
var actionAliases = map[string]string{
	"markorbreak":      engine.ActionBreak,
	"mark_or_break":    engine.ActionBreak,
	"mark":             engine.ActionBreak,
	"togglemarkmode":   engine.ActionToggleMark,
	"toggle_mark_mode": engine.ActionToggleMark,
	"mark_mode":        engine.ActionToggleMark,
	"primary":          engine.ActionActivate,
}

// laneActions are the actions that address a rotation and lane
var laneActions = map[string]bool{
	engine.ActionPlace:     true,
	engine.ActionBreak:     true,
	engine.ActionUnbreak:   true,
	engine.ActionRemove:    true,
	engine.ActionActivate:  true,
	engine.ActionSecondary: true,
}

// NormalizeAction maps an accepted spelling onto its engine action name.
// Unknown actions come back trimmed and lowercased.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if alias, ok := actionAliases[action]; ok {
		return alias
	}
	return action
}

// IsLaneAction reports whether an action addresses a rotation and lane
func IsLaneAction(action string) bool {
	return laneActions[NormalizeAction(action)]
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "standard"
	}
	return configName
}

// NewGameService creates a new service instance. A nil logger disables logging.
func NewGameService(sessions SessionManager, configs ConfigManager, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		logger:   logger.Named("service"),
	}
}

// CreateSession creates a new tracker session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.logger.Info("session created", zap.String("session_id", session.ID), zap.String("config", configID))

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name),
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Clone(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name),
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState().Clone(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}

// ApplyIntent applies one intent to a session
func (s *gameServiceImpl) ApplyIntent(ctx context.Context, sessionID string, intent Intent) (*IntentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	intent, err = normalizeIntent(intent, sess.Config)
	if err != nil {
		return nil, err
	}

	success, err := sess.Engine.ApplyIntent(intent.Action, intent.Rotation, intent.Lane)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownAction, err)
	}

	last := sess.Engine.GetLastIntent()
	state := sess.Engine.GetState()

	s.logger.Debug("intent applied",
		zap.String("session_id", sessionID),
		zap.String("action", intent.Action),
		zap.Int("rotation", intent.Rotation),
		zap.Int("lane", intent.Lane),
		zap.String("outcome", last.Outcome),
		zap.Bool("success", success),
	)

	return &IntentResult{
		Success:   success,
		Outcome:   last.Outcome,
		Message:   state.Message,
		Intent:    intent,
		GameState: state.Clone(),
		Board:     sess.Engine.GetBoardView(),
		Events:    eventsFor(last, state.Message),
	}, nil
}

// BulkApply applies intents in order. Silent no-ops do not stop the batch; an
// invalid intent does.
func (s *gameServiceImpl) BulkApply(ctx context.Context, sessionID string, intents []Intent, reset bool) (*BulkIntentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkIntentResult{
		RequestedIntents: len(intents),
		Events:           make([]GameEvent, 0),
		Success:          true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, newEvent(EventReset, "Board reset", -1, -1))
	}

	// Limit intents to prevent abuse
	if len(intents) > engine.MaxBulkIntents {
		result.Truncated = true
		result.Limit = engine.MaxBulkIntents
		intents = intents[:engine.MaxBulkIntents]
	}

	for i, raw := range intents {
		if err := ctx.Err(); err != nil {
			result.Success = false
			result.StoppedReason = err.Error()
			result.StoppedOnIntent = i + 1
			break
		}

		intent, err := normalizeIntent(raw, sess.Config)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("intent %d: %v", i+1, err)
			result.StoppedOnIntent = i + 1
			break
		}

		success, err := sess.Engine.ApplyIntent(intent.Action, intent.Rotation, intent.Lane)
		if err != nil {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("intent %d: %v", i+1, err)
			result.StoppedOnIntent = i + 1
			break
		}

		last := sess.Engine.GetLastIntent()
		result.IntentsExecuted++
		result.Events = append(result.Events, eventsFor(last, sess.Engine.GetState().Message)...)
		result.Steps = append(result.Steps, IntentStep{
			Idx:        i + 1,
			Action:     intent.Action,
			Rotation:   intent.Rotation,
			Lane:       intent.Lane,
			Outcome:    last.Outcome,
			Success:    success,
			WallCount:  sess.Engine.GetWallCount(intent.Rotation),
			BreakCount: sess.Engine.GetBreakCount(intent.Rotation),
		})
	}

	state := sess.Engine.GetState()
	result.GameState = state.Clone()
	result.Board = sess.Engine.GetBoardView()
	result.Wipe = state.Wipe
	result.Message = state.Message

	s.logger.Debug("bulk intents applied",
		zap.String("session_id", sessionID),
		zap.Int("requested", result.RequestedIntents),
		zap.Int("executed", result.IntentsExecuted),
		zap.Bool("truncated", result.Truncated),
		zap.String("stopped_reason", result.StoppedReason),
	)

	return result, nil
}

// ToggleMarkMode flips mark mode for a session
func (s *gameServiceImpl) ToggleMarkMode(ctx context.Context, sessionID string) (*IntentResult, error) {
	return s.ApplyIntent(ctx, sessionID, Intent{Action: engine.ActionToggleMark, Rotation: -1, Lane: -1})
}

// Reset empties every board of a session
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()
	s.logger.Debug("session reset", zap.String("session_id", sessionID))

	return state.Clone(), nil
}

// GetGameState retrieves a snapshot of the current state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Clone(), nil
}

// GetBoardView returns the merged read-only view of a session
func (s *gameServiceImpl) GetBoardView(ctx context.Context, sessionID string) (*engine.BoardView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetBoardView(), nil
}

// GetIntentHistory returns paginated intent history
func (s *gameServiceImpl) GetIntentHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetIntentHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	intents := []engine.IntentEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			intents = append(intents, history[i])
		}
	} else if start < total {
		intents = append(intents, history[start:end]...)
	}

	return &HistoryResponse{
		Intents:      intents,
		TotalIntents: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available rulesets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific ruleset
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a ruleset to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if err := s.configs.SaveConfig(configName, config); err != nil {
		return err
	}
	s.logger.Info("config saved", zap.String("config", configName))
	return nil
}

// normalizeIntent canonicalises the action name and checks coordinates
// against the session's ruleset.
func normalizeIntent(intent Intent, config *engine.GameConfig) (Intent, error) {
	action := NormalizeAction(intent.Action)
	intent.Action = action

	switch {
	case laneActions[action]:
		if intent.Rotation < 0 || intent.Rotation >= config.Rotations ||
			intent.Lane < 0 || intent.Lane >= config.Lanes {
			return intent, fmt.Errorf("%w: rotation %d, lane %d (ruleset has %d rotations, %d lanes)",
				ErrInvalidCoordinates, intent.Rotation, intent.Lane, config.Rotations, config.Lanes)
		}
	case action == engine.ActionToggleMark, action == engine.ActionReset:
		intent.Rotation, intent.Lane = -1, -1
	default:
		return intent, fmt.Errorf("%w: %q", ErrUnknownAction, intent.Action)
	}
	return intent, nil
}

// eventsFor derives events from a recorded intent. No-ops produce none,
// except a wipe.
func eventsFor(entry *engine.IntentEntry, message string) []GameEvent {
	if entry == nil {
		return nil
	}

	var events []GameEvent
	switch entry.Outcome {
	case engine.OutcomePlaced:
		events = append(events, newEvent(EventPlace, message, entry.Rotation, entry.Lane))
	case engine.OutcomeWipe:
		events = append(events, newEvent(EventWipe, message, entry.Rotation, entry.Lane))
	case engine.OutcomeBroken:
		events = append(events, newEvent(EventBreak, message, entry.Rotation, entry.Lane))
	case engine.OutcomeCarriedForward:
		events = append(events,
			newEvent(EventBreak, fmt.Sprintf("Wall broken in rotation %d, lane %d", entry.Rotation+1, entry.Lane+1), entry.Rotation, entry.Lane),
			newEvent(EventCarryForward, message, entry.Rotation+1, -1),
		)
	case engine.OutcomeUnbroken:
		events = append(events, newEvent(EventUnbreak, message, entry.Rotation, entry.Lane))
	case engine.OutcomeRemoved:
		events = append(events, newEvent(EventRemove, message, entry.Rotation, entry.Lane))
	case engine.OutcomeMarkModeOn, engine.OutcomeMarkModeOff:
		events = append(events, newEvent(EventMarkMode, message, -1, -1))
	case engine.OutcomeReset:
		events = append(events, newEvent(EventReset, message, -1, -1))
	}
	return events
}

func newEvent(eventType, message string, rotation, lane int) GameEvent {
	return GameEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		Rotation:  rotation,
		Lane:      lane,
	}
}

// IsClientError reports whether err comes from a bad intent rather than a failure
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidCoordinates) || errors.Is(err, ErrUnknownAction)
}
