package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/rotationwalls/game/engine"
	"github.com/wricardo/mcp-training/rotationwalls/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultName is the ruleset used when a session does not ask for one
const DefaultName = "standard"

// extensions are tried in order when a ruleset is named without one
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles ruleset loading and caching
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a ruleset by name. The name may carry a .json, .yaml or
// .yml extension; without one each is tried in turn.
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	key := configID(name)

	m.mu.RLock()
	if config, exists := m.configs[key]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[key]; exists {
		return config, nil
	}

	config, err := m.readConfig(name)
	if err != nil {
		return nil, err
	}

	m.configs[key] = config
	return config, nil
}

func (m *Manager) readConfig(name string) (*engine.GameConfig, error) {
	candidates := []string{name}
	if !hasKnownExtension(name) {
		candidates = candidates[:0]
		for _, ext := range extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, filename := range candidates {
		data, err := os.ReadFile(filepath.Join(m.configDir, filename))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return parseConfig(filename, data)
	}

	return nil, ErrConfigNotFound
}

// ParseFile reads and validates a single ruleset file outside any manager
func ParseFile(path string) (*engine.GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseConfig(path, data)
}

// parseConfig decodes a ruleset file, fills omitted fields from the standard
// ruleset and validates the result.
func parseConfig(filename string, data []byte) (*engine.GameConfig, error) {
	var config engine.GameConfig
	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filename, err)
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filename, err)
		}
	}

	applyDefaults(&config)

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &config, nil
}

// applyDefaults fills zero-valued fields from the standard ruleset
func applyDefaults(config *engine.GameConfig) {
	def := engine.DefaultConfig()
	if config.Lanes == 0 {
		config.Lanes = def.Lanes
	}
	if config.Rotations == 0 {
		config.Rotations = def.Rotations
	}
	if config.MaxWalls == 0 {
		config.MaxWalls = def.MaxWalls
	}
	if config.WallCap == 0 {
		config.WallCap = def.WallCap
	}
	if config.BreakCap == 0 {
		config.BreakCap = def.BreakCap
	}
	if config.Colors == nil {
		config.Colors = def.Colors
	} else {
		for kind, color := range def.Colors {
			if _, ok := config.Colors[kind]; !ok {
				config.Colors[kind] = color
			}
		}
	}
	if config.Messages.Welcome == "" {
		config.Messages.Welcome = def.Messages.Welcome
	}
	if config.Messages.Wipe == "" {
		config.Messages.Wipe = def.Messages.Wipe
	}
}

// ListConfigs returns information about all available rulesets
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !hasKnownExtension(entry.Name()) {
			continue
		}

		id := configID(entry.Name())
		if seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			// Skip invalid configs
			continue
		}
		seen[id] = true

		configs = append(configs, &service.ConfigInfo{
			Filename:          entry.Name(),
			ConfigID:          id,
			Name:              config.Name,
			Description:       config.Description,
			Lanes:             config.Lanes,
			Rotations:         config.Rotations,
			MaxWalls:          config.MaxWalls,
			WallCap:           config.WallCap,
			BreakCap:          config.BreakCap,
			RollbackCarryOver: config.RollbackCarryOver,
		})
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default ruleset
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default ruleset by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached rulesets and reloads the default from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads standard.*, then the first valid ruleset on disk,
// then falls back to the built-in standard ruleset.
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultName)
	if err != nil {
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault(engine.DefaultConfig())
			return nil
		}

		config, err = m.LoadConfig(configs[0].Filename)
		if err != nil {
			m.setDefault(engine.DefaultConfig())
			return nil
		}
	}

	m.setDefault(config)
	return nil
}

func (m *Manager) setDefault(config *engine.GameConfig) {
	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig writes a ruleset to disk as JSON
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: bad config name %q", ErrInvalidConfig, name)
	}

	configPath := filepath.Join(m.configDir, id+".json")

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// configID strips a known extension from a ruleset name
func configID(name string) string {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

func hasKnownExtension(name string) bool {
	return configID(name) != name
}
