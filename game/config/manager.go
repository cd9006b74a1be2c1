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

	"github.com/wricardo/mcp-training/babasolver/game/engine"
	"github.com/wricardo/mcp-training/babasolver/game/service"
)

// Aliases of the service errors so callers of either package can match them
var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = service.ErrInvalidLevel
)

// Manager handles level loading and caching. Files in levelDir shadow the
// built-in levels of the same name.
type Manager struct {
	levelDir     string
	defaultLevel string
	levels       map[string]*engine.LevelConfig
	builtins     map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a level manager. An empty levelDir serves built-ins only.
func NewManager(levelDir string) (*Manager, error) {
	if levelDir != "" {
		if _, err := os.Stat(levelDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
		}
	}

	m := &Manager{
		levelDir:     levelDir,
		defaultLevel: engine.FloatiestPlatformsName,
		levels:       make(map[string]*engine.LevelConfig),
		builtins:     make(map[string]*engine.LevelConfig),
	}
	for _, lc := range engine.BuiltinLevels() {
		m.builtins[lc.Name] = lc
	}
	return m, nil
}

// LoadLevel loads a level by name, from disk first and then the built-ins.
// The returned config is shared; callers must not modify it.
func (m *Manager) LoadLevel(name string) (*engine.LevelConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" {
		return nil, ErrLevelNotFound
	}

	m.mu.RLock()
	if level, exists := m.levels[name]; exists {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, exists := m.levels[name]; exists {
		return level, nil
	}

	level, err := m.readLevel(name)
	if errors.Is(err, ErrLevelNotFound) {
		builtin, ok := m.builtins[name]
		if !ok {
			return nil, err
		}
		level = builtin
	} else if err != nil {
		return nil, err
	}

	m.levels[name] = level
	return level, nil
}

func (m *Manager) readLevel(name string) (*engine.LevelConfig, error) {
	if m.levelDir == "" {
		return nil, ErrLevelNotFound
	}
	data, err := os.ReadFile(filepath.Join(m.levelDir, name+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLevelNotFound
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	var level engine.LevelConfig
	if err := json.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("%w: failed to parse level: %v", ErrInvalidLevel, err)
	}
	if err := engine.ValidateLevelConfig(&level); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return &level, nil
}

// NewState loads a level and builds its initial state
func (m *Manager) NewState(name string) (*engine.GameState, error) {
	level, err := m.LoadLevel(name)
	if err != nil {
		return nil, err
	}
	state, err := engine.NewLevelState(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}
	return state, nil
}

// ListLevels returns every loadable level sorted by id. Invalid files are skipped.
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	seen := make(map[string]bool)
	var levels []*service.LevelInfo

	if m.levelDir != "" {
		entries, err := os.ReadDir(m.levelDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read level directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), ".json")
			level, err := m.LoadLevel(id)
			if err != nil {
				continue
			}
			info := newLevelInfo(id, level)
			info.Filename = entry.Name()
			levels = append(levels, info)
			seen[id] = true
		}
	}

	for id, level := range m.builtins {
		if seen[id] {
			continue
		}
		info := newLevelInfo(id, level)
		info.Builtin = true
		levels = append(levels, info)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelID < levels[j].LevelID })
	return levels, nil
}

func newLevelInfo(id string, level *engine.LevelConfig) *service.LevelInfo {
	heuristic := level.Heuristic
	if heuristic == "" {
		heuristic = engine.DefaultHeuristicName
	}
	return &service.LevelInfo{
		LevelID:     id,
		Name:        level.Name,
		Description: level.Description,
		Height:      level.Height,
		Width:       level.Width,
		Heuristic:   heuristic,
	}
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	name := m.defaultLevel
	m.mu.RUnlock()

	level, err := m.LoadLevel(name)
	if err != nil {
		return m.builtins[engine.FloatiestPlatformsName]
	}
	return level
}

// DefaultName returns the id of the default level
func (m *Manager) DefaultName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level by name
func (m *Manager) SetDefault(name string) error {
	if _, err := m.LoadLevel(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultLevel = strings.TrimSuffix(name, ".json")
	return nil
}

// SaveLevel validates a level and writes it to the level directory
func (m *Manager) SaveLevel(name string, level *engine.LevelConfig) error {
	if m.levelDir == "" {
		return errors.New("no level directory configured")
	}
	if err := engine.ValidateLevelConfig(level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	name = strings.TrimSuffix(name, ".json")
	data, err := json.MarshalIndent(level, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.levelDir, name+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[name] = level
	m.mu.Unlock()

	return nil
}
