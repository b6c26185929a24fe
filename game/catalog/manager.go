package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmelato/giftquest/game/engine"
	"github.com/dmelato/giftquest/game/service"
)

var (
	ErrQuestNotFound = errors.New("quest not found")
	ErrInvalidQuest  = errors.New("invalid quest")
)

// Manager handles quest configuration loading and caching.
type Manager struct {
	questDir     string
	defaultQuest *engine.Quest
	quests       map[string]*engine.Quest
	mu           sync.RWMutex
}

// NewManager creates a quest manager over a config directory.
func NewManager(questDir string) (*Manager, error) {
	if _, err := os.Stat(questDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("quest directory does not exist: %s", questDir)
	}

	m := &Manager{
		questDir: questDir,
		quests:   make(map[string]*engine.Quest),
	}

	if err := m.loadDefaultQuest(); err != nil {
		return nil, fmt.Errorf("failed to load default quest: %w", err)
	}

	return m, nil
}

// LoadQuest loads a quest by name, from cache or disk.
func (m *Manager) LoadQuest(name string) (*engine.Quest, error) {
	m.mu.RLock()
	if quest, exists := m.quests[name]; exists {
		m.mu.RUnlock()
		return quest, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if quest, exists := m.quests[name]; exists {
		return quest, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	questPath := filepath.Join(m.questDir, filename)

	data, err := os.ReadFile(questPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrQuestNotFound
		}
		return nil, fmt.Errorf("failed to read quest file: %w", err)
	}

	var quest engine.Quest
	if err := json.Unmarshal(data, &quest); err != nil {
		return nil, fmt.Errorf("failed to parse quest: %w", err)
	}

	if err := engine.ValidateQuest(&quest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuest, err)
	}

	m.quests[name] = &quest
	return &quest, nil
}

// ListQuests returns information about all available quests.
func (m *Manager) ListQuests() ([]*service.QuestInfo, error) {
	entries, err := os.ReadDir(m.questDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest directory: %w", err)
	}

	var quests []*service.QuestInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		quest, err := m.LoadQuest(name)
		if err != nil {
			// Skip invalid quests
			continue
		}

		quests = append(quests, &service.QuestInfo{
			Filename:    entry.Name(),
			QuestID:     name,
			Name:        quest.Name,
			Description: quest.Description,
			Recipient:   quest.Recipient,
			StartDate:   quest.StartDate,
			LevelCount:  len(quest.Levels),
		})
	}

	return quests, nil
}

// GetDefault returns the default quest.
func (m *Manager) GetDefault() *engine.Quest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultQuest
}

// SetDefault sets the default quest by name.
func (m *Manager) SetDefault(name string) error {
	quest, err := m.LoadQuest(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultQuest = quest
	return nil
}

// RefreshCache drops all cached quests and reloads the default.
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.quests = make(map[string]*engine.Quest)
	m.mu.Unlock()

	return m.loadDefaultQuest()
}

// loadDefaultQuest prefers default.json, then the first loadable quest
// in the directory, then the built-in quest.
func (m *Manager) loadDefaultQuest() error {
	quest, err := m.LoadQuest("default")
	if err != nil {
		quests, listErr := m.ListQuests()
		if listErr != nil || len(quests) == 0 {
			m.setBuiltinDefault()
			return nil
		}

		quest, err = m.LoadQuest(strings.TrimSuffix(quests[0].Filename, ".json"))
		if err != nil {
			m.setBuiltinDefault()
			return nil
		}
	}

	m.mu.Lock()
	m.defaultQuest = quest
	m.mu.Unlock()
	return nil
}

func (m *Manager) setBuiltinDefault() {
	quest := engine.DefaultQuest()
	// The built-in quest always validates; indexing the answers is the
	// part we need here.
	_ = engine.ValidateQuest(quest)

	m.mu.Lock()
	m.defaultQuest = quest
	m.mu.Unlock()
}

// SaveQuest validates and writes a quest to disk, updating the cache.
func (m *Manager) SaveQuest(name string, quest *engine.Quest) error {
	if err := engine.ValidateQuest(quest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuest, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	questPath := filepath.Join(m.questDir, filename)

	data, err := json.MarshalIndent(quest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal quest: %w", err)
	}

	if err := os.WriteFile(questPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write quest file: %w", err)
	}

	m.mu.Lock()
	m.quests[name] = quest
	m.mu.Unlock()

	return nil
}
