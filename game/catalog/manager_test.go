package catalog

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmelato/giftquest/game/engine"
)

func testQuest(name string) *engine.Quest {
	return &engine.Quest{
		Name:      name,
		StartDate: "2025-01-01",
		HubLayout: []string{
			"WWWW",
			"WS1W",
			"WWWW",
		},
		Levels: []engine.Level{
			{
				ID:            1,
				UnlockDate:    "2025-01-01",
				Title:         "Level 1",
				Riddle:        "What melts in a cup?",
				Answers:       []string{"chocolate"},
				RewardMessage: "In the kitchen!",
				MapLayout: []string{
					"WWWW",
					"WSCW",
					"WWWW",
				},
			},
		},
	}
}

func writeQuestFile(t *testing.T, dir, filename string, quest *engine.Quest) {
	t.Helper()
	data, err := json.MarshalIndent(quest, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal quest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write quest file: %v", err)
	}
}

func TestNewManager_MissingDir(t *testing.T) {
	if _, err := NewManager(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Expected error for missing quest directory")
	}
}

func TestNewManager_EmptyDirUsesBuiltin(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	quest := manager.GetDefault()
	if quest == nil {
		t.Fatal("Expected a built-in default quest")
	}
	if quest.Name != "Advent Gift Quest" {
		t.Errorf("Expected built-in quest, got %q", quest.Name)
	}
	// The built-in default must be playable, not just present.
	level, _ := quest.Level(1)
	if !level.Accepts("scarf") {
		t.Error("Expected built-in quest answers to be indexed")
	}
}

func TestNewManager_PrefersDefaultJSON(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "aaa.json", testQuest("Other Quest"))
	writeQuestFile(t, dir, "default.json", testQuest("The Default"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if got := manager.GetDefault().Name; got != "The Default" {
		t.Errorf("Expected default.json to win, got %q", got)
	}
}

func TestLoadQuest(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "winter.json", testQuest("Winter Quest"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	quest, err := manager.LoadQuest("winter")
	if err != nil {
		t.Fatalf("Failed to load quest: %v", err)
	}
	if quest.Name != "Winter Quest" {
		t.Errorf("Expected Winter Quest, got %q", quest.Name)
	}

	// Loading validates, so answers are ready.
	level, _ := quest.Level(1)
	if !level.Accepts(" Chocolate ") {
		t.Error("Expected loaded quest answers to be indexed")
	}

	// Cache returns the same instance.
	again, err := manager.LoadQuest("winter")
	if err != nil {
		t.Fatalf("Failed to load cached quest: %v", err)
	}
	if again != quest {
		t.Error("Expected cached quest to be reused")
	}
}

func TestLoadQuest_NotFound(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := manager.LoadQuest("ghost"); !errors.Is(err, ErrQuestNotFound) {
		t.Errorf("Expected ErrQuestNotFound, got %v", err)
	}
}

func TestLoadQuest_Invalid(t *testing.T) {
	dir := t.TempDir()
	broken := testQuest("Broken")
	broken.Levels = nil
	writeQuestFile(t, dir, "broken.json", broken)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if _, err := manager.LoadQuest("broken"); !errors.Is(err, ErrInvalidQuest) {
		t.Errorf("Expected ErrInvalidQuest, got %v", err)
	}
}

func TestListQuests(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "one.json", testQuest("Quest One"))
	writeQuestFile(t, dir, "two.json", testQuest("Quest Two"))
	broken := testQuest("Broken")
	broken.StartDate = "someday"
	writeQuestFile(t, dir, "broken.json", broken)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	quests, err := manager.ListQuests()
	if err != nil {
		t.Fatalf("Failed to list quests: %v", err)
	}
	if len(quests) != 2 {
		t.Fatalf("Expected 2 listed quests, got %d", len(quests))
	}
	for _, info := range quests {
		if info.LevelCount != 1 {
			t.Errorf("Expected 1 level in %s, got %d", info.QuestID, info.LevelCount)
		}
		if info.StartDate != "2025-01-01" {
			t.Errorf("Expected start date in listing, got %q", info.StartDate)
		}
	}
}

func TestSetDefault(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "special.json", testQuest("Special Quest"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	if err := manager.SetDefault("special"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if got := manager.GetDefault().Name; got != "Special Quest" {
		t.Errorf("Expected Special Quest as default, got %q", got)
	}

	if err := manager.SetDefault("ghost"); !errors.Is(err, ErrQuestNotFound) {
		t.Errorf("Expected ErrQuestNotFound, got %v", err)
	}
}

func TestSaveQuest(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SaveQuest("saved", testQuest("Saved Quest")); err != nil {
		t.Fatalf("Failed to save quest: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
		t.Errorf("Expected quest file on disk, got %v", err)
	}

	quest, err := manager.LoadQuest("saved")
	if err != nil {
		t.Fatalf("Failed to load saved quest: %v", err)
	}
	if quest.Name != "Saved Quest" {
		t.Errorf("Expected Saved Quest, got %q", quest.Name)
	}

	broken := testQuest("Broken")
	broken.HubLayout = nil
	if err := manager.SaveQuest("broken", broken); !errors.Is(err, ErrInvalidQuest) {
		t.Errorf("Expected ErrInvalidQuest, got %v", err)
	}
}

func TestRefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeQuestFile(t, dir, "winter.json", testQuest("Winter Quest"))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	first, err := manager.LoadQuest("winter")
	if err != nil {
		t.Fatalf("Failed to load quest: %v", err)
	}

	// Change the file behind the cache, then refresh.
	updated := testQuest("Winter Quest v2")
	writeQuestFile(t, dir, "winter.json", updated)
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("Failed to refresh cache: %v", err)
	}

	second, err := manager.LoadQuest("winter")
	if err != nil {
		t.Fatalf("Failed to reload quest: %v", err)
	}
	if second == first {
		t.Error("Expected refresh to drop the cached quest")
	}
	if second.Name != "Winter Quest v2" {
		t.Errorf("Expected updated quest, got %q", second.Name)
	}
}
