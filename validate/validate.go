// Command validate checks quest configuration JSON files in the
// ../configs directory. It runs the full engine validation (grid
// shape, door/level pairing, date ordering, riddle completeness) and
// adds a connectivity pass: the chest of every room must be reachable
// from its start tile, and every hub door must be reachable from the
// hub start.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmelato/giftquest/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// validateQuestFile loads and validates a single quest JSON file.
func validateQuestFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var quest engine.Quest
	if err := json.Unmarshal(data, &quest); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateQuest(&quest); err != nil {
		result.fail("%v", err)
		return result
	}

	// Connectivity: hub start must reach every door, room start must
	// reach the chest.
	hub := engine.ParseGrid(quest.HubLayout)
	hubStart := hub.FindStart()
	for _, level := range quest.Levels {
		doorPos, ok := hub.FindDoor(level.ID)
		if !ok {
			continue
		}
		if !reachable(hub, hubStart, doorPos) {
			result.fail("Door %d at (%d,%d) unreachable from hub start", level.ID, doorPos.X, doorPos.Y)
		}

		room := engine.ParseGrid(level.MapLayout)
		chestPos, ok := room.FindTile(engine.Chest)
		if !ok {
			continue
		}
		if !reachable(room, room.FindStart(), chestPos) {
			result.fail("Room %d: chest at (%d,%d) unreachable from start", level.ID, chestPos.X, chestPos.Y)
		}
	}

	if result.Valid {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", quest.Name))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Start date: %s", quest.StartDate))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Hub: %dx%d", hub.Width(), hub.Height()))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Levels: %d", len(quest.Levels)))
		if len(quest.GalleryStages) > 0 {
			result.Notes = append(result.Notes, fmt.Sprintf("✓ Gallery stages: %d", len(quest.GalleryStages)))
		}
	}

	return result
}

// reachable walks non-wall tiles from start with 4-directional moves.
// Door tiles count as passable here since the calendar, not geometry,
// decides whether they open.
func reachable(grid engine.Grid, start, goal engine.Position) bool {
	visited := make(map[engine.Position]bool)
	queue := []engine.Position{start}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p] {
			continue
		}
		visited[p] = true
		if p == goal {
			return true
		}

		for _, dir := range engine.Directions() {
			dx, dy := dir.Delta()
			n := engine.Position{X: p.X + dx, Y: p.Y + dy}
			if visited[n] {
				continue
			}
			if grid.TileAt(n.X, n.Y).Kind == engine.Wall {
				continue
			}
			queue = append(queue, n)
		}
	}
	return false
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding quest files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No quest files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateQuestFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Notes {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				fmt.Println("  ❌ " + note)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All quests are valid!")
	} else {
		fmt.Println("❌ Some quests have errors")
		os.Exit(1)
	}
}
