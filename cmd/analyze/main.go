// Command analyze prints quick, human-readable heuristics about quest
// files in the project's configs directory. It summarizes the door
// calendar, room dimensions, chest and start placement, and highlights
// doors without a matching room or rooms whose chest cannot be reached
// from the start tile.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// AnalysisQuest is a light struct for reading quest files used by analysis.
type AnalysisQuest struct {
	Name      string   `json:"name"`
	Recipient string   `json:"recipient"`
	StartDate string   `json:"start_date"`
	HubLayout []string `json:"hub_layout"`
	Levels    []struct {
		ID         int      `json:"id"`
		UnlockDate string   `json:"unlock_date"`
		Title      string   `json:"title"`
		Answers    []string `json:"answers"`
		MapLayout  []string `json:"map_layout"`
	} `json:"levels"`
}

// AnalysisPoint denotes a grid coordinate used during analysis output.
type AnalysisPoint struct {
	X, Y int
}

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No quest files found in %s\n", configDir)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeQuest(file)
	}
}

func analyzeQuest(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var quest AnalysisQuest
	if err := json.Unmarshal(data, &quest); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", quest.Name)
	fmt.Printf("Recipient: %s\n", quest.Recipient)
	fmt.Printf("Start Date: %s\n", quest.StartDate)
	if len(quest.HubLayout) > 0 {
		fmt.Printf("Hub: %d x %d\n", len(quest.HubLayout[0]), len(quest.HubLayout))
	}

	// Doors painted in the hub vs. levels that exist
	hubDoors := map[int]AnalysisPoint{}
	var hubStart AnalysisPoint
	foundStart := false
	for y, row := range quest.HubLayout {
		for x, cell := range row {
			switch {
			case cell >= '1' && cell <= '9':
				hubDoors[int(cell-'0')] = AnalysisPoint{x, y}
			case cell == 'S' && !foundStart:
				hubStart = AnalysisPoint{x, y}
				foundStart = true
			}
		}
	}
	fmt.Printf("Hub Start: (%d, %d)\n", hubStart.X, hubStart.Y)
	fmt.Printf("Hub Doors: %d, Levels: %d\n", len(hubDoors), len(quest.Levels))

	levelIDs := map[int]bool{}
	fmt.Println("\nDoor calendar:")
	for _, level := range quest.Levels {
		levelIDs[level.ID] = true
		marker := " "
		if _, ok := hubDoors[level.ID]; !ok {
			marker = "!"
		}
		fmt.Printf("  %s door %d  %s  %-24s answers=%d\n",
			marker, level.ID, level.UnlockDate, level.Title, len(level.Answers))
	}

	var orphans []int
	for id := range hubDoors {
		if !levelIDs[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Ints(orphans)
	if len(orphans) > 0 {
		fmt.Printf("\nWARNING: hub doors with no level: %v\n", orphans)
	}

	// Per-room chest reachability from the start tile
	fmt.Println("\nRooms:")
	for _, level := range quest.Levels {
		w := 0
		if len(level.MapLayout) > 0 {
			w = len(level.MapLayout[0])
		}
		chest, hasChest := findTile(level.MapLayout, 'C')
		start, hasStart := findTile(level.MapLayout, 'S')
		if !hasStart {
			start = AnalysisPoint{1, 1}
		}

		status := "ok"
		switch {
		case !hasChest:
			status = "NO CHEST"
		case !reachable(level.MapLayout, start, chest):
			status = "CHEST UNREACHABLE"
		}
		fmt.Printf("  room %d  %2dx%-2d  start (%d,%d)  chest (%d,%d)  %s\n",
			level.ID, w, len(level.MapLayout), start.X, start.Y, chest.X, chest.Y, status)
	}
}

func findTile(layout []string, want byte) (AnalysisPoint, bool) {
	for y, row := range layout {
		if x := strings.IndexByte(row, want); x >= 0 {
			return AnalysisPoint{x, y}, true
		}
	}
	return AnalysisPoint{}, false
}

// reachable runs a flood fill over non-wall tiles from start and
// reports whether goal was visited.
func reachable(layout []string, start, goal AnalysisPoint) bool {
	passable := func(x, y int) bool {
		if y < 0 || y >= len(layout) || x < 0 || x >= len(layout[y]) {
			return false
		}
		return layout[y][x] != 'W'
	}
	if !passable(start.X, start.Y) {
		return false
	}

	visited := map[AnalysisPoint]bool{}
	queue := []AnalysisPoint{start}
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
		for _, d := range []AnalysisPoint{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			n := AnalysisPoint{p.X + d.X, p.Y + d.Y}
			if !visited[n] && passable(n.X, n.Y) {
				queue = append(queue, n)
			}
		}
	}
	return false
}
