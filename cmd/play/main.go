// Command play runs the Gift Quest game in the local terminal. It
// drives the engine directly without the HTTP server, which makes it
// the quickest way to walk a quest while authoring its config. The
// --date flag overrides the current day so locked doors can be
// previewed.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/dmelato/giftquest/game/catalog"
	"github.com/dmelato/giftquest/game/engine"
	"github.com/dmelato/giftquest/game/progress"
)

var (
	styleWall   = color.Style{color.FgGray}
	styleFloor  = color.Style{color.FgBlue}
	stylePlayer = color.Style{color.FgGreen, color.OpBold}
	styleDoor   = color.Style{color.FgYellow, color.OpBold}
	styleChest  = color.Style{color.FgMagenta, color.OpBold}
	styleSolved = color.Style{color.FgGreen}
	styleLocked = color.Style{color.FgRed}
	styleTitle  = color.Style{color.FgCyan, color.OpBold}
	styleSubtle = color.Style{color.FgGray, color.OpBold}
)

func main() {
	cmd := &cli.Command{
		Name:  "play",
		Usage: "Play a gift quest in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "quest-dir",
				Value: "configs",
				Usage: "directory containing quest configurations",
			},
			&cli.StringFlag{
				Name:  "quest",
				Usage: "quest name to play (default quest if empty)",
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "override the current date (YYYY-MM-DD), useful to preview locked doors",
			},
			&cli.StringFlag{
				Name:  "progress",
				Usage: "progress file path (in-memory when empty)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return play(cmd.String("quest-dir"), cmd.String("quest"),
				cmd.String("date"), cmd.String("progress"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func play(questDir, questName, date, progressPath string) error {
	quest, err := loadQuest(questDir, questName)
	if err != nil {
		return err
	}

	var store progress.Store
	if progressPath != "" {
		store = progress.NewFileStore(progressPath)
	} else {
		store = progress.NewMemoryStore()
	}

	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	eng, err := engine.New(quest, store, date)
	if err != nil {
		return fmt.Errorf("failed to start quest: %w", err)
	}

	for {
		render(eng.ViewState())

		switch eng.View() {
		case engine.ViewRiddle:
			if !riddleLoop(eng) {
				return nil
			}
		default:
			if !handleKey(eng) {
				return nil
			}
		}
	}
}

func loadQuest(questDir, questName string) (*engine.Quest, error) {
	if _, err := os.Stat(questDir); err == nil {
		manager, err := catalog.NewManager(questDir)
		if err != nil {
			return nil, err
		}
		if questName != "" {
			return manager.LoadQuest(questName)
		}
		return manager.GetDefault(), nil
	}

	if questName != "" {
		return nil, fmt.Errorf("quest directory %s does not exist", questDir)
	}
	quest := engine.DefaultQuest()
	if err := engine.ValidateQuest(quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// render clears the screen and draws the current view.
func render(state *engine.ViewState) {
	fmt.Print("\033[2J\033[H")

	styleTitle.Printf("Gift Quest")
	styleSubtle.Printf("  %s  solved %d/%d\n\n", state.Today, state.CompletedCount, state.TotalLevels)

	if !state.Started {
		styleLocked.Println(state.Message)
		styleSubtle.Println("\n(q to quit)")
		return
	}

	switch state.View {
	case engine.ViewGallery:
		styleTitle.Printf("Gallery (stage %d)\n\n", state.GalleryStage)
		stylePlayer.Println("  " + state.StageTitle)
		styleSubtle.Println("\n(esc/h back to hub, q quit)")
		return

	case engine.ViewRiddle:
		styleTitle.Println(state.LevelTitle)
		fmt.Println()
		fmt.Println("  " + state.RiddleText)
		fmt.Println()
		if state.Solved {
			styleSolved.Println("  Solved! " + state.RewardMessage)
			styleSubtle.Println("\n(press enter to return to the hub)")
		}
		return
	}

	if state.LevelTitle != "" {
		styleTitle.Println(state.LevelTitle)
		fmt.Println()
	}

	for y, row := range state.Layout {
		fmt.Print("  ")
		for x := 0; x < len(row); x++ {
			drawTile(state, x, y, row[x])
		}
		fmt.Println()
	}

	if state.Message != "" {
		fmt.Println()
		fmt.Println("  " + state.Message)
	}
	styleSubtle.Println("\n(arrows/wasd move, g gallery, r reset progress, q quit)")
}

func drawTile(state *engine.ViewState, x, y int, ch byte) {
	if x == state.Position.X && y == state.Position.Y {
		stylePlayer.Print("@")
		return
	}
	switch {
	case ch == 'W':
		styleWall.Print("▒")
	case ch == 'C':
		styleChest.Print("C")
	case ch >= '1' && ch <= '9':
		id := int(ch - '0')
		if status, ok := state.Doors[id]; ok {
			if status.Completed {
				styleSolved.Printf("%c", ch)
			} else if status.Locked {
				styleLocked.Printf("%c", ch)
			} else {
				styleDoor.Printf("%c", ch)
			}
		} else {
			styleWall.Printf("%c", ch)
		}
	default:
		styleFloor.Print("·")
	}
}

// handleKey reads one key in raw mode and applies it. Returns false to
// quit.
func handleKey(eng *engine.Engine) bool {
	switch readKey() {
	case "up":
		eng.AttemptMove(engine.Up)
	case "down":
		eng.AttemptMove(engine.Down)
	case "left":
		eng.AttemptMove(engine.Left)
	case "right":
		eng.AttemptMove(engine.Right)
	case "gallery":
		if eng.View() == engine.ViewGallery {
			eng.CloseGallery()
		} else {
			eng.OpenGallery()
		}
	case "hub":
		eng.ReturnToHub()
	case "reset":
		if err := eng.ResetProgress(); err != nil {
			log.Printf("Warning: failed to reset progress: %v", err)
		}
	case "quit":
		return false
	}
	return true
}

// riddleLoop prompts for answers until the riddle is solved or
// dismissed. Returns false to quit the game entirely.
func riddleLoop(eng *engine.Engine) bool {
	state := eng.ViewState()
	if state.Solved {
		// Reward already shown; any key returns to the hub.
		readLine("")
		eng.CloseRiddle()
		return true
	}

	answer := readLine("  Your answer (empty to back out): ")
	if strings.TrimSpace(answer) == "" {
		eng.CloseRiddle()
		return true
	}

	correct, err := eng.SubmitAnswer(answer)
	if err != nil {
		return true
	}
	if !correct {
		styleLocked.Println("  Not quite, try again.")
		time.Sleep(900 * time.Millisecond)
	}
	return true
}

// readKey reads a single keypress in raw mode and maps it to an
// action. Arrow escape sequences and WASD both work.
func readKey() string {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		log.Fatalf("Cannot set terminal to raw mode: %v", err)
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	if _, err := os.Stdin.Read(buf); err != nil {
		return "quit"
	}

	switch buf[0] {
	case 0x1b:
		return readArrow()
	case 'w', 'k':
		return "up"
	case 's', 'j':
		return "down"
	case 'a':
		return "left"
	case 'd', 'l':
		return "right"
	case 'g':
		return "gallery"
	case 'h':
		return "hub"
	case 'r':
		return "reset"
	case 'q', 3: // q or Ctrl+C
		return "quit"
	}
	return ""
}

// readArrow consumes the rest of an ESC sequence. A bare ESC maps to
// "hub", mirroring the close button of the views.
func readArrow() string {
	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil {
		return ""
	}
	if b[0] != '[' && b[0] != 'O' {
		return "hub"
	}
	if _, err := os.Stdin.Read(b); err != nil {
		return ""
	}
	switch b[0] {
	case 'A':
		return "up"
	case 'B':
		return "down"
	case 'C':
		return "right"
	case 'D':
		return "left"
	}
	return ""
}

func readLine(prompt string) string {
	if prompt != "" {
		fmt.Print(prompt)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}
