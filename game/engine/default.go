package engine

// Room layouts for the built-in quest.
var (
	hubLayout = []string{
		"WWWWWWWWWWWWWWWWWWWWWWWWWWWWWWWW",
		"W..............................W",
		"W..1...2...3...4...5...6...7...W",
		"W..............................W",
		"WS.............................W",
		"WWWWWWWWWWWWWWWWWWWWWWWWWWWWWWWW",
	}
	smallRoom = []string{
		"WWWWWWW",
		"W..C..W",
		"W.....W",
		"W..W..W",
		"W.S...W",
		"WWWWWWW",
	}
	wardrobeRoom = []string{
		"WWWWWWWWW",
		"W.......W",
		"W.WW.WW.W",
		"W.C...S.W",
		"W.......W",
		"WWWWWWWWW",
	}
	studioRoom = []string{
		"WWWWWWWWWWWWW",
		"W...........W",
		"WS....W....CW",
		"W...........W",
		"WWWWWWWWWWWWW",
	}
	libraryRoom = []string{
		"WWWWWWWWWWW",
		"W....C....W",
		"W.W.....W.W",
		"W....S....W",
		"WWWWWWWWWWW",
	}
	gardenRoom = []string{
		"WWWWWWWWWWW",
		"W.C.......W",
		"W...WWW...W",
		"W...W.W...W",
		"W.......S.W",
		"WWWWWWWWWWW",
	}
	bedroomRoom = []string{
		"WWWWWWW",
		"W..C..W",
		"W.....W",
		"W.....W",
		"W..S..W",
		"WWWWWWW",
	}
	corridorRoom = []string{
		"WWWWWWWWWWWWW",
		"W...........W",
		"W.S.......C.W",
		"W...........W",
		"WWWWWWWWWWWWW",
	}
)

// DefaultQuest returns the built-in seven-door December quest. It is
// used when the config directory has no quests, and serves as a
// reference for authoring new ones.
func DefaultQuest() *Quest {
	return &Quest{
		Name:        "Advent Gift Quest",
		Description: "Seven doors, seven riddles, one gift behind each.",
		Recipient:   "Player",
		StartDate:   "2025-12-10",
		HubLayout:   hubLayout,
		GalleryStages: []string{
			"Cozy Beginnings",
			"Warm & Wrapped",
			"Well Read",
			"Morning Brew",
			"Candlelit",
			"Picture Perfect",
			"Green Thumb",
			"Quest Champion",
		},
		Messages: QuestMessages{
			Welcome:       "Welcome to the gift quest! Walk to a numbered door to begin.",
			DefaultLocked: "This door is still locked. Come back on its day!",
			TryAgain:      "Not quite. Think it over and try again!",
			NotStarted:    "The quest has not started yet. Hold tight!",
			QuestComplete: "Every door is open and every gift is found. Well done!",
		},
		Levels: []Level{
			{
				ID:            1,
				UnlockDate:    "2025-12-10",
				Title:         "Level 1: The Wardrobe",
				Riddle:        "I wrap around you to keep the winter out.",
				Answers:       []string{"scarf", "a scarf"},
				RewardMessage: "Check the coat rack by the door!",
				LockedMessage: "Patience! This door opens Dec 10.",
				MapLayout:     wardrobeRoom,
			},
			{
				ID:            2,
				UnlockDate:    "2025-12-11",
				Title:         "Level 2: The Library",
				Riddle:        "I have a spine but no bones, and hundreds of leaves but no branches.",
				Answers:       []string{"book", "a book"},
				RewardMessage: "On the middle shelf!",
				MapLayout:     libraryRoom,
			},
			{
				ID:            3,
				UnlockDate:    "2025-12-12",
				Title:         "Level 3: The Kitchen",
				Riddle:        "Fill me each morning; I hold the heat you crave.",
				Answers:       []string{"mug", "a mug", "cup"},
				RewardMessage: "Next to the kettle!",
				MapLayout:     smallRoom,
			},
			{
				ID:            4,
				UnlockDate:    "2025-12-13",
				Title:         "Level 4: The Bedroom",
				Riddle:        "I slowly disappear while giving my light away.",
				Answers:       []string{"candle", "a candle"},
				RewardMessage: "On the nightstand!",
				MapLayout:     bedroomRoom,
			},
			{
				ID:            5,
				UnlockDate:    "2025-12-14",
				Title:         "Level 5: The Studio",
				Riddle:        "I catch a moment and keep it flat forever.",
				Answers:       []string{"camera", "instax", "polaroid"},
				RewardMessage: "Inside the tote bag!",
				MapLayout:     studioRoom,
			},
			{
				ID:            6,
				UnlockDate:    "2025-12-15",
				Title:         "Level 6: The Garden",
				Riddle:        "I drink from my pot and reach for your window.",
				Answers:       []string{"plant", "a plant", "flower", "flowers"},
				RewardMessage: "On the windowsill!",
				MapLayout:     gardenRoom,
			},
			{
				ID:            7,
				UnlockDate:    "2025-12-16",
				Title:         "Level 7: The Finale",
				Riddle:        "Made of paper, carrying a heart.",
				Answers:       []string{"letter", "a letter", "note"},
				RewardMessage: "Under your pillow. Happy questing!",
				MapLayout:     corridorRoom,
			},
		},
	}
}
