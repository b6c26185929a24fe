package engine

// TileKind classifies a single grid cell.
type TileKind string

const (
	Wall  TileKind = "wall"
	Floor TileKind = "floor"
	Start TileKind = "start"
	Chest TileKind = "chest"
	Door  TileKind = "door"
)

// Door ids are single digits in map layouts.
const (
	MinDoorID = 1
	MaxDoorID = 7
)

// Tile is one parsed grid cell. DoorID is set only for Door tiles.
type Tile struct {
	Kind   TileKind `json:"kind"`
	DoorID int      `json:"door_id,omitempty"`
}

// Position represents zero-based (column, row) coordinates.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is an abstract movement intent, independent of the input
// device that produced it.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// Directions lists the four cardinal directions for iteration.
func Directions() []Direction {
	return []Direction{Up, Down, Left, Right}
}

// IsValid reports whether d is one of the four cardinal directions.
func (d Direction) IsValid() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// Delta returns the unit vector for this direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// View is the engine's externally observable mode.
type View string

const (
	ViewHub     View = "hub"
	ViewRoom    View = "room"
	ViewRiddle  View = "riddle"
	ViewGallery View = "gallery"
)

// OutcomeKind enumerates the discrete results of one movement attempt.
type OutcomeKind string

const (
	Moved       OutcomeKind = "moved"
	Blocked     OutcomeKind = "blocked"
	DoorLocked  OutcomeKind = "door_locked"
	DoorEntered OutcomeKind = "door_entered"
	ChestFound  OutcomeKind = "chest_found"
)

// MoveOutcome is the result of one movement attempt. Position, Facing
// and View reflect the state after the attempt resolved.
type MoveOutcome struct {
	Kind     OutcomeKind `json:"kind"`
	LevelID  int         `json:"level_id,omitempty"`
	Message  string      `json:"message,omitempty"`
	Position Position    `json:"position"`
	Facing   Direction   `json:"facing"`
	View     View        `json:"view"`
}

// DoorStatus describes one hub door for rendering purposes.
type DoorStatus struct {
	Locked    bool `json:"locked"`
	Completed bool `json:"completed"`
}

// ViewState is a render-ready snapshot of the engine. Transports and
// renderers consume this surface only; they never reach into the
// engine's internals.
type ViewState struct {
	View          View      `json:"view"`
	ActiveLevelID int       `json:"active_level_id,omitempty"`
	Layout        []string  `json:"layout,omitempty"`
	Position      Position  `json:"position"`
	Facing        Direction `json:"facing"`

	// Hub door annotations keyed by level id, present only in the hub.
	Doors map[int]DoorStatus `json:"doors,omitempty"`

	// Riddle fields, present only while the riddle view is open. The
	// reward message is revealed only once the level is solved.
	LevelTitle    string `json:"level_title,omitempty"`
	RiddleText    string `json:"riddle_text,omitempty"`
	Solved        bool   `json:"solved,omitempty"`
	RewardMessage string `json:"reward_message,omitempty"`

	CompletedCount int    `json:"completed_count"`
	TotalLevels    int    `json:"total_levels"`
	GalleryStage   int    `json:"gallery_stage"`
	StageTitle     string `json:"stage_title,omitempty"`

	Today   string `json:"today"`
	Started bool   `json:"started"`
	Message string `json:"message,omitempty"`
}
