// Package wurdz implements the authoritative SpeedWurdz game engine: the
// per-table session state machine, board analysis and scoring. It has no
// transport dependencies; the table actor drives it and broadcasts the results.
package wurdz

// Status 会话阶段
type Status byte

const (
	StatusWaitingToStart Status = iota
	StatusCountdown
	StatusPlaying
	StatusFinished
)

var StatusDictionary = map[Status]string{
	StatusWaitingToStart: "waiting-to-start",
	StatusCountdown:      "countdown",
	StatusPlaying:        "playing",
	StatusFinished:       "finished",
}

func (s Status) String() string { return StatusDictionary[s] }

// ActionType identifies a gameplay action arriving from a client.
type ActionType byte

const (
	ActionNone ActionType = iota
	ActionMoveBoard
	ActionPlaceTile
	ActionReturnTileToHand
	ActionMoveTileOnBoard
	ActionSubmitBoard
	ActionTrashTile
)

var ActionTypeDictionary = map[ActionType]string{
	ActionNone:             "none",
	ActionMoveBoard:        "move-board",
	ActionPlaceTile:        "place-tile",
	ActionReturnTileToHand: "return-tile-to-hand",
	ActionMoveTileOnBoard:  "move-tile-on-board",
	ActionSubmitBoard:      "submit-board",
	ActionTrashTile:        "trash-tile",
}

// ParseActionType maps a wire action tag to its ActionType, ActionNone if unknown.
func ParseActionType(tag string) ActionType {
	for a, name := range ActionTypeDictionary {
		if name == tag && a != ActionNone {
			return a
		}
	}
	return ActionNone
}

// Direction is a board-view scroll direction.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// WordDirection is the axis a word was read along.
type WordDirection string

const (
	Horizontal WordDirection = "horizontal"
	Vertical   WordDirection = "vertical"
)

// Coord is a board cell in (row, col) form, as used by submissions.
type Coord struct {
	Row int
	Col int
}

// Placement is one tile of a board submission batch.
type Placement struct {
	TileID int
	Letter byte
	Row    int
	Col    int
}

// Word is a run of length >= 2 extracted from a submission grid.
type Word struct {
	Word      string // lowercase
	Positions []Coord
	Direction WordDirection
}

const (
	tilesPerHand       = 10
	trashExchangeDraw  = 3
	viewScrollStep     = 2
	viewScrollLimit    = 40
	defaultCountdown   = 3
	MinStartingTiles   = 75
	startingTilesRatio = 25 // per seat, when no explicit pool size is configured
)
