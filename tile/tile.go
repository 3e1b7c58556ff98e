// Package tile holds the letter-tile domain: the Tile record shared by pool,
// hands and boards, plus the letter point values used for scoring.
package tile

import "fmt"

// State tracks where a tile currently lives.
type State string

const (
	StatePool  State = "pool"
	StateHand  State = "hand"
	StateBoard State = "board"
)

// Position is a cell on a player's private board grid.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Tile is one letter tile. A tile is created once during pool generation and
// never destroyed for the life of a game; only State/Owner/Position change.
//
// Invariants:
// - State is hand or board => Owner is set
// - State is board => Position is set
// - State is pool => Owner empty, Position nil
type Tile struct {
	ID       int
	Letter   byte // 'A'..'Z'
	State    State
	Owner    string // username while in a hand or on a board
	Position *Position
}

// Values are the per-letter point values (standard Scrabble distribution).
var Values = map[byte]int{
	'A': 1, 'B': 3, 'C': 3, 'D': 2, 'E': 1, 'F': 4, 'G': 2, 'H': 4, 'I': 1,
	'J': 8, 'K': 5, 'L': 1, 'M': 3, 'N': 1, 'O': 1, 'P': 3, 'Q': 10, 'R': 1,
	'S': 1, 'T': 1, 'U': 1, 'V': 4, 'W': 4, 'X': 8, 'Y': 4, 'Z': 10,
}

// Value returns the point value of a letter, 0 for anything outside A-Z.
func Value(letter byte) int {
	return Values[letter]
}
