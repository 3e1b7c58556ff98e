package wurdz

import "speedwurdz/tile"

type Player struct {
	username string
	resigned bool

	hand []int // tile ids, draw order

	validSubmissions int
	tilesTrashCount  int
	lastValidBoard   []Placement

	view tile.Position
}

func (p *Player) Username() string      { return p.username }
func (p *Player) Resigned() bool        { return p.resigned }
func (p *Player) ValidSubmissions() int { return p.validSubmissions }
func (p *Player) TilesTrashCount() int  { return p.tilesTrashCount }
func (p *Player) View() tile.Position   { return p.view }

func (p *Player) HandSize() int { return len(p.hand) }

func (p *Player) Hand() []int {
	return append([]int(nil), p.hand...)
}

// LastValidBoard returns the most recent successfully validated layout,
// nil if the player never submitted a valid board.
func (p *Player) LastValidBoard() []Placement {
	return append([]Placement(nil), p.lastValidBoard...)
}

func (p *Player) addToHand(tileID int) {
	p.hand = append(p.hand, tileID)
}

// removeFromHand drops a tile id, false if it was not held.
func (p *Player) removeFromHand(tileID int) bool {
	for i, id := range p.hand {
		if id == tileID {
			p.hand = append(p.hand[:i], p.hand[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Player) holdsTile(tileID int) bool {
	for _, id := range p.hand {
		if id == tileID {
			return true
		}
	}
	return false
}
