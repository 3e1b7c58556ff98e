package wurdz

import (
	"time"

	"speedwurdz/tile"
)

type TileSnapshot struct {
	ID       int
	Letter   byte
	State    tile.State
	Owner    string
	Position *tile.Position
}

type PlayerSnapshot struct {
	Username         string
	Resigned         bool
	Hand             []HandTile
	ValidSubmissions int
	TilesTrashCount  int
	View             tile.Position
}

type Snapshot struct {
	TableID        string
	Status         Status
	CountdownTimer int
	Winner         string
	StartTime      time.Time
	EndTime        time.Time
	TilesInPool    int
	Tiles          []TileSnapshot
	Players        []PlayerSnapshot
}

// Snapshot copies the full session state for broadcasting. Tiles come back in
// id order, players in join order.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		TableID:        s.tableID,
		Status:         s.status,
		CountdownTimer: s.countdown,
		Winner:         s.winner,
		StartTime:      s.startTime,
		EndTime:        s.endTime,
	}

	for id := 1; id <= len(s.tiles); id++ {
		t := s.tiles[id]
		if t == nil {
			continue
		}
		ts := TileSnapshot{
			ID:     t.ID,
			Letter: t.Letter,
			State:  t.State,
			Owner:  t.Owner,
		}
		if t.Position != nil {
			pos := *t.Position
			ts.Position = &pos
		}
		if t.State == tile.StatePool {
			snap.TilesInPool++
		}
		snap.Tiles = append(snap.Tiles, ts)
	}

	for _, name := range s.order {
		p := s.players[name]
		ps := PlayerSnapshot{
			Username:         p.username,
			Resigned:         p.resigned,
			ValidSubmissions: p.validSubmissions,
			TilesTrashCount:  p.tilesTrashCount,
			View:             p.view,
		}
		for _, id := range p.hand {
			if t := s.tiles[id]; t != nil {
				ps.Hand = append(ps.Hand, HandTile{ID: t.ID, Letter: t.Letter})
			}
		}
		snap.Players = append(snap.Players, ps)
	}

	return snap
}
