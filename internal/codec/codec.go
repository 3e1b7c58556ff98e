// Package codec defines the JSON wire protocol and converts engine state into
// the DTOs clients consume.
package codec

import (
	"encoding/json"
	"time"

	"speedwurdz/wurdz"
)

// Server event names.
const (
	EventError             = "error"
	EventLobbyJoined       = "lobby-joined"
	EventUserJoined        = "user-joined"
	EventUserLeft          = "user-left"
	EventTableCreated      = "table-created"
	EventTableUpdated      = "table-updated"
	EventTableDeleted      = "table-deleted"
	EventTableJoined       = "table-joined"
	EventPlayerJoined      = "player-joined"
	EventPlayerLeft        = "player-left"
	EventEnterGame         = "enter-game"
	EventCountdownStarted  = "countdown-started"
	EventCountdownUpdate   = "countdown-update"
	EventGameStarted       = "game-started"
	EventGameStateUpdated  = "game-state-updated"
	EventBoardUpdated      = "board-updated"
	EventTilePlaced        = "tile-placed-on-my-board"
	EventTileMoved         = "tile-moved-on-board"
	EventTileExchanged     = "tile-exchange-complete"
	EventSubmitSuccess     = "board-submitted-success"
	EventSubmitFailed      = "board-submission-failed"
	EventGameOver          = "game-over"
	EventReturnToLobby     = "return-to-lobby"
)

// Client event names.
const (
	ClientJoinLobby        = "join-lobby"
	ClientCreateTable      = "create-table"
	ClientJoinTable        = "join-table"
	ClientLeaveTable       = "leave-table"
	ClientStartGame        = "start-game"
	ClientStartGameplay    = "start-gameplay"
	ClientGameAction       = "game-action"
	ClientResignGame       = "resign-game"
	ClientRequestGameState = "request-game-state"
)

// ServerEnvelope is the frame every server-to-client message rides in.
type ServerEnvelope struct {
	Event      string          `json:"event"`
	TableID    string          `json:"tableId,omitempty"`
	ServerSeq  uint64          `json:"serverSeq"`
	ServerTsMs int64           `json:"serverTsMs"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Encode wraps a payload in a ServerEnvelope and marshals the whole frame.
func Encode(event, tableID string, serverSeq uint64, payload any) ([]byte, error) {
	env := ServerEnvelope{
		Event:      event,
		TableID:    tableID,
		ServerSeq:  serverSeq,
		ServerTsMs: time.Now().UnixMilli(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// ClientEnvelope is the frame every client-to-server message rides in.
type ClientEnvelope struct {
	Event   string          `json:"event"`
	TableID string          `json:"tableId,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// JoinLobbyRequest carries the display name for lobby registration.
type JoinLobbyRequest struct {
	Username string `json:"username"`
}

type CreateTableRequest struct {
	Name          string `json:"name"`
	MaxPlayers    int    `json:"maxPlayers"`
	StartingTiles int    `json:"startingTiles"`
}

// PlacementDTO is one tile of a submitted board layout.
type PlacementDTO struct {
	TileID int    `json:"id"`
	Letter string `json:"letter"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// GameActionRequest carries every gameplay action; which fields matter
// depends on Action.
type GameActionRequest struct {
	Action    string         `json:"action"`
	TileID    int            `json:"tileId,omitempty"`
	X         int            `json:"x,omitempty"`
	Y         int            `json:"y,omitempty"`
	FromX     int            `json:"fromX,omitempty"`
	FromY     int            `json:"fromY,omitempty"`
	ToX       int            `json:"toX,omitempty"`
	ToY       int            `json:"toY,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Amount    int            `json:"amount,omitempty"`
	BoardData []PlacementDTO `json:"boardData,omitempty"`
}

// Placements converts the submitted board data to engine placements.
func (r *GameActionRequest) Placements() []wurdz.Placement {
	out := make([]wurdz.Placement, 0, len(r.BoardData))
	for _, p := range r.BoardData {
		pl := wurdz.Placement{TileID: p.TileID, Row: p.Row, Col: p.Col}
		if p.Letter != "" {
			pl.Letter = p.Letter[0]
			if pl.Letter >= 'a' && pl.Letter <= 'z' {
				pl.Letter -= 'a' - 'A'
			}
		}
		out = append(out, pl)
	}
	return out
}

type PositionDTO struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type TileDTO struct {
	ID       int          `json:"id"`
	Letter   string       `json:"letter"`
	State    string       `json:"state"`
	Owner    string       `json:"playerId,omitempty"`
	Position *PositionDTO `json:"position,omitempty"`
}

type HandTileDTO struct {
	ID     int    `json:"id"`
	Letter string `json:"letter"`
}

type GamePlayerDTO struct {
	Username         string        `json:"username"`
	Resigned         bool          `json:"resigned"`
	Hand             []HandTileDTO `json:"hand"`
	ValidSubmissions int           `json:"validSubmissions"`
	TilesTrashCount  int           `json:"tilesTrashCount"`
	ViewPosition     PositionDTO   `json:"viewPosition"`
}

// GameStateDTO is the full game state broadcast after every mutation.
type GameStateDTO struct {
	TableID        string          `json:"tableId"`
	Status         string          `json:"status"`
	CountdownTimer int             `json:"countdownTimer,omitempty"`
	Winner         string          `json:"winner,omitempty"`
	TilesInPool    int             `json:"tilesInPool"`
	AllTiles       []TileDTO       `json:"allTiles"`
	Players        []GamePlayerDTO `json:"players"`
}

// GameStateFromSnapshot projects an engine snapshot onto the wire shape.
func GameStateFromSnapshot(snap wurdz.Snapshot) GameStateDTO {
	dto := GameStateDTO{
		TableID:        snap.TableID,
		Status:         snap.Status.String(),
		CountdownTimer: snap.CountdownTimer,
		Winner:         snap.Winner,
		TilesInPool:    snap.TilesInPool,
		AllTiles:       make([]TileDTO, 0, len(snap.Tiles)),
		Players:        make([]GamePlayerDTO, 0, len(snap.Players)),
	}

	for _, t := range snap.Tiles {
		td := TileDTO{
			ID:     t.ID,
			Letter: string(t.Letter),
			State:  string(t.State),
			Owner:  t.Owner,
		}
		if t.Position != nil {
			td.Position = &PositionDTO{X: t.Position.X, Y: t.Position.Y}
		}
		dto.AllTiles = append(dto.AllTiles, td)
	}

	for _, p := range snap.Players {
		pd := GamePlayerDTO{
			Username:         p.Username,
			Resigned:         p.Resigned,
			Hand:             handToDTO(p.Hand),
			ValidSubmissions: p.ValidSubmissions,
			TilesTrashCount:  p.TilesTrashCount,
			ViewPosition:     PositionDTO{X: p.View.X, Y: p.View.Y},
		}
		dto.Players = append(dto.Players, pd)
	}

	return dto
}

func handToDTO(hand []wurdz.HandTile) []HandTileDTO {
	out := make([]HandTileDTO, 0, len(hand))
	for _, h := range hand {
		out = append(out, HandTileDTO{ID: h.ID, Letter: string(h.Letter)})
	}
	return out
}

type BoardViewDTO struct {
	ViewPosition PositionDTO `json:"viewPosition"`
}

type TilePlacedDTO struct {
	TileID int `json:"tileId"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

type TileMovedDTO struct {
	TileID int `json:"tileId"`
	FromX  int `json:"fromX"`
	FromY  int `json:"fromY"`
	ToX    int `json:"toX"`
	ToY    int `json:"toY"`
}

type TileExchangeDTO struct {
	TrashedTile    HandTileDTO   `json:"trashedTile"`
	NewTiles       []HandTileDTO `json:"newTiles"`
	NewHandSize    int           `json:"newHandSize"`
	TilesRemaining int           `json:"tilesRemaining"`
}

// ExchangeToDTO converts a trash-tile result for the acting player.
func ExchangeToDTO(res *wurdz.ExchangeResult) TileExchangeDTO {
	dto := TileExchangeDTO{
		TrashedTile:    HandTileDTO{ID: res.Trashed.ID, Letter: string(res.Trashed.Letter)},
		NewTiles:       make([]HandTileDTO, 0, len(res.Drawn)),
		NewHandSize:    res.HandSize,
		TilesRemaining: res.PoolRemaining,
	}
	for _, h := range res.Drawn {
		dto.NewTiles = append(dto.NewTiles, HandTileDTO{ID: h.ID, Letter: string(h.Letter)})
	}
	return dto
}

type CoordDTO struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type WordDTO struct {
	Word      string     `json:"word"`
	Direction string     `json:"direction"`
	Positions []CoordDTO `json:"positions"`
}

func WordsToDTO(words []wurdz.Word) []WordDTO {
	out := make([]WordDTO, 0, len(words))
	for _, w := range words {
		wd := WordDTO{Word: w.Word, Direction: string(w.Direction)}
		for _, c := range w.Positions {
			wd.Positions = append(wd.Positions, CoordDTO{Row: c.Row, Col: c.Col})
		}
		out = append(out, wd)
	}
	return out
}

type SubmitSuccessDTO struct {
	SubmitterID    string `json:"submitterId"`
	TilesSubmitted int    `json:"tilesSubmitted"`
	Message        string `json:"message"`
}

type SubmitFailedDTO struct {
	Reason       string    `json:"reason"`
	InvalidTiles []int     `json:"invalidTiles"`
	InvalidWords []WordDTO `json:"invalidWords,omitempty"`
}

type WordScoreDTO struct {
	Word        string `json:"word"`
	Length      int    `json:"length"`
	TileScore   int    `json:"tileScore"`
	LengthBonus int    `json:"lengthBonus"`
	TotalScore  int    `json:"totalScore"`
}

type ScoreBreakdownDTO struct {
	TileScore      int            `json:"tileScore"`
	LengthBonus    int            `json:"lengthBonus"`
	ValidWordCount int            `json:"validWordCount"`
	WordScores     []WordScoreDTO `json:"wordScores"`
}

type PlayerStatsDTO struct {
	Username         string            `json:"username"`
	IsWinner         bool              `json:"isWinner"`
	TilesOnBoard     int               `json:"tilesOnBoard"`
	TilesInHand      int               `json:"tilesInHand"`
	TilesTrashCount  int               `json:"tilesTrashCount"`
	ValidSubmissions int               `json:"validSubmissions"`
	Score            int               `json:"score"`
	ScoreBreakdown   ScoreBreakdownDTO `json:"scoreBreakdown"`
}

type GameOverDTO struct {
	Winner      string           `json:"winner"`
	PlayerStats []PlayerStatsDTO `json:"playerStats"`
	Message     string           `json:"message"`
}

// StatsToDTO converts the end-of-game summary rows.
func StatsToDTO(stats []wurdz.PlayerStats) []PlayerStatsDTO {
	out := make([]PlayerStatsDTO, 0, len(stats))
	for _, st := range stats {
		dto := PlayerStatsDTO{
			Username:         st.Username,
			IsWinner:         st.IsWinner,
			TilesOnBoard:     st.TilesOnBoard,
			TilesInHand:      st.TilesInHand,
			TilesTrashCount:  st.TilesTrashCount,
			ValidSubmissions: st.ValidSubmissions,
			Score:            st.Score,
			ScoreBreakdown: ScoreBreakdownDTO{
				TileScore:      st.Breakdown.TileScore,
				LengthBonus:    st.Breakdown.LengthBonus,
				ValidWordCount: st.Breakdown.ValidWordCount,
			},
		}
		for _, ws := range st.Breakdown.WordScores {
			dto.ScoreBreakdown.WordScores = append(dto.ScoreBreakdown.WordScores, WordScoreDTO{
				Word:        ws.Word,
				Length:      ws.Length,
				TileScore:   ws.TileScore,
				LengthBonus: ws.LengthBonus,
				TotalScore:  ws.TotalScore,
			})
		}
		out = append(out, dto)
	}
	return out
}

type ReturnToLobbyDTO struct {
	Reason string `json:"reason"`
}

// ParseDirection maps a wire direction tag, "" if unknown.
func ParseDirection(s string) wurdz.Direction {
	switch wurdz.Direction(s) {
	case wurdz.DirectionUp, wurdz.DirectionDown, wurdz.DirectionLeft, wurdz.DirectionRight:
		return wurdz.Direction(s)
	}
	return ""
}
