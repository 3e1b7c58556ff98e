package wurdz

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"speedwurdz/tile"
)

// Dictionary answers spell checks during submission and scoring.
type Dictionary interface {
	IsValidWord(word string) bool
}

// Session is the state machine for one game of SpeedWurdz. All exported
// methods are safe for concurrent use; the table actor is the usual caller.
type Session struct {
	cfg  Config
	rng  *rand.Rand
	dict Dictionary

	mu sync.Mutex

	tableID string

	players map[string]*Player
	order   []string // join order, used for deterministic dealing

	tiles map[int]*tile.Tile // every tile ever generated, keyed by id

	status    Status
	countdown int
	startTime time.Time
	endTime   time.Time
	winner    string
}

// HandTile is the (id, letter) pair clients track for tiles in a hand.
type HandTile struct {
	ID     int
	Letter byte
}

// ExchangeResult reports a completed trash-tile exchange.
type ExchangeResult struct {
	Trashed       HandTile
	Drawn         []HandTile
	HandSize      int
	PoolRemaining int
}

// SubmitResult reports the outcome of a board submission.
type SubmitResult struct {
	Valid          bool
	Won            bool
	TilesSubmitted int
	Reason         string // set on invalid submissions
	InvalidWords   []Word
}

const reasonNotConnected = "All tiles must be connected to each other"

func NewSession(tableID string, usernames []string, cfg Config, dict Dictionary) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if dict == nil {
		return nil, fmt.Errorf("dictionary is required")
	}
	if len(usernames) == 0 {
		return nil, fmt.Errorf("at least one player is required")
	}
	if len(usernames) > cfg.MaxPlayers {
		return nil, fmt.Errorf("too many players: %d > %d", len(usernames), cfg.MaxPlayers)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(seed)),
		dict:    dict,
		tableID: tableID,
		players: make(map[string]*Player, len(usernames)),
		tiles:   make(map[int]*tile.Tile, cfg.StartingTiles),
		status:  StatusWaitingToStart,
	}

	for _, name := range usernames {
		if s.players[name] != nil {
			return nil, fmt.Errorf("duplicate player %q", name)
		}
		s.players[name] = &Player{username: name}
		s.order = append(s.order, name)
	}

	for _, t := range tile.GeneratePool(cfg.StartingTiles, s.rng) {
		s.tiles[t.ID] = t
	}

	return s, nil
}

func (s *Session) TableID() string { return s.tableID }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Winner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.winner
}

func (s *Session) StartTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startTime
}

func (s *Session) EndTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endTime
}

// PoolCount returns how many tiles remain drawable.
func (s *Session) PoolCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.poolIDs())
}

// StartCountdown arms the pre-game timer. The caller ticks it once per second
// with TickCountdown.
func (s *Session) StartCountdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaitingToStart {
		return ErrGameNotWaiting
	}
	s.status = StatusCountdown
	s.countdown = s.cfg.CountdownSeconds
	return nil
}

// TickCountdown decrements the pre-game timer by one second. started reports
// that this tick began play; active is false once the session is no longer
// counting down, which tells the caller to stop its ticker.
func (s *Session) TickCountdown() (remaining int, started, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusCountdown {
		return 0, false, false
	}
	s.countdown--
	if s.countdown > 0 {
		return s.countdown, false, true
	}

	s.startPlay()
	return 0, true, false
}

// startPlay deals opening hands and moves the session to playing.
// Caller holds s.mu.
func (s *Session) startPlay() {
	s.status = StatusPlaying
	s.countdown = 0
	s.startTime = time.Now()

	for _, name := range s.order {
		p := s.players[name]
		for i := 0; i < s.cfg.TilesPerHand; i++ {
			t := s.drawPoolTile()
			if t == nil {
				return
			}
			t.State = tile.StateHand
			t.Owner = name
			p.addToHand(t.ID)
		}
	}
}

// PlaceTile moves a tile from the player's hand onto their private board at
// (x, y). Cell occupancy is not checked; clients stack tiles at their own risk.
func (s *Session) PlaceTile(username string, tileID, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(username)
	if err != nil {
		return err
	}

	t := s.tiles[tileID]
	if t == nil || t.State != tile.StateHand || t.Owner != username || !p.holdsTile(tileID) {
		return ErrTileNotInHand
	}

	p.removeFromHand(tileID)
	t.State = tile.StateBoard
	t.Position = &tile.Position{X: x, Y: y}
	return nil
}

// ReturnTileToHand moves one of the player's board tiles back into their hand.
func (s *Session) ReturnTileToHand(username string, tileID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(username)
	if err != nil {
		return err
	}

	t := s.tiles[tileID]
	if t == nil || t.State != tile.StateBoard || t.Owner != username {
		return ErrTileNotOnBoard
	}

	t.State = tile.StateHand
	t.Position = nil
	p.addToHand(tileID)
	return nil
}

// MoveTileOnBoard relocates a board tile. The reported source position must
// match the tile's actual position, which catches stale client state.
func (s *Session) MoveTileOnBoard(username string, tileID, fromX, fromY, toX, toY int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activePlayer(username); err != nil {
		return err
	}

	t := s.tiles[tileID]
	if t == nil || t.State != tile.StateBoard || t.Owner != username || t.Position == nil {
		return ErrTileNotOnBoard
	}
	if t.Position.X != fromX || t.Position.Y != fromY {
		return ErrPositionMismatch
	}

	t.Position = &tile.Position{X: toX, Y: toY}
	return nil
}

// MoveBoard scrolls the player's board view and returns the clamped offset.
// Each step moves two cells; the view never leaves the +-40 window.
func (s *Session) MoveBoard(username string, dir Direction, amount int) (tile.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(username)
	if err != nil {
		return tile.Position{}, err
	}

	if amount <= 0 {
		amount = 1
	}
	step := viewScrollStep * amount

	view := p.view
	switch dir {
	case DirectionUp:
		view.Y = max(view.Y-step, -viewScrollLimit)
	case DirectionDown:
		view.Y = min(view.Y+step, viewScrollLimit)
	case DirectionLeft:
		view.X = max(view.X-step, -viewScrollLimit)
	case DirectionRight:
		view.X = min(view.X+step, viewScrollLimit)
	default:
		return tile.Position{}, ErrUnknownDirection
	}

	p.view = view
	return view, nil
}

// TrashTile returns one hand tile to the pool in exchange for three fresh
// draws. The pool must hold at least three tiles.
func (s *Session) TrashTile(username string, tileID int) (*ExchangeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(username)
	if err != nil {
		return nil, err
	}

	t := s.tiles[tileID]
	if t == nil || t.State != tile.StateHand || t.Owner != username || !p.holdsTile(tileID) {
		return nil, ErrTileNotInHand
	}
	if len(s.poolIDs()) < trashExchangeDraw {
		return nil, ErrPoolExhausted
	}

	p.removeFromHand(tileID)
	t.State = tile.StatePool
	t.Owner = ""
	t.Position = nil

	res := &ExchangeResult{Trashed: HandTile{ID: t.ID, Letter: t.Letter}}
	for i := 0; i < trashExchangeDraw; i++ {
		drawn := s.drawPoolTile()
		if drawn == nil {
			break
		}
		drawn.State = tile.StateHand
		drawn.Owner = username
		p.addToHand(drawn.ID)
		res.Drawn = append(res.Drawn, HandTile{ID: drawn.ID, Letter: drawn.Letter})
	}

	p.tilesTrashCount++
	res.HandSize = p.HandSize()
	res.PoolRemaining = len(s.poolIDs())
	return res, nil
}

// SubmitBoard validates a player's full board layout. A valid submission
// records the layout for scoring and deals one tile to every unresigned
// player; the submitter wins instead if their hand and the pool are both
// empty. An invalid submission mutates nothing.
func (s *Session) SubmitBoard(username string, board []Placement) (*SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.activePlayer(username)
	if err != nil {
		return nil, err
	}
	if len(board) == 0 {
		return nil, ErrEmptySubmission
	}

	res := &SubmitResult{TilesSubmitted: len(board)}

	if !CheckConnected(board) {
		res.Reason = reasonNotConnected
		return res, nil
	}

	var invalid []Word
	for _, w := range ExtractWords(board) {
		if !s.dict.IsValidWord(w.Word) {
			invalid = append(invalid, w)
		}
	}
	if len(invalid) > 0 {
		res.InvalidWords = invalid
		names := make([]string, len(invalid))
		for i, w := range invalid {
			names[i] = strings.ToUpper(w.Word)
		}
		res.Reason = "Invalid words found: " + strings.Join(names, ", ")
		return res, nil
	}

	res.Valid = true
	p.validSubmissions++
	p.lastValidBoard = append([]Placement(nil), board...)

	// Win check comes before the peel deal: an empty hand against an empty
	// pool ends the game on this submission.
	if p.HandSize() == 0 && len(s.poolIDs()) == 0 {
		s.finish(username)
		res.Won = true
		return res, nil
	}

	s.dealOneToAll()
	return res, nil
}

// Resign ends the game for everyone. No winner is declared.
func (s *Session) Resign(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.players[username]
	if p == nil {
		return ErrNotInGame
	}
	p.resigned = true
	if s.status != StatusFinished {
		s.finish("")
	}
	return nil
}

// finish ends the session. Caller holds s.mu.
func (s *Session) finish(winner string) {
	s.status = StatusFinished
	s.winner = winner
	s.endTime = time.Now()
}

// PlayerStats is one row of the end-of-game summary.
type PlayerStats struct {
	Username         string
	IsWinner         bool
	TilesOnBoard     int
	TilesInHand      int
	TilesTrashCount  int
	ValidSubmissions int
	Score            int
	Breakdown        ScoreResult
}

// FinalStats scores every player from their last valid board and returns the
// end-of-game summary in join order.
func (s *Session) FinalStats() []PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make([]PlayerStats, 0, len(s.order))
	for _, name := range s.order {
		p := s.players[name]

		onBoard := 0
		for id := 1; id <= len(s.tiles); id++ {
			t := s.tiles[id]
			if t != nil && t.State == tile.StateBoard && t.Owner == name {
				onBoard++
			}
		}

		breakdown := ScoreBoard(p.lastValidBoard, s.dict)
		stats = append(stats, PlayerStats{
			Username:         name,
			IsWinner:         name == s.winner && s.winner != "",
			TilesOnBoard:     onBoard,
			TilesInHand:      p.HandSize(),
			TilesTrashCount:  p.tilesTrashCount,
			ValidSubmissions: p.validSubmissions,
			Score:            breakdown.TotalScore,
			Breakdown:        breakdown,
		})
	}
	return stats
}

// activePlayer resolves a username to an unresigned player during play.
// Caller holds s.mu.
func (s *Session) activePlayer(username string) (*Player, error) {
	if s.status != StatusPlaying {
		return nil, ErrGameNotPlaying
	}
	p := s.players[username]
	if p == nil || p.resigned {
		return nil, ErrNotInGame
	}
	return p, nil
}

// poolIDs lists drawable tile ids in ascending order, keeping draws
// deterministic for a given seed. Caller holds s.mu.
func (s *Session) poolIDs() []int {
	ids := make([]int, 0, len(s.tiles))
	for id := 1; id <= len(s.tiles); id++ {
		if t := s.tiles[id]; t != nil && t.State == tile.StatePool {
			ids = append(ids, id)
		}
	}
	return ids
}

// drawPoolTile removes and returns a uniformly random pool tile, nil when the
// pool is empty. Caller holds s.mu and sets the new state.
func (s *Session) drawPoolTile() *tile.Tile {
	ids := s.poolIDs()
	if len(ids) == 0 {
		return nil
	}
	return s.tiles[ids[s.rng.Intn(len(ids))]]
}

// dealOneToAll gives each unresigned player one tile, pool permitting.
// Caller holds s.mu.
func (s *Session) dealOneToAll() {
	for _, name := range s.order {
		p := s.players[name]
		if p.resigned {
			continue
		}
		t := s.drawPoolTile()
		if t == nil {
			return
		}
		t.State = tile.StateHand
		t.Owner = name
		p.addToHand(t.ID)
	}
}
