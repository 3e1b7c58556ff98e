// Package table hosts one game table as an actor: a single goroutine owns the
// roster and the engine session, fed by an event channel and a one-second
// ticker for the pre-game countdown.
package table

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"speedwurdz/internal/codec"
	"speedwurdz/internal/ledger"
	"speedwurdz/wurdz"

	"github.com/google/uuid"
)

// Lobby-facing table status.
const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"
)

var ErrTableClosed = errors.New("table closed")

// Table finishes stay visible on the game-over screen briefly before the
// actor shuts down and the lobby forgets the table.
const finishedTableTTL = 30 * time.Second

// Config contains table settings chosen at creation.
type Config struct {
	Name          string
	MaxPlayers    int
	StartingTiles int
}

// Hooks are lobby callbacks fired on roster or lifecycle changes. They run on
// the actor goroutine and must not call back into the table.
type Hooks struct {
	OnTableUpdated func(s Summary)
	OnTableDeleted func(tableID string)
}

// Summary is the lobby listing row for a table.
type Summary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Host          string    `json:"host"`
	Players       []string  `json:"players"`
	MaxPlayers    int       `json:"maxPlayers"`
	StartingTiles int       `json:"startingTiles"`
	Status        string    `json:"status"`
	Created       time.Time `json:"created"`
}

// EventType enumerates actor messages.
type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventStartGame
	EventStartGameplay
	EventAction
	EventResign
	EventRequestState
	EventClose
)

// Event is a message to the table actor.
type Event struct {
	Type     EventType
	Username string
	Action   *codec.GameActionRequest
	Response chan error
}

// Table is a single game table with an actor model.
type Table struct {
	ID     string
	Config Config

	mu      sync.RWMutex
	host    string
	players []string
	status  string
	created time.Time
	closed  bool

	session *wurdz.Session
	dict    wurdz.Dictionary

	events   chan Event
	done     chan struct{}
	stopOnce sync.Once

	serverSeq uint64

	send   func(username string, data []byte)
	ledger ledger.Service
	hooks  Hooks
}

// New creates a table with the given host already seated and starts its actor.
func New(
	id string,
	cfg Config,
	host string,
	dict wurdz.Dictionary,
	send func(username string, data []byte),
	ledgerService ledger.Service,
	hooks Hooks,
) *Table {
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("%s's Game", host)
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 4
	}
	if cfg.StartingTiles <= 0 {
		cfg.StartingTiles = wurdz.DefaultStartingTiles(cfg.MaxPlayers)
	}

	t := &Table{
		ID:      id,
		Config:  cfg,
		host:    host,
		players: []string{host},
		status:  StatusWaiting,
		created: time.Now(),
		dict:    dict,
		events:  make(chan Event, 256),
		done:    make(chan struct{}),
		send:    send,
		ledger:  ledgerService,
		hooks:   hooks,
	}

	go t.run()

	log.Printf("[Table %s] Created %q (host=%s, max=%d, tiles=%d)",
		id, cfg.Name, host, cfg.MaxPlayers, cfg.StartingTiles)
	return t
}

// SubmitEvent queues an event for the actor.
func (t *Table) SubmitEvent(e Event) error {
	select {
	case t.events <- e:
		return nil
	case <-t.done:
		return ErrTableClosed
	}
}

// Do queues an event and waits for the handler's result.
func (t *Table) Do(e Event) error {
	e.Response = make(chan error, 1)
	if err := t.SubmitEvent(e); err != nil {
		return err
	}
	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		// The handler that closed the table still reports its result.
		select {
		case err := <-e.Response:
			return err
		case <-time.After(time.Second):
			return ErrTableClosed
		}
	}
}

// Summary snapshots the lobby listing row.
func (t *Table) Summary() Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.summaryLocked()
}

func (t *Table) summaryLocked() Summary {
	return Summary{
		ID:            t.ID,
		Name:          t.Config.Name,
		Host:          t.host,
		Players:       append([]string(nil), t.players...),
		MaxPlayers:    t.Config.MaxPlayers,
		StartingTiles: t.Config.StartingTiles,
		Status:        t.status,
		Created:       t.created,
	}
}

// HasPlayer reports whether a username is on the roster.
func (t *Table) HasPlayer(username string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, p := range t.players {
		if p == username {
			return true
		}
	}
	return false
}

// run is the actor loop.
func (t *Table) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case event := <-t.events:
			err := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			t.tick()
		case <-t.done:
			log.Printf("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}

	switch e.Type {
	case EventJoin:
		return t.handleJoin(e.Username)
	case EventLeave:
		return t.handleLeave(e.Username)
	case EventStartGame:
		return t.handleStartGame(e.Username)
	case EventStartGameplay:
		return t.handleStartGameplay(e.Username)
	case EventAction:
		return t.handleAction(e.Username, e.Action)
	case EventResign:
		return t.handleResign(e.Username)
	case EventRequestState:
		return t.handleRequestState(e.Username)
	case EventClose:
		t.closeLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

// tick drives the pre-game countdown while one is armed.
func (t *Table) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.session == nil || t.session.Status() != wurdz.StatusCountdown {
		return
	}

	remaining, started, active := t.session.TickCountdown()
	switch {
	case started:
		log.Printf("[Table %s] Game started, dealt opening hands", t.ID)
		t.broadcastState(codec.EventGameStarted)
		t.notifyUpdated()
	case active:
		t.broadcastJSON(codec.EventCountdownUpdate, map[string]int{"timer": remaining})
	}
}

func (t *Table) handleJoin(username string) error {
	if t.status != StatusWaiting {
		return fmt.Errorf("game has already started")
	}
	if len(t.players) >= t.Config.MaxPlayers {
		return fmt.Errorf("table is full")
	}
	for _, p := range t.players {
		if p == username {
			return fmt.Errorf("you are already in this table")
		}
	}

	t.players = append(t.players, username)
	log.Printf("[Table %s] %s joined (%d/%d)", t.ID, username, len(t.players), t.Config.MaxPlayers)

	t.sendJSON(username, codec.EventTableJoined, t.summaryLocked())
	t.broadcastJSON(codec.EventPlayerJoined, map[string]any{
		"username": username,
		"table":    t.summaryLocked(),
	})
	t.notifyUpdated()
	return nil
}

func (t *Table) handleLeave(username string) error {
	idx := -1
	for i, p := range t.players {
		if p == username {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	t.players = append(t.players[:idx], t.players[idx+1:]...)
	log.Printf("[Table %s] %s left", t.ID, username)

	if len(t.players) == 0 {
		t.closeLocked()
		return nil
	}

	if t.host == username {
		t.host = t.players[0]
		log.Printf("[Table %s] Host reassigned to %s", t.ID, t.host)
	}
	t.broadcastJSON(codec.EventPlayerLeft, map[string]any{
		"username": username,
		"table":    t.summaryLocked(),
	})
	t.notifyUpdated()
	return nil
}

func (t *Table) handleStartGame(username string) error {
	if t.host != username {
		return fmt.Errorf("only the host can start the game")
	}
	if t.status != StatusWaiting {
		return fmt.Errorf("game has already started")
	}
	if len(t.players) < 1 {
		return fmt.Errorf("need at least 1 player to start")
	}

	session, err := wurdz.NewSession(t.ID, t.players, wurdz.Config{
		MaxPlayers:    t.Config.MaxPlayers,
		StartingTiles: t.Config.StartingTiles,
	}, t.dict)
	if err != nil {
		return err
	}

	t.session = session
	t.status = StatusPlaying

	t.broadcastJSON(codec.EventEnterGame, map[string]any{
		"table":     t.summaryLocked(),
		"gameState": codec.GameStateFromSnapshot(session.Snapshot()),
	})
	t.notifyUpdated()
	log.Printf("[Table %s] Players entered game", t.ID)
	return nil
}

func (t *Table) handleStartGameplay(username string) error {
	if t.host != username {
		return fmt.Errorf("only the host can start the gameplay")
	}
	if t.session == nil {
		return fmt.Errorf("game not found")
	}
	if err := t.session.StartCountdown(); err != nil {
		return fmt.Errorf("game cannot be started right now")
	}

	t.broadcastState(codec.EventCountdownStarted)
	log.Printf("[Table %s] Countdown started", t.ID)
	return nil
}

func (t *Table) handleAction(username string, req *codec.GameActionRequest) error {
	if t.session == nil {
		return fmt.Errorf("game not found")
	}
	if req == nil {
		return fmt.Errorf("missing action data")
	}

	switch wurdz.ParseActionType(req.Action) {
	case wurdz.ActionMoveBoard:
		return t.doMoveBoard(username, req)
	case wurdz.ActionPlaceTile:
		return t.doPlaceTile(username, req)
	case wurdz.ActionReturnTileToHand:
		return t.doReturnTile(username, req)
	case wurdz.ActionMoveTileOnBoard:
		return t.doMoveTile(username, req)
	case wurdz.ActionSubmitBoard:
		return t.doSubmitBoard(username, req)
	case wurdz.ActionTrashTile:
		return t.doTrashTile(username, req)
	default:
		return fmt.Errorf("unknown game action")
	}
}

func (t *Table) doMoveBoard(username string, req *codec.GameActionRequest) error {
	dir := codec.ParseDirection(req.Direction)
	if dir == "" {
		return wurdz.ErrUnknownDirection
	}
	view, err := t.session.MoveBoard(username, dir, req.Amount)
	if err != nil {
		return err
	}
	// View position is private to the scrolling player.
	t.sendJSON(username, codec.EventBoardUpdated, codec.BoardViewDTO{
		ViewPosition: codec.PositionDTO{X: view.X, Y: view.Y},
	})
	return nil
}

func (t *Table) doPlaceTile(username string, req *codec.GameActionRequest) error {
	if err := t.session.PlaceTile(username, req.TileID, req.X, req.Y); err != nil {
		return err
	}
	t.sendJSON(username, codec.EventTilePlaced, codec.TilePlacedDTO{
		TileID: req.TileID, X: req.X, Y: req.Y,
	})
	t.broadcastState(codec.EventGameStateUpdated)
	return nil
}

func (t *Table) doReturnTile(username string, req *codec.GameActionRequest) error {
	if err := t.session.ReturnTileToHand(username, req.TileID); err != nil {
		return err
	}
	t.broadcastState(codec.EventGameStateUpdated)
	return nil
}

func (t *Table) doMoveTile(username string, req *codec.GameActionRequest) error {
	err := t.session.MoveTileOnBoard(username, req.TileID, req.FromX, req.FromY, req.ToX, req.ToY)
	if err != nil {
		return err
	}
	t.sendJSON(username, codec.EventTileMoved, codec.TileMovedDTO{
		TileID: req.TileID,
		FromX:  req.FromX, FromY: req.FromY,
		ToX: req.ToX, ToY: req.ToY,
	})
	t.broadcastState(codec.EventGameStateUpdated)
	return nil
}

func (t *Table) doTrashTile(username string, req *codec.GameActionRequest) error {
	res, err := t.session.TrashTile(username, req.TileID)
	if err != nil {
		return err
	}
	t.sendJSON(username, codec.EventTileExchanged, codec.ExchangeToDTO(res))
	t.broadcastState(codec.EventGameStateUpdated)
	return nil
}

func (t *Table) doSubmitBoard(username string, req *codec.GameActionRequest) error {
	res, err := t.session.SubmitBoard(username, req.Placements())
	if err != nil {
		return err
	}

	if !res.Valid {
		t.sendJSON(username, codec.EventSubmitFailed, codec.SubmitFailedDTO{
			Reason:       res.Reason,
			InvalidTiles: []int{},
			InvalidWords: codec.WordsToDTO(res.InvalidWords),
		})
		log.Printf("[Table %s] %s submission failed: %s", t.ID, username, res.Reason)
		return nil
	}

	if res.Won {
		t.finishGame(username)
		return nil
	}

	t.broadcastJSON(codec.EventSubmitSuccess, codec.SubmitSuccessDTO{
		SubmitterID:    username,
		TilesSubmitted: res.TilesSubmitted,
		Message:        "NEXT!!",
	})
	t.broadcastState(codec.EventGameStateUpdated)
	log.Printf("[Table %s] %s submitted %d tiles", t.ID, username, res.TilesSubmitted)
	return nil
}

func (t *Table) handleResign(username string) error {
	if t.session == nil {
		return fmt.Errorf("game not found")
	}
	if err := t.session.Resign(username); err != nil {
		return err
	}

	reason := fmt.Sprintf("%s resigned - game ended", username)
	log.Printf("[Table %s] %s", t.ID, reason)

	t.recordResult(reason)
	t.broadcastJSON(codec.EventReturnToLobby, codec.ReturnToLobbyDTO{Reason: reason})
	t.closeLocked()
	return nil
}

func (t *Table) handleRequestState(username string) error {
	if t.session == nil {
		return fmt.Errorf("game not found")
	}
	t.sendJSON(username, codec.EventGameStateUpdated, map[string]any{
		"gameState": codec.GameStateFromSnapshot(t.session.Snapshot()),
	})
	return nil
}

// finishGame handles a won game: broadcast stats, persist the result and keep
// the table around briefly for the game-over screen. Caller holds t.mu.
func (t *Table) finishGame(winner string) {
	t.status = StatusFinished
	stats := t.session.FinalStats()

	log.Printf("[Table %s] Game over, winner: %s", t.ID, winner)

	t.broadcastJSON(codec.EventGameOver, codec.GameOverDTO{
		Winner:      winner,
		PlayerStats: codec.StatsToDTO(stats),
		Message:     fmt.Sprintf("%s wins the game!", winner),
	})
	t.broadcastState(codec.EventGameStateUpdated)
	t.recordResult("completed")
	t.notifyUpdated()

	time.AfterFunc(finishedTableTTL, func() {
		_ = t.SubmitEvent(Event{Type: EventClose})
	})
}

// recordResult persists the game outcome. Caller holds t.mu.
func (t *Table) recordResult(reason string) {
	if t.ledger == nil || t.session == nil {
		return
	}

	stats := t.session.FinalStats()
	players := make([]ledger.PlayerResult, 0, len(stats))
	for _, st := range stats {
		players = append(players, ledger.PlayerResult{
			Username:         st.Username,
			IsWinner:         st.IsWinner,
			Score:            st.Score,
			ValidSubmissions: st.ValidSubmissions,
			TilesTrashed:     st.TilesTrashCount,
			TilesOnBoard:     st.TilesOnBoard,
			TilesInHand:      st.TilesInHand,
		})
	}

	started := t.session.StartTime()
	ended := t.session.EndTime()
	if ended.IsZero() {
		ended = time.Now()
	}
	rec := ledger.GameRecord{
		GameID:    uuid.NewString(),
		TableID:   t.ID,
		TableName: t.Config.Name,
		Winner:    t.session.Winner(),
		Reason:    reason,
		StartedAt: started,
		EndedAt:   ended,
		Players:   players,
	}
	if !started.IsZero() {
		rec.DurationSec = int64(ended.Sub(started).Seconds())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.ledger.RecordGame(ctx, rec); err != nil {
		log.Printf("[Table %s] Failed to record game result: %v", t.ID, err)
	}
}

// closeLocked stops the actor and tells the lobby to forget the table.
// Caller holds t.mu.
func (t *Table) closeLocked() {
	if t.closed {
		return
	}
	t.closed = true
	t.stopOnce.Do(func() { close(t.done) })
	if t.hooks.OnTableDeleted != nil {
		t.hooks.OnTableDeleted(t.ID)
	}
	log.Printf("[Table %s] Closed", t.ID)
}

// notifyUpdated pushes the current summary to the lobby. Caller holds t.mu.
func (t *Table) notifyUpdated() {
	if t.hooks.OnTableUpdated != nil {
		t.hooks.OnTableUpdated(t.summaryLocked())
	}
}

// broadcastState sends the full game state to every roster member.
// Caller holds t.mu.
func (t *Table) broadcastState(event string) {
	if t.session == nil {
		return
	}
	t.broadcastJSON(event, map[string]any{
		"gameState": codec.GameStateFromSnapshot(t.session.Snapshot()),
	})
}

// broadcastJSON sends an event to every roster member. Caller holds t.mu.
func (t *Table) broadcastJSON(event string, payload any) {
	t.serverSeq++
	data, err := codec.Encode(event, t.ID, t.serverSeq, payload)
	if err != nil {
		log.Printf("[Table %s] Encode %s failed: %v", t.ID, event, err)
		return
	}
	for _, name := range t.players {
		t.send(name, data)
	}
}

// sendJSON sends an event to a single player. Caller holds t.mu.
func (t *Table) sendJSON(username, event string, payload any) {
	t.serverSeq++
	data, err := codec.Encode(event, t.ID, t.serverSeq, payload)
	if err != nil {
		log.Printf("[Table %s] Encode %s failed: %v", t.ID, event, err)
		return
	}
	t.send(username, data)
}
