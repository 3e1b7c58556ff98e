package wurdz

import (
	"errors"
	"strings"
	"testing"

	"speedwurdz/tile"
)

func newPlayingSession(t *testing.T, usernames []string, seed int64, dict Dictionary) *Session {
	t.Helper()
	s, err := NewSession("table-1", usernames, Config{MaxPlayers: 4, Seed: seed}, dict)
	if err != nil {
		t.Fatalf("NewSession err: %v", err)
	}
	if err := s.StartCountdown(); err != nil {
		t.Fatalf("StartCountdown err: %v", err)
	}
	for i := 0; i < defaultCountdown; i++ {
		_, started, active := s.TickCountdown()
		if started {
			return s
		}
		if !active {
			t.Fatal("countdown cancelled unexpectedly")
		}
	}
	t.Fatal("countdown never started play")
	return nil
}

func handOf(t *testing.T, s *Session, username string) []HandTile {
	t.Helper()
	for _, p := range s.Snapshot().Players {
		if p.Username == username {
			return p.Hand
		}
	}
	t.Fatalf("player %s not in snapshot", username)
	return nil
}

func assertConservation(t *testing.T, s *Session) {
	t.Helper()
	snap := s.Snapshot()
	counts := map[tile.State]int{}
	for _, ts := range snap.Tiles {
		counts[ts.State]++
		switch ts.State {
		case tile.StatePool:
			if ts.Owner != "" || ts.Position != nil {
				t.Fatalf("pool tile %d has owner/position", ts.ID)
			}
		case tile.StateBoard:
			if ts.Owner == "" || ts.Position == nil {
				t.Fatalf("board tile %d missing owner/position", ts.ID)
			}
		case tile.StateHand:
			if ts.Owner == "" {
				t.Fatalf("hand tile %d missing owner", ts.ID)
			}
		}
	}
	total := counts[tile.StatePool] + counts[tile.StateHand] + counts[tile.StateBoard]
	if total != len(snap.Tiles) {
		t.Fatalf("tile conservation broken: %d accounted of %d", total, len(snap.Tiles))
	}
}

func TestNewSession_Validation(t *testing.T) {
	dict := wordSet{}
	if _, err := NewSession("t", nil, Config{MaxPlayers: 4}, dict); err == nil {
		t.Fatal("expected error for empty player list")
	}
	if _, err := NewSession("t", []string{"a", "b", "c"}, Config{MaxPlayers: 2}, dict); err == nil {
		t.Fatal("expected error for too many players")
	}
	if _, err := NewSession("t", []string{"a", "a"}, Config{MaxPlayers: 4}, dict); err == nil {
		t.Fatal("expected error for duplicate username")
	}
	if _, err := NewSession("t", []string{"a"}, Config{MaxPlayers: 4}, nil); err == nil {
		t.Fatal("expected error for missing dictionary")
	}
}

func TestCountdown_DealsOpeningHands(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 42, wordSet{})

	if s.Status() != StatusPlaying {
		t.Fatalf("status = %v, want playing", s.Status())
	}
	snap := s.Snapshot()
	totalDealt := 0
	for _, p := range snap.Players {
		if len(p.Hand) != tilesPerHand {
			t.Fatalf("%s hand size = %d, want %d", p.Username, len(p.Hand), tilesPerHand)
		}
		totalDealt += len(p.Hand)
	}
	if snap.TilesInPool != len(snap.Tiles)-totalDealt {
		t.Fatalf("pool = %d, want %d", snap.TilesInPool, len(snap.Tiles)-totalDealt)
	}
	assertConservation(t, s)
}

func TestCountdown_CancelledWhenGameEnds(t *testing.T) {
	s, err := NewSession("t", []string{"ann"}, Config{MaxPlayers: 4, Seed: 1}, wordSet{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.StartCountdown(); err != nil {
		t.Fatal(err)
	}
	if err := s.Resign("ann"); err != nil {
		t.Fatal(err)
	}

	_, started, active := s.TickCountdown()
	if started || active {
		t.Fatalf("tick after resignation: started=%v active=%v, want neither", started, active)
	}
	if s.Status() != StatusFinished {
		t.Fatalf("status = %v, want finished", s.Status())
	}
}

func TestPlaceMoveReturnTile(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 7, wordSet{})
	hand := handOf(t, s, "ann")
	id := hand[0].ID

	if err := s.PlaceTile("ann", id, 3, 4); err != nil {
		t.Fatalf("PlaceTile err: %v", err)
	}
	if len(handOf(t, s, "ann")) != tilesPerHand-1 {
		t.Fatal("hand size unchanged after placement")
	}

	// Stale source position must be rejected.
	if err := s.MoveTileOnBoard("ann", id, 9, 9, 5, 5); !errors.Is(err, ErrPositionMismatch) {
		t.Fatalf("expected ErrPositionMismatch, got %v", err)
	}
	if err := s.MoveTileOnBoard("ann", id, 3, 4, 5, 5); err != nil {
		t.Fatalf("MoveTileOnBoard err: %v", err)
	}

	// Another player cannot touch the tile.
	if err := s.ReturnTileToHand("bob", id); !errors.Is(err, ErrTileNotOnBoard) {
		t.Fatalf("expected ErrTileNotOnBoard, got %v", err)
	}

	if err := s.ReturnTileToHand("ann", id); err != nil {
		t.Fatalf("ReturnTileToHand err: %v", err)
	}
	if len(handOf(t, s, "ann")) != tilesPerHand {
		t.Fatal("hand size not restored after return")
	}
	assertConservation(t, s)
}

func TestPlaceTile_NotInHand(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 11, wordSet{})
	bobTile := handOf(t, s, "bob")[0].ID

	if err := s.PlaceTile("ann", bobTile, 0, 0); !errors.Is(err, ErrTileNotInHand) {
		t.Fatalf("expected ErrTileNotInHand, got %v", err)
	}
}

func TestTrashTile(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 3, wordSet{})
	poolBefore := s.PoolCount()
	id := handOf(t, s, "ann")[0].ID

	res, err := s.TrashTile("ann", id)
	if err != nil {
		t.Fatalf("TrashTile err: %v", err)
	}
	if res.Trashed.ID != id || len(res.Drawn) != trashExchangeDraw {
		t.Fatalf("unexpected exchange: %+v", res)
	}
	if res.HandSize != tilesPerHand-1+trashExchangeDraw {
		t.Fatalf("hand size = %d, want %d", res.HandSize, tilesPerHand-1+trashExchangeDraw)
	}
	// One tile back in, three out.
	if res.PoolRemaining != poolBefore-trashExchangeDraw+1 {
		t.Fatalf("pool = %d, want %d", res.PoolRemaining, poolBefore-trashExchangeDraw+1)
	}

	snap := s.Snapshot()
	if snap.Players[0].TilesTrashCount != 1 {
		t.Fatalf("trash count = %d, want 1", snap.Players[0].TilesTrashCount)
	}
	assertConservation(t, s)
}

func TestTrashTile_PoolExhausted(t *testing.T) {
	s := newPlayingSession(t, []string{"ann"}, 5, wordSet{})

	for i := 0; ; i++ {
		if i > 100 {
			t.Fatal("pool never exhausted")
		}
		id := handOf(t, s, "ann")[0].ID
		if _, err := s.TrashTile("ann", id); err != nil {
			if !errors.Is(err, ErrPoolExhausted) {
				t.Fatalf("expected ErrPoolExhausted, got %v", err)
			}
			break
		}
	}
	if s.PoolCount() >= trashExchangeDraw {
		t.Fatalf("pool still has %d tiles after exhaustion", s.PoolCount())
	}
}

func TestSubmitBoard_NotConnected(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 9, wordSet{"cat": true})
	handBefore := len(handOf(t, s, "ann"))

	res, err := s.SubmitBoard("ann", []Placement{
		pl('C', 0, 0), pl('A', 0, 1), pl('T', 5, 5),
	})
	if err != nil {
		t.Fatalf("SubmitBoard err: %v", err)
	}
	if res.Valid {
		t.Fatal("disconnected board accepted")
	}
	if res.Reason != reasonNotConnected {
		t.Fatalf("reason = %q", res.Reason)
	}
	// Failed submissions leave state untouched.
	if len(handOf(t, s, "ann")) != handBefore {
		t.Fatal("hand changed after failed submission")
	}
}

func TestSubmitBoard_InvalidWords(t *testing.T) {
	s := newPlayingSession(t, []string{"ann"}, 9, wordSet{})

	res, err := s.SubmitBoard("ann", []Placement{pl('X', 0, 0), pl('Q', 0, 1)})
	if err != nil {
		t.Fatalf("SubmitBoard err: %v", err)
	}
	if res.Valid {
		t.Fatal("misspelled board accepted")
	}
	if !strings.HasPrefix(res.Reason, "Invalid words found: XQ") {
		t.Fatalf("reason = %q", res.Reason)
	}
	if len(res.InvalidWords) != 1 || res.InvalidWords[0].Word != "xq" {
		t.Fatalf("invalid words = %+v", res.InvalidWords)
	}
}

func TestSubmitBoard_ValidDealsOneToEachPlayer(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 13, wordSet{"cat": true})
	poolBefore := s.PoolCount()

	res, err := s.SubmitBoard("ann", []Placement{
		pl('C', 0, 0), pl('A', 0, 1), pl('T', 0, 2),
	})
	if err != nil {
		t.Fatalf("SubmitBoard err: %v", err)
	}
	if !res.Valid || res.Won {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.TilesSubmitted != 3 {
		t.Fatalf("tiles submitted = %d, want 3", res.TilesSubmitted)
	}

	// The peel: everyone draws one.
	for _, name := range []string{"ann", "bob"} {
		if got := len(handOf(t, s, name)); got != tilesPerHand+1 {
			t.Fatalf("%s hand = %d, want %d", name, got, tilesPerHand+1)
		}
	}
	if s.PoolCount() != poolBefore-2 {
		t.Fatalf("pool = %d, want %d", s.PoolCount(), poolBefore-2)
	}
	if s.Snapshot().Players[0].ValidSubmissions != 1 {
		t.Fatal("valid submission not recorded")
	}
	assertConservation(t, s)
}

func TestSubmitBoard_EmptySubmission(t *testing.T) {
	s := newPlayingSession(t, []string{"ann"}, 2, wordSet{})
	if _, err := s.SubmitBoard("ann", nil); !errors.Is(err, ErrEmptySubmission) {
		t.Fatalf("expected ErrEmptySubmission, got %v", err)
	}
}

func TestSubmitBoard_WinOnEmptyHandAndPool(t *testing.T) {
	s := newPlayingSession(t, []string{"ann"}, 21, wordSet{"cat": true})

	// Empty the hand onto the board.
	for i, ht := range handOf(t, s, "ann") {
		if err := s.PlaceTile("ann", ht.ID, 0, i); err != nil {
			t.Fatalf("PlaceTile err: %v", err)
		}
	}
	// Drain the pool.
	s.mu.Lock()
	for _, tl := range s.tiles {
		if tl.State == tile.StatePool {
			tl.State = tile.StateBoard
			tl.Owner = "ann"
			tl.Position = &tile.Position{}
		}
	}
	s.mu.Unlock()

	res, err := s.SubmitBoard("ann", []Placement{
		pl('C', 0, 0), pl('A', 0, 1), pl('T', 0, 2),
	})
	if err != nil {
		t.Fatalf("SubmitBoard err: %v", err)
	}
	if !res.Valid || !res.Won {
		t.Fatalf("expected winning submission, got %+v", res)
	}
	if s.Status() != StatusFinished || s.Winner() != "ann" {
		t.Fatalf("status=%v winner=%q", s.Status(), s.Winner())
	}

	stats := s.FinalStats()
	if len(stats) != 1 || !stats[0].IsWinner {
		t.Fatalf("stats = %+v", stats)
	}
	if stats[0].Score != 5 { // cat from the last valid board
		t.Fatalf("score = %d, want 5", stats[0].Score)
	}
	if stats[0].ValidSubmissions != 1 || stats[0].TilesInHand != 0 {
		t.Fatalf("stats = %+v", stats[0])
	}
}

func TestResign_EndsGameForEveryone(t *testing.T) {
	s := newPlayingSession(t, []string{"ann", "bob"}, 17, wordSet{})

	if err := s.Resign("bob"); err != nil {
		t.Fatalf("Resign err: %v", err)
	}
	if s.Status() != StatusFinished {
		t.Fatalf("status = %v, want finished", s.Status())
	}
	if s.Winner() != "" {
		t.Fatalf("winner = %q, want none", s.Winner())
	}
	// The remaining player cannot keep acting.
	id := handOf(t, s, "ann")[0].ID
	if err := s.PlaceTile("ann", id, 0, 0); !errors.Is(err, ErrGameNotPlaying) {
		t.Fatalf("expected ErrGameNotPlaying, got %v", err)
	}
}

func TestActions_RejectUnknownPlayer(t *testing.T) {
	s := newPlayingSession(t, []string{"ann"}, 1, wordSet{})
	if err := s.PlaceTile("zoe", 1, 0, 0); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
	if _, err := s.SubmitBoard("zoe", []Placement{pl('A', 0, 0)}); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
}

func TestMoveBoard_ClampsToWindow(t *testing.T) {
	s := newPlayingSession(t, []string{"ann"}, 4, wordSet{})

	pos, err := s.MoveBoard("ann", DirectionLeft, 30)
	if err != nil {
		t.Fatalf("MoveBoard err: %v", err)
	}
	if pos.X != -viewScrollLimit {
		t.Fatalf("x = %d, want %d", pos.X, -viewScrollLimit)
	}

	pos, err = s.MoveBoard("ann", DirectionRight, 1)
	if err != nil {
		t.Fatalf("MoveBoard err: %v", err)
	}
	if pos.X != -viewScrollLimit+viewScrollStep {
		t.Fatalf("x = %d, want %d", pos.X, -viewScrollLimit+viewScrollStep)
	}

	// Zero amount falls back to a single step.
	pos, err = s.MoveBoard("ann", DirectionDown, 0)
	if err != nil {
		t.Fatalf("MoveBoard err: %v", err)
	}
	if pos.Y != viewScrollStep {
		t.Fatalf("y = %d, want %d", pos.Y, viewScrollStep)
	}

	if _, err := s.MoveBoard("ann", Direction("sideways"), 1); !errors.Is(err, ErrUnknownDirection) {
		t.Fatalf("expected ErrUnknownDirection, got %v", err)
	}
}
