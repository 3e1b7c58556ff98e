package ledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestLedger(t *testing.T) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(filepath.Join(t.TempDir(), "ledger_test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteService err: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func sampleRecord(gameID string, endedAt time.Time) GameRecord {
	return GameRecord{
		GameID:      gameID,
		TableID:     "tbl1",
		TableName:   "Test Game",
		Winner:      "ann",
		Reason:      "completed",
		StartedAt:   endedAt.Add(-3 * time.Minute),
		EndedAt:     endedAt,
		DurationSec: 180,
		Players: []PlayerResult{
			{Username: "ann", IsWinner: true, Score: 42, ValidSubmissions: 5},
			{Username: "bob", Score: 17, ValidSubmissions: 2, TilesTrashed: 1},
		},
	}
}

func TestRecordAndGetGame(t *testing.T) {
	svc := newTestLedger(t)
	ctx := context.Background()

	want := sampleRecord("game1", time.Now().UTC().Truncate(time.Second))
	if err := svc.RecordGame(ctx, want); err != nil {
		t.Fatalf("RecordGame err: %v", err)
	}

	got, err := svc.GetGame(ctx, "game1")
	if err != nil {
		t.Fatalf("GetGame err: %v", err)
	}
	if got.GameID != want.GameID || got.Winner != want.Winner || got.DurationSec != want.DurationSec {
		t.Fatalf("record mismatch: got %+v", got)
	}
	if len(got.Players) != 2 || got.Players[0].Username != "ann" || !got.Players[0].IsWinner {
		t.Fatalf("players mismatch: %+v", got.Players)
	}
	if got.Players[1].TilesTrashed != 1 {
		t.Fatalf("expected bob trashed count preserved, got %+v", got.Players[1])
	}
}

func TestGetGame_NotFound(t *testing.T) {
	svc := newTestLedger(t)

	_, err := svc.GetGame(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRecordGame_DuplicateIgnored(t *testing.T) {
	svc := newTestLedger(t)
	ctx := context.Background()

	rec := sampleRecord("game1", time.Now().UTC())
	if err := svc.RecordGame(ctx, rec); err != nil {
		t.Fatalf("RecordGame err: %v", err)
	}
	rec.Winner = "bob"
	if err := svc.RecordGame(ctx, rec); err != nil {
		t.Fatalf("duplicate RecordGame err: %v", err)
	}

	got, err := svc.GetGame(ctx, "game1")
	if err != nil {
		t.Fatalf("GetGame err: %v", err)
	}
	if got.Winner != "ann" {
		t.Fatalf("expected first insert to win, got winner %q", got.Winner)
	}
}

func TestListRecent_NewestFirstAndLimited(t *testing.T) {
	svc := newTestLedger(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		rec := sampleRecord("game"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := svc.RecordGame(ctx, rec); err != nil {
			t.Fatalf("RecordGame err: %v", err)
		}
	}

	items, err := svc.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].GameID != "gamec" || items[1].GameID != "gameb" {
		t.Fatalf("unexpected order: %s, %s", items[0].GameID, items[1].GameID)
	}
}
