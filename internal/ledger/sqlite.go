package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "speedwurdz_local.db"

type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath := strings.TrimSpace(os.Getenv("LEDGER_SQLITE_PATH"))
	if dbPath == "" {
		dbPath = defaultLocalDBName
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, pragma := range []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteService{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteService) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS game_results (
			game_id      TEXT PRIMARY KEY,
			table_id     TEXT NOT NULL,
			table_name   TEXT NOT NULL,
			winner       TEXT NOT NULL DEFAULT '',
			reason       TEXT NOT NULL DEFAULT '',
			started_at   TIMESTAMP NOT NULL,
			ended_at     TIMESTAMP NOT NULL,
			duration_sec INTEGER NOT NULL DEFAULT 0,
			players_json TEXT NOT NULL DEFAULT '[]',
			created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_game_results_ended_at
			ON game_results (ended_at DESC);
	`)
	return err
}

func (s *SQLiteService) Close() error { return s.db.Close() }

func (s *SQLiteService) RecordGame(ctx context.Context, rec GameRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_results
			(game_id, table_id, table_name, winner, reason, started_at, ended_at, duration_sec, players_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (game_id) DO NOTHING
	`, rec.GameID, rec.TableID, rec.TableName, rec.Winner, rec.Reason,
		rec.StartedAt, rec.EndedAt, rec.DurationSec, string(players))
	return err
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]GameRecord, error) {
	if limit <= 0 || limit > defaultRecentLimit {
		limit = defaultRecentLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, table_id, table_name, winner, reason, started_at, ended_at, duration_sec, players_json
		FROM game_results
		ORDER BY ended_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *SQLiteService) GetGame(ctx context.Context, gameID string) (GameRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT game_id, table_id, table_name, winner, reason, started_at, ended_at, duration_sec, players_json
		FROM game_results
		WHERE game_id = ?
	`, gameID)
	return scanRecord(row)
}
