package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrInvalidResult = errors.New("invalid result")

// PlayerResult is a player's standing when the game ended
type PlayerResult struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
	Moves    int    `json:"moves"`
}

// Result is one finished game
type Result struct {
	GameID      string         `json:"game_id"`
	SessionID   string         `json:"session_id"`
	BoardName   string         `json:"board_name"`
	BoardSize   int            `json:"board_size"`
	WinnerID    int            `json:"winner_id"`
	WinnerName  string         `json:"winner_name"`
	WinnerColor string         `json:"winner_color"`
	Turns       int            `json:"turns"`
	Players     []PlayerResult `json:"players"`
	FinishedAt  time.Time      `json:"finished_at"`
}

// Store handles SQLite persistence of finished games.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; also keeps ":memory:" on a single database
	db.SetMaxOpenConns(1)

	// WAL mode for better concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			game_id      TEXT PRIMARY KEY,
			session_id   TEXT NOT NULL,
			board_name   TEXT NOT NULL,
			board_size   INTEGER NOT NULL,
			winner_id    INTEGER NOT NULL,
			winner_name  TEXT NOT NULL,
			winner_color TEXT NOT NULL,
			turns        INTEGER NOT NULL,
			players_json TEXT NOT NULL,
			finished_at  INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS results_finished_at ON results(finished_at DESC);
	`)
	return err
}

// RecordResult stores a finished game. Recording the same game twice keeps
// the first record.
func (s *Store) RecordResult(ctx context.Context, r Result) error {
	if r.GameID == "" {
		return fmt.Errorf("%w: missing game id", ErrInvalidResult)
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	players, err := json.Marshal(r.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (game_id, session_id, board_name, board_size, winner_id, winner_name, winner_color, turns, players_json, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_id) DO NOTHING
	`, r.GameID, r.SessionID, r.BoardName, r.BoardSize, r.WinnerID, r.WinnerName, r.WinnerColor,
		r.Turns, string(players), r.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// ListResults returns up to limit results, newest first.
func (s *Store) ListResults(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT game_id, session_id, board_name, board_size, winner_id, winner_name, winner_color, turns, players_json, finished_at
		FROM results ORDER BY finished_at DESC, game_id LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Result{}
	for rows.Next() {
		var (
			r        Result
			players  string
			finished int64
		)
		if err := rows.Scan(&r.GameID, &r.SessionID, &r.BoardName, &r.BoardSize, &r.WinnerID,
			&r.WinnerName, &r.WinnerColor, &r.Turns, &players, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(players), &r.Players); err != nil {
			return nil, fmt.Errorf("decode players for %s: %w", r.GameID, err)
		}
		r.FinishedAt = time.UnixMilli(finished)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Count returns the number of recorded games.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM results").Scan(&n)
	return n, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
