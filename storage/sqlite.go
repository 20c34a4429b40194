package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const createTableSQLiteSQL = `
CREATE TABLE IF NOT EXISTS round_results (
	id          TEXT PRIMARY KEY,
	played_at   TIMESTAMP NOT NULL,
	user_id     TEXT NOT NULL DEFAULT '',
	player_name TEXT NOT NULL,
	theme       TEXT NOT NULL,
	score       INTEGER NOT NULL,
	moves       INTEGER NOT NULL,
	bonus       INTEGER NOT NULL,
	best_combo  INTEGER NOT NULL,
	pairs       INTEGER NOT NULL,
	elapsed_ms  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_results_user ON round_results(user_id);
CREATE INDEX IF NOT EXISTS idx_round_results_score ON round_results(score DESC);
`

// SQLiteStore persists round results in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if missing) the database at path with
// WAL journaling and a busy timeout, then ensures the schema exists.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, createTableSQLiteSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	slog.Info("opened SQLite", "tag", "storage", "path", path)
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	if s != nil && s.db != nil {
		s.db.Close()
	}
}

// InsertRoundResult records a cleared round.
func (s *SQLiteStore) InsertRoundResult(ctx context.Context, r RoundResult) error {
	if s == nil || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO round_results (id, played_at, user_id, player_name, theme, score, moves, bonus, best_combo, pairs, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RoundID, time.Now().UTC(), r.UserID, r.PlayerName, r.Theme, r.Score, r.Moves, r.Bonus, r.BestCombo, r.Pairs, r.ElapsedMS)
	return err
}

// ListByUserID returns the user's rounds, newest first.
func (s *SQLiteStore) ListByUserID(ctx context.Context, userID string, limit int) ([]RoundRecord, error) {
	if s == nil || s.db == nil {
		return []RoundRecord{}, nil
	}
	limit, _ = clampPage(limit, 0)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, played_at, player_name, theme, score, moves, bonus, best_combo, pairs, elapsed_ms
		FROM round_results
		WHERE user_id = ?
		ORDER BY played_at DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []RoundRecord{}
	for rows.Next() {
		var r RoundRecord
		var playedAt time.Time
		if err := rows.Scan(&r.ID, &playedAt, &r.PlayerName, &r.Theme, &r.Score, &r.Moves, &r.Bonus, &r.BestCombo, &r.Pairs, &r.ElapsedMS); err != nil {
			return nil, err
		}
		r.PlayedAt = playedAt.UTC().Format(time.RFC3339)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListLeaderboard returns each signed-in player's best round (highest score,
// fewest moves on a tie) ordered by score DESC. The display name is the one
// used in the player's latest round.
func (s *SQLiteStore) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.db == nil {
		return []LeaderboardEntry{}, nil
	}
	limit, offset = clampPage(limit, offset)
	rows, err := s.db.QueryContext(ctx, `
		WITH ranked AS (
			SELECT user_id, player_name, score, moves,
				ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY score DESC, moves ASC, played_at ASC) AS best_rank,
				ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY played_at DESC) AS recent_rank,
				COUNT(*) OVER (PARTITION BY user_id) AS rounds
			FROM round_results
			WHERE user_id <> ''
		)
		SELECT best.user_id, latest.player_name, best.score, best.moves, best.rounds
		FROM ranked best
		JOIN ranked latest ON latest.user_id = best.user_id AND latest.recent_rank = 1
		WHERE best.best_rank = 1
		ORDER BY best.score DESC, best.moves ASC, best.user_id
		LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.BestScore, &e.BestMoves, &e.Rounds); err != nil {
			return nil, err
		}
		e.IsBot = isBot(e.UserID)
		out = append(out, e)
	}
	return out, rows.Err()
}
