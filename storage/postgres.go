package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const createTablePostgresSQL = `
CREATE TABLE IF NOT EXISTS round_results (
	id          UUID PRIMARY KEY,
	played_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_id     TEXT NOT NULL DEFAULT '',
	player_name TEXT NOT NULL,
	theme       TEXT NOT NULL,
	score       INT NOT NULL,
	moves       INT NOT NULL,
	bonus       INT NOT NULL,
	best_combo  INT NOT NULL,
	pairs       INT NOT NULL,
	elapsed_ms  BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_results_user ON round_results(user_id);
CREATE INDEX IF NOT EXISTS idx_round_results_score ON round_results(score DESC);
`

// PostgresStore persists round results in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the round_results table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTablePostgresSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// InsertRoundResult records a cleared round.
func (s *PostgresStore) InsertRoundResult(ctx context.Context, r RoundResult) error {
	if s == nil || s.pool == nil {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO round_results (id, user_id, player_name, theme, score, moves, bonus, best_combo, pairs, elapsed_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.RoundID, r.UserID, r.PlayerName, r.Theme, r.Score, r.Moves, r.Bonus, r.BestCombo, r.Pairs, r.ElapsedMS)
	return err
}

// ListByUserID returns the user's rounds, newest first.
func (s *PostgresStore) ListByUserID(ctx context.Context, userID string, limit int) ([]RoundRecord, error) {
	if s == nil || s.pool == nil {
		return []RoundRecord{}, nil
	}
	limit, _ = clampPage(limit, 0)
	rows, err := s.pool.Query(ctx, `
		SELECT id, played_at, player_name, theme, score, moves, bonus, best_combo, pairs, elapsed_ms
		FROM round_results
		WHERE user_id = $1
		ORDER BY played_at DESC
		LIMIT $2`,
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
func (s *PostgresStore) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return []LeaderboardEntry{}, nil
	}
	limit, offset = clampPage(limit, offset)
	rows, err := s.pool.Query(ctx, `
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
		LIMIT $1 OFFSET $2`,
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
