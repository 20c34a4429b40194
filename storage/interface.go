package storage

import (
	"context"
	"log/slog"

	"memory-match-server/config"
)

// ResultStore abstracts persistence for finished rounds and the leaderboard.
// Implementations can be swapped for testing (mocks) or different backends.
type ResultStore interface {
	// Read
	ListByUserID(ctx context.Context, userID string, limit int) ([]RoundRecord, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)

	// Write
	InsertRoundResult(ctx context.Context, r RoundResult) error

	// Lifecycle
	Close()
}

// Ensure both backends implement ResultStore at compile time.
var (
	_ ResultStore = (*PostgresStore)(nil)
	_ ResultStore = (*SQLiteStore)(nil)
)

// Open picks a backend from cfg: Postgres when DatabaseURL is set, else SQLite
// when SQLitePath is set. With neither it returns (nil, nil) and no
// persistence occurs.
func Open(ctx context.Context, cfg *config.Config) (ResultStore, error) {
	switch {
	case cfg.DatabaseURL != "":
		s, err := NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case cfg.SQLitePath != "":
		s, err := NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		slog.Info("no database configured, results are not persisted", "tag", "storage")
		return nil, nil
	}
}
