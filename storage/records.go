package storage

import "strings"

const (
	defaultPageSize = 50
	maxPageSize     = 200

	// AIUserIDPrefix marks results of demo rounds played by the bot.
	AIUserIDPrefix = "ai:"
)

// RoundResult is what gets written when a round is cleared.
type RoundResult struct {
	RoundID    string
	UserID     string // empty for guests; guests are stored but not ranked
	PlayerName string
	Theme      string
	Score      int
	Moves      int
	Bonus      int
	BestCombo  int
	Pairs      int
	ElapsedMS  int64
}

// RoundRecord is a single row returned for the history API.
type RoundRecord struct {
	ID         string `json:"id"`
	PlayedAt   string `json:"played_at"` // ISO8601
	PlayerName string `json:"player_name"`
	Theme      string `json:"theme"`
	Score      int    `json:"score"`
	Moves      int    `json:"moves"`
	Bonus      int    `json:"bonus"`
	BestCombo  int    `json:"best_combo"`
	Pairs      int    `json:"pairs"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// LeaderboardEntry is a single row for the leaderboard API: a player's best round.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	BestScore   int    `json:"best_score"`
	BestMoves   int    `json:"best_moves"`
	Rounds      int    `json:"rounds"`
	IsBot       bool   `json:"is_bot"`

	IsCurrentUser bool `json:"is_current_user,omitempty"`
}

// clampPage applies the default and maximum page size.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func isBot(userID string) bool {
	return strings.HasPrefix(userID, AIUserIDPrefix)
}
