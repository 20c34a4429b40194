package ws

import (
	"errors"

	"memory-match-server/matcherrors"
)

// clientMessages maps session errors to the text shown to players.
var clientMessages = []struct {
	err error
	msg string
}{
	{matcherrors.ErrAlreadyInRound, "You are already in a round."},
	{matcherrors.ErrNotInRound, "You are not in a round."},
	{matcherrors.ErrRoundEnded, "This round has already ended."},
	{matcherrors.ErrLobbyClosed, "The server is shutting down."},
	{matcherrors.ErrAuthDisabled, "Sign-in is not available."},
	{matcherrors.ErrInvalidToken, "Invalid or expired token."},
}

// ErrorMessage returns the player-facing text for err, or fallback when err
// is not a known session error.
func ErrorMessage(err error, fallback string) string {
	for _, m := range clientMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	return fallback
}
