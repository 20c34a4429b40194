package matcherrors

import "errors"

// Board setup errors. These are programmer/configuration errors and fail fast
// before a round starts.
var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrOddCellCount      = errors.New("board must have an even number of cells")
	ErrFaceCountMismatch = errors.New("number of faces must equal half the number of cells")
	ErrDuplicateFace     = errors.New("faces must be distinct")
	ErrUnknownTheme      = errors.New("unknown theme")
)

// Round/session errors. Shared by the game, lobby and ws packages to avoid
// circular imports.
var (
	ErrCardOutOfBounds = errors.New("card index out of bounds")
	ErrRoundEnded      = errors.New("round has ended")
	ErrAlreadyInRound  = errors.New("already in a round")
	ErrNotInRound      = errors.New("not in a round")
	ErrLobbyClosed     = errors.New("lobby is shut down")
)

// Auth errors.
var (
	ErrAuthDisabled = errors.New("authentication is not configured")
	ErrInvalidToken = errors.New("invalid token")
)
