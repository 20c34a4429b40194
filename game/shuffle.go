package game

import (
	"fmt"
	"math/rand"

	"memory-match-server/matcherrors"
)

// Face is the identity printed on a card. Exactly two cards share a face.
type Face string

// Shuffle permutes s in place using Fisher-Yates: for i from len-1 down to 1,
// s[i] is swapped with a uniformly chosen element at index <= i.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// NewDeck returns every face twice, in face order.
func NewDeck(faces []Face) []Face {
	deck := make([]Face, 0, 2*len(faces))
	for _, f := range faces {
		deck = append(deck, f, f)
	}
	return deck
}

// ShuffledDeck returns a new shuffled deck holding each face twice.
func ShuffledDeck(rng *rand.Rand, faces []Face) []Face {
	deck := NewDeck(faces)
	Shuffle(rng, deck)
	return deck
}

// ValidateLayout checks that rows x cols can be filled with exactly one pair per face.
func ValidateLayout(rows, cols int, faces []Face) error {
	cells := rows * cols
	if rows <= 0 || cols <= 0 || cells%2 != 0 {
		return fmt.Errorf("%w: %dx%d", matcherrors.ErrOddCellCount, rows, cols)
	}
	if len(faces) != cells/2 {
		return fmt.Errorf("%w: %d faces for %d cells", matcherrors.ErrFaceCountMismatch, len(faces), cells)
	}
	seen := make(map[Face]struct{}, len(faces))
	for _, f := range faces {
		if _, dup := seen[f]; dup {
			return fmt.Errorf("%w: %q", matcherrors.ErrDuplicateFace, f)
		}
		seen[f] = struct{}{}
	}
	return nil
}
