package theme

import (
	"fmt"
	"math/rand"

	"memory-match-server/game"
	"memory-match-server/matcherrors"
)

// Theme is a named set of distinct card faces.
type Theme struct {
	ID    string
	Name  string
	Faces []game.Face
}

// Registry holds all registered themes indexed by their ID.
type Registry struct {
	themes map[string]Theme
	order  []string // registration order for deterministic All()
}

// NewRegistry creates a new empty theme registry.
func NewRegistry() *Registry {
	return &Registry{
		themes: make(map[string]Theme),
	}
}

// Register adds a theme to the registry, replacing any theme with the same ID.
func (r *Registry) Register(t Theme) {
	if _, exists := r.themes[t.ID]; !exists {
		r.order = append(r.order, t.ID)
	}
	r.themes[t.ID] = t
}

// Get returns the theme registered under id.
func (r *Registry) Get(id string) (Theme, bool) {
	t, ok := r.themes[id]
	return t, ok
}

// All returns every registered theme in registration order.
func (r *Registry) All() []Theme {
	all := make([]Theme, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.themes[id])
	}
	return all
}

// PickFaces selects n distinct faces of theme id. When the theme has more
// faces than needed, a random subset is chosen with rng.
func (r *Registry) PickFaces(id string, n int, rng *rand.Rand) ([]game.Face, error) {
	t, ok := r.themes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", matcherrors.ErrUnknownTheme, id)
	}
	if n > len(t.Faces) {
		return nil, fmt.Errorf("%w: theme %q has %d faces, need %d", matcherrors.ErrFaceCountMismatch, id, len(t.Faces), n)
	}
	faces := make([]game.Face, len(t.Faces))
	copy(faces, t.Faces)
	if n < len(faces) {
		game.Shuffle(rng, faces)
	}
	return faces[:n], nil
}

// RegisterAll registers the built-in themes on the registry.
// Call this from main so adding a theme only requires registering it here.
func RegisterAll(r *Registry) {
	r.Register(Classic())
	r.Register(Vehicles())
	r.Register(Animals())
}
