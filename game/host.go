package game

// Visual is what the host should draw for a card.
type Visual int

const (
	VisualBack Visual = iota
	VisualFlipping
	VisualFront
	VisualNone // collected cards are no longer drawn
)

// String returns the protocol string for a Visual.
func (v Visual) String() string {
	switch v {
	case VisualBack:
		return "back"
	case VisualFlipping:
		return "flipping"
	case VisualFront:
		return "front"
	case VisualNone:
		return "none"
	default:
		return "unknown"
	}
}

// Host states a round can ask to transition to.
const (
	StateMenu = "menu"
	StateGame = "game"
)

// Host is the rendering/input/state-container side of a round. The round calls
// it; it never calls back into the round outside of the owning goroutine.
type Host interface {
	// ShowCard swaps the visual representation of the card at index.
	ShowCard(index int, face Face, visual Visual)
	// SetLabel creates or updates a text label.
	SetLabel(name, text string)
	// Transition leaves the round for the named host state.
	Transition(state string)
}

// NopHost ignores every call.
type NopHost struct{}

func (NopHost) ShowCard(int, Face, Visual) {}
func (NopHost) SetLabel(string, string)    {}
func (NopHost) Transition(string)          {}
