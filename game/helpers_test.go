package game

import (
	"testing"
	"time"
)

// recordingHost captures everything a round asks its host to do.
type recordingHost struct {
	visuals     map[int]Visual
	labels      map[string]string
	transitions []string
	calls       int
}

func newRecordingHost() *recordingHost {
	return &recordingHost{
		visuals: make(map[int]Visual),
		labels:  make(map[string]string),
	}
}

func (h *recordingHost) ShowCard(index int, face Face, visual Visual) {
	h.visuals[index] = visual
	h.calls++
}

func (h *recordingHost) SetLabel(name, text string) {
	h.labels[name] = text
	h.calls++
}

func (h *recordingHost) Transition(state string) {
	h.transitions = append(h.transitions, state)
	h.calls++
}

// scenarioDeck is a 4x4 deck where cards 0 and 5 match, and 1 and 2 do not.
func scenarioDeck() []Face {
	return []Face{
		"card1", "card2", "card3", "card4",
		"card2", "card1", "card3", "card4",
		"card5", "card5", "card6", "card6",
		"card7", "card7", "card8", "card8",
	}
}

// tinyDeck is a 2x2 deck where cards 0/2 and 1/3 match.
func tinyDeck() []Face {
	return []Face{"a", "b", "a", "b"}
}

func newTestRound(t *testing.T, rows, cols int, deck []Face, rules Rules) (*Round, *recordingHost) {
	t.Helper()
	host := newRecordingHost()
	r, err := NewRound("test-round", rows, cols, deck, rules, host)
	if err != nil {
		t.Fatalf("NewRound: %v", err)
	}
	r.Create()
	return r, host
}

func mustFlip(t *testing.T, r *Round, index int) {
	t.Helper()
	ok, err := r.RequestFlip(index)
	if err != nil {
		t.Fatalf("RequestFlip(%d): %v", index, err)
	}
	if !ok {
		t.Fatalf("RequestFlip(%d) was ignored", index)
	}
}

// playPair flips a and b and lets the reveal and resolution delays run out.
func playPair(t *testing.T, r *Round, a, b int) {
	t.Helper()
	rules := r.Board.rules
	mustFlip(t, r, a)
	mustFlip(t, r, b)
	r.Advance(rules.RevealDelay)
	r.Advance(rules.ResolveDelay)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
