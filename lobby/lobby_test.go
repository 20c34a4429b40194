package lobby

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"memory-match-server/config"
	"memory-match-server/game"
	"memory-match-server/matcherrors"
	"memory-match-server/storage"
	"memory-match-server/theme"
	"memory-match-server/ws"
)

type fakeStore struct {
	mu      sync.Mutex
	results []storage.RoundResult
}

func (s *fakeStore) InsertRoundResult(_ context.Context, r storage.RoundResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *fakeStore) ListByUserID(context.Context, string, int) ([]storage.RoundRecord, error) {
	return nil, nil
}

func (s *fakeStore) ListLeaderboard(context.Context, int, int) ([]storage.LeaderboardEntry, error) {
	return nil, nil
}

func (s *fakeStore) Close() {}

func (s *fakeStore) saved() []storage.RoundResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storage.RoundResult(nil), s.results...)
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.BoardRows = 2
	cfg.BoardCols = 2
	cfg.RevealDelayMS = 5
	cfg.ResolveDelayMS = 10
	cfg.VictoryDelayMS = 10
	cfg.TickMS = 2
	cfg.AIProfiles = []config.AIParams{{Name: "Mnemosyne", DelayMinMS: 1, DelayMaxMS: 3, UseKnownPairChance: 100}}
	return cfg
}

func newTestLobby(t *testing.T) (*Lobby, *fakeStore, context.CancelFunc, chan error) {
	t.Helper()
	themes := theme.NewRegistry()
	theme.RegisterAll(themes)
	store := &fakeStore{}
	l := NewLobby(testConfig(), themes, store)
	l.newRand = func() *rand.Rand { return rand.New(rand.NewSource(11)) }

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	t.Cleanup(cancel)
	return l, store, cancel, errc
}

func newClient(l *Lobby, name, userID string) *ws.Client {
	h := ws.NewHub(l.config, l, nil)
	c := ws.NewClient(h, nil)
	c.SetIdentity(name, userID)
	return c
}

// waitFor reads messages until one of the given type arrives.
func waitFor(t *testing.T, ch chan []byte, typ string) map[string]interface{} {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case data := <-ch:
			var m map[string]interface{}
			json.Unmarshal(data, &m)
			if m["type"] == typ {
				return m
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q", typ)
			return nil
		}
	}
}

func TestLobbyStartsAndPersistsRound(t *testing.T) {
	l, store, _, _ := newTestLobby(t)
	c := newClient(l, "Alice", "user-1")

	if err := l.Enqueue(c); err != nil {
		t.Fatal(err)
	}
	started := waitFor(t, c.Send, "round_started")
	if started["playerName"] != "Alice" || started["demo"] != false {
		t.Errorf("unexpected round_started %v", started)
	}
	g := c.Game()
	if g == nil {
		t.Fatal("client should have a game assigned")
	}
	if l.ActiveGames() != 1 {
		t.Errorf("expected 1 active game, got %d", l.ActiveGames())
	}

	// Faces never change once dealt.
	byFace := map[game.Face][]int{}
	for _, card := range g.Round.Board.Cards {
		byFace[card.Face] = append(byFace[card.Face], card.Index)
	}
	for _, idx := range byFace {
		g.Submit(game.Action{Type: game.ActionFlipCard, Index: idx[0]})
		g.Submit(game.Action{Type: game.ActionFlipCard, Index: idx[1]})
		time.Sleep(60 * time.Millisecond)
	}

	waitFor(t, c.Send, "round_over")
	menu := waitFor(t, c.Send, "menu")
	if menu["name"] != "Alice" {
		t.Errorf("expected menu for Alice, got %v", menu)
	}
	if c.Game() != nil {
		t.Error("client should be detached after the round")
	}

	saved := store.saved()
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved result, got %d", len(saved))
	}
	r := saved[0]
	if r.UserID != "user-1" || r.RoundID != g.ID || r.Moves != 4 || r.Score != 800 || r.Theme != "classic" {
		t.Errorf("unexpected result %+v", r)
	}
}

func TestLobbyRejectsSecondRound(t *testing.T) {
	l, _, _, _ := newTestLobby(t)
	c := newClient(l, "Alice", "")

	l.Enqueue(c)
	waitFor(t, c.Send, "round_started")
	l.Enqueue(c)
	m := waitFor(t, c.Send, "error")
	if m["message"] != "You are already in a round." {
		t.Errorf("unexpected error %v", m)
	}
}

func TestLobbyDemoRound(t *testing.T) {
	l, store, _, _ := newTestLobby(t)
	c := newClient(l, "Viewer", "user-2")

	if err := l.EnqueueDemo(c); err != nil {
		t.Fatal(err)
	}
	started := waitFor(t, c.Send, "round_started")
	if started["demo"] != true || started["playerName"] != "Mnemosyne" {
		t.Errorf("unexpected round_started %v", started)
	}
	waitFor(t, c.Send, "round_over")
	waitFor(t, c.Send, "menu")

	saved := store.saved()
	if len(saved) != 1 || saved[0].UserID != storage.AIUserIDPrefix+"Mnemosyne" {
		t.Errorf("expected the bot's result saved, got %+v", saved)
	}
}

func TestLobbyClosed(t *testing.T) {
	l, _, cancel, errc := newTestLobby(t)
	c := newClient(l, "Alice", "")
	l.Enqueue(c)
	waitFor(t, c.Send, "round_started")

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lobby did not stop")
	}
	if l.ActiveGames() != 0 {
		t.Errorf("expected running rounds to stop, got %d", l.ActiveGames())
	}
	if err := l.Enqueue(c); !errors.Is(err, matcherrors.ErrLobbyClosed) {
		t.Errorf("expected ErrLobbyClosed, got %v", err)
	}
}
