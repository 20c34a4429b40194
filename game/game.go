package game

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"memory-match-server/config"
	"memory-match-server/matcherrors"
	"memory-match-server/wsutil"
)

// ActionType enumerates the kinds of actions a game can process.
type ActionType int

const (
	ActionFlipCard ActionType = iota
	ActionLeave               // player left the round; tear it down and return to the menu
)

// Action represents a player action sent into the game's action channel.
type Action struct {
	Type  ActionType
	Index int // card index (for FlipCard)
}

// Game runs one round on its own goroutine. It owns the round, feeds it player
// actions and clock ticks, and acts as the round's Host by streaming state to
// the player and any observers.
type Game struct {
	ID        string
	Theme     string
	Round     *Round
	Player    *Player
	Observers []chan []byte
	Config    *config.Config
	StartedAt time.Time

	Actions chan Action
	Done    chan struct{}

	// OnRoundEnd is called on the game goroutine when the last pair is collected.
	OnRoundEnd func(g *Game, s Summary)

	finished atomic.Bool
	dirty    bool
	labels   map[string]string
	tick     time.Duration
}

// NewGame creates a game for player on a freshly shuffled board of faces.
func NewGame(id string, cfg *config.Config, player *Player, theme string, faces []Face, rng *rand.Rand) (*Game, error) {
	g := &Game{
		ID:      id,
		Theme:   theme,
		Player:  player,
		Config:  cfg,
		Actions: make(chan Action, 16),
		Done:    make(chan struct{}),
		labels:  make(map[string]string),
		tick:    time.Duration(cfg.TickMS) * time.Millisecond,
	}
	round, err := NewShuffledRound(id, cfg.BoardRows, cfg.BoardCols, faces, RulesFromConfig(cfg), rng, g)
	if err != nil {
		return nil, err
	}
	round.Board.OnEnd = g.handleRoundEnd
	g.Round = round
	return g, nil
}

// Finished reports whether the game has left the round.
func (g *Game) Finished() bool {
	return g.finished.Load()
}

// Submit queues an action. It returns false once the game has stopped.
func (g *Game) Submit(a Action) bool {
	select {
	case <-g.Done:
		return false
	default:
	}
	select {
	case g.Actions <- a:
		return true
	case <-g.Done:
		return false
	}
}

// Run is the main game loop. It processes actions and ticks sequentially
// until the round transitions away or ctx is cancelled.
// It should be run as a goroutine.
func (g *Game) Run(ctx context.Context) {
	defer close(g.Done)

	g.StartedAt = time.Now()
	g.Round.Create()
	g.broadcastState()
	g.dirty = false

	ticker := time.NewTicker(g.tick)
	defer ticker.Stop()
	last := g.StartedAt

	for !g.finished.Load() {
		select {
		case <-ctx.Done():
			g.Round.Close()
			return
		case action := <-g.Actions:
			g.handleAction(action)
		case now := <-ticker.C:
			g.Round.Advance(now.Sub(last))
			last = now
		}
		if g.dirty && !g.finished.Load() {
			g.broadcastState()
			g.dirty = false
		}
	}
}

func (g *Game) handleAction(action Action) {
	switch action.Type {
	case ActionFlipCard:
		if _, err := g.Round.RequestFlip(action.Index); err != nil {
			if errors.Is(err, matcherrors.ErrCardOutOfBounds) {
				g.sendError("Card index out of bounds.")
				return
			}
			slog.Error("flip failed", "tag", "game", "game", g.ID, "err", err)
		}
		// Ignored flips are silent: double clicks and clicks while resolving.
	case ActionLeave:
		slog.Info("player left round", "tag", "game", "game", g.ID)
		g.Round.Close()
		g.Transition(StateMenu)
	}
}

func (g *Game) handleRoundEnd(s Summary) {
	g.broadcastState()
	g.dirty = false
	g.broadcast(RoundOverMsg{
		Type:      "round_over",
		RoundID:   g.ID,
		Score:     s.Score,
		Moves:     s.Moves,
		Bonus:     s.Bonus,
		BestCombo: s.BestCombo,
		ElapsedMS: s.Elapsed.Milliseconds(),
	})
	slog.Info("round cleared", "tag", "game", "game", g.ID, "player", g.playerName(), "score", s.Score, "moves", s.Moves, "bonus", s.Bonus)
	if g.OnRoundEnd != nil {
		g.OnRoundEnd(g, s)
	}
}

// ShowCard implements Host. Card visuals are carried by the next state broadcast.
func (g *Game) ShowCard(index int, face Face, visual Visual) {
	g.dirty = true
}

// SetLabel implements Host.
func (g *Game) SetLabel(name, text string) {
	if g.labels[name] == text {
		return
	}
	g.labels[name] = text
	g.dirty = true
}

// Transition implements Host. It ends the game loop.
func (g *Game) Transition(state string) {
	if g.finished.Swap(true) {
		return
	}
	g.broadcast(TransitionMsg{Type: "transition", State: state})
}

func (g *Game) playerName() string {
	if g.Player == nil {
		return ""
	}
	return g.Player.Name
}

func (g *Game) sendError(message string) {
	if g.Player == nil {
		return
	}
	wsutil.SendError(g.Player.Send, message)
}

func (g *Game) broadcast(v any) {
	if g.Player != nil {
		wsutil.SendJSON(g.Player.Send, v)
	}
	for _, ch := range g.Observers {
		wsutil.SendJSON(ch, v)
	}
}

func (g *Game) broadcastState() {
	state := BuildRoundState(g.Round)
	state.Labels = make(map[string]string, len(g.labels))
	for k, v := range g.labels {
		state.Labels[k] = v
	}
	g.broadcast(state)
}
