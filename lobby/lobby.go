package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"memory-match-server/ai"
	"memory-match-server/config"
	"memory-match-server/game"
	"memory-match-server/matcherrors"
	"memory-match-server/storage"
	"memory-match-server/theme"
	"memory-match-server/ws"
	"memory-match-server/wsutil"
)

const persistTimeout = 5 * time.Second

type request struct {
	client *ws.Client
	demo   bool
}

// Lobby turns start requests into rounds. Each round runs on its own
// goroutine; the lobby tracks them and persists their results.
type Lobby struct {
	queue  chan request
	done   chan struct{}
	config *config.Config
	themes *theme.Registry
	store  storage.ResultStore // nil means results are not persisted

	mu    sync.Mutex
	games map[string]*game.Game
	wg    sync.WaitGroup

	// newRand seeds the per-round RNG. Tests replace it for deterministic boards.
	newRand func() *rand.Rand
}

// NewLobby creates a new Lobby. store may be nil.
func NewLobby(cfg *config.Config, themes *theme.Registry, store storage.ResultStore) *Lobby {
	return &Lobby{
		queue:  make(chan request, 100),
		done:   make(chan struct{}),
		config: cfg,
		themes: themes,
		store:  store,
		games:  make(map[string]*game.Game),
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Enqueue asks for a new round played by c.
func (l *Lobby) Enqueue(c *ws.Client) error {
	return l.enqueue(request{client: c})
}

// EnqueueDemo asks for a round played by the AI while c watches.
func (l *Lobby) EnqueueDemo(c *ws.Client) error {
	return l.enqueue(request{client: c, demo: true})
}

func (l *Lobby) enqueue(r request) error {
	select {
	case <-l.done:
		return matcherrors.ErrLobbyClosed
	default:
	}
	select {
	case l.queue <- r:
		return nil
	case <-l.done:
		return matcherrors.ErrLobbyClosed
	}
}

// ActiveGames returns the number of rounds currently running.
func (l *Lobby) ActiveGames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.games)
}

// Run is the lobby's main loop. It starts a round for each queued request
// until ctx is cancelled, then waits for running rounds to stop.
func (l *Lobby) Run(ctx context.Context) error {
	defer func() {
		close(l.done)
		l.wg.Wait()
		slog.Info("stopped", "tag", "lobby")
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-l.queue:
			if err := l.start(ctx, r); err != nil {
				if !errors.Is(err, matcherrors.ErrAlreadyInRound) {
					slog.Error("could not start round", "tag", "lobby", "demo", r.demo, "err", err)
				}
				wsutil.SendError(r.client.Send, ws.ErrorMessage(err, "Could not start a round."))
			}
		}
	}
}

func (l *Lobby) start(ctx context.Context, r request) error {
	c := r.client
	if g := c.Game(); g != nil && !g.Finished() {
		return fmt.Errorf("%w: %s", matcherrors.ErrAlreadyInRound, g.ID)
	}

	rng := l.newRand()
	faces, err := l.themes.PickFaces(l.config.Theme, l.config.PairCount(), rng)
	if err != nil {
		return err
	}

	id := uuid.NewString()
	name, userID := c.Identity()
	var bot *config.AIParams
	var botSend chan []byte
	player := game.NewPlayer(name, userID, c.Send)
	if r.demo {
		if len(l.config.AIProfiles) == 0 {
			wsutil.SendError(c.Send, "No demo players are configured.")
			return nil
		}
		p := l.config.AIProfiles[rng.Intn(len(l.config.AIProfiles))]
		bot = &p
		botSend = make(chan []byte, 256)
		player = game.NewPlayer(bot.Name, storage.AIUserIDPrefix+bot.Name, botSend)
	}

	g, err := game.NewGame(id, l.config, player, l.config.Theme, faces, rng)
	if err != nil {
		return err
	}
	if r.demo {
		g.Observers = []chan []byte{c.Send}
	}
	g.OnRoundEnd = l.persist

	c.SetGame(g)
	l.mu.Lock()
	l.games[id] = g
	l.mu.Unlock()

	wsutil.SendJSON(c.Send, ws.RoundStartedMsg{
		Type:       "round_started",
		RoundID:    id,
		PlayerName: player.Name,
		Theme:      l.config.Theme,
		BoardRows:  l.config.BoardRows,
		BoardCols:  l.config.BoardCols,
		Demo:       r.demo,
	})
	slog.Info("round started", "tag", "lobby", "round", id, "player", player.Name, "demo", r.demo)

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		g.Run(ctx)
		l.finish(c, g)
	}()
	if bot != nil {
		botRng := rand.New(rand.NewSource(rng.Int63()))
		go ai.Run(ctx, botSend, g, bot, botRng)
	}
	return nil
}

// finish runs after a round's goroutine exits.
func (l *Lobby) finish(c *ws.Client, g *game.Game) {
	l.mu.Lock()
	delete(l.games, g.ID)
	l.mu.Unlock()

	c.ClearGame(g)
	c.SendMenu()
}

// persist is called on the round's goroutine once the last pair is collected.
func (l *Lobby) persist(g *game.Game, s game.Summary) {
	if l.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	err := l.store.InsertRoundResult(ctx, storage.RoundResult{
		RoundID:    g.ID,
		UserID:     g.Player.UserID,
		PlayerName: g.Player.Name,
		Theme:      g.Theme,
		Score:      s.Score,
		Moves:      s.Moves,
		Bonus:      s.Bonus,
		BestCombo:  s.BestCombo,
		Pairs:      s.Pairs,
		ElapsedMS:  s.Elapsed.Milliseconds(),
	})
	if err != nil {
		slog.Error("saving round result", "tag", "lobby", "round", g.ID, "err", err)
	}
}
