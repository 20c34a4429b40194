package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"memory-match-server/auth"
	"memory-match-server/game"
	"memory-match-server/matcherrors"
	"memory-match-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	flips *rate.Limiter

	mu     sync.Mutex
	name   string
	userID string // set after a successful auth message
	game   *game.Game
}

// NewClient creates a client for conn. conn may be nil in tests.
func NewClient(h *Hub, conn *websocket.Conn) *Client {
	limit := rate.Inf
	burst := 1
	if h.Config != nil && h.Config.MaxFlipsPerSecond > 0 {
		limit = rate.Limit(h.Config.MaxFlipsPerSecond)
		burst = h.Config.MaxFlipsPerSecond
	}
	return &Client{
		Hub:   h,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		flips: rate.NewLimiter(limit, burst),
	}
}

// Identity returns the display name and the authenticated user ID (empty for guests).
func (c *Client) Identity() (name, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name, c.userID
}

// SetIdentity sets the display name and user ID.
func (c *Client) SetIdentity(name, userID string) {
	c.mu.Lock()
	c.name, c.userID = name, userID
	c.mu.Unlock()
}

// Game returns the round the client is playing or watching, if any.
func (c *Client) Game() *game.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.game
}

// SetGame attaches the client to a round.
func (c *Client) SetGame(g *game.Game) {
	c.mu.Lock()
	c.game = g
	c.mu.Unlock()
}

// ClearGame detaches the client from g. It is a no-op if the client has
// already moved on to another round.
func (c *Client) ClearGame(g *game.Game) {
	c.mu.Lock()
	if c.game == g {
		c.game = nil
	}
	c.mu.Unlock()
}

// InActiveRound reports whether the client has a round that has not finished.
func (c *Client) InActiveRound() bool {
	_, err := c.activeRound()
	return err == nil
}

// activeRound returns the client's round, ErrNotInRound when there is none
// and ErrRoundEnded when it has finished but the client is not detached yet.
func (c *Client) activeRound() (*game.Game, error) {
	g := c.Game()
	if g == nil {
		return nil, matcherrors.ErrNotInRound
	}
	if g.Finished() {
		return nil, fmt.Errorf("%w: %s", matcherrors.ErrRoundEnded, g.ID)
	}
	return g, nil
}

// ReadPump pumps messages from the websocket connection to the client's handlers.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "client", "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "set_name":
		c.handleSetName(envelope.Raw)
	case "start_round":
		c.handleStart(false)
	case "watch_demo":
		c.handleStart(true)
	case "flip_card":
		c.handleFlipCard(envelope.Raw)
	case "leave_round":
		c.handleLeave()
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
		c.sendError("Invalid auth message.")
		return
	}
	if c.InActiveRound() {
		c.sendError("Cannot sign in while in a round.")
		return
	}
	claims, err := c.Hub.Auth.Validate(msg.Token)
	if err != nil {
		slog.Debug("auth rejected", "tag", "client", "err", err)
		c.sendErr(err, "Invalid or expired token.")
		return
	}
	name, _ := c.Identity()
	if name == "" {
		name = c.truncateName(auth.PlayerNameFromClaims(claims))
	}
	c.SetIdentity(name, auth.UserIDFromClaims(claims))
	c.SendMenu()
}

func (c *Client) handleSetName(raw json.RawMessage) {
	var msg SetNameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid set_name message.")
		return
	}

	name := strings.TrimSpace(msg.Name)
	maxLen := c.Hub.Config.MaxNameLength
	if n := utf8.RuneCountInString(name); n < 1 || n > maxLen {
		c.sendError("Name must be between 1 and " + strconv.Itoa(maxLen) + " characters.")
		return
	}

	if c.InActiveRound() {
		c.sendError("Cannot change name while in a round.")
		return
	}

	_, userID := c.Identity()
	c.SetIdentity(name, userID)
	c.SendMenu()
}

func (c *Client) handleStart(demo bool) {
	if c.InActiveRound() {
		c.sendErr(matcherrors.ErrAlreadyInRound, "")
		return
	}
	if name, _ := c.Identity(); name == "" {
		c.sendError("Set a name first.")
		return
	}

	enqueue := c.Hub.Lobby.Enqueue
	if demo {
		enqueue = c.Hub.Lobby.EnqueueDemo
	}
	if err := enqueue(c); err != nil {
		slog.Warn("enqueue failed", "tag", "client", "err", err)
		c.sendErr(err, "Could not start a round.")
	}
}

func (c *Client) handleFlipCard(raw json.RawMessage) {
	g, err := c.activeRound()
	if err != nil {
		c.sendErr(err, "")
		return
	}
	if g.Player == nil || g.Player.Send != c.Send {
		c.sendError("You are watching this round.")
		return
	}

	var msg FlipCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid flip_card message.")
		return
	}
	if !c.flips.Allow() {
		c.sendError("Too many flips, slow down.")
		return
	}

	g.Submit(game.Action{Type: game.ActionFlipCard, Index: msg.Index})
}

func (c *Client) handleLeave() {
	g, err := c.activeRound()
	if err != nil {
		c.sendErr(err, "")
		return
	}
	g.Submit(game.Action{Type: game.ActionLeave})
}

func (c *Client) truncateName(name string) string {
	maxLen := c.Hub.Config.MaxNameLength
	if utf8.RuneCountInString(name) <= maxLen {
		return name
	}
	return string([]rune(name)[:maxLen])
}

// SendMenu tells the client it is on the menu.
func (c *Client) SendMenu() {
	cfg := c.Hub.Config
	name, userID := c.Identity()
	wsutil.SendJSON(c.Send, MenuMsg{
		Type:      "menu",
		Name:      name,
		SignedIn:  userID != "",
		BoardRows: cfg.BoardRows,
		BoardCols: cfg.BoardCols,
		Theme:     cfg.Theme,
	})
}

func (c *Client) sendError(message string) {
	wsutil.SendError(c.Send, message)
}

func (c *Client) sendErr(err error, fallback string) {
	c.sendError(ErrorMessage(err, fallback))
}
