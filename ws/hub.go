package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"memory-match-server/auth"
	"memory-match-server/config"
	"memory-match-server/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LobbyInterface defines what the Hub needs from the Lobby.
type LobbyInterface interface {
	Enqueue(c *Client) error
	EnqueueDemo(c *Client) error
}

// Hub maintains the set of active clients.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Lobby      LobbyInterface
	Config     *config.Config
	Auth       *auth.Validator
}

// NewHub creates a new Hub.
func NewHub(cfg *config.Config, lobby LobbyInterface, validator *auth.Validator) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Lobby:      lobby,
		Config:     cfg,
		Auth:       validator,
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run returns and no longer accepts new registrations.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "hub")
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "hub", "clients", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; !ok {
				continue
			}
			delete(h.Clients, client)
			close(client.Send)
			slog.Info("client disconnected", "tag", "hub", "clients", len(h.Clients))

			// A round nobody is watching is torn down right away. Submit waits
			// for room in the action queue and gives up once the game stops.
			if g := client.Game(); g != nil && !g.Finished() {
				go g.Submit(game.Action{Type: game.ActionLeave})
			}
		}
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "tag", "hub", "err", err)
		return
	}

	client := NewClient(h, conn)
	h.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
