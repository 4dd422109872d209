package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/prizewheel/internal/logger"
	"github.com/abrezinsky/prizewheel/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Admin pages may be served from the mini-app host
	},
}

// Message types pushed to connected pages
const (
	TypeSpinsStatus = "spins_status"
	TypeUserStatus  = "user_status"
	TypeStats       = "stats"
)

// SpinsStatusSource reports whether the wheel accepts spins
type SpinsStatusSource interface {
	IsSpinsOpen(ctx context.Context) (bool, error)
}

// StatsSource reports activity totals for the dashboard
type StatsSource interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// UserStatusPayload is the body of a user_status message
type UserStatusPayload struct {
	UserID       int64         `json:"user_id"`
	AttemptsLeft int           `json:"attempts_left"`
	Gifts        []models.Gift `json:"gifts"`
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan models.WSMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	settings   SpinsStatusSource
	stats      StatsSource
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, settings SpinsStatusSource, stats StatsSource) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan models.WSMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		settings:   settings,
		stats:      stats,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", total)

			// New pages start from the current wheel status
			go func() {
				open, _ := h.settings.IsSpinsOpen(context.Background())
				client.send <- models.WSMessage{
					Type:    TypeSpinsStatus,
					Payload: map[string]interface{}{"open": open},
				}
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", total)

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

// BroadcastUserStatus implements services.Broadcaster
func (h *Hub) BroadcastUserStatus(userID int64, status models.UserStatus) {
	gifts := status.Gifts
	if gifts == nil {
		gifts = []models.Gift{}
	}
	h.BroadcastMessage(TypeUserStatus, UserStatusPayload{
		UserID:       userID,
		AttemptsLeft: status.AttemptsLeft,
		Gifts:        gifts,
	})
}

// BroadcastSpinsStatus implements services.Broadcaster
func (h *Hub) BroadcastSpinsStatus(open bool) {
	h.BroadcastMessage(TypeSpinsStatus, map[string]interface{}{"open": open})
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	h.register <- client

	// Allow collection of memory referenced by the caller by doing all work in new goroutines
	go client.writePump()
	go client.readPump()
}

// StartStatsFeed pushes dashboard totals every interval until ctx is cancelled.
// Unchanged totals are not re-sent.
func (h *Hub) StartStatsFeed(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *models.Stats
	for {
		select {
		case <-ctx.Done():
			h.log.Info("Stats feed stopped")
			return
		case <-ticker.C:
			last = h.pushStats(ctx, last)
		}
	}
}

// pushStats broadcasts the current totals if they differ from last and returns what was sent
func (h *Hub) pushStats(ctx context.Context, last *models.Stats) *models.Stats {
	stats, err := h.stats.Stats(ctx)
	if err != nil {
		h.log.Debug("Stats unavailable", "error", err)
		return last
	}
	if last != nil && *last == *stats {
		return last
	}
	h.BroadcastMessage(TypeStats, stats)
	return stats
}
