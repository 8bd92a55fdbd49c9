package main

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kickbu2towski/breakout-api/internal/data"
	"go.uber.org/zap"
)

const (
	EventRoomClaimed     = "room_claimed"
	EventRoomFreed       = "room_freed"
	EventPoolInitialized = "pool_initialized"
)

type RoomEvent struct {
	Type string     `json:"type"`
	Room *data.Room `json:"room,omitempty"`
}

type Hub struct {
	logger    *zap.Logger
	mu        sync.Mutex
	clients   map[*Client]bool
	broadcast chan RoomEvent
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger:    logger,
		clients:   make(map[*Client]bool),
		broadcast: make(chan RoomEvent, 16),
	}
}

// publish never blocks: if the broadcast buffer is full the event is
// dropped, so a slow dashboard can't stall a claim or a presence update.
func (h *Hub) publish(ev RoomEvent) {
	select {
	case h.broadcast <- ev:
	default:
		h.logger.Warn("dropping room event, broadcast buffer is full", zap.String("type", ev.Type))
	}
}

func (h *Hub) run() {
	for ev := range h.broadcast {
		h.mu.Lock()
		for client := range h.clients {
			err := client.conn.WriteJSON(ev)
			if err != nil {
				h.logger.Warn("writing ws json", zap.Error(err))
				delete(h.clients, client)
				client.conn.Close()
			}
		}
		h.mu.Unlock()
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
}

// read drains the connection until the client goes away. Dashboard clients
// only listen; inbound frames are discarded.
func (c *Client) read() {
	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			c.hub.remove(c)
			c.conn.Close()
			break
		}
	}
}

func (app *application) wsHandler(w http.ResponseWriter, r *http.Request) {
	u := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	conn, err := u.Upgrade(w, r, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	client := &Client{
		hub:  app.hub,
		conn: conn,
	}
	app.hub.add(client)

	go client.read()
}
