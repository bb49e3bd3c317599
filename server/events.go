package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ashenafi-pixel/simple-roulette/spin"
)

// EventSnapshot is the first message on every connection.
const EventSnapshot spin.EventType = "snapshot"

const (
	writeWait = 5 * time.Second
	readWait  = 60 * time.Second
	// clientBuffer events may queue per client before it is dropped.
	clientBuffer = 32
)

// Hub pushes spinner events to websocket subscribers.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
	closed  bool
}

type wsClient struct {
	send chan []byte
	once sync.Once
}

func (c *wsClient) close() { c.once.Do(func() { close(c.send) }) }

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// Broadcast sends ev to every client. A client whose buffer is full is
// disconnected rather than allowed to stall the spinner.
func (h *Hub) Broadcast(ev spin.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("failed to encode event", "type", ev.Type, "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			delete(h.clients, c)
			c.close()
		}
	}
}

// Clients reports the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) add(c *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// Serve upgrades the request, sends hello if non-nil, and streams events
// until either side closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, hello []byte) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &wsClient{send: make(chan []byte, clientBuffer)}
	if hello != nil {
		c.send <- hello
	}
	if !h.add(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		return
	}
	defer h.remove(c)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for b := range c.send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
	}()

	// Reads only keep the connection alive and notice the peer leaving.
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
	}
}

func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	hello, err := json.Marshal(spin.Event{Type: EventSnapshot, State: s.spinner.Snapshot()})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode state", codeInternal)
		return
	}
	s.hub.Serve(w, r, hello)
}
