package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/gesture"
)

// GestureStreamHandler broadcasts classified gesture events to WebSocket
// clients (the host application's dashboards).
type GestureStreamHandler struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	clients map[*websocket.Conn]*wsClient
}

// NewGestureStreamHandler creates a GestureStreamHandler.
func NewGestureStreamHandler(logger *zap.Logger) *GestureStreamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GestureStreamHandler{
		logger:  logger,
		clients: make(map[*websocket.Conn]*wsClient),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *GestureStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &wsClient{conn: conn}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends one gesture event to all connected clients. Broadcast may
// be called from several goroutines at once (the frame path and gesture timer
// callbacks); each client's write lock serializes the connection. Write
// errors are tolerated; a broken client is cleaned up by its read loop.
func (h *GestureStreamHandler) Broadcast(e gesture.Event) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return
	}

	msg, err := json.Marshal(map[string]any{
		"kind":      e.Kind,
		"state":     e.State,
		"timestamp": time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	for _, c := range clients {
		c.write(msg)
	}
}
