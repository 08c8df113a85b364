// Package server provides the HTTP and WebSocket surfaces of the Mudra
// gesture engine daemon.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/mudra/internal/haptic"
	"github.com/ayusman/mudra/internal/touch"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// ErrNoSurfaceClient is returned by Vibrate when no touch client is
// connected to carry the pattern.
var ErrNoSurfaceClient = errors.New("no surface client connected")

// wsClient pairs a connection with a write lock. Writes reach a connection
// from multiple goroutines (frame handlers, gesture timer callbacks), and the
// websocket package allows at most one concurrent writer per connection.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// TouchHandler is the WebSocket input surface: connected clients stream raw
// touch frames up, and haptic vibrate commands travel back down the same
// connection.
//
// It implements touch.Surface for the binder and haptic.Driver for the
// feedback controller.
type TouchHandler struct {
	logger *zap.Logger

	mu          sync.RWMutex
	clients     map[*websocket.Conn]*wsClient
	subscribers map[int]func(touch.Frame)
	nextSub     int
}

// NewTouchHandler creates a TouchHandler.
func NewTouchHandler(logger *zap.Logger) *TouchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TouchHandler{
		logger:      logger,
		clients:     make(map[*websocket.Conn]*wsClient),
		subscribers: make(map[int]func(touch.Frame)),
	}
}

// wireFrame is the inbound JSON shape of one touch frame.
type wireFrame struct {
	Phase     string `json:"phase"`
	Timestamp int64  `json:"timestamp"`
	Points    []struct {
		ID int     `json:"id"`
		X  float64 `json:"x"`
		Y  float64 `json:"y"`
	} `json:"points"`
}

// vibrateCommand is the outbound JSON shape of a haptic request.
type vibrateCommand struct {
	Type    string `json:"type"`
	Pattern []int  `json:"pattern"`
}

// ServeHTTP handles WebSocket upgrade requests and reads touch frames until
// the client disconnects.
func (h *TouchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &wsClient{conn: conn}
	h.mu.Unlock()
	h.logger.Info("touch surface client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		h.logger.Info("touch surface client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var wf wireFrame
		if err := json.Unmarshal(data, &wf); err != nil {
			h.logger.Debug("dropping malformed touch frame", zap.Error(err))
			continue
		}
		h.dispatch(wf)
	}
}

// dispatch normalizes a wire frame and fans it out to subscribers.
// Client timestamps come from a different clock; the server re-stamps every
// frame on receipt so session durations stay on one monotonic timeline.
func (h *TouchHandler) dispatch(wf wireFrame) {
	var phase touch.Phase
	switch wf.Phase {
	case "start":
		phase = touch.PhaseStart
	case "move":
		phase = touch.PhaseMove
	case "end":
		phase = touch.PhaseEnd
	default:
		return
	}

	now := time.Now().UnixMilli()
	points := make([]touch.Point, len(wf.Points))
	for i, p := range wf.Points {
		points[i] = touch.Point{ID: p.ID, X: p.X, Y: p.Y, Timestamp: now}
	}
	frame := touch.Frame{Phase: phase, Points: points, Timestamp: now}

	h.mu.RLock()
	subs := make([]func(touch.Frame), 0, len(h.subscribers))
	for _, fn := range h.subscribers {
		subs = append(subs, fn)
	}
	h.mu.RUnlock()

	for _, fn := range subs {
		fn(frame)
	}
}

// Subscribe implements touch.Surface.
func (h *TouchHandler) Subscribe(fn func(touch.Frame)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subscribers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
}

// Available implements haptic.Driver: feedback can be delivered while at
// least one surface client is connected.
func (h *TouchHandler) Available() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients) > 0
}

// AdvancedPatterns implements haptic.Driver. Surface clients play full
// pulse/pause sequences.
func (h *TouchHandler) AdvancedPatterns() bool {
	return true
}

// Vibrate implements haptic.Driver: the pattern is pushed down to every
// connected surface client.
func (h *TouchHandler) Vibrate(pattern haptic.Pattern) error {
	msg, err := json.Marshal(vibrateCommand{Type: "vibrate", Pattern: pattern})
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		return ErrNoSurfaceClient
	}

	delivered := false
	for _, c := range clients {
		if err := c.write(msg); err == nil {
			delivered = true
		}
	}
	if !delivered {
		return ErrNoSurfaceClient
	}
	return nil
}
