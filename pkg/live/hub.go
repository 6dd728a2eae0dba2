package live

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	pkerrors "github.com/pagekit-dev/pagekit/internal/errors"
)

// Hub tracks connected sessions.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// Add registers a session.
func (h *Hub) Add(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
}

// Remove unregisters a session.
func (h *Hub) Remove(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
}

// Get returns the session with the given ID.
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Each calls fn for a snapshot of the connected sessions.
func (h *Hub) Each(fn func(*Session)) {
	h.mu.RLock()
	snapshot := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	for _, s := range snapshot {
		fn(s)
	}
}

// CloseAll closes every connected session.
func (h *Hub) CloseAll() {
	h.Each(func(s *Session) { s.Close() })
}

// SetupFunc prepares a new session before its read loop starts. The returned
// teardown runs after the session ends; it may be nil.
type SetupFunc func(s *Session) (teardown func())

// Handler upgrades requests to live sessions.
type Handler struct {
	hub      *Hub
	config   Config
	setup    SetupFunc
	upgrader websocket.Upgrader
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithCheckOrigin sets the origin check used during the upgrade.
func WithCheckOrigin(fn func(*http.Request) bool) HandlerOption {
	return func(h *Handler) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHandler creates a Handler that registers sessions with hub and runs
// setup for each of them.
func NewHandler(hub *Hub, config Config, setup SetupFunc, opts ...HandlerOption) *Handler {
	h := &Handler{
		hub:    hub,
		config: config.withDefaults(),
		setup:  setup,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP upgrades the connection and serves the session until it ends.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.config.Logger.Error("websocket upgrade failed",
			"error", pkerrors.New("E200").Wrap(err),
			"remote", r.RemoteAddr)
		return
	}

	s := NewSession(conn, h.config)
	h.hub.Add(s)
	defer h.hub.Remove(s)

	var teardown func()
	if h.setup != nil {
		teardown = h.setup(s)
	}

	s.logger.Debug("session started", "remote", r.RemoteAddr)
	s.ReadLoop()
	s.logger.Debug("session ended")

	if teardown != nil {
		teardown()
	}
}
