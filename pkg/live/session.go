package live

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	pkerrors "github.com/pagekit-dev/pagekit/internal/errors"
)

// ErrSessionClosed is returned by writes to a closed session.
var ErrSessionClosed = pkerrors.New("E201")

// Config configures live sessions.
type Config struct {
	// ReadTimeout is the maximum time to wait for a message or pong from the page.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between pings. Must be below ReadTimeout.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming frame.
	// Default: 4KB.
	MaxMessageSize int64

	// Logger is the structured logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    4 * 1024,
		Logger:            slog.Default(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

// Session is one connected page. It implements growl.Emitter,
// scrolltop.Viewport and scrolltop.Events.
//
// Handlers run on the session's read goroutine. All methods are safe for
// concurrent use.
type Session struct {
	// ID is the random session identifier.
	ID string

	conn   *websocket.Conn
	config Config
	logger *slog.Logger

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}

	scrollTop atomic.Int64

	mu      sync.Mutex
	nextID  uint64
	scrolls map[uint64]func()
	clicks  map[string]map[uint64]func()
}

// generateSessionID creates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// NewSession wraps an upgraded connection. Call ReadLoop to start serving it.
func NewSession(conn *websocket.Conn, config Config) *Session {
	config = config.withDefaults()
	id := generateSessionID()
	return &Session{
		ID:      id,
		conn:    conn,
		config:  config,
		logger:  config.Logger.With("session_id", id),
		done:    make(chan struct{}),
		scrolls: make(map[uint64]func()),
		clicks:  make(map[string]map[uint64]func()),
	}
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// IsClosed reports whether the session has ended.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Close ends the session and closes the connection.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)

		s.writeMu.Lock()
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		err = s.conn.Close()
	})
	return err
}

// write encodes and sends a frame.
func (s *Session) write(frame ServerFrame) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return pkerrors.New("E202").WithDetailf("frame %q", frame.Type).Wrap(err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return pkerrors.New("E203").WithDetailf("frame %q", frame.Type).Wrap(err)
	}
	return nil
}

// Emit dispatches a named CustomEvent on the page's window.
func (s *Session) Emit(name string, data any) error {
	return s.write(emitFrame(name, data))
}

// ScrollTop returns the last vertical scroll offset reported by the page.
func (s *Session) ScrollTop() int {
	return int(s.scrollTop.Load())
}

// SetClass adds or removes class on the elements matching selector.
func (s *Session) SetClass(selector, class string, on bool) error {
	return s.write(classFrame(selector, class, on))
}

// AnimateScrollTop smoothly scrolls the page to top over d.
func (s *Session) AnimateScrollTop(top int, d time.Duration) error {
	return s.write(animateFrame(top, d))
}

// OnScroll registers fn for every scroll frame.
func (s *Session) OnScroll(fn func()) (dispose func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.scrolls[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.scrolls, id)
		s.mu.Unlock()
	}
}

// OnClick registers fn for clicks on elements matching selector. The page
// starts listening on the first handler for a selector and stops after the
// last one is disposed. The default action of those clicks is suppressed.
func (s *Session) OnClick(selector string, fn func()) (dispose func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	handlers, ok := s.clicks[selector]
	if !ok {
		handlers = make(map[uint64]func())
		s.clicks[selector] = handlers
	}
	handlers[id] = fn
	s.mu.Unlock()

	if !ok {
		s.sendListen(selector, true)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(handlers, id)
			last := len(handlers) == 0
			if last {
				delete(s.clicks, selector)
			}
			s.mu.Unlock()

			if last {
				s.sendListen(selector, false)
			}
		})
	}
}

func (s *Session) sendListen(selector string, listen bool) {
	if err := s.write(listenFrame(selector, listen)); err != nil && !s.closed.Load() {
		s.logger.Warn("listen frame failed", "selector", selector, "error", err)
	}
}

// ReadLoop reads frames from the page and dispatches them to handlers. It
// blocks until the connection fails or the session is closed, then closes
// the session.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	go s.heartbeat()

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var frame ClientFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.logger.Warn("frame decode error", "error", err)
			continue
		}
		s.dispatch(frame)
	}
}

func (s *Session) dispatch(frame ClientFrame) {
	switch frame.Type {
	case FrameScroll:
		s.scrollTop.Store(int64(frame.Top))
		for _, fn := range s.scrollHandlers() {
			fn()
		}

	case FrameClick:
		for _, fn := range s.clickHandlers(frame.Selector) {
			fn()
		}

	default:
		s.logger.Warn("unknown frame type", "type", frame.Type)
	}
}

// scrollHandlers returns a snapshot of the scroll handlers in registration order.
func (s *Session) scrollHandlers() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordered(s.scrolls)
}

func (s *Session) clickHandlers(selector string) []func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ordered(s.clicks[selector])
}

func ordered(m map[uint64]func()) []func() {
	ids := make([]uint64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	fns := make([]func(), len(ids))
	for i, id := range ids {
		fns[i] = m[id]
	}
	return fns
}

func (s *Session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			err := s.conn.WriteControl(websocket.PingMessage, nil,
				time.Now().Add(s.config.WriteTimeout))
			s.writeMu.Unlock()
			if err != nil {
				s.logger.Debug("ping failed", "error", err)
				s.Close()
				return
			}
		}
	}
}
