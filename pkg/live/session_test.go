package live

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// liveTestServer starts a Handler and returns a dialled client plus the
// server-side session.
func liveTestServer(t *testing.T, setup SetupFunc) (*websocket.Conn, *Session, *Hub) {
	t.Helper()

	hub := NewHub()
	sessions := make(chan *Session, 1)
	h := NewHandler(hub, DefaultConfig(), func(s *Session) func() {
		var teardown func()
		if setup != nil {
			teardown = setup(s)
		}
		sessions <- s
		return teardown
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case s := <-sessions:
		return conn, s, hub
	case <-time.After(2 * time.Second):
		t.Fatal("session was not set up")
		return nil, nil, nil
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f ServerFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func sendFrame(t *testing.T, conn *websocket.Conn, f ClientFrame) {
	t.Helper()
	if err := conn.WriteJSON(f); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func TestSessionEmit(t *testing.T) {
	conn, s, hub := liveTestServer(t, nil)

	if hub.Len() != 1 {
		t.Fatalf("expected 1 session in hub, got %d", hub.Len())
	}
	if _, ok := hub.Get(s.ID); !ok {
		t.Fatal("expected session registered by ID")
	}

	if err := s.Emit("pagekit:growl", map[string]any{"message": "hi"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	f := readFrame(t, conn)
	if f.Type != FrameEmit || f.Name != "pagekit:growl" {
		t.Fatalf("unexpected frame %+v", f)
	}
	data := f.Data.(map[string]any)
	if data["message"] != "hi" {
		t.Errorf("unexpected data %v", data)
	}
}

func TestSessionClassAndAnimateFrames(t *testing.T) {
	conn, s, _ := liveTestServer(t, nil)

	if err := s.SetClass("a#top", "visible", false); err != nil {
		t.Fatalf("SetClass: %v", err)
	}
	f := readFrame(t, conn)
	if f.Type != FrameClass || f.Selector != "a#top" || f.Class != "visible" {
		t.Fatalf("unexpected frame %+v", f)
	}
	if f.On == nil || *f.On {
		t.Errorf("expected on=false to be sent, got %v", f.On)
	}

	if err := s.AnimateScrollTop(0, 600*time.Millisecond); err != nil {
		t.Fatalf("AnimateScrollTop: %v", err)
	}
	f = readFrame(t, conn)
	if f.Type != FrameAnimate || f.Top == nil || *f.Top != 0 || f.Millis != 600 {
		t.Fatalf("unexpected frame %+v", f)
	}
}

func TestSessionScrollDispatch(t *testing.T) {
	got := make(chan int, 1)
	conn, _, _ := liveTestServer(t, func(s *Session) func() {
		return s.OnScroll(func() { got <- s.ScrollTop() })
	})

	sendFrame(t, conn, ClientFrame{Type: FrameScroll, Top: 420})

	select {
	case top := <-got:
		if top != 420 {
			t.Errorf("expected scroll top 420, got %d", top)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scroll handler not called")
	}
}

func TestSessionClickListenLifecycle(t *testing.T) {
	clicks := make(chan struct{}, 1)
	var dispose func()
	conn, _, _ := liveTestServer(t, func(s *Session) func() {
		dispose = s.OnClick("a#scroll-to-top", func() { clicks <- struct{}{} })
		return nil
	})

	f := readFrame(t, conn)
	if f.Type != FrameListen || f.Selector != "a#scroll-to-top" {
		t.Fatalf("expected listen frame, got %+v", f)
	}

	sendFrame(t, conn, ClientFrame{Type: FrameClick, Selector: "a#other"})
	sendFrame(t, conn, ClientFrame{Type: FrameClick, Selector: "a#scroll-to-top"})

	select {
	case <-clicks:
	case <-time.After(2 * time.Second):
		t.Fatal("click handler not called")
	}

	dispose()
	dispose()

	f = readFrame(t, conn)
	if f.Type != FrameUnlisten || f.Selector != "a#scroll-to-top" {
		t.Fatalf("expected unlisten frame, got %+v", f)
	}
}

func TestSessionWriteAfterClose(t *testing.T) {
	_, s, _ := liveTestServer(t, nil)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.IsClosed() {
		t.Fatal("expected session closed")
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("expected Done to be closed")
	}

	err := s.Emit("x", nil)
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestHubRemovesEndedSession(t *testing.T) {
	conn, s, hub := liveTestServer(t, nil)

	conn.Close()

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end after client disconnect")
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.Len() != 0 {
		t.Errorf("expected empty hub, got %d", hub.Len())
	}
}

func TestServerFrameJSON(t *testing.T) {
	data, err := json.Marshal(animateFrame(0, 600*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"t":"animate","top":0,"ms":600}` {
		t.Errorf("unexpected JSON %s", data)
	}

	data, err = json.Marshal(classFrame("a", "visible", true))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"t":"class","sel":"a","class":"visible","on":true}` {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	d := DefaultConfig()
	if c.ReadTimeout != d.ReadTimeout || c.WriteTimeout != d.WriteTimeout ||
		c.HeartbeatInterval != d.HeartbeatInterval || c.MaxMessageSize != d.MaxMessageSize {
		t.Errorf("unexpected defaults %+v", c)
	}
	if c.Logger == nil {
		t.Error("expected default logger")
	}
}
