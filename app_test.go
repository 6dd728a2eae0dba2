package pagekit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pagekit-dev/pagekit/internal/config"
	"github.com/pagekit-dev/pagekit/pkg/growl"
	"github.com/pagekit-dev/pagekit/pkg/live"
	"github.com/pagekit-dev/pagekit/pkg/scrolltop"
	"github.com/prometheus/client_golang/prometheus"
)

func newTestApp(t *testing.T, modify func(c *config.Config)) *App {
	t.Helper()
	cfg := config.New()
	if modify != nil {
		modify(cfg)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewApp(cfg, WithLogger(logger), WithRegistry(prometheus.NewRegistry()))
}

// dialPage connects a fake page and waits until the app has set it up.
func dialPage(t *testing.T, app *App, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + config.DefaultLivePath
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// The scroll-to-top control subscribes to clicks on setup.
	f := readFrame(t, conn)
	if f.Type != live.FrameListen || f.Selector != scrolltop.DefaultSelector {
		t.Fatalf("expected listen frame for %s, got %+v", scrolltop.DefaultSelector, f)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) live.ServerFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f live.ServerFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func TestIndexAndClient(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.Name = "Blog & Notes" })

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Blog &amp; Notes") {
		t.Error("expected escaped site name in page")
	}
	if !strings.Contains(body, `id="scroll-to-top"`) {
		t.Error("expected scroll-to-top affordance in page")
	}

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("GET", "/pagekit.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "javascript") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "pagekit:growl") {
		t.Error("expected client to handle growl events")
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestNotifyWithoutPages(t *testing.T) {
	app := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/notify", strings.NewReader(`{"message":"hi","severity":"info"}`))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp NotifyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Delivered != 0 {
		t.Errorf("expected 0 delivered, got %d", resp.Delivered)
	}
}

func TestNotifyRejectsBadRequests(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "hello"},
		{"unknown severity", `{"message":"x","severity":"warning"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest("POST", "/api/notify", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body["code"] != "E300" {
				t.Errorf("expected code E300, got %v", body)
			}
		})
	}
}

func TestMarkupEndpoints(t *testing.T) {
	app := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("POST", "/api/nl2br", strings.NewReader("a\nb")))
	if rec.Body.String() != "a<br />b" {
		t.Errorf("nl2br = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("POST", "/api/br2nl", strings.NewReader("a<br>b<br/>c<br />d")))
	if rec.Body.String() != "a\nb\nc\nd" {
		t.Errorf("br2nl = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	big := bytes.Repeat([]byte("x"), maxBodyBytes+1)
	app.ServeHTTP(rec, httptest.NewRequest("POST", "/api/nl2br", bytes.NewReader(big)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("GET", config.DefaultMetricsPath, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "pagekit_active_sessions") {
		t.Error("expected active sessions gauge in exposition")
	}

	disabled := false
	app = newTestApp(t, func(c *config.Config) { c.Metrics.Enabled = &disabled })
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("GET", config.DefaultMetricsPath, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with metrics disabled, got %d", rec.Code)
	}
}

func TestLivePageEndToEnd(t *testing.T) {
	app := newTestApp(t, nil)
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	conn := dialPage(t, app, srv)

	// Scroll past the threshold: the affordance becomes visible.
	if err := conn.WriteJSON(live.ClientFrame{Type: live.FrameScroll, Top: 301}); err != nil {
		t.Fatal(err)
	}
	f := readFrame(t, conn)
	if f.Type != live.FrameClass || f.Class != scrolltop.VisibleClass || f.On == nil || !*f.On {
		t.Fatalf("expected visible class frame, got %+v", f)
	}

	// Click it: the page is asked to scroll back to the top slowly.
	if err := conn.WriteJSON(live.ClientFrame{Type: live.FrameClick, Selector: scrolltop.DefaultSelector}); err != nil {
		t.Fatal(err)
	}
	f = readFrame(t, conn)
	if f.Type != live.FrameAnimate || f.Top == nil || *f.Top != 0 || f.Millis != 600 {
		t.Fatalf("expected animate frame, got %+v", f)
	}

	// The page reports the new offset: the affordance hides again.
	if err := conn.WriteJSON(live.ClientFrame{Type: live.FrameScroll, Top: 0}); err != nil {
		t.Fatal(err)
	}
	f = readFrame(t, conn)
	if f.Type != live.FrameClass || f.On == nil || *f.On {
		t.Fatalf("expected hidden class frame, got %+v", f)
	}

	// Broadcast a banner through the API.
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest("POST", "/api/notify",
		strings.NewReader(`{"message":"x","severity":"danger"}`)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var resp NotifyResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Delivered != 1 {
		t.Errorf("expected 1 delivered, got %d", resp.Delivered)
	}

	f = readFrame(t, conn)
	if f.Type != live.FrameEmit || f.Name != growl.EventName {
		t.Fatalf("expected growl emit frame, got %+v", f)
	}
	data := f.Data.(map[string]any)
	if data["message"] != "x" || data["type"] != "danger" {
		t.Errorf("unexpected banner %v", data)
	}
	if data["width"] != float64(500) || data["delay"] != float64(5000) || data["stackup_spacing"] != float64(10) {
		t.Errorf("unexpected display options %v", data)
	}
	if data["allow_dismiss"] != false || data["align"] != "right" || data["ele"] != "body" {
		t.Errorf("unexpected display options %v", data)
	}
}

func TestBroadcastDirect(t *testing.T) {
	app := newTestApp(t, nil)
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	a := dialPage(t, app, srv)
	b := dialPage(t, app, srv)

	if n := app.Broadcast(context.Background(), "", SeverityNone); n != 2 {
		t.Fatalf("expected 2 delivered, got %d", n)
	}
	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		data := f.Data.(map[string]any)
		if data["message"] != "" || data["type"] != nil {
			t.Errorf("expected empty untyped banner, got %v", data)
		}
	}
}

func TestLiveOriginCheck(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) {
		c.Live.AllowedOrigins = []string{"https://blog.example.com"}
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + config.DefaultLivePath
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatal("expected upgrade to be refused for unknown origin")
	}

	header.Set("Origin", "https://blog.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("expected allowed origin to connect: %v", err)
	}
	conn.Close()
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"", SeverityNone, true},
		{"none", SeverityNone, true},
		{"info", SeverityInfo, true},
		{"Danger", SeverityDanger, true},
		{"error", SeverityDanger, true},
		{"success", SeveritySuccess, true},
		{"warning", SeverityNone, false},
	}

	for _, tt := range tests {
		got, ok := ParseSeverity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSeverity(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRootMarkupHelpers(t *testing.T) {
	if NL2BR("a\nb") != "a<br />b" || BR2NL("a<br />b") != "a\nb" {
		t.Error("root markup helpers disagree with pkg/markup")
	}
}
