package observer

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"stalkercraft.ai/internal/observerproto"
	"stalkercraft.ai/internal/telemetry"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitSessions(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Sessions() != n {
		if time.Now().After(deadline) {
			t.Fatalf("sessions=%d want %d", s.Sessions(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServerStreamsFilteredEvents(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.WSHandler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	if err := conn.WriteJSON(observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Kinds:           []telemetry.Kind{telemetry.KindRespawned},
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitSessions(t, s, 1)

	_ = s.Emit(telemetry.NewEvent(10, telemetry.KindStuck, 1, [3]float64{}, nil))
	_ = s.Emit(telemetry.NewEvent(11, telemetry.KindRespawned, 1, [3]float64{5, 64, 5}, nil))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg observerproto.EventMsg
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != observerproto.TypeEvent || msg.Event.Kind != telemetry.KindRespawned || msg.Event.Tick != 11 {
		t.Fatalf("msg=%+v", msg)
	}
}

func TestServerRejectsBadHandshake(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.WSHandler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	if err := conn.WriteJSON(map[string]string{"type": "HELLO"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("err=%v want policy violation close", err)
	}
	if s.Sessions() != 0 {
		t.Fatalf("rejected client registered")
	}
}

func TestRemoteMustBeLoopback(t *testing.T) {
	s := NewServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/observer/ws", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	rw := httptest.NewRecorder()
	s.WSHandler()(rw, req)
	if rw.Code != http.StatusForbidden {
		t.Fatalf("code=%d", rw.Code)
	}
	for addr, want := range map[string]bool{"127.0.0.1:80": true, "[::1]:80": true, "10.0.0.1:80": false} {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("isLoopbackRemote(%q)=%v", addr, got)
		}
	}
}

func TestFilterMatch(t *testing.T) {
	f := observerproto.SubscribeMsg{AgentID: 2}.Filter()
	if f.Match(telemetry.Event{Agent: 1}) || !f.Match(telemetry.Event{Agent: 2, Kind: telemetry.KindWake}) {
		t.Fatalf("agent filter")
	}
}
