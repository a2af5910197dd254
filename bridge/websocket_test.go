package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flavioheleno/retropanel/events"
	"github.com/gorilla/websocket"
)

// controller upgrades one connection, sends cmds and forwards every
// message it receives.
func controller(t *testing.T, cmds []string, got chan<- string) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade() error = %v", err)
			return
		}
		defer conn.Close()
		for _, c := range cmds {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(c)); err != nil {
				t.Errorf("WriteMessage() error = %v", err)
				return
			}
		}
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			got <- string(msg)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWebSocket(t *testing.T) {
	got := make(chan string, 4)
	srv := controller(t, []string{
		`{"cmd":"set_volume","value":5}`,
		"",
		`{"cmd":"set_metadata","text":"Blue Train"}` + "\n",
	}, got)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := DialWebSocket(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("DialWebSocket() error = %v", err)
	}
	defer s.Close()

	h := &recorder{}
	s.SetHandler(h)
	deadline := time.Now().Add(5 * time.Second)
	for len(h.calls) < 2 && time.Now().Before(deadline) {
		s.Update()
		time.Sleep(time.Millisecond)
	}
	want := []string{"volume:5", "metadata:Blue Train"}
	if strings.Join(h.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", h.calls, want)
	}

	e := events.New(events.VolumeChanged, 42, events.Object(events.Number("value", 5)))
	if err := s.PublishEvent(e); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}
	select {
	case msg := <-got:
		wantMsg := `{"type_id":8,"type_name":"settings.volume","timestamp":42,"value":{"value":5}}`
		if msg != wantMsg {
			t.Errorf("controller got %s, want %s", msg, wantMsg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("controller got nothing")
	}
}

func TestDialWebSocketError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, err := DialWebSocket(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err == nil || !strings.Contains(err.Error(), "bridge: dial") {
		t.Errorf("DialWebSocket() error = %v, want bridge: dial", err)
	}
}
