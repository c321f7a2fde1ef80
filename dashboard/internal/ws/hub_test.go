package ws_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/code-nisarg/SunKalp/dashboard/internal/history"
	wsHub "github.com/code-nisarg/SunKalp/dashboard/internal/ws"
	"github.com/code-nisarg/SunKalp/pkg/alert"
	"github.com/code-nisarg/SunKalp/pkg/telemetry"
)

// --- helpers ----------------------------------------------------------------

func newStore(samples ...*telemetry.Sample) *history.Store {
	st := history.New(time.Hour)
	for _, s := range samples {
		st.Append(s)
	}
	return st
}

func sampleAt(t time.Time, voltage float64) *telemetry.Sample {
	return &telemetry.Sample{At: t, Values: map[string]float64{"voltage": voltage}}
}

// startHub starts a test HTTP server with the hub as its handler. The hub's
// Run loop is started with a cancellable context. Returns the ws:// URL and
// the hub.
func startHub(t *testing.T, st *history.Store) (wsURL string, hub *wsHub.Hub) {
	t.Helper()

	hub = wsHub.New(st)
	ctx, cancel := context.WithCancel(context.Background())

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	go hub.Run(ctx)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	wsURL = "ws" + strings.TrimPrefix(srv.URL, "http")
	return wsURL, hub
}

// dial connects a WebSocket client to wsURL and returns the connection.
func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMessage reads one text message from conn with a short deadline.
func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(msg, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

// --- tests ------------------------------------------------------------------

func TestHub_Connect_ReceivesBackfill(t *testing.T) {
	now := time.Now()
	st := newStore(sampleAt(now.Add(-time.Minute), 230), sampleAt(now, 240))
	wsURL, _ := startHub(t, st)

	conn := dial(t, wsURL)
	m := readMessage(t, conn)

	if m["event"] != "backfill" {
		t.Errorf("event: got %v, want backfill", m["event"])
	}
	data, ok := m["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	points, ok := data["points"].([]interface{})
	if !ok {
		t.Fatal("points: missing or wrong type")
	}
	if len(points) != 2 {
		t.Errorf("points: got %d, want 2", len(points))
	}
}

func TestHub_BroadcastSample(t *testing.T) {
	st := newStore(sampleAt(time.Now(), 254.1))
	wsURL, hub := startHub(t, st)

	conn := dial(t, wsURL)
	readMessage(t, conn) // drain backfill

	hub.BroadcastSample()
	m := readMessage(t, conn)

	if m["event"] != "sample" {
		t.Errorf("event: got %v, want sample", m["event"])
	}
	data := m["data"].(map[string]interface{})
	values, ok := data["values"].(map[string]interface{})
	if !ok {
		t.Fatal("values: missing or wrong type")
	}
	if values["voltage"] != 254.1 {
		t.Errorf("voltage: got %v, want 254.1", values["voltage"])
	}
}

func TestHub_BroadcastAlerts(t *testing.T) {
	wsURL, hub := startHub(t, newStore())

	conn := dial(t, wsURL)
	readMessage(t, conn) // drain backfill

	hub.BroadcastAlerts([]alert.Fired{
		{Metric: "voltage", Value: 254, Limit: 250, Direction: alert.Above, At: time.Now()},
	})
	m := readMessage(t, conn)

	if m["event"] != "alerts" {
		t.Errorf("event: got %v, want alerts", m["event"])
	}
	fired, ok := m["data"].([]interface{})
	if !ok {
		t.Fatal("data: missing or wrong type")
	}
	if len(fired) != 1 {
		t.Fatalf("alerts: got %d, want 1", len(fired))
	}
	a := fired[0].(map[string]interface{})
	if a["metric"] != "voltage" {
		t.Errorf("metric: got %v, want voltage", a["metric"])
	}
}

func TestHub_BroadcastAlerts_EmptyIsNoOp(t *testing.T) {
	wsURL, hub := startHub(t, newStore())

	conn := dial(t, wsURL)
	readMessage(t, conn) // drain backfill

	hub.BroadcastAlerts(nil)
	hub.BroadcastSample() // empty store — also a no-op

	// Nothing should have been sent; the next read times out.
	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected read timeout, got a message")
	}
}

func TestHub_BroadcastWhileClientsChurn(t *testing.T) {
	st := newStore(sampleAt(time.Now(), 240))
	wsURL, hub := startHub(t, st)

	// Hammer broadcasts while clients connect and drop. A send racing a
	// disconnect must never hit a closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			hub.BroadcastSample()
		}
	}()

	for i := 0; i < 20; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		conn.Close()
	}
	<-done
}

func TestHub_Count(t *testing.T) {
	wsURL, hub := startHub(t, newStore())

	if hub.Count() != 0 {
		t.Fatalf("Count before connect: got %d, want 0", hub.Count())
	}
	conn := dial(t, wsURL)
	readMessage(t, conn)
	if hub.Count() != 1 {
		t.Errorf("Count after connect: got %d, want 1", hub.Count())
	}
}
