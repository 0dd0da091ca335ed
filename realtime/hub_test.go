package realtime_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"github.com/wachat/wachat-backend/models"
	"github.com/wachat/wachat-backend/realtime"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newHubServer starts a hub and an HTTP server that attaches every
// connection to it.
func newHubServer(t *testing.T) (*realtime.Hub, *httptest.Server) {
	t.Helper()

	hub := realtime.NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		realtime.NewClient(hub, conn).Start()
	}))
	t.Cleanup(server.Close)

	return hub, server
}

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) realtime.Envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read websocket message: %v", err)
	}

	var env realtime.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Failed to decode event envelope: %v", err)
	}
	return env
}

func TestHubEmitReachesConnectedClient(t *testing.T) {
	hub, server := newHubServer(t)
	conn := dialWS(t, server)

	// Give the server handler time to register the client with the hub.
	time.Sleep(100 * time.Millisecond)

	msg := &models.Message{ID: 7, WaID: "111", Message: "hi", Status: models.StatusSent}
	hub.Emit(realtime.EventNewMessage, msg)

	env := readEnvelope(t, conn)
	assert.Equal(t, realtime.EventNewMessage, env.Event)
	assert.Equal(t, uint(7), env.Data.ID)
	assert.Equal(t, "111", env.Data.WaID)
	assert.Equal(t, "hi", env.Data.Message)
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub, server := newHubServer(t)
	first := dialWS(t, server)
	second := dialWS(t, server)
	time.Sleep(100 * time.Millisecond)

	hub.Emit(realtime.EventStatusUpdate, &models.Message{ID: 1, WaID: "222", Status: models.StatusRead})

	// Every connected client receives every event; filtering happens
	// client-side.
	for _, conn := range []*websocket.Conn{first, second} {
		env := readEnvelope(t, conn)
		assert.Equal(t, realtime.EventStatusUpdate, env.Event)
		assert.Equal(t, models.StatusRead, env.Data.Status)
	}
}

func TestHubLateSubscriberMissesEarlierEvents(t *testing.T) {
	hub, server := newHubServer(t)

	// Emitted with nobody connected: dropped, no backlog.
	hub.Emit(realtime.EventNewMessage, &models.Message{ID: 1, WaID: "111", Message: "early"})
	time.Sleep(50 * time.Millisecond)

	conn := dialWS(t, server)
	time.Sleep(100 * time.Millisecond)

	hub.Emit(realtime.EventNewMessage, &models.Message{ID: 2, WaID: "111", Message: "late"})

	env := readEnvelope(t, conn)
	assert.Equal(t, "late", env.Data.Message, "only events emitted after connecting are delivered")
}
