package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T, hub *Hub, roomID uint) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(roomID, conn, 1)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(roomID, conn)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesOnlyRoomClients(t *testing.T) {
	hub := NewHub()
	roomA := newHubServer(t, hub, 1)
	roomB := newHubServer(t, hub, 2)

	a := dial(t, roomA)
	b := dial(t, roomB)

	require.Eventually(t, func() bool {
		return hub.ClientCount(1) == 1 && hub.ClientCount(2) == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(1, EventPhotoUploaded, map[string]string{"public_id": "p1"})

	a.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := a.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, EventPhotoUploaded, msg.Event)
	assert.Equal(t, uint(1), msg.RoomID)

	b.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = b.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub, 7)

	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount(7) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount(7) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishWithoutClientsIsNoop(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Publish(42, EventReminderSent, nil) })
	assert.Zero(t, hub.ClientCount(42))
}

func TestHub_PublishDoesNotWaitForSlowClient(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub, 3)
	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount(3) == 1 }, time.Second, 10*time.Millisecond)

	// Client tanpa writer: antreannya tidak pernah dikosongkan
	stuck := &client{conn: conn, userID: 99, send: make(chan []byte)}
	hub.mutex.Lock()
	hub.addLocked(3, stuck)
	hub.mutex.Unlock()

	done := make(chan struct{})
	go func() {
		hub.Publish(3, EventReminderSent, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a client that never reads")
	}

	hub.mutex.Lock()
	_, stillThere := hub.rooms[3][stuck.conn]
	hub.mutex.Unlock()
	assert.False(t, stillThere)
}

func TestHub_CloseRoomSendsEventThenDisconnects(t *testing.T) {
	hub := NewHub()
	server := newHubServer(t, hub, 5)
	conn := dial(t, server)
	require.Eventually(t, func() bool { return hub.ClientCount(5) == 1 }, time.Second, 10*time.Millisecond)

	hub.CloseRoom(5)
	assert.Zero(t, hub.ClientCount(5))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, EventRoomClosed, msg.Event)

	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}
