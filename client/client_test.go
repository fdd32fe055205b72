package client

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	transport "github.com/rocketscienceinc/gobbler-backend/transport/websocket"
)

// scriptedServer accepts connections and lets a test replay canned events and
// inspect what the client sent.
type scriptedServer struct {
	httpServer *httptest.Server

	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
}

func newScriptedServer(t *testing.T) *scriptedServer {
	t.Helper()

	server := &scriptedServer{conns: make(chan *websocket.Conn, 4)}
	server.httpServer = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := server.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		server.conns <- conn
	}))

	t.Cleanup(server.httpServer.Close)

	return server
}

func (that *scriptedServer) url() string {
	return "ws" + strings.TrimPrefix(that.httpServer.URL, "http")
}

func (that *scriptedServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()

	select {
	case conn := <-that.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("no connection arrived")
		return nil
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) *transport.Message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var msg transport.Message
	require.NoError(t, conn.ReadJSON(&msg))

	return &msg
}

func newTestClient(t *testing.T, url string, store Store, autoRejoin bool) *Client {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(logger, url, store, autoRejoin)
	t.Cleanup(c.Disconnect)

	return c
}

func TestClient_Identity(t *testing.T) {
	t.Run("Fresh client mints a durable identity", func(t *testing.T) {
		c := newTestClient(t, "ws://unused", NewFileStore(t.TempDir()), false)

		assert.NotEmpty(t, c.Identity())
	})

	t.Run("Saved session identity is reused", func(t *testing.T) {
		// Given: a store with a prior session
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.SaveSession(&Session{RoomID: "AB12", Identity: "id-alice"}))

		c := newTestClient(t, "ws://unused", store, false)

		assert.Equal(t, "id-alice", c.Identity())
	})
}

func TestClient_Connect(t *testing.T) {
	t.Run("Events dispatch to the registered handler", func(t *testing.T) {
		server := newScriptedServer(t)
		c := newTestClient(t, server.url(), NewFileStore(t.TempDir()), false)

		received := make(chan *transport.Event, 1)
		c.On(transport.EventWaitingForOpponent, func(event *transport.Event) {
			received <- event
		})

		require.NoError(t, c.Connect())
		conn := server.accept(t)

		require.NoError(t, conn.WriteJSON(&transport.Event{Type: transport.EventWaitingForOpponent}))

		select {
		case event := <-received:
			assert.Equal(t, transport.EventWaitingForOpponent, event.Type)
		case <-time.After(5 * time.Second):
			t.Fatal("handler never fired")
		}
	})

	t.Run("Second connect is refused while connected", func(t *testing.T) {
		server := newScriptedServer(t)
		c := newTestClient(t, server.url(), NewFileStore(t.TempDir()), false)

		require.NoError(t, c.Connect())
		server.accept(t)

		assert.Error(t, c.Connect())
	})

	t.Run("Room assignment persists the session", func(t *testing.T) {
		// Given: a connected client that created a room
		server := newScriptedServer(t)
		store := NewFileStore(t.TempDir())
		c := newTestClient(t, server.url(), store, false)

		seated := make(chan struct{})
		c.On(transport.EventRoomCreated, func(*transport.Event) { close(seated) })

		require.NoError(t, c.Connect())
		conn := server.accept(t)

		require.NoError(t, c.CreateRoom("alice"))
		msg := readMessage(t, conn)
		require.Equal(t, transport.MsgCreateRoom, msg.Type)
		assert.Equal(t, c.Identity(), msg.UUID)

		// When: the server seats the client
		require.NoError(t, conn.WriteJSON(&transport.Event{
			Type:   transport.EventRoomCreated,
			RoomID: "AB12",
			Color:  entity.ColorRed,
		}))

		select {
		case <-seated:
		case <-time.After(5 * time.Second):
			t.Fatal("room_created never dispatched")
		}

		// Then: the saved session carries the seat for a later rejoin
		session, ok := store.LoadSession()
		require.True(t, ok)
		assert.Equal(t, "AB12", session.RoomID)
		assert.Equal(t, entity.ColorRed, session.Color)
		assert.Equal(t, "alice", session.PlayerName)
		assert.Equal(t, c.Identity(), session.Identity)
	})
}

func TestClient_Reconnect(t *testing.T) {
	t.Run("Dropped connection redials, rejoins and synthesizes reconnected", func(t *testing.T) {
		server := newScriptedServer(t)
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.SaveSession(&Session{
			RoomID:     "AB12",
			Color:      entity.ColorRed,
			PlayerName: "alice",
			Identity:   "id-alice",
		}))

		c := newTestClient(t, server.url(), store, true)

		reconnected := make(chan struct{})
		c.On(transport.EventReconnected, func(*transport.Event) { close(reconnected) })

		require.NoError(t, c.Connect())
		first := server.accept(t)

		// When: the server drops the connection
		require.NoError(t, first.Close())

		// Then: a second connection arrives and replays the join handshake
		second := server.accept(t)
		msg := readMessage(t, second)
		assert.Equal(t, transport.MsgJoinRoom, msg.Type)
		assert.Equal(t, "AB12", msg.RoomID)
		assert.Equal(t, "alice", msg.PlayerName)
		assert.Equal(t, "id-alice", msg.UUID)

		select {
		case <-reconnected:
		case <-time.After(5 * time.Second):
			t.Fatal("reconnected event never dispatched")
		}
	})

	t.Run("Disconnect suppresses the reconnect loop", func(t *testing.T) {
		server := newScriptedServer(t)
		c := newTestClient(t, server.url(), NewFileStore(t.TempDir()), true)

		require.NoError(t, c.Connect())
		server.accept(t)

		// When: the caller tears down on purpose
		c.Disconnect()

		// Then: no redial happens and the client stays closed
		select {
		case <-server.conns:
			t.Fatal("unexpected reconnect after Disconnect")
		case <-time.After(2 * time.Second):
		}

		assert.Error(t, c.Connect())
		assert.Error(t, c.SendEmoji("wave"))
	})
}

func TestClient_Send(t *testing.T) {
	t.Run("Sending before connecting fails", func(t *testing.T) {
		c := newTestClient(t, "ws://unused", NewFileStore(t.TempDir()), false)

		assert.Error(t, c.MakeMove(entity.NewPlacement(0, 0, entity.SizeSmall)))
	})

	t.Run("Leave clears the saved session", func(t *testing.T) {
		server := newScriptedServer(t)
		store := NewFileStore(t.TempDir())
		require.NoError(t, store.SaveSession(&Session{RoomID: "AB12", Identity: "id-alice"}))

		c := newTestClient(t, server.url(), store, false)
		require.NoError(t, c.Connect())
		conn := server.accept(t)

		require.NoError(t, c.LeaveRoom())
		msg := readMessage(t, conn)
		assert.Equal(t, transport.MsgLeaveRoom, msg.Type)

		_, ok := store.LoadSession()
		assert.False(t, ok)
	})
}
