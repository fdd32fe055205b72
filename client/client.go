// Package client is the synchronization hook a game screen holds onto: one
// duplex connection to the coordinator, per-event callbacks, and an
// auto-rejoin reconnect loop with exponential backoff.
package client

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	transport "github.com/rocketscienceinc/gobbler-backend/transport/websocket"
)

const (
	maxReconnectAttempts  = 5
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 16 * time.Second

	// a fresh connection gets a moment to settle before the rejoin message
	rejoinSettleDelay = 250 * time.Millisecond
)

// ErrReconnectExhausted surfaces through the terminal-error callback once the
// attempt budget is spent.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// Handler receives one inbound event.
type Handler func(event *transport.Event)

// Client maintains at most one active connection per game screen.
type Client struct {
	logger *slog.Logger
	url    string
	store  Store

	mu             sync.Mutex
	conn           *websocket.Conn
	handlers       map[string]Handler
	onTerminal     func(error)
	identity       string
	playerName     string
	attempts       int
	delays         *backoff.ExponentialBackOff
	reconnectTimer *time.Timer
	everConnected  bool
	autoRejoin     bool
	closed         bool
}

// New builds a hook for the given coordinator URL. The durable player
// identity comes from the store's saved session, or is minted on first use.
func New(logger *slog.Logger, url string, store Store, autoRejoin bool) *Client {
	identity := uuid.NewString()
	if session, ok := store.LoadSession(); ok && session.Identity != "" {
		identity = session.Identity
	}

	delays := backoff.NewExponentialBackOff()
	delays.InitialInterval = initialReconnectDelay
	delays.Multiplier = 2
	delays.MaxInterval = maxReconnectDelay
	delays.RandomizationFactor = 0
	delays.MaxElapsedTime = 0

	return &Client{
		logger:     logger.With("component", "game-client"),
		url:        url,
		store:      store,
		handlers:   make(map[string]Handler),
		identity:   identity,
		delays:     delays,
		autoRejoin: autoRejoin,
	}
}

// On registers the callback for one event type, replacing any previous one.
func (that *Client) On(eventType string, handler Handler) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.handlers[eventType] = handler
}

// OnTerminalError registers the callback fired when reconnecting gives up.
func (that *Client) OnTerminalError(handler func(error)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.onTerminal = handler
}

// Connect dials the coordinator and starts the read loop. On a reconnect it
// also replays the rejoin handshake from the saved session.
func (that *Client) Connect() error {
	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		return errors.New("client is closed")
	}
	if that.conn != nil {
		that.mu.Unlock()
		return errors.New("already connected")
	}
	reconnecting := that.everConnected
	that.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(that.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", that.url, err)
	}

	that.mu.Lock()
	that.conn = conn
	that.everConnected = true
	that.attempts = 0
	that.delays.Reset()
	that.mu.Unlock()

	if reconnecting {
		that.rejoin()
		that.dispatch(&transport.Event{Type: transport.EventReconnected})
	}

	go that.readLoop(conn)

	return nil
}

// Disconnect is the caller-initiated teardown: it cancels any pending
// reconnect timer and suppresses future auto-reconnects.
func (that *Client) Disconnect() {
	that.mu.Lock()
	that.closed = true
	if that.reconnectTimer != nil {
		that.reconnectTimer.Stop()
		that.reconnectTimer = nil
	}
	conn := that.conn
	that.conn = nil
	that.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Identity is the durable player id sent with join messages.
func (that *Client) Identity() string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.identity
}

// CreateRoom asks the coordinator for a new room with the caller seated.
func (that *Client) CreateRoom(playerName string) error {
	that.setPlayerName(playerName)
	return that.send(&transport.Message{Type: transport.MsgCreateRoom, PlayerName: playerName, UUID: that.Identity()})
}

func (that *Client) JoinRoom(roomID, playerName string) error {
	that.setPlayerName(playerName)
	return that.send(&transport.Message{Type: transport.MsgJoinRoom, RoomID: roomID, PlayerName: playerName, UUID: that.Identity()})
}

func (that *Client) MakeMove(move entity.Move) error {
	return that.send(&transport.Message{Type: transport.MsgMakeMove, Move: &move})
}

func (that *Client) LeaveRoom() error {
	if err := that.store.ClearSession(); err != nil {
		that.logger.Error("failed to clear saved session", "error", err)
	}

	return that.send(&transport.Message{Type: transport.MsgLeaveRoom})
}

func (that *Client) RequestRematch() error {
	return that.send(&transport.Message{Type: transport.MsgRematchRequest})
}

func (that *Client) AcceptRematch() error {
	return that.send(&transport.Message{Type: transport.MsgRematchAccept})
}

func (that *Client) DeclineRematch() error {
	return that.send(&transport.Message{Type: transport.MsgRematchDecline})
}

func (that *Client) SendEmoji(emoji string) error {
	return that.send(&transport.Message{Type: transport.MsgEmoji, Emoji: emoji})
}

func (that *Client) send(msg *transport.Message) error {
	that.mu.Lock()
	conn := that.conn
	that.mu.Unlock()

	if conn == nil {
		return errors.New("not connected")
	}

	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}

	return nil
}

func (that *Client) setPlayerName(name string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.playerName = name
}

func (that *Client) readLoop(conn *websocket.Conn) {
	for {
		var event transport.Event
		if err := conn.ReadJSON(&event); err != nil {
			that.connectionLost(err)
			return
		}

		that.rememberSeat(&event)
		that.dispatch(&event)
	}
}

// rememberSeat persists the room/seat identity whenever the server assigns
// one, so a later reconnect can replay the rejoin handshake.
func (that *Client) rememberSeat(event *transport.Event) {
	if event.Type != transport.EventRoomCreated && event.Type != transport.EventRoomJoined {
		return
	}

	that.mu.Lock()
	session := &Session{
		RoomID:     event.RoomID,
		Color:      event.Color,
		PlayerName: that.playerName,
		Identity:   that.identity,
	}
	that.mu.Unlock()

	if err := that.store.SaveSession(session); err != nil {
		that.logger.Error("failed to save session", "error", err)
	}
}

func (that *Client) dispatch(event *transport.Event) {
	that.mu.Lock()
	handler := that.handlers[event.Type]
	that.mu.Unlock()

	if handler != nil {
		handler(event)
	}
}

// rejoin replays the join handshake from the saved session.
func (that *Client) rejoin() {
	if !that.autoRejoin {
		return
	}

	session, ok := that.store.LoadSession()
	if !ok {
		return
	}

	time.Sleep(rejoinSettleDelay)

	msg := &transport.Message{
		Type:       transport.MsgJoinRoom,
		RoomID:     session.RoomID,
		PlayerName: session.PlayerName,
		UUID:       session.Identity,
	}
	if err := that.send(msg); err != nil {
		that.logger.Error("failed to send rejoin", "roomID", session.RoomID, "error", err)
	}
}

// connectionLost schedules a reconnect unless the caller disconnected on
// purpose or the attempt budget ran out.
func (that *Client) connectionLost(cause error) {
	that.mu.Lock()

	if that.conn != nil {
		_ = that.conn.Close()
		that.conn = nil
	}

	if that.closed {
		that.mu.Unlock()
		return
	}

	if that.attempts >= maxReconnectAttempts {
		terminal := that.onTerminal
		that.mu.Unlock()

		that.logger.Error("giving up on reconnecting", "attempts", maxReconnectAttempts, "cause", cause)
		if terminal != nil {
			terminal(fmt.Errorf("%w: %w", ErrReconnectExhausted, cause))
		}
		return
	}

	that.attempts++
	attempt := that.attempts
	delay := that.delays.NextBackOff()

	that.reconnectTimer = time.AfterFunc(delay, func() {
		if err := that.Connect(); err != nil {
			that.connectionLost(err)
		}
	})
	that.mu.Unlock()

	that.logger.Info("connection lost, reconnect scheduled", "attempt", attempt, "delay", delay, "cause", cause)
}
