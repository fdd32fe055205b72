package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	"github.com/rocketscienceinc/gobbler-backend/internal/service"
)

const disconnectTimeout = 5 * time.Second

type roomManager interface {
	CreateRoom(ctx context.Context) (*entity.Room, error)
	GetRoom(ctx context.Context, roomID string) (*entity.Room, error)
	JoinRoom(ctx context.Context, roomID, playerName, identity string) (entity.Color, *entity.Room, error)
	LeaveRoom(ctx context.Context, roomID string, color entity.Color) (*entity.Room, error)
	UpdateGameState(ctx context.Context, roomID string, state *entity.GameState) (*entity.Room, error)
	ResetForRematch(ctx context.Context, roomID string, lastWinner entity.Color) (*entity.Room, error)
}

type resultReporter interface {
	Report(result *service.GameResult)
}

// client wraps one live connection. gorilla allows a single concurrent
// writer, so every send goes through the mutex.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (that *client) send(event *Event) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.conn.WriteJSON(event); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// roomRuntime is per-room bookkeeping that only matters while connections
// are live: the move history, the last winner (feeds the rematch fairness
// rule) and the pending rematch request.
type roomRuntime struct {
	history            entity.History
	lastWinner         entity.Color
	rematchRequestedBy entity.Color
}

// Server is the connection coordinator: it maps live connections to seats,
// applies inbound messages against the room manager and the rule engine, and
// fans resulting events out to every seat in the room.
type Server struct {
	logger   *slog.Logger
	rooms    roomManager
	reporter resultReporter

	upgrader websocket.Upgrader
	registry *registry

	mu       sync.Mutex
	runtimes map[string]*roomRuntime

	handlers map[string]func(ctx context.Context, c *client, msg *Message) error
}

func New(logger *slog.Logger, rooms roomManager, reporter resultReporter) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		rooms:  rooms,

		reporter: reporter,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		registry: newRegistry(),
		runtimes: make(map[string]*roomRuntime),
		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers[MsgCreateRoom] = server.handleCreateRoom
	server.handlers[MsgJoinRoom] = server.handleJoinRoom
	server.handlers[MsgMakeMove] = server.handleMakeMove
	server.handlers[MsgLeaveRoom] = server.handleLeaveRoom
	server.handlers[MsgRematchRequest] = server.handleRematchRequest
	server.handlers[MsgRematchAccept] = server.handleRematchAccept
	server.handlers[MsgRematchDecline] = server.handleRematchDecline
	server.handlers[MsgEmoji] = server.handleEmoji

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.HandleWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// HandleWS upgrades the connection and runs its read loop. Messages from one
// connection are handled sequentially; broadcasts for a single inbound event
// are sent synchronously inside its handler, so every seat observes the same
// total order of state transitions.
func (that *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "HandleWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn}

	defer func() {
		that.handleDisconnect(c)
		_ = conn.Close()
	}()

	log.Info("WebSocket connection established", "remote", conn.RemoteAddr().String())

	for {
		var msg Message
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("connection closed unexpectedly", "error", err)
			}
			return
		}

		handler, ok := that.handlers[msg.Type]
		if !ok {
			log.Warn("unknown message type", "type", msg.Type)
			_ = that.sendError(c, "unknown message type")
			continue
		}

		if err = handler(r.Context(), c, &msg); err != nil {
			log.Error("error processing message", "type", msg.Type, "error", err)
		}
	}
}

// runtime returns the room's in-memory bookkeeping, creating it on first use.
func (that *Server) runtime(roomID string) *roomRuntime {
	that.mu.Lock()
	defer that.mu.Unlock()

	rt, ok := that.runtimes[roomID]
	if !ok {
		rt = &roomRuntime{}
		that.runtimes[roomID] = rt
	}

	return rt
}

func (that *Server) sendError(c *client, message string) error {
	return c.send(&Event{Type: EventError, Message: message})
}
