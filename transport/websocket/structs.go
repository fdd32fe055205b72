package websocket

import (
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

// Client-to-server message types.
const (
	MsgCreateRoom     = "create_room"
	MsgJoinRoom       = "join_room"
	MsgMakeMove       = "make_move"
	MsgLeaveRoom      = "leave_room"
	MsgRematchRequest = "rematch_request"
	MsgRematchAccept  = "rematch_accept"
	MsgRematchDecline = "rematch_decline"
	MsgEmoji          = "emoji"
)

// Server-to-client event types.
const (
	EventRoomCreated        = "room_created"
	EventRoomJoined         = "room_joined"
	EventWaitingForOpponent = "waiting_for_opponent"
	EventOpponentJoined     = "opponent_joined"
	EventGameStart          = "game_start"
	EventMoveMade           = "move_made"
	EventGameOver           = "game_over"
	EventOpponentLeft       = "opponent_left"
	EventInvalidMove        = "invalid_move"
	EventError              = "error"
	EventRematchRequested   = "rematch_requested"
	EventRematchDeclined    = "rematch_declined"
	EventRematchStart       = "rematch_start"
	EventEmoji              = "emoji"

	// EventReconnected is synthesized by the client hook after a successful
	// redial; the server never sends it.
	EventReconnected = "reconnected"
)

// Message is an inbound client message, discriminated by Type.
type Message struct {
	Type       string       `json:"type"`
	RoomID     string       `json:"roomId,omitempty"`
	PlayerName string       `json:"playerName,omitempty"`
	UUID       string       `json:"uuid,omitempty"`
	Move       *entity.Move `json:"move,omitempty"`
	Emoji      string       `json:"emoji,omitempty"`
}

// Event is an outbound server event. State-changing events always carry the
// full GameState, never a delta: clients replace their view wholesale.
type Event struct {
	Type string `json:"type"`

	RoomID       string            `json:"roomId,omitempty"`
	Color        entity.Color      `json:"color,omitempty"`
	OpponentName string            `json:"opponentName,omitempty"`
	GameState    *entity.GameState `json:"gameState,omitempty"`
	YourColor    entity.Color      `json:"yourColor,omitempty"`
	LastMove     *entity.Move      `json:"lastMove,omitempty"`
	MovedBy      entity.Color      `json:"movedBy,omitempty"`
	Winner       entity.Color      `json:"winner,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	Message      string            `json:"message,omitempty"`
	By           entity.Color      `json:"by,omitempty"`
	LoserStarts  entity.Color      `json:"loserStarts,omitempty"`
	Emoji        string            `json:"emoji,omitempty"`
	From         entity.Color      `json:"from,omitempty"`
}
