package entity

import "time"

const (
	RoomStatusWaiting  = "waiting"
	RoomStatusPlaying  = "playing"
	RoomStatusFinished = "finished"
)

// Seat is one occupied color slot in a room. Identity, when present, is the
// durable player id used by the rating handoff; anonymous players leave it
// empty.
type Seat struct {
	Name     string `json:"name"`
	Identity string `json:"identity,omitempty"`
}

// RoomPlayers maps the two color slots to their occupants; nil means vacant.
type RoomPlayers struct {
	Red  *Seat `json:"red"`
	Blue *Seat `json:"blue"`
}

// Room is the authoritative record of one online match. It lives in the
// TTL-expiring store and is always rewritten wholesale.
type Room struct {
	ID           string      `json:"roomId"`
	Players      RoomPlayers `json:"players"`
	GameState    *GameState  `json:"gameState"`
	Status       string      `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
	LastActivity time.Time   `json:"lastActivity"`
}

// NewRoom returns a waiting room with two empty seats and a fresh game.
func NewRoom(id string) *Room {
	now := time.Now().UTC()

	return &Room{
		ID:           id,
		GameState:    NewGameState(),
		Status:       RoomStatusWaiting,
		CreatedAt:    now,
		LastActivity: now,
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == RoomStatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == RoomStatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == RoomStatusFinished
}

// Seat returns the occupant of the color slot, nil if vacant.
func (that *Room) Seat(color Color) *Seat {
	if color == ColorRed {
		return that.Players.Red
	}
	return that.Players.Blue
}

// SetSeat assigns or vacates a color slot.
func (that *Room) SetSeat(color Color, seat *Seat) {
	if color == ColorRed {
		that.Players.Red = seat
		return
	}
	that.Players.Blue = seat
}

// OpenSeat returns the first vacant slot in fixed priority, red before blue.
func (that *Room) OpenSeat() (Color, bool) {
	if that.Players.Red == nil {
		return ColorRed, true
	}
	if that.Players.Blue == nil {
		return ColorBlue, true
	}
	return "", false
}

func (that *Room) IsEmpty() bool {
	return that.Players.Red == nil && that.Players.Blue == nil
}

func (that *Room) IsFull() bool {
	return that.Players.Red != nil && that.Players.Blue != nil
}
