package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/rocketscienceinc/gobbler-backend/internal/apperror"
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

// roomIDAlphabet excludes the confusable characters 0/O, 1/I/L so codes
// survive being read out loud.
const (
	roomIDAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"
	roomIDLength   = 4

	maxIDAttempts = 10
)

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	DeleteByID(ctx context.Context, id string) error
}

// RoomManager owns the authoritative room lifecycle:
// waiting -> playing -> finished, back to waiting when one seat empties,
// deleted when both do.
type RoomManager struct {
	logger *slog.Logger
	rooms  roomRepo
}

func NewRoomManager(logger *slog.Logger, rooms roomRepo) *RoomManager {
	return &RoomManager{
		logger: logger,
		rooms:  rooms,
	}
}

// CreateRoom writes a fresh waiting room under a newly allocated ID.
func (that *RoomManager) CreateRoom(ctx context.Context) (*entity.Room, error) {
	id, err := that.allocateRoomID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate room id: %w", err)
	}

	room := entity.NewRoom(id)
	if err = that.saveRoom(ctx, room); err != nil {
		return nil, err
	}

	that.logger.Info("room created", "roomID", room.ID)

	return room, nil
}

func (that *RoomManager) GetRoom(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// JoinRoom seats the player on the first open seat, red before blue, and
// flips the room to playing once both seats are filled.
func (that *RoomManager) JoinRoom(ctx context.Context, roomID, playerName, identity string) (entity.Color, *entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get room: %w", err)
	}

	color, ok := room.OpenSeat()
	if !ok {
		return "", nil, apperror.ErrRoomFull
	}

	room.SetSeat(color, &entity.Seat{Name: playerName, Identity: identity})
	if room.IsFull() {
		room.Status = entity.RoomStatusPlaying
	}

	if err = that.saveRoom(ctx, room); err != nil {
		return "", nil, err
	}

	that.logger.Info("player joined room", "roomID", room.ID, "color", color)

	return color, room, nil
}

// LeaveRoom vacates the seat. Emptying the room deletes it; otherwise the
// board resets to a fresh game and the room reverts to waiting. Returns nil
// when the room was deleted, and succeeds quietly when it is already gone so
// disconnect cleanup stays idempotent.
func (that *RoomManager) LeaveRoom(ctx context.Context, roomID string, color entity.Color) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.SetSeat(color, nil)

	if room.IsEmpty() {
		if err = that.rooms.DeleteByID(ctx, room.ID); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}

		that.logger.Info("room deleted", "roomID", room.ID)

		return nil, nil
	}

	room.GameState = entity.NewGameState()
	room.Status = entity.RoomStatusWaiting

	if err = that.saveRoom(ctx, room); err != nil {
		return nil, err
	}

	that.logger.Info("seat vacated, room back to waiting", "roomID", room.ID, "color", color)

	return room, nil
}

// UpdateGameState persists the new authoritative state; a state carrying a
// winner finishes the room.
func (that *RoomManager) UpdateGameState(ctx context.Context, roomID string, state *entity.GameState) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.GameState = state
	if state.HasWinner() {
		room.Status = entity.RoomStatusFinished
	}

	if err = that.saveRoom(ctx, room); err != nil {
		return nil, err
	}

	return room, nil
}

// ResetForRematch starts a fresh game in the room. The loser of the prior
// game moves first; with no prior winner the default starting color stands.
func (that *RoomManager) ResetForRematch(ctx context.Context, roomID string, lastWinner entity.Color) (*entity.Room, error) {
	room, err := that.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	starter := entity.ColorRed
	if lastWinner != "" {
		starter = lastWinner.Opponent()
	}

	room.GameState = entity.NewGameStateWithStarter(starter)
	room.Status = entity.RoomStatusPlaying

	if err = that.saveRoom(ctx, room); err != nil {
		return nil, err
	}

	that.logger.Info("room reset for rematch", "roomID", room.ID, "starter", starter)

	return room, nil
}

func (that *RoomManager) saveRoom(ctx context.Context, room *entity.Room) error {
	room.LastActivity = time.Now().UTC()

	if err := that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// allocateRoomID draws short random codes until one is unused, giving up
// after a bounded number of collisions.
func (that *RoomManager) allocateRoomID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := generateRoomID()
		if err != nil {
			return "", err
		}

		_, err = that.rooms.GetByID(ctx, id)
		if errors.Is(err, apperror.ErrRoomNotFound) {
			return id, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check room id: %w", err)
		}
	}

	return "", apperror.ErrRoomIDsExhausted
}

func generateRoomID() (string, error) {
	id := make([]byte, roomIDLength)
	alphabetLen := big.NewInt(int64(len(roomIDAlphabet)))

	for i := range id {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}
		id[i] = roomIDAlphabet[n.Int64()]
	}

	return string(id), nil
}
