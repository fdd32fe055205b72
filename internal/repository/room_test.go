package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gobbler-backend/internal/apperror"
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	"github.com/rocketscienceinc/gobbler-backend/testing/suite"
)

func TestRoomRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage, DefaultRoomTTL)

	// Given: a waiting room with one seated player
	room := entity.NewRoom("AB12")
	room.SetSeat(entity.ColorRed, &entity.Seat{Name: "alice", Identity: "id-alice"})

	// When: CreateOrUpdate is called
	err := roomRepo.CreateOrUpdate(ctx, room)

	// Then: no error should be returned, and the key carries a TTL
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "room:"+room.ID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, DefaultRoomTTL)
}

func TestRoomRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, DefaultRoomTTL)

		// Given: a stored room with board state and both seats filled
		room := entity.NewRoom("AB12")
		room.SetSeat(entity.ColorRed, &entity.Seat{Name: "alice"})
		room.SetSeat(entity.ColorBlue, &entity.Seat{Name: "bob"})
		room.Status = entity.RoomStatusPlaying
		room.GameState.Board[1][1] = entity.Cell{{Color: entity.ColorRed, Size: entity.SizeLarge}}
		room.GameState.Reserves.Red.Large = 1
		room.GameState.CurrentPlayer = entity.ColorBlue

		err := roomRepo.CreateOrUpdate(ctx, room)
		require.NoError(t, err)

		// When: GetByID is called with the existing ID
		retrieved, err := roomRepo.GetByID(ctx, room.ID)

		// Then: the stored snapshot round-trips intact
		require.NoError(t, err)
		require.Equal(t, room.ID, retrieved.ID)
		assert.Equal(t, entity.RoomStatusPlaying, retrieved.Status)
		assert.Equal(t, "alice", retrieved.Players.Red.Name)
		assert.Equal(t, "bob", retrieved.Players.Blue.Name)
		assert.Equal(t, entity.ColorBlue, retrieved.GameState.CurrentPlayer)
		assert.Equal(t, 1, retrieved.GameState.Reserves.Red.Count(entity.SizeLarge))

		top, ok := retrieved.GameState.Board[1][1].Top()
		require.True(t, ok)
		assert.Equal(t, entity.Piece{Color: entity.ColorRed, Size: entity.SizeLarge}, top)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, DefaultRoomTTL)

		// When: GetByID is called with a non-existent ID
		retrieved, err := roomRepo.GetByID(ctx, "ZZZZ")

		// Then: an ErrRoomNotFound error should be returned
		require.Error(t, err)
		assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage, DefaultRoomTTL)

	// Given: a stored room
	room := entity.NewRoom("AB12")
	err := roomRepo.CreateOrUpdate(ctx, room)
	require.NoError(t, err)

	// When: DeleteByID is called
	err = roomRepo.DeleteByID(ctx, room.ID)

	// Then: the room is gone
	require.NoError(t, err)
	_, err = roomRepo.GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, apperror.ErrRoomNotFound)
}
