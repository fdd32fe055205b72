package websocket

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gobbler-backend/internal/apperror"
	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
	"github.com/rocketscienceinc/gobbler-backend/internal/gobbler"
	"github.com/rocketscienceinc/gobbler-backend/internal/service"
)

func (that *Server) handleCreateRoom(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom")

	if that.registry.Binding(c) != nil {
		log.Debug("connection already bound to a room, create ignored")
		return nil
	}

	created, err := that.rooms.CreateRoom(ctx)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendError(c, "failed to create room")
	}

	// JoinRoom returns no room on failure, so log the id captured from the
	// create.
	color, room, err := that.rooms.JoinRoom(ctx, created.ID, msg.PlayerName, msg.UUID)
	if err != nil {
		log.Error("failed to seat creator", "roomID", created.ID, "error", err)
		return that.sendError(c, "failed to create room")
	}

	that.bindSeat(c, room.ID, color, msg)

	if err = c.send(&Event{Type: EventRoomCreated, RoomID: room.ID, Color: color}); err != nil {
		return err
	}

	return c.send(&Event{Type: EventWaitingForOpponent})
}

func (that *Server) handleJoinRoom(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom")

	// A connection already holding a seat cannot join again.
	if that.registry.Binding(c) != nil {
		log.Debug("connection already bound to a room, join ignored")
		return nil
	}

	color, room, err := that.rooms.JoinRoom(ctx, msg.RoomID, msg.PlayerName, msg.UUID)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return that.sendError(c, apperror.ErrRoomNotFound.Error())
	case errors.Is(err, apperror.ErrRoomFull):
		return that.sendError(c, apperror.ErrRoomFull.Error())
	case err != nil:
		log.Error("failed to join room", "roomID", msg.RoomID, "error", err)
		return that.sendError(c, "failed to join room")
	}

	that.bindSeat(c, room.ID, color, msg)

	if err = c.send(&Event{Type: EventRoomJoined, RoomID: room.ID, Color: color}); err != nil {
		return err
	}

	if room.IsWaiting() {
		return c.send(&Event{Type: EventWaitingForOpponent})
	}

	// This join completed the pair: tell the earlier seat who arrived, then
	// start the game for both sides, each with its own perspective.
	for _, peer := range that.registry.ConnectionsInRoom(room.ID) {
		if peer == c {
			continue
		}
		if err = peer.send(&Event{Type: EventOpponentJoined, OpponentName: msg.PlayerName}); err != nil {
			log.Error("failed to notify opponent", "roomID", room.ID, "error", err)
		}
	}

	that.broadcastPerSeat(room.ID, EventGameStart, room.GameState)

	log.Info("game started", "roomID", room.ID)

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleMakeMove")

	binding := that.registry.Binding(c)
	if binding == nil {
		return that.sendError(c, apperror.ErrNotInRoom.Error())
	}

	if msg.Move == nil {
		return that.sendError(c, "move is required")
	}

	room, err := that.rooms.GetRoom(ctx, binding.RoomID)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return that.sendError(c, apperror.ErrRoomNotFound.Error())
	}
	if err != nil {
		log.Error("failed to get room", "roomID", binding.RoomID, "error", err)
		return that.sendError(c, "failed to load game")
	}

	if !room.IsPlaying() {
		return that.sendError(c, apperror.ErrGameNotInPlay.Error())
	}

	// Rule violations go back to the author only; the other seat never
	// hears about a rejected move.
	if err = gobbler.ValidateMove(room.GameState, msg.Move, binding.Color); err != nil {
		return c.send(&Event{Type: EventInvalidMove, Reason: err.Error()})
	}

	next, applied, captured, err := gobbler.ApplyMove(room.GameState, *msg.Move)
	if err != nil {
		return c.send(&Event{Type: EventInvalidMove, Reason: err.Error()})
	}

	room, err = that.rooms.UpdateGameState(ctx, binding.RoomID, next)
	if err != nil {
		log.Error("failed to persist game state", "roomID", binding.RoomID, "error", err)
		return that.sendError(c, "failed to save move")
	}

	rt := that.runtime(binding.RoomID)

	that.mu.Lock()
	rt.history = rt.history.Append(applied.Color, applied, captured, next)
	moveCount := len(rt.history)
	that.mu.Unlock()

	that.broadcast(binding.RoomID, &Event{
		Type:      EventMoveMade,
		GameState: next,
		LastMove:  &applied,
		MovedBy:   applied.Color,
	})

	if !next.HasWinner() {
		return nil
	}

	that.mu.Lock()
	rt.lastWinner = next.Winner
	that.mu.Unlock()

	that.broadcast(binding.RoomID, &Event{
		Type:      EventGameOver,
		Winner:    next.Winner,
		GameState: next,
	})

	that.reportResult(room, next.Winner, moveCount)

	log.Info("game over", "roomID", binding.RoomID, "winner", next.Winner, "moves", moveCount)

	return nil
}

// handleLeaveRoom closes the connection; seat cleanup happens on the
// disconnect path, same as any other connection loss.
func (that *Server) handleLeaveRoom(_ context.Context, c *client, _ *Message) error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}

func (that *Server) handleRematchRequest(ctx context.Context, c *client, _ *Message) error {
	binding := that.registry.Binding(c)
	if binding == nil {
		return that.sendError(c, apperror.ErrNotInRoom.Error())
	}

	rt := that.runtime(binding.RoomID)

	that.mu.Lock()
	requestedBy := rt.rematchRequestedBy
	lastWinner := rt.lastWinner

	// A repeat request from the seat that already asked is a no-op.
	if requestedBy == binding.Color {
		that.mu.Unlock()
		return nil
	}

	if requestedBy == "" {
		rt.rematchRequestedBy = binding.Color
		that.mu.Unlock()

		loserStarts := entity.ColorRed
		if lastWinner != "" {
			loserStarts = lastWinner.Opponent()
		}

		that.broadcast(binding.RoomID, &Event{
			Type:        EventRematchRequested,
			By:          binding.Color,
			LoserStarts: loserStarts,
		})

		return nil
	}

	// The other seat already asked; this request completes the handshake.
	that.mu.Unlock()

	return that.finalizeRematch(ctx, binding)
}

func (that *Server) handleRematchAccept(ctx context.Context, c *client, _ *Message) error {
	binding := that.registry.Binding(c)
	if binding == nil {
		return that.sendError(c, apperror.ErrNotInRoom.Error())
	}

	rt := that.runtime(binding.RoomID)

	that.mu.Lock()
	requestedBy := rt.rematchRequestedBy
	that.mu.Unlock()

	// Only a pending request from the other seat can be accepted.
	if requestedBy == "" || requestedBy == binding.Color {
		return nil
	}

	return that.finalizeRematch(ctx, binding)
}

func (that *Server) handleRematchDecline(_ context.Context, c *client, _ *Message) error {
	binding := that.registry.Binding(c)
	if binding == nil {
		return that.sendError(c, apperror.ErrNotInRoom.Error())
	}

	rt := that.runtime(binding.RoomID)

	that.mu.Lock()
	pending := rt.rematchRequestedBy != ""
	rt.rematchRequestedBy = ""
	that.mu.Unlock()

	if !pending {
		return nil
	}

	that.broadcast(binding.RoomID, &Event{Type: EventRematchDeclined})

	return nil
}

func (that *Server) finalizeRematch(ctx context.Context, binding *seatBinding) error {
	log := that.logger.With("method", "finalizeRematch")

	rt := that.runtime(binding.RoomID)

	that.mu.Lock()
	lastWinner := rt.lastWinner
	that.mu.Unlock()

	room, err := that.rooms.ResetForRematch(ctx, binding.RoomID, lastWinner)
	if err != nil {
		log.Error("failed to reset room", "roomID", binding.RoomID, "error", err)
		return fmt.Errorf("failed to reset room for rematch: %w", err)
	}

	that.mu.Lock()
	rt.rematchRequestedBy = ""
	rt.lastWinner = ""
	rt.history = nil
	that.mu.Unlock()

	that.broadcastPerSeat(room.ID, EventRematchStart, room.GameState)

	log.Info("rematch started", "roomID", room.ID, "starter", room.GameState.CurrentPlayer)

	return nil
}

// handleEmoji relays the symbol to the other seat only; the sender already
// knows what it sent.
func (that *Server) handleEmoji(_ context.Context, c *client, msg *Message) error {
	binding := that.registry.Binding(c)
	if binding == nil {
		return that.sendError(c, apperror.ErrNotInRoom.Error())
	}

	for _, peer := range that.registry.ConnectionsInRoom(binding.RoomID) {
		if peer == c {
			continue
		}
		if err := peer.send(&Event{Type: EventEmoji, Emoji: msg.Emoji, From: binding.Color}); err != nil {
			that.logger.Error("failed to relay emoji", "roomID", binding.RoomID, "error", err)
		}
	}

	return nil
}

// handleDisconnect runs for every connection teardown, however it happened.
// It must stay idempotent: the room may already be gone.
func (that *Server) handleDisconnect(c *client) {
	log := that.logger.With("method", "handleDisconnect")

	binding, roomEmptied := that.registry.Unbind(c)
	if binding == nil {
		return
	}

	// The request context died with the connection.
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	that.mu.Lock()
	if rt, ok := that.runtimes[binding.RoomID]; ok {
		rt.rematchRequestedBy = ""
		rt.lastWinner = ""
		rt.history = nil
		if roomEmptied {
			delete(that.runtimes, binding.RoomID)
		}
	}
	that.mu.Unlock()

	if _, err := that.rooms.LeaveRoom(ctx, binding.RoomID, binding.Color); err != nil {
		log.Error("failed to vacate seat", "roomID", binding.RoomID, "error", err)
	}

	for _, peer := range that.registry.ConnectionsInRoom(binding.RoomID) {
		if err := peer.send(&Event{Type: EventOpponentLeft}); err != nil {
			log.Error("failed to notify remaining seat", "roomID", binding.RoomID, "error", err)
		}
	}

	log.Info("player disconnected", "roomID", binding.RoomID, "color", binding.Color)
}

func (that *Server) bindSeat(c *client, roomID string, color entity.Color, msg *Message) {
	that.registry.Bind(c, &seatBinding{
		RoomID:     roomID,
		Color:      color,
		PlayerName: msg.PlayerName,
		Identity:   msg.UUID,
	})

	// make sure the room's runtime exists before any gameplay message
	that.runtime(roomID)
}

// broadcast sends the same event to every live connection in the room.
func (that *Server) broadcast(roomID string, event *Event) {
	for _, peer := range that.registry.ConnectionsInRoom(roomID) {
		if err := peer.send(event); err != nil {
			that.logger.Error("failed to broadcast event", "roomID", roomID, "type", event.Type, "error", err)
		}
	}
}

// broadcastPerSeat sends each seat the event with its own color perspective.
func (that *Server) broadcastPerSeat(roomID, eventType string, state *entity.GameState) {
	for _, peer := range that.registry.ConnectionsInRoom(roomID) {
		peerBinding := that.registry.Binding(peer)
		if peerBinding == nil {
			continue
		}

		event := &Event{
			Type:      eventType,
			GameState: state,
			YourColor: peerBinding.Color,
		}

		if err := peer.send(event); err != nil {
			that.logger.Error("failed to send event", "roomID", roomID, "type", eventType, "error", err)
		}
	}
}

// reportResult hands the finished game to the rating collaborator without
// blocking gameplay. Reporting is skipped when either seat is anonymous.
func (that *Server) reportResult(room *entity.Room, winner entity.Color, moveCount int) {
	result := &service.GameResult{
		RoomID:      room.ID,
		WinnerColor: winner,
		TotalMoves:  moveCount,
	}

	if room.Players.Red != nil {
		result.RedPlayerIdentity = room.Players.Red.Identity
	}
	if room.Players.Blue != nil {
		result.BluePlayerIdentity = room.Players.Blue.Identity
	}

	that.reporter.Report(result)
}
