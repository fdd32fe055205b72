package websocket

import (
	"sync"

	"github.com/rocketscienceinc/gobbler-backend/internal/entity"
)

// seatBinding ties a live connection to the seat it holds. Bindings are
// process-local and never persisted; the durable room record knows nothing
// about connections, so the registry can be dropped and rebuilt without
// touching game correctness.
type seatBinding struct {
	RoomID     string
	Color      entity.Color
	PlayerName string
	Identity   string
}

// registry is the bidirectional connection<->seat map plus the room->live
// connections index used for broadcasts.
type registry struct {
	mu       sync.RWMutex
	bindings map[*client]*seatBinding
	rooms    map[string]map[*client]struct{}
}

func newRegistry() *registry {
	return &registry{
		bindings: make(map[*client]*seatBinding),
		rooms:    make(map[string]map[*client]struct{}),
	}
}

func (that *registry) Bind(c *client, binding *seatBinding) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.bindings[c] = binding

	peers, ok := that.rooms[binding.RoomID]
	if !ok {
		peers = make(map[*client]struct{})
		that.rooms[binding.RoomID] = peers
	}
	peers[c] = struct{}{}
}

// Unbind removes the connection's binding and returns it, along with whether
// the room has no live connections left. Safe to call for never-bound
// connections.
func (that *registry) Unbind(c *client) (*seatBinding, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	binding, ok := that.bindings[c]
	if !ok {
		return nil, false
	}

	delete(that.bindings, c)

	peers := that.rooms[binding.RoomID]
	delete(peers, c)

	roomEmptied := len(peers) == 0
	if roomEmptied {
		delete(that.rooms, binding.RoomID)
	}

	return binding, roomEmptied
}

func (that *registry) Binding(c *client) *seatBinding {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.bindings[c]
}

func (that *registry) ConnectionsInRoom(roomID string) []*client {
	that.mu.RLock()
	defer that.mu.RUnlock()

	peers := make([]*client, 0, len(that.rooms[roomID]))
	for c := range that.rooms[roomID] {
		peers = append(peers, c)
	}

	return peers
}
