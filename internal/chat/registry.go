package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultRoom always exists and can never be removed.
const DefaultRoom = "general"

var (
	ErrDefaultRoom  = errors.New("cannot remove the default room")
	ErrLastRoom     = errors.New("cannot remove the last room")
	ErrRoomOccupied = errors.New("room has more than 1 user")
)

// ContentStore is the durable backing for room content. A nil store disables
// persistence entirely.
type ContentStore interface {
	// LoadAll returns every persisted (room_id, content) pair.
	LoadAll(ctx context.Context) (map[string]string, error)
	// Upsert writes the latest content for a room, replacing any prior row.
	Upsert(ctx context.Context, roomID, content string) error
	// Delete removes a room's row. Deleting a missing row is not an error.
	Delete(ctx context.Context, roomID string) error
}

// RoomInfo is one entry of a registry listing.
type RoomInfo struct {
	ID    string   `json:"id"`
	Users []string `json:"users"`
}

// Registry is the process-wide room map. A single mutex serializes map
// access; room internals carry their own locks, so no long critical section
// ever holds the registry lock.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	ctx          context.Context
	store        ContentStore
	persistEvery time.Duration
}

// NewRegistry creates an empty registry. ctx bounds the lifetime of the
// per-room persister goroutines; store may be nil.
func NewRegistry(ctx context.Context, store ContentStore) *Registry {
	return &Registry{
		rooms:        make(map[string]*Room),
		ctx:          ctx,
		store:        store,
		persistEvery: 2 * time.Second,
	}
}

// Restore loads persisted rooms into the registry and makes sure the default
// room exists. Called once at startup, before any session is accepted.
func (reg *Registry) Restore(ctx context.Context) error {
	if reg.store != nil {
		rows, err := reg.store.LoadAll(ctx)
		if err != nil {
			return fmt.Errorf("restore rooms: %w", err)
		}
		for id, content := range rows {
			zap.L().Info("room_restored", zap.String("room", id), zap.Int("content_len", len(content)))
			room := reg.insertRoom(id)
			room.restoreContent(content)
		}
	}

	reg.mu.Lock()
	_, ok := reg.rooms[DefaultRoom]
	reg.mu.Unlock()
	if !ok {
		reg.insertRoom(DefaultRoom)
		if reg.store != nil {
			if err := reg.store.Upsert(ctx, DefaultRoom, ""); err != nil {
				return fmt.Errorf("seed default room: %w", err)
			}
		}
	}
	return nil
}

// GetOrCreate returns the room named id, constructing it on first use. A new
// room gets its own persister goroutine when a store is configured.
func (reg *Registry) GetOrCreate(id string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[id]; ok {
		return room
	}
	return reg.insertRoomLocked(id)
}

func (reg *Registry) insertRoom(id string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[id]; ok {
		return room
	}
	return reg.insertRoomLocked(id)
}

func (reg *Registry) insertRoomLocked(id string) *Room {
	room := newRoom(id)
	reg.rooms[id] = room
	if reg.store != nil {
		go reg.persistLoop(room)
	}
	return room
}

// Lookup returns the room and whether it exists, without creating it.
func (reg *Registry) Lookup(id string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	return room, ok
}

// List snapshots every room with its current members. Ordering across rooms
// is unspecified.
func (reg *Registry) List() []RoomInfo {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]RoomInfo, 0, len(reg.rooms))
	for id, room := range reg.rooms {
		out = append(out, RoomInfo{ID: id, Users: room.Members()})
	}
	return out
}

// Remove deletes a room. It refuses the default room (ErrDefaultRoom), the
// last remaining room (ErrLastRoom), and rooms with more than one member
// (ErrRoomOccupied). Removing a room that does not exist is a no-op success
// with removed == false. On success the persisted row is deleted and every
// surviving room receives an update-rooms-list event.
func (reg *Registry) Remove(ctx context.Context, id string) (removed bool, err error) {
	if id == DefaultRoom {
		return false, ErrDefaultRoom
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[id]
	if !ok {
		zap.L().Debug("room_already_removed", zap.String("room", id))
		return false, nil
	}
	if len(reg.rooms) == 1 {
		return false, ErrLastRoom
	}
	if room.memberCount() > 1 {
		return false, ErrRoomOccupied
	}

	delete(reg.rooms, id)

	if reg.store != nil {
		if err := reg.store.Delete(ctx, id); err != nil {
			zap.L().Error("room_delete_persist", zap.String("room", id), zap.Error(err))
			return false, fmt.Errorf("remove room %q from store: %w", id, err)
		}
	}

	for _, survivor := range reg.rooms {
		survivor.Publish(Event{Type: EventUpdateRoomsList})
	}
	return true, nil
}

// NotifyRoomListChanged broadcasts an update-rooms-list event to every room
// except the one named, so clients elsewhere can refresh their directory.
func (reg *Registry) NotifyRoomListChanged(except string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for id, room := range reg.rooms {
		if id == except {
			continue
		}
		room.Publish(Event{Type: EventUpdateRoomsList})
	}
}
