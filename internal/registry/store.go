package registry

import "github.com/mwhite/pointdeck/internal/types"

// RoomStore is the backing store for room state, keyed by room id. The
// in-memory implementation below is the only one in use, but the rest of
// the package is written against this interface so a concurrent-safe or
// persistent backend can be dropped in without touching dispatch logic.
type RoomStore interface {
	Get(roomId string) (types.Room, bool)
	Put(room types.Room)
	Delete(roomId string)
	Len() int
}

// MemoryStore keeps rooms in a plain map. Every read and write passes
// through Room.Clone, so a room value handed out is never aliased by a
// later mutation; callers replace a room wholesale via Put.
//
// The store is not safe for concurrent use. All access is serialized
// through the coordinator's event loop.
type MemoryStore struct {
	rooms map[string]types.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms: make(map[string]types.Room),
	}
}

func (s *MemoryStore) Get(roomId string) (types.Room, bool) {
	room, ok := s.rooms[roomId]
	if !ok {
		return types.Room{}, false
	}
	return room.Clone(), true
}

func (s *MemoryStore) Put(room types.Room) {
	s.rooms[room.Id] = room.Clone()
}

func (s *MemoryStore) Delete(roomId string) {
	delete(s.rooms, roomId)
}

func (s *MemoryStore) Len() int {
	return len(s.rooms)
}
