package registry

import (
	"errors"
	"slices"
	"time"

	"github.com/mwhite/pointdeck/internal/types"
)

var (
	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
)

// Registry owns the canonical in-memory state of every room. All
// mutations are whole-room replacements against the backing store, so no
// mutation is ever partially visible to a reader holding an earlier
// snapshot.
type Registry struct {
	store RoomStore
}

func NewRegistry(store RoomStore) *Registry {
	return &Registry{store: store}
}

// Create initializes a room in the INITIAL state with no users.
func (reg *Registry) Create(roomId, name string, pointValues []string, now time.Time) (types.Room, error) {
	if _, ok := reg.store.Get(roomId); ok {
		return types.Room{}, ErrRoomExists
	}

	room := types.Room{
		Id:          roomId,
		Name:        name,
		VotingState: types.VotingInitial,
		PointValues: slices.Clone(pointValues),
		Users:       make(map[string]types.User),
		CreatedOn:   now,
		UpdatedOn:   now,
	}
	reg.store.Put(room)

	return room, nil
}

func (reg *Registry) Get(roomId string) (types.Room, error) {
	room, ok := reg.store.Get(roomId)
	if !ok {
		return types.Room{}, ErrRoomNotFound
	}
	return room, nil
}

// AddUser inserts the user into the room, overwriting any existing entry
// with the same user id.
func (reg *Registry) AddUser(roomId string, user types.User) (types.Room, error) {
	room, ok := reg.store.Get(roomId)
	if !ok {
		return types.Room{}, ErrRoomNotFound
	}

	room.Users[user.Id] = user
	reg.store.Put(room)

	return room, nil
}

// RemoveUser removes the user from the room. Removing a user id that is
// not a member is a no-op that still returns the room.
func (reg *Registry) RemoveUser(roomId, userId string) (types.Room, error) {
	room, ok := reg.store.Get(roomId)
	if !ok {
		return types.Room{}, ErrRoomNotFound
	}

	delete(room.Users, userId)
	reg.store.Put(room)

	return room, nil
}

// Apply runs mutate against a snapshot of the room and persists the
// result. If mutate returns an error the store is left untouched. Voting
// transitions go through here so the state machine stays free of storage
// concerns.
func (reg *Registry) Apply(roomId string, mutate func(types.Room) (types.Room, error)) (types.Room, error) {
	room, ok := reg.store.Get(roomId)
	if !ok {
		return types.Room{}, ErrRoomNotFound
	}

	updated, err := mutate(room)
	if err != nil {
		return types.Room{}, err
	}
	reg.store.Put(updated)

	return updated, nil
}

func (reg *Registry) Delete(roomId string) {
	reg.store.Delete(roomId)
}

func (reg *Registry) Len() int {
	return reg.store.Len()
}
