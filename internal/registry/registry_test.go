package registry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mwhite/pointdeck/internal/types"
)

func testNow() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func TestRegistryCreate(t *testing.T) {
	t.Run("round trip preserves point values in order", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())

		created, err := reg.Create("room-1", "Sprint 12", []string{"1", "2", "3"}, testNow())
		assert.NoError(t, err)
		assert.Equal(t, types.VotingInitial, created.VotingState)
		assert.Empty(t, created.Users)

		got, err := reg.Get("room-1")
		assert.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "3"}, got.PointValues)
		assert.Equal(t, testNow(), got.CreatedOn)
	})

	t.Run("fails on id collision", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())

		_, err := reg.Create("room-1", "first", nil, testNow())
		assert.NoError(t, err)

		_, err = reg.Create("room-1", "second", nil, testNow())
		assert.ErrorIs(t, err, ErrRoomExists)
	})
}

func TestRegistryGet(t *testing.T) {
	reg := NewRegistry(NewMemoryStore())

	_, err := reg.Get("missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRegistryAddUser(t *testing.T) {
	t.Run("fails when room is absent", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())

		_, err := reg.AddUser("missing", types.User{Id: "u1"})
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("overwrites an existing member with the same id", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())
		_, err := reg.Create("room-1", "test", nil, testNow())
		assert.NoError(t, err)

		_, err = reg.AddUser("room-1", types.User{Id: "u1", Name: "alice"})
		assert.NoError(t, err)

		room, err := reg.AddUser("room-1", types.User{Id: "u1", Name: "alicia"})
		assert.NoError(t, err)
		assert.Len(t, room.Users, 1, "expected second join to overwrite, not duplicate")
		assert.Equal(t, "alicia", room.Users["u1"].Name)
	})
}

func TestRegistryRemoveUser(t *testing.T) {
	t.Run("fails when room is absent", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())

		_, err := reg.RemoveUser("missing", "u1")
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("removing a non-member is a no-op", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())
		_, err := reg.Create("room-1", "test", nil, testNow())
		assert.NoError(t, err)
		_, err = reg.AddUser("room-1", types.User{Id: "u1"})
		assert.NoError(t, err)

		room, err := reg.RemoveUser("room-1", "nobody")
		assert.NoError(t, err)
		assert.Len(t, room.Users, 1)
	})
}

func TestRegistryApply(t *testing.T) {
	t.Run("persists the mutated room", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())
		_, err := reg.Create("room-1", "test", nil, testNow())
		assert.NoError(t, err)

		_, err = reg.Apply("room-1", func(r types.Room) (types.Room, error) {
			r.VotingState = types.VotingStarted
			return r, nil
		})
		assert.NoError(t, err)

		room, err := reg.Get("room-1")
		assert.NoError(t, err)
		assert.Equal(t, types.VotingStarted, room.VotingState)
	})

	t.Run("leaves the store untouched on error", func(t *testing.T) {
		reg := NewRegistry(NewMemoryStore())
		_, err := reg.Create("room-1", "test", nil, testNow())
		assert.NoError(t, err)

		errRejected := errors.New("rejected")
		_, err = reg.Apply("room-1", func(r types.Room) (types.Room, error) {
			r.VotingState = types.VotingEnded
			return r, errRejected
		})
		assert.ErrorIs(t, err, errRejected)

		room, err := reg.Get("room-1")
		assert.NoError(t, err)
		assert.Equal(t, types.VotingInitial, room.VotingState, "expected failed mutation not to be persisted")
	})
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	store.Put(types.Room{
		Id:          "room-1",
		PointValues: []string{"1", "2"},
		Users:       map[string]types.User{"u1": {Id: "u1"}},
	})

	first, ok := store.Get("room-1")
	assert.True(t, ok)

	// mutating a snapshot must not leak into the store
	first.Users["u2"] = types.User{Id: "u2"}
	first.PointValues[0] = "99"

	second, ok := store.Get("room-1")
	assert.True(t, ok)
	assert.Len(t, second.Users, 1, "expected snapshot mutation not to be visible")
	assert.Equal(t, "1", second.PointValues[0])
}

func TestRegistryWithMockStore(t *testing.T) {
	store := &MockRoomStore{}
	defer store.AssertExpectations(t)

	store.On("Get", "room-1").Return(types.Room{}, false).Once()
	store.On("Put", mock.AnythingOfType("types.Room")).Once()

	reg := NewRegistry(store)
	_, err := reg.Create("room-1", "test", []string{"1"}, testNow())
	assert.NoError(t, err)
}
