package registry

import (
	"github.com/stretchr/testify/mock"

	"github.com/mwhite/pointdeck/internal/types"
)

type MockRoomStore struct {
	mock.Mock
}

func (m *MockRoomStore) Get(roomId string) (types.Room, bool) {
	args := m.Called(roomId)
	return args.Get(0).(types.Room), args.Bool(1)
}

func (m *MockRoomStore) Put(room types.Room) {
	m.Called(room)
}

func (m *MockRoomStore) Delete(roomId string) {
	m.Called(roomId)
}

func (m *MockRoomStore) Len() int {
	args := m.Called()
	return args.Int(0)
}
