package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mwhite/pointdeck/internal/types"
)

func Test_okRoom(t *testing.T) {
	room := testRoom(types.VotingInitial, types.User{Id: "u1", Name: "alice"})

	msg := okRoom("Created room test-room", EventUserCreatedRoom, room)
	assert.Equal(t, statusOk, msg.Status)
	assert.Equal(t, EventUserCreatedRoom, msg.EventType)
	assert.NotNil(t, msg.Data)
	assert.Equal(t, "test-room", msg.Data.Room.Id)

	raw, err := json.Marshal(msg)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "ok", decoded["status"])
	assert.Equal(t, "USER_CREATED_ROOM", decoded["eventType"])

	data, ok := decoded["data"].(map[string]any)
	assert.True(t, ok, "expected data object in envelope")
	assert.Contains(t, data, "room")
}

func Test_errReply(t *testing.T) {
	msg := errReply("Room not found")
	assert.Equal(t, statusError, msg.Status)

	raw, err := json.Marshal(msg)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "error", decoded["status"])
	assert.Equal(t, "Room not found", decoded["message"])
	assert.NotContains(t, decoded, "eventType", "failures carry no event type")
	assert.NotContains(t, decoded, "data")
}

func TestClientMessageUnmarshal(t *testing.T) {
	t.Run("createRoom", func(t *testing.T) {
		raw := `{"createRoom":{"roomName":"Sprint 12","userId":"u1","nickname":"alice","pointValuesType":"FIBB"}}`

		var msg ClientMessage
		assert.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.NotNil(t, msg.CreateRoom)
		assert.Nil(t, msg.JoinRoom)
		assert.Equal(t, "Sprint 12", msg.CreateRoom.RoomName)
		assert.Equal(t, types.PointValuesFibb, msg.CreateRoom.PointValuesType)
	})

	t.Run("updateRoom", func(t *testing.T) {
		raw := `{"updateRoom":{"roomId":"r1","userId":"u1","updateType":"START_VOTING"}}`

		var msg ClientMessage
		assert.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.NotNil(t, msg.UpdateRoom)
		assert.Equal(t, StartVoting, msg.UpdateRoom.UpdateType)
	})

	t.Run("vote", func(t *testing.T) {
		raw := `{"vote":{"roomId":"r1","userId":"u1","point":"5"}}`

		var msg ClientMessage
		assert.NoError(t, json.Unmarshal([]byte(raw), &msg))
		assert.NotNil(t, msg.Vote)
		assert.Equal(t, "5", msg.Vote.Point)
	})
}
