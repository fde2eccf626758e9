package server

import (
	"time"

	"github.com/mwhite/pointdeck/internal/types"
)

const (
	statusOk    = "ok"
	statusError = "error"
)

// EventType tags a broadcast with the mutation that produced it.
type EventType string

const (
	EventUserCreatedRoom EventType = "USER_CREATED_ROOM"
	EventUserJoinedRoom  EventType = "USER_JOINED_ROOM"
	EventUserLeftRoom    EventType = "USER_LEFT_ROOM"
	EventVotingStarted   EventType = "VOTING_STARTED"
	EventVotingEnded     EventType = "VOTING_ENDED"
	EventUserVoted       EventType = "USER_VOTED"
)

// ClientMessage is an inbound event. Exactly one of the pointer fields is
// set; the rest are nil.
type ClientMessage struct {
	CreateRoom *CreateRoom `json:"createRoom,omitempty"`
	JoinRoom   *JoinRoom   `json:"joinRoom,omitempty"`
	UpdateRoom *UpdateRoom `json:"updateRoom,omitempty"`
	Vote       *Vote       `json:"vote,omitempty"`
	client     *Client
}

type CreateRoom struct {
	RoomName        string                `json:"roomName"`
	UserId          string                `json:"userId"`
	Nickname        string                `json:"nickname"`
	AvatarSrc       string                `json:"avatarSrc,omitempty"`
	PointValues     []string              `json:"pointValues,omitempty"`
	PointValuesType types.PointValuesType `json:"pointValuesType,omitempty"`
}

type JoinRoom struct {
	RoomId    string `json:"roomId"`
	UserId    string `json:"userId"`
	Nickname  string `json:"nickname"`
	AvatarSrc string `json:"avatarSrc,omitempty"`
}

type UpdateRoom struct {
	RoomId     string           `json:"roomId"`
	UserId     string           `json:"userId"`
	UpdateType VotingTransition `json:"updateType"`
}

type Vote struct {
	RoomId string `json:"roomId"`
	UserId string `json:"userId"`
	Point  string `json:"point"`
}

// ServerMessage is the outbound ack/broadcast envelope. Broadcasts carry
// the full current room snapshot rather than a diff: a client that misses
// one event is fully resynchronized by the next.
type ServerMessage struct {
	Status    string     `json:"status"`
	Message   string     `json:"message"`
	EventType EventType  `json:"eventType,omitempty"`
	Data      *EventData `json:"data,omitempty"`
}

type EventData struct {
	Room *types.Room `json:"room,omitempty"`
}

func okRoom(message string, eventType EventType, room types.Room) *ServerMessage {
	return &ServerMessage{
		Status:    statusOk,
		Message:   message,
		EventType: eventType,
		Data:      &EventData{Room: &room},
	}
}

func errReply(message string) *ServerMessage {
	return &ServerMessage{
		Status:  statusError,
		Message: message,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
