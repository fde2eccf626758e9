package server

import "github.com/mwhite/pointdeck/internal/types"

// Notifier maps a successful mutation to the outbound notifications all
// participants see. It is an interface so the full-snapshot policy can be
// swapped for an incremental-diff strategy without touching the state
// machine or the coordinator.
type Notifier interface {
	// Ack replies to the initiator with the room snapshot.
	Ack(sessionId, message string, eventType EventType, room types.Room)
	// Error replies to the initiator only. Failures are never broadcast.
	Error(sessionId, message string)
	// Broadcast sends the room snapshot to every connection in the room.
	Broadcast(roomId, message string, eventType EventType, room types.Room)
}

type snapshotNotifier struct {
	transport GroupTransport
}

func newSnapshotNotifier(transport GroupTransport) *snapshotNotifier {
	return &snapshotNotifier{transport: transport}
}

func (n *snapshotNotifier) Ack(sessionId, message string, eventType EventType, room types.Room) {
	n.transport.SendToSession(sessionId, okRoom(message, eventType, room))
}

func (n *snapshotNotifier) Error(sessionId, message string) {
	n.transport.SendToSession(sessionId, errReply(message))
}

func (n *snapshotNotifier) Broadcast(roomId, message string, eventType EventType, room types.Room) {
	n.transport.BroadcastToGroup(roomId, okRoom(message, eventType, room))
}
