package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/teris-io/shortid"

	"github.com/mwhite/pointdeck/internal/registry"
	"github.com/mwhite/pointdeck/internal/stats"
	"github.com/mwhite/pointdeck/internal/types"
)

const (
	ActiveConnectionsMetric = "ActiveConnections"
	ActiveRoomsMetric       = "ActiveRooms"
	RoomsCreatedMetric      = "RoomsCreated"
	VotesCastMetric         = "VotesCast"
)

const DefaultReapGrace = 30 * time.Second

// binding ties a live connection to the participant it represents. It is
// a derived index owned by the coordinator: Room.Users stays the only
// authority on who is in a room.
type binding struct {
	roomId   string
	userId   string
	nickname string
}

type stopReq struct {
	done chan struct{}
}

// PokerServer coordinates all rooms and connections. Every inbound event
// is fully processed on the Run goroutine before the next one starts, so
// no two mutations against the same room ever interleave and per-room
// broadcast order matches processing order.
type PokerServer struct {
	log      *log.Logger
	registry *registry.Registry
	// transport is the interface the handlers go through; groups is the
	// same object, kept concrete for shutdown
	transport  GroupTransport
	groups     *clientGroups
	notifier   Notifier
	stats      stats.StatsProvider
	bindings   map[string]binding
	reapTimers map[string]*time.Timer
	reapGrace  time.Duration

	eventChan      chan *ClientMessage
	RegisterChan   chan *Client
	deRegisterChan chan *Client
	reapChan       chan string
	stop           chan stopReq
}

func NewPokerServer(logger *log.Logger, reg *registry.Registry, su stats.StatsProvider, reapGrace time.Duration) (*PokerServer, error) {
	if reapGrace <= 0 {
		reapGrace = DefaultReapGrace
	}

	groups := newClientGroups(logger)
	ps := &PokerServer{
		log:            logger,
		registry:       reg,
		transport:      groups,
		groups:         groups,
		notifier:       newSnapshotNotifier(groups),
		stats:          su,
		bindings:       make(map[string]binding),
		reapTimers:     make(map[string]*time.Timer),
		reapGrace:      reapGrace,
		eventChan:      make(chan *ClientMessage, 256),
		RegisterChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		reapChan:       make(chan string, 16),
		stop:           make(chan stopReq),
	}

	su.RegisterMetric(ActiveConnectionsMetric)
	su.RegisterMetric(ActiveRoomsMetric)
	su.RegisterMetric(RoomsCreatedMetric)
	su.RegisterMetric(VotesCastMetric)

	return ps, nil
}

func (ps *PokerServer) Run() {
	for {
		select {
		case msg := <-ps.eventChan:
			ps.dispatch(msg)
		case c := <-ps.RegisterChan:
			ps.log.Printf("adding connection %q", c.sessionId)
			ps.transport.AddSession(c.sessionId, c)
			ps.stats.Incr(ActiveConnectionsMetric)
		case c := <-ps.deRegisterChan:
			ps.log.Printf("removing connection %q", c.sessionId)
			ps.handleDisconnect(c)
			ps.stats.Decr(ActiveConnectionsMetric)
		case roomId := <-ps.reapChan:
			ps.handleReap(roomId)
		case req := <-ps.stop:
			ps.log.Println("stopping all clients")
			for _, t := range ps.reapTimers {
				t.Stop()
			}
			if ps.groups != nil {
				ps.groups.stopAll()
			}
			close(req.done)
			return
		}
	}
}

// RegisterClient hands a freshly upgraded connection to the coordinator.
func (ps *PokerServer) RegisterClient(c *Client) {
	ps.RegisterChan <- c
}

func (ps *PokerServer) Shutdown(ctx context.Context) error {
	req := stopReq{done: make(chan struct{})}

	select {
	case ps.stop <- req:
	case <-ctx.Done():
		return fmt.Errorf("poker server shutdown: %w", ctx.Err())
	}

	select {
	case <-req.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("poker server shutdown: %w", ctx.Err())
	}
}

func (ps *PokerServer) dispatch(msg *ClientMessage) {
	switch {
	case msg.CreateRoom != nil:
		ps.handleCreateRoom(msg.client, msg.CreateRoom)
	case msg.JoinRoom != nil:
		ps.handleJoinRoom(msg.client, msg.JoinRoom)
	case msg.UpdateRoom != nil:
		ps.handleUpdateRoom(msg.client, msg.UpdateRoom)
	case msg.Vote != nil:
		ps.handleVote(msg.client, msg.Vote)
	default:
		ps.notifier.Error(msg.client.sessionId, "invalid message format")
	}
}

func (ps *PokerServer) handleCreateRoom(c *Client, req *CreateRoom) {
	pointValues := req.PointValues
	if req.PointValuesType != "" && req.PointValuesType != types.PointValuesCustom {
		preset, ok := types.PointValuesForType(req.PointValuesType)
		if !ok {
			ps.notifier.Error(c.sessionId, fmt.Sprintf("Unknown point values type %q", req.PointValuesType))
			return
		}
		pointValues = preset
	}
	if len(pointValues) == 0 {
		pointValues, _ = types.PointValuesForType(types.PointValuesFibb)
	}

	roomId, err := shortid.Generate()
	if err != nil {
		ps.log.Println("generate room id:", err)
		ps.notifier.Error(c.sessionId, "Create room failed.")
		return
	}

	now := Now()
	if _, err := ps.registry.Create(roomId, req.RoomName, pointValues, now); err != nil {
		ps.log.Printf("create room %q: %v", roomId, err)
		ps.notifier.Error(c.sessionId, "Create room failed.")
		return
	}

	host := types.User{
		Id:        req.UserId,
		Name:      req.Nickname,
		AvatarSrc: req.AvatarSrc,
		IsHost:    true,
		CreatedOn: now,
	}
	room, err := ps.registry.AddUser(roomId, host)
	if err != nil {
		ps.log.Printf("add host to room %q: %v", roomId, err)
		ps.notifier.Error(c.sessionId, "Create room failed.")
		return
	}

	ps.transport.JoinGroup(c.sessionId, roomId)
	ps.bindings[c.sessionId] = binding{roomId: roomId, userId: req.UserId, nickname: req.Nickname}

	ps.stats.Incr(RoomsCreatedMetric)
	ps.stats.Incr(ActiveRoomsMetric)
	ps.log.Printf("user %q created room %q (%q)", req.UserId, roomId, req.RoomName)

	ps.notifier.Ack(c.sessionId, fmt.Sprintf("Created room %s", roomId), EventUserCreatedRoom, room)
}

func (ps *PokerServer) handleJoinRoom(c *Client, req *JoinRoom) {
	if !ps.transport.GroupExists(req.RoomId) {
		ps.notifier.Error(c.sessionId, "Room not found")
		return
	}

	if _, err := ps.roomData(req.RoomId, c); err != nil {
		return
	}

	now := Now()
	user := types.User{
		Id:        req.UserId,
		Name:      req.Nickname,
		AvatarSrc: req.AvatarSrc,
		CreatedOn: now,
	}

	room, err := ps.registry.AddUser(req.RoomId, user)
	if err != nil {
		ps.log.Printf("add user to room %q: %v", req.RoomId, err)
		ps.notifier.Error(c.sessionId, "Failed to join room "+req.RoomId)
		return
	}

	ps.transport.JoinGroup(c.sessionId, req.RoomId)
	ps.bindings[c.sessionId] = binding{roomId: req.RoomId, userId: req.UserId, nickname: req.Nickname}
	ps.cancelReap(req.RoomId)

	ps.log.Printf("user %q joined room %q", req.UserId, req.RoomId)

	ps.notifier.Ack(c.sessionId, fmt.Sprintf("Joined room: %s", req.RoomId), EventUserJoinedRoom, room)
	ps.notifier.Broadcast(req.RoomId, fmt.Sprintf("%s joined the room", req.Nickname), EventUserJoinedRoom, room)
}

func (ps *PokerServer) handleUpdateRoom(c *Client, req *UpdateRoom) {
	if !ps.transport.GroupExists(req.RoomId) {
		ps.notifier.Error(c.sessionId, "Room not found")
		return
	}

	if _, err := ps.roomData(req.RoomId, c); err != nil {
		return
	}

	now := Now()
	room, err := ps.registry.Apply(req.RoomId, func(r types.Room) (types.Room, error) {
		return applyTransition(r, req.UpdateType, now)
	})
	if err != nil {
		ps.notifier.Error(c.sessionId, transitionErrorMessage(err))
		return
	}

	eventType, message := EventVotingStarted, "Voting started"
	if req.UpdateType == EndVoting {
		eventType, message = EventVotingEnded, "Voting ended"
	}

	ps.log.Printf("user %q applied %s in room %q", req.UserId, req.UpdateType, req.RoomId)

	ps.notifier.Ack(c.sessionId, message, eventType, room)
	ps.notifier.Broadcast(req.RoomId, message, eventType, room)
}

func (ps *PokerServer) handleVote(c *Client, req *Vote) {
	if !ps.transport.GroupExists(req.RoomId) {
		ps.notifier.Error(c.sessionId, "Room not found")
		return
	}

	room, err := ps.roomData(req.RoomId, c)
	if err != nil {
		return
	}

	if room.VotingState != types.VotingStarted {
		ps.notifier.Error(c.sessionId, "Voting is not in progress")
		return
	}
	if _, ok := room.Users[req.UserId]; !ok {
		ps.notifier.Error(c.sessionId, "User is not a member of this room")
		return
	}

	now := Now()
	autoEnded := false
	room, err = ps.registry.Apply(req.RoomId, func(r types.Room) (types.Room, error) {
		u := r.Users[req.UserId]
		u.VoteData = &types.VoteData{Point: req.Point, VotedOn: now}
		r.Users[req.UserId] = u

		if allVoted(r) {
			r = forceEndVoting(r, now)
			autoEnded = true
		}
		return r, nil
	})
	if err != nil {
		ps.log.Printf("record vote in room %q: %v", req.RoomId, err)
		ps.notifier.Error(c.sessionId, "Failed to record vote")
		return
	}

	ps.stats.Incr(VotesCastMetric)

	nickname := room.Users[req.UserId].Name
	eventType, message := EventUserVoted, fmt.Sprintf("%s voted", nickname)
	if autoEnded {
		eventType, message = EventVotingEnded, "All users voted, voting ended"
	}

	ps.notifier.Ack(c.sessionId, message, eventType, room)
	ps.notifier.Broadcast(req.RoomId, message, eventType, room)
}

// handleDisconnect releases the identity binding and removes the user
// from their room. It runs for every closing connection, whether or not
// any prior event for that connection succeeded.
func (ps *PokerServer) handleDisconnect(c *Client) {
	b, bound := ps.bindings[c.sessionId]
	ps.transport.RemoveSession(c.sessionId)
	if !bound {
		return
	}
	delete(ps.bindings, c.sessionId)

	room, err := ps.registry.RemoveUser(b.roomId, b.userId)
	if err != nil {
		ps.log.Printf("remove user %q from room %q: %v", b.userId, b.roomId, err)
		return
	}

	ps.log.Printf("user %q left room %q", b.userId, b.roomId)
	ps.notifier.Broadcast(b.roomId, fmt.Sprintf("%s left the room", b.nickname), EventUserLeftRoom, room)

	if len(room.Users) == 0 {
		ps.scheduleReap(b.roomId)
	}
}

// scheduleReap arms the grace timer for an empty room. The timer fires
// back into the event loop so the delete is serialized with every other
// mutation; a rejoin before expiry cancels it.
func (ps *PokerServer) scheduleReap(roomId string) {
	if _, ok := ps.reapTimers[roomId]; ok {
		return
	}

	ps.log.Printf("room %q is empty, reaping in %s", roomId, ps.reapGrace)
	ps.reapTimers[roomId] = time.AfterFunc(ps.reapGrace, func() {
		select {
		case ps.reapChan <- roomId:
		default:
			ps.log.Printf("reap channel full, room %q leaks until restart", roomId)
		}
	})
}

func (ps *PokerServer) cancelReap(roomId string) {
	if t, ok := ps.reapTimers[roomId]; ok {
		t.Stop()
		delete(ps.reapTimers, roomId)
	}
}

func (ps *PokerServer) handleReap(roomId string) {
	delete(ps.reapTimers, roomId)

	room, err := ps.registry.Get(roomId)
	if err != nil {
		return
	}
	if len(room.Users) > 0 {
		// someone rejoined between the timer firing and the reap request
		// draining; the room stays
		return
	}

	ps.registry.Delete(roomId)
	ps.transport.DeleteGroup(roomId)
	ps.stats.Decr(ActiveRoomsMetric)
	ps.log.Printf("reaped empty room %q", roomId)
}

// roomData resolves the registry record for a room whose transport group
// exists. A miss here is a consistency bug between the two and is always
// surfaced to the caller.
func (ps *PokerServer) roomData(roomId string, c *Client) (types.Room, error) {
	room, err := ps.registry.Get(roomId)
	if err != nil {
		ps.log.Printf("room %q has a transport group but no registry record", roomId)
		ps.notifier.Error(c.sessionId, "Room data not found")
		return types.Room{}, err
	}
	return room, nil
}

func transitionErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyVoting):
		return "Voting has already started"
	case errors.Is(err, ErrAlreadyEnded):
		return "Voting has already ended"
	default:
		return "Invalid voting transition"
	}
}
