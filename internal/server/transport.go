package server

import "log"

// GroupTransport groups live connections into named rooms. The
// coordinator is the only writer; reads happen on the same goroutine, so
// no locking is needed. Delivery to an individual connection goes through
// the client's buffered send channel, which is safe from any goroutine.
type GroupTransport interface {
	AddSession(sessionId string, c *Client)
	RemoveSession(sessionId string)
	JoinGroup(sessionId, roomId string)
	LeaveGroup(sessionId, roomId string)
	DeleteGroup(roomId string)
	GroupExists(roomId string) bool
	BroadcastToGroup(roomId string, msg *ServerMessage)
	SendToSession(sessionId string, msg *ServerMessage)
}

type clientGroups struct {
	log      *log.Logger
	sessions map[string]*Client
	// groups maps a room id to the session ids connected to it. A group
	// outlives its last member until the room itself is deleted, so a
	// rejoin by id during the reap grace period still finds it.
	groups map[string]map[string]struct{}
}

func newClientGroups(logger *log.Logger) *clientGroups {
	return &clientGroups{
		log:      logger,
		sessions: make(map[string]*Client),
		groups:   make(map[string]map[string]struct{}),
	}
}

func (g *clientGroups) AddSession(sessionId string, c *Client) {
	g.sessions[sessionId] = c
}

func (g *clientGroups) RemoveSession(sessionId string) {
	delete(g.sessions, sessionId)
	for _, members := range g.groups {
		delete(members, sessionId)
	}
}

func (g *clientGroups) JoinGroup(sessionId, roomId string) {
	if g.groups[roomId] == nil {
		g.groups[roomId] = make(map[string]struct{})
	}
	g.groups[roomId][sessionId] = struct{}{}
}

func (g *clientGroups) LeaveGroup(sessionId, roomId string) {
	if members, ok := g.groups[roomId]; ok {
		delete(members, sessionId)
	}
}

func (g *clientGroups) DeleteGroup(roomId string) {
	delete(g.groups, roomId)
}

func (g *clientGroups) GroupExists(roomId string) bool {
	_, ok := g.groups[roomId]
	return ok
}

func (g *clientGroups) BroadcastToGroup(roomId string, msg *ServerMessage) {
	for sessionId := range g.groups[roomId] {
		g.SendToSession(sessionId, msg)
	}
}

func (g *clientGroups) stopAll() {
	for _, c := range g.sessions {
		c.stopClient()
	}
}

func (g *clientGroups) SendToSession(sessionId string, msg *ServerMessage) {
	c, ok := g.sessions[sessionId]
	if !ok {
		g.log.Printf("no session %q, dropping message", sessionId)
		return
	}

	if !c.queueMessage(msg) {
		g.log.Printf("send buffer full for session %q, dropping message", sessionId)
	}
}
