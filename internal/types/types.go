package types

import (
	"slices"
	"time"
)

// VotingState is the phase of a room's voting round.
type VotingState string

const (
	VotingInitial VotingState = "INITIAL"
	VotingStarted VotingState = "STARTED"
	VotingEnded   VotingState = "ENDED"
)

// VoteData is a single cast vote. A nil VoteData on a User means the
// user has not voted in the current round.
type VoteData struct {
	Point   string    `json:"point"`
	VotedOn time.Time `json:"votedOn"`
}

type User struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	AvatarSrc string    `json:"avatarSrc,omitempty"`
	IsHost    bool      `json:"isHost"`
	VoteData  *VoteData `json:"voteData,omitempty"`
	CreatedOn time.Time `json:"createdOn"`
}

type Room struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	VotingState VotingState     `json:"votingState"`
	PointValues []string        `json:"pointValues"`
	Users       map[string]User `json:"users"`
	CreatedOn   time.Time       `json:"createdOn"`
	UpdatedOn   time.Time       `json:"updatedOn"`
}

// Clone returns a deep copy of the room. User is a value type apart from
// VoteData, which is copied as well, so the clone shares no mutable state
// with the original.
func (r Room) Clone() Room {
	c := r
	c.PointValues = slices.Clone(r.PointValues)
	c.Users = make(map[string]User, len(r.Users))
	for id, u := range r.Users {
		if u.VoteData != nil {
			vd := *u.VoteData
			u.VoteData = &vd
		}
		c.Users[id] = u
	}
	return c
}
