package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwhite/pointdeck/internal/types"
)

// VotingTransition is a requested change to a room's voting phase.
type VotingTransition string

const (
	StartVoting VotingTransition = "START_VOTING"
	EndVoting   VotingTransition = "END_VOTING"
)

var (
	ErrInvalidTransition = errors.New("invalid voting transition")
	ErrAlreadyVoting     = fmt.Errorf("%w: voting already started", ErrInvalidTransition)
	ErrAlreadyEnded      = fmt.Errorf("%w: voting already ended", ErrInvalidTransition)
)

// applyTransition returns a new room value with the transition applied,
// or the room unchanged alongside an error if the transition is illegal
// in the current state. The room cycles STARTED <-> ENDED indefinitely
// after the first START_VOTING.
func applyTransition(room types.Room, transition VotingTransition, now time.Time) (types.Room, error) {
	switch transition {
	case StartVoting:
		if room.VotingState == types.VotingStarted {
			return room, ErrAlreadyVoting
		}
		for id, u := range room.Users {
			u.VoteData = nil
			room.Users[id] = u
		}
		room.VotingState = types.VotingStarted
		room.UpdatedOn = now
		return room, nil
	case EndVoting:
		if room.VotingState != types.VotingStarted {
			return room, ErrAlreadyEnded
		}
		return forceEndVoting(room, now), nil
	default:
		return room, fmt.Errorf("%w: unknown transition %q", ErrInvalidTransition, transition)
	}
}

// forceEndVoting ends the round without a legality check. This is the one
// forced transition: the coordinator uses it when the last member's vote
// lands. Vote data is left untouched, it now represents the final tally.
func forceEndVoting(room types.Room, now time.Time) types.Room {
	room.VotingState = types.VotingEnded
	room.UpdatedOn = now
	return room
}

// allVoted reports whether every member of the room has cast a vote. An
// empty room never counts as fully voted.
func allVoted(room types.Room) bool {
	if len(room.Users) == 0 {
		return false
	}
	for _, u := range room.Users {
		if u.VoteData == nil {
			return false
		}
	}
	return true
}
