/*
Package room contains the gift exchange room aggregate and the operations that change its membership.

The Room type owns the in-memory member set while an operation runs; persistence goes through
the Store interface, identity lookups through UserDirectory. RemovalService orchestrates the
checks that decide whether an administrator may detach a participant.
*/
package room

import (
	"time"

	"github.com/google/uuid"

	"secretnick/internal/app/user"
)

// Field tags used in failures raised by the aggregate.
const (
	FieldClosedOn = "room.ClosedOn"
)

// Room is one gift exchange session and the participants loaded with it.
type Room struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	InvitationCode    string     `json:"invitationCode,omitempty"`
	GiftExchangeDate  time.Time  `json:"giftExchangeDate"`
	GiftMaximumBudget int64      `json:"giftMaximumBudget"`
	AdminID           int64      `json:"adminId"`
	ClosedOn          *time.Time `json:"closedOn,omitempty"`
	CreatedOn         time.Time  `json:"createdOn"`
	ModifiedOn        time.Time  `json:"modifiedOn"`

	// Revision is the storage version this aggregate was loaded at.
	Revision uuid.UUID `json:"-"`

	// Users is the loaded member set. Order carries no meaning.
	Users []user.User `json:"-"`

	// removed holds the members detached since the room was loaded.
	removed []int64
}

// IsClosed reports whether the draw has finalized the room.
func (r *Room) IsClosed() bool {
	return r.ClosedOn != nil
}

// Member returns the loaded member with the given id.
func (r *Room) Member(userID int64) (user.User, bool) {
	for _, u := range r.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return user.User{}, false
}

// MemberIDs returns the ids of the loaded members.
func (r *Room) MemberIDs() []int64 {
	ids := make([]int64, 0, len(r.Users))
	for _, u := range r.Users {
		ids = append(ids, u.ID)
	}
	return ids
}

// RemovedIDs returns the members detached by RemoveMember since the room was loaded.
// Stores persist exactly these ids; members they never saw stay untouched.
func (r *Room) RemovedIDs() []int64 {
	return append([]int64(nil), r.removed...)
}

// RemoveMember detaches a participant from the loaded member set.
// A closed room keeps its membership frozen. Removing an id that is not
// loaded succeeds without changing anything.
func (r *Room) RemoveMember(userID int64) error {
	if r.IsClosed() {
		return BadRequest(FieldClosedOn, "Room is already closed.")
	}

	kept := r.Users[:0]
	for _, u := range r.Users {
		if u.ID != userID {
			kept = append(kept, u)
		}
	}
	if len(kept) < len(r.Users) {
		r.removed = append(r.removed, userID)
	}
	clear(r.Users[len(kept):])
	r.Users = kept

	return nil
}
