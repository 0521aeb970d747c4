/*
Package user contains the participant identity shared by the room domain and its stores.

A User is created when a person joins a room through its invitation and is identified
afterwards only by its opaque access code. The owning room never changes once set.
*/
package user

import "time"

// User represents one participant of a gift exchange room.
type User struct {
	// ID is the numeric identifier assigned by storage.
	ID int64 `json:"id"`

	// AccessCode is the credential the participant presents instead of logging in.
	AccessCode string `json:"-"`

	// IsAdmin marks the participant who created the room and manages its membership.
	IsAdmin bool `json:"isAdmin"`

	// RoomID is the owning room. It is nil only for a user that has not joined yet.
	RoomID *int64 `json:"roomId,omitempty"`

	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
	DeliveryInfo string `json:"deliveryInfo,omitempty"`

	// WantSurprise is true when the participant leaves the gift choice to the giver.
	WantSurprise bool   `json:"wantSurprise"`
	Interests    string `json:"interests,omitempty"`

	// GiftToUserID is the recipient assigned by the draw.
	GiftToUserID *int64 `json:"giftToUserId,omitempty"`

	// Room is filled only when the lookup asked for it.
	Room *RoomRef `json:"-"`

	// Wishes is filled only when the lookup asked for it.
	Wishes []Wish `json:"wishes,omitempty"`

	CreatedOn  time.Time `json:"createdOn"`
	ModifiedOn time.Time `json:"modifiedOn"`
}

// RoomRef is the slice of room data loaded alongside a user.
type RoomRef struct {
	ID       int64
	Name     string
	ClosedOn *time.Time
}

// Wish is one entry of a participant's wishlist.
type Wish struct {
	Name     string `json:"name"`
	InfoLink string `json:"infoLink,omitempty"`
}

// LoadOptions selects the related data a lookup loads eagerly.
type LoadOptions struct {
	IncludeRoom   bool
	IncludeWishes bool
}

// InRoom reports whether the user belongs to the given room.
func (u User) InRoom(roomID int64) bool {
	return u.RoomID != nil && *u.RoomID == roomID
}

// SameRoom reports whether both users belong to the same room.
// Two users without a room are not considered roommates.
func SameRoom(a, b User) bool {
	if a.RoomID == nil || b.RoomID == nil {
		return false
	}
	return *a.RoomID == *b.RoomID
}

// PublicView returns a copy with contact and delivery details removed.
func (u User) PublicView() User {
	u.Phone = ""
	u.Email = ""
	u.DeliveryInfo = ""
	u.GiftToUserID = nil
	u.Wishes = nil
	return u
}
