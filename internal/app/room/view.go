package room

import (
	"context"
	"errors"
	"fmt"

	"secretnick/internal/app/user"
)

// ViewService answers read requests of room members.
type ViewService struct {
	users UserDirectory
	rooms Reader
}

// NewViewService constructs a ViewService.
func NewViewService(users UserDirectory, rooms Reader) *ViewService {
	return &ViewService{users: users, rooms: rooms}
}

// Room returns the room the holder of accessCode belongs to, and the caller.
func (s *ViewService) Room(ctx context.Context, accessCode string) (*Room, user.User, error) {
	caller, err := s.users.GetByAccessCode(ctx, accessCode, user.LoadOptions{IncludeRoom: true})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, user.User{}, NotFound(FieldUserCode, "User with such code not found.")
		}
		return nil, user.User{}, fmt.Errorf("resolve caller: %w", err)
	}
	if caller.RoomID == nil {
		return nil, user.User{}, NotFound(FieldUserCode, "User has not joined a room.")
	}

	r, err := s.rooms.GetByID(ctx, *caller.RoomID)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			return nil, user.User{}, NotFound(FieldUserCode, "Room for the user was not found.")
		}
		return nil, user.User{}, fmt.Errorf("load room: %w", err)
	}

	return r, caller, nil
}

// Participants lists the members of the caller's room. Administrators see every
// member in full; other members see full details only for themselves.
func (s *ViewService) Participants(ctx context.Context, accessCode string) ([]user.User, error) {
	r, caller, err := s.Room(ctx, accessCode)
	if err != nil {
		return nil, err
	}
	return VisibleMembers(r, caller), nil
}

// VisibleMembers applies the participant visibility rules for caller.
func VisibleMembers(r *Room, caller user.User) []user.User {
	out := make([]user.User, 0, len(r.Users))
	for _, u := range r.Users {
		if caller.IsAdmin || u.ID == caller.ID {
			out = append(out, u)
			continue
		}
		out = append(out, u.PublicView())
	}
	return out
}
