package room

import (
	"context"
	"errors"

	"secretnick/internal/app/user"
)

var (
	// ErrUserNotFound is returned by a UserDirectory when no active user matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrRoomNotFound is returned by a Store when no room matches.
	ErrRoomNotFound = errors.New("room not found")

	// ErrRevisionConflict is returned by Store.Update when the room changed after it was loaded.
	ErrRevisionConflict = errors.New("room was modified by another request, reload and try again")
)

// UserDirectory resolves participants by access code or id.
// Detached participants are not returned.
type UserDirectory interface {
	GetByAccessCode(ctx context.Context, code string, opts user.LoadOptions) (user.User, error)
	GetByID(ctx context.Context, id int64, opts user.LoadOptions) (user.User, error)
}

// Store loads and persists room aggregates.
type Store interface {
	// GetByAdminAccessCode loads the room administered by the holder of code,
	// together with its active members.
	GetByAdminAccessCode(ctx context.Context, code string) (*Room, error)

	// Update persists the aggregate's member set and returns an error if
	// the room changed since it was loaded.
	Update(ctx context.Context, r *Room) error
}

// Reader loads a room with its active members by id.
type Reader interface {
	GetByID(ctx context.Context, id int64) (*Room, error)
}
