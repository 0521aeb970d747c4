package handler

import (
	"context"

	"secretnick/internal/app/live"
	"secretnick/internal/app/room"
	"secretnick/internal/app/user"
	"secretnick/internal/configs"
)

// MemberRemover is the membership operation behind DELETE /api/users/{id}.
type MemberRemover interface {
	RemoveUser(ctx context.Context, callerAccessCode string, targetUserID int64) (*room.Room, error)
}

// RoomViewer answers the read endpoints.
type RoomViewer interface {
	Room(ctx context.Context, accessCode string) (*room.Room, user.User, error)
	Participants(ctx context.Context, accessCode string) ([]user.User, error)
}

type AppDeps struct {
	Config  *configs.AppConfig
	Removal MemberRemover
	View    RoomViewer
	Hub     *live.Hub
}
