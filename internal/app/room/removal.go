package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"secretnick/internal/app/user"
	"secretnick/internal/pkg/logx"
)

// RemovalService detaches participants from rooms on behalf of their administrator.
type RemovalService struct {
	users UserDirectory
	rooms Store

	// structured logger with service context.
	logger zerolog.Logger
}

// NewRemovalService constructs a RemovalService over the given stores.
func NewRemovalService(users UserDirectory, rooms Store) *RemovalService {
	return &RemovalService{
		users:  users,
		rooms:  rooms,
		logger: logx.Logger().With().Str("component", "RemovalService").Logger(),
	}
}

// RemoveUser detaches targetUserID from the room administered by the holder of callerAccessCode
// and returns the updated room.
//
// Checks run in a fixed order and the first one that fails decides the result. Rejections are
// returned as *Failure; errors of the underlying stores that are not classified are returned wrapped.
// A context cancelled before persistence starts leaves storage untouched; once the update is
// issued it runs to completion.
func (s *RemovalService) RemoveUser(ctx context.Context, callerAccessCode string, targetUserID int64) (*Room, error) {
	caller, err := s.users.GetByAccessCode(ctx, callerAccessCode, user.LoadOptions{IncludeRoom: true})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, NotFound(FieldUserCode, "User with such code not found.")
		}
		return nil, fmt.Errorf("resolve caller: %w", err)
	}

	if f := RequireAdmin(caller); f != nil {
		return nil, f
	}

	room, err := s.rooms.GetByAdminAccessCode(ctx, callerAccessCode)
	if err != nil {
		if _, ok := AsFailure(err); ok {
			return nil, err
		}
		if errors.Is(err, ErrRoomNotFound) {
			return nil, NotFound(FieldUserCode, "Room for the administrator was not found.")
		}
		return nil, fmt.Errorf("resolve room: %w", err)
	}

	if f := RequireNotSelf(caller, targetUserID); f != nil {
		return nil, f
	}

	if _, ok := room.Member(targetUserID); !ok {
		status, err := s.classifyMissing(ctx, caller, targetUserID)
		if err != nil {
			return nil, err
		}
		if status == TargetNotLoaded {
			s.logger.Error().
				Int64("room_id", room.ID).
				Int64("user_id", targetUserID).
				Ints64("loaded_ids", room.MemberIDs()).
				Bool("defect", true).
				Msg("Room member set is missing a user that belongs to the room.")
		}
		return nil, status.Failure()
	}

	if err := room.RemoveMember(targetUserID); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.rooms.Update(context.WithoutCancel(ctx), room); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("room_id", room.ID).
			Int64("user_id", targetUserID).
			Msg("Failed to persist room after member removal.")
		return nil, BadRequest("", err.Error())
	}

	s.logger.Info().
		Int64("room_id", room.ID).
		Int64("user_id", targetUserID).
		Int64("admin_id", caller.ID).
		Int("members", len(room.Users)).
		Msg("Member removed from room.")

	return room, nil
}

// classifyMissing looks the target up directly to explain why it is not in the loaded room.
func (s *RemovalService) classifyMissing(ctx context.Context, caller user.User, targetUserID int64) (TargetStatus, error) {
	stored, err := s.users.GetByID(ctx, targetUserID, user.LoadOptions{IncludeRoom: true})
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ClassifyMissingTarget(caller, nil), nil
		}
		return TargetUnknown, fmt.Errorf("resolve target: %w", err)
	}
	return ClassifyMissingTarget(caller, &stored), nil
}
