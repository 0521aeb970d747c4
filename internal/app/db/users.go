package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"secretnick/internal/app/room"
	"secretnick/internal/app/user"
)

// UserRepository resolves active participants. It implements room.UserDirectory.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository constructs a UserRepository on pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

var _ room.UserDirectory = (*UserRepository)(nil)

const userLookupSQL = `SELECT ` + userColumns + `, r.name, r.closed_on
	FROM users u
	LEFT JOIN rooms r ON r.id = u.room_id
	WHERE u.removed_at IS NULL AND `

// GetByAccessCode returns the active user holding code.
func (s *UserRepository) GetByAccessCode(ctx context.Context, code string, opts user.LoadOptions) (user.User, error) {
	return s.getOne(ctx, userLookupSQL+`u.access_code = $1`, code, opts)
}

// GetByID returns the active user with id.
func (s *UserRepository) GetByID(ctx context.Context, id int64, opts user.LoadOptions) (user.User, error) {
	return s.getOne(ctx, userLookupSQL+`u.id = $1`, id, opts)
}

func (s *UserRepository) getOne(ctx context.Context, query string, arg any, opts user.LoadOptions) (user.User, error) {
	var (
		row      userRow
		roomName pgtype.Text
		closedOn pgtype.Timestamptz
	)

	dest := append(row.dest(), &roomName, &closedOn)
	if err := s.pool.QueryRow(ctx, query, arg).Scan(dest...); err != nil {
		if err = translateNoRows(err, room.ErrUserNotFound); errors.Is(err, room.ErrUserNotFound) {
			return user.User{}, err
		}
		return user.User{}, fmt.Errorf("query user: %w", err)
	}

	u := row.toUser()

	if opts.IncludeRoom && u.RoomID != nil {
		u.Room = &user.RoomRef{
			ID:       *u.RoomID,
			Name:     roomName.String,
			ClosedOn: timePtr(closedOn),
		}
	}

	if opts.IncludeWishes {
		wishes, err := s.wishes(ctx, u.ID)
		if err != nil {
			return user.User{}, err
		}
		u.Wishes = wishes
	}

	return u, nil
}

func (s *UserRepository) wishes(ctx context.Context, userID int64) ([]user.Wish, error) {
	rows, err := s.pool.Query(ctx, `SELECT name, info_link FROM wishes WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query wishes: %w", err)
	}

	wishes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (user.Wish, error) {
		var w user.Wish
		err := row.Scan(&w.Name, &w.InfoLink)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan wishes: %w", err)
	}

	return wishes, nil
}
