package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"secretnick/internal/app/room"
	"secretnick/internal/app/user"
)

// RoomRepository loads and persists room aggregates. It implements room.Store and room.Reader.
type RoomRepository struct {
	pool *pgxpool.Pool

	// newRevision issues the revision written by each update.
	newRevision func() uuid.UUID
}

// NewRoomRepository constructs a RoomRepository on pool.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool, newRevision: uuid.New}
}

var (
	_ room.Store  = (*RoomRepository)(nil)
	_ room.Reader = (*RoomRepository)(nil)
)

const roomColumns = `r.id, r.name, r.description, r.invitation_code, r.gift_exchange_date,
	r.gift_maximum_budget, r.closed_on, r.revision, r.created_on, r.modified_on`

// GetByAdminAccessCode loads the room administered by the holder of code with its active members.
// Closed rooms are returned as well; the aggregate rejects changes to them.
func (s *RoomRepository) GetByAdminAccessCode(ctx context.Context, code string) (*room.Room, error) {
	query := `SELECT ` + roomColumns + `, a.id
		FROM rooms r
		JOIN users a ON a.room_id = r.id
		WHERE a.access_code = $1 AND a.is_admin AND a.removed_at IS NULL`

	return s.loadRoom(ctx, query, code)
}

// GetByID loads a room with its active members.
func (s *RoomRepository) GetByID(ctx context.Context, id int64) (*room.Room, error) {
	query := `SELECT ` + roomColumns + `,
			COALESCE((SELECT a.id FROM users a WHERE a.room_id = r.id AND a.is_admin AND a.removed_at IS NULL), 0)
		FROM rooms r
		WHERE r.id = $1`

	return s.loadRoom(ctx, query, id)
}

// loadRoom reads the room row and its members from one snapshot.
func (s *RoomRepository) loadRoom(ctx context.Context, query string, arg any) (*room.Room, error) {
	var r *room.Room

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		loaded, err := scanRoom(tx.QueryRow(ctx, query, arg))
		if err != nil {
			return err
		}

		members, err := loadMembers(ctx, tx, loaded.ID)
		if err != nil {
			return err
		}
		loaded.Users = members

		r = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

func scanRoom(row pgx.Row) (*room.Room, error) {
	var (
		r        room.Room
		closedOn pgtype.Timestamptz
		revision pgtype.UUID
	)

	err := row.Scan(
		&r.ID, &r.Name, &r.Description, &r.InvitationCode, &r.GiftExchangeDate,
		&r.GiftMaximumBudget, &closedOn, &revision, &r.CreatedOn, &r.ModifiedOn,
		&r.AdminID,
	)
	if err != nil {
		if err = translateNoRows(err, room.ErrRoomNotFound); errors.Is(err, room.ErrRoomNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("query room: %w", err)
	}

	r.ClosedOn = timePtr(closedOn)
	r.Revision = uuid.UUID(revision.Bytes)

	return &r, nil
}

func loadMembers(ctx context.Context, tx pgx.Tx, roomID int64) ([]user.User, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.room_id = $1 AND u.removed_at IS NULL ORDER BY u.id`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}

	members, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("scan members: %w", err)
	}

	return members, nil
}

// Update persists the members detached from r since it was loaded (r.RemovedIDs) by
// setting removed_at; their rows and wishes are kept. No other user row is touched.
// The update applies only if the room still has the revision r was loaded at and every
// detached member is still active; r then receives the new revision.
func (s *RoomRepository) Update(ctx context.Context, r *room.Room) error {
	next := s.newRevision()
	now := time.Now().UTC()

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.RepeatableRead}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE rooms SET revision = $2, modified_on = $3 WHERE id = $1 AND revision = $4`,
			r.ID, pgtype.UUID{Bytes: next, Valid: true}, now, pgtype.UUID{Bytes: r.Revision, Valid: true},
		)
		if err != nil {
			return fmt.Errorf("bump room revision: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return room.ErrRevisionConflict
		}

		removed := r.RemovedIDs()
		if len(removed) == 0 {
			return nil
		}

		tag, err = tx.Exec(ctx,
			`UPDATE users SET removed_at = $3, modified_on = $3
			WHERE room_id = $1 AND removed_at IS NULL AND id = ANY($2)`,
			r.ID, removed, now,
		)
		if err != nil {
			return fmt.Errorf("detach members: %w", err)
		}
		if tag.RowsAffected() != int64(len(removed)) {
			return room.ErrRevisionConflict
		}

		return nil
	})
	if err != nil {
		if IsSerializationFailure(err) {
			return room.ErrRevisionConflict
		}
		return err
	}

	r.Revision = next
	r.ModifiedOn = now
	return nil
}
