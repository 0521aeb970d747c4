package db

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"secretnick/internal/app/room"
)

func TestUserRowToUser(t *testing.T) {
	created := time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC)
	row := userRow{
		ID:           7,
		AccessCode:   "abc",
		RoomID:       pgtype.Int8{Int64: 3, Valid: true},
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        pgtype.Text{},
		GiftToUserID: pgtype.Int8{},
		CreatedOn:    created,
		ModifiedOn:   created,
	}

	u := row.toUser()
	if u.ID != 7 || u.AccessCode != "abc" {
		t.Fatalf("expected id 7 with code abc, got %d %q", u.ID, u.AccessCode)
	}
	if u.RoomID == nil || *u.RoomID != 3 {
		t.Fatalf("expected room id 3, got %v", u.RoomID)
	}
	if u.GiftToUserID != nil {
		t.Fatalf("expected no gift recipient, got %v", *u.GiftToUserID)
	}
	if u.Email != "" {
		t.Fatalf("expected empty email for NULL column, got %q", u.Email)
	}
}

func TestInt8PtrCopiesValue(t *testing.T) {
	v := pgtype.Int8{Int64: 9, Valid: true}
	p := int8Ptr(v)
	v.Int64 = 10
	if p == nil || *p != 9 {
		t.Fatalf("expected 9, got %v", p)
	}
	if int8Ptr(pgtype.Int8{}) != nil {
		t.Fatal("expected nil for NULL")
	}
}

func TestTimePtr(t *testing.T) {
	now := time.Now()
	if p := timePtr(pgtype.Timestamptz{Time: now, Valid: true}); p == nil || !p.Equal(now) {
		t.Fatalf("expected %v, got %v", now, p)
	}
	if timePtr(pgtype.Timestamptz{}) != nil {
		t.Fatal("expected nil for NULL")
	}
}

func TestTranslateNoRows(t *testing.T) {
	if err := translateNoRows(pgx.ErrNoRows, room.ErrRoomNotFound); !errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}

	other := errors.New("connection reset")
	if err := translateNoRows(other, room.ErrRoomNotFound); err != other {
		t.Fatalf("expected error to pass through, got %v", err)
	}
}

func TestIsSerializationFailure(t *testing.T) {
	wrapped := fmt.Errorf("detach members: %w", &pgconn.PgError{Code: "40001"})
	if !IsSerializationFailure(wrapped) {
		t.Fatal("expected wrapped 40001 to be a serialization failure")
	}
	if IsSerializationFailure(&pgconn.PgError{Code: "23505"}) {
		t.Fatal("expected unique violation not to match")
	}
	if IsSerializationFailure(errors.New("plain")) {
		t.Fatal("expected plain error not to match")
	}
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }

func TestScanRoomTranslatesNoRows(t *testing.T) {
	if _, err := scanRoom(errRow{err: pgx.ErrNoRows}); !errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}

	broken := errors.New("conn closed")
	_, err := scanRoom(errRow{err: broken})
	if !errors.Is(err, broken) || errors.Is(err, room.ErrRoomNotFound) {
		t.Fatalf("expected wrapped conn error, got %v", err)
	}
}
