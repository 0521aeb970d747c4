package db

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"secretnick/internal/app/user"
)

// userColumns is the select list understood by scanUser. Queries alias users as "u".
const userColumns = `u.id, u.access_code, u.is_admin, u.room_id, u.first_name, u.last_name,
	u.phone, u.email, u.delivery_info, u.want_surprise, u.interests, u.gift_to_user_id,
	u.created_on, u.modified_on`

// userRow mirrors userColumns with nullable columns kept in pgtype form.
type userRow struct {
	ID           int64
	AccessCode   string
	IsAdmin      bool
	RoomID       pgtype.Int8
	FirstName    string
	LastName     string
	Phone        string
	Email        pgtype.Text
	DeliveryInfo string
	WantSurprise bool
	Interests    string
	GiftToUserID pgtype.Int8
	CreatedOn    time.Time
	ModifiedOn   time.Time
}

func (r *userRow) dest() []any {
	return []any{
		&r.ID, &r.AccessCode, &r.IsAdmin, &r.RoomID, &r.FirstName, &r.LastName,
		&r.Phone, &r.Email, &r.DeliveryInfo, &r.WantSurprise, &r.Interests, &r.GiftToUserID,
		&r.CreatedOn, &r.ModifiedOn,
	}
}

func (r userRow) toUser() user.User {
	return user.User{
		ID:           r.ID,
		AccessCode:   r.AccessCode,
		IsAdmin:      r.IsAdmin,
		RoomID:       int8Ptr(r.RoomID),
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		Email:        r.Email.String,
		DeliveryInfo: r.DeliveryInfo,
		WantSurprise: r.WantSurprise,
		Interests:    r.Interests,
		GiftToUserID: int8Ptr(r.GiftToUserID),
		CreatedOn:    r.CreatedOn,
		ModifiedOn:   r.ModifiedOn,
	}
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var r userRow
	if err := row.Scan(r.dest()...); err != nil {
		return user.User{}, err
	}
	return r.toUser(), nil
}

func int8Ptr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func timePtr(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
