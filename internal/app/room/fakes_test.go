package room

import (
	"context"

	"secretnick/internal/app/user"
)

type fakeUserDirectory struct {
	byCodeFunc func(ctx context.Context, code string, opts user.LoadOptions) (user.User, error)
	byIDFunc   func(ctx context.Context, id int64, opts user.LoadOptions) (user.User, error)
	byIDCalls  int
}

func (f *fakeUserDirectory) GetByAccessCode(ctx context.Context, code string, opts user.LoadOptions) (user.User, error) {
	if f.byCodeFunc == nil {
		return user.User{}, ErrUserNotFound
	}
	return f.byCodeFunc(ctx, code, opts)
}

func (f *fakeUserDirectory) GetByID(ctx context.Context, id int64, opts user.LoadOptions) (user.User, error) {
	f.byIDCalls++
	if f.byIDFunc == nil {
		return user.User{}, ErrUserNotFound
	}
	return f.byIDFunc(ctx, id, opts)
}

type fakeRoomStore struct {
	getFunc     func(ctx context.Context, code string) (*Room, error)
	updateFunc  func(ctx context.Context, r *Room) error
	updateCalls int
	updated     *Room
}

func (f *fakeRoomStore) GetByAdminAccessCode(ctx context.Context, code string) (*Room, error) {
	if f.getFunc == nil {
		return nil, ErrRoomNotFound
	}
	return f.getFunc(ctx, code)
}

func (f *fakeRoomStore) Update(ctx context.Context, r *Room) error {
	f.updateCalls++
	f.updated = r
	if f.updateFunc == nil {
		return nil
	}
	return f.updateFunc(ctx, r)
}

type fakeRoomReader struct {
	getFunc func(ctx context.Context, id int64) (*Room, error)
}

func (f *fakeRoomReader) GetByID(ctx context.Context, id int64) (*Room, error) {
	if f.getFunc == nil {
		return nil, ErrRoomNotFound
	}
	return f.getFunc(ctx, id)
}

func roomID(id int64) *int64 {
	return &id
}

func newAdmin(id, room int64) user.User {
	return user.User{ID: id, AccessCode: "admin-code", IsAdmin: true, RoomID: roomID(room), FirstName: "Ada"}
}

func newMember(id, room int64) user.User {
	return user.User{
		ID:           id,
		AccessCode:   "member-code",
		RoomID:       roomID(room),
		FirstName:    "Bob",
		Phone:        "+380000000000",
		DeliveryInfo: "Kyiv, Nova Poshta 1",
	}
}
