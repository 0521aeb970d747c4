package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"secretnick/internal/app/live"
	"secretnick/internal/app/room"
	"secretnick/internal/app/user"
	"secretnick/internal/configs"
	"secretnick/internal/pkg/accesscode"
	"secretnick/internal/pkg/errs"
)

type fakeRemover struct {
	removeFunc func(ctx context.Context, code string, targetID int64) (*room.Room, error)
	calls      int
}

func (f *fakeRemover) RemoveUser(ctx context.Context, code string, targetID int64) (*room.Room, error) {
	f.calls++
	if f.removeFunc == nil {
		return nil, errors.New("unexpected call")
	}
	return f.removeFunc(ctx, code, targetID)
}

type fakeViewer struct {
	roomFunc         func(ctx context.Context, code string) (*room.Room, user.User, error)
	participantsFunc func(ctx context.Context, code string) ([]user.User, error)
}

func (f *fakeViewer) Room(ctx context.Context, code string) (*room.Room, user.User, error) {
	if f.roomFunc == nil {
		return nil, user.User{}, errors.New("unexpected call")
	}
	return f.roomFunc(ctx, code)
}

func (f *fakeViewer) Participants(ctx context.Context, code string) ([]user.User, error) {
	if f.participantsFunc == nil {
		return nil, errors.New("unexpected call")
	}
	return f.participantsFunc(ctx, code)
}

type response struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testEnv struct {
	deps    *AppDeps
	remover *fakeRemover
	viewer  *fakeViewer
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := live.NewHub()
	t.Cleanup(func() {
		cancel()
		hub.Shutdown()
	})

	env := &testEnv{remover: &fakeRemover{}, viewer: &fakeViewer{}}
	env.deps = &AppDeps{
		Config: &configs.AppConfig{
			Environment: "development",
			DeleteRate:  100,
			DeleteBurst: 100,
		},
		Removal: env.remover,
		View:    env.viewer,
		Hub:     hub,
	}
	env.handler = Router(ctx, env.deps)
	return env
}

func (e *testEnv) do(t *testing.T, method, target string) (int, response) {
	t.Helper()

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var body response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func sampleRoom() *room.Room {
	roomID := int64(5)
	return &room.Room{
		ID:      roomID,
		Name:    "Office",
		AdminID: 1,
		Users: []user.User{
			{ID: 1, IsAdmin: true, RoomID: &roomID, FirstName: "Ann", AccessCode: "admin-code"},
			{ID: 3, RoomID: &roomID, FirstName: "Cid", AccessCode: "other-code"},
		},
	}
}

func TestRemoveUserRejectsInvalidParams(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{name: "non numeric id", target: "/api/users/abc?userCode=admin-code"},
		{name: "zero id", target: "/api/users/0?userCode=admin-code"},
		{name: "negative id", target: "/api/users/-4?userCode=admin-code"},
		{name: "missing code", target: "/api/users/2"},
		{name: "blank code", target: "/api/users/2?userCode=%20%20"},
		{name: "oversized code", target: "/api/users/2?userCode=" + strings.Repeat("a", accesscode.MaxLength+1)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			status, body := env.do(t, http.MethodDelete, tc.target)
			if status != http.StatusBadRequest || body.Code != errs.ErrInvalidParams {
				t.Fatalf("expected 400/%d, got %d/%d", errs.ErrInvalidParams, status, body.Code)
			}
			if env.remover.calls != 0 {
				t.Fatalf("expected service not to run, got %d calls", env.remover.calls)
			}
		})
	}
}

func TestRemoveUserSuccess(t *testing.T) {
	env := newTestEnv(t)
	env.remover.removeFunc = func(_ context.Context, code string, targetID int64) (*room.Room, error) {
		if code != "admin-code" || targetID != 2 {
			t.Fatalf("expected admin-code/2, got %q/%d", code, targetID)
		}
		return sampleRoom(), nil
	}

	status, body := env.do(t, http.MethodDelete, "/api/users/2?userCode=admin-code")
	if status != http.StatusOK || body.Code != 0 {
		t.Fatalf("expected 200/0, got %d/%d (%s)", status, body.Code, body.Message)
	}

	var data struct {
		Room         room.Room   `json:"room"`
		Participants []user.User `json:"participants"`
	}
	if err := json.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Room.ID != 5 || len(data.Participants) != 2 {
		t.Fatalf("expected room 5 with 2 participants, got %d with %d", data.Room.ID, len(data.Participants))
	}
	if strings.Contains(string(body.Data), "admin-code") {
		t.Fatal("expected access codes to stay out of the response")
	}
}

func TestRemoveUserMapsFailures(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
		wantField  string
	}{
		{
			name:       "not found",
			err:        room.NotFound(room.FieldID, "User with the specified Id was not found."),
			wantStatus: http.StatusNotFound,
			wantCode:   errs.ErrMemberNotFound,
			wantField:  room.FieldID,
		},
		{
			name:       "forbidden",
			err:        room.Forbidden(room.FieldUserCode, "User is not an administrator."),
			wantStatus: http.StatusForbidden,
			wantCode:   errs.ErrMemberForbidden,
			wantField:  room.FieldUserCode,
		},
		{
			name:       "closed room",
			err:        room.BadRequest(room.FieldClosedOn, "Room is already closed."),
			wantStatus: http.StatusBadRequest,
			wantCode:   errs.ErrMemberRequestInvalid,
			wantField:  room.FieldClosedOn,
		},
		{
			name:       "infrastructure",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errs.ErrUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.remover.removeFunc = func(context.Context, string, int64) (*room.Room, error) {
				return nil, tc.err
			}

			status, body := env.do(t, http.MethodDelete, "/api/users/2?userCode=admin-code")
			if status != tc.wantStatus || body.Code != tc.wantCode {
				t.Fatalf("expected %d/%d, got %d/%d", tc.wantStatus, tc.wantCode, status, body.Code)
			}

			if tc.wantField == "" {
				if len(body.Data) != 0 {
					t.Fatalf("expected no details, got %s", body.Data)
				}
				return
			}

			var data struct {
				Errors []errs.FieldDetail `json:"errors"`
			}
			if err := json.Unmarshal(body.Data, &data); err != nil {
				t.Fatalf("decode details: %v", err)
			}
			if len(data.Errors) != 1 || data.Errors[0].Field != tc.wantField {
				t.Fatalf("expected detail for %q, got %+v", tc.wantField, data.Errors)
			}
		})
	}
}

func TestRemoveUserRateLimited(t *testing.T) {
	env := newTestEnv(t)
	env.deps.Config.DeleteRate = 0.001
	env.deps.Config.DeleteBurst = 1
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.handler = Router(ctx, env.deps)

	env.remover.removeFunc = func(context.Context, string, int64) (*room.Room, error) {
		return sampleRoom(), nil
	}

	if status, _ := env.do(t, http.MethodDelete, "/api/users/2?userCode=admin-code"); status != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", status)
	}
	status, body := env.do(t, http.MethodDelete, "/api/users/3?userCode=admin-code")
	if status != http.StatusTooManyRequests || body.Code != errs.ErrRateLimitExceeded {
		t.Fatalf("expected 429/%d, got %d/%d", errs.ErrRateLimitExceeded, status, body.Code)
	}
}

func TestRemoveUserUnusualCodeReachesDirectory(t *testing.T) {
	env := newTestEnv(t)
	env.remover.removeFunc = func(_ context.Context, code string, _ int64) (*room.Room, error) {
		if code != "code<with>odd chars" {
			t.Fatalf("expected code passed through unchanged, got %q", code)
		}
		return nil, room.NotFound(room.FieldUserCode, "User with such code not found.")
	}

	status, body := env.do(t, http.MethodDelete, "/api/users/2?userCode=code%3Cwith%3Eodd%20chars")
	if status != http.StatusNotFound || body.Code != errs.ErrMemberNotFound {
		t.Fatalf("expected 404/%d, got %d/%d", errs.ErrMemberNotFound, status, body.Code)
	}
	if env.remover.calls != 1 {
		t.Fatalf("expected service to run once, got %d calls", env.remover.calls)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.viewer.roomFunc = func(context.Context, string) (*room.Room, user.User, error) {
		return nil, user.User{}, room.NotFound(room.FieldUserCode, "User with such code not found.")
	}

	status, body := env.do(t, http.MethodGet, "/api/rooms?userCode=unknown")
	if status != http.StatusNotFound || body.Code != errs.ErrRoomNotFound {
		t.Fatalf("expected 404/%d, got %d/%d", errs.ErrRoomNotFound, status, body.Code)
	}
}

func TestListUsers(t *testing.T) {
	env := newTestEnv(t)
	env.viewer.participantsFunc = func(_ context.Context, code string) ([]user.User, error) {
		if code != "member-code" {
			t.Fatalf("expected member-code, got %q", code)
		}
		return sampleRoom().Users, nil
	}

	status, body := env.do(t, http.MethodGet, "/api/users?userCode=member-code")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var users []user.User
	if err := json.Unmarshal(body.Data, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}

func TestWebSocketRemovedParticipantIsDisconnected(t *testing.T) {
	env := newTestEnv(t)

	current := sampleRoom()
	member := current.Users[1]
	env.viewer.roomFunc = func(context.Context, string) (*room.Room, user.User, error) {
		return current, member, nil
	}

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?userCode=other-code"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var state live.Event
	if err := conn.ReadJSON(&state); err != nil {
		t.Fatalf("read ROOM_STATE: %v", err)
	}
	if state.Type != live.TypeRoomState || state.RoomID != current.ID {
		t.Fatalf("expected ROOM_STATE for room %d, got %s for %d", current.ID, state.Type, state.RoomID)
	}

	env.deps.Hub.UserRemoved(current.ID, member.ID)

	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != live.WsCloseCodeRemoved {
		t.Fatalf("expected close code %d, got %v", live.WsCloseCodeRemoved, err)
	}
}

func TestWebSocketRejectsUnknownCode(t *testing.T) {
	env := newTestEnv(t)
	env.viewer.roomFunc = func(context.Context, string) (*room.Room, user.User, error) {
		return nil, user.User{}, room.NotFound(room.FieldUserCode, "User with such code not found.")
	}

	status, body := env.do(t, http.MethodGet, "/ws?userCode=nobody")
	if status != http.StatusUnauthorized || body.Code != errs.ErrUnauthorized {
		t.Fatalf("expected 401/%d, got %d/%d", errs.ErrUnauthorized, status, body.Code)
	}
}
